// Package lsp implements a Language Server Protocol server for native query
// files: completion, hover, diagnostics, document links and symbols.
package lsp

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/analysis"
	"github.com/rlch/nqls/completion"
)

// Sources are the completion collaborators shared by all documents.
// Any of them may be nil.
type Sources struct {
	Schema    nqls.SchemaProvider
	Questions nqls.QuestionStore
	Snippets  nqls.SnippetLister

	// QuestionURL links {{#id}} references to the BI server.
	QuestionURL func(id int) string
}

// Server implements the LSP Server interface for native queries.
type Server struct {
	client  protocol.Client
	logger  *zap.Logger
	sources Sources

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	analyzer *analysis.Analyzer
	filter   *completion.Filter
	debounce time.Duration

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document represents an open document in the server.
type Document struct {
	URI      protocol.DocumentURI
	Version  int32
	Content  string
	Analysis *analysis.AnalyzedQuery

	// Engine serves completion for this document and owns its cache.
	Engine *completion.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithFilter hides completion candidates matching f.
func WithFilter(f *completion.Filter) Option {
	return func(s *Server) {
		s.filter = f
	}
}

// WithDebounce sets the debounce interval clients are expected to use,
// from which each document's cache TTL is derived.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		s.debounce = d
	}
}

// NewServer creates a new LSP server.
func NewServer(client protocol.Client, logger *zap.Logger, sources Sources, opts ...Option) *Server {
	s := &Server{
		client:    client,
		logger:    logger,
		sources:   sources,
		documents: make(map[protocol.DocumentURI]*Document),
		analyzer:  analysis.NewAnalyzer(sources.Snippets),
		debounce:  completion.DebounceInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// newEngine creates the completion engine for a newly opened document.
func (s *Server) newEngine() *completion.Engine {
	return completion.New(s.sources.Schema, s.sources.Questions,
		completion.WithSnippets(s.sources.Snippets),
		completion.WithDebounce(s.debounce),
		completion.WithLogger(s.logger.Named("completion")))
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.Any("params", params))

	if params.RootURI != "" {
		s.workspaceRoot = URIToPath(params.RootURI)
		s.logger.Info("Workspace root", zap.String("root", s.workspaceRoot))
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
		s.logger.Info("Workspace root (from RootPath)", zap.String("root", s.workspaceRoot))
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider: true,
			// "{" and ":" open template tags and snippet references.
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"{", ":", "."},
				ResolveProvider:   false,
			},
			DocumentSymbolProvider: true,
			// Question references link to the BI server
			DocumentLinkProvider: &protocol.DocumentLinkOptions{
				ResolveProvider: false,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "nqls",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")

	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
		Engine:  s.newEngine(),
	}

	doc.Analysis = s.analyzer.Analyze(URIToPath(doc.URI), doc.Content)
	s.documents[doc.URI] = doc

	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version
		doc.Analysis = s.analyzer.Analyze(URIToPath(doc.URI), doc.Content)

		s.publishDiagnostics(ctx, doc)
	}

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, params.TextDocument.URI)

	// Clear diagnostics for closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	return nil
}

// Reanalyze re-runs analysis on every open document and republishes
// diagnostics, e.g. after the snippet list changed.
func (s *Server) Reanalyze(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.documents {
		doc.Analysis = s.analyzer.Analyze(URIToPath(doc.URI), doc.Content)
		s.publishDiagnostics(ctx, doc)
	}
}

// getDocument returns a copy of a document by URI (read-locked), so
// handlers never observe a concurrent DidChange.
func (s *Server) getDocument(uri protocol.DocumentURI) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]
	if !ok {
		return Document{}, false
	}

	return *doc, true
}

// URIToPath converts a file:// URI to a filesystem path.
func URIToPath(uri protocol.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		return strings.TrimPrefix(string(uri), "file://")
	}

	if u.Scheme == "file" {
		return u.Path
	}

	return string(uri)
}
