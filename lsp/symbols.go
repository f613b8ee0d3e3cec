package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// DocumentSymbol handles textDocument/documentSymbol requests.
// Every template tag becomes a symbol in the outline view.
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]any, error) {
	s.logger.Debug("DocumentSymbol",
		zap.String("uri", string(params.TextDocument.URI)))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Query == nil {
		return nil, nil
	}

	tags := doc.Analysis.Query.Tags
	result := make([]any, 0, len(tags))

	for _, tag := range tags {
		result = append(result, tagSymbol(tag))
	}

	return result, nil
}

// tagSymbol converts a template tag to a document symbol.
func tagSymbol(tag *nqls.Tag) protocol.DocumentSymbol {
	sym := protocol.DocumentSymbol{
		Name:           tag.Name,
		Detail:         tag.Kind.String(),
		Range:          spanToRange(tag.Span),
		SelectionRange: spanToRange(tag.Span),
	}

	switch tag.Kind {
	case nqls.TagSnippet:
		sym.Kind = protocol.SymbolKindModule
	case nqls.TagQuestion:
		sym.Kind = protocol.SymbolKindStruct
		sym.Name = fmt.Sprintf("#%d", tag.QuestionID)

		if tag.Name != "" {
			sym.Name += " " + tag.Name
		}
	default:
		sym.Kind = protocol.SymbolKindVariable
	}

	// Clients reject symbols with empty names.
	if sym.Name == "" {
		sym.Name = tag.Raw
	}

	return sym
}
