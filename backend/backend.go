// Package backend builds the completion collaborators described by a
// .nqls.yaml config: a Metabase server, a local workspace file, or both.
package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/metabase"
	"github.com/rlch/nqls/store"
)

// SnippetRefreshInterval is how often server snippets are reloaded by Watch.
const SnippetRefreshInterval = 5 * time.Minute

// Backend bundles the collaborators a completion engine needs.
type Backend struct {
	Schema    nqls.SchemaProvider
	Questions nqls.QuestionStore
	Snippets  nqls.SnippetLister

	// QuestionURL is nil without a server.
	QuestionURL func(id int) string

	client    *metabase.Client
	snippets  *metabase.SnippetList
	workspace *store.Workspace
	logger    *zap.Logger
}

// Open builds a backend from cfg. A configured server takes precedence over
// a workspace file; with neither, Open returns nqls.ErrNoSource.
func Open(ctx context.Context, cfg *nqls.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Backend{logger: logger}

	switch {
	case cfg.Server.URL != "":
		if err := b.openServer(ctx, cfg); err != nil {
			return nil, err
		}

	case cfg.WorkspacePath() != "":
		w, err := store.Open(cfg.WorkspacePath(), logger.Named("workspace"))
		if err != nil {
			return nil, err
		}

		b.workspace = w
		b.Schema, b.Questions, b.Snippets = w, w, w

	default:
		return nil, nqls.ErrNoSource
	}

	return b, nil
}

func (b *Backend) openServer(ctx context.Context, cfg *nqls.Config) error {
	opts := []metabase.Option{
		metabase.WithLogger(b.logger.Named("metabase")),
		metabase.WithQuestionCacheSize(cfg.QuestionCacheSize()),
	}

	if cfg.Server.APIKey != "" {
		opts = append(opts, metabase.WithAPIKey(cfg.Server.APIKey))
	} else if cfg.Server.Session != "" {
		opts = append(opts, metabase.WithSession(cfg.Server.Session))
	}

	client, err := metabase.NewClient(cfg.Server.URL, cfg.Server.Database, opts...)
	if err != nil {
		return fmt.Errorf("configure server: %w", err)
	}

	b.client = client
	b.snippets = metabase.NewSnippetList(client)
	b.Schema, b.Questions, b.Snippets = client, client, b.snippets
	b.QuestionURL = client.QuestionURL

	// Completion works without snippets; a failed load is retried by Watch.
	_ = b.snippets.Refresh(ctx)

	return nil
}

// Watch keeps the backend fresh until ctx is done: workspace files are
// reloaded on change, server snippets on a timer. onChange is called after
// every successful refresh.
func (b *Backend) Watch(ctx context.Context, onChange func()) error {
	notify := func() {
		if onChange != nil {
			onChange()
		}
	}

	if b.workspace != nil {
		return b.workspace.Watch(ctx, func(err error) {
			if err == nil {
				notify()
			}
		})
	}

	if b.snippets != nil {
		go func() {
			ticker := time.NewTicker(SnippetRefreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := b.snippets.Refresh(ctx); err == nil {
						notify()
					}
				}
			}
		}()
	}

	return nil
}

// Describe names the active source for log and status lines.
func (b *Backend) Describe() string {
	switch {
	case b.client != nil:
		return "server"
	case b.workspace != nil:
		return "workspace " + b.workspace.Path()
	default:
		return "none"
	}
}
