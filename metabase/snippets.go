package metabase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// SnippetList is a nqls.SnippetLister backed by the server. The list is
// replaced on Refresh and read without blocking by completion requests.
type SnippetList struct {
	client *Client

	mu       sync.RWMutex
	snippets []nqls.Snippet
}

// NewSnippetList returns an empty list. Call Refresh to populate it.
func NewSnippetList(client *Client) *SnippetList {
	return &SnippetList{client: client}
}

// Refresh reloads the snippets. On failure the previous list is kept.
func (l *SnippetList) Refresh(ctx context.Context) error {
	snippets, err := l.client.LoadSnippets(ctx)
	if err != nil {
		l.client.logger.Warn("Failed to refresh snippets", zap.Error(err))

		return err
	}

	l.mu.Lock()
	l.snippets = snippets
	l.mu.Unlock()

	return nil
}

// Snippets implements nqls.SnippetLister.
func (l *SnippetList) Snippets() []nqls.Snippet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.snippets
}
