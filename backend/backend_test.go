package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/backend"
)

func TestOpen_NoSource(t *testing.T) {
	t.Parallel()

	_, err := backend.Open(context.Background(), &nqls.Config{}, zap.NewNop())
	assert.ErrorIs(t, err, nqls.ErrNoSource)
}

func TestOpen_Workspace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ws.yaml"), []byte("schema:\n  - name: ORDERS\n    type: Table\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nqls.yaml"), []byte("workspace: ws.yaml\n"), 0o600))

	cfg, err := nqls.LoadConfig(dir)
	require.NoError(t, err)

	b, err := backend.Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, b.QuestionURL)
	assert.Contains(t, b.Describe(), "ws.yaml")

	entries, err := b.Schema.Lookup(context.Background(), "ord")
	require.NoError(t, err)
	assert.Equal(t, []nqls.SchemaEntry{{Name: "ORDERS", Type: "Table"}}, entries)
}

func TestOpen_Server(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/native-query-snippet", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))

		_, _ = w.Write([]byte(`[{"name":"active users","content":"1=1"}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &nqls.Config{
		Server:    nqls.ServerConfig{URL: srv.URL, Database: 1, APIKey: "k", Session: "ignored"},
		Workspace: "unused.yaml",
	}

	b, err := backend.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "server", b.Describe())
	assert.Equal(t, srv.URL+"/question/5", b.QuestionURL(5))
	require.Len(t, b.Snippets.Snippets(), 1)
	assert.Equal(t, "active users", b.Snippets.Snippets()[0].Name)
}

func TestOpen_InvalidServerURL(t *testing.T) {
	t.Parallel()

	_, err := backend.Open(context.Background(), &nqls.Config{Server: nqls.ServerConfig{URL: "::bad"}}, nil)
	assert.Error(t, err)
}
