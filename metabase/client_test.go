package metabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/metabase"
)

func newServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newClient(t *testing.T, srv *httptest.Server, opts ...metabase.Option) *metabase.Client {
	t.Helper()

	opts = append([]metabase.Option{metabase.WithRetryMax(0), metabase.WithHTTPClient(srv.Client())}, opts...)

	c, err := metabase.NewClient(srv.URL+"/", 3, opts...)
	require.NoError(t, err)

	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := metabase.NewClient("not a url", 1)
	assert.Error(t, err)
}

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/database/3/autocomplete_suggestions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OR DE", r.URL.Query().Get("prefix"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		_, _ = w.Write([]byte(`[["ORDERS","Table"],["ORDER_ID","ORDERS :type/Integer"],[]]`))
	})

	c := newClient(t, newServer(t, mux), metabase.WithAPIKey("secret"))

	got, err := c.Lookup(context.Background(), "OR DE")
	require.NoError(t, err)

	want := []nqls.SchemaEntry{
		{Name: "ORDERS", Type: "Table"},
		{Name: "ORDER_ID", Type: "ORDERS :type/Integer"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Lookup_ErrorStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/database/3/autocomplete_suggestions", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	c := newClient(t, newServer(t, mux))

	_, err := c.Lookup(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, metabase.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_FetchQuestion(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/card/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "tok", r.Header.Get("X-Metabase-Session"))

		if r.PathValue("id") != "1" {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte(`{
			"id": 1,
			"name": "Orders",
			"result_metadata": [
				{"name": "TOTAL", "base_type": "type/Float", "display_name": "Total"},
				{"name": "CREATED_AT", "base_type": "type/DateTime"}
			]
		}`))
	})

	c := newClient(t, newServer(t, mux), metabase.WithSession("tok"))
	ctx := context.Background()

	q, ok := c.FetchQuestion(ctx, 1)
	require.True(t, ok)

	want := &nqls.Question{
		ID:   1,
		Name: "Orders",
		ResultColumns: []nqls.Column{
			{Name: "TOTAL", BaseType: "type/Float"},
			{Name: "CREATED_AT", BaseType: "type/DateTime"},
		},
	}

	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("FetchQuestion() mismatch (-want +got):\n%s", diff)
	}

	// Served from cache.
	_, ok = c.FetchQuestion(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, int32(1), hits.Load())

	c.ForgetQuestion(1)

	_, ok = c.FetchQuestion(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, int32(2), hits.Load())

	// Missing questions report false and are not cached.
	_, ok = c.FetchQuestion(ctx, 99)
	assert.False(t, ok)

	_, ok = c.FetchQuestion(ctx, 99)
	assert.False(t, ok)
	assert.Equal(t, int32(4), hits.Load())
}

func TestClient_FetchQuestion_CacheEviction(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/card/{id}", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)

		_, _ = w.Write([]byte(`{"name":"Q","result_metadata":[]}`))
	})

	c := newClient(t, newServer(t, mux), metabase.WithQuestionCacheSize(1))
	ctx := context.Background()

	c.FetchQuestion(ctx, 1)
	c.FetchQuestion(ctx, 2)
	c.FetchQuestion(ctx, 1)

	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_LoadSnippets(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/native-query-snippet", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name": "active users", "description": "users seen this month", "content": "last_seen > now() - interval '30 days'"},
			{"name": "old", "content": "1=1", "archived": true}
		]`))
	})

	c := newClient(t, newServer(t, mux))

	list := metabase.NewSnippetList(c)
	assert.Empty(t, list.Snippets())

	require.NoError(t, list.Refresh(context.Background()))

	want := []nqls.Snippet{{
		Name:        "active users",
		Description: "users seen this month",
		Content:     "last_seen > now() - interval '30 days'",
	}}

	if diff := cmp.Diff(want, list.Snippets()); diff != "" {
		t.Errorf("Snippets() mismatch (-want +got):\n%s", diff)
	}
}

func TestSnippetList_RefreshFailureKeepsList(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/native-query-snippet", func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			http.Error(w, "nope", http.StatusUnauthorized)

			return
		}

		_, _ = w.Write([]byte(`[{"name":"a","content":"1"}]`))
	})

	list := metabase.NewSnippetList(newClient(t, newServer(t, mux)))
	ctx := context.Background()

	require.NoError(t, list.Refresh(ctx))

	fail.Store(true)
	require.Error(t, list.Refresh(ctx))
	assert.Len(t, list.Snippets(), 1)
}

func TestClient_QuestionURL(t *testing.T) {
	t.Parallel()

	c, err := metabase.NewClient("https://bi.example.com/", 1)
	require.NoError(t, err)

	assert.Equal(t, "https://bi.example.com/question/42", c.QuestionURL(42))
}
