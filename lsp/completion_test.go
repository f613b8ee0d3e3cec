package lsp_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls/completion"
	"github.com/rlch/nqls/lsp"
)

func complete(t *testing.T, server *lsp.Server, line, char uint32) *protocol.CompletionList {
	t.Helper()

	result, err := server.Completion(context.Background(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	return result
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}

	return out
}

func TestServer_Completion_Schema(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	openDoc(t, server, "SELECT * FROM OR")

	result := complete(t, server, 0, 16)

	assert.True(t, result.IsIncomplete)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "ORDERS", item.Label)
	assert.Equal(t, "ORDERS", item.InsertText)
	assert.Equal(t, "Table", item.Detail)
	assert.Equal(t, protocol.CompletionItemKindClass, item.Kind)
}

func TestServer_Completion_QuestionColumnsFirstAndDeduped(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	openDoc(t, server, "SELECT T\nFROM {{#1}}")

	result := complete(t, server, 0, 8)

	// The question's TOTAL wins over the schema's TOTAL; TAX comes from the schema.
	assert.Equal(t, []string{"TOTAL", "CREATED_AT", "TAX"}, labels(result.Items))
	assert.Equal(t, "Orders :type/Float", result.Items[0].Detail)

	for i := 1; i < len(result.Items); i++ {
		assert.Less(t, result.Items[i-1].SortText, result.Items[i].SortText)
	}
}

func TestServer_Completion_SnippetReference(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	openDoc(t, server, "SELECT *\nWHERE {{snippet: sum")

	result := complete(t, server, 1, 20)

	assert.False(t, result.IsIncomplete)
	assert.Equal(t, []string{"Orders Summary"}, labels(result.Items))
	assert.Equal(t, protocol.CompletionItemKindSnippet, result.Items[0].Kind)
}

func TestServer_Completion_ConcurrentRequestsKeepTheirState(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	openDoc(t, server, "SELECT * FROM OR\nWHERE {{snippet: sum")

	request := func(line, char uint32) *protocol.CompletionList {
		result, err := server.Completion(context.Background(), &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
				Position:     protocol.Position{Line: line, Character: char},
			},
		})
		assert.NoError(t, err)

		return result
	}

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			if result := request(0, 16); assert.NotNil(t, result) {
				assert.True(t, result.IsIncomplete)

				for _, item := range result.Items {
					assert.NotEqual(t, protocol.CompletionItemKindSnippet, item.Kind)
				}
			}
		}()

		go func() {
			defer wg.Done()

			if result := request(1, 20); assert.NotNil(t, result) {
				assert.False(t, result.IsIncomplete)

				for _, item := range result.Items {
					assert.Equal(t, protocol.CompletionItemKindSnippet, item.Kind)
				}
			}
		}()
	}

	wg.Wait()
}

func TestServer_Completion_Filter(t *testing.T) {
	t.Parallel()

	hide, err := completion.CompileFilter(`meta == "Table"`)
	require.NoError(t, err)

	server, _ := newTestServer(t, lsp.WithFilter(hide))
	openDoc(t, server, "SELECT * FROM OR")

	assert.Empty(t, complete(t, server, 0, 16).Items)
}

func TestServer_Completion_NoDocument(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	result, err := server.Completion(context.Background(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.sql"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestServer_Completion_NoSources(t *testing.T) {
	t.Parallel()

	server := lsp.NewServer(&mockClient{}, zap.NewNop(), lsp.Sources{})
	openDoc(t, server, "SELECT {{snippet: a")

	assert.Empty(t, complete(t, server, 0, 19).Items)
}
