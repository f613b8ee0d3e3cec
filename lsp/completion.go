package lsp

import (
	"context"
	"fmt"
	"unicode"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/completion"
)

// Completion handles textDocument/completion requests.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	line := int(params.Position.Line)
	column := int(params.Position.Character)
	lineText := completion.LineAt(doc.Content, line)

	req := completion.Request{
		Text:   doc.Content,
		Line:   line,
		Column: column,
		Prefix: extractPrefix(linePrefix(lineText, column)),
	}

	// A nil *nqls.Query must not become a non-nil interface.
	if doc.Analysis != nil && doc.Analysis.Query != nil {
		req.Query = doc.Analysis.Query
	}

	candidates := doc.Engine.Complete(ctx, req)
	candidates = completion.Dedupe(s.filter.Apply(candidates))

	// The engine's selector is shared by concurrent requests on this
	// document; derive this request's state from its own line.
	state := completion.StateNormal

	filter, inSnippet := completion.SnippetNameAt(lineText, column)
	if inSnippet {
		state = completion.StateSnippet
	}
	s.logger.Debug("Completion result",
		zap.Stringer("state", state),
		zap.String("prefix", req.Prefix),
		zap.String("snippet_filter", filter),
		zap.Int("candidates", len(candidates)))

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for i, c := range candidates {
		items = append(items, completionItem(c, state, i))
	}

	// Outside snippet references results depend on the prefix, so clients
	// must ask again as the user types; the engine cache absorbs the burst.
	return &protocol.CompletionList{
		IsIncomplete: state == completion.StateNormal,
		Items:        items,
	}, nil
}

// completionItem converts a candidate. SortText keeps the engine's order:
// question columns before schema entries.
func completionItem(c nqls.Candidate, state completion.State, index int) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      c.DisplayValue,
		InsertText: c.Name,
		FilterText: c.Name,
		Detail:     c.Meta,
		SortText:   fmt.Sprintf("%05d", index),
		Kind:       protocol.CompletionItemKindField,
	}

	if item.Label == "" {
		item.Label = c.Name
	}

	switch {
	case state == completion.StateSnippet:
		item.Kind = protocol.CompletionItemKindSnippet
		item.Detail = "snippet"
	case c.Meta == "Table":
		item.Kind = protocol.CompletionItemKindClass
	}

	return item
}

// linePrefix returns the first column runes of line.
func linePrefix(line string, column int) string {
	n := 0

	for i := range line {
		if n == column {
			return line[:i]
		}

		n++
	}

	return line
}

// extractPrefix extracts the identifier prefix being typed.
func extractPrefix(text string) string {
	runes := []rune(text)
	start := len(runes)

	for i := len(runes) - 1; i >= 0; i-- {
		c := runes[i]
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			start = i
		} else {
			break
		}
	}

	return string(runes[start:])
}
