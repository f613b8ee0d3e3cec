package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/analysis"
)

// Hover handles textDocument/hover requests.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Query == nil {
		return nil, nil //nolint:nilnil
	}

	pos := nqls.PositionToLexer(params.Position.Line, params.Position.Character)

	cc := analysis.GetCursorContext(doc.Analysis, pos)
	if cc.Tag == nil {
		return nil, nil //nolint:nilnil
	}

	content := s.hoverContent(ctx, cc)
	if content == "" {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: rangePtr(spanToRange(cc.Tag.Span)),
	}, nil
}

// hoverContent generates hover markdown for the tag under the cursor.
func (s *Server) hoverContent(ctx context.Context, cc *analysis.CursorContext) string {
	switch cc.Tag.Kind {
	case nqls.TagSnippet:
		if cc.Snippet == nil {
			return fmt.Sprintf("**Snippet:** `%s` (unknown)", cc.Tag.Name)
		}

		return hoverSnippet(cc.Snippet)

	case nqls.TagQuestion:
		return s.hoverQuestion(ctx, cc.Tag.QuestionID)

	case nqls.TagVariable:
		return fmt.Sprintf("**Variable:** `%s`", cc.Tag.Name)

	default:
		return ""
	}
}

// hoverSnippet generates hover content for a snippet reference.
func hoverSnippet(snippet *nqls.Snippet) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("**Snippet:** `%s`\n\n", snippet.Name))

	if snippet.Description != "" {
		b.WriteString(snippet.Description + "\n\n")
	}

	b.WriteString("```sql\n")
	b.WriteString(strings.TrimSpace(snippet.Content))
	b.WriteString("\n```")

	return b.String()
}

// hoverQuestion generates hover content for a saved question reference,
// listing its result columns.
func (s *Server) hoverQuestion(ctx context.Context, id int) string {
	if s.sources.Questions == nil {
		return fmt.Sprintf("**Question:** #%d", id)
	}

	q, ok := s.sources.Questions.FetchQuestion(ctx, id)
	if !ok {
		return fmt.Sprintf("**Question:** #%d (unavailable)", id)
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("**Question:** %s (#%d)\n\n", q.Name, id))

	if len(q.ResultColumns) > 0 {
		b.WriteString("| Column | Type |\n|---|---|\n")

		for _, col := range q.ResultColumns {
			b.WriteString(fmt.Sprintf("| `%s` | %s |\n", col.Name, col.BaseType))
		}
	}

	return b.String()
}
