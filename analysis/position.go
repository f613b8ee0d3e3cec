package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/nqls"
)

// CursorContext describes what the cursor is on.
type CursorContext struct {
	// Tag is the complete tag under the cursor (nil if none).
	Tag *nqls.Tag
	// InUnclosed is true if the cursor follows a dangling {{ on the same line.
	InUnclosed bool
	// Snippet is the referenced snippet when Tag is a known snippet reference.
	Snippet *nqls.Snippet
}

// GetCursorContext returns context about a cursor position.
func GetCursorContext(q *AnalyzedQuery, pos lexer.Position) *CursorContext {
	ctx := &CursorContext{}

	if q == nil || q.Query == nil {
		return ctx
	}

	ctx.Tag = q.Query.TagAt(pos)

	if ctx.Tag != nil && ctx.Tag.Kind == nqls.TagSnippet {
		if s, ok := q.Snippets[ctx.Tag.Name]; ok {
			ctx.Snippet = &s
		}
	}

	for _, span := range q.Query.Unclosed {
		if span.Start.Line == pos.Line && span.Start.Column <= pos.Column {
			ctx.InUnclosed = true
		}
	}

	return ctx
}
