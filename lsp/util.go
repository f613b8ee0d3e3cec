package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/rlch/nqls"
)

// spanToRange converts a nqls.Span to an LSP protocol.Range.
// Spans are 1-based with an inclusive end; LSP ranges are 0-based with an
// exclusive end, so the end column carries over unchanged.
func spanToRange(span nqls.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)), //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.End.Column)), //nolint:gosec // G115: values are small column numbers
		},
	}
}

func rangePtr(r protocol.Range) *protocol.Range {
	return &r
}
