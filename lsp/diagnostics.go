package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls/analysis"
)

// publishDiagnostics sends the document's tag diagnostics to the client.
// An empty list is still sent so fixed problems disappear.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	if doc.Analysis == nil {
		return
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(doc.Analysis.Diagnostics))
	for _, d := range doc.Analysis.Diagnostics {
		diagnostics = append(diagnostics, toProtocolDiagnostic(d))
	}

	s.logger.Debug("Publishing diagnostics",
		zap.String("uri", string(doc.URI)),
		zap.Int("count", len(diagnostics)))

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version), //nolint:gosec // LSP version numbers are always non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("Failed to publish diagnostics", zap.Error(err))
	}
}

func toProtocolDiagnostic(d analysis.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    spanToRange(d.Span),
		Severity: protocolSeverity(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}

	// Empty tags render to nothing; editors fade unnecessary code.
	if d.Code == "empty-tag" {
		out.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
	}

	return out
}

func protocolSeverity(sev analysis.DiagnosticSeverity) protocol.DiagnosticSeverity {
	switch sev {
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case analysis.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	case analysis.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}
