package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
)

// DocumentLink handles textDocument/documentLink requests.
// Returns links for saved question references that open the question on
// the BI server.
func (s *Server) DocumentLink(_ context.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	s.logger.Debug("DocumentLink",
		zap.String("uri", string(params.TextDocument.URI)))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Query == nil || s.sources.QuestionURL == nil {
		return nil, nil
	}

	var links []protocol.DocumentLink

	for _, tag := range doc.Analysis.Query.Tags {
		if tag.Kind != nqls.TagQuestion {
			continue
		}

		links = append(links, protocol.DocumentLink{
			Range:   spanToRange(tag.Span),
			Target:  protocol.DocumentURI(s.sources.QuestionURL(tag.QuestionID)),
			Tooltip: fmt.Sprintf("Open question #%d", tag.QuestionID),
		})
	}

	return links, nil
}
