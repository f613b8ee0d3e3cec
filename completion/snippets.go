package completion

import (
	"strings"

	"github.com/rlch/nqls"
)

// CompleteSnippets returns a candidate for every snippet whose name contains
// filter, compared case-insensitively. Matching is by substring, not prefix.
func CompleteSnippets(filter string, snippets []nqls.Snippet) []nqls.Candidate {
	lower := strings.ToLower(filter)
	out := make([]nqls.Candidate, 0, len(snippets))

	for _, snippet := range snippets {
		if !strings.Contains(strings.ToLower(snippet.Name), lower) {
			continue
		}

		out = append(out, nqls.Candidate{
			Name:         snippet.Name,
			DisplayValue: snippet.Name,
		})
	}

	return out
}

// Dedupe drops candidates whose Name already appeared earlier in the slice.
// Names are compared case-sensitively.
func Dedupe(candidates []nqls.Candidate) []nqls.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]nqls.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if seen[c.Name] {
			continue
		}

		seen[c.Name] = true
		out = append(out, c)
	}

	return out
}
