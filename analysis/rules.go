package analysis

import (
	"strings"

	"github.com/rlch/nqls"
)

// Rule represents an analysis check.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the result.
	Run func(q *AnalyzedQuery)
}

// DefaultRules returns all built-in rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		unclosedTagRule,

		// Warning-level checks.
		unknownSnippetRule,
		emptyTagRule,
	}
}

func report(q *AnalyzedQuery, severity DiagnosticSeverity, code string, span nqls.Span, msg string) {
	q.Diagnostics = append(q.Diagnostics, Diagnostic{
		Span:     span,
		Severity: severity,
		Message:  msg,
		Code:     code,
		Source:   Source,
	})
}

// ----------------------------------------------------------------------------
// Rule: unclosed-tag
// ----------------------------------------------------------------------------

var unclosedTagRule = &Rule{
	Name:     "unclosed-tag",
	Doc:      "Reports {{ openers without a matching }}.",
	Severity: SeverityError,
	Run:      checkUnclosedTags,
}

func checkUnclosedTags(q *AnalyzedQuery) {
	if q.Query == nil {
		return
	}

	for _, span := range q.Query.Unclosed {
		report(q, SeverityError, "unclosed-tag", span, "unclosed template tag: missing }}")
	}
}

// ----------------------------------------------------------------------------
// Rule: unknown-snippet
// ----------------------------------------------------------------------------

var unknownSnippetRule = &Rule{
	Name:     "unknown-snippet",
	Doc:      "Reports snippet references that match no known snippet.",
	Severity: SeverityWarning,
	Run:      checkUnknownSnippets,
}

func checkUnknownSnippets(q *AnalyzedQuery) {
	// Without a snippet list nothing can be checked.
	if q.Query == nil || q.Snippets == nil {
		return
	}

	for _, tag := range q.Query.Tags {
		if tag.Kind != nqls.TagSnippet || tag.Name == "" {
			continue
		}

		if _, ok := q.Snippets[tag.Name]; !ok {
			report(q, SeverityWarning, "unknown-snippet", tag.Span, "unknown snippet: "+tag.Name)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: empty-tag
// ----------------------------------------------------------------------------

var emptyTagRule = &Rule{
	Name:     "empty-tag",
	Doc:      "Reports tags with nothing between the braces.",
	Severity: SeverityWarning,
	Run:      checkEmptyTags,
}

func checkEmptyTags(q *AnalyzedQuery) {
	if q.Query == nil {
		return
	}

	for _, tag := range q.Query.Tags {
		switch {
		case tag.Kind == nqls.TagVariable && strings.TrimSpace(tag.Name) == "":
			report(q, SeverityWarning, "empty-tag", tag.Span, "empty template tag")
		case tag.Kind == nqls.TagSnippet && tag.Name == "":
			report(q, SeverityWarning, "empty-tag", tag.Span, "snippet reference has no name")
		}
	}
}
