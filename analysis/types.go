// Package analysis checks native query text for template tag problems.
package analysis

import (
	"github.com/rlch/nqls"
)

// AnalyzedQuery holds analysis results for a single document.
type AnalyzedQuery struct {
	// Path is the document path (URI in LSP terms).
	Path string

	// Query is the parsed query. Nil if lexing failed.
	Query *nqls.Query

	// ParseError holds the lexer error if lexing failed.
	ParseError error

	// Diagnostics contains all errors and warnings found during analysis.
	Diagnostics []Diagnostic

	// Snippets are the snippets known when the query was analyzed, by name.
	Snippets map[string]nqls.Snippet
}

// Diagnostic represents an error or warning found during analysis.
type Diagnostic struct {
	Span     nqls.Span
	Severity DiagnosticSeverity
	Message  string
	Code     string // e.g., "unknown-snippet", "unclosed-tag"
	Source   string // "nqls"
}

// DiagnosticSeverity indicates the severity of a diagnostic.
type DiagnosticSeverity int

// Diagnostic severity constants.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Source is the diagnostic source reported to clients.
const Source = "nqls"
