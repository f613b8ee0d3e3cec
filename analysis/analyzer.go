package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/nqls"
)

// Analyzer performs analysis on native query documents.
type Analyzer struct {
	// snippets resolves {{snippet: ...}} references.
	// Can be nil, in which case snippet references are not checked.
	snippets nqls.SnippetLister

	// rules is the set of checks to run.
	rules []*Rule
}

// NewAnalyzer creates a new analyzer with default rules.
func NewAnalyzer(snippets nqls.SnippetLister) *Analyzer {
	return &Analyzer{
		snippets: snippets,
		rules:    DefaultRules(),
	}
}

// NewAnalyzerWithRules creates an analyzer with custom rules.
func NewAnalyzerWithRules(snippets nqls.SnippetLister, rules []*Rule) *Analyzer {
	return &Analyzer{
		snippets: snippets,
		rules:    rules,
	}
}

// Analyze parses and analyzes a document.
func (a *Analyzer) Analyze(path, text string) *AnalyzedQuery {
	result := &AnalyzedQuery{
		Path:        path,
		Diagnostics: []Diagnostic{},
	}

	query, err := nqls.ParseQuery(text)
	if err != nil {
		result.ParseError = err
		result.Diagnostics = append(result.Diagnostics, parseErrorToDiagnostic(err))

		return result
	}

	result.Query = query

	if a.snippets != nil {
		result.Snippets = make(map[string]nqls.Snippet)
		for _, s := range a.snippets.Snippets() {
			result.Snippets[s.Name] = s
		}
	}

	for _, rule := range a.rules {
		rule.Run(result)
	}

	return result
}

// parseErrorToDiagnostic converts a lexer error to a diagnostic.
func parseErrorToDiagnostic(err error) Diagnostic {
	span := nqls.Span{}
	msg := err.Error()

	type participleError interface {
		Position() lexer.Position
		Message() string
	}

	if pe, ok := err.(participleError); ok { //nolint:errorlint
		pos := pe.Position()
		span = nqls.Span{Start: pos, End: pos}
		msg = pe.Message()
	}

	return Diagnostic{
		Span:     span,
		Severity: SeverityError,
		Message:  msg,
		Code:     "parse-error",
		Source:   Source,
	}
}
