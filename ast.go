// Package nqls provides completion and analysis for native queries written
// against a business-intelligence server.
package nqls

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// Span is a source range. Lines and columns are 1-based, columns count runes.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Contains reports whether pos falls within the span (end inclusive).
func (s Span) Contains(pos lexer.Position) bool {
	if pos.Line < s.Start.Line || pos.Line > s.End.Line {
		return false
	}

	if pos.Line == s.Start.Line && pos.Column < s.Start.Column {
		return false
	}

	if pos.Line == s.End.Line && pos.Column > s.End.Column {
		return false
	}

	return true
}

// TagKind identifies what a template tag refers to.
type TagKind int

// Template tag kinds.
const (
	// TagVariable is a query parameter: {{name}}.
	TagVariable TagKind = iota
	// TagSnippet is a snippet reference: {{snippet: name}}.
	TagSnippet
	// TagQuestion is a saved question reference: {{#42}} or {{#42-orders}}.
	TagQuestion
)

func (k TagKind) String() string {
	switch k {
	case TagVariable:
		return "variable"
	case TagSnippet:
		return "snippet"
	case TagQuestion:
		return "question"
	default:
		return "tag(" + strconv.Itoa(int(k)) + ")"
	}
}

// Tag is a {{...}} template tag in query text.
type Tag struct {
	Kind TagKind

	// Name is the variable name, the snippet name, or the question slug.
	Name string

	// QuestionID is set for TagQuestion.
	QuestionID int

	// Raw is the tag text including braces.
	Raw string

	Span Span
}

// Query is native query text split into its template tags.
type Query struct {
	Text string
	Tags []*Tag

	// Unclosed holds the positions of "{{" openers with no matching "}}".
	Unclosed []Span
}

// ReferencedQuestionIDs returns the ids of referenced saved questions in
// order of first appearance, without duplicates.
func (q *Query) ReferencedQuestionIDs() []int {
	var ids []int

	seen := make(map[int]bool)

	for _, tag := range q.Tags {
		if tag.Kind != TagQuestion || seen[tag.QuestionID] {
			continue
		}

		seen[tag.QuestionID] = true
		ids = append(ids, tag.QuestionID)
	}

	return ids
}

// SnippetNames returns the referenced snippet names in order of first
// appearance, without duplicates.
func (q *Query) SnippetNames() []string {
	var names []string

	seen := make(map[string]bool)

	for _, tag := range q.Tags {
		if tag.Kind != TagSnippet || seen[tag.Name] {
			continue
		}

		seen[tag.Name] = true
		names = append(names, tag.Name)
	}

	return names
}

// TagAt returns the tag covering pos, or nil.
func (q *Query) TagAt(pos lexer.Position) *Tag {
	for _, tag := range q.Tags {
		if tag.Span.Contains(pos) {
			return tag
		}
	}

	return nil
}

// PositionToLexer converts 0-based editor coordinates to a lexer position.
func PositionToLexer(line, character uint32) lexer.Position {
	return lexer.Position{
		Line:   int(line) + 1,
		Column: int(character) + 1,
	}
}
