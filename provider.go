package nqls

import "context"

// Candidate is a single completion suggestion.
type Candidate struct {
	// Name is the token inserted when the candidate is accepted.
	Name string

	// DisplayValue is what the popup shows for the candidate.
	DisplayValue string

	// Meta is a short annotation, e.g. "Orders :type/Integer".
	Meta string
}

// Snippet is a named, reusable fragment of query text.
type Snippet struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Content     string `yaml:"content"`
}

// Column describes one result column of a saved question.
type Column struct {
	Name     string `yaml:"name"`
	BaseType string `yaml:"base_type"`
}

// Question is a saved question whose result columns can be referenced from
// a native query via {{#id}}.
type Question struct {
	ID            int      `yaml:"id"`
	Name          string   `yaml:"name"`
	ResultColumns []Column `yaml:"columns"`
}

// SchemaEntry is one schema completion: a table or field name plus a type
// annotation supplied by the server.
type SchemaEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// SchemaProvider looks up tables and fields whose names match a prefix.
type SchemaProvider interface {
	Lookup(ctx context.Context, prefix string) ([]SchemaEntry, error)
}

// QuestionStore fetches saved questions by id.
// A failed fetch reports false rather than an error; callers treat the
// question as absent.
type QuestionStore interface {
	FetchQuestion(ctx context.Context, id int) (*Question, bool)
}

// QueryContext exposes the saved questions referenced by the query being
// edited.
type QueryContext interface {
	ReferencedQuestionIDs() []int
}

// SnippetLister returns the current snippet list. It is refreshed
// independently of completion requests.
type SnippetLister interface {
	Snippets() []Snippet
}

// QuestionIDs is a fixed QueryContext.
type QuestionIDs []int

// ReferencedQuestionIDs implements QueryContext.
func (ids QuestionIDs) ReferencedQuestionIDs() []int {
	return ids
}

// StaticSnippets is a fixed SnippetLister.
type StaticSnippets []Snippet

// Snippets implements SnippetLister.
func (s StaticSnippets) Snippets() []Snippet {
	return s
}
