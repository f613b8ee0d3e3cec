package nqls

import (
	"strconv"
	"strings"
)

const snippetTagPrefix = "snippet:"

// ParseQuery splits native query text into template tags.
// Unrecognized text between braces is treated as a variable name; malformed
// input never fails, only lexer errors are returned.
func ParseQuery(text string) (*Query, error) {
	tokens, err := LexTags(text)
	if err != nil {
		return nil, err
	}

	q := &Query{Text: text}

	for _, tok := range tokens {
		switch tok.Type {
		case TokenTag:
			tag := parseTag(tok.Value)
			tag.Span = tokenSpan(tok)
			q.Tags = append(q.Tags, tag)
		case TokenOpen:
			q.Unclosed = append(q.Unclosed, tokenSpan(tok))
		}
	}

	return q, nil
}

// MustParseQuery is like ParseQuery but panics on error.
func MustParseQuery(text string) *Query {
	q, err := ParseQuery(text)
	if err != nil {
		panic(err)
	}

	return q
}

// parseTag classifies the inside of a {{...}} token.
func parseTag(raw string) *Tag {
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "{{"), "}}"))
	tag := &Tag{Kind: TagVariable, Name: inner, Raw: raw}

	switch {
	case strings.HasPrefix(inner, snippetTagPrefix):
		tag.Kind = TagSnippet
		tag.Name = strings.TrimSpace(strings.TrimPrefix(inner, snippetTagPrefix))

	case strings.HasPrefix(inner, "#"):
		id, slug, ok := parseQuestionRef(inner[1:])
		if ok {
			tag.Kind = TagQuestion
			tag.QuestionID = id
			tag.Name = slug
		}
	}

	return tag
}

// parseQuestionRef parses "42" or "42-orders-by-month".
func parseQuestionRef(ref string) (int, string, bool) {
	digits := ref
	slug := ""

	if i := strings.IndexByte(ref, '-'); i >= 0 {
		digits, slug = ref[:i], ref[i+1:]
	}

	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, "", false
	}

	return id, slug, true
}
