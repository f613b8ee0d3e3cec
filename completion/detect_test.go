package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlch/nqls/completion"
)

func TestSnippetNameAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		column   int
		wantName string
		wantOK   bool
	}{
		{name: "partial name", line: "SELECT {{snippet: fo", column: 20, wantName: "fo", wantOK: true},
		{name: "closed reference", line: "SELECT {{snippet: foo}} x", column: 25, wantOK: false},
		{name: "cursor just after close", line: "SELECT {{snippet: foo}}", column: 23, wantOK: false},
		{name: "cursor inside closed reference", line: "SELECT {{snippet: foo}}", column: 21, wantName: "foo", wantOK: true},
		{name: "empty name", line: "{{snippet:", column: 10, wantName: "", wantOK: true},
		{name: "spaces around keyword", line: "{{  snippet:   ab", column: 17, wantName: "ab", wantOK: true},
		{name: "name with spaces", line: "{{snippet: Orders Sum", column: 21, wantName: "Orders Sum", wantOK: true},
		{name: "variable tag", line: "WHERE id = {{id", column: 15, wantOK: false},
		{name: "plain text", line: "SELECT * FROM orders", column: 20, wantOK: false},
		{name: "text after cursor ignored", line: "{{snippet: ab}} tail", column: 13, wantName: "ab", wantOK: true},
		{name: "column zero", line: "{{snippet: ab", column: 0, wantOK: false},
		{name: "column past end", line: "{{snippet: ab", column: 99, wantName: "ab", wantOK: true},
		{name: "multibyte runes", line: "-- é {{snippet: ü", column: 17, wantName: "ü", wantOK: true},
		{name: "case sensitive keyword", line: "{{Snippet: ab", column: 13, wantOK: false},
		// The leftmost "{{" that starts a match wins, so an earlier open
		// reference swallows a later one.
		{name: "earlier open reference", line: "{{snippet: a {{snippet: b", column: 25, wantName: "a {{snippet: b", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name, ok := completion.SnippetNameAt(tt.line, tt.column)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSelector(t *testing.T) {
	t.Parallel()

	s := completion.NewSelector()

	state, filter := s.State()
	assert.Equal(t, completion.StateNormal, state)
	assert.Empty(t, filter)

	state, filter = s.Update("SELECT {{snippet: fo", 20)
	assert.Equal(t, completion.StateSnippet, state)
	assert.Equal(t, "fo", filter)

	// The cursor moving back before the reference leaves snippet mode.
	state, filter = s.Update("SELECT {{snippet: fo", 6)
	assert.Equal(t, completion.StateNormal, state)
	assert.Empty(t, filter)

	state, _ = s.State()
	assert.Equal(t, completion.StateNormal, state)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "normal", completion.StateNormal.String())
	assert.Equal(t, "snippet", completion.StateSnippet.String())
	assert.Equal(t, "unknown", completion.State(42).String())
}
