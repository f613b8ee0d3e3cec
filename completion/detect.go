package completion

import "regexp"

// snippetRefPattern matches an open snippet reference ending at the cursor.
// A "}" in the name means the reference is already closed.
var snippetRefPattern = regexp.MustCompile(`\{\{\s*snippet:\s*([^}]*)$`)

// SnippetNameAt reports whether the cursor at column (0-based, in runes) of
// line sits inside a {{snippet: ...}} reference, and returns the partial
// snippet name typed so far. Text after the cursor is ignored.
func SnippetNameAt(line string, column int) (string, bool) {
	m := snippetRefPattern.FindStringSubmatch(linePrefix(line, column))
	if m == nil {
		return "", false
	}

	return m[1], true
}

// linePrefix returns the first column runes of line.
func linePrefix(line string, column int) string {
	if column <= 0 {
		return ""
	}

	n := 0

	for i := range line {
		if n == column {
			return line[:i]
		}

		n++
	}

	return line
}
