package editor

import (
	"strings"
	"unicode"
)

// Buffer is a multi-line text buffer with a single cursor.
// Rows and columns are 0-based; columns count runes.
type Buffer struct {
	lines [][]rune
	row   int
	col   int
}

// NewBuffer returns a buffer holding text with the cursor at its end.
func NewBuffer(text string) *Buffer {
	b := &Buffer{}

	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, []rune(line))
	}

	b.row = len(b.lines) - 1
	b.col = len(b.lines[b.row])

	return b
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	parts := make([]string, len(b.lines))
	for i, line := range b.lines {
		parts[i] = string(line)
	}

	return strings.Join(parts, "\n")
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() (row, col int) {
	return b.row, b.col
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns row as a string, or "" if out of range.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}

	return string(b.lines[row])
}

// SetCursor moves the cursor, clamping to the buffer.
func (b *Buffer) SetCursor(row, col int) {
	b.row = clamp(row, 0, len(b.lines)-1)
	b.col = clamp(col, 0, len(b.lines[b.row]))
}

// Insert inserts s at the cursor. Newlines split the line.
func (b *Buffer) Insert(s string) {
	for _, r := range s {
		if r == '\n' {
			b.Newline()

			continue
		}

		line := b.lines[b.row]
		next := make([]rune, 0, len(line)+1)
		next = append(next, line[:b.col]...)
		next = append(next, r)
		next = append(next, line[b.col:]...)
		b.lines[b.row] = next
		b.col++
	}
}

// Newline splits the current line at the cursor.
func (b *Buffer) Newline() {
	line := b.lines[b.row]
	head := append([]rune(nil), line[:b.col]...)
	tail := append([]rune(nil), line[b.col:]...)

	b.lines[b.row] = head
	b.lines = append(b.lines[:b.row+1], append([][]rune{tail}, b.lines[b.row+1:]...)...)
	b.row++
	b.col = 0
}

// Backspace deletes the rune before the cursor, joining lines at column 0.
// It reports whether anything was deleted.
func (b *Buffer) Backspace() bool {
	if b.col > 0 {
		line := b.lines[b.row]
		b.lines[b.row] = append(line[:b.col-1:b.col-1], line[b.col:]...)
		b.col--

		return true
	}

	if b.row == 0 {
		return false
	}

	prev := b.lines[b.row-1]
	b.col = len(prev)
	b.lines[b.row-1] = append(prev, b.lines[b.row]...)
	b.lines = append(b.lines[:b.row], b.lines[b.row+1:]...)
	b.row--

	return true
}

// Move shifts the cursor by rows and columns. Horizontal moves wrap across
// line ends.
func (b *Buffer) Move(dRow, dCol int) {
	switch {
	case dRow != 0:
		b.SetCursor(b.row+dRow, b.col)
	case dCol < 0 && b.col == 0 && b.row > 0:
		b.row--
		b.col = len(b.lines[b.row])
	case dCol > 0 && b.col == len(b.lines[b.row]) && b.row < len(b.lines)-1:
		b.row++
		b.col = 0
	default:
		b.SetCursor(b.row, b.col+dCol)
	}
}

// Home moves the cursor to the start of the line.
func (b *Buffer) Home() {
	b.col = 0
}

// End moves the cursor to the end of the line.
func (b *Buffer) End() {
	b.col = len(b.lines[b.row])
}

// WordBeforeCursor returns the identifier being typed at the cursor.
func (b *Buffer) WordBeforeCursor() string {
	line := b.lines[b.row]
	start := b.col

	for start > 0 && isWordRune(line[start-1]) {
		start--
	}

	return string(line[start:b.col])
}

// ReplaceBeforeCursor replaces the n runes before the cursor with s.
func (b *Buffer) ReplaceBeforeCursor(n int, s string) {
	n = min(n, b.col)

	line := b.lines[b.row]
	b.lines[b.row] = append(line[:b.col-n:b.col-n], line[b.col:]...)
	b.col -= n

	b.Insert(s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
