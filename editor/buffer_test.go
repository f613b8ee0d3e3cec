package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlch/nqls/editor"
)

func TestBuffer_InsertAndNewline(t *testing.T) {
	t.Parallel()

	b := editor.NewBuffer("SELECT")
	b.Insert(" *\nFROM t")

	assert.Equal(t, "SELECT *\nFROM t", b.Text())

	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 6, col)
	assert.Equal(t, 2, b.LineCount())
}

func TestBuffer_Backspace(t *testing.T) {
	t.Parallel()

	b := editor.NewBuffer("ab\ncd")
	b.SetCursor(1, 0)

	assert.True(t, b.Backspace())
	assert.Equal(t, "abcd", b.Text())

	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 2, col)

	b.SetCursor(0, 0)
	assert.False(t, b.Backspace())
}

func TestBuffer_Move(t *testing.T) {
	t.Parallel()

	b := editor.NewBuffer("abc\nde")
	b.SetCursor(0, 3)

	b.Move(0, 1)
	row, col := b.Cursor()
	assert.Equal(t, [2]int{1, 0}, [2]int{row, col})

	b.Move(0, -1)
	row, col = b.Cursor()
	assert.Equal(t, [2]int{0, 3}, [2]int{row, col})

	// Vertical moves clamp the column to the target line.
	b.Move(1, 0)
	row, col = b.Cursor()
	assert.Equal(t, [2]int{1, 2}, [2]int{row, col})

	b.Home()
	_, col = b.Cursor()
	assert.Equal(t, 0, col)

	b.End()
	_, col = b.Cursor()
	assert.Equal(t, 2, col)
}

func TestBuffer_WordBeforeCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"identifier", "SELECT * FROM ord_li", "ord_li"},
		{"after space", "SELECT ", ""},
		{"after dot", "o.TOT", "TOT"},
		{"unicode", "SELECT café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, editor.NewBuffer(tt.text).WordBeforeCursor())
		})
	}
}

func TestBuffer_ReplaceBeforeCursor(t *testing.T) {
	t.Parallel()

	b := editor.NewBuffer("FROM ord WHERE")
	b.SetCursor(0, 8)
	b.ReplaceBeforeCursor(3, "ORDERS")

	assert.Equal(t, "FROM ORDERS WHERE", b.Text())

	_, col := b.Cursor()
	assert.Equal(t, 11, col)
}
