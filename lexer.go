package nqls

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// tagDefinition splits native query text into plain text, complete template
// tags and dangling "{{" openers. Rules are tried in order.
var tagDefinition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Tag", Pattern: `\{\{[^{}]*\}\}`},
	{Name: "Open", Pattern: `\{\{`},
	{Name: "Text", Pattern: `[^{]+|\{`},
})

// Token types of the tag lexer.
var (
	TokenTag  = tagDefinition.Symbols()["Tag"]
	TokenOpen = tagDefinition.Symbols()["Open"]
	TokenText = tagDefinition.Symbols()["Text"]
)

// LexTags tokenizes query text. The trailing EOF token is dropped.
func LexTags(text string) ([]lexer.Token, error) {
	lex, err := tagDefinition.Lex("", strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("lex query: %w", err)
	}

	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("lex query: %w", err)
	}

	if n := len(tokens); n > 0 && tokens[n-1].EOF() {
		tokens = tokens[:n-1]
	}

	return tokens, nil
}

// tokenSpan returns the span covered by a token.
func tokenSpan(tok lexer.Token) Span {
	return Span{Start: tok.Pos, End: advance(tok.Pos, tok.Value)}
}

// advance returns the position of the last rune of text starting at pos.
func advance(pos lexer.Position, text string) lexer.Position {
	end := pos

	if text == "" {
		return end
	}

	end.Offset += len(text) - 1

	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		end.Line += strings.Count(text, "\n")
		end.Column = utf8.RuneCountInString(text[i+1:])

		return end
	}

	end.Column += utf8.RuneCountInString(text) - 1

	return end
}
