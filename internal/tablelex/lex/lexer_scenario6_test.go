package lex

import (
	"testing"

	"github.com/dekarrin/tablelex/internal/tablelex/regex"
	"github.com/stretchr/testify/assert"
)

// Test_Lexer_Scenario6 is spec.md §8 scenario 6: a lexer for a regex
// sub-language (mirroring the teacher's test_4), tokenizing its own
// concrete syntax: brackets, braces, comma, digits, escapes.
func Test_Lexer_Scenario6(t *testing.T) {
	assert := assert.New(t)

	hexDigit := regex.ClassOf(
		regex.Interval{Lo: '0', Hi: '9'},
		regex.Interval{Lo: 'a', Hi: 'f'},
		regex.Interval{Lo: 'A', Hi: 'F'},
	)
	octalDigit := regex.ClassOf(regex.Interval{Lo: '0', Hi: '7'})
	digit := regex.ClassOf(regex.Interval{Lo: '0', Hi: '9'})

	unicodeEscape := regex.Cat(regex.Lit('\\'), regex.Lit('U'), regex.Rep(regex.Sym(hexDigit), 8, 8))
	octalEscape := regex.Cat(regex.Lit('\\'), regex.Rep(regex.Sym(octalDigit), 1, 3))
	hexEscape := regex.Cat(regex.Lit('\\'), regex.Lit('x'), regex.Rep(regex.Sym(hexDigit), 2, 2))
	genericEscape := regex.Cat(regex.Lit('\\'), regex.Any())

	special := regex.ClassOf(
		regex.Interval{Lo: '[', Hi: '['},
		regex.Interval{Lo: ']', Hi: ']'},
		regex.Interval{Lo: '{', Hi: '{'},
		regex.Interval{Lo: '}', Hi: '}'},
		regex.Interval{Lo: ',', Hi: ','},
		regex.Interval{Lo: '\\', Hi: '\\'},
		regex.Interval{Lo: '0', Hi: '9'},
	)
	unescaped := regex.Negate(special)

	lx := NewLexer([]Production[string]{
		NewProduction[string](unicodeEscape, "UNICODE"),
		NewProduction[string](octalEscape, "OCTAL"),
		NewProduction[string](hexEscape, "HEXADECIMAL"),
		NewProduction[string](genericEscape, "ESCAPED"),
		NewProduction[string](regex.Sym(digit), "DIGIT"),
		NewProduction[string](regex.Lit('['), "LEFT_SQUARE_BRACKET"),
		NewProduction[string](regex.Lit(']'), "RIGHT_SQUARE_BRACKET"),
		NewProduction[string](regex.Lit('{'), "LEFT_CURLY_BRACKET"),
		NewProduction[string](regex.Lit('}'), "RIGHT_CURLY_BRACKET"),
		NewProduction[string](regex.Lit(','), "COMMA"),
		NewProduction[string](unescaped, "UNESCAPED"),
	})
	assert.NoError(lx.Compile())

	toks, err := lx.Lex(`[A🦄\.]{1,2}\UDEADBEEF\777\x45`)
	assert.NoError(err)

	assert.Equal([]string{
		`LEFT_SQUARE_BRACKET("[")`,
		`UNESCAPED("A")`,
		`UNESCAPED("🦄")`,
		`ESCAPED("\\.")`,
		`RIGHT_SQUARE_BRACKET("]")`,
		`LEFT_CURLY_BRACKET("{")`,
		`DIGIT("1")`,
		`COMMA(",")`,
		`DIGIT("2")`,
		`RIGHT_CURLY_BRACKET("}")`,
		`UNICODE("\\UDEADBEEF")`,
		`OCTAL("\\777")`,
		`HEXADECIMAL("\\x45")`,
	}, tokStrings(toks))
}
