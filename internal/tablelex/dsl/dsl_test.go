package dsl

import (
	"testing"

	"github.com/dekarrin/tablelex/internal/tablelex/lex"
	"github.com/stretchr/testify/assert"
)

func Test_Parse_ProductionsAndConsumptions(t *testing.T) {
	assert := assert.New(t)

	src := `
		// a skip rule for whitespace
		/ +/ => ;

		/A/ => A;
		/B/ => B;
	`

	productions, err := Parse(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(productions, 3) {
		return
	}

	lx := lex.NewLexer(productions)
	assert.NoError(lx.Compile())

	toks, err := lx.Lex("A  B")
	assert.NoError(err)

	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal([]string{"A", "B"}, kinds)
}

func Test_Parse_DuplicateRegexLastBindingWins(t *testing.T) {
	assert := assert.New(t)

	src := `
		/ab/ => X;
		/ab/ => Y;
	`

	productions, err := Parse(src)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(productions, 1) {
		return
	}

	lx := lex.NewLexer(productions)
	assert.NoError(lx.Compile())

	toks, err := lx.Lex("ab")
	assert.NoError(err)
	if !assert.Len(toks, 1) {
		return
	}
	assert.Equal("Y", toks[0].Kind)
}

func Test_Parse_SlashEscapeInsideRegex(t *testing.T) {
	assert := assert.New(t)

	productions, err := Parse(`/a\/b/ => SLASH;`)
	if !assert.NoError(err) {
		return
	}

	lx := lex.NewLexer(productions)
	assert.NoError(lx.Compile())

	toks, err := lx.Lex("a/b")
	assert.NoError(err)
	if !assert.Len(toks, 1) {
		return
	}
	assert.Equal("SLASH", toks[0].Kind)
	assert.Equal("a/b", toks[0].Text)
}

func Test_ParseRegex_RepetitionBounds(t *testing.T) {
	assert := assert.New(t)

	productions, err := Parse(`/a{1,2}/ => A;`)
	if !assert.NoError(err) {
		return
	}

	lx := lex.NewLexer(productions)
	assert.NoError(lx.Compile())

	toks, err := lx.Lex("aa")
	assert.NoError(err)
	if !assert.Len(toks, 1) {
		return
	}
	assert.Equal("aa", toks[0].Text)
}

func Test_ParseRegex_CharClassAndNegation(t *testing.T) {
	assert := assert.New(t)

	productions, err := Parse(`/[a-c]+/ => ABC; /[^a-c]/ => OTHER;`)
	if !assert.NoError(err) {
		return
	}

	lx := lex.NewLexer(productions)
	assert.NoError(lx.Compile())

	toks, err := lx.Lex("abcz")
	assert.NoError(err)

	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	assert.Equal([]string{"abc", "z"}, texts)
}
