// Package dsl parses the grammar-DSL catalogue text of spec.md §6 into
// an ordered []lex.Production[string]: `/regex/ => KIND;` productions
// and `/regex/ => ;` consumptions (skip rules), whitespace and `//` line
// comments skipped, duplicates taking the last binding.
//
// dsl hand-rolls its own scanner rather than building on package lex, to
// avoid the bootstrapping cycle of using the lexer-generator to lex its
// own catalogue syntax -- the same choice the teacher's own
// lex.RegexToNFA stub notes with its comment "no part of ictiobus is
// self-hosted... sadly"
// (_examples/dekarrin-tunaq/internal/ictiobus/lex/regex.go). Grounded in
// the teacher's hand-rolled line/position-tracking scanner
// (_examples/dekarrin-tunaq/internal/ictiobus/lex/lazy.go) and the
// tokenizer shapes of
// _examples/mabhi256-codecrafters-grep-go/app/tokenizer.go and
// _examples/Toasa-regexp/token/token.go.
package dsl

import (
	"github.com/dekarrin/tablelex/internal/tablelex/lex"
	"github.com/dekarrin/tablelex/internal/tablelex/lexerr"
)

type scanner struct {
	runes []rune
	pos   int
	line  int
	col   int
}

func newScanner(src string) *scanner {
	return &scanner{runes: []rune(src), line: 1, col: 1}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.runes)
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.runes[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	if s.pos+offset >= len(s.runes) {
		return 0
	}
	return s.runes[s.pos+offset]
}

func (s *scanner) advance() rune {
	r := s.runes[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		r := s.peek()
		if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			s.advance()
			continue
		}
		if r == '/' && s.peekAt(1) == '/' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			continue
		}
		break
	}
}

func (s *scanner) err(msg string) *lexerr.Error {
	return lexerr.DSLSyntaxErr(msg, s.line, s.col)
}

func (s *scanner) expect(r rune) error {
	if s.atEnd() || s.peek() != r {
		return s.err("expected " + string(r))
	}
	s.advance()
	return nil
}

// scanDelimitedRegex reads a /…/-delimited regex, where \ escapes any
// character including /, and returns its unescaped concrete-syntax text
// (delimiters stripped, \/ collapsed to /, every other escape left
// intact for the regex parser to interpret).
func (s *scanner) scanDelimitedRegex() (string, error) {
	if err := s.expect('/'); err != nil {
		return "", err
	}
	var out []rune
	for {
		if s.atEnd() {
			return "", s.err("unterminated regex literal")
		}
		r := s.advance()
		if r == '/' {
			break
		}
		if r == '\\' {
			if s.atEnd() {
				return "", s.err("unterminated escape in regex literal")
			}
			esc := s.advance()
			if esc == '/' {
				out = append(out, '/')
			} else {
				out = append(out, '\\', esc)
			}
			continue
		}
		out = append(out, r)
	}
	return string(out), nil
}

// scanKind reads a KIND token matching [A-Z][A-Z0-9_]*.
func (s *scanner) scanKind() (string, error) {
	startLine, startCol := s.line, s.col
	if s.atEnd() || !isUpperAlpha(s.peek()) {
		return "", s.err("expected token kind matching [A-Z][A-Z0-9_]*")
	}
	var out []rune
	out = append(out, s.advance())
	for !s.atEnd() && isKindCont(s.peek()) {
		out = append(out, s.advance())
	}
	text := string(out)
	for _, r := range text {
		if !isKindCont(r) {
			return "", lexerr.NotTokenKindErr(text, startLine, startCol)
		}
	}
	return text, nil
}

func isUpperAlpha(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isKindCont(r rune) bool {
	return isUpperAlpha(r) || (r >= '0' && r <= '9') || r == '_'
}

// Parse parses catalogue source text into an ordered
// []lex.Production[string], per spec.md §6's grammar:
//
//	Production  ::= REGEX "=>" KIND ";"
//	Consumption ::= REGEX "=>" ";"
//
// Declaration order is preserved; a regex literal that appears more than
// once keeps its first position in the returned slice but takes the
// last-declared binding, per spec.md §6's "duplicates take the last
// binding" rule.
func Parse(source string) ([]lex.Production[string], error) {
	s := newScanner(source)

	var productions []lex.Production[string]
	positionOf := make(map[string]int)

	upsert := func(regexSrc string, p lex.Production[string]) {
		if idx, ok := positionOf[regexSrc]; ok {
			productions[idx] = p
			return
		}
		positionOf[regexSrc] = len(productions)
		productions = append(productions, p)
	}

	for {
		s.skipWhitespaceAndComments()
		if s.atEnd() {
			break
		}

		regexSrc, err := s.scanDelimitedRegex()
		if err != nil {
			return nil, err
		}
		parsed, err := ParseRegex(regexSrc)
		if err != nil {
			return nil, err
		}

		s.skipWhitespaceAndComments()
		if err := s.expect('='); err != nil {
			return nil, err
		}
		if err := s.expect('>'); err != nil {
			return nil, err
		}
		s.skipWhitespaceAndComments()

		if !s.atEnd() && s.peek() == ';' {
			s.advance()
			upsert(regexSrc, lex.NewSkip[string](parsed))
			continue
		}

		kind, err := s.scanKind()
		if err != nil {
			return nil, err
		}
		s.skipWhitespaceAndComments()
		if err := s.expect(';'); err != nil {
			return nil, err
		}
		upsert(regexSrc, lex.NewProduction[string](parsed, kind))
	}

	return productions, nil
}
