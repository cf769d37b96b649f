// Package lexerr defines the tagged error variant returned by package lex
// and package dsl (spec.md §6/§7): a Kind enum plus enough context
// (lexeme, offset, line/column) to report the failure, wrapping an
// optional underlying error. Grounded in the teacher's wrapped-error-
// struct idiom (_examples/dekarrin-tunaq/internal/tqerrors/tqerrors.go:
// a private struct carrying a message and an optional wrapped error,
// exposed only through functional constructors and Unwrap), generalized
// to a single struct parameterized by a Kind rather than one struct type
// per error family.
package lexerr

import (
	"fmt"

	"github.com/dekarrin/tablelex/internal/util"
)

// Kind identifies which of the taxonomy's error families an Error
// belongs to.
type Kind int

const (
	// NotCompiled is returned by Lexer.Lex when called before Compile.
	NotCompiled Kind = iota
	// PartialMatch is returned when the scanner gets stuck with no
	// recorded checkpoint: the input contains a prefix no production
	// recognizes.
	PartialMatch
	// InconsistentTokensInFinalState is returned at compile time, only
	// when the StrictAmbiguity compile option is set, when two
	// productions with distinct non-absent tags both accept the same
	// DFA state.
	InconsistentTokensInFinalState
	// NotImplemented is reserved for unimplemented regex or DSL
	// constructs.
	NotImplemented
	// NotTokenKind is raised by package dsl when a KIND token in catalogue
	// source does not match [A-Z][A-Z0-9_]*.
	NotTokenKind
)

func (k Kind) String() string {
	switch k {
	case NotCompiled:
		return "NotCompiled"
	case PartialMatch:
		return "PartialMatch"
	case InconsistentTokensInFinalState:
		return "InconsistentTokensInFinalState"
	case NotImplemented:
		return "NotImplemented"
	case NotTokenKind:
		return "NotTokenKind"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type for all of package lex and package
// dsl's failures.
type Error struct {
	kind Kind
	msg  string
	wrap error

	// Lexeme and Offset are populated for PartialMatch: the text matched
	// so far and the 0-based rune offset into the original input at
	// which the scanner got stuck.
	Lexeme string
	Offset int

	// Line and Col are populated for dsl parse errors: 1-indexed
	// position in the catalogue source, except for errors in a regex's
	// concrete syntax (dsl.ParseRegex), where Line is 1 and Col is the
	// rune position within the regex text.
	Line int
	Col  int
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns which taxonomy family e belongs to.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap gives the error e wraps, if any.
func (e *Error) Unwrap() error {
	return e.wrap
}

// Is supports errors.Is(err, lexerr.NotCompiledErr()) style sentinel
// checks by comparing Kind rather than identity -- a *Error built anywhere with
// Kind() == target's Kind() compares equal.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == other.kind
}

// New returns an *Error of the given kind with message msg.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, a ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, a...))
}

// Wrap returns an *Error of the given kind that wraps err.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{kind: kind, msg: msg, wrap: err}
}

// NotCompiledErr is the sentinel matched by errors.Is for an
// uncompiled-lexer call to Lex.
func NotCompiledErr() *Error {
	return New(NotCompiled, "lexer has not been compiled")
}

// PartialMatchErr builds a PartialMatch error carrying the lexeme
// matched so far, the offending rune, and its offset.
func PartialMatchErr(lexeme string, offset int, offending rune) *Error {
	e := Newf(PartialMatch, "partial match: %q followed by unrecognized input %q at offset %d", lexeme, offending, offset)
	e.Lexeme = lexeme
	e.Offset = offset
	return e
}

// InconsistentTokensErr builds an InconsistentTokensInFinalState error
// naming the competing token kinds, as text supplied by the caller (the
// Kind type parameter of the lexer this occurred in is not known to
// package lexerr).
func InconsistentTokensErr(lexeme string, kinds []string) *Error {
	list := util.MakeTextList(append([]string(nil), kinds...))
	e := Newf(InconsistentTokensInFinalState, "ambiguous match %q: competing token kinds %s", lexeme, list)
	e.Lexeme = lexeme
	return e
}

// NotTokenKindErr builds a NotTokenKind error for a dsl KIND token that
// failed to match [A-Z][A-Z0-9_]* at the given source position.
func NotTokenKindErr(text string, line, col int) *Error {
	e := Newf(NotTokenKind, "%q is not a valid token kind at line %d, col %d", text, line, col)
	e.Line = line
	e.Col = col
	return e
}

// DSLSyntaxErr builds the general-purpose NotTokenKind-kind error used
// for every other catalogue parse failure (unterminated literals,
// missing "=>" or ";", malformed regex concrete syntax) -- spec.md §7
// groups "NotTokenKind and parser-level failures" as one DSL error
// family rather than enumerating a Kind per failure site.
func DSLSyntaxErr(msg string, line, col int) *Error {
	e := Newf(NotTokenKind, "%s (line %d, col %d)", msg, line, col)
	e.Line = line
	e.Col = col
	return e
}
