// Package lex implements the Lexer lifecycle (spec.md §4.7) and the
// longest-match-with-restart scanner (spec.md §4.6) that drives a
// compiled automaton.DFA over input text to produce a Token stream.
// Grounded in the teacher's lexerToken/lazyLex shape
// (_examples/dekarrin-tunaq/internal/ictiobus/lex/lex.go), but driven by
// a compiled DFA rather than a composed regexp.Regexp, and in the
// priority/longest-match tie-break of lazyLex.selectMatch
// (_examples/dekarrin-tunaq/internal/ictiobus/lex/lazy.go).
package lex

import (
	"fmt"
	"sort"

	"github.com/dekarrin/tablelex/internal/tablelex/automaton"
	"github.com/dekarrin/tablelex/internal/tablelex/lexerr"
	"github.com/dekarrin/tablelex/internal/tablelex/tag"
)

// compileConfig holds the resolved effect of a Compile call's
// CompileOptions.
type compileConfig struct {
	strictAmbiguity bool
}

// CompileOption configures a single Compile call.
type CompileOption func(*compileConfig)

// StrictAmbiguity disables priority-by-declaration-order tie-breaking:
// if Compile discovers a DFA accepting state carrying two or more
// distinct non-absent tags, it returns lexerr.InconsistentTokensInFinalState
// instead of resolving it deterministically.
func StrictAmbiguity() CompileOption {
	return func(c *compileConfig) {
		c.strictAmbiguity = true
	}
}

// Lexer holds an ordered catalogue of productions and, once Compile has
// been run, the DFA compiled from them. Productions are supplied once
// at construction and never mutated; Compile is the only operation that
// mutates a Lexer, and is not safe to call concurrently with itself or
// with Lex (see SPEC_FULL.md §5).
type Lexer[K comparable] struct {
	productions []Production[K]
	dfa         *automaton.DFA[K]
	// order maps a production's fragment UUID (stringified) to its
	// index in productions, letting the scanner resolve P5's
	// "earliest-declared production wins" rule purely from the tag.ID
	// values a DFA state's Candidates carry.
	order           map[string]int
	strictAmbiguity bool
}

// NewLexer returns an uncompiled Lexer over productions, in the order
// given. That order is later used for priority tie-breaking (P5).
func NewLexer[K comparable](productions []Production[K]) *Lexer[K] {
	cp := make([]Production[K], len(productions))
	copy(cp, productions)
	return &Lexer[K]{productions: cp}
}

// Compile builds one ε-NFA fragment per production, unions them, and
// runs subset construction to produce the DFA that Lex will drive.
// Idempotent: calling Compile again simply rebuilds and replaces the
// DFA. Compilation is total over well-formed production sets (spec.md
// §7): the only way it returns a non-nil error is StrictAmbiguity
// catching competing tags.
func (lx *Lexer[K]) Compile(opts ...CompileOption) error {
	var cfg compileConfig
	for _, o := range opts {
		o(&cfg)
	}

	fragments := make([]automaton.Fragment[K], len(lx.productions))
	order := make(map[string]int, len(lx.productions))
	for i, p := range lx.productions {
		g := tag.NewGen[K](p.Kind)
		frag := automaton.Build(p.Regex, g)
		fragments[i] = frag
		order[tag.FragmentKey(frag.Start).String()] = i
	}

	union := automaton.Union(fragments)
	dfa := union.ToDFA()

	if cfg.strictAmbiguity {
		if err := checkStrictAmbiguity(dfa); err != nil {
			return err
		}
	}

	lx.dfa = dfa
	lx.order = order
	lx.strictAmbiguity = cfg.strictAmbiguity
	return nil
}

func checkStrictAmbiguity[K comparable](d *automaton.DFA[K]) error {
	for _, key := range d.States() {
		st := d.State(key)
		if !st.Accepting() {
			continue
		}
		distinct := map[string]bool{}
		for _, c := range st.Candidates() {
			if k, ok := c.Tag.Kind(); ok {
				distinct[fmt.Sprint(k)] = true
			}
		}
		if len(distinct) > 1 {
			kinds := make([]string, 0, len(distinct))
			for k := range distinct {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			return lexerr.InconsistentTokensErr("", kinds)
		}
	}
	return nil
}

// checkpoint is the scanner's remembered last-accepting (state, input
// position) pair; the lexeme itself is always derivable as
// runes[lexemeStart:pos], so it isn't stored separately.
type checkpoint struct {
	pos int
	key string
}

// Lex drives the compiled DFA over text by longest match with restart
// (spec.md §4.6), returning every non-skip Token produced in order.
// Requires a prior successful Compile; otherwise returns
// lexerr.NotCompiled.
func (lx *Lexer[K]) Lex(text string) ([]Token[K], error) {
	if lx.dfa == nil {
		return nil, lexerr.NotCompiledErr()
	}

	runes := []rune(text)
	var tokens []Token[K]

	cursor := 0
	lexemeStart := 0
	current := lx.dfa.Start()
	var ckpt *checkpoint

	for {
		if cursor == len(runes) {
			if lx.dfa.State(current).Accepting() {
				tok, err := lx.resolve(current, string(runes[lexemeStart:cursor]))
				if err != nil {
					return tokens, err
				}
				if tok != nil {
					tokens = append(tokens, *tok)
				}
				return tokens, nil
			}
			if ckpt != nil && ckpt.pos > lexemeStart {
				tok, err := lx.resolve(ckpt.key, string(runes[lexemeStart:ckpt.pos]))
				if err != nil {
					return tokens, err
				}
				if tok != nil {
					tokens = append(tokens, *tok)
				}
				cursor = ckpt.pos
				lexemeStart = cursor
				current = lx.dfa.Start()
				ckpt = nil
				continue
			}
			if cursor > lexemeStart {
				return tokens, lexerr.PartialMatchErr(string(runes[lexemeStart:cursor]), cursor, 0)
			}
			return tokens, nil
		}

		c := runes[cursor]
		next, ok := lx.dfa.Step(current, c)
		if ok {
			current = next
			cursor++
			if lx.dfa.State(current).Accepting() {
				ckpt = &checkpoint{pos: cursor, key: current}
			}
			continue
		}

		if ckpt != nil {
			tok, err := lx.resolve(ckpt.key, string(runes[lexemeStart:ckpt.pos]))
			if err != nil {
				return tokens, err
			}
			if tok != nil {
				tokens = append(tokens, *tok)
			}
			cursor = ckpt.pos
			lexemeStart = cursor
			current = lx.dfa.Start()
			ckpt = nil
			continue
		}

		return tokens, lexerr.PartialMatchErr(string(runes[lexemeStart:cursor]), cursor, c)
	}
}

// resolve applies the tag-resolution tie-break rules (spec.md §4.6) to
// the accepting DFA state at key, for the given lexeme text. Returns
// (nil, nil) for a winning skip production.
func (lx *Lexer[K]) resolve(key string, lexeme string) (*Token[K], error) {
	candidates := lx.dfa.State(key).Candidates()

	var present []automaton.Candidate[K]
	for _, c := range candidates {
		if c.Tag.Present() {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	allAgree := true
	firstKind, _ := present[0].Tag.Kind()
	for _, c := range present[1:] {
		k, _ := c.Tag.Kind()
		if k != firstKind {
			allAgree = false
			break
		}
	}
	if allAgree {
		return &Token[K]{Kind: firstKind, Text: lexeme}, nil
	}

	if lx.strictAmbiguity {
		seen := map[string]bool{}
		var kinds []string
		for _, c := range present {
			k, _ := c.Tag.Kind()
			s := fmt.Sprint(k)
			if !seen[s] {
				seen[s] = true
				kinds = append(kinds, s)
			}
		}
		sort.Strings(kinds)
		return nil, lexerr.InconsistentTokensErr(lexeme, kinds)
	}

	bestIdx := -1
	var bestKind K
	for _, c := range present {
		idx, ok := lx.order[tag.FragmentKey(c.Fragment).String()]
		if !ok {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestKind, _ = c.Tag.Kind()
		}
	}
	return &Token[K]{Kind: bestKind, Text: lexeme}, nil
}
