// Package automaton implements the ε-NFA builder, NFA union, and
// subset construction stages of the pipeline: turning a regex.Regex tree
// into an ε-NFA fragment, grafting per-production fragments into one
// shared ε-NFA, and converting that into a deterministic DFA.
//
// Grounded in the Thompson-construction helpers of
// _examples/dekarrin-tunaq/internal/ictiobus/lex/regex.go
// (createSingleSymbolFA/createJuxtapositionFA/createKleeneStarFA/
// createAlternationFA) and _examples/Toasa-regexp/nfa/nfa.go
// (genSymbolNFA/genUnionNFA/genConcateNFA/genStarNFA), generalized from
// single runes and ad hoc string state names to interval CharClass labels
// and tag.ID identities.
package automaton

import (
	"fmt"
	"sort"

	"github.com/dekarrin/tablelex/internal/tablelex/regex"
	"github.com/dekarrin/tablelex/internal/tablelex/tag"
	"github.com/dekarrin/tablelex/internal/util"
)

// edge is one outgoing transition of an ENFA state. eps transitions carry
// no interval; symbol transitions carry an inclusive [lo, hi] interval
// matched against a single input code point.
type edge struct {
	eps    bool
	lo, hi rune
	target tag.ID
}

// ENFA is a labelled graph of tag.ID states connected by epsilon and
// interval-labelled transitions. Unlike the teacher's NFA[E], which keys
// states by string name and therefore needs namespace-prefixing tricks
// when grafting two NFAs together, ENFA keys everything by tag.ID, so
// grafting is just a map merge -- collisions are structurally impossible
// because every ID embeds its minting Gen's fragment UUID.
type ENFA[K comparable] struct {
	states map[tag.ID]struct{}
	trans  map[tag.ID][]edge
	accept map[tag.ID]struct{}
	start  tag.ID
}

func newENFA[K comparable]() *ENFA[K] {
	return &ENFA[K]{
		states: make(map[tag.ID]struct{}),
		trans:  make(map[tag.ID][]edge),
		accept: make(map[tag.ID]struct{}),
	}
}

func (e *ENFA[K]) addState(id tag.ID) {
	e.states[id] = struct{}{}
}

func (e *ENFA[K]) addEpsilon(from, to tag.ID) {
	e.trans[from] = append(e.trans[from], edge{eps: true, target: to})
}

func (e *ENFA[K]) addSymbol(from tag.ID, lo, hi rune, to tag.ID) {
	e.trans[from] = append(e.trans[from], edge{lo: lo, hi: hi, target: to})
}

// Start returns the ENFA's single initial state.
func (e *ENFA[K]) Start() tag.ID {
	return e.start
}

// IsAccepting reports whether id is one of the ENFA's accepting states.
func (e *ENFA[K]) IsAccepting(id tag.ID) bool {
	_, ok := e.accept[id]
	return ok
}

// graft copies every state, transition, and accepting flag of o into e.
// Safe to call repeatedly: states are keyed by tag.ID, and IDs minted by
// two different Gens can never collide.
func (e *ENFA[K]) graft(o *ENFA[K]) {
	for s := range o.states {
		e.states[s] = struct{}{}
	}
	for s, edges := range o.trans {
		e.trans[s] = append(e.trans[s], edges...)
	}
	for s := range o.accept {
		e.accept[s] = struct{}{}
	}
}

// Fragment is an ε-NFA with a single initial state and one accepting
// state, compiled from a single regex.Regex subtree. Union takes a slice
// of Fragments and returns a plain *ENFA, not a Fragment.
type Fragment[K comparable] struct {
	NFA    *ENFA[K]
	Start  tag.ID
	Accept []tag.ID
}

// Build recursively compiles r into a Fragment, minting state identities
// from g. g must be fresh (a new tag.Gen per production); reusing a Gen
// across two calls to Build would give both fragments the same
// tag.FragmentKey, so priority resolution could not tell them apart.
func Build[K comparable](r regex.Regex, g *tag.Gen[K]) Fragment[K] {
	enfa := newENFA[K]()
	start, accept := build(enfa, r, g)
	enfa.start = start
	enfa.accept[accept] = struct{}{}
	return Fragment[K]{NFA: enfa, Start: start, Accept: []tag.ID{accept}}
}

// withFinalsRestored disables finals for the duration of fn, then
// restores whatever finals state was in effect before the call -- not
// unconditionally re-enabling it. This is what lets NextFinal produce an
// untagged state for every intermediate fragment boundary and a tagged
// one only at the single outermost accepting state of the whole
// production, no matter how many composite nodes (alternation inside
// repetition inside concatenation, ...) sit in between.
func withFinalsRestored[K comparable](g *tag.Gen[K], fn func()) {
	prev := g.FinalsEnabled()
	g.DisableFinals()
	fn()
	if prev {
		g.EnableFinals()
	} else {
		g.DisableFinals()
	}
}

func build[K comparable](enfa *ENFA[K], r regex.Regex, g *tag.Gen[K]) (tag.ID, tag.ID) {
	if regex.IsEpsilon(r) {
		i := g.NextInitial()
		f := g.NextFinal()
		enfa.addState(i)
		enfa.addState(f)
		enfa.addEpsilon(i, f)
		return i, f
	}

	if class, ok := regex.AsSymbol(r); ok {
		i := g.NextInitial()
		f := g.NextFinal()
		enfa.addState(i)
		enfa.addState(f)
		for _, iv := range class {
			enfa.addSymbol(i, iv.Lo, iv.Hi, f)
		}
		return i, f
	}

	if alts, ok := regex.AsAlternation(r); ok {
		i := g.NextInitial()
		enfa.addState(i)
		var branches [][2]tag.ID
		withFinalsRestored(g, func() {
			for _, sub := range alts {
				ss, sa := build(enfa, sub, g)
				branches = append(branches, [2]tag.ID{ss, sa})
			}
		})
		f := g.NextFinal()
		enfa.addState(f)
		for _, br := range branches {
			enfa.addEpsilon(i, br[0])
			enfa.addEpsilon(br[1], f)
		}
		return i, f
	}

	if parts, ok := regex.AsConcatenation(r); ok {
		i := g.NextInitial()
		enfa.addState(i)
		var chain [][2]tag.ID
		withFinalsRestored(g, func() {
			for _, sub := range parts {
				ss, sa := build(enfa, sub, g)
				chain = append(chain, [2]tag.ID{ss, sa})
			}
		})
		f := g.NextFinal()
		enfa.addState(f)
		enfa.addEpsilon(i, chain[0][0])
		for idx := 0; idx < len(chain)-1; idx++ {
			enfa.addEpsilon(chain[idx][1], chain[idx+1][0])
		}
		enfa.addEpsilon(chain[len(chain)-1][1], f)
		return i, f
	}

	if rep, ok := regex.AsRepetition(r); ok {
		return buildRepetition(enfa, rep, g)
	}

	panic(fmt.Sprintf("automaton: unrecognized regex node %T", r))
}

// buildRepetition unrolls a bounded Repetition into min mandatory copies
// followed by max-min optional copies, or -- when max is
// regex.Unbounded -- min mandatory copies followed by an explicit
// ε-loop, exactly as spec.md §4.3/§9 resolves the {n,m}-vs-unrolling open
// question.
func buildRepetition[K comparable](enfa *ENFA[K], rep regex.Repetition, g *tag.Gen[K]) (tag.ID, tag.ID) {
	min, max := rep.Min(), rep.Max()
	body := rep.Body()

	i := g.NextInitial()
	enfa.addState(i)

	var mandatoryStart, mandatoryAccept tag.ID
	haveMandatory := min > 0

	var loopStart, loopAccept tag.ID
	haveLoop := max == regex.Unbounded

	var optionalStart, optionalAccept tag.ID
	haveOptional := max != regex.Unbounded && max > min

	withFinalsRestored(g, func() {
		if haveMandatory {
			mandatoryStart, mandatoryAccept = buildMandatoryChain(enfa, body, min, g)
		}
		if haveLoop {
			loopStart, loopAccept = buildLoop(enfa, body, g)
		} else if haveOptional {
			optionalStart, optionalAccept = buildOptionalChain(enfa, body, max-min, g)
		}
	})

	f := g.NextFinal()
	enfa.addState(f)

	switch {
	case haveMandatory && haveLoop:
		enfa.addEpsilon(i, mandatoryStart)
		enfa.addEpsilon(mandatoryAccept, loopStart)
		enfa.addEpsilon(loopAccept, f)
	case haveMandatory && haveOptional:
		enfa.addEpsilon(i, mandatoryStart)
		enfa.addEpsilon(mandatoryAccept, optionalStart)
		enfa.addEpsilon(optionalAccept, f)
	case haveMandatory:
		enfa.addEpsilon(i, mandatoryStart)
		enfa.addEpsilon(mandatoryAccept, f)
	case haveLoop:
		enfa.addEpsilon(i, loopStart)
		enfa.addEpsilon(loopAccept, f)
	case haveOptional:
		enfa.addEpsilon(i, optionalStart)
		enfa.addEpsilon(optionalAccept, f)
	default:
		// min == 0, max == 0: matches only the empty string.
		enfa.addEpsilon(i, f)
	}

	return i, f
}

// buildMandatoryChain concatenates count (>=1) copies of body.
func buildMandatoryChain[K comparable](enfa *ENFA[K], body regex.Regex, count int, g *tag.Gen[K]) (tag.ID, tag.ID) {
	i := g.NextInitial()
	enfa.addState(i)
	var chain [][2]tag.ID
	withFinalsRestored(g, func() {
		for j := 0; j < count; j++ {
			ss, sa := build(enfa, body, g)
			chain = append(chain, [2]tag.ID{ss, sa})
		}
	})
	f := g.NextFinal()
	enfa.addState(f)
	enfa.addEpsilon(i, chain[0][0])
	for idx := 0; idx < len(chain)-1; idx++ {
		enfa.addEpsilon(chain[idx][1], chain[idx+1][0])
	}
	enfa.addEpsilon(chain[len(chain)-1][1], f)
	return i, f
}

// buildOptionalChain concatenates count (>=1) independently-optional
// copies of body, realizing the "max-min optional copies" half of a
// bounded repetition's unrolling.
func buildOptionalChain[K comparable](enfa *ENFA[K], body regex.Regex, count int, g *tag.Gen[K]) (tag.ID, tag.ID) {
	i := g.NextInitial()
	enfa.addState(i)
	cur := i
	var lastAccept tag.ID
	withFinalsRestored(g, func() {
		for j := 0; j < count; j++ {
			optStart, optAccept := buildOptional(enfa, body, g)
			enfa.addEpsilon(cur, optStart)
			cur = optAccept
			lastAccept = optAccept
		}
	})
	f := g.NextFinal()
	enfa.addState(f)
	enfa.addEpsilon(lastAccept, f)
	return i, f
}

// buildOptional is one "?" copy: i -ε-> sub, i -ε-> f (zero reps), sub
// -ε-> f.
func buildOptional[K comparable](enfa *ENFA[K], body regex.Regex, g *tag.Gen[K]) (tag.ID, tag.ID) {
	i := g.NextInitial()
	enfa.addState(i)
	var subStart, subAccept tag.ID
	withFinalsRestored(g, func() {
		subStart, subAccept = build(enfa, body, g)
	})
	f := g.NextFinal()
	enfa.addState(f)
	enfa.addEpsilon(i, subStart)
	enfa.addEpsilon(subAccept, f)
	enfa.addEpsilon(i, f)
	return i, f
}

// buildLoop is the unbounded Kleene-style construction: i -ε-> sub,
// sub -ε-> sub (loopback), sub -ε-> f, i -ε-> f (zero reps).
func buildLoop[K comparable](enfa *ENFA[K], body regex.Regex, g *tag.Gen[K]) (tag.ID, tag.ID) {
	i := g.NextInitial()
	enfa.addState(i)
	var subStart, subAccept tag.ID
	withFinalsRestored(g, func() {
		subStart, subAccept = build(enfa, body, g)
	})
	f := g.NextFinal()
	enfa.addState(f)
	enfa.addEpsilon(i, subStart)
	enfa.addEpsilon(subAccept, subStart)
	enfa.addEpsilon(subAccept, f)
	enfa.addEpsilon(i, f)
	return i, f
}

// Union grafts one ε-NFA per production into a single ε-NFA sharing a
// fresh initial state I0, exactly as spec.md §4.4: I0 -ε-> initial(Fj)
// for each production fragment Fj, and every accepting state of Fj
// remains accepting in the union.
func Union[K comparable](fragments []Fragment[K]) *ENFA[K] {
	// A private Gen just to mint I0; it never builds a fragment of its
	// own, so it mints only I0 (sequence number 0), but it still
	// needs its own fragment UUID so I0 cannot collide with any grafted
	// state.
	ctor := tag.NewGen[K](tag.None[K]())
	u := newENFA[K]()
	i0 := ctor.NextInitial()
	u.addState(i0)
	u.start = i0

	for _, f := range fragments {
		u.graft(f.NFA)
		u.addEpsilon(i0, f.Start)
	}
	return u
}

func (e *ENFA[K]) epsilonClosure(of util.Set[tag.ID]) util.Set[tag.ID] {
	closure := of.Copy()
	var stack util.Stack[tag.ID]
	for id := range of {
		stack.Push(id)
	}
	for stack.Len() > 0 {
		cur := stack.Pop()
		for _, ed := range e.trans[cur] {
			if !ed.eps {
				continue
			}
			if !closure.Has(ed.target) {
				closure.Add(ed.target)
				stack.Push(ed.target)
			}
		}
	}
	return closure
}

// move returns the set of states reached by following a non-epsilon
// transition out of any member of from whose interval contains c.
func (e *ENFA[K]) move(from util.Set[tag.ID], c rune) util.Set[tag.ID] {
	out := util.NewSet[tag.ID]()
	for id := range from {
		for _, ed := range e.trans[id] {
			if ed.eps {
				continue
			}
			if c >= ed.lo && c <= ed.hi {
				out.Add(ed.target)
			}
		}
	}
	return out
}

// partitionOutgoing collects every non-epsilon transition label leaving
// any member of from and refines them into a disjoint interval partition,
// per spec.md §4.5/§9's "grouped outgoing transitions" and
// "disjoint interval refinement" design notes. Grounded in the
// interval/partition handling of
// _examples/other_examples/b8c5c71f_cznic-fsm__nfa.go.go and
// _examples/other_examples/c382e005_coregx-coregex__nfa-compile.go.go,
// generalized here to operate over an arbitrary NFA state set rather
// than a single compiled expression.
func (e *ENFA[K]) partitionOutgoing(from util.Set[tag.ID]) []regex.Interval {
	var bounds []rune
	for id := range from {
		for _, ed := range e.trans[id] {
			if ed.eps {
				continue
			}
			bounds = append(bounds, ed.lo, ed.hi+1)
		}
	}
	if len(bounds) == 0 {
		return nil
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })
	uniq := bounds[:0:0]
	for i, b := range bounds {
		if i == 0 || b != bounds[i-1] {
			uniq = append(uniq, b)
		}
	}

	var cells []regex.Interval
	for i := 0; i+1 < len(uniq); i++ {
		lo := uniq[i]
		hi := uniq[i+1] - 1
		if lo > hi {
			continue
		}
		cells = append(cells, regex.Interval{Lo: lo, Hi: hi})
	}
	return cells
}
