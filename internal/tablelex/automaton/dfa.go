package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/tablelex/internal/tablelex/tag"
	"github.com/dekarrin/tablelex/internal/util"
)

// Candidate is one accepting NFA member's contribution to a DFA state's
// tag multiset: which production's fragment it came from, and the tag
// that production's Gen stamped on it (absent for a skip production).
// lex.Lexer uses Fragment paired against its own per-production
// declaration-order table to do priority tie-breaking (spec.md §4.6,
// P5); automaton has no notion of "declaration order" itself, only of
// fragment identity.
type Candidate[K comparable] struct {
	Fragment tag.ID
	Tag      tag.Tag[K]
}

type dfaEdge struct {
	lo, hi rune
	target string
}

// DFAState is one state of a compiled DFA: a deduplicated set of
// constituent ε-NFA states (read by subset construction to compute the
// state's outgoing transitions), whether it is accepting, and -- if so --
// its tag candidates.
type DFAState[K comparable] struct {
	key        string
	members    util.Set[tag.ID]
	accepting  bool
	candidates []Candidate[K]
	trans      []dfaEdge
}

func (ds DFAState[K]) String() string {
	var sb strings.Builder
	sb.WriteString(ds.key)
	if ds.accepting {
		sb.WriteString(" [accepting]")
	}
	return sb.String()
}

// Accepting reports whether ds is a DFA accepting state.
func (ds DFAState[K]) Accepting() bool {
	return ds.accepting
}

// Candidates returns ds's tag multiset; empty unless Accepting.
func (ds DFAState[K]) Candidates() []Candidate[K] {
	return ds.candidates
}

// DFA is a deterministic finite automaton over rune input, compiled from
// an ENFA by subset construction (spec.md §4.5).
type DFA[K comparable] struct {
	states map[string]*DFAState[K]
	start  string
}

// Start returns the DFA's initial state key.
func (d *DFA[K]) Start() string {
	return d.start
}

// States returns the keys of every state in d, in deterministic (sorted)
// order. Used by Lexer.Compile's StrictAmbiguity check, which must inspect
// every accepting state regardless of reachability order and wants a
// reproducible error when more than one is ambiguous.
func (d *DFA[K]) States() []string {
	return util.OrderedKeys(d.states)
}

// State returns the DFA state for key. Panics if key is not a state of
// d -- every key this package hands out (Start, or the target of Step)
// is guaranteed to be a live state.
func (d *DFA[K]) State(key string) *DFAState[K] {
	st, ok := d.states[key]
	if !ok {
		panic(fmt.Sprintf("automaton: %q is not a state of this DFA", key))
	}
	return st
}

// Step follows the single outgoing transition from key whose interval
// contains c, returning the target state's key and true, or ("", false)
// if no such transition exists (P1: at most one can, by construction).
func (d *DFA[K]) Step(key string, c rune) (string, bool) {
	st := d.State(key)
	for _, ed := range st.trans {
		if c >= ed.lo && c <= ed.hi {
			return ed.target, true
		}
	}
	return "", false
}

func stateSetKey(set util.Set[tag.ID]) string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, tag.Key(id))
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// ToDFA runs subset construction over e: ε-close the initial state, then
// for each discovered DFA state, partition its members' outgoing
// transitions into disjoint intervals and ε-close the move along each
// cell, per spec.md §4.5. Grounded in the teacher's
// NFA[E].ToDFA/EpsilonClosure/EpsilonClosureOfSet/MOVE
// (_examples/dekarrin-tunaq/internal/ictiobus/automaton/automaton.go),
// generalized from a single discrete alphabet to disjoint-interval
// refinement over rune.
func (e *ENFA[K]) ToDFA() *DFA[K] {
	d := &DFA[K]{states: make(map[string]*DFAState[K])}

	startSet := e.epsilonClosure(util.SetOf(e.start))
	startKey := stateSetKey(startSet)
	d.states[startKey] = e.buildDFAState(startKey, startSet)
	d.start = startKey

	worklist := []string{startKey}
	for len(worklist) > 0 {
		key := worklist[0]
		worklist = worklist[1:]
		set := d.states[key].members

		for _, cell := range e.partitionOutgoing(set) {
			target := e.epsilonClosure(e.move(set, cell.Lo))
			if target.Empty() {
				continue
			}
			targetKey := stateSetKey(target)
			if _, ok := d.states[targetKey]; !ok {
				d.states[targetKey] = e.buildDFAState(targetKey, target)
				worklist = append(worklist, targetKey)
			}
			d.states[key].trans = append(d.states[key].trans, dfaEdge{
				lo: cell.Lo, hi: cell.Hi, target: targetKey,
			})
		}
	}

	return d
}

func (e *ENFA[K]) buildDFAState(key string, members util.Set[tag.ID]) *DFAState[K] {
	st := &DFAState[K]{key: key, members: members}
	for id := range members {
		if !e.IsAccepting(id) {
			continue
		}
		st.accepting = true
		st.candidates = append(st.candidates, Candidate[K]{
			Fragment: id,
			Tag:      tag.TagOf[K](id),
		})
	}
	return st
}
