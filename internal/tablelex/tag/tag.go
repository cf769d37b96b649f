// Package tag provides the state-tag generator: the factory that mints
// fresh, comparable automaton-state identities while building the ε-NFA
// fragment for a single production, and the explicit absent/present token
// tag each identity carries.
package tag

import (
	"fmt"

	"github.com/google/uuid"
)

// Tag is an explicit absent/present variant over a token-kind value. It is
// never represented as a bare zero value or nil pointer, so that a
// genuinely zero-valued kind (e.g. K = string, value "") can never be
// confused with "no token kind at all".
type Tag[K comparable] struct {
	value   K
	present bool
}

// None returns the absent tag, used for ephemeral/initial states and for
// skip productions.
func None[K comparable]() Tag[K] {
	return Tag[K]{}
}

// Some returns a tag carrying k.
func Some[K comparable](k K) Tag[K] {
	return Tag[K]{value: k, present: true}
}

// Present reports whether the tag carries a token kind.
func (t Tag[K]) Present() bool {
	return t.present
}

// Kind returns the carried kind and true, or the zero value and false if
// the tag is absent.
func (t Tag[K]) Kind() (K, bool) {
	return t.value, t.present
}

func (t Tag[K]) String() string {
	if !t.present {
		return "⊥"
	}
	return fmt.Sprintf("%v", t.value)
}

// ID is an opaque, comparable automaton-state identity: a fragment-unique
// identifier, a sequence number monotone within that fragment, and the
// tag copied from the owning production (forced absent on every state
// except the ones a Gen mints while finals are enabled). Because all
// three fields participate in equality, states minted from two different
// Gens can never collide, and Gen never needs to hand out string names
// like the ad hoc "1:"+name prefixing scheme it replaces.
type ID struct {
	fragment uuid.UUID
	seq      uint64
	tag      any
}

func (id ID) String() string {
	return fmt.Sprintf("%s#%d", id.fragment.String()[:8], id.seq)
}

// Gen mints fresh state identities for exactly one production's ε-NFA
// fragment build. Every ID it returns shares Gen's fragment UUID;
// sequence numbers are monotone for the lifetime of the Gen.
type Gen[K comparable] struct {
	fragment uuid.UUID
	next     uint64
	kind     Tag[K]
	finalsOn bool
}

// NewGen constructs a Gen for a production whose resolved tag is kind
// (None() for a skip production).
func NewGen[K comparable](kind Tag[K]) *Gen[K] {
	return &Gen[K]{
		fragment: uuid.New(),
		kind:     kind,
		finalsOn: true,
	}
}

func (g *Gen[K]) mint(t Tag[K]) ID {
	id := ID{fragment: g.fragment, seq: g.next, tag: t}
	g.next++
	return id
}

// NextInitial mints a fresh state with tag forced absent.
func (g *Gen[K]) NextInitial() ID {
	return g.mint(None[K]())
}

// NextEphemeral mints a fresh internal (non-accepting) state with tag
// forced absent.
func (g *Gen[K]) NextEphemeral() ID {
	return g.mint(None[K]())
}

// NextFinal mints a fresh accepting state. Its tag equals the production's
// tag iff finals are currently enabled, else absent.
func (g *Gen[K]) NextFinal() ID {
	if g.finalsOn {
		return g.mint(g.kind)
	}
	return g.mint(None[K]())
}

// DisableFinals suppresses tag-carrying on subsequently minted final
// states. Used while building a sub-fragment (e.g. the body of a
// repetition or one alternative of an alternation) so that its internal
// accepting state does not leak the production's tag into the outer
// fragment; only the outermost accepting boundary should carry it.
func (g *Gen[K]) DisableFinals() {
	g.finalsOn = false
}

// EnableFinals re-enables tag-carrying on NextFinal, restoring the
// default state. Call this at the outermost accepting boundary of a
// fragment build.
func (g *Gen[K]) EnableFinals() {
	g.finalsOn = true
}

// FinalsEnabled reports whether NextFinal currently mints tag-carrying
// states. Composite builders (alternation, concatenation, repetition) use
// this to save their caller's finals state before disabling it for a
// sub-build, then restore exactly that saved state afterward -- so a
// repetition nested two levels deep inside a disabled context is not
// accidentally re-enabled by the inner level finishing its sub-build.
func (g *Gen[K]) FinalsEnabled() bool {
	return g.finalsOn
}

// TagOf returns id's carried tag if id was minted while finals were
// enabled for an accepting state, or None otherwise. Read back by
// automaton's subset construction (ENFA.ToDFA) to label the candidates of
// accepting DFA states.
func TagOf[K comparable](id ID) Tag[K] {
	t, ok := id.tag.(Tag[K])
	if !ok {
		return None[K]()
	}
	return t
}

// FragmentKey returns the UUID of the Gen that minted id. Every ID minted
// by one Gen (hence belonging to one production's fragment build) shares
// this value, so it doubles as a stable "which production did this come
// from" key for priority resolution once fragments have been grafted
// together by Union.
func FragmentKey(id ID) uuid.UUID {
	return id.fragment
}

// Key returns a canonical, collision-free string representation of id,
// suitable for use building the string keys subset construction needs
// for its DFA-state-as-set-of-NFA-states map (Go maps can't be keyed by
// util.Set[ID] directly, since a map type isn't itself comparable).
func Key(id ID) string {
	return fmt.Sprintf("%s:%d", id.fragment, id.seq)
}
