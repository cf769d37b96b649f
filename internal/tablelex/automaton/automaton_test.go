package automaton

import (
	"testing"

	"github.com/dekarrin/tablelex/internal/tablelex/regex"
	"github.com/dekarrin/tablelex/internal/tablelex/tag"
	"github.com/stretchr/testify/assert"
)

// walk runs s through a compiled DFA and returns the final state key and
// whether every rune had a valid transition.
func walk[K comparable](d *DFA[K], s string) (string, bool) {
	cur := d.Start()
	for _, c := range s {
		next, ok := d.Step(cur, c)
		if !ok {
			return cur, false
		}
		cur = next
	}
	return cur, true
}

func Test_Build_Symbol(t *testing.T) {
	assert := assert.New(t)

	g := tag.NewGen(tag.Some("A"))
	frag := Build[string](regex.Lit('a'), g)
	dfa := frag.NFA.ToDFA()

	final, ok := walk(dfa, "a")
	assert.True(ok)
	assert.True(dfa.State(final).Accepting())

	_, ok = walk(dfa, "b")
	assert.False(ok)
}

func Test_Build_Concatenation(t *testing.T) {
	assert := assert.New(t)

	g := tag.NewGen(tag.Some("AB"))
	r := regex.Cat(regex.Lit('a'), regex.Lit('b'))
	frag := Build[string](r, g)
	dfa := frag.NFA.ToDFA()

	final, ok := walk(dfa, "ab")
	assert.True(ok)
	assert.True(dfa.State(final).Accepting())

	mid, ok := walk(dfa, "a")
	assert.True(ok)
	assert.False(dfa.State(mid).Accepting())
}

func Test_Build_Alternation(t *testing.T) {
	assert := assert.New(t)

	g := tag.NewGen(tag.Some("AORB"))
	r := regex.Alt(regex.Lit('a'), regex.Lit('b'))
	frag := Build[string](r, g)
	dfa := frag.NFA.ToDFA()

	for _, s := range []string{"a", "b"} {
		final, ok := walk(dfa, s)
		assert.Truef(ok, "input %q", s)
		assert.Truef(dfa.State(final).Accepting(), "input %q", s)
	}

	_, ok := walk(dfa, "c")
	assert.False(ok)
}

func Test_Build_Star(t *testing.T) {
	assert := assert.New(t)

	g := tag.NewGen(tag.Some("AS"))
	r := regex.Star(regex.Lit('a'))
	frag := Build[string](r, g)
	dfa := frag.NFA.ToDFA()

	for _, s := range []string{"", "a", "aaaa"} {
		final, ok := walk(dfa, s)
		assert.Truef(ok, "input %q", s)
		assert.Truef(dfa.State(final).Accepting(), "input %q", s)
	}
}

func Test_Build_BoundedRepetition_Unrolls(t *testing.T) {
	assert := assert.New(t)

	g := tag.NewGen(tag.Some("A12"))
	r := regex.Rep(regex.Lit('a'), 1, 2)
	frag := Build[string](r, g)
	dfa := frag.NFA.ToDFA()

	for _, s := range []string{"a", "aa"} {
		final, ok := walk(dfa, s)
		assert.Truef(ok, "input %q", s)
		assert.Truef(dfa.State(final).Accepting(), "input %q", s)
	}

	// three copies is one too many for {1,2}.
	final, ok := walk(dfa, "aaa")
	if ok {
		assert.False(dfa.State(final).Accepting())
	}

	empty, _ := walk(dfa, "")
	assert.False(dfa.State(empty).Accepting())
}

func Test_Union_SharesStartState(t *testing.T) {
	assert := assert.New(t)

	gA := tag.NewGen(tag.Some("A"))
	fragA := Build[string](regex.Lit('a'), gA)

	gB := tag.NewGen(tag.Some("B"))
	fragB := Build[string](regex.Lit('b'), gB)

	union := Union([]Fragment[string]{fragA, fragB})
	dfa := union.ToDFA()

	finalA, ok := walk(dfa, "a")
	assert.True(ok)
	assert.Equal([]string{"A"}, candidateKinds(dfa.State(finalA).Candidates()))

	finalB, ok := walk(dfa, "b")
	assert.True(ok)
	assert.Equal([]string{"B"}, candidateKinds(dfa.State(finalB).Candidates()))
}

func candidateKinds(cands []Candidate[string]) []string {
	var out []string
	for _, c := range cands {
		if k, ok := c.Tag.Kind(); ok {
			out = append(out, k)
		}
	}
	return out
}
