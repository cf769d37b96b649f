package lex

import (
	"github.com/dekarrin/tablelex/internal/tablelex/regex"
	"github.com/dekarrin/tablelex/internal/tablelex/tag"
)

// Production pairs a regex with an optional token kind. An absent kind
// marks the production a skip rule: a lexeme accepted only by skip
// productions (no accepting production with a present kind) is consumed
// and discarded rather than emitted as a Token.
type Production[K comparable] struct {
	Regex regex.Regex
	Kind  tag.Tag[K]
}

// NewProduction returns a Production that emits a Token of kind when its
// Regex provides the winning match.
func NewProduction[K comparable](r regex.Regex, kind K) Production[K] {
	return Production[K]{Regex: r, Kind: tag.Some(kind)}
}

// NewSkip returns a skip Production: matching text is consumed without
// producing a Token.
func NewSkip[K comparable](r regex.Regex) Production[K] {
	return Production[K]{Regex: r, Kind: tag.None[K]()}
}
