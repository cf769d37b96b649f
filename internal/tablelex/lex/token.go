package lex

import "fmt"

// Token is a lexeme read from text paired with the kind of the
// production that matched it.
type Token[K comparable] struct {
	Kind K
	Text string
}

func (t Token[K]) String() string {
	return fmt.Sprintf("%v(%q)", t.Kind, t.Text)
}
