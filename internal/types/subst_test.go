package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEmptySubstitutionIsNoop(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	assert.Same(t, Type(v), Apply(Substitution{}, v))
}

func TestApplyReplacesVar(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	sub := Substitution{"a": TInt}
	assert.True(t, Apply(sub, v).Equals(TInt))
}

func TestComposeChainsSubstitutions(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	b := &Var{Name: "b", K: Star}
	s1 := Substitution{"a": b}
	s2 := Substitution{"b": TInt}
	composed := Compose(s1, s2)
	assert.True(t, Apply(composed, a).Equals(TInt))
	assert.True(t, Apply(composed, b).Equals(TInt))
}

func TestComposePrefersFirstSubstitution(t *testing.T) {
	s1 := Substitution{"a": TInt}
	s2 := Substitution{"a": TFloat}
	composed := Compose(s1, s2)
	assert.True(t, composed["a"].Equals(TInt))
}
