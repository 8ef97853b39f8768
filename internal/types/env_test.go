package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshVarFactoryProducesDistinctNames(t *testing.T) {
	f := NewFreshVarFactory(0)
	a := f.Fresh(Star)
	b := f.Fresh(Star)
	assert.NotEqual(t, a.Name, b.Name)

	row := f.FreshRow(Effect)
	assert.True(t, row.K.Equals(EffectRow))
}

func TestEnvLookupMonoAndPoly(t *testing.T) {
	env := NewEnv()
	env.BindMono("x", TInt)
	env.BindPoly("id", &Scheme{Vars: []string{"a"}, Type: &Func{Params: []Type{&Var{Name: "a", K: Star}}, Eff: EmptyEffectRow(), Result: &Var{Name: "a", K: Star}}})

	fresh := NewFreshVarFactory(0)

	got, ok := env.Lookup("x", fresh.Fresh)
	require.True(t, ok)
	assert.True(t, got.Equals(TInt))

	idTy, ok := env.Lookup("id", fresh.Fresh)
	require.True(t, ok)
	fn, ok := idTy.(*Func)
	require.True(t, ok)
	// Each lookup of a polymorphic scheme instantiates fresh variables,
	// so the param and result share a variable but it is not literally "a".
	paramVar, ok := fn.Params[0].(*Var)
	require.True(t, ok)
	resultVar, ok := fn.Result.(*Var)
	require.True(t, ok)
	assert.Equal(t, paramVar.Name, resultVar.Name)
}

func TestEnvLookupFallsThroughToParent(t *testing.T) {
	parent := NewEnv()
	parent.BindMono("x", TInt)
	child := parent.Child()

	fresh := NewFreshVarFactory(0)
	got, ok := child.Lookup("x", fresh.Fresh)
	require.True(t, ok)
	assert.True(t, got.Equals(TInt))

	_, ok = child.Lookup("nope", fresh.Fresh)
	assert.False(t, ok)
}

func TestGeneralizeQuantifiesOnlyLocalVars(t *testing.T) {
	env := NewEnv()
	outer := &Var{Name: "outer", K: Star}
	env.BindMono("captured", outer)

	child := env.Child()
	local := &Var{Name: "local", K: Star}
	fn := &Func{Params: []Type{local}, Eff: EmptyEffectRow(), Result: outer}

	scheme := Generalize(child, fn, nil)
	assert.Contains(t, scheme.Vars, "local")
	assert.NotContains(t, scheme.Vars, "outer")
}

func TestInstantiateFreshRenamesQuantified(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	scheme := &Scheme{Vars: []string{"a"}, Type: &ListT{Elem: a}}
	fresh := NewFreshVarFactory(0)

	t1 := Instantiate(scheme, fresh.Fresh)
	t2 := Instantiate(scheme, fresh.Fresh)
	assert.NotEqual(t, t1.String(), t2.String())
}

func TestInstantiateMonoSchemeReturnsSameType(t *testing.T) {
	scheme := &Scheme{Type: TInt}
	fresh := NewFreshVarFactory(0)
	assert.True(t, Instantiate(scheme, fresh.Fresh).Equals(TInt))
}
