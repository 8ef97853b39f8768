package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreludeClassEnvResolvesBaseInstances(t *testing.T) {
	env := NewPreludeClassEnv()

	_, err := env.Resolve("Num", TInt)
	require.NoError(t, err)

	_, err = env.Resolve("Eq", TText)
	require.NoError(t, err)

	_, err = env.Resolve("Ord", TBool)
	require.Error(t, err) // Bool has no Ord instance in the prelude
}

func TestResolveMissingInstance(t *testing.T) {
	env := NewClassEnv()
	env.DeclareClass(&Class{Name: "Show", Members: map[string]*Scheme{}})
	_, err := env.Resolve("Show", &Con{Name: "Widget"})
	require.Error(t, err)
	var missing *MissingInstanceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Show", missing.Class)
}

func TestResolveMissingSuperclass(t *testing.T) {
	env := NewClassEnv()
	env.DeclareClass(&Class{Name: "Eq", Members: map[string]*Scheme{}})
	env.DeclareClass(&Class{Name: "Ord", Superclasses: []string{"Eq"}, Members: map[string]*Scheme{}})

	widget := &Con{Name: "Widget"}
	require.NoError(t, env.AddInstance(&Instance{Class: "Ord", Head: widget}))

	_, err := env.Resolve("Ord", widget)
	require.Error(t, err)
	var missingSuper *MissingSuperclassError
	require.ErrorAs(t, err, &missingSuper)
	assert.Equal(t, "Eq", missingSuper.Super)
}

func TestResolveSucceedsWhenSuperclassSatisfied(t *testing.T) {
	env := NewClassEnv()
	env.DeclareClass(&Class{Name: "Eq", Members: map[string]*Scheme{}})
	env.DeclareClass(&Class{Name: "Ord", Superclasses: []string{"Eq"}, Members: map[string]*Scheme{}})

	widget := &Con{Name: "Widget"}
	require.NoError(t, env.AddInstance(&Instance{Class: "Eq", Head: widget}))
	require.NoError(t, env.AddInstance(&Instance{Class: "Ord", Head: widget}))

	_, err := env.Resolve("Ord", widget)
	assert.NoError(t, err)
}

func TestAddInstanceRejectsOverlap(t *testing.T) {
	env := NewClassEnv()
	env.DeclareClass(&Class{Name: "Show", Members: map[string]*Scheme{}})
	widget := &Con{Name: "Widget"}
	require.NoError(t, env.AddInstance(&Instance{Class: "Show", Head: widget}))
	err := env.AddInstance(&Instance{Class: "Show", Head: widget})
	require.Error(t, err)
}

func TestHeadKeyIgnoresTypeArguments(t *testing.T) {
	a := &App{Head: &Con{Name: "Option"}, Args: []Type{TInt}}
	b := &App{Head: &Con{Name: "Option"}, Args: []Type{TText}}
	assert.Equal(t, headKey(a), headKey(b))
}

func TestHeadKeyDistinguishesShapes(t *testing.T) {
	assert.NotEqual(t, headKey(&ListT{Elem: TInt}), headKey(&Tuple{Elems: []Type{TInt, TInt}}))
	assert.NotEqual(t, headKey(&Record{Row: EmptyFieldRow()}), headKey(&Func{Params: []Type{TInt}, Eff: EmptyEffectRow(), Result: TInt}))
}
