package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyBaseTypes(t *testing.T) {
	sub, err := Unify(TInt, TInt, Substitution{})
	require.NoError(t, err)
	assert.Empty(t, sub)

	_, err = Unify(TInt, TFloat, Substitution{})
	require.Error(t, err)
}

func TestUnifyBindsVar(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	sub, err := Unify(v, TInt, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub["a"].Equals(TInt))

	// Symmetric: var on the right binds too.
	sub2, err := Unify(TInt, v, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub2["a"].Equals(TInt))
}

func TestUnifyOccursCheck(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	listOfA := &ListT{Elem: v}
	_, err := Unify(v, listOfA, Substitution{})
	require.Error(t, err)
	var occ *OccursCheckError
	require.ErrorAs(t, err, &occ)
	assert.Equal(t, "a", occ.Var)
}

func TestUnifyKindMismatch(t *testing.T) {
	scalar := &Var{Name: "a", K: Star}
	row := &Row{K: EffectRow, Labels: map[string]Type{}}
	_, err := bindVar(scalar, &Record{Row: row}, Substitution{})
	// binding a *-kinded var to a Record (kind *) is fine; exercise an
	// actual kind clash instead: a row-kinded var bound to a scalar Con.
	require.NoError(t, err)

	rowVar := &Var{Name: "rho", K: EffectRow}
	_, err = bindVar(rowVar, TInt, Substitution{})
	require.Error(t, err)
	var km *KindMismatchError
	require.ErrorAs(t, err, &km)
}

func TestUnifyFuncParamsAndResult(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	f1 := &Func{Params: []Type{a}, Eff: EmptyEffectRow(), Result: TBool}
	f2 := &Func{Params: []Type{TInt}, Eff: EmptyEffectRow(), Result: TBool}
	sub, err := Unify(f1, f2, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub["a"].Equals(TInt))
}

func TestUnifyFuncArityMismatch(t *testing.T) {
	f1 := &Func{Params: []Type{TInt}, Eff: EmptyEffectRow(), Result: TBool}
	f2 := &Func{Params: []Type{TInt, TInt}, Eff: EmptyEffectRow(), Result: TBool}
	_, err := Unify(f1, f2, Substitution{})
	require.Error(t, err)
}

func TestUnifyFuncEffectRows(t *testing.T) {
	f1 := &Func{Params: []Type{TInt}, Eff: &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}}, Result: TUnit}
	f2 := &Func{Params: []Type{TInt}, Eff: &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}}, Result: TUnit}
	_, err := Unify(f1, f2, Substitution{})
	require.NoError(t, err)

	f3 := &Func{Params: []Type{TInt}, Eff: &Row{K: EffectRow, Labels: map[string]Type{"Net": TUnit}}, Result: TUnit}
	_, err = Unify(f1, f3, Substitution{})
	require.Error(t, err)
}

func TestUnifyTuples(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	t1 := &Tuple{Elems: []Type{a, TText}}
	t2 := &Tuple{Elems: []Type{TInt, TText}}
	sub, err := Unify(t1, t2, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub["a"].Equals(TInt))

	t3 := &Tuple{Elems: []Type{TInt}}
	_, err = Unify(t1, t3, Substitution{})
	require.Error(t, err)
}

func TestUnifyListElem(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	l1 := &ListT{Elem: a}
	l2 := &ListT{Elem: TText}
	sub, err := Unify(l1, l2, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub["a"].Equals(TText))
}

func TestUnifyRecords(t *testing.T) {
	r1 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TText}}}
	r2 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TText}}}
	_, err := Unify(r1, r2, Substitution{})
	require.NoError(t, err)

	r3 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TInt}}}
	_, err = Unify(r1, r3, Substitution{})
	require.Error(t, err)
}

func TestUnifyAppArgs(t *testing.T) {
	a := &Var{Name: "a", K: Star}
	app1 := &App{Head: &Con{Name: "Option"}, Args: []Type{a}}
	app2 := &App{Head: &Con{Name: "Option"}, Args: []Type{TInt}}
	sub, err := Unify(app1, app2, Substitution{})
	require.NoError(t, err)
	assert.True(t, sub["a"].Equals(TInt))
}
