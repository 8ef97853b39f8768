package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseTypesEquals(t *testing.T) {
	assert.True(t, TInt.Equals(TInt))
	assert.False(t, TInt.Equals(TFloat))
	assert.Equal(t, "Int", TInt.String())
}

func TestFuncStringOmitsEmptyEffect(t *testing.T) {
	f := &Func{Params: []Type{TInt}, Eff: EmptyEffectRow(), Result: TBool}
	assert.Equal(t, "Int -> Bool", f.String())
}

func TestFuncStringShowsOpenEffect(t *testing.T) {
	f := &Func{
		Params: []Type{TInt},
		Eff:    &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}},
		Result: TUnit,
	}
	assert.Contains(t, f.String(), "! {IO}")
}

func TestListAndTupleEquals(t *testing.T) {
	a := &ListT{Elem: TInt}
	b := &ListT{Elem: TInt}
	c := &ListT{Elem: TText}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))

	t1 := &Tuple{Elems: []Type{TInt, TText}}
	t2 := &Tuple{Elems: []Type{TInt, TText}}
	t3 := &Tuple{Elems: []Type{TInt}}
	assert.True(t, t1.Equals(t2))
	assert.False(t, t1.Equals(t3))
}

func TestRecordEqualsRespectsRow(t *testing.T) {
	r1 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TText}}}
	r2 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TText}}}
	r3 := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TInt}}}
	assert.True(t, r1.Equals(r2))
	assert.False(t, r1.Equals(r3))
}

func TestVarSubstitute(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	sub := Substitution{"a": TInt}
	assert.True(t, v.Substitute(sub).Equals(TInt))

	unbound := &Var{Name: "b", K: Star}
	assert.True(t, unbound.Substitute(sub).Equals(unbound))
}

func TestAppSubstitute(t *testing.T) {
	v := &Var{Name: "a", K: Star}
	app := &App{Head: &Con{Name: "Option"}, Args: []Type{v}}
	sub := Substitution{"a": TInt}
	got := app.Substitute(sub)
	assert.Equal(t, "Option Int", got.String())
}

func TestRecordStringRendersFields(t *testing.T) {
	r := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{"name": TText, "age": TInt}}}
	assert.Equal(t, "{age: Int, name: Text}", r.String())
}

func TestEffectRowStringRendersLabelsOnly(t *testing.T) {
	r := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit, "Net": TUnit}}
	assert.Equal(t, "{IO, Net}", r.String())
}

func TestOpenRowStringShowsTail(t *testing.T) {
	tail := &Var{Name: "rho1", K: EffectRow}
	r := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}, Tail: tail}
	assert.Equal(t, "{IO, ...rho1}", r.String())
}
