package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnifyRows_ClosedClosed covers the case the original compiler's row-unification
// regression suite exists to guard: unifying two closed rows must match
// their label sets exactly, in either argument order.
func TestUnifyRows_ClosedClosed(t *testing.T) {
	r1 := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}}
	r2 := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}}
	_, err := unifyRows(r1, r2, Substitution{})
	require.NoError(t, err)

	r3 := &Row{K: EffectRow, Labels: map[string]Type{"Net": TUnit}}
	_, err = unifyRows(r1, r3, Substitution{})
	require.Error(t, err)
	var mismatch *RowMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"IO"}, mismatch.Missing)
	assert.Equal(t, []string{"Net"}, mismatch.Extra)
}

func TestUnifyRows_OpenClosedAbsorbsExtraLabels(t *testing.T) {
	tail := &Var{Name: "rho1", K: EffectRow}
	open := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}, Tail: tail}
	closed := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit, "Net": TUnit}}

	sub, err := unifyRows(open, closed, Substitution{})
	require.NoError(t, err)
	bound, ok := sub["rho1"].(*Row)
	require.True(t, ok)
	assert.Contains(t, bound.Labels, "Net")
	assert.NotContains(t, bound.Labels, "IO")
}

func TestUnifyRows_ClosedOpenIsSymmetric(t *testing.T) {
	tail := &Var{Name: "rho1", K: EffectRow}
	open := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}, Tail: tail}
	closed := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit, "Net": TUnit}}

	subA, errA := unifyRows(open, closed, Substitution{})
	subB, errB := unifyRows(closed, open, Substitution{})
	require.NoError(t, errA)
	require.NoError(t, errB)

	boundA := subA["rho1"].(*Row)
	boundB := subB["rho1"].(*Row)
	assert.Equal(t, boundA.Labels, boundB.Labels)
}

func TestUnifyRows_OpenOpenSameTailMustAlreadyMatch(t *testing.T) {
	tail := &Var{Name: "rho1", K: EffectRow}
	r1 := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}, Tail: tail}
	r2 := &Row{K: EffectRow, Labels: map[string]Type{"Net": TUnit}, Tail: tail}

	_, err := unifyRows(r1, r2, Substitution{})
	require.Error(t, err)
}

func TestUnifyRows_OpenOpenDifferentTailsShareFreshRemainder(t *testing.T) {
	t1 := &Var{Name: "rho1", K: EffectRow}
	t2 := &Var{Name: "rho2", K: EffectRow}
	r1 := &Row{K: EffectRow, Labels: map[string]Type{"IO": TUnit}, Tail: t1}
	r2 := &Row{K: EffectRow, Labels: map[string]Type{"Net": TUnit}, Tail: t2}

	sub, err := unifyRows(r1, r2, Substitution{})
	require.NoError(t, err)

	b1 := sub["rho1"].(*Row)
	b2 := sub["rho2"].(*Row)
	assert.Contains(t, b1.Labels, "Net")
	assert.Contains(t, b2.Labels, "IO")
	require.NotNil(t, b1.Tail)
	require.NotNil(t, b2.Tail)
	assert.Equal(t, b1.Tail.Name, b2.Tail.Name)
}

func TestUnifyRows_KindMismatch(t *testing.T) {
	r1 := &Row{K: EffectRow, Labels: map[string]Type{}}
	r2 := &Row{K: FieldRow, Labels: map[string]Type{}}
	_, err := unifyRows(r1, r2, Substitution{})
	require.Error(t, err)
}

func TestRowHasField(t *testing.T) {
	r := &Row{K: FieldRow, Labels: map[string]Type{"name": TText}}
	ty, ok := RowHasField(r, "name")
	require.True(t, ok)
	assert.True(t, ty.Equals(TText))

	_, ok = RowHasField(r, "age")
	assert.False(t, ok)

	_, ok = RowHasField(nil, "name")
	assert.False(t, ok)
}
