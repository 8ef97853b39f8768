package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainEnvResolveOpNoMatchFallsThrough(t *testing.T) {
	env := NewDomainEnv()
	d, err := env.ResolveOp("+", TInt)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDomainEnvResolveOpSingleMatch(t *testing.T) {
	env := NewDomainEnv()
	money := &Con{Name: "Money"}
	env.Add(&Domain{Name: "MoneyDomain", Host: money, Ops: map[string]Type{"+": nil}, Suffix: map[string]string{}})

	d, err := env.ResolveOp("+", money)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "MoneyDomain", d.Name)
}

func TestDomainEnvResolveOpAmbiguous(t *testing.T) {
	env := NewDomainEnv()
	money := &Con{Name: "Money"}
	env.Add(&Domain{Name: "A", Host: money, Ops: map[string]Type{"+": nil}, Suffix: map[string]string{}})
	env.Add(&Domain{Name: "B", Host: money, Ops: map[string]Type{"+": nil}, Suffix: map[string]string{}})

	_, err := env.ResolveOp("+", money)
	require.Error(t, err)
	var ambiguous *AmbiguousDomainError
	require.ErrorAs(t, err, &ambiguous)
	assert.ElementsMatch(t, []string{"A", "B"}, ambiguous.Domains)
}

func TestDomainEnvResolveSuffix(t *testing.T) {
	env := NewDomainEnv()
	dur := &Con{Name: "Duration"}
	env.Add(&Domain{Name: "TimeDomain", Host: dur, Ops: map[string]Type{}, Suffix: map[string]string{"ms": "Millis"}})

	d, ctor, ok := env.ResolveSuffix("ms")
	require.True(t, ok)
	assert.Equal(t, "TimeDomain", d.Name)
	assert.Equal(t, "Millis", ctor)

	_, _, ok = env.ResolveSuffix("nope")
	assert.False(t, ok)
}

func TestDomainDeltaOpType(t *testing.T) {
	dur := &Con{Name: "Duration"}
	delta := &Con{Name: "Millis"}
	d := &Domain{Name: "TimeDomain", Host: dur, Delta: delta}

	fn, ok := d.DeltaOpType()
	require.True(t, ok)
	assert.True(t, fn.Params[0].Equals(dur))
	assert.True(t, fn.Params[1].Equals(delta))
	assert.True(t, fn.Result.Equals(dur))

	noDelta := &Domain{Name: "Plain", Host: dur}
	_, ok = noDelta.DeltaOpType()
	assert.False(t, ok)
}
