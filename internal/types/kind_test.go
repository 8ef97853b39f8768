package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindEquals(t *testing.T) {
	assert.True(t, Star.Equals(Star))
	assert.True(t, Star.Equals(KStar{}))
	assert.False(t, Star.Equals(Effect))
	assert.True(t, EffectRow.Equals(KRow{Elem: Effect}))
	assert.False(t, EffectRow.Equals(FieldRow))
	assert.False(t, EffectRow.Equals(Star))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "*", Star.String())
	assert.Equal(t, "Effect", Effect.String())
	assert.Equal(t, "Field", Field.String())
	assert.Contains(t, EffectRow.String(), "Effect")
}
