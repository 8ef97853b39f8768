package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceToTextNotNeededWhenWantIsNotText(t *testing.T) {
	env := NewPreludeClassEnv()
	needed, err := CoerceToText(env, TInt, TInt)
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestCoerceToTextNotNeededWhenAlreadyText(t *testing.T) {
	env := NewPreludeClassEnv()
	needed, err := CoerceToText(env, TText, TText)
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestCoerceToTextNeededWithInstance(t *testing.T) {
	env := NewPreludeClassEnv()
	needed, err := CoerceToText(env, TInt, TText)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestCoerceToTextErrorsWithoutInstance(t *testing.T) {
	env := NewClassEnv() // no ToText instances registered
	widget := &Con{Name: "Widget"}
	_, err := CoerceToText(env, widget, TText)
	require.Error(t, err)
	var coErr *CoercionError
	require.ErrorAs(t, err, &coErr)
	assert.True(t, coErr.From.Equals(widget))
}
