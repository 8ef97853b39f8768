package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDebugInstrumentationNoopWhenDisabled(t *testing.T) {
	prog := mustDesugar(t, "module m\nr = 1 |> add1\nadd1 x = x + 1\n")
	before := prog.Decls["m"]["r"].Body
	out := ApplyDebugInstrumentation(prog, false)
	assert.Same(t, before, out.Decls["m"]["r"].Body)
}

func TestApplyDebugInstrumentationWrapsPipeStages(t *testing.T) {
	prog := mustDesugar(t, "module m\nr = 1 |> add1 |> add1\nadd1 x = x + 1\n")
	out := ApplyDebugInstrumentation(prog, true)
	pipe, ok := out.Decls["m"]["r"].Body.(*Pipe)
	require.True(t, ok)
	assert.Equal(t, 2, pipe.Step)
	innerPipe, ok := pipe.Call.Args[0].(*Pipe)
	require.True(t, ok)
	assert.Equal(t, 1, innerPipe.Step)
	assert.Equal(t, pipe.ID, innerPipe.ID)
}

func TestApplyDebugInstrumentationWrapsDebugFn(t *testing.T) {
	prog := mustDesugar(t, "module m\n@debug\nadd1 x = x + 1\n")
	out := ApplyDebugInstrumentation(prog, true)
	fn, ok := out.Decls["m"]["add1"].Body.(*DebugFn)
	require.True(t, ok)
	_, isLambda := fn.Fn.(*Lambda)
	assert.True(t, isLambda)
}

func TestApplyDebugInstrumentationLeavesOrdinaryCallsAlone(t *testing.T) {
	prog := mustDesugar(t, "module m\nr = add1 1\nadd1 x = x + 1\n")
	out := ApplyDebugInstrumentation(prog, true)
	call, ok := out.Decls["m"]["r"].Body.(*Call)
	require.True(t, ok)
	assert.Zero(t, call.PipeID)
}
