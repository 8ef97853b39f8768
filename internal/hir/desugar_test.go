package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/parser"
	"github.com/sunholo/aivi/internal/resolver"
)

func mustDesugar(t *testing.T, src string) *Program {
	t.Helper()
	mod, pdiags := parser.Parse(src, "m.aivi")
	require.Empty(t, pdiags, "unexpected parse diagnostics: %+v", pdiags)
	prog, rdiags := resolver.Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Empty(t, rdiags, "unexpected resolver diagnostics: %+v", rdiags)
	hprog, hdiags := Desugar(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, hdiags, "unexpected desugar diagnostics: %+v", hdiags)
	return hprog
}

func TestDesugarValueDefHasNoLambda(t *testing.T) {
	prog := mustDesugar(t, "module m\nxs = [1, 2, 3]\n")
	decl := prog.Decls["m"]["xs"]
	require.NotNil(t, decl)
	_, isList := decl.Body.(*List)
	assert.True(t, isList)
}

func TestDesugarSingleClauseDefBecomesLambda(t *testing.T) {
	prog := mustDesugar(t, "module m\nadd1 x = x + 1\n")
	decl := prog.Decls["m"]["add1"]
	require.NotNil(t, decl)
	lam, ok := decl.Body.(*Lambda)
	require.True(t, ok)
	assert.Len(t, lam.Params, 1)
	bin, ok := lam.Body.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	v, ok := bin.Left.(*Var)
	require.True(t, ok)
	assert.Equal(t, ScopeLocal, v.Scope)
}

func TestDesugarMultiClauseLiftsIntoMultiClause(t *testing.T) {
	prog := mustDesugar(t, "module m\nfact 0 = 1\nfact n = n\n")
	decl := prog.Decls["m"]["fact"]
	require.NotNil(t, decl)
	mc, ok := decl.Body.(*MultiClause)
	require.True(t, ok)
	assert.Equal(t, 1, mc.Arity)
	assert.Len(t, mc.Clauses, 2)
}

func TestDesugarPipelineNumbersStages(t *testing.T) {
	prog := mustDesugar(t, "module m\nr = 1 |> add1 |> add1\nadd1 x = x + 1\n")
	decl := prog.Decls["m"]["r"]
	require.NotNil(t, decl)
	call, ok := decl.Body.(*Call)
	require.True(t, ok, "expected outermost node to be a Call")
	assert.NotZero(t, call.PipeID)
	assert.Equal(t, 2, call.PipeStep)
	inner, ok := call.Args[0].(*Call)
	require.True(t, ok)
	assert.Equal(t, call.PipeID, inner.PipeID)
	assert.Equal(t, 1, inner.PipeStep)
}

func TestDesugarInlineDecoratorSetsFlag(t *testing.T) {
	prog := mustDesugar(t, "module m\n@inline\nadd1 x = x + 1\n")
	decl := prog.Decls["m"]["add1"]
	require.NotNil(t, decl)
	assert.True(t, decl.Inline)
}

func TestDesugarDebugDecoratorRecordsOpts(t *testing.T) {
	prog := mustDesugar(t, "module m\n@debug(pipes, timing)\nadd1 x = x + 1\n")
	decl := prog.Decls["m"]["add1"]
	require.NotNil(t, decl)
	require.NotNil(t, decl.Debug)
	assert.Equal(t, []string{"pipes", "timing"}, decl.Debug.Opts)
}

func TestDesugarEffectBlockWrapsBareTailInPure(t *testing.T) {
	prog := mustDesugar(t, "module m\nrun = effect { console.log \"hi\" }\n")
	decl := prog.Decls["m"]["run"]
	require.NotNil(t, decl)
	block, ok := decl.Body.(*Block)
	require.True(t, ok)
	require.Len(t, block.Items, 1)
	call, ok := block.Items[0].Expr.(*Call)
	require.True(t, ok)
	v, ok := call.Func.(*Var)
	require.True(t, ok)
	assert.Equal(t, "pure", v.Name)
}

func TestDesugarEffectBlockLeavesExplicitPureAlone(t *testing.T) {
	prog := mustDesugar(t, "module m\nrun = effect { pure 1 }\n")
	decl := prog.Decls["m"]["run"]
	require.NotNil(t, decl)
	block, ok := decl.Body.(*Block)
	require.True(t, ok)
	call, ok := block.Items[0].Expr.(*Call)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].(*Lit)
	require.True(t, ok)
	_ = lit
}

func TestDesugarResourceBlockSplitsCleanupAfterYield(t *testing.T) {
	prog := mustDesugar(t, "module m\nwithFile = resource { f <- file.open \"x\"\nyield f\nfile.close f }\n")
	decl := prog.Decls["m"]["withFile"]
	require.NotNil(t, decl)
	block, ok := decl.Body.(*Block)
	require.True(t, ok)
	assert.Equal(t, ast.BlockResource, block.Kind)
	require.Len(t, block.Items, 3)
	assert.NotNil(t, block.Items[0].Bind)
	assert.NotNil(t, block.Items[1].Yield)
	cleanup, ok := block.Items[2].Expr.(*Block)
	require.True(t, ok, "expected post-yield item to be lifted into a cleanup block")
	assert.Equal(t, ast.BlockEffect, cleanup.Kind)
	require.Len(t, cleanup.Items, 1)
	call, ok := cleanup.Items[0].Expr.(*Call)
	require.True(t, ok)
	v, ok := call.Func.(*Var)
	require.True(t, ok)
	assert.Equal(t, "pure", v.Name, "cleanup tail is itself wrapped in pure")
}

func TestDesugarBlockLocalsDoNotLeakPastTheBlock(t *testing.T) {
	prog := mustDesugar(t, "module m\nr = do { n <- pure 1\nn }\nn = 2\nuseN = n\n")
	decl := prog.Decls["m"]["useN"]
	require.NotNil(t, decl)
	v, ok := decl.Body.(*Var)
	require.True(t, ok)
	assert.Equal(t, ScopeModule, v.Scope, "module-level 'n' must not still resolve as the earlier block's local bind")
}
