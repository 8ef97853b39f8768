package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/parser"
	"github.com/sunholo/aivi/internal/resolver"
)

func mustParse(t *testing.T, src, path string) *ast.Module {
	t.Helper()
	mod, diags := parser.Parse(src, path)
	require.Empty(t, diags, "unexpected parse diagnostics: %+v", diags)
	return mod
}

func mustResolve(t *testing.T, mod *ast.Module, name string) *resolver.Program {
	t.Helper()
	prog, diags := resolver.Resolve(map[string]*ast.Module{name: mod}, name)
	require.Empty(t, diags, "unexpected resolver diagnostics: %+v", diags)
	return prog
}

func TestInferSimpleDefGeneralizesIdentity(t *testing.T) {
	mod := mustParse(t, `module m
id x = x
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)

	scheme := result.Schemes["m"]["id"]
	require.NotNil(t, scheme)
	assert.NotEmpty(t, scheme.Vars, "identity should generalize over its parameter")
}

func TestInferArithmeticIsInt(t *testing.T) {
	mod := mustParse(t, `module m
add1 x = x + 1
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)

	scheme := result.Schemes["m"]["add1"]
	require.NotNil(t, scheme)
	fn, ok := scheme.Type.(*Func)
	require.True(t, ok)
	assert.True(t, fn.Result.Equals(TInt))
}

func TestInferIfBranchMismatchReportsDiagnostic(t *testing.T) {
	mod := mustParse(t, `module m
f x = if x then 1 else "no"
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	_, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.NotEmpty(t, diags)
	assert.Equal(t, "E1700", diags[0].Diagnostic.Code)
}

func TestInferRecursiveDefTypesBeforeOwnBodyCompletes(t *testing.T) {
	mod := mustParse(t, `module m
countdown n = if n then countdown n else 0
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)
	scheme := result.Schemes["m"]["countdown"]
	require.NotNil(t, scheme)
	fn, ok := scheme.Type.(*Func)
	require.True(t, ok)
	assert.True(t, fn.Result.Equals(TInt))
}

func TestInferMultiClauseDefUnifiesClauses(t *testing.T) {
	mod := mustParse(t, `module m
fact 0 = 1
fact n = n
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)
	scheme := result.Schemes["m"]["fact"]
	require.NotNil(t, scheme)
	fn, ok := scheme.Type.(*Func)
	require.True(t, ok)
	assert.True(t, fn.Params[0].Equals(TInt))
	assert.True(t, fn.Result.Equals(TInt))
}

func TestInferTextInterpolationCoercesNonText(t *testing.T) {
	mod := mustParse(t, `module m
greet n = "hello {n + 1}"
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)
	scheme := result.Schemes["m"]["greet"]
	require.NotNil(t, scheme)
	fn, ok := scheme.Type.(*Func)
	require.True(t, ok)
	assert.True(t, fn.Result.Equals(TText))
}

func TestInferListElementsMustUnify(t *testing.T) {
	mod := mustParse(t, `module m
xs = [1, 2, 3]
`, "m.aivi")
	prog := mustResolve(t, mod, "m")
	result, diags := Infer(map[string]*ast.Module{"m": mod}, prog)
	require.Empty(t, diags)
	scheme := result.Schemes["m"]["xs"]
	require.NotNil(t, scheme)
	lt, ok := scheme.Type.(*ListT)
	require.True(t, ok)
	assert.True(t, lt.Elem.Equals(TInt))
}
