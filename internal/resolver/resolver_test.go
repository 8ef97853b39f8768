package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/parser"
)

func mustParse(t *testing.T, src, path string) *ast.Module {
	t.Helper()
	mod, diags := parser.Parse(src, path)
	require.Empty(t, diags, "unexpected parse diagnostics: %+v", diags)
	return mod
}

func codesOf(diags []diag.FileDiagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Diagnostic.Code
	}
	return out
}

func TestResolveCleanModuleHasNoDiagnostics(t *testing.T) {
	mod := mustParse(t, `module app.greeting
export (greet)

greet name = "hi {name}"
`, "greeting.aivi")
	_, diags := Resolve(map[string]*ast.Module{"app.greeting": mod}, "app.greeting")
	require.Empty(t, diags)
}

func TestResolveUnknownIdentifier(t *testing.T) {
	mod := mustParse(t, `module m
f x = g x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1501UnknownIdent)
}

func TestResolveUnknownExport(t *testing.T) {
	mod := mustParse(t, `module m
export (missing)

f x = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1503UnknownExport)
}

func TestResolveConstructorArityMismatch(t *testing.T) {
	mod := mustParse(t, `module m
type Option a = Some a | None

f x = match x {
  Some a b => a,
  None => 0,
}
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1502ConstructorArity)
}

func TestResolveConstructorArityOK(t *testing.T) {
	mod := mustParse(t, `module m
type Option a = Some a | None

f x = match x {
  Some a => a,
  None => 0,
}
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Empty(t, diags)
}

func TestResolveUnknownDecorator(t *testing.T) {
	mod := mustParse(t, `module m
@bogus
f x = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1506UnknownDecorator)
}

func TestResolveInlineTakesNoArgs(t *testing.T) {
	mod := mustParse(t, `module m
@inline("x")
f x = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1513InlineNoArg)
}

func TestResolveMcpToolRequiresArg(t *testing.T) {
	mod := mustParse(t, `module m
@mcp_tool
f x = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1511MissingDecoratorArg)
}

func TestResolveNoPreludeMisplaced(t *testing.T) {
	mod := mustParse(t, `module m
@no_prelude
f x = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1507NoPreludeMisplaced)
}

func TestResolveDuplicateBindingConflictingArity(t *testing.T) {
	mod := mustParse(t, `module m
f x = x
f x y = x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Contains(t, codesOf(diags), diag.E1500DuplicateBinding)
}

func TestResolveMultiClauseSameArityIsNotDuplicate(t *testing.T) {
	mod := mustParse(t, `module m
type Option a = Some a | None

describe x = match x {
  Some a => a,
  None => 0,
}
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"m": mod}, "m")
	require.Empty(t, diags)
}

func TestResolveCrossModuleImportAndUnused(t *testing.T) {
	lib := mustParse(t, `module lib
export (helper, other)

helper x = x
other x = x
`, "lib.aivi")
	main := mustParse(t, `module m
use lib (helper, other)

f x = helper x
`, "m.aivi")
	prog, diags := Resolve(map[string]*ast.Module{"lib": lib, "m": main}, "m")
	require.Equal(t, []string{"lib", "m"}, prog.Order)
	require.Contains(t, codesOf(diags), diag.E1505UnusedImport)
}

func TestResolveWildcardImport(t *testing.T) {
	lib := mustParse(t, `module lib
export (helper)

helper x = x
`, "lib.aivi")
	main := mustParse(t, `module m
use lib *

f x = helper x
`, "m.aivi")
	_, diags := Resolve(map[string]*ast.Module{"lib": lib, "m": main}, "m")
	require.Empty(t, diags)
}

func TestResolveCyclicImportFallsBackWithWarning(t *testing.T) {
	a := mustParse(t, `module a
use b *

f x = x
`, "a.aivi")
	b := mustParse(t, `module b
use a *

g x = x
`, "b.aivi")
	_, diags := Resolve(map[string]*ast.Module{"a": a, "b": b}, "a")
	require.Contains(t, codesOf(diags), diag.E1504CyclicImport)
	for _, d := range diags {
		if d.Diagnostic.Code == diag.E1504CyclicImport {
			require.Equal(t, diag.Warning, d.Diagnostic.Severity)
		}
	}
}
