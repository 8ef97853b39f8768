package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/aivi/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, diags := Parse(src, "test.aivi")
	require.Empty(t, diags, "unexpected diagnostics: %+v", diags)
	return mod
}

func TestParseModuleHeader(t *testing.T) {
	mod := parseOK(t, `module app.greeting
export (greet)

greet name = "hi {name}"
`)
	require.Equal(t, "app.greeting", mod.Name.Name)
	require.Equal(t, []ast.SpannedName{{Name: "greet", Span: mod.Exports[0].Span}}, mod.Exports)
	require.Len(t, mod.Items, 1)
	require.NotNil(t, mod.Items[0].Def)
	require.Equal(t, "greet", mod.Items[0].Def.Name.Name)
}

func TestParseUseDecl(t *testing.T) {
	mod := parseOK(t, `module m
use std.text (toUpper, toLower)
use std.math *
greet x = x
`)
	require.Len(t, mod.Uses, 2)
	require.Equal(t, "std.text", mod.Uses[0].Module.Name)
	require.Len(t, mod.Uses[0].Items, 2)
	require.True(t, mod.Uses[1].Wildcard)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	mod := parseOK(t, `module m
f x = 1 + 2 * 3
`)
	def := mod.Items[0].Def
	bin, ok := def.Expr.(ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
	_, rightIsMul := bin.Right.(ast.BinaryExpr)
	require.True(t, rightIsMul)
}

func TestParsePipeline(t *testing.T) {
	mod := parseOK(t, `module m
f x = x |> toUpper |> trim
`)
	def := mod.Items[0].Def
	call, ok := def.Expr.(ast.CallExpr)
	require.True(t, ok)
	fn, ok := call.Func.(ast.Ident)
	require.True(t, ok)
	require.Equal(t, "trim", fn.Name.Name)
}

func TestParseLambda(t *testing.T) {
	mod := parseOK(t, `module m
f = x y => x + y
`)
	def := mod.Items[0].Def
	lam, ok := def.Expr.(ast.LambdaExpr)
	require.True(t, ok)
	require.Len(t, lam.Params, 2)
}

func TestParseApplicationByJuxtaposition(t *testing.T) {
	mod := parseOK(t, `module m
f x = g x 1 "a"
`)
	def := mod.Items[0].Def
	call, ok := def.Expr.(ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 3)
}

func TestParseIfExpr(t *testing.T) {
	mod := parseOK(t, `module m
f x = if x > 0 then "pos" else "neg"
`)
	def := mod.Items[0].Def
	ifE, ok := def.Expr.(ast.IfExpr)
	require.True(t, ok)
	_, condIsBin := ifE.Cond.(ast.BinaryExpr)
	require.True(t, condIsBin)
}

func TestParseMatchExpr(t *testing.T) {
	mod := parseOK(t, `module m
f x = match x {
  Some y when y > 0 => y,
  Some y => 0 - y,
  None => 0,
}
`)
	def := mod.Items[0].Def
	m, ok := def.Expr.(ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	require.NotNil(t, m.Arms[0].Guard)
	ctor, ok := m.Arms[0].Pattern.(ast.ConstructorPattern)
	require.True(t, ok)
	require.Equal(t, "Some", ctor.Name.Name)
	require.Len(t, ctor.Args, 1)
}

func TestParseRecordLiteralAndPatch(t *testing.T) {
	mod := parseOK(t, `module m
f u = u <| { name: "bob", address.city: "NYC" }
`)
	def := mod.Items[0].Def
	call, ok := def.Expr.(ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	patch, ok := call.Args[1].(ast.PatchLit)
	require.True(t, ok)
	require.Len(t, patch.Fields, 2)
	require.Len(t, patch.Fields[1].Path, 2)
}

func TestParseRecordConstruction(t *testing.T) {
	mod := parseOK(t, `module m
f = { name: "a", age: 1, ...base }
`)
	def := mod.Items[0].Def
	rec, ok := def.Expr.(ast.RecordExpr)
	require.True(t, ok)
	require.Len(t, rec.Fields, 3)
	require.True(t, rec.Fields[2].Spread)
}

func TestParseListAndTuple(t *testing.T) {
	mod := parseOK(t, `module m
xs = [1, 2, ...rest]
pair = (1, "a")
`)
	xs, ok := mod.Items[0].Def.Expr.(ast.ListExpr)
	require.True(t, ok)
	require.Len(t, xs.Items, 3)
	require.True(t, xs.Items[2].Spread)

	pair, ok := mod.Items[1].Def.Expr.(ast.TupleExpr)
	require.True(t, ok)
	require.Len(t, pair.Items, 2)
}

func TestParseStringInterpolation(t *testing.T) {
	mod := parseOK(t, `module m
greet name = "hello {name}, you are {1 + 2} years"
`)
	def := mod.Items[0].Def
	ti, ok := def.Expr.(ast.TextInterpolate)
	require.True(t, ok)
	require.Len(t, ti.Parts, 5)
	require.False(t, ti.Parts[0].IsExpr)
	require.True(t, ti.Parts[1].IsExpr)
	ident, ok := ti.Parts[1].Expr.(ast.Ident)
	require.True(t, ok)
	require.Equal(t, "name", ident.Name.Name)
	require.True(t, ti.Parts[3].IsExpr)
	_, isBin := ti.Parts[3].Expr.(ast.BinaryExpr)
	require.True(t, isBin)
}

func TestParseDoBlock(t *testing.T) {
	mod := parseOK(t, `module m
f = do {
  x <- readLine,
  when x != "",
  print x,
}
`)
	def := mod.Items[0].Def
	blk, ok := def.Expr.(ast.BlockExpr)
	require.True(t, ok)
	require.Equal(t, ast.BlockEffect, blk.Kind)
	require.Len(t, blk.Items, 3)
	require.NotNil(t, blk.Items[0].Bind)
	require.NotNil(t, blk.Items[1].Filter)
	require.NotNil(t, blk.Items[2].Expr)
}

func TestParseResourceBlock(t *testing.T) {
	mod := parseOK(t, `module m
f = resource {
  conn <- openConnection url,
  yield conn,
}
`)
	def := mod.Items[0].Def
	blk, ok := def.Expr.(ast.BlockExpr)
	require.True(t, ok)
	require.Equal(t, ast.BlockResource, blk.Kind)
	require.NotNil(t, blk.Items[1].Yield)
}

func TestParseTypeDecl(t *testing.T) {
	mod := parseOK(t, `module m
type Option a = Some a | None
`)
	decl := mod.Items[0].TypeDecl
	require.NotNil(t, decl)
	require.Equal(t, "Option", decl.Name.Name)
	require.Len(t, decl.Constructors, 2)
	require.Equal(t, "Some", decl.Constructors[0].Name.Name)
	require.Len(t, decl.Constructors[0].Args, 1)
	require.Equal(t, "None", decl.Constructors[1].Name.Name)
	require.Len(t, decl.Constructors[1].Args, 0)
}

func TestParseTypeAlias(t *testing.T) {
	mod := parseOK(t, `module m
type Name = Text
`)
	alias := mod.Items[0].TypeAlias
	require.NotNil(t, alias)
	tn, ok := alias.Aliased.(ast.TypeName)
	require.True(t, ok)
	require.Equal(t, "Text", tn.Name.Name)
}

func TestParseTypeSig(t *testing.T) {
	mod := parseOK(t, `module m
greet : Text -> Text
`)
	sig := mod.Items[0].TypeSig
	require.NotNil(t, sig)
	fn, ok := sig.Type.(ast.TypeFunc)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
}

func TestParseClassAndInstance(t *testing.T) {
	mod := parseOK(t, `module m
class Show (a) = {
  show : a -> Text,
}

instance Show Int = {
  show n = toText n,
}
`)
	require.NotNil(t, mod.Items[0].ClassDecl)
	require.Len(t, mod.Items[0].ClassDecl.Members, 1)
	require.NotNil(t, mod.Items[1].InstanceDecl)
	require.Len(t, mod.Items[1].InstanceDecl.Defs, 1)
}

func TestParseDomainDecl(t *testing.T) {
	mod := parseOK(t, `module m
domain Weight over Float = {
  w value = value,
  + a b = a + b,
}
`)
	dom := mod.Items[0].DomainDecl
	require.NotNil(t, dom)
	require.Equal(t, "Weight", dom.Name.Name)
	require.Len(t, dom.Items, 2)
	require.NotNil(t, dom.Items[0].LiteralDef)
	require.NotNil(t, dom.Items[1].Def)
}

func TestParseDecoratedDef(t *testing.T) {
	mod := parseOK(t, `module m
@inline
double x = x * 2
`)
	def := mod.Items[0].Def
	require.Len(t, def.Decorators, 1)
	require.Equal(t, "inline", def.Decorators[0].Name.Name)
}

func TestParseErrorRecoverySkipsOneBadItem(t *testing.T) {
	mod, diags := Parse(`module m
@@@
good x = x + 1
`, "test.aivi")
	require.NotEmpty(t, diags)
	found := false
	for _, item := range mod.Items {
		if item.Def != nil && item.Def.Name.Name == "good" {
			found = true
		}
	}
	require.True(t, found, "parser should recover and still parse the following definition")
}

