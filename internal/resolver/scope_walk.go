package resolver

import (
	"strconv"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
)

// scopeEnv is a stack of binding frames layered over a module's top-level
// value scope, used to track locals introduced by lambda params, match
// arms, and block binds while walking an expression.
type scopeEnv struct {
	frames []map[string]bool
	base   *ModuleScope
}

func newScopeEnv(base *ModuleScope) *scopeEnv {
	return &scopeEnv{base: base, frames: []map[string]bool{{}}}
}

func (e *scopeEnv) push() { e.frames = append(e.frames, map[string]bool{}) }
func (e *scopeEnv) pop()  { e.frames = e.frames[:len(e.frames)-1] }

func (e *scopeEnv) bind(name string) {
	e.frames[len(e.frames)-1][name] = true
}

func (e *scopeEnv) has(name string) bool {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if e.frames[i][name] {
			return true
		}
	}
	if _, ok := e.base.Values[name]; ok {
		return true
	}
	if _, ok := e.base.Ctors[name]; ok {
		return true
	}
	return false
}

// walkExprScopes checks every identifier reference in a module against
// lexical scope plus the module's resolved top-level/imported/builtin
// bindings, and checks every constructor use (pattern or call) against
// its declared arity (spec §4.3: E1501, E1502).
func walkExprScopes(mod *ast.Module, scope *ModuleScope, diags *[]diag.FileDiagnostic) {
	for _, item := range mod.Items {
		if item.Def == nil {
			continue
		}
		env := newScopeEnv(scope)
		for _, p := range item.Def.Params {
			bindPattern(env, p, scope, mod, diags)
		}
		checkExpr(item.Def.Expr, env, scope, mod, diags)
	}
}

func bindPattern(env *scopeEnv, pat ast.Pattern, scope *ModuleScope, mod *ast.Module, diags *[]diag.FileDiagnostic) {
	switch p := pat.(type) {
	case ast.WildcardPattern, ast.LiteralPattern:
		// nothing to bind or check
	case ast.IdentPattern:
		env.bind(p.Name.Name)
	case ast.ConstructorPattern:
		checkCtorArity(p.Name, len(p.Args), scope, mod, diags)
		for _, a := range p.Args {
			bindPattern(env, a, scope, mod, diags)
		}
	case ast.TuplePattern:
		for _, it := range p.Items {
			bindPattern(env, it, scope, mod, diags)
		}
	case ast.ListPattern:
		for _, it := range p.Items {
			bindPattern(env, it, scope, mod, diags)
		}
		if p.Rest != nil {
			bindPattern(env, p.Rest, scope, mod, diags)
		}
	case ast.RecordPattern:
		for _, f := range p.Fields {
			bindPattern(env, f.Pattern, scope, mod, diags)
		}
	}
}

func checkCtorArity(name ast.SpannedName, argCount int, scope *ModuleScope, mod *ast.Module, diags *[]diag.FileDiagnostic) {
	ctor, ok := scope.Ctors[name.Name]
	if !ok {
		if name.Name != "" && name.Name[0] >= 'A' && name.Name[0] <= 'Z' {
			*diags = append(*diags, diag.FileDiagnostic{
				Path:       mod.Path,
				Diagnostic: diag.NewError(diag.E1501UnknownIdent, "unknown constructor '"+name.Name+"'", name.Span),
			})
		}
		return
	}
	if ctor.Arity != argCount {
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1502ConstructorArity, "constructor '"+name.Name+"' expects "+strconv.Itoa(ctor.Arity)+" argument(s), got "+strconv.Itoa(argCount), name.Span),
		})
	}
}

func checkExpr(e ast.Expr, env *scopeEnv, scope *ModuleScope, mod *ast.Module, diags *[]diag.FileDiagnostic) {
	switch x := e.(type) {
	case ast.Ident:
		if !env.has(x.Name.Name) {
			*diags = append(*diags, diag.FileDiagnostic{
				Path:       mod.Path,
				Diagnostic: diag.NewError(diag.E1501UnknownIdent, "unknown identifier '"+x.Name.Name+"'", x.Name.Span),
			})
		}
	case ast.LiteralExpr, ast.FieldSection:
		// self-contained, nothing to resolve
	case ast.TextInterpolate:
		for _, part := range x.Parts {
			if part.IsExpr {
				checkExpr(part.Expr, env, scope, mod, diags)
			}
		}
	case ast.ListExpr:
		for _, it := range x.Items {
			checkExpr(it.Expr, env, scope, mod, diags)
		}
	case ast.TupleExpr:
		for _, it := range x.Items {
			checkExpr(it, env, scope, mod, diags)
		}
	case ast.RecordExpr:
		for _, f := range x.Fields {
			checkExpr(f.Value, env, scope, mod, diags)
		}
	case ast.PatchLit:
		for _, f := range x.Fields {
			checkExpr(f.Value, env, scope, mod, diags)
		}
	case ast.FieldAccess:
		checkExpr(x.Base, env, scope, mod, diags)
	case ast.IndexExpr:
		checkExpr(x.Base, env, scope, mod, diags)
		checkExpr(x.Index, env, scope, mod, diags)
	case ast.CallExpr:
		if fn, ok := x.Func.(ast.Ident); ok {
			if _, isCtor := scope.Ctors[fn.Name.Name]; isCtor {
				checkCtorArity(fn.Name, len(x.Args), scope, mod, diags)
			} else {
				checkExpr(x.Func, env, scope, mod, diags)
			}
		} else {
			checkExpr(x.Func, env, scope, mod, diags)
		}
		for _, a := range x.Args {
			checkExpr(a, env, scope, mod, diags)
		}
	case ast.LambdaExpr:
		env.push()
		for _, p := range x.Params {
			bindPattern(env, p, scope, mod, diags)
		}
		checkExpr(x.Body, env, scope, mod, diags)
		env.pop()
	case ast.MatchExpr:
		if x.Scrutinee != nil {
			checkExpr(x.Scrutinee, env, scope, mod, diags)
		}
		for _, arm := range x.Arms {
			env.push()
			bindPattern(env, arm.Pattern, scope, mod, diags)
			if arm.Guard != nil {
				checkExpr(arm.Guard, env, scope, mod, diags)
			}
			checkExpr(arm.Body, env, scope, mod, diags)
			env.pop()
		}
	case ast.IfExpr:
		checkExpr(x.Cond, env, scope, mod, diags)
		checkExpr(x.Then, env, scope, mod, diags)
		checkExpr(x.Else, env, scope, mod, diags)
	case ast.BinaryExpr:
		checkExpr(x.Left, env, scope, mod, diags)
		checkExpr(x.Right, env, scope, mod, diags)
	case ast.UnaryExpr:
		checkExpr(x.Operand, env, scope, mod, diags)
	case ast.BlockExpr:
		env.push()
		for _, item := range x.Items {
			switch {
			case item.Bind != nil:
				checkExpr(item.Bind.Expr, env, scope, mod, diags)
				bindPattern(env, item.Bind.Pattern, scope, mod, diags)
			case item.Filter != nil:
				checkExpr(item.Filter, env, scope, mod, diags)
			case item.Yield != nil:
				checkExpr(item.Yield, env, scope, mod, diags)
			case item.Recurse != nil:
				checkExpr(item.Recurse, env, scope, mod, diags)
			case item.Expr != nil:
				checkExpr(item.Expr, env, scope, mod, diags)
			}
		}
		env.pop()
	}
}

// visitExprChildren is a lighter, scope-unaware traversal used by the
// unused-import check: it only needs to know which names an expression
// mentions, not whether they resolve.
func visitExprChildren(e ast.Expr, visit func(ast.Expr), onIdent func(name string)) {
	switch x := e.(type) {
	case ast.Ident:
		onIdent(x.Name.Name)
	case ast.TextInterpolate:
		for _, part := range x.Parts {
			if part.IsExpr {
				visit(part.Expr)
			}
		}
	case ast.ListExpr:
		for _, it := range x.Items {
			visit(it.Expr)
		}
	case ast.TupleExpr:
		for _, it := range x.Items {
			visit(it)
		}
	case ast.RecordExpr:
		for _, f := range x.Fields {
			visit(f.Value)
		}
	case ast.PatchLit:
		for _, f := range x.Fields {
			visit(f.Value)
		}
	case ast.FieldAccess:
		visit(x.Base)
	case ast.IndexExpr:
		visit(x.Base)
		visit(x.Index)
	case ast.CallExpr:
		visit(x.Func)
		for _, a := range x.Args {
			visit(a)
		}
	case ast.LambdaExpr:
		visit(x.Body)
	case ast.MatchExpr:
		if x.Scrutinee != nil {
			visit(x.Scrutinee)
		}
		for _, arm := range x.Arms {
			if arm.Guard != nil {
				visit(arm.Guard)
			}
			visit(arm.Body)
		}
	case ast.IfExpr:
		visit(x.Cond)
		visit(x.Then)
		visit(x.Else)
	case ast.BinaryExpr:
		visit(x.Left)
		visit(x.Right)
	case ast.UnaryExpr:
		visit(x.Operand)
	case ast.BlockExpr:
		for _, item := range x.Items {
			switch {
			case item.Bind != nil:
				visit(item.Bind.Expr)
			case item.Filter != nil:
				visit(item.Filter)
			case item.Yield != nil:
				visit(item.Yield)
			case item.Recurse != nil:
				visit(item.Recurse)
			case item.Expr != nil:
				visit(item.Expr)
			}
		}
	}
}
