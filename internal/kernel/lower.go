package kernel

import (
	"fmt"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/hir"
)

// Lower turns a desugared hir.Program into Kernel IR (spec §4.6). It is a
// pure, total function over any HIR that internal/hir.Desugar can
// produce: sugars are gone, multi-clause definitions become value-level
// pattern dispatch over a synthetic tuple of parameters, and binary/unary
// operators become OpApp calls.
func Lower(prog *hir.Program) *Program {
	out := &Program{Decls: make(map[string]map[string]*Decl, len(prog.Decls)), Order: prog.Order}
	for mod, decls := range prog.Decls {
		md := make(map[string]*Decl, len(decls))
		for name, d := range decls {
			md[name] = &Decl{Name: d.Name, Inline: d.Inline, Body: lowerExpr(d.Body)}
		}
		out.Decls[mod] = md
	}
	return out
}

func lowerVarScope(s hir.VarScope) VarScope {
	switch s {
	case hir.ScopeModule:
		return ScopeModule
	case hir.ScopeImported:
		return ScopeImported
	case hir.ScopeBuiltin:
		return ScopeBuiltin
	default:
		return ScopeLocal
	}
}

func lowerExpr(e hir.Expr) Expr {
	switch n := e.(type) {
	case *hir.Var:
		return Var{Name: n.Name, Scope: lowerVarScope(n.Scope), Module: n.Module}
	case *hir.Lit:
		return Lit{Lit: n.Lit}
	case *hir.Text:
		return lowerText(n)
	case *hir.List:
		items := make([]ListItem, len(n.Items))
		for i, it := range n.Items {
			items[i] = ListItem{Expr: lowerExpr(it.Expr), Spread: it.Spread}
		}
		return &ListLit{Items: items}
	case *hir.Tuple:
		items := make([]Expr, len(n.Items))
		for i, it := range n.Items {
			items[i] = lowerExpr(it)
		}
		return &TupleLit{Items: items}
	case *hir.Record:
		return &RecordLit{Fields: lowerFields(n.Fields)}
	case *hir.Patch:
		return &RecordPatch{Target: lowerExpr(n.Target), Fields: lowerPatchFields(n.Fields)}
	case *hir.FieldAccess:
		base := lowerExpr(n.Base)
		if v, ok := base.(Var); ok && v.Scope == ScopeBuiltin {
			return &BuiltinRef{Namespace: v.Name, Member: n.Field}
		}
		return &FieldAccess{Base: base, Field: n.Field}
	case *hir.IndexExpr:
		return &Index{Base: lowerExpr(n.Base), Index: lowerExpr(n.Index)}
	case *hir.Call:
		app := &App{Fn: lowerExpr(n.Func), Args: lowerExprs(n.Args)}
		if n.PipeID == 0 {
			return app
		}
		return app
	case *hir.Lambda:
		return &Lambda{Params: patternNames(n.Params), Body: lowerMultiParamBody(n.Params, n.Body)}
	case *hir.Match:
		return &Match{Scrutinee: lowerExpr(n.Scrutinee), Arms: lowerArms(n.Arms)}
	case *hir.If:
		return &Match{
			Scrutinee: lowerExpr(n.Cond),
			Arms: []MatchArm{
				{Pattern: ast.LiteralPattern{Lit: ast.BoolLit{Value: true}}, Body: lowerExpr(n.Then)},
				{Pattern: ast.WildcardPattern{}, Body: lowerExpr(n.Else)},
			},
		}
	case *hir.Binary:
		return &OpApp{Op: n.Op, Operands: []Expr{lowerExpr(n.Left), lowerExpr(n.Right)}}
	case *hir.Unary:
		return &OpApp{Op: n.Op, Operands: []Expr{lowerExpr(n.Operand)}}
	case *hir.Block:
		return lowerBlock(n)
	case *hir.Pipe:
		return &DebugTrace{PipeID: n.ID, Step: n.Step, Label: n.Label, Inner: lowerExpr(n.Call)}
	case *hir.DebugFn:
		return &DebugFn{Opts: n.Opts, Fn: lowerExpr(n.Fn)}
	case *hir.MultiClause:
		return lowerMultiClause(n)
	default:
		panic(fmt.Sprintf("kernel.Lower: unhandled hir node %T", e))
	}
}

// lowerText folds an interpolated text literal into nested calls to the
// `text` builtin's concatenation, a left fold over `++`. Expression parts
// are lowered as they are: no `toText` call is inserted for them, so a
// part whose value is not Text makes the `++` fail at run time with E1915.
func lowerText(n *hir.Text) Expr {
	var acc Expr
	for _, p := range n.Parts {
		var part Expr
		if p.IsExpr {
			part = lowerExpr(p.Expr)
		} else {
			part = Lit{Lit: ast.StringLit{Text: p.Literal}}
		}
		if acc == nil {
			acc = part
			continue
		}
		acc = &OpApp{Op: "++", Operands: []Expr{acc, part}}
	}
	if acc == nil {
		return Lit{Lit: ast.StringLit{Text: ""}}
	}
	return acc
}

func lowerExprs(es []hir.Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = lowerExpr(e)
	}
	return out
}

func lowerFields(fs []hir.RecordField) []RecordField {
	out := make([]RecordField, 0, len(fs))
	for _, f := range fs {
		if len(f.Path) == 0 {
			continue
		}
		out = append(out, RecordField{Name: f.Path[len(f.Path)-1].Field.Name, Value: lowerExpr(f.Value)})
	}
	return out
}

func lowerPatchFields(fs []hir.RecordField) []PatchField {
	out := make([]PatchField, len(fs))
	for i, f := range fs {
		out[i] = PatchField{Path: f.Path, Value: lowerExpr(f.Value)}
	}
	return out
}

func lowerArms(arms []hir.MatchArm) []MatchArm {
	out := make([]MatchArm, len(arms))
	for i, a := range arms {
		var guard Expr
		if a.Guard != nil {
			guard = lowerExpr(a.Guard)
		}
		out[i] = MatchArm{Pattern: a.Pattern, Guard: guard, Body: lowerExpr(a.Body)}
	}
	return out
}

func lowerBlock(n *hir.Block) *Block {
	items := make([]BlockItem, len(n.Items))
	for i, it := range n.Items {
		bi := BlockItem{}
		if it.Bind != nil {
			bi.BindPattern = it.Bind.Pattern
			bi.Expr = lowerExpr(it.Bind.Expr)
		}
		if it.Filter != nil {
			bi.Filter = lowerExpr(it.Filter)
		}
		if it.Yield != nil {
			bi.Yield = lowerExpr(it.Yield)
		}
		if it.Recurse != nil {
			bi.Recurse = lowerExpr(it.Recurse)
		}
		if it.Expr != nil {
			bi.Expr = lowerExpr(it.Expr)
		}
		items[i] = bi
	}
	return &Block{Kind: n.Kind, Items: items}
}

// patternNames extracts each lambda parameter's binding name for the
// Kernel Lambda's flat []string params; non-identifier parameter
// patterns (destructuring) are bound to a synthetic name and matched
// inside Body via lowerMultiParamBody.
func patternNames(pats []ast.Pattern) []string {
	names := make([]string, len(pats))
	for i, p := range pats {
		if id, ok := p.(ast.IdentPattern); ok {
			names[i] = id.Name.Name
			continue
		}
		names[i] = fmt.Sprintf("$arg%d", i)
	}
	return names
}

// lowerMultiParamBody wraps Body in a Match for every non-identifier
// parameter pattern, binding the synthetic name introduced by
// patternNames to the real destructuring pattern before running Body.
func lowerMultiParamBody(pats []ast.Pattern, body hir.Expr) Expr {
	lowered := lowerExpr(body)
	for i := len(pats) - 1; i >= 0; i-- {
		if _, ok := pats[i].(ast.IdentPattern); ok {
			continue
		}
		lowered = &Match{
			Scrutinee: Var{Name: fmt.Sprintf("$arg%d", i), Scope: ScopeLocal},
			Arms:      []MatchArm{{Pattern: pats[i], Body: lowered}},
		}
	}
	return lowered
}

// lowerMultiClause lowers a lifted hir.MultiClause into a curried Lambda
// over synthetic parameters `$c0..$c(n-1)` whose body is a Match over
// the tuple of those parameters, one arm per clause, tried top to bottom
// — spec's "Kernel" definition: "multi-clause definitions become
// value-level pattern-dispatch".
func lowerMultiClause(n *hir.MultiClause) Expr {
	if n.Arity == 0 {
		if len(n.Clauses) == 0 {
			return Lit{Lit: ast.BoolLit{Value: false}}
		}
		return lowerExpr(n.Clauses[0].Body)
	}
	params := make([]string, n.Arity)
	scrutinees := make([]Expr, n.Arity)
	for i := range params {
		params[i] = fmt.Sprintf("$c%d", i)
		scrutinees[i] = Var{Name: params[i], Scope: ScopeLocal}
	}
	arms := make([]MatchArm, len(n.Clauses))
	for i, c := range n.Clauses {
		var guard Expr
		if c.Guard != nil {
			guard = lowerExpr(c.Guard)
		}
		arms[i] = MatchArm{
			Pattern: ast.TuplePattern{Items: c.Patterns},
			Guard:   guard,
			Body:    lowerExpr(c.Body),
		}
	}
	var scrutinee Expr
	if n.Arity == 1 {
		scrutinee = scrutinees[0]
		for i := range arms {
			if t, ok := arms[i].Pattern.(ast.TuplePattern); ok {
				arms[i].Pattern = t.Items[0]
			}
		}
	} else {
		scrutinee = &TupleLit{Items: scrutinees}
	}
	return &Lambda{Params: params, Body: &Match{Scrutinee: scrutinee, Arms: arms}}
}
