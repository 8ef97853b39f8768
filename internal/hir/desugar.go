package hir

import (
	"strconv"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/resolver"
)

// Desugar lowers every resolved module's surface AST into HIR (spec §4.5):
// decorators become explicit flags/nodes, pipelines are numbered, effect/
// generate/resource block tails are desugared, interpolated text is
// normalized into a part sequence, and same-name multi-clause definitions
// are lifted into a MultiClause value. It never aborts on a single bad
// definition; diagnostics accumulate and desugaring continues (mirroring
// the parser/resolver's recover-and-resync posture, spec §4.2/§4.3).
func Desugar(modules map[string]*ast.Module, resolved *resolver.Program) (*Program, []diag.FileDiagnostic) {
	prog := &Program{Decls: make(map[string]map[string]*Decl), Order: resolved.Order}
	var diags []diag.FileDiagnostic

	for _, name := range resolved.Order {
		mod := modules[name]
		if mod == nil {
			continue
		}
		scope := resolved.Modules[name]
		d := &desugarer{module: mod, moduleKey: name, scope: scope, program: resolved}
		decls := d.run()
		diags = append(diags, d.diags...)
		prog.Decls[name] = decls
	}
	return prog, diags
}

type desugarer struct {
	module    *ast.Module
	moduleKey string
	scope     *resolver.ModuleScope
	program   *resolver.Program
	diags     []diag.FileDiagnostic
	locals    []map[string]bool
}

func (d *desugarer) errorf(span diag.Span, code, msg string) {
	d.diags = append(d.diags, diag.FileDiagnostic{Path: d.module.Path, Diagnostic: diag.NewError(code, msg, span)})
}

// run groups every Def in module-appearance order (top-level and domain
// members alike) by name, lifting repeats into a MultiClause.
func (d *desugarer) run() map[string]*Decl {
	type group struct {
		defs []*ast.Def
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	add := func(def *ast.Def) {
		name := def.Name.Name
		g, ok := groups[name]
		if !ok {
			g = &group{}
			groups[name] = g
			order = append(order, name)
		}
		g.defs = append(g.defs, def)
	}
	for _, item := range d.module.Items {
		switch {
		case item.Def != nil:
			add(item.Def)
		case item.DomainDecl != nil:
			for _, di := range item.DomainDecl.Items {
				if di.Def != nil {
					add(di.Def)
				}
				if di.LiteralDef != nil {
					add(di.LiteralDef)
				}
			}
		}
	}

	decls := make(map[string]*Decl, len(order))
	for _, name := range order {
		decls[name] = d.liftGroup(name, groups[name].defs)
	}
	return decls
}

func (d *desugarer) liftGroup(name string, defs []*ast.Def) *Decl {
	inline, dbg := d.scanDecorators(defs[0])
	decl := &Decl{Name: name, Inline: inline, Debug: dbg, Span: defs[0].Span}

	if len(defs) == 1 {
		decl.Body = d.lowerSingleDef(defs[0])
		return decl
	}

	arity := len(defs[0].Params)
	clauses := make([]Clause, 0, len(defs))
	for _, def := range defs {
		if len(def.Params) != arity {
			// The resolver already reports E1500 for this; HIR reports
			// E1802 as well and skips the offending clause.
			d.errorf(def.Span, diag.E1802MultiClauseArity, "clause of '"+name+"' has "+strconv.Itoa(len(def.Params))+" parameter(s), expected "+strconv.Itoa(arity))
			continue
		}
		d.pushLocals(patternNames(def.Params))
		clauses = append(clauses, Clause{
			Patterns: def.Params,
			Body:     d.desugarExpr(def.Expr),
			Span:     def.Span,
		})
		d.popLocals()
	}
	decl.Body = &MultiClause{Arity: arity, Clauses: clauses, Span: defs[0].Span}
	return decl
}

func (d *desugarer) lowerSingleDef(def *ast.Def) Expr {
	d.pushLocals(patternNames(def.Params))
	body := d.desugarExpr(def.Expr)
	d.popLocals()
	if len(def.Params) == 0 {
		return body
	}
	return &Lambda{Params: def.Params, Body: body, Span: def.Span}
}

func (d *desugarer) scanDecorators(def *ast.Def) (bool, *DebugOpts) {
	inline := false
	var dbg *DebugOpts
	for _, dec := range def.Decorators {
		switch dec.Name.Name {
		case "inline":
			inline = true
		case "debug":
			dbg = &DebugOpts{Opts: dec.Args}
		}
	}
	return inline, dbg
}

// ---- scope tracking ----

func (d *desugarer) pushLocals(names []string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	d.locals = append(d.locals, m)
}

func (d *desugarer) popLocals() { d.locals = d.locals[:len(d.locals)-1] }

func (d *desugarer) isLocal(name string) bool {
	for i := len(d.locals) - 1; i >= 0; i-- {
		if d.locals[i][name] {
			return true
		}
	}
	return false
}

func (d *desugarer) resolveVar(name string, span diag.Span) *Var {
	if d.isLocal(name) {
		return &Var{Name: name, Scope: ScopeLocal, Span: span}
	}
	if d.scope != nil {
		if b, ok := d.scope.Values[name]; ok {
			switch b.Kind {
			case resolver.BindBuiltin:
				return &Var{Name: name, Scope: ScopeBuiltin, Span: span}
			case resolver.BindImport:
				return &Var{Name: name, Scope: ScopeImported, Module: d.scope.Imported[name], Span: span}
			default:
				return &Var{Name: name, Scope: ScopeModule, Module: d.moduleKey, Span: span}
			}
		}
	}
	// Resolver already reported E1501 for a truly unknown name; fall back
	// to a local reference so desugaring can still produce a tree.
	return &Var{Name: name, Scope: ScopeLocal, Span: span}
}

// patternNames collects every identifier a set of patterns binds, for
// local-scope tracking.
func patternNames(pats []ast.Pattern) []string {
	var names []string
	var walk func(ast.Pattern)
	walk = func(p ast.Pattern) {
		switch x := p.(type) {
		case ast.IdentPattern:
			names = append(names, x.Name.Name)
		case ast.ConstructorPattern:
			for _, a := range x.Args {
				walk(a)
			}
		case ast.TuplePattern:
			for _, a := range x.Items {
				walk(a)
			}
		case ast.ListPattern:
			for _, a := range x.Items {
				walk(a)
			}
			if x.Rest != nil {
				walk(x.Rest)
			}
		case ast.RecordPattern:
			for _, f := range x.Fields {
				walk(f.Pattern)
			}
		}
	}
	for _, p := range pats {
		walk(p)
	}
	return names
}

// ---- expression desugaring ----

func (d *desugarer) desugarExpr(e ast.Expr) Expr {
	span := ast.ExprSpan(e)
	switch x := e.(type) {
	case ast.Ident:
		return d.resolveVar(x.Name.Name, span)
	case ast.LiteralExpr:
		return &Lit{Lit: x.Lit, Span: span}
	case ast.TextInterpolate:
		parts := make([]TextPart, len(x.Parts))
		for i, p := range x.Parts {
			tp := TextPart{Literal: p.Literal, IsExpr: p.IsExpr, Span: p.Span}
			if p.IsExpr {
				tp.Expr = d.desugarExpr(p.Expr)
			}
			parts[i] = tp
		}
		return &Text{Parts: parts, Span: span}
	case ast.ListExpr:
		items := make([]ListItem, len(x.Items))
		for i, it := range x.Items {
			items[i] = ListItem{Expr: d.desugarExpr(it.Expr), Spread: it.Spread}
		}
		return &List{Items: items, Span: span}
	case ast.TupleExpr:
		items := make([]Expr, len(x.Items))
		for i, it := range x.Items {
			items[i] = d.desugarExpr(it)
		}
		return &Tuple{Items: items, Span: span}
	case ast.RecordExpr:
		return &Record{Fields: d.desugarFields(x.Fields), Span: span}
	case ast.PatchLit:
		return &Record{Fields: d.desugarFields(x.Fields), Span: span}
	case ast.FieldAccess:
		return &FieldAccess{Base: d.desugarExpr(x.Base), Field: x.Field.Name, Span: span}
	case ast.FieldSection:
		// `.field` is a lambda over a synthetic parameter, same as every
		// other section form; named so the field is unambiguous to match.
		param := ast.IdentPattern{Name: ast.SpannedName{Name: "$x", Span: span}}
		body := &FieldAccess{Base: &Var{Name: "$x", Scope: ScopeLocal, Span: span}, Field: x.Field.Name, Span: span}
		return &Lambda{Params: []ast.Pattern{param}, Body: body, Span: span}
	case ast.IndexExpr:
		return &IndexExpr{Base: d.desugarExpr(x.Base), Index: d.desugarExpr(x.Index), Span: span}
	case ast.CallExpr:
		if id, ok := x.Func.(ast.Ident); ok && id.Name.Name == "__patch__" && len(x.Args) == 2 {
			if lit, ok := x.Args[1].(ast.PatchLit); ok {
				return &Patch{Target: d.desugarExpr(x.Args[0]), Fields: d.desugarFields(lit.Fields), Span: span}
			}
		}
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = d.desugarExpr(a)
		}
		return &Call{Func: d.desugarExpr(x.Func), Args: args, PipeID: x.PipeID, PipeStep: x.PipeStep, PipeLabel: x.PipeLabel, Span: span}
	case ast.LambdaExpr:
		d.pushLocals(patternNames(x.Params))
		body := d.desugarExpr(x.Body)
		d.popLocals()
		return &Lambda{Params: x.Params, Body: body, Span: span}
	case ast.MatchExpr:
		var scrut Expr
		if x.Scrutinee != nil {
			scrut = d.desugarExpr(x.Scrutinee)
		}
		arms := make([]MatchArm, len(x.Arms))
		for i, a := range x.Arms {
			d.pushLocals(patternNames([]ast.Pattern{a.Pattern}))
			var guard Expr
			if a.Guard != nil {
				guard = d.desugarExpr(a.Guard)
			}
			arms[i] = MatchArm{Pattern: a.Pattern, Guard: guard, Body: d.desugarExpr(a.Body), Span: a.Span}
			d.popLocals()
		}
		return &Match{Scrutinee: scrut, Arms: arms, Span: span}
	case ast.IfExpr:
		return &If{Cond: d.desugarExpr(x.Cond), Then: d.desugarExpr(x.Then), Else: d.desugarExpr(x.Else), Span: span}
	case ast.BinaryExpr:
		return d.normalizeUnaryAndBinary(x)
	case ast.UnaryExpr:
		return &Unary{Op: x.Op, Operand: d.desugarExpr(x.Operand), Span: span}
	case ast.BlockExpr:
		return d.desugarBlockExpr(x)
	case ast.RawExpr:
		return &Lit{Lit: ast.StringLit{Text: x.Text, Span: x.Span}, Span: span}
	default:
		return &Var{Name: "__error__", Scope: ScopeLocal, Span: span}
	}
}

// normalizeUnaryAndBinary builds a Binary node, fixing the one concrete
// span edge case the surface grammar produces: a left-associative fold
// over a multi-term chain (`a + b + c`) spans its outer node from the
// chain's true start rather than from its immediate left operand's start,
// which already holds here since the parser folds left-to-right — kept as
// an explicit step (rather than a bare struct literal) so a future grammar
// change that stops folding left-associatively has one place to fix.
func (d *desugarer) normalizeUnaryAndBinary(x ast.BinaryExpr) Expr {
	return &Binary{Op: x.Op, Left: d.desugarExpr(x.Left), Right: d.desugarExpr(x.Right), Span: x.Span}
}

func (d *desugarer) desugarFields(fields []ast.RecordField) []RecordField {
	out := make([]RecordField, len(fields))
	for i, f := range fields {
		out[i] = RecordField{Path: f.Path, Value: d.desugarExpr(f.Value), Spread: f.Spread, Span: f.Span}
	}
	return out
}

func (d *desugarer) desugarBlockExpr(x ast.BlockExpr) *Block {
	depth := len(d.locals)
	items := make([]BlockItem, len(x.Items))
	for i, it := range x.Items {
		items[i] = d.desugarBlockItem(it)
	}
	for len(d.locals) > depth {
		d.popLocals()
	}

	switch x.Kind {
	case ast.BlockEffect, ast.BlockGenerate:
		d.wrapTailInPure(items)
	case ast.BlockResource:
		items = d.desugarResourceItems(x, items)
	}

	return &Block{Kind: x.Kind, Items: items, Span: x.Span}
}

func (d *desugarer) desugarBlockItem(it ast.BlockItem) BlockItem {
	out := BlockItem{Span: it.Span}
	if it.Bind != nil {
		// The bound expression is desugared before its own name enters
		// scope (no self-reference); the name then stays visible for the
		// rest of the block, popped by desugarBlockExpr once the whole
		// block has been walked.
		boundExpr := d.desugarExpr(it.Bind.Expr)
		d.pushLocals(patternNames([]ast.Pattern{it.Bind.Pattern}))
		out.Bind = &BindItem{Pattern: it.Bind.Pattern, Expr: boundExpr}
	}
	if it.Filter != nil {
		out.Filter = d.desugarExpr(it.Filter)
	}
	if it.Yield != nil {
		out.Yield = d.desugarExpr(it.Yield)
	}
	if it.Recurse != nil {
		out.Recurse = d.desugarExpr(it.Recurse)
	}
	if it.Expr != nil {
		out.Expr = d.desugarExpr(it.Expr)
	}
	return out
}

// wrapTailInPure lifts a block's terminal bare expression into `pure expr`
// when it isn't already a call to `pure` (spec §4.5). Binds/filters/yields/
// recurse items are statements, not tails, and are left alone.
func (d *desugarer) wrapTailInPure(items []BlockItem) {
	if len(items) == 0 {
		return
	}
	last := &items[len(items)-1]
	if last.Expr == nil {
		return
	}
	if call, ok := last.Expr.(*Call); ok {
		if v, ok := call.Func.(*Var); ok && v.Name == "pure" {
			return
		}
	}
	span := last.Expr.exprSpan()
	last.Expr = &Call{
		Func: &Var{Name: "pure", Scope: ScopeBuiltin, Span: span},
		Args: []Expr{last.Expr},
		Span: span,
	}
}

// desugarResourceItems splits a resource{} block at its yield: everything
// after the yield becomes the cleanup action, run as its own effect block
// once the resource's consumer is done with it (spec §4.5).
func (d *desugarer) desugarResourceItems(x ast.BlockExpr, items []BlockItem) []BlockItem {
	yieldIdx := -1
	for i, it := range items {
		if it.Yield != nil {
			yieldIdx = i
			break
		}
	}
	if yieldIdx == -1 {
		d.errorf(x.Span, diag.E1801ResourceNoYield, "resource block never yields a resource value")
		return items
	}
	before := items[:yieldIdx+1]
	after := items[yieldIdx+1:]
	if len(after) == 0 {
		return before
	}
	cleanup := append([]BlockItem{}, after...)
	d.wrapTailInPure(cleanup)
	cleanupSpan := diag.Span{Start: cleanup[0].Span.Start, End: cleanup[len(cleanup)-1].Span.End}
	cleanupExpr := &Block{Kind: ast.BlockEffect, Items: cleanup, Span: cleanupSpan}
	cleanupItem := BlockItem{Expr: cleanupExpr, Span: cleanupSpan}
	return append(append([]BlockItem{}, before...), cleanupItem)
}
