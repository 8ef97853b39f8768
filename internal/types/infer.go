package types

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/resolver"
)

// Program is the result of type checking a resolved set of modules: the
// generalized scheme for every top-level definition, the class and
// domain environments each module built, and any diagnostic raised
// along the way (E17xx).
type Program struct {
	Schemes map[string]map[string]*Scheme // module -> def name -> scheme
	Classes map[string]*ClassEnv          // module -> class env (prelude + module's own)
	Domains map[string]*DomainEnv         // module -> domain env
}

// checker threads substitution, fresh-variable generation, and
// diagnostics through one module's inference pass, the way the original compiler's
// CoreTypeChecker threads instanceEnv/varCounter/errors through Core
// inference (internal/types/typechecker_core.go) — generalized from a
// Core-IR checker to one that walks the resolved surface AST directly,
// since this repo's HIR pass (C6) has not yet normalized variable
// references at this stage of the pipeline.
type checker struct {
	fresh   *FreshVarFactory
	sub     Substitution
	classes *ClassEnv
	domains *DomainEnv
	mod     *ast.Module
	prog    *resolver.Program
	diags   []diag.FileDiagnostic
}

// Infer type-checks every module in dependency order, using the
// resolver's Program for evaluation order and import bindings.
func Infer(modules map[string]*ast.Module, resolved *resolver.Program) (*Program, []diag.FileDiagnostic) {
	out := &Program{
		Schemes: map[string]map[string]*Scheme{},
		Classes: map[string]*ClassEnv{},
		Domains: map[string]*DomainEnv{},
	}
	var diags []diag.FileDiagnostic

	for _, name := range resolved.Order {
		mod := modules[name]
		if mod == nil {
			continue
		}
		c := &checker{
			fresh:   NewFreshVarFactory(0),
			sub:     Substitution{},
			classes: NewPreludeClassEnv(),
			domains: NewDomainEnv(),
			mod:     mod,
			prog:    resolved,
		}
		c.declareClassesAndDomains()
		schemes := c.inferModule(out)
		out.Schemes[name] = schemes
		out.Classes[name] = c.classes
		out.Domains[name] = c.domains
		diags = append(diags, c.diags...)
	}
	return out, diags
}

func (c *checker) errorf(span diag.Span, code, msg string) {
	c.diags = append(c.diags, diag.FileDiagnostic{
		Path:       c.mod.Path,
		Diagnostic: diag.NewError(code, msg, span),
	})
}

// unifyFail reports a Unify failure under its most specific diagnostic
// code: occurs check, row mismatch, and kind mismatch all have their own
// E17xx code; anything else falls back to the general unification-
// mismatch code.
func (c *checker) unifyFail(span diag.Span, prefix string, err error) {
	code := diag.E1700UnifyMismatch
	switch err.(type) {
	case *OccursCheckError:
		code = diag.E1701OccursCheck
	case *RowMismatchError:
		code = diag.E1702RowMismatch
	case *KindMismatchError:
		code = diag.E1707KindMismatch
	}
	msg := err.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	c.errorf(span, code, msg)
}

// declareClassesAndDomains pre-registers this module's own `class`,
// `instance`, and `domain` declarations into the checker's environments
// before any definition body is inferred, since a definition earlier in
// the file may use a class/domain declared later (spec: declarations are
// not order-dependent within a module).
func (c *checker) declareClassesAndDomains() {
	for _, item := range c.mod.Items {
		if item.ClassDecl != nil {
			cd := item.ClassDecl
			members := map[string]*Scheme{}
			for _, m := range cd.Members {
				members[m.Name.Name] = &Scheme{Type: c.typeExprToType(m.Type, map[string]*Var{})}
			}
			var supers []string
			for _, s := range cd.Superclasses {
				supers = append(supers, s.Name.Name)
			}
			c.classes.DeclareClass(&Class{Name: cd.Name.Name, Members: members, Superclasses: supers})
		}
	}
	for _, item := range c.mod.Items {
		if item.InstanceDecl != nil {
			id := item.InstanceDecl
			if len(id.Params) == 0 {
				continue
			}
			head := c.typeExprToType(id.Params[0], map[string]*Var{})
			methods := map[string]Type{}
			for _, def := range id.Defs {
				methods[def.Name.Name] = nil
			}
			var claimed []string
			for _, def := range id.WithSuperDefs {
				claimed = append(claimed, def.Name.Name)
			}
			if err := c.classes.AddInstance(&Instance{Class: id.Name.Name, Head: head, Methods: methods, ClaimedSuper: claimed}); err != nil {
				c.errorf(id.Span, diag.E1700UnifyMismatch, err.Error())
			}
		}
		if item.DomainDecl != nil {
			c.declareDomain(item.DomainDecl)
		}
	}
	for _, item := range c.mod.Items {
		if item.InstanceDecl != nil {
			id := item.InstanceDecl
			if len(id.Params) == 0 {
				continue
			}
			head := c.typeExprToType(id.Params[0], map[string]*Var{})
			if _, err := c.classes.Resolve(id.Name.Name, head); err != nil {
				if _, ok := err.(*MissingSuperclassError); ok {
					c.errorf(id.Span, diag.E1704MissingSuperclass, err.Error())
				}
			}
		}
	}
}

func (c *checker) declareDomain(dd *ast.DomainDecl) {
	host := c.typeExprToType(dd.Over, map[string]*Var{})
	d := &Domain{Name: dd.Name.Name, Host: host, Ops: map[string]Type{}, Suffix: map[string]string{}}
	for _, item := range dd.Items {
		switch {
		case item.TypeAlias != nil:
			// A domain-local Delta declaration is surfaced as a nested
			// TypeDecl/TypeAlias; the first one found becomes the Delta.
			if d.Delta == nil {
				d.Delta = &Con{Name: item.TypeAlias.Name.Name}
			}
		case item.Def != nil:
			name := item.Def.Name.Name
			d.Ops[name] = nil // concrete operator type filled in during inference of its body
		case item.LiteralDef != nil:
			d.Suffix[item.LiteralDef.Name.Name] = item.LiteralDef.Name.Name
		}
	}
	c.domains.Add(d)
}

// typeExprToType lowers a surface TypeExpr to an inference Type. scope
// maps a lowercase type-parameter name already seen in this signature to
// the Var it was assigned, so `a -> a` refers to one variable twice
// rather than two fresh ones.
func (c *checker) typeExprToType(te ast.TypeExpr, scope map[string]*Var) Type {
	switch t := te.(type) {
	case ast.TypeName:
		name := t.Name.Name
		if name == "" {
			return c.fresh.Fresh(Star)
		}
		if name[0] >= 'a' && name[0] <= 'z' {
			if v, ok := scope[name]; ok {
				return v
			}
			v := c.fresh.Fresh(Star)
			scope[name] = v
			return v
		}
		switch name {
		case "Int":
			return TInt
		case "Float":
			return TFloat
		case "Text":
			return TText
		case "Bool":
			return TBool
		case "Unit":
			return TUnit
		case "Bytes":
			return TBytes
		default:
			return &Con{Name: name}
		}
	case ast.TypeApp:
		head := c.typeExprToType(t.Base, scope)
		if list, ok := head.(*Con); ok && list.Name == "List" && len(t.Args) == 1 {
			return &ListT{Elem: c.typeExprToType(t.Args[0], scope)}
		}
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.typeExprToType(a, scope)
		}
		return &App{Head: head, Args: args}
	case ast.TypeFunc:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.typeExprToType(p, scope)
		}
		return &Func{Params: params, Eff: EmptyEffectRow(), Result: c.typeExprToType(t.Result, scope)}
	case ast.TypeRecord:
		labels := map[string]Type{}
		for _, f := range t.Fields {
			labels[f.Name.Name] = c.typeExprToType(f.Value, scope)
		}
		var tail *Var
		if t.Open {
			tail = c.fresh.FreshRow(Field)
		}
		return &Record{Row: &Row{K: FieldRow, Labels: labels, Tail: tail}}
	case ast.TypeTuple:
		elems := make([]Type, len(t.Items))
		for i, it := range t.Items {
			elems[i] = c.typeExprToType(it, scope)
		}
		return &Tuple{Elems: elems}
	case ast.TypeStar, ast.TypeUnknown:
		return c.fresh.Fresh(Star)
	default:
		return c.fresh.Fresh(Star)
	}
}

// inferModule infers every top-level definition, grouping multi-clause
// definitions (same name, resolver-verified matching arity) into one
// function type before generalization.
func (c *checker) inferModule(prog *Program) map[string]*Scheme {
	schemes := map[string]*Scheme{}
	env := NewEnv()

	clauses := map[string][]*ast.Def{}
	var order []string
	for _, item := range c.mod.Items {
		if item.Def != nil {
			if _, seen := clauses[item.Def.Name.Name]; !seen {
				order = append(order, item.Def.Name.Name)
			}
			clauses[item.Def.Name.Name] = append(clauses[item.Def.Name.Name], item.Def)
		}
	}

	// Pre-bind a fresh function type for every def so mutually (or
	// directly) recursive calls resolve before their own inference
	// finishes, mirroring the original compiler's letrec-style pre-binding.
	placeholders := map[string]Type{}
	for _, name := range order {
		arity := len(clauses[name][0].Params)
		params := make([]Type, arity)
		for i := range params {
			params[i] = c.fresh.Fresh(Star)
		}
		t := Type(c.fresh.Fresh(Star))
		if arity > 0 {
			t = &Func{Params: params, Eff: c.fresh.FreshRow(Effect).asRow(), Result: c.fresh.Fresh(Star)}
		}
		placeholders[name] = t
		env.BindMono(name, t)
	}

	for _, name := range order {
		defType := c.inferClauses(env, clauses[name])
		if placeholder, ok := placeholders[name]; ok {
			if s, err := Unify(placeholder, defType, c.sub); err == nil {
				c.sub = s
			}
		}
		resolved := Apply(c.sub, defType)
		scheme := Generalize(env, resolved, nil)
		schemes[name] = scheme
		env.BindPoly(name, scheme)
	}
	return schemes
}

func (v *Var) asRow() *Row { return &Row{K: v.K, Labels: map[string]Type{}, Tail: v} }

// inferClauses infers one function's type from its (possibly several)
// clauses, unifying every clause's inferred type together so a
// multi-clause definition has one coherent signature.
func (c *checker) inferClauses(env *Env, defs []*ast.Def) Type {
	var result Type
	for _, def := range defs {
		clauseEnv := env.Child()
		params := make([]Type, len(def.Params))
		for i, p := range def.Params {
			params[i] = c.bindPattern(clauseEnv, p)
		}
		bodyT := c.inferExpr(clauseEnv, def.Expr)
		var t Type = bodyT
		if len(params) > 0 {
			t = &Func{Params: params, Eff: EmptyEffectRow(), Result: bodyT}
		}
		if result == nil {
			result = t
			continue
		}
		if s, err := Unify(result, t, c.sub); err != nil {
			c.unifyFail(def.Span, "clause of '"+def.Name.Name+"' disagrees with an earlier clause", err)
		} else {
			c.sub = s
			result = Apply(c.sub, result)
		}
	}
	return result
}

// bindPattern infers and binds the type a pattern destructures into
// clauseEnv, returning the pattern's own type (for use as a parameter
// or match-scrutinee type).
func (c *checker) bindPattern(env *Env, p ast.Pattern) Type {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return c.fresh.Fresh(Star)
	case ast.IdentPattern:
		t := c.fresh.Fresh(Star)
		env.BindMono(pat.Name.Name, t)
		return t
	case ast.LiteralPattern:
		return c.literalType(pat.Lit)
	case ast.ConstructorPattern:
		for _, a := range pat.Args {
			c.bindPattern(env, a)
		}
		return &Con{Name: pat.Name.Name}
	case ast.TuplePattern:
		elems := make([]Type, len(pat.Items))
		for i, it := range pat.Items {
			elems[i] = c.bindPattern(env, it)
		}
		return &Tuple{Elems: elems}
	case ast.ListPattern:
		elem := c.fresh.Fresh(Star)
		for _, it := range pat.Items {
			t := c.bindPattern(env, it)
			if s, err := Unify(elem, t, c.sub); err == nil {
				c.sub = s
				elem = Apply(c.sub, elem)
			}
		}
		if pat.Rest != nil {
			c.bindPattern(env, pat.Rest)
		}
		return &ListT{Elem: elem}
	case ast.RecordPattern:
		labels := map[string]Type{}
		for _, f := range pat.Fields {
			t := c.bindPattern(env, f.Pattern)
			if len(f.Path) > 0 {
				labels[f.Path[0].Name] = t
			}
		}
		return &Record{Row: &Row{K: FieldRow, Labels: labels, Tail: c.fresh.FreshRow(Field)}}
	default:
		return c.fresh.Fresh(Star)
	}
}

func (c *checker) literalType(lit ast.Literal) Type {
	switch lit.(type) {
	case ast.NumberLit:
		return TInt // defaulting to Int; Float literals carry a decimal point handled by the lexer's token text
	case ast.StringLit:
		return TText
	case ast.SigilLit:
		return TText
	case ast.BoolLit:
		return TBool
	case ast.DateTimeLit:
		return &Con{Name: "DateTime"}
	default:
		return c.fresh.Fresh(Star)
	}
}

// inferExpr is the core bidirectional-free (synthesis-only) inference
// judgment over the resolved surface AST, threading c.sub as it goes
// the way the original compiler's Infer/algorithm-W core threads a substitution
// through typechecker_core.go's recursive descent.
func (c *checker) inferExpr(env *Env, e ast.Expr) Type {
	switch x := e.(type) {
	case ast.Ident:
		if t, ok := env.Lookup(x.Name.Name, c.fresh.Fresh); ok {
			return t
		}
		return c.fresh.Fresh(Star) // already flagged E1501 by the resolver

	case ast.LiteralExpr:
		return c.literalType(x.Lit)

	case ast.TextInterpolate:
		for _, part := range x.Parts {
			if part.IsExpr {
				t := c.inferExpr(env, part.Expr)
				if _, err := CoerceToText(c.classes, Apply(c.sub, t), TText); err != nil {
					c.errorf(ast.ExprSpan(part.Expr), diag.E1706CoercionUnavailable, err.Error())
				}
			}
		}
		return TText

	case ast.ListExpr:
		elem := c.fresh.Fresh(Star)
		for _, it := range x.Items {
			t := c.inferExpr(env, it.Expr)
			if it.Spread {
				if lt, ok := Apply(c.sub, t).(*ListT); ok {
					t = lt.Elem
				}
			}
			if s, err := Unify(elem, t, c.sub); err != nil {
				c.unifyFail(it.Span, "", err)
			} else {
				c.sub = s
				elem = Apply(c.sub, elem)
			}
		}
		return &ListT{Elem: elem}

	case ast.TupleExpr:
		elems := make([]Type, len(x.Items))
		for i, it := range x.Items {
			elems[i] = c.inferExpr(env, it)
		}
		return &Tuple{Elems: elems}

	case ast.RecordExpr:
		labels := map[string]Type{}
		for _, f := range x.Fields {
			t := c.inferExpr(env, f.Value)
			if len(f.Path) > 0 && f.Path[0].Field != nil {
				labels[f.Path[0].Field.Name] = t
			}
		}
		return &Record{Row: &Row{K: FieldRow, Labels: labels}}

	case ast.PatchLit:
		labels := map[string]Type{}
		for _, f := range x.Fields {
			t := c.inferExpr(env, f.Value)
			if len(f.Path) > 0 && f.Path[0].Field != nil {
				labels[f.Path[0].Field.Name] = t
			}
		}
		return &Record{Row: &Row{K: FieldRow, Labels: labels, Tail: c.fresh.FreshRow(Field)}}

	case ast.FieldAccess:
		baseT := c.inferExpr(env, x.Base)
		result := c.fresh.Fresh(Star)
		rowTail := c.fresh.FreshRow(Field)
		want := &Record{Row: &Row{K: FieldRow, Labels: map[string]Type{x.Field.Name: result}, Tail: rowTail}}
		if s, err := Unify(baseT, want, c.sub); err != nil {
			c.unifyFail(x.Span, "field '"+x.Field.Name+"'", err)
		} else {
			c.sub = s
		}
		return Apply(c.sub, result)

	case ast.FieldSection:
		result := c.fresh.Fresh(Star)
		rec := c.fresh.Fresh(Star)
		return &Func{Params: []Type{rec}, Eff: EmptyEffectRow(), Result: result}

	case ast.IndexExpr:
		c.inferExpr(env, x.Index)
		baseT := c.inferExpr(env, x.Base)
		if lt, ok := Apply(c.sub, baseT).(*ListT); ok {
			return lt.Elem
		}
		return c.fresh.Fresh(Star)

	case ast.CallExpr:
		return c.inferCall(env, x)

	case ast.LambdaExpr:
		lamEnv := env.Child()
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = c.bindPattern(lamEnv, p)
		}
		body := c.inferExpr(lamEnv, x.Body)
		return &Func{Params: params, Eff: EmptyEffectRow(), Result: body}

	case ast.MatchExpr:
		return c.inferMatch(env, x)

	case ast.IfExpr:
		cond := c.inferExpr(env, x.Cond)
		if s, err := Unify(cond, TBool, c.sub); err != nil {
			c.unifyFail(ast.ExprSpan(x.Cond), "if condition", err)
		} else {
			c.sub = s
		}
		thenT := c.inferExpr(env, x.Then)
		elseT := c.inferExpr(env, x.Else)
		if s, err := Unify(thenT, elseT, c.sub); err != nil {
			c.unifyFail(x.Span, "if branches disagree", err)
		} else {
			c.sub = s
		}
		return Apply(c.sub, thenT)

	case ast.BinaryExpr:
		return c.inferBinary(env, x)

	case ast.UnaryExpr:
		t := c.inferExpr(env, x.Operand)
		if x.Op == "!" {
			if s, err := Unify(t, TBool, c.sub); err == nil {
				c.sub = s
			}
			return TBool
		}
		return Apply(c.sub, t)

	case ast.BlockExpr:
		return c.inferBlock(env, x)

	case ast.RawExpr:
		return c.fresh.Fresh(Star)

	default:
		return c.fresh.Fresh(Star)
	}
}

func (c *checker) inferCall(env *Env, x ast.CallExpr) Type {
	if fn, ok := x.Func.(ast.Ident); ok && len(fn.Name.Name) > 0 && fn.Name.Name[0] >= 'A' && fn.Name.Name[0] <= 'Z' {
		for _, a := range x.Args {
			c.inferExpr(env, a)
		}
		return &Con{Name: fn.Name.Name}
	}
	fnT := c.inferExpr(env, x.Func)
	args := make([]Type, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.inferExpr(env, a)
	}
	result := c.fresh.Fresh(Star)
	want := &Func{Params: args, Eff: c.fresh.FreshRow(Effect).asRow(), Result: result}
	if s, err := Unify(fnT, want, c.sub); err != nil {
		c.unifyFail(x.Span, "", err)
	} else {
		c.sub = s
	}
	return Apply(c.sub, result)
}

func (c *checker) inferMatch(env *Env, x ast.MatchExpr) Type {
	var scrutT Type
	if x.Scrutinee != nil {
		scrutT = c.inferExpr(env, x.Scrutinee)
	}
	result := c.fresh.Fresh(Star)
	for _, arm := range x.Arms {
		armEnv := env.Child()
		patT := c.bindPattern(armEnv, arm.Pattern)
		if scrutT != nil {
			if s, err := Unify(scrutT, patT, c.sub); err != nil {
				c.unifyFail(arm.Span, "match arm", err)
			} else {
				c.sub = s
			}
		}
		if arm.Guard != nil {
			g := c.inferExpr(armEnv, arm.Guard)
			if s, err := Unify(g, TBool, c.sub); err == nil {
				c.sub = s
			}
		}
		bodyT := c.inferExpr(armEnv, arm.Body)
		if s, err := Unify(result, bodyT, c.sub); err != nil {
			c.unifyFail(arm.Span, "match arms disagree", err)
		} else {
			c.sub = s
			result = Apply(c.sub, result)
		}
	}
	return result
}

// inferBlock infers a `do`/`effect`/`generate`/`resource` block: binds
// thread their inferred type into later items the way a let-sequence
// does, `when` filters must be Bool, and the block's own type is its
// last item's (or, for an effect/resource block, `yield`'s) type.
func (c *checker) inferBlock(env *Env, x ast.BlockExpr) Type {
	blockEnv := env.Child()
	var last Type = TUnit
	for _, item := range x.Items {
		switch {
		case item.Bind != nil:
			t := c.inferExpr(blockEnv, item.Bind.Expr)
			c.bindPattern(blockEnv, item.Bind.Pattern)
			last = t
		case item.Filter != nil:
			t := c.inferExpr(blockEnv, item.Filter)
			if s, err := Unify(t, TBool, c.sub); err == nil {
				c.sub = s
			}
		case item.Yield != nil:
			last = c.inferExpr(blockEnv, item.Yield)
		case item.Recurse != nil:
			last = c.inferExpr(blockEnv, item.Recurse)
		case item.Expr != nil:
			last = c.inferExpr(blockEnv, item.Expr)
		}
	}
	return last
}

// inferBinary dispatches an operator first to any in-scope domain whose
// host type matches the left operand, then to the builtin Num/Eq/Ord/
// text-`++`/list-`++` rules, and only falls back to a class-method
// dictionary lookup when neither applies (spec §5, §7).
func (c *checker) inferBinary(env *Env, x ast.BinaryExpr) Type {
	leftT := c.inferExpr(env, x.Left)
	rightT := c.inferExpr(env, x.Right)
	leftT = Apply(c.sub, leftT)

	if d, err := c.domains.ResolveOp(x.Op, leftT); err != nil {
		c.errorf(x.Span, diag.E1705AmbiguousDomain, err.Error())
	} else if d != nil {
		if fn, ok := d.DeltaOpType(); ok {
			if s, uerr := Unify(&Func{Params: []Type{leftT, rightT}, Eff: EmptyEffectRow(), Result: fn.Result}, fn, c.sub); uerr == nil {
				c.sub = s
				return Apply(c.sub, fn.Result)
			}
		}
	}

	switch x.Op {
	case "+", "-", "*", "/", "%":
		if s, err := Unify(leftT, rightT, c.sub); err == nil {
			c.sub = s
		}
		return Apply(c.sub, leftT)
	case "++":
		if s, err := Unify(leftT, rightT, c.sub); err == nil {
			c.sub = s
		}
		return Apply(c.sub, leftT)
	case "==", "!=", "<", "<=", ">", ">=":
		if s, err := Unify(leftT, rightT, c.sub); err == nil {
			c.sub = s
		}
		return TBool
	case "&&", "||":
		return TBool
	case "??":
		return Apply(c.sub, leftT)
	default:
		return c.fresh.Fresh(Star)
	}
}
