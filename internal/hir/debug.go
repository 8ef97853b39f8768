package hir

// ApplyDebugInstrumentation implements the REDESIGN-FLAGGED debug pass: a
// single HIR pass that, under an explicit debug_trace_enabled flag, wraps
// every pipe-stage Call in a Pipe node (carrying its id/step/label) and
// wraps every @debug'd definition's body in a DebugFn node. When the flag
// is off the pass returns prog unchanged — it never allocates a single new
// node, so there is no steady-state cost to carrying the instrumentation
// machinery when nobody asked for it.
func ApplyDebugInstrumentation(prog *Program, debugTraceEnabled bool) *Program {
	if !debugTraceEnabled {
		return prog
	}
	for _, decls := range prog.Decls {
		for _, decl := range decls {
			decl.Body = instrumentExpr(decl.Body)
			if decl.Debug != nil {
				decl.Body = &DebugFn{Opts: decl.Debug.Opts, Fn: decl.Body, Span: decl.Span}
			}
		}
	}
	return prog
}

// instrumentExpr walks an Expr replacing pipe-stage Calls with Pipe nodes
// and recursing into every subexpression that can contain one. It leaves
// ordinary (non-pipe) calls as plain Call nodes.
func instrumentExpr(e Expr) Expr {
	switch x := e.(type) {
	case *Call:
		x.Func = instrumentExpr(x.Func)
		for i, a := range x.Args {
			x.Args[i] = instrumentExpr(a)
		}
		if x.PipeID != 0 {
			return &Pipe{ID: x.PipeID, Step: x.PipeStep, Label: x.PipeLabel, Call: x, Span: x.Span}
		}
		return x
	case *Text:
		for i, p := range x.Parts {
			if p.IsExpr {
				x.Parts[i].Expr = instrumentExpr(p.Expr)
			}
		}
		return x
	case *List:
		for i, it := range x.Items {
			x.Items[i].Expr = instrumentExpr(it.Expr)
		}
		return x
	case *Tuple:
		for i, it := range x.Items {
			x.Items[i] = instrumentExpr(it)
		}
		return x
	case *Record:
		for i, f := range x.Fields {
			x.Fields[i].Value = instrumentExpr(f.Value)
		}
		return x
	case *Patch:
		x.Target = instrumentExpr(x.Target)
		for i, f := range x.Fields {
			x.Fields[i].Value = instrumentExpr(f.Value)
		}
		return x
	case *FieldAccess:
		x.Base = instrumentExpr(x.Base)
		return x
	case *IndexExpr:
		x.Base = instrumentExpr(x.Base)
		x.Index = instrumentExpr(x.Index)
		return x
	case *Lambda:
		x.Body = instrumentExpr(x.Body)
		return x
	case *Match:
		if x.Scrutinee != nil {
			x.Scrutinee = instrumentExpr(x.Scrutinee)
		}
		for i, arm := range x.Arms {
			if arm.Guard != nil {
				x.Arms[i].Guard = instrumentExpr(arm.Guard)
			}
			x.Arms[i].Body = instrumentExpr(arm.Body)
		}
		return x
	case *If:
		x.Cond = instrumentExpr(x.Cond)
		x.Then = instrumentExpr(x.Then)
		x.Else = instrumentExpr(x.Else)
		return x
	case *Binary:
		x.Left = instrumentExpr(x.Left)
		x.Right = instrumentExpr(x.Right)
		return x
	case *Unary:
		x.Operand = instrumentExpr(x.Operand)
		return x
	case *Block:
		for i, it := range x.Items {
			if it.Bind != nil {
				x.Items[i].Bind.Expr = instrumentExpr(it.Bind.Expr)
			}
			if it.Filter != nil {
				x.Items[i].Filter = instrumentExpr(it.Filter)
			}
			if it.Yield != nil {
				x.Items[i].Yield = instrumentExpr(it.Yield)
			}
			if it.Recurse != nil {
				x.Items[i].Recurse = instrumentExpr(it.Recurse)
			}
			if it.Expr != nil {
				x.Items[i].Expr = instrumentExpr(it.Expr)
			}
		}
		return x
	case *MultiClause:
		for i, c := range x.Clauses {
			if c.Guard != nil {
				x.Clauses[i].Guard = instrumentExpr(c.Guard)
			}
			x.Clauses[i].Body = instrumentExpr(c.Body)
		}
		return x
	default:
		return e
	}
}
