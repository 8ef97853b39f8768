package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/dtree"
	"github.com/sunholo/aivi/internal/kernel"
)

// Interp is one interpreter session: the process-wide global environment
// (spec §3 "globals live for the interpreter session") plus a handle to
// the registered builtin namespaces (internal/builtins populates this at
// construction; see internal/builtins.Register).
type Interp struct {
	Globals  *Env
	Builtins map[string]*Record // namespace name -> record of builtin fields
	Modules  *kernel.Program
	trace    func(line string)
}

// New creates an interpreter with an empty global frame. Callers
// populate Builtins and load module decls before running anything.
func New() *Interp {
	return &Interp{Globals: NewEnv(), Builtins: map[string]*Record{}}
}

// SetTracer installs the sink debug instrumentation writes lines to
// (defaults to no-op); cmd/aivi and internal/repl wire this to stderr.
func (it *Interp) SetTracer(f func(string)) { it.trace = f }

func (it *Interp) traceLine(format string, args ...any) {
	if it.trace != nil {
		it.trace(fmt.Sprintf(format, args...))
	}
}

// Eval evaluates a Kernel expression in env under cancellation token c.
func (it *Interp) Eval(e kernel.Expr, env *Env, c *Cancel) (Value, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	switch n := e.(type) {
	case kernel.Var:
		return it.evalVar(n, env)
	case kernel.Lit:
		return evalLit(n.Lit), nil
	case *kernel.App:
		return it.evalApp(n, env, c)
	case *kernel.OpApp:
		return it.evalOpApp(n, env, c)
	case *kernel.Lambda:
		return &Closure{Params: n.Params, Body: n.Body, Env: env}, nil
	case *kernel.Let:
		v, err := it.Eval(n.Value, env, c)
		if err != nil {
			return nil, err
		}
		child, ok := Match(n.Pattern, v, env)
		if !ok {
			return nil, NewMessageError("E1902", "let pattern did not match")
		}
		return it.Eval(n.Body, child, c)
	case *kernel.Match:
		return it.evalMatch(n, env, c)
	case *kernel.RecordLit:
		return it.evalRecordLit(n, env, c)
	case *kernel.RecordPatch:
		return it.evalRecordPatch(n, env, c)
	case *kernel.FieldAccess:
		return it.evalFieldAccess(n, env, c)
	case *kernel.Index:
		return it.evalIndex(n, env, c)
	case *kernel.Ctor:
		return it.evalCtor(n, env, c)
	case *kernel.TupleLit:
		items, err := it.evalExprs(n.Items, env, c)
		if err != nil {
			return nil, err
		}
		return &Tuple{Items: items}, nil
	case *kernel.ListLit:
		return it.evalListLit(n, env, c)
	case *kernel.Block:
		return it.evalBlockExpr(n, env, c)
	case *kernel.BuiltinRef:
		return it.lookupBuiltin(n.Namespace, n.Member)
	case *kernel.DebugTrace:
		return it.evalDebugTrace(n, env, c)
	case *kernel.DebugFn:
		return it.Eval(n.Fn, env, c)
	default:
		return nil, fmt.Errorf("eval: unhandled kernel node %T", e)
	}
}

func (it *Interp) evalVar(n kernel.Var, env *Env) (Value, error) {
	if n.Scope == kernel.ScopeBuiltin {
		ns, ok := it.Builtins[n.Name]
		if !ok {
			return nil, NewMessageError("E1905", "unknown builtin namespace "+n.Name)
		}
		return ns, nil
	}
	if v, ok := env.Lookup(n.Name); ok {
		return force(v, it)
	}
	if v, ok := it.Globals.Lookup(moduleKey(n.Module, n.Name)); ok {
		return force(v, it)
	}
	if v, ok := it.Globals.Lookup(n.Name); ok {
		return force(v, it)
	}
	return nil, NewMessageError("E1906", "unbound variable "+n.Name)
}

func moduleKey(module, name string) string { return module + "." + name }

// force resolves a Thunk to its value, enforcing the single-producer
// rule (spec §3 invariants, §9 "Cycles in thunks").
func force(v Value, it *Interp) (Value, error) {
	th, ok := v.(*Thunk)
	if !ok {
		return v, nil
	}
	if th.Forced {
		return th.Result, nil
	}
	if th.InProgress {
		return nil, NewMessageError("E1901", "recursive thunk")
	}
	th.InProgress = true
	res, err := it.Eval(th.Expr, th.Env, NewCancel())
	th.InProgress = false
	if err != nil {
		return nil, err
	}
	th.Forced = true
	th.Result = res
	return res, nil
}

func evalLit(l ast.Literal) Value {
	switch v := l.(type) {
	case ast.NumberLit:
		return parseNumberLit(v.Text)
	case ast.StringLit:
		return Text{Value: v.Text}
	case ast.BoolLit:
		return Bool{Value: v.Value}
	case ast.SigilLit:
		return Text{Value: v.Body}
	case ast.DateTimeLit:
		t, err := parseDateTime(v.Text)
		if err != nil {
			return Text{Value: v.Text}
		}
		return DateTime{Value: t}
	default:
		return Unit{}
	}
}

func parseNumberLit(text string) Value {
	if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return Float{Value: f}
		}
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return Int{Value: i}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return Float{Value: f}
	}
	return Int{Value: 0}
}

func (it *Interp) evalExprs(es []kernel.Expr, env *Env, c *Cancel) ([]Value, error) {
	out := make([]Value, len(es))
	for i, e := range es {
		v, err := it.Eval(e, env, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (it *Interp) evalApp(n *kernel.App, env *Env, c *Cancel) (Value, error) {
	fn, err := it.Eval(n.Fn, env, c)
	if err != nil {
		return nil, err
	}
	args, err := it.evalExprs(n.Args, env, c)
	if err != nil {
		return nil, err
	}
	return it.Apply(fn, args, c)
}

// Apply applies fn (a Closure or Builtin) to args one at a time,
// curried, returning a partial application when not enough args were
// given (spec §4.7 "Builtins ... Partial applications are first-class
// values").
func (it *Interp) Apply(fn Value, args []Value, c *Cancel) (Value, error) {
	for _, arg := range args {
		var err error
		fn, err = it.applyOne(fn, arg, c)
		if err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (it *Interp) applyOne(fn Value, arg Value, c *Cancel) (Value, error) {
	switch f := fn.(type) {
	case *Closure:
		child := f.Env.Child()
		child.Bind(f.Params[0], arg)
		if len(f.Params) == 1 {
			return it.Eval(f.Body, child, c)
		}
		return &Closure{Params: f.Params[1:], Body: f.Body, Env: child}, nil
	case *Builtin:
		args := append(append([]Value{}, f.Args...), arg)
		if len(args) < f.Arity {
			return &Builtin{Name: f.Name, Arity: f.Arity, Args: args, Impl: f.Impl}, nil
		}
		return f.Impl(args)
	default:
		return nil, NewMessageError("E1907", fmt.Sprintf("cannot apply a value of type %s", fn.Type()))
	}
}

func (it *Interp) evalMatch(n *kernel.Match, env *Env, c *Cancel) (Value, error) {
	scrutinee, err := it.Eval(n.Scrutinee, env, c)
	if err != nil {
		return nil, err
	}
	candidates := candidateOrder(n.Arms, scrutinee)
	for _, i := range candidates {
		arm := n.Arms[i]
		child, ok := Match(arm.Pattern, scrutinee, env)
		if !ok {
			continue
		}
		if arm.Guard != nil {
			g, err := it.Eval(arm.Guard, child, c)
			if err != nil {
				return nil, err
			}
			if !Truthy(g) {
				continue
			}
		}
		return it.Eval(arm.Body, child, c)
	}
	return nil, NewMessageError("E1902", "no match arm matched "+scrutinee.String())
}

// candidateOrder uses dtree when the match has enough constructor arms
// to benefit, pruning to just the arms sharing the scrutinee's
// constructor tag (plus the catch-all default bucket, in original
// order); otherwise it tries every arm top to bottom.
func candidateOrder(arms []kernel.MatchArm, scrutinee Value) []int {
	if !dtree.WorthCompiling(arms) {
		all := make([]int, len(arms))
		for i := range arms {
			all[i] = i
		}
		return all
	}
	tree := dtree.Compile(arms)
	key := ""
	if ctor, ok := scrutinee.(*Constructor); ok {
		key = dtree.ConstructorKey(ctor.Name)
	}
	if key == "" {
		return tree.CandidateArms(key)
	}
	bucket := map[int]bool{}
	for _, i := range tree.CandidateArms(key) {
		bucket[i] = true
	}
	var out []int
	for i, a := range arms {
		if _, keyed := dtree.Key(a.Pattern); bucket[i] || !keyed {
			out = append(out, i)
		}
	}
	return out
}

func (it *Interp) evalRecordLit(n *kernel.RecordLit, env *Env, c *Cancel) (Value, error) {
	rec := NewRecord()
	for _, f := range n.Fields {
		v, err := it.Eval(f.Value, env, c)
		if err != nil {
			return nil, err
		}
		rec = rec.With(f.Name, v)
	}
	return rec, nil
}

func (it *Interp) evalCtor(n *kernel.Ctor, env *Env, c *Cancel) (Value, error) {
	args, err := it.evalExprs(n.Args, env, c)
	if err != nil {
		return nil, err
	}
	return &Constructor{TypeName: n.TypeName, Name: n.Name, Args: args}, nil
}

func (it *Interp) evalListLit(n *kernel.ListLit, env *Env, c *Cancel) (Value, error) {
	var items []Value
	for _, it2 := range n.Items {
		v, err := it.Eval(it2.Expr, env, c)
		if err != nil {
			return nil, err
		}
		if it2.Spread {
			l, ok := v.(*List)
			if !ok {
				return nil, NewMessageError("E1908", "spread target is not a list")
			}
			items = append(items, l.Items...)
			continue
		}
		items = append(items, v)
	}
	return &List{Items: items}, nil
}

func (it *Interp) evalFieldAccess(n *kernel.FieldAccess, env *Env, c *Cancel) (Value, error) {
	base, err := it.Eval(n.Base, env, c)
	if err != nil {
		return nil, err
	}
	rec, ok := base.(*Record)
	if !ok {
		return nil, NewMessageError("E1909", fmt.Sprintf("cannot access field %s on a %s", n.Field, base.Type()))
	}
	v, ok := rec.Fields[n.Field]
	if !ok {
		return nil, NewMessageError("E1910", "no field "+n.Field)
	}
	return v, nil
}

func (it *Interp) evalIndex(n *kernel.Index, env *Env, c *Cancel) (Value, error) {
	base, err := it.Eval(n.Base, env, c)
	if err != nil {
		return nil, err
	}
	idx, err := it.Eval(n.Index, env, c)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *List:
		i, ok := idx.(Int)
		if !ok || i.Value < 0 || int(i.Value) >= len(b.Items) {
			return nil, NewMessageError("E1911", "list index out of range")
		}
		return b.Items[i.Value], nil
	case *Tuple:
		i, ok := idx.(Int)
		if !ok || i.Value < 0 || int(i.Value) >= len(b.Items) {
			return nil, NewMessageError("E1911", "tuple index out of range")
		}
		return b.Items[i.Value], nil
	default:
		return nil, NewMessageError("E1912", fmt.Sprintf("cannot index a %s", base.Type()))
	}
}

func (it *Interp) evalDebugTrace(n *kernel.DebugTrace, env *Env, c *Cancel) (Value, error) {
	it.traceLine("pipe #%d step %d: %s", n.PipeID, n.Step, n.Label)
	return it.Eval(n.Inner, env, c)
}
