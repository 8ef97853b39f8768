package types

import "fmt"

// Env is a lexically nested type environment: names bind either a
// monomorphic Type (lambda/match-bound locals) or a polymorphic Scheme
// (top-level definitions), mirroring the resolver's scope-stack shape
// (internal/resolver's scopeEnv) but carrying types instead of presence.
type Env struct {
	mono   map[string]Type
	poly   map[string]*Scheme
	parent *Env
	level  int
}

// NewEnv creates a root environment at let-level 0.
func NewEnv() *Env {
	return &Env{mono: map[string]Type{}, poly: map[string]*Scheme{}}
}

// Child opens a new lexical frame one let-level deeper.
func (e *Env) Child() *Env {
	return &Env{mono: map[string]Type{}, poly: map[string]*Scheme{}, parent: e, level: e.level + 1}
}

// Level is this frame's let-binding depth, used to decide which
// variables generalize (spec §5, "level tracking"): a variable created
// at a deeper level than the current binding is safe to quantify over.
func (e *Env) Level() int { return e.level }

func (e *Env) BindMono(name string, t Type) { e.mono[name] = t }
func (e *Env) BindPoly(name string, s *Scheme) { e.poly[name] = s }

// Lookup resolves name to an instantiated Type, fresh-renaming any
// quantified scheme variables.
func (e *Env) Lookup(name string, fresh func(Kind) *Var) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.mono[name]; ok {
			return t, true
		}
		if s, ok := env.poly[name]; ok {
			return Instantiate(s, fresh), true
		}
	}
	return nil, false
}

// Instantiate replaces every quantified variable in s with a fresh one,
// preserving its constraints against the fresh names.
func Instantiate(s *Scheme, fresh func(Kind) *Var) Type {
	if len(s.Vars) == 0 {
		return s.Type
	}
	sub := make(Substitution, len(s.Vars))
	for _, v := range s.Vars {
		sub[v] = fresh(Star)
	}
	return Apply(sub, s.Type)
}

// Generalize quantifies every free variable in t that is not free in the
// enclosing environment (i.e. was introduced at or below this env's
// level), attaching any residual class constraints.
func Generalize(e *Env, t Type, constraints []Constraint) *Scheme {
	envFree := map[string]bool{}
	e.collectFree(envFree)

	tFree := map[string]bool{}
	collectFreeVars(t, tFree)

	var vars []string
	for v := range tFree {
		if !envFree[v] {
			vars = append(vars, v)
		}
	}
	return &Scheme{Vars: vars, Constraints: constraints, Type: t}
}

func (e *Env) collectFree(out map[string]bool) {
	for _, t := range e.mono {
		collectFreeVars(t, out)
	}
	for _, s := range e.poly {
		free := map[string]bool{}
		collectFreeVars(s.Type, free)
		bound := map[string]bool{}
		for _, v := range s.Vars {
			bound[v] = true
		}
		for v := range free {
			if !bound[v] {
				out[v] = true
			}
		}
	}
	if e.parent != nil {
		e.parent.collectFree(out)
	}
}

func collectFreeVars(t Type, out map[string]bool) {
	switch x := t.(type) {
	case *Var:
		out[x.Name] = true
	case *App:
		collectFreeVars(x.Head, out)
		for _, a := range x.Args {
			collectFreeVars(a, out)
		}
	case *Func:
		for _, p := range x.Params {
			collectFreeVars(p, out)
		}
		if x.Eff != nil {
			collectFreeVarsRow(x.Eff, out)
		}
		collectFreeVars(x.Result, out)
	case *Tuple:
		for _, el := range x.Elems {
			collectFreeVars(el, out)
		}
	case *ListT:
		collectFreeVars(x.Elem, out)
	case *Record:
		if x.Row != nil {
			collectFreeVarsRow(x.Row, out)
		}
	}
}

func collectFreeVarsRow(r *Row, out map[string]bool) {
	if r.Tail != nil {
		out[r.Tail.Name] = true
	}
	if r.K.Equals(FieldRow) {
		for _, t := range r.Labels {
			collectFreeVars(t, out)
		}
	}
}

// FreshVarFactory returns a fresh-variable generator scoped to one
// inference run, so successive calls within an Infer produce distinct
// names (t1, t2, ...) without a shared package-level counter leaking
// between independently-resolved modules.
type FreshVarFactory struct {
	n     int
	level int
}

func NewFreshVarFactory(level int) *FreshVarFactory { return &FreshVarFactory{level: level} }

func (f *FreshVarFactory) Fresh(k Kind) *Var {
	f.n++
	return &Var{Name: fmt.Sprintf("t%d", f.n), K: k, Level: f.level}
}

func (f *FreshVarFactory) FreshRow(k Kind) *Var {
	f.n++
	return &Var{Name: fmt.Sprintf("rho%d", f.n), K: KRow{Elem: k}, Level: f.level}
}
