package types

import "fmt"

// Unify attempts to make t1 and t2 equal under sub, returning an extended
// substitution. It is syntax-directed: variables bind (after an occurs
// check and a kind check), rows delegate to unifyRows, and every other
// shape must match structurally or unification fails.
func Unify(t1, t2 Type, sub Substitution) (Substitution, error) {
	t1 = Apply(sub, t1)
	t2 = Apply(sub, t2)

	if t1.Equals(t2) {
		return sub, nil
	}

	if v, ok := t1.(*Var); ok {
		return bindVar(v, t2, sub)
	}
	if v, ok := t2.(*Var); ok {
		return bindVar(v, t1, sub)
	}

	switch a := t1.(type) {
	case *Con:
		return nil, fmt.Errorf("cannot unify %s with %s", a.String(), t2.String())

	case *App:
		b, ok := t2.(*App)
		if !ok || len(a.Args) != len(b.Args) {
			return nil, fmt.Errorf("cannot unify %s with %s", a.String(), t2.String())
		}
		var err error
		sub, err = Unify(a.Head, b.Head, sub)
		if err != nil {
			return nil, err
		}
		for i := range a.Args {
			sub, err = Unify(a.Args[i], b.Args[i], sub)
			if err != nil {
				return nil, fmt.Errorf("type argument %d: %w", i, err)
			}
		}
		return sub, nil

	case *Func:
		b, ok := t2.(*Func)
		if !ok {
			return nil, fmt.Errorf("cannot unify function type with %s", t2.String())
		}
		if len(a.Params) != len(b.Params) {
			return nil, fmt.Errorf("function arity mismatch: %d vs %d", len(a.Params), len(b.Params))
		}
		var err error
		for i := range a.Params {
			sub, err = Unify(a.Params[i], b.Params[i], sub)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
		}
		aEff, bEff := a.Eff, b.Eff
		if aEff == nil {
			aEff = EmptyEffectRow()
		}
		if bEff == nil {
			bEff = EmptyEffectRow()
		}
		sub, err = unifyRows(aEff, bEff, sub)
		if err != nil {
			return nil, fmt.Errorf("effect row: %w", err)
		}
		return Unify(a.Result, b.Result, sub)

	case *Tuple:
		b, ok := t2.(*Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return nil, fmt.Errorf("cannot unify %s with %s", a.String(), t2.String())
		}
		var err error
		for i := range a.Elems {
			sub, err = Unify(a.Elems[i], b.Elems[i], sub)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
		}
		return sub, nil

	case *ListT:
		b, ok := t2.(*ListT)
		if !ok {
			return nil, fmt.Errorf("cannot unify %s with %s", a.String(), t2.String())
		}
		return Unify(a.Elem, b.Elem, sub)

	case *Record:
		b, ok := t2.(*Record)
		if !ok {
			return nil, fmt.Errorf("cannot unify %s with %s", a.String(), t2.String())
		}
		aRow, bRow := a.Row, b.Row
		if aRow == nil {
			aRow = EmptyFieldRow()
		}
		if bRow == nil {
			bRow = EmptyFieldRow()
		}
		return unifyRows(aRow, bRow, sub)

	default:
		return nil, fmt.Errorf("unhandled type in unification: %T", t1)
	}
}

// OccursCheckError reports an attempt to bind a variable to a type that
// contains itself (E1701) — AIVI has no recursive types.
type OccursCheckError struct {
	Var  string
	Type Type
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("infinite type: %s occurs in %s", e.Var, e.Type.String())
}

// KindMismatchError reports binding a variable to a type of the wrong
// kind (E1707) — a scalar where a row was expected, or vice versa.
type KindMismatchError struct {
	Var      string
	VarKind  Kind
	Type     Type
	TypeKind Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("kind mismatch: %s has kind %s, %s has kind %s", e.Var, e.VarKind, e.Type.String(), e.TypeKind)
}

func bindVar(v *Var, t Type, sub Substitution) (Substitution, error) {
	if occurs(v.Name, t) {
		return nil, &OccursCheckError{Var: v.Name, Type: t}
	}
	if !v.K.Equals(t.GetKind()) {
		return nil, &KindMismatchError{Var: v.Name, VarKind: v.K, Type: t, TypeKind: t.GetKind()}
	}
	out := make(Substitution, len(sub)+1)
	for k, val := range sub {
		out[k] = val
	}
	out[v.Name] = t
	return out, nil
}

func occurs(name string, t Type) bool {
	switch x := t.(type) {
	case *Var:
		return x.Name == name
	case *App:
		if occurs(name, x.Head) {
			return true
		}
		for _, a := range x.Args {
			if occurs(name, a) {
				return true
			}
		}
		return false
	case *Func:
		for _, p := range x.Params {
			if occurs(name, p) {
				return true
			}
		}
		if x.Eff != nil && occursInRow(name, x.Eff) {
			return true
		}
		return occurs(name, x.Result)
	case *Tuple:
		for _, e := range x.Elems {
			if occurs(name, e) {
				return true
			}
		}
		return false
	case *ListT:
		return occurs(name, x.Elem)
	case *Record:
		return x.Row != nil && occursInRow(name, x.Row)
	default:
		return false
	}
}

func occursInRow(name string, r *Row) bool {
	if r.Tail != nil && r.Tail.Name == name {
		return true
	}
	if r.K.Equals(FieldRow) {
		for _, t := range r.Labels {
			if occurs(name, t) {
				return true
			}
		}
	}
	return false
}
