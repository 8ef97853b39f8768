package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a node in the inferred type language. Every variant is
// immutable once built; substitution always returns a new value.
type Type interface {
	String() string
	Equals(Type) bool
	Substitute(Substitution) Type
	GetKind() Kind
}

// Var is an unbound type or row variable, tagged with its kind so a
// row variable can never unify with a scalar type. Level tracks the
// let-binding depth it was created at, for efficient generalization
// (spec §5, "generalization/instantiation with level tracking").
type Var struct {
	Name  string
	K     Kind
	Level int
}

func (v *Var) String() string  { return v.Name }
func (v *Var) GetKind() Kind   { return v.K }
func (v *Var) Equals(o Type) bool {
	other, ok := o.(*Var)
	return ok && v.Name == other.Name
}
func (v *Var) Substitute(s Substitution) Type {
	if t, ok := s[v.Name]; ok {
		return t
	}
	return v
}

// Con is a nullary type constructor: Int, Float, Text, Bool, Unit, Bytes,
// or a user-declared algebraic type name.
type Con struct{ Name string }

func (c *Con) String() string   { return c.Name }
func (c *Con) GetKind() Kind    { return Star }
func (c *Con) Equals(o Type) bool {
	other, ok := o.(*Con)
	return ok && c.Name == other.Name
}
func (c *Con) Substitute(Substitution) Type { return c }

// App is type application: `Option a`, `Map k v`.
type App struct {
	Head Type
	Args []Type
}

func (a *App) String() string {
	args := make([]string, len(a.Args))
	for i, x := range a.Args {
		args[i] = x.String()
	}
	return fmt.Sprintf("%s %s", a.Head.String(), strings.Join(args, " "))
}
func (a *App) GetKind() Kind { return Star }
func (a *App) Equals(o Type) bool {
	other, ok := o.(*App)
	if !ok || !a.Head.Equals(other.Head) || len(a.Args) != len(other.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}
func (a *App) Substitute(s Substitution) Type {
	args := make([]Type, len(a.Args))
	for i, x := range a.Args {
		args[i] = x.Substitute(s)
	}
	return &App{Head: a.Head.Substitute(s), Args: args}
}

// Func is a function type with an effect row: `(a, b) -> c ! {IO}`.
type Func struct {
	Params []Type
	Eff    *Row // always non-nil; EmptyEffectRow() when pure
	Result Type
}

func (f *Func) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	effStr := ""
	if f.Eff != nil && (len(f.Eff.Labels) > 0 || f.Eff.Tail != nil) {
		effStr = " ! " + f.Eff.String()
	}
	if len(params) == 1 {
		return fmt.Sprintf("%s -> %s%s", params[0], f.Result.String(), effStr)
	}
	return fmt.Sprintf("(%s) -> %s%s", strings.Join(params, ", "), f.Result.String(), effStr)
}
func (f *Func) GetKind() Kind { return Star }
func (f *Func) Equals(o Type) bool {
	other, ok := o.(*Func)
	if !ok || len(f.Params) != len(other.Params) || !f.Result.Equals(other.Result) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(other.Params[i]) {
			return false
		}
	}
	return rowEquals(f.Eff, other.Eff)
}
func (f *Func) Substitute(s Substitution) Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Substitute(s)
	}
	return &Func{Params: params, Eff: substRow(f.Eff, s), Result: f.Result.Substitute(s)}
}

// Tuple is a fixed-arity product type.
type Tuple struct{ Elems []Type }

func (t *Tuple) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}
func (t *Tuple) GetKind() Kind { return Star }
func (t *Tuple) Equals(o Type) bool {
	other, ok := o.(*Tuple)
	if !ok || len(t.Elems) != len(other.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(other.Elems[i]) {
			return false
		}
	}
	return true
}
func (t *Tuple) Substitute(s Substitution) Type {
	elems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.Substitute(s)
	}
	return &Tuple{Elems: elems}
}

// ListT is AIVI's builtin list type.
type ListT struct{ Elem Type }

func (l *ListT) String() string   { return "[" + l.Elem.String() + "]" }
func (l *ListT) GetKind() Kind    { return Star }
func (l *ListT) Equals(o Type) bool {
	other, ok := o.(*ListT)
	return ok && l.Elem.Equals(other.Elem)
}
func (l *ListT) Substitute(s Substitution) Type { return &ListT{Elem: l.Elem.Substitute(s)} }

// Record is a row-polymorphic record type: `{ name: Text, ...ρ }`.
type Record struct{ Row *Row }

func (r *Record) String() string {
	if r.Row == nil {
		return "{}"
	}
	return r.Row.String()
}
func (r *Record) GetKind() Kind { return Star }
func (r *Record) Equals(o Type) bool {
	other, ok := o.(*Record)
	return ok && rowEquals(r.Row, other.Row)
}
func (r *Record) Substitute(s Substitution) Type { return &Record{Row: substRow(r.Row, s)} }

// Row is a label set of kind KRow(Elem): a record's fields or a
// function's effect set. Tail is nil for a closed row, or a fresh Var
// of the matching row kind for an open one.
type Row struct {
	K      Kind
	Labels map[string]Type
	Tail   *Var
}

func (r *Row) String() string {
	keys := make([]string, 0, len(r.Labels))
	for k := range r.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		if r.K.Equals(EffectRow) {
			parts = append(parts, k)
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", k, r.Labels[k].String()))
		}
	}
	if r.Tail != nil {
		parts = append(parts, "..."+r.Tail.Name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func rowEquals(a, b *Row) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if !a.K.Equals(b.K) || len(a.Labels) != len(b.Labels) {
		return false
	}
	for k, v := range a.Labels {
		ov, ok := b.Labels[k]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	if a.Tail == nil && b.Tail == nil {
		return true
	}
	if a.Tail != nil && b.Tail != nil {
		return a.Tail.Name == b.Tail.Name
	}
	return false
}

func substRow(r *Row, s Substitution) *Row {
	if r == nil {
		return nil
	}
	labels := make(map[string]Type, len(r.Labels))
	for k, v := range r.Labels {
		labels[k] = v.Substitute(s)
	}
	tail := r.Tail
	if r.Tail != nil {
		if sub, ok := s[r.Tail.Name]; ok {
			switch st := sub.(type) {
			case *Row:
				for k, v := range st.Labels {
					labels[k] = v
				}
				tail = st.Tail
			case *Var:
				tail = st
			}
		}
	}
	return &Row{K: r.K, Labels: labels, Tail: tail}
}

// EmptyEffectRow is the closed row `{}` of kind EffectRow — a pure
// function's effect set.
func EmptyEffectRow() *Row { return &Row{K: EffectRow, Labels: map[string]Type{}} }

// EmptyFieldRow is the closed row `{}` of kind FieldRow.
func EmptyFieldRow() *Row { return &Row{K: FieldRow, Labels: map[string]Type{}} }

// Scheme is a quantified type: `∀ vars. (constraints) => type`.
type Scheme struct {
	Vars        []string
	Constraints []Constraint
	Type        Type
}

func (s *Scheme) String() string {
	prefix := ""
	if len(s.Vars) > 0 {
		prefix = "forall " + strings.Join(s.Vars, " ") + ". "
	}
	if len(s.Constraints) > 0 {
		cs := make([]string, len(s.Constraints))
		for i, c := range s.Constraints {
			cs[i] = c.String()
		}
		prefix += "(" + strings.Join(cs, ", ") + ") => "
	}
	return prefix + s.Type.String()
}

// Constraint is an unresolved type class obligation, e.g. `Num a`.
type Constraint struct {
	Class string
	Type  Type
}

func (c Constraint) String() string { return fmt.Sprintf("%s %s", c.Class, c.Type.String()) }

// Predefined base types.
var (
	TInt   = &Con{Name: "Int"}
	TFloat = &Con{Name: "Float"}
	TText  = &Con{Name: "Text"}
	TBool  = &Con{Name: "Bool"}
	TUnit  = &Con{Name: "Unit"}
	TBytes = &Con{Name: "Bytes"}
)
