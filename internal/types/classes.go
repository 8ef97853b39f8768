package types

import "fmt"

// Class is a declared type class: a name, its (kind-annotated) type
// parameters, its member signatures, and any superclasses it extends
// (spec §4.2, `class Name (params) = { members } [with superclasses]`).
type Class struct {
	Name         string
	Params       []string
	Members      map[string]*Scheme
	Superclasses []string
}

// Instance associates a class with a concrete head type and the
// definitions it supplies, plus whichever superclasses it explicitly
// claims (`instance Name params = { defs } with { superDefs }`).
type Instance struct {
	Class        string
	Head         Type
	Methods      map[string]Type
	ClaimedSuper []string
}

// ClassEnv resolves class-method obligations to concrete instances by
// structural match on the head type, grounded on the original compiler's
// InstanceEnv/ClassInstance shape but generalized from a fixed
// Num/Ord/Eq/Show set to arbitrary user-declared classes.
type ClassEnv struct {
	classes   map[string]*Class
	instances map[string]*Instance // "Class::HeadKey" -> instance
}

func NewClassEnv() *ClassEnv {
	return &ClassEnv{classes: map[string]*Class{}, instances: map[string]*Instance{}}
}

func (e *ClassEnv) DeclareClass(c *Class) { e.classes[c.Name] = c }

func (e *ClassEnv) Class(name string) (*Class, bool) {
	c, ok := e.classes[name]
	return c, ok
}

// headKey canonicalizes a head type for instance lookup: the outermost
// constructor name, ignoring type arguments (structural match on head,
// per spec §4.2).
func headKey(t Type) string {
	switch x := t.(type) {
	case *Con:
		return x.Name
	case *App:
		return headKey(x.Head)
	case *ListT:
		return "[]"
	case *Tuple:
		return fmt.Sprintf("(%d)", len(x.Elems))
	case *Record:
		return "{}"
	case *Func:
		return "->"
	default:
		return t.String()
	}
}

func instanceKey(class string, head Type) string { return class + "::" + headKey(head) }

// AddInstance registers an instance, rejecting a second instance for the
// same class+head (coherence: AIVI does not allow overlapping instances).
func (e *ClassEnv) AddInstance(inst *Instance) error {
	key := instanceKey(inst.Class, inst.Head)
	if _, exists := e.instances[key]; exists {
		return fmt.Errorf("overlapping instance: %s %s", inst.Class, inst.Head.String())
	}
	e.instances[key] = inst
	return nil
}

// Resolve finds the instance implementing class for head, verifying
// that every superclass the class declares also has an instance for
// head — spec §4.2's "missing instance method" rule for unclaimed
// superclass obligations.
func (e *ClassEnv) Resolve(class string, head Type) (*Instance, error) {
	inst, ok := e.instances[instanceKey(class, head)]
	if !ok {
		return nil, &MissingInstanceError{Class: class, Type: head}
	}
	if c, ok := e.classes[class]; ok {
		for _, super := range c.Superclasses {
			if _, err := e.Resolve(super, head); err != nil {
				return nil, &MissingSuperclassError{Class: class, Super: super, Type: head}
			}
		}
	}
	return inst, nil
}

// MissingInstanceError reports an unresolved class constraint (E1703).
type MissingInstanceError struct {
	Class string
	Type  Type
}

func (e *MissingInstanceError) Error() string {
	return fmt.Sprintf("no instance %s %s in scope", e.Class, e.Type.String())
}

// MissingSuperclassError reports an instance that claims methods from a
// superclass with no instance of its own (E1704).
type MissingSuperclassError struct {
	Class string
	Super string
	Type  Type
}

func (e *MissingSuperclassError) Error() string {
	return fmt.Sprintf("missing instance method: %s %s requires superclass %s %s", e.Class, e.Type.String(), e.Super, e.Type.String())
}

// preludeClasses are the classes every module can rely on without a
// `class` declaration of its own (the language's built-in Num/Eq/Ord/
// Show/ToText hierarchy), grounded on the original compiler's builtinInstances
// table but restructured around the generalized ClassEnv above.
func preludeClasses() []*Class {
	return []*Class{
		{Name: "Num", Params: []string{"a"}, Members: map[string]*Scheme{
			"add": numBinOp(), "sub": numBinOp(), "mul": numBinOp(), "div": numBinOp(),
		}},
		{Name: "Eq", Params: []string{"a"}, Members: map[string]*Scheme{
			"eq": eqOp(), "neq": eqOp(),
		}},
		{Name: "Ord", Params: []string{"a"}, Superclasses: []string{"Eq"}, Members: map[string]*Scheme{
			"lt": eqOp(), "lte": eqOp(), "gt": eqOp(), "gte": eqOp(),
		}},
		{Name: "Show", Params: []string{"a"}, Members: map[string]*Scheme{
			"show": showOp(),
		}},
		{Name: "ToText", Params: []string{"a"}, Members: map[string]*Scheme{}},
	}
}

func numBinOp() *Scheme {
	a := &Var{Name: "a", K: Star}
	return &Scheme{Vars: []string{"a"}, Type: &Func{Params: []Type{a, a}, Eff: EmptyEffectRow(), Result: a}}
}

func eqOp() *Scheme {
	a := &Var{Name: "a", K: Star}
	return &Scheme{Vars: []string{"a"}, Type: &Func{Params: []Type{a, a}, Eff: EmptyEffectRow(), Result: TBool}}
}

func showOp() *Scheme {
	a := &Var{Name: "a", K: Star}
	return &Scheme{Vars: []string{"a"}, Type: &Func{Params: []Type{a}, Eff: EmptyEffectRow(), Result: TText}}
}

// preludeInstances seeds Num/Eq/Ord/Show/ToText for the base scalar
// types, the way the original compiler's builtinInstances() populates Int/Float/
// String/Bool without requiring a `prelude` module to declare them
// syntactically.
func preludeInstances() []*Instance {
	mk := func(class string, head Type) *Instance {
		return &Instance{Class: class, Head: head, Methods: map[string]Type{}}
	}
	var out []*Instance
	for _, t := range []Type{TInt, TFloat} {
		out = append(out, mk("Num", t))
	}
	for _, t := range []Type{TInt, TFloat, TText, TBool} {
		out = append(out, mk("Eq", t), mk("Show", t), mk("ToText", t))
	}
	for _, t := range []Type{TInt, TFloat, TText} {
		out = append(out, mk("Ord", t))
	}
	return out
}

// NewPreludeClassEnv builds the ClassEnv every module starts from,
// before its own `class`/`instance` declarations are merged in.
func NewPreludeClassEnv() *ClassEnv {
	env := NewClassEnv()
	for _, c := range preludeClasses() {
		env.DeclareClass(c)
	}
	for _, inst := range preludeInstances() {
		if err := env.AddInstance(inst); err != nil {
			panic(err) // prelude instances are hand-curated and must not collide
		}
	}
	return env
}
