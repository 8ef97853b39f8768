// Package ast defines the immutable surface syntax tree produced by the
// parser: expressions, patterns, types, and declarations. Nodes are plain
// structs; nothing here mutates once constructed.
package ast

import "github.com/sunholo/aivi/internal/diag"

// SpannedName is an identifier together with the span it was written at.
type SpannedName struct {
	Name string
	Span diag.Span
}

// UseDecl is a `use module.path [as alias] [hiding names] [(names)]`.
// The alias is parsed but not kept; `hiding` is recorded as Wildcard with
// Items naming the hidden names.
type UseDecl struct {
	Module   SpannedName
	Items    []SpannedName
	Wildcard bool
	Span     diag.Span
}

// Def is `name params = expr`, decorated and possibly one of several
// clauses sharing the same name (multi-clause definitions).
type Def struct {
	Decorators []Decorator
	Name       SpannedName
	Params     []Pattern
	Expr       Expr
	Span       diag.Span
}

// Decorator is `@name(args...)` or `@name "arg"` or bare `@name`.
type Decorator struct {
	Name SpannedName
	Args []string
	Span diag.Span
}

// TypeSig is `name : type`.
type TypeSig struct {
	Decorators []Decorator
	Name       SpannedName
	Type       TypeExpr
	Span       diag.Span
}

// TypeDecl is `type Name args = Ctor args | Ctor args | ...`.
type TypeDecl struct {
	Name         SpannedName
	Params       []SpannedName
	Constructors []TypeCtor
	Span         diag.Span
}

// TypeAlias is `type Name args = type`.
type TypeAlias struct {
	Name    SpannedName
	Params  []SpannedName
	Aliased TypeExpr
	Span    diag.Span
}

// TypeCtor is one constructor in an algebraic type declaration.
type TypeCtor struct {
	Name SpannedName
	Args []TypeExpr
	Span diag.Span
}

// ClassDecl is `class Name (params) = { members } [with superclasses]`.
type ClassDecl struct {
	Name         SpannedName
	Params       []TypeExpr
	Members      []ClassMember
	Superclasses []ClassHead
	Span         diag.Span
}

// ClassHead names a class applied to concrete parameter types, used both
// for superclass lists and for instance heads.
type ClassHead struct {
	Name   SpannedName
	Params []TypeExpr
}

// ClassMember is `name : type` inside a class body.
type ClassMember struct {
	Name SpannedName
	Type TypeExpr
	Span diag.Span
}

// InstanceDecl is `instance Name params = { defs } [with { defs }]`.
type InstanceDecl struct {
	Name          SpannedName
	Params        []TypeExpr
	Defs          []Def
	WithSuperDefs []Def // definitions claimed for an inherited superclass
	Span          diag.Span
}

// DomainDecl is `domain N over T = { items }`, optionally declaring a
// Delta sum type for use with `+`/`-` against the host type T.
type DomainDecl struct {
	Name  SpannedName
	Over  TypeExpr
	Items []DomainItem
	Span  diag.Span
}

// DomainItem is one member of a domain body.
type DomainItem struct {
	TypeAlias  *TypeDecl
	TypeSig    *TypeSig
	Def        *Def
	LiteralDef *Def // literal-suffix binding, e.g. `1w`
}

// ModuleItem is a tagged union over top-level declaration kinds.
type ModuleItem struct {
	Def         *Def
	TypeSig     *TypeSig
	TypeDecl    *TypeDecl
	TypeAlias   *TypeAlias
	ClassDecl   *ClassDecl
	InstanceDecl *InstanceDecl
	DomainDecl  *DomainDecl
}

// Module is one parsed `.aivi` file.
type Module struct {
	Name        SpannedName
	Exports     []SpannedName
	Uses        []UseDecl
	Items       []ModuleItem
	Annotations []SpannedName
	Span        diag.Span
	Path        string
}

// NoPrelude reports whether the module carries `@no_prelude`.
func (m *Module) NoPrelude() bool {
	for _, a := range m.Annotations {
		if a.Name == "no_prelude" {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------

// TypeExpr is the surface syntax for a type.
type TypeExpr interface{ typeExprSpan() diag.Span }

type TypeName struct {
	Name SpannedName
}

type TypeApp struct {
	Base TypeExpr
	Args []TypeExpr
	Span diag.Span
}

type TypeFunc struct {
	Params []TypeExpr
	Result TypeExpr
	Span   diag.Span
}

type TypeRecordField struct {
	Name  SpannedName
	Value TypeExpr
}

type TypeRecord struct {
	Fields []TypeRecordField
	Open   bool
	Span   diag.Span
}

type TypeTuple struct {
	Items []TypeExpr
	Span  diag.Span
}

type TypeStar struct{ Span diag.Span }
type TypeUnknown struct{ Span diag.Span }

func (t TypeName) typeExprSpan() diag.Span    { return t.Name.Span }
func (t TypeApp) typeExprSpan() diag.Span     { return t.Span }
func (t TypeFunc) typeExprSpan() diag.Span    { return t.Span }
func (t TypeRecord) typeExprSpan() diag.Span  { return t.Span }
func (t TypeTuple) typeExprSpan() diag.Span   { return t.Span }
func (t TypeStar) typeExprSpan() diag.Span    { return t.Span }
func (t TypeUnknown) typeExprSpan() diag.Span { return t.Span }

// Span returns a TypeExpr's source span.
func Span(t TypeExpr) diag.Span { return t.typeExprSpan() }
