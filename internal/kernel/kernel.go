// Package kernel is AIVI's Kernel IR (spec §3 "Kernel", §4.6 "Kernel
// lowering"): a further-reduced form of internal/hir where multi-clause
// definitions have become value-level pattern dispatch, binary/unary
// operators have become calls, block-tail/pipe sugars are gone, and
// pipelines are plain applications. It is "the input to code-generation
// backends" (spec §3) — internal/emit lowers from here, and
// internal/eval interprets it directly.
//
// Grounded on the original compiler's internal/core package, which plays the same
// role (a narrow post-desugar IR consumed by both the interpreter and
// the original compiler's own emitters) for the original compiler's own, much larger,
// language.
package kernel

import "github.com/sunholo/aivi/internal/ast"

// Expr is a Kernel IR node.
type Expr interface{ isKernelExpr() }

// Var is a scope-tagged variable reference, carried over unchanged from
// HIR (spec §4.6 "variable reference (with scope tag)").
type Var struct {
	Name   string
	Scope  VarScope
	Module string
}

type VarScope int

const (
	ScopeLocal VarScope = iota
	ScopeModule
	ScopeImported
	ScopeBuiltin
)

// Lit is a literal value, unchanged from the surface/HIR literal.
type Lit struct{ Lit ast.Literal }

// App is function application: `f a b` becomes `App{Fn: f, Args: [a,b]}`
// after currying is flattened for the common case, but the interpreter
// still applies one argument at a time (closures are curried).
type App struct {
	Fn   Expr
	Args []Expr
}

// OpApp is a binary or unary operator resolved to a primitive/dictionary
// call (spec §4.6 "Binary operators become calls to builtins or class
// methods already resolved to a dictionary entry").
type OpApp struct {
	Op       string
	Operands []Expr
}

// Lambda is a single-clause function value.
type Lambda struct {
	Params []string
	Body   Expr
}

// Let is a non-recursive binding: `let pattern = value in body`. Lower
// does not emit it for block binds or MultiClause parameters.
type Let struct {
	Pattern ast.Pattern
	Value   Expr
	Body    Expr
}

// MatchArm is one arm of a Match: pattern, optional guard, body.
type MatchArm struct {
	Pattern ast.Pattern
	Guard   Expr // nil if no guard
	Body    Expr
}

// Match is pattern-switch with guards (spec §4.6). `if`, multi-clause
// dispatch, and surface `match` all lower to this one node.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
}

// RecordField is one field of a record construction.
type RecordField struct {
	Name  string
	Value Expr
}

type RecordLit struct{ Fields []RecordField }

// PatchField is one path-targeted field rewrite in a record patch.
type PatchField struct {
	Path  []ast.PathSegment
	Value Expr
}

type RecordPatch struct {
	Target Expr
	Fields []PatchField
}

type FieldAccess struct {
	Base  Expr
	Field string
}

type Index struct {
	Base  Expr
	Index Expr
}

// Ctor is a saturated or partially-saturated constructor application.
type Ctor struct {
	TypeName string
	Name     string
	Args     []Expr
}

type TupleLit struct{ Items []Expr }

type ListItem struct {
	Expr   Expr
	Spread bool
}
type ListLit struct{ Items []ListItem }

// BlockItem mirrors hir.BlockItem, narrowed: every sub-expression is
// already Kernel.
type BlockItem struct {
	BindPattern ast.Pattern // non-nil for `pattern <- expr`
	Filter      Expr        // non-nil for `when expr`
	Yield       Expr        // non-nil for `yield expr`
	Recurse     Expr        // non-nil for `recurse expr`
	Expr        Expr        // the bare-expression/bind-RHS form
}

type Block struct {
	Kind  ast.BlockKind
	Items []BlockItem
}

// BuiltinRef is a direct reference to a registered namespace.member
// builtin, produced whenever Kernel lowering can see statically that a
// FieldAccess targets a builtin namespace.
type BuiltinRef struct {
	Namespace string
	Member    string
}

// DebugTrace wraps a pipe-stage Call (spec §4.5/§9 debug instrumentation)
// so the interpreter can emit a trace line before/after evaluating Inner.
type DebugTrace struct {
	PipeID int
	Step   int
	Label  string
	Inner  Expr
}

// DebugFn wraps a `@debug`-decorated function body so every application
// is traced (args/return/time per spec §6 decorator opts).
type DebugFn struct {
	Opts []string
	Fn   Expr
}

func (Var) isKernelExpr()         {}
func (Lit) isKernelExpr()         {}
func (*App) isKernelExpr()        {}
func (*OpApp) isKernelExpr()      {}
func (*Lambda) isKernelExpr()     {}
func (*Let) isKernelExpr()        {}
func (*Match) isKernelExpr()      {}
func (*RecordLit) isKernelExpr()  {}
func (*RecordPatch) isKernelExpr() {}
func (*FieldAccess) isKernelExpr() {}
func (*Index) isKernelExpr()      {}
func (*Ctor) isKernelExpr()       {}
func (*TupleLit) isKernelExpr()   {}
func (*ListLit) isKernelExpr()    {}
func (*Block) isKernelExpr()      {}
func (*BuiltinRef) isKernelExpr() {}
func (*DebugTrace) isKernelExpr() {}
func (*DebugFn) isKernelExpr()    {}

// Decl is one module-level definition, lowered from hir.Decl.
type Decl struct {
	Name   string
	Inline bool
	Body   Expr
}

// Program is the whole lowered, multi-module Kernel IR, keyed the same
// way as hir.Program.
type Program struct {
	Decls map[string]map[string]*Decl
	Order []string
}
