// Package hir defines the high-level intermediate representation that sits
// between the resolved surface AST and kernel lowering (spec §4.5). HIR is
// a normalized mirror of surface expressions: decorators are expanded into
// explicit flags/nodes, pipelines are numbered, effect/generate/resource
// block tails are desugared, interpolated text is split into a part
// sequence, and same-name multi-clause definitions are lifted into a single
// MultiClause value. Patterns and record field paths are left as the
// resolver already validated them (internal/ast.Pattern, internal/ast.PathSegment)
// since HIR doesn't need to re-derive what the resolver already checked;
// kernel lowering is what turns a match into a pattern-switch (spec §4.6).
//
// Node identity follows the original compiler's internal/core Core-IR idiom: every
// node carries a span for diagnostics, mirrored here without the original compiler's
// separate OrigSpan/NodeID bookkeeping since HIR never runs a span-rewriting
// pass of its own.
package hir

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
)

// Expr is the HIR expression tree.
type Expr interface{ exprSpan() diag.Span }

// VarScope disambiguates a variable reference at HIR time rather than
// leaving it to be re-derived during evaluation.
type VarScope int

const (
	ScopeLocal VarScope = iota
	ScopeModule
	ScopeImported
	ScopeBuiltin
)

// Var is a disambiguated identifier reference.
type Var struct {
	Name   string
	Scope  VarScope
	Module string // dotted module name when Scope is ScopeModule/ScopeImported; "" otherwise
	Span   diag.Span
}

type Lit struct {
	Lit  ast.Literal
	Span diag.Span
}

// TextPart mirrors ast.TextPart; interpolated text is normalized into this
// literal/expression sequence once and for all at HIR time.
type TextPart struct {
	Literal string
	Expr    Expr
	IsExpr  bool
	Span    diag.Span
}

type Text struct {
	Parts []TextPart
	Span  diag.Span
}

type ListItem struct {
	Expr   Expr
	Spread bool
}

type List struct {
	Items []ListItem
	Span  diag.Span
}

type Tuple struct {
	Items []Expr
	Span  diag.Span
}

type RecordField struct {
	Path   []ast.PathSegment
	Value  Expr
	Spread bool
	Span   diag.Span
}

type Record struct {
	Fields []RecordField
	Span   diag.Span
}

// Patch is a `target <| {path: value, ...}` record-patch application,
// already disambiguated from an ordinary pipe call (the parser tells the
// two apart by the right-hand shape; see internal/parser/parser_expr.go).
type Patch struct {
	Target Expr
	Fields []RecordField
	Span   diag.Span
}

type FieldAccess struct {
	Base  Expr
	Field string
	Span  diag.Span
}

type IndexExpr struct {
	Base  Expr
	Index Expr
	Span  diag.Span
}

// Call is an ordinary or pipe-stage application. PipeID is 0 for an
// ordinary call; a non-zero PipeID/PipeStep/PipeLabel means this call was
// written as a `|>`/`<|` stage, numbered here from the parser's metadata
// (internal/ast.CallExpr.PipeID et al.) for @debug(pipes) instrumentation.
type Call struct {
	Func      Expr
	Args      []Expr
	PipeID    int
	PipeStep  int
	PipeLabel string
	Span      diag.Span
}

type Lambda struct {
	Params []ast.Pattern
	Body   Expr
	Span   diag.Span
}

type MatchArm struct {
	Pattern ast.Pattern
	Guard   Expr
	Body    Expr
	Span    diag.Span
}

type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Span      diag.Span
}

type If struct {
	Cond, Then, Else Expr
	Span             diag.Span
}

type Binary struct {
	Op          string
	Left, Right Expr
	Span        diag.Span
}

type Unary struct {
	Op      string
	Operand Expr
	Span    diag.Span
}

type BlockItem struct {
	Bind    *BindItem
	Filter  Expr
	Yield   Expr
	Recurse Expr
	Expr    Expr
	Span    diag.Span
}

type BindItem struct {
	Pattern ast.Pattern
	Expr    Expr
}

// Block retains its surface kind; effect/generate block tails and resource
// cleanup items have already been desugared into Items by the time a Block
// reaches kernel lowering (spec §4.5).
type Block struct {
	Kind  ast.BlockKind
	Items []BlockItem
	Span  diag.Span
}

// Pipe wraps a pipe-stage Call with its chain metadata as an explicit node.
// It only appears when debug instrumentation is enabled (see debug.go); a
// plain Call otherwise carries the same PipeID/PipeStep/PipeLabel fields
// inertly. This is the REDESIGN-FLAGGED debug pass: under
// debug_trace_enabled the pass wraps each pipe stage in Pipe and each
// @debug'd function in DebugFn, and it is a no-op when the flag is off.
type Pipe struct {
	ID    int
	Step  int
	Label string
	Call  *Call
	Span  diag.Span
}

// DebugFn wraps a function whose definition carried `@debug(...)`, recording
// which trace options were requested so the interpreter can emit entry/exit/
// pipe-stage traces (spec §9 debug design note).
type DebugFn struct {
	Opts []string
	Fn   Expr // a *Lambda or *MultiClause
	Span diag.Span
}

func (e *Var) exprSpan() diag.Span         { return e.Span }
func (e *Lit) exprSpan() diag.Span         { return e.Span }
func (e *Text) exprSpan() diag.Span        { return e.Span }
func (e *List) exprSpan() diag.Span        { return e.Span }
func (e *Tuple) exprSpan() diag.Span       { return e.Span }
func (e *Record) exprSpan() diag.Span      { return e.Span }
func (e *Patch) exprSpan() diag.Span       { return e.Span }
func (e *FieldAccess) exprSpan() diag.Span { return e.Span }
func (e *IndexExpr) exprSpan() diag.Span   { return e.Span }
func (e *Call) exprSpan() diag.Span        { return e.Span }
func (e *Lambda) exprSpan() diag.Span      { return e.Span }
func (e *Match) exprSpan() diag.Span       { return e.Span }
func (e *If) exprSpan() diag.Span          { return e.Span }
func (e *Binary) exprSpan() diag.Span      { return e.Span }
func (e *Unary) exprSpan() diag.Span       { return e.Span }
func (e *Block) exprSpan() diag.Span       { return e.Span }
func (e *Pipe) exprSpan() diag.Span        { return e.Span }
func (e *DebugFn) exprSpan() diag.Span     { return e.Span }
func (e *MultiClause) exprSpan() diag.Span { return e.Span }

// ExprSpan returns any Expr's source span.
func ExprSpan(e Expr) diag.Span { return e.exprSpan() }

// Clause is one arm of a multi-clause definition, in its original
// surface-pattern form (not yet a Kernel pattern-switch; spec §4.6 does
// that narrowing).
type Clause struct {
	Patterns []ast.Pattern
	Guard    Expr
	Body     Expr
	Span     diag.Span
}

// MultiClause is the lifted value for a definition with more than one
// clause (same name, repeated top-level defs). Clauses are tried top to
// bottom; every clause must share Arity (the resolver already rejects
// mismatched arities with E1500 before HIR ever runs).
type MultiClause struct {
	Arity   int
	Clauses []Clause
	Span    diag.Span
}

// Decl is one top-level (or domain-member) HIR definition.
type Decl struct {
	Name   string
	Inline bool
	Debug  *DebugOpts
	Body   Expr // *Lambda, *MultiClause, or any value expression
	Span   diag.Span
}

// DebugOpts records the arguments given to `@debug(...)`; an empty Opts
// slice means the bare `@debug` form, which enables every trace kind.
type DebugOpts struct {
	Opts []string
}

// Program is the desugared HIR for a set of modules, in resolver-determined
// evaluation order.
type Program struct {
	Decls map[string]map[string]*Decl // module -> def name -> Decl
	Order []string
}
