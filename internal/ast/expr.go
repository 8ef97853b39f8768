package ast

import "github.com/sunholo/aivi/internal/diag"

// Literal is a self-contained literal value in surface syntax.
type Literal interface{ literalSpan() diag.Span }

type NumberLit struct {
	Text string
	Span diag.Span
}
type StringLit struct {
	Text string
	Span diag.Span
}
type SigilLit struct {
	Tag, Body, Flags string
	Span             diag.Span
}
type BoolLit struct {
	Value bool
	Span  diag.Span
}
type DateTimeLit struct {
	Text string
	Span diag.Span
}

func (l NumberLit) literalSpan() diag.Span   { return l.Span }
func (l StringLit) literalSpan() diag.Span   { return l.Span }
func (l SigilLit) literalSpan() diag.Span    { return l.Span }
func (l BoolLit) literalSpan() diag.Span     { return l.Span }
func (l DateTimeLit) literalSpan() diag.Span { return l.Span }

// TextPart is one segment of an interpolated text literal.
type TextPart struct {
	Literal string   // set when this is a literal text chunk
	Expr    Expr     // set when this is an interpolated `{expr}`
	IsExpr  bool
	Span    diag.Span
}

// Expr is the surface expression tree.
type Expr interface{ exprSpan() diag.Span }

type Ident struct{ Name SpannedName }

type LiteralExpr struct{ Lit Literal }

type TextInterpolate struct {
	Parts []TextPart
	Span  diag.Span
}

type ListItem struct {
	Expr   Expr
	Spread bool
	Span   diag.Span
}

type ListExpr struct {
	Items []ListItem
	Span  diag.Span
}

type TupleExpr struct {
	Items []Expr
	Span  diag.Span
}

// PathSegment is one step of a record field path, e.g. `.field`,
// `[literal]`, `[predicate]`, `[*]`, `[boolField]`.
type PathSegment struct {
	Field     *SpannedName
	Index     Expr
	All       bool
	BoolField *SpannedName
	Span      diag.Span
}

type RecordField struct {
	Path   []PathSegment
	Value  Expr
	Spread bool // `...expr` field spread
	Span   diag.Span
}

type RecordExpr struct {
	Fields []RecordField
	Span   diag.Span
}

// PatchLit is `target <| { path: value, ... }` literal payload (the
// right-hand side record of a patch).
type PatchLit struct {
	Fields []RecordField
	Span   diag.Span
}

type FieldAccess struct {
	Base  Expr
	Field SpannedName
	Span  diag.Span
}

// FieldSection is the `.field` section, desugared later to a lambda.
type FieldSection struct {
	Field SpannedName
	Span  diag.Span
}

type IndexExpr struct {
	Base  Expr
	Index Expr
	Span  diag.Span
}

type CallExpr struct {
	Func Expr
	Args []Expr
	Span diag.Span

	// PipeID/PipeStep/PipeLabel are non-zero only when this call was
	// written as a stage of a `|>`/`<|` pipeline rather than direct
	// application; HIR's desugar pass numbers them for @debug(pipes)
	// instrumentation. PipeID is 0 for an ordinary call.
	PipeID    int
	PipeStep  int
	PipeLabel string
}

type LambdaExpr struct {
	Params []Pattern
	Body   Expr
	Span   diag.Span
}

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if absent
	Body    Expr
	Span    diag.Span
}

type MatchExpr struct {
	Scrutinee Expr // nil for scrutinee-less match
	Arms      []MatchArm
	Span      diag.Span
}

type IfExpr struct {
	Cond, Then, Else Expr
	Span             diag.Span
}

type BinaryExpr struct {
	Op          string
	Left, Right Expr
	Span        diag.Span
}

// UnaryExpr is a prefix `-` or `!` applied to its operand.
type UnaryExpr struct {
	Op      string
	Operand Expr
	Span    diag.Span
}

// BlockKind distinguishes the four surface block flavors; semantics differ
// downstream in HIR/eval.
type BlockKind int

const (
	BlockPlain BlockKind = iota
	BlockEffect
	BlockGenerate
	BlockResource
)

// BlockItem is one statement inside a block.
type BlockItem struct {
	Bind    *BindItem
	Filter  Expr
	Yield   Expr
	Recurse Expr
	Expr    Expr
	Span    diag.Span
}

type BindItem struct {
	Pattern Pattern
	Expr    Expr
}

type BlockExpr struct {
	Kind  BlockKind
	Items []BlockItem
	Span  diag.Span
}

// RawExpr carries verbatim text for host-language escape hatches (unused
// by ordinary programs; reserved for FFI snippets).
type RawExpr struct {
	Text string
	Span diag.Span
}

func (e Ident) exprSpan() diag.Span           { return e.Name.Span }
func (e LiteralExpr) exprSpan() diag.Span     { return e.Lit.literalSpan() }
func (e TextInterpolate) exprSpan() diag.Span { return e.Span }
func (e ListExpr) exprSpan() diag.Span        { return e.Span }
func (e TupleExpr) exprSpan() diag.Span       { return e.Span }
func (e RecordExpr) exprSpan() diag.Span      { return e.Span }
func (e PatchLit) exprSpan() diag.Span        { return e.Span }
func (e FieldAccess) exprSpan() diag.Span     { return e.Span }
func (e FieldSection) exprSpan() diag.Span    { return e.Span }
func (e IndexExpr) exprSpan() diag.Span       { return e.Span }
func (e CallExpr) exprSpan() diag.Span        { return e.Span }
func (e LambdaExpr) exprSpan() diag.Span      { return e.Span }
func (e MatchExpr) exprSpan() diag.Span       { return e.Span }
func (e IfExpr) exprSpan() diag.Span          { return e.Span }
func (e BinaryExpr) exprSpan() diag.Span      { return e.Span }
func (e UnaryExpr) exprSpan() diag.Span       { return e.Span }
func (e BlockExpr) exprSpan() diag.Span       { return e.Span }
func (e RawExpr) exprSpan() diag.Span         { return e.Span }

// ExprSpan returns any Expr's source span.
func ExprSpan(e Expr) diag.Span { return e.exprSpan() }
