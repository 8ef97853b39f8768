package ast

import "github.com/sunholo/aivi/internal/diag"

// Pattern mirrors expression syntax for destructuring.
type Pattern interface{ patternSpan() diag.Span }

type WildcardPattern struct{ Span diag.Span }

type IdentPattern struct{ Name SpannedName }

type LiteralPattern struct{ Lit Literal }

type ConstructorPattern struct {
	Name SpannedName
	Args []Pattern
	Span diag.Span
}

type TuplePattern struct {
	Items []Pattern
	Span  diag.Span
}

type ListPattern struct {
	Items []Pattern
	Rest  Pattern // nil if no `...rest`
	Span  diag.Span
}

// RecordPatternField supports dotted-path field patterns, e.g.
// `{ user.name: n }`.
type RecordPatternField struct {
	Path    []SpannedName
	Pattern Pattern
	Span    diag.Span
}

type RecordPattern struct {
	Fields []RecordPatternField
	Span   diag.Span
}

func (p WildcardPattern) patternSpan() diag.Span    { return p.Span }
func (p IdentPattern) patternSpan() diag.Span       { return p.Name.Span }
func (p LiteralPattern) patternSpan() diag.Span     { return p.Lit.literalSpan() }
func (p ConstructorPattern) patternSpan() diag.Span { return p.Span }
func (p TuplePattern) patternSpan() diag.Span       { return p.Span }
func (p ListPattern) patternSpan() diag.Span        { return p.Span }
func (p RecordPattern) patternSpan() diag.Span      { return p.Span }

// PatternSpan returns any Pattern's source span.
func PatternSpan(p Pattern) diag.Span { return p.patternSpan() }

// Arity returns the number of sub-patterns a constructor pattern binds,
// used by the resolver to check constructor arity (spec §4.3).
func Arity(p Pattern) int {
	if c, ok := p.(ConstructorPattern); ok {
		return len(c.Args)
	}
	return 0
}
