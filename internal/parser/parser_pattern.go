package parser

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/lexer"
)

// parseAtomPattern parses one pattern at application-argument precedence:
// wildcard, identifier, literal, parenthesized/tuple, list, record, or a
// bare (arg-less) constructor name. Constructor patterns with arguments
// are only parsed at parsePattern precedence (a top-level def parameter
// list entry is atomic; a match arm pattern uses parsePattern).
func (p *Parser) parseAtomPattern() ast.Pattern {
	switch {
	case p.isSymbol("_"):
		t := p.advance()
		return ast.WildcardPattern{Span: t.Span}
	case p.cur().Kind == lexer.Ident && p.cur().Text == "_":
		t := p.advance()
		return ast.WildcardPattern{Span: t.Span}
	case p.cur().Kind == lexer.Number || p.cur().Kind == lexer.String || p.cur().Kind == lexer.Sigil || p.cur().Kind == lexer.DateTime:
		return ast.LiteralPattern{Lit: p.parseLiteral()}
	case p.isSymbol("("):
		p.advance()
		if p.isSymbol(")") {
			end := p.advance()
			return ast.TuplePattern{Items: nil, Span: end.Span}
		}
		first := p.parsePattern()
		if p.isSymbol(",") {
			items := []ast.Pattern{first}
			for p.isSymbol(",") {
				p.advance()
				items = append(items, p.parsePattern())
			}
			p.expectSymbol(")")
			return ast.TuplePattern{Items: items}
		}
		p.expectSymbol(")")
		return first
	case p.isSymbol("["):
		return p.parseListPattern()
	case p.isSymbol("{"):
		return p.parseRecordPattern()
	case p.isIdent():
		name, _ := p.expectIdent()
		if isUpperIdent(name.Name) {
			return ast.ConstructorPattern{Name: name, Span: name.Span}
		}
		return ast.IdentPattern{Name: name}
	default:
		t := p.cur()
		p.errorHere("expected a pattern")
		p.advance()
		return ast.WildcardPattern{Span: t.Span}
	}
}

// parsePattern parses a full pattern, allowing a constructor to take
// arguments (used where a pattern occupies its own position, e.g. a match
// arm or a list/tuple element).
func (p *Parser) parsePattern() ast.Pattern {
	atom := p.parseAtomPattern()
	if ctor, ok := atom.(ast.ConstructorPattern); ok {
		var args []ast.Pattern
		for p.canStartAtomPattern() {
			args = append(args, p.parseAtomPattern())
		}
		if len(args) > 0 {
			ctor.Args = args
			return ctor
		}
	}
	return atom
}

func (p *Parser) canStartAtomPattern() bool {
	if p.isSymbol("(") || p.isSymbol("[") || p.isSymbol("{") {
		return true
	}
	if p.cur().Kind == lexer.Number || p.cur().Kind == lexer.String || p.cur().Kind == lexer.Sigil || p.cur().Kind == lexer.DateTime {
		return true
	}
	return p.isIdent()
}

func isUpperIdent(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func (p *Parser) parseListPattern() ast.Pattern {
	start := p.advance().Span.Start // '['
	var items []ast.Pattern
	var rest ast.Pattern
	for !p.isSymbol("]") && !p.atEOF() {
		if p.isSymbol("...") {
			p.advance()
			rest = p.parsePattern()
			break
		}
		items = append(items, p.parsePattern())
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("]")
	return ast.ListPattern{Items: items, Rest: rest, Span: diagSpanFrom(start, p)}
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	start := p.advance().Span.Start // '{'
	var fields []ast.RecordPatternField
	for !p.isSymbol("}") && !p.atEOF() {
		first, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		path := []ast.SpannedName{first}
		for p.isSymbol(".") {
			p.advance()
			next, ok := p.expectIdent()
			if !ok {
				break
			}
			path = append(path, next)
		}
		var pat ast.Pattern
		if p.isSymbol(":") {
			p.advance()
			pat = p.parsePattern()
		} else {
			pat = ast.IdentPattern{Name: path[len(path)-1]}
		}
		fields = append(fields, ast.RecordPatternField{Path: path, Pattern: pat, Span: diagSpanFrom(first.Span.Start, p)})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return ast.RecordPattern{Fields: fields, Span: diagSpanFrom(start, p)}
}
