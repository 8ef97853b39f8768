package parser

import "github.com/sunholo/aivi/internal/ast"

// parseType parses a full type expression, handling `->` at the lowest
// precedence (right-associative function arrows).
func (p *Parser) parseType() ast.TypeExpr {
	first := p.parseAppType()
	if p.isSymbol("->") {
		var params []ast.TypeExpr
		params = append(params, first)
		for p.isSymbol("->") {
			p.advance()
			next := p.parseAppType()
			if p.isSymbol("->") {
				// Right-associate: fold the remaining chain into result.
				rest := next
				var moreParams []ast.TypeExpr
				moreParams = append(moreParams, rest)
				for p.isSymbol("->") {
					p.advance()
					moreParams = append(moreParams, p.parseAppType())
				}
				result := moreParams[len(moreParams)-1]
				for i := len(moreParams) - 2; i >= 0; i-- {
					result = ast.TypeFunc{Params: []ast.TypeExpr{moreParams[i]}, Result: result}
				}
				params = append(params, result)
				break
			}
			params = append(params, next)
		}
		result := params[len(params)-1]
		for i := len(params) - 2; i >= 0; i-- {
			result = ast.TypeFunc{Params: []ast.TypeExpr{params[i]}, Result: result}
		}
		return result
	}
	return first
}

// parseAppType parses type application by juxtaposition: `List Int`.
func (p *Parser) parseAppType() ast.TypeExpr {
	base := p.parseAtomType()
	var args []ast.TypeExpr
	for p.canStartAtomType() {
		args = append(args, p.parseAtomType())
	}
	if len(args) == 0 {
		return base
	}
	return ast.TypeApp{Base: base, Args: args}
}

func (p *Parser) canStartAtomType() bool {
	if p.isSymbol("(") || p.isSymbol("{") || p.isSymbol("*") {
		return true
	}
	return p.isIdent()
}

func (p *Parser) parseAtomType() ast.TypeExpr {
	switch {
	case p.isSymbol("*"):
		t := p.advance()
		return ast.TypeStar{Span: t.Span}
	case p.isSymbol("("):
		p.advance()
		if p.isSymbol(")") {
			end := p.advance()
			return ast.TypeName{Name: ast.SpannedName{Name: "Unit", Span: end.Span}}
		}
		first := p.parseType()
		if p.isSymbol(",") {
			items := []ast.TypeExpr{first}
			for p.isSymbol(",") {
				p.advance()
				items = append(items, p.parseType())
			}
			p.expectSymbol(")")
			return ast.TypeTuple{Items: items}
		}
		p.expectSymbol(")")
		return first
	case p.isSymbol("{"):
		return p.parseRecordType()
	case p.isIdent():
		name, _ := p.expectIdent()
		return ast.TypeName{Name: name}
	default:
		t := p.cur()
		p.errorHere("expected a type")
		return ast.TypeUnknown{Span: t.Span}
	}
}

func (p *Parser) parseRecordType() ast.TypeExpr {
	start := p.advance().Span.Start // '{'
	var fields []ast.TypeRecordField
	open := false
	for !p.isSymbol("}") && !p.atEOF() {
		if p.isSymbol("|") {
			p.advance()
			open = true
			break
		}
		name, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		p.expectSymbol(":")
		ty := p.parseType()
		fields = append(fields, ast.TypeRecordField{Name: name, Value: ty})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return ast.TypeRecord{Fields: fields, Open: open, Span: diagSpanFrom(start, p)}
}
