package parser

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

// parseBlock parses the four block flavors introduced by `do`, `effect`,
// `generate`, and `resource` (spec §4.2, §5). Each is a brace-delimited
// sequence of items:
//
//	pattern <- expr   bind: force the effect/resource and destructure
//	when expr         filter: abandon this iteration unless expr holds
//	yield expr        generate: emit a value into the stream
//	recurse expr      loop back to the block's start with new bindings
//	expr              a bare effectful expression, run for its effect
//
// In a resource block the `yield` item gives the value handed to the
// caller and the items after it are its cleanup; its binds are unwound in reverse
// acquisition order on every exit path, including cancellation — that
// unwind is implemented in the interpreter, not here.
func (p *Parser) parseBlock() ast.Expr {
	kwTok := p.advance()
	var kind ast.BlockKind
	switch kwTok.Text {
	case "do":
		kind = ast.BlockEffect
	case "effect":
		kind = ast.BlockEffect
	case "generate":
		kind = ast.BlockGenerate
	case "resource":
		kind = ast.BlockResource
	default:
		kind = ast.BlockPlain
	}
	start := kwTok.Span.Start
	p.expectSymbol("{")
	var items []ast.BlockItem
	for !p.isSymbol("}") && !p.atEOF() {
		items = append(items, p.parseBlockItem())
		if p.isSymbol(",") {
			p.advance()
		}
	}
	end, _ := p.expectSymbol("}")
	return ast.BlockExpr{Kind: kind, Items: items, Span: diag.Span{Start: start, End: end.End}}
}

func (p *Parser) parseBlockItem() ast.BlockItem {
	start := p.cur().Span.Start
	switch {
	case p.isKeyword("yield"):
		p.advance()
		e := p.parseExpr()
		return ast.BlockItem{Yield: e, Span: diagSpanFrom(start, p)}
	case p.isKeyword("recurse") || p.isKeyword("loop"):
		p.advance()
		var e ast.Expr
		if !p.isSymbol("}") && !p.blockItemEnds() {
			e = p.parseExpr()
		}
		return ast.BlockItem{Recurse: e, Span: diagSpanFrom(start, p)}
	case p.isKeyword("when"):
		p.advance()
		e := p.parseExpr()
		return ast.BlockItem{Filter: e, Span: diagSpanFrom(start, p)}
	case p.canStartAtomPattern() && p.bindAhead():
		pat := p.parsePattern()
		p.expectSymbol("<-")
		e := p.parseExpr()
		return ast.BlockItem{Bind: &ast.BindItem{Pattern: pat, Expr: e}, Span: diagSpanFrom(start, p)}
	default:
		e := p.parseExpr()
		return ast.BlockItem{Expr: e, Span: diagSpanFrom(start, p)}
	}
}

// bindAhead scans ahead for a `<-` before the next top-level `,`, `}`, or
// newline, indicating this item is `pattern <- expr` rather than a bare
// expression.
func (p *Parser) bindAhead() bool {
	depth := 0
	for i := 0; ; i++ {
		t := p.peekRaw(i)
		if t.Kind == lexer.EOF || t.Kind == lexer.Newline {
			return false
		}
		if t.Kind == lexer.Symbol {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return false
				}
				depth--
			case ",":
				if depth == 0 {
					return false
				}
			case "<-":
				if depth == 0 {
					return true
				}
			}
		}
	}
}

func (p *Parser) blockItemEnds() bool {
	return p.atEOF() || p.isSymbol("}")
}
