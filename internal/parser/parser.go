// Package parser builds the surface AST from a filtered token stream.
// Recover-and-resync error handling means a single malformed item never
// aborts the whole file (spec §4.2).
package parser

import (
	"strings"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

// Parser holds cursor state over a filtered token stream.
type Parser struct {
	tokens     []lexer.Token
	pos        int
	path       string
	diags      []diag.Diagnostic
	pipeIDSeq  int // next pipe-chain id to hand out (HIR debug instrumentation)
}

// Parse lexes and parses src into a Module, collecting diagnostics along
// the way. Parsing never aborts on the first error (spec §4.2): on an
// unexpected token, the parser emits a diagnostic and resynchronizes to
// the next top-level item.
func Parse(src, path string) (*ast.Module, []diag.Diagnostic) {
	tokens, lexDiags := lexer.Lex(src)
	filtered := lexer.FilterTokens(tokens)
	p := &Parser{tokens: filtered, path: path, diags: lexDiags}
	mod := p.parseModule()
	return mod, p.diags
}

func (p *Parser) cur() lexer.Token {
	p.skipNewlines()
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

// peekRaw looks at the token at pos+n without skipping newlines.
func (p *Parser) peekRaw(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) skipNewlines() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == lexer.Newline {
		p.pos++
	}
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) isSymbol(s string) bool {
	t := p.cur()
	return t.Kind == lexer.Symbol && t.Text == s
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == lexer.Ident && t.Text == kw
}

func (p *Parser) isIdent() bool {
	t := p.cur()
	return t.Kind == lexer.Ident && !lexer.Keywords[t.Text]
}

func (p *Parser) expectSymbol(s string) (diag.Span, bool) {
	if p.isSymbol(s) {
		t := p.advance()
		return t.Span, true
	}
	p.errorHere("expected '" + s + "'")
	return diag.Span{}, false
}

func (p *Parser) expectKeyword(kw string) (diag.Span, bool) {
	if p.isKeyword(kw) {
		t := p.advance()
		return t.Span, true
	}
	p.errorHere("expected '" + kw + "'")
	return diag.Span{}, false
}

func (p *Parser) expectIdent() (ast.SpannedName, bool) {
	if p.isIdent() {
		t := p.advance()
		return ast.SpannedName{Name: t.Text, Span: t.Span}, true
	}
	p.errorHere("expected identifier")
	return ast.SpannedName{}, false
}

func (p *Parser) errorHere(msg string) {
	t := p.cur()
	code := diag.E1200UnexpectedToken
	text := t.Text
	if t.Kind == lexer.EOF {
		text = "<eof>"
	}
	p.diags = append(p.diags, diag.NewError(code, msg+", found '"+text+"'", diag.SpanAt(t.Span.Start)))
}

// syncToTopLevel resynchronizes after an error to the next token that
// plausibly starts a module item or block boundary, so one malformed item
// does not abort the whole file (spec §4.2).
func (p *Parser) syncToTopLevel() {
	for !p.atEOF() {
		t := p.cur()
		if t.Kind == lexer.Symbol && t.Text == "}" {
			return
		}
		if t.Kind == lexer.Ident {
			switch t.Text {
			case "type", "class", "instance", "domain", "use", "export", "module":
				return
			}
			if !lexer.Keywords[t.Text] {
				// Could be the start of `name params = expr` or
				// `name : type`; treat any top-level identifier as a
				// resync point too.
				return
			}
		}
		p.advance()
	}
}

func isPathIdent(s string) bool { return !strings.ContainsAny(s, " \t\n") }

func diagSpanFrom(start diag.Position, p *Parser) diag.Span {
	return diag.Span{Start: start, End: p.lastEnd()}
}
