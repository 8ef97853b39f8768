package parser

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

// parseExpr parses a full expression at the lowest precedence level:
// lambda / pipelines / fallback (spec §4.2 level 1).
func (p *Parser) parseExpr() ast.Expr {
	return p.parseLambdaOrPipe()
}

func (p *Parser) parseLambdaOrPipe() ast.Expr {
	if looksLikeLambdaStart(p) {
		return p.parseLambda()
	}
	left := p.parseOr()
	pipeID := 0 // assigned lazily on the first |>/<| stage of this chain
	step := 0
	for p.isSymbol("|>") || p.isSymbol("<|") || p.isSymbol("??") {
		op := p.advance()
		right := p.parseOr()
		switch op.Text {
		case "|>":
			if pipeID == 0 {
				p.pipeIDSeq++
				pipeID = p.pipeIDSeq
			}
			step++
			left = ast.CallExpr{Func: right, Args: []ast.Expr{left}, Span: diag.Span{Start: ast.ExprSpan(left).Start, End: ast.ExprSpan(right).End},
				PipeID: pipeID, PipeStep: step, PipeLabel: "|> " + pipeLabelOf(right)}
		case "<|":
			if pipeID == 0 {
				p.pipeIDSeq++
				pipeID = p.pipeIDSeq
			}
			step++
			left = ast.CallExpr{Func: left, Args: []ast.Expr{right}, Span: diag.Span{Start: ast.ExprSpan(left).Start, End: ast.ExprSpan(right).End},
				PipeID: pipeID, PipeStep: step, PipeLabel: "<| " + pipeLabelOf(right)}
		case "??":
			left = ast.BinaryExpr{Op: "??", Left: left, Right: right, Span: diag.Span{Start: ast.ExprSpan(left).Start, End: ast.ExprSpan(right).End}}
		}
	}
	return left
}

// pipeLabelOf renders a short diagnostic label for a pipe stage, falling
// back to "<expr>" for anything more complex than a bare identifier or
// a call to one.
func pipeLabelOf(e ast.Expr) string {
	switch x := e.(type) {
	case ast.Ident:
		return x.Name.Name
	case ast.CallExpr:
		return pipeLabelOf(x.Func)
	default:
		return "<expr>"
	}
}

// looksLikeLambdaStart scans ahead for a `=>` before the next top-level
// `,`, `)`, `]`, `}`, or newline, indicating `params => body`.
func looksLikeLambdaStart(p *Parser) bool {
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
			case "=>":
				if depth == 0 {
					return true
				}
			case ",", "=":
				if depth == 0 {
					return false
				}
			}
		}
	}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.cur().Span.Start
	var params []ast.Pattern
	for !p.isSymbol("=>") && !p.atEOF() {
		params = append(params, p.parseAtomPattern())
	}
	p.expectSymbol("=>")
	body := p.parseExpr()
	return ast.LambdaExpr{Params: params, Body: body, Span: diag.Span{Start: start, End: ast.ExprSpan(body).End}}
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.isSymbol("||") {
		p.advance()
		right := p.parseAnd()
		left = ast.BinaryExpr{Op: "||", Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseCompare()
	for p.isSymbol("&&") {
		p.advance()
		right := p.parseCompare()
		left = ast.BinaryExpr{Op: "&&", Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseCompare() ast.Expr {
	left := p.parseAppend()
	for p.isSymbol("==") || p.isSymbol("!=") || p.isSymbol("<") || p.isSymbol("<=") || p.isSymbol(">") || p.isSymbol(">=") {
		op := p.advance()
		right := p.parseAppend()
		left = ast.BinaryExpr{Op: op.Text, Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseAppend() ast.Expr {
	left := p.parseAdditive()
	for p.isSymbol("++") {
		p.advance()
		right := p.parseAdditive()
		left = ast.BinaryExpr{Op: "++", Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.isSymbol("+") || p.isSymbol("-") {
		op := p.advance()
		right := p.parseMultiplicative()
		left = ast.BinaryExpr{Op: op.Text, Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.isSymbol("*") || p.isSymbol("/") || p.isSymbol("%") {
		op := p.advance()
		right := p.parseUnary()
		left = ast.BinaryExpr{Op: op.Text, Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.isSymbol("-") || p.isSymbol("!") {
		op := p.advance()
		operand := p.parseUnary()
		return ast.UnaryExpr{Op: op.Text, Operand: operand, Span: diag.Span{Start: op.Span.Start, End: ast.ExprSpan(operand).End}}
	}
	return p.parseApplication()
}

// parseApplication parses left-associative juxtaposition application:
// `f a b c`.
func (p *Parser) parseApplication() ast.Expr {
	fn := p.parsePostfix()
	var args []ast.Expr
	for p.canStartArgument() {
		args = append(args, p.parsePostfix())
	}
	if len(args) == 0 {
		return fn
	}
	return ast.CallExpr{Func: fn, Args: args, Span: diag.Span{Start: ast.ExprSpan(fn).Start, End: ast.ExprSpan(args[len(args)-1]).End}}
}

func (p *Parser) canStartArgument() bool {
	if p.peekRaw(0).Kind == lexer.Newline || (p.pos > 0 && p.tokens[p.pos-1].Kind == lexer.Newline) {
		return false
	}
	t := p.cur()
	switch t.Kind {
	case lexer.Ident:
		return !lexer.Keywords[t.Text] || t.Text == "if" || t.Text == "do" || t.Text == "effect" || t.Text == "generate" || t.Text == "resource" || t.Text == "when"
	case lexer.Number, lexer.String, lexer.Sigil, lexer.DateTime:
		return true
	case lexer.Symbol:
		return t.Text == "(" || t.Text == "[" || t.Text == "{" || t.Text == "."
	}
	return false
}

// parsePostfix handles trailing `.field` and `[expr]`.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parseAtom()
	for {
		switch {
		case p.isSymbol("."):
			p.advance()
			field, ok := p.expectIdent()
			if !ok {
				return e
			}
			e = ast.FieldAccess{Base: e, Field: field, Span: diag.Span{Start: ast.ExprSpan(e).Start, End: field.Span.End}}
		case p.isSymbol("["):
			p.advance()
			idx := p.parseExpr()
			end, _ := p.expectSymbol("]")
			e = ast.IndexExpr{Base: e, Index: idx, Span: diag.Span{Start: ast.ExprSpan(e).Start, End: end.End}}
		case p.isSymbol("<|") && p.peekRaw(1).Kind == lexer.Symbol && p.peekRaw(1).Text == "{":
			p.advance()
			fields := p.parsePatchFields()
			e = ast.CallExpr{
				Func: ast.Ident{Name: ast.SpannedName{Name: "__patch__"}},
				Args: []ast.Expr{e, ast.PatchLit{Fields: fields}},
				Span: ast.ExprSpan(e),
			}
		default:
			return e
		}
	}
}

func spanOf(left, right ast.Expr) diag.Span {
	return diag.Span{Start: ast.ExprSpan(left).Start, End: ast.ExprSpan(right).End}
}

func (p *Parser) parseAtom() ast.Expr {
	t := p.cur()
	switch {
	case t.Kind == lexer.Number, t.Kind == lexer.Sigil, t.Kind == lexer.DateTime:
		return ast.LiteralExpr{Lit: p.parseLiteral()}
	case t.Kind == lexer.String:
		tok := p.advance()
		return p.parseStringLiteralExpr(tok)
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("when"):
		return p.parseMatch()
	case t.Kind == lexer.Ident && t.Text == "match":
		return p.parseMatch()
	case p.isKeyword("do") || p.isKeyword("effect") || p.isKeyword("generate") || p.isKeyword("resource"):
		return p.parseBlock()
	case p.isKeyword("pure"):
		p.advance()
		arg := p.parsePostfix()
		return ast.CallExpr{Func: ast.Ident{Name: ast.SpannedName{Name: "pure"}}, Args: []ast.Expr{arg}}
	case p.isSymbol("("):
		return p.parseParenOrTuple()
	case p.isSymbol("["):
		return p.parseList()
	case p.isSymbol("{"):
		return p.parseRecordOrPatch()
	case p.isSymbol("."):
		p.advance()
		field, ok := p.expectIdent()
		if !ok {
			return ast.Ident{Name: ast.SpannedName{Name: "_"}}
		}
		return ast.FieldSection{Field: field, Span: field.Span}
	case p.isIdent():
		name, _ := p.expectIdent()
		return ast.Ident{Name: name}
	default:
		p.errorHere("expected an expression")
		p.advance()
		return ast.Ident{Name: ast.SpannedName{Name: "__error__", Span: t.Span}}
	}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.advance().Span.Start
	cond := p.parseExpr()
	p.expectKeyword("then")
	then := p.parseExpr()
	p.expectKeyword("else")
	elseE := p.parseExpr()
	return ast.IfExpr{Cond: cond, Then: then, Else: elseE, Span: diag.Span{Start: start, End: ast.ExprSpan(elseE).End}}
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.advance().Span.Start // 'match' or 'when'
	var scrutinee ast.Expr
	if !p.isSymbol("{") {
		end := p.pos
		for end < len(p.tokens) && !(p.tokens[end].Kind == lexer.Symbol && p.tokens[end].Text == "{") {
			end++
		}
		sub := &Parser{tokens: p.tokens[:end], pos: p.pos, path: p.path, pipeIDSeq: p.pipeIDSeq}
		scrutinee = sub.parseExpr()
		p.diags = append(p.diags, sub.diags...)
		p.pos, p.pipeIDSeq = sub.pos, sub.pipeIDSeq
	}
	p.expectSymbol("{")
	var arms []ast.MatchArm
	for !p.isSymbol("}") && !p.atEOF() {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.isKeyword("when") {
			p.advance()
			guard = p.parseOr()
		}
		p.expectSymbol("=>")
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: diagSpanFrom(ast.PatternSpan(pat).Start, p)})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	end, _ := p.expectSymbol("}")
	return ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Span: diag.Span{Start: start, End: end.End}}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.advance().Span.Start // '('
	if p.isSymbol(")") {
		end := p.advance()
		return ast.Ident{Name: ast.SpannedName{Name: "Unit", Span: diag.Span{Start: start, End: end.Span.End}}}
	}
	first := p.parseExpr()
	if p.isSymbol(",") {
		items := []ast.Expr{first}
		for p.isSymbol(",") {
			p.advance()
			items = append(items, p.parseExpr())
		}
		end, _ := p.expectSymbol(")")
		return ast.TupleExpr{Items: items, Span: diag.Span{Start: start, End: end.End}}
	}
	p.expectSymbol(")")
	return first
}

func (p *Parser) parseList() ast.Expr {
	start := p.advance().Span.Start // '['
	var items []ast.ListItem
	for !p.isSymbol("]") && !p.atEOF() {
		spread := false
		if p.isSymbol("...") {
			p.advance()
			spread = true
		}
		e := p.parseExpr()
		items = append(items, ast.ListItem{Expr: e, Spread: spread, Span: ast.ExprSpan(e)})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	end, _ := p.expectSymbol("]")
	return ast.ListExpr{Items: items, Span: diag.Span{Start: start, End: end.End}}
}

func (p *Parser) parsePathSegments(first ast.SpannedName) []ast.PathSegment {
	segs := []ast.PathSegment{{Field: &first, Span: first.Span}}
	for {
		switch {
		case p.isSymbol("."):
			p.advance()
			n, ok := p.expectIdent()
			if !ok {
				return segs
			}
			segs = append(segs, ast.PathSegment{Field: &n, Span: n.Span})
		case p.isSymbol("["):
			p.advance()
			if p.isSymbol("*") {
				end := p.advance()
				p.expectSymbol("]")
				segs = append(segs, ast.PathSegment{All: true, Span: end.Span})
				continue
			}
			idx := p.parseExpr()
			end, _ := p.expectSymbol("]")
			segs = append(segs, ast.PathSegment{Index: idx, Span: diag.Span{Start: ast.ExprSpan(idx).Start, End: end.End}})
		default:
			return segs
		}
	}
}

func (p *Parser) parseRecordOrPatch() ast.Expr {
	start := p.advance().Span.Start // '{'
	var fields []ast.RecordField
	for !p.isSymbol("}") && !p.atEOF() {
		if p.isSymbol("...") {
			p.advance()
			e := p.parseExpr()
			fields = append(fields, ast.RecordField{Spread: true, Value: e, Span: ast.ExprSpan(e)})
			if p.isSymbol(",") {
				p.advance()
			}
			continue
		}
		name, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		segs := p.parsePathSegments(name)
		p.expectSymbol(":")
		value := p.parseExpr()
		fields = append(fields, ast.RecordField{Path: segs, Value: value, Span: diagSpanFrom(name.Span.Start, p)})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	end, _ := p.expectSymbol("}")
	return ast.RecordExpr{Fields: fields, Span: diag.Span{Start: start, End: end.End}}
}

func (p *Parser) parsePatchFields() []ast.RecordField {
	p.expectSymbol("{")
	var fields []ast.RecordField
	for !p.isSymbol("}") && !p.atEOF() {
		name, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		segs := p.parsePathSegments(name)
		p.expectSymbol(":")
		value := p.parseExpr()
		fields = append(fields, ast.RecordField{Path: segs, Value: value, Span: diagSpanFrom(name.Span.Start, p)})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return fields
}
