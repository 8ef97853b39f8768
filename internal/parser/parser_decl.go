package parser

import (
	"strings"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

// parseModule parses an optional leading annotation, the `module name.path`
// header (flat or brace-wrapped), optional exports, `use` decls, then items.
func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{Path: p.path}
	start := p.cur().Span.Start

	mod.Annotations = p.parseAnnotations()

	if _, ok := p.expectKeyword("module"); !ok {
		p.syncToTopLevel()
	}
	name := p.parseDottedName()
	mod.Name = name

	brace := false
	if p.isSymbol("=") {
		p.advance()
	}
	if p.isSymbol("{") {
		brace = true
		p.advance()
	}

	if p.isKeyword("export") {
		p.advance()
		mod.Exports = p.parseExportList()
	}

	for p.isKeyword("use") {
		mod.Uses = append(mod.Uses, p.parseUseDecl())
	}

	for !p.atEOF() {
		if brace && p.isSymbol("}") {
			p.advance()
			break
		}
		if p.atEOF() {
			break
		}
		item, ok := p.parseModuleItem()
		if ok {
			mod.Items = append(mod.Items, item)
		} else {
			p.syncToTopLevel()
		}
	}

	mod.Span = diag.Span{Start: start, End: p.lastEnd()}
	return mod
}

func (p *Parser) lastEnd() diag.Position {
	if p.pos == 0 {
		return diag.Position{Line: 1, Column: 1}
	}
	idx := p.pos - 1
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	if idx < 0 {
		return diag.Position{Line: 1, Column: 1}
	}
	return p.tokens[idx].Span.End
}

func (p *Parser) parseAnnotations() []ast.SpannedName {
	var out []ast.SpannedName
	for p.isSymbol("@") {
		at := p.advance()
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		// Annotations on the module header carry no call-like args in this
		// position (e.g. `@no_prelude`); decorator args are parsed at def
		// sites in parseDecorators.
		if p.isSymbol("(") {
			depth := 0
			for !p.atEOF() {
				if p.isSymbol("(") {
					depth++
				}
				if p.isSymbol(")") {
					depth--
					p.advance()
					if depth == 0 {
						break
					}
					continue
				}
				p.advance()
			}
		}
		out = append(out, ast.SpannedName{Name: name.Name, Span: diag.Span{Start: at.Span.Start, End: name.Span.End}})
	}
	return out
}

func (p *Parser) parseDottedName() ast.SpannedName {
	first, ok := p.expectIdent()
	if !ok {
		return first
	}
	var sb strings.Builder
	sb.WriteString(first.Name)
	end := first.Span.End
	for p.isSymbol(".") {
		p.advance()
		next, ok := p.expectIdent()
		if !ok {
			break
		}
		sb.WriteString(".")
		sb.WriteString(next.Name)
		end = next.Span.End
	}
	return ast.SpannedName{Name: sb.String(), Span: diag.Span{Start: first.Span.Start, End: end}}
}

func (p *Parser) parseExportList() []ast.SpannedName {
	var out []ast.SpannedName
	if _, ok := p.expectSymbol("("); !ok {
		return out
	}
	for !p.isSymbol(")") && !p.atEOF() {
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		out = append(out, name)
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol(")")
	return out
}

func (p *Parser) parseUseDecl() ast.UseDecl {
	start := p.advance().Span.Start // 'use'
	module := p.parseDottedName()
	decl := ast.UseDecl{Module: module}
	if p.isKeyword("hiding") {
		p.advance()
		decl.Items = p.parseParenNameList()
		decl.Wildcard = true
	} else if p.isSymbol("(") {
		decl.Items = p.parseParenNameList()
	} else if p.isSymbol("*") {
		p.advance()
		decl.Wildcard = true
	}
	if p.isKeyword("as") {
		p.advance()
		p.expectIdent()
	}
	decl.Span = diag.Span{Start: start, End: p.lastEnd()}
	return decl
}

func (p *Parser) parseParenNameList() []ast.SpannedName {
	var out []ast.SpannedName
	if _, ok := p.expectSymbol("("); !ok {
		return out
	}
	for !p.isSymbol(")") && !p.atEOF() {
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		out = append(out, name)
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol(")")
	return out
}

// parseModuleItem dispatches on the current token to the right item
// parser. Plain definitions and type signatures share the `name` prefix
// and are disambiguated by whether `:` or `(` params / `=` follows.
func (p *Parser) parseModuleItem() (ast.ModuleItem, bool) {
	decorators := p.parseDecorators()

	switch {
	case p.isKeyword("type"):
		return p.parseTypeDeclOrAlias()
	case p.isKeyword("class"):
		return p.parseClassDecl()
	case p.isKeyword("instance"):
		return p.parseInstanceDecl()
	case p.isKeyword("domain"):
		return p.parseDomainDecl()
	case p.isIdent():
		return p.parseDefOrSig(decorators)
	default:
		p.errorHere("expected a declaration")
		return ast.ModuleItem{}, false
	}
}

func (p *Parser) parseDecorators() []ast.Decorator {
	var out []ast.Decorator
	for p.isSymbol("@") {
		at := p.advance()
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		dec := ast.Decorator{Name: name}
		if p.isSymbol("(") {
			p.advance()
			for !p.isSymbol(")") && !p.atEOF() {
				if p.cur().Kind == lexer.String {
					dec.Args = append(dec.Args, p.advance().Text)
				} else if p.isIdent() {
					dec.Args = append(dec.Args, p.advance().Text)
				} else {
					p.advance()
				}
				if p.isSymbol(",") {
					p.advance()
				}
			}
			p.expectSymbol(")")
		} else if p.cur().Kind == lexer.String {
			dec.Args = append(dec.Args, p.advance().Text)
		}
		dec.Span = diag.Span{Start: at.Span.Start, End: p.lastEnd()}
		out = append(out, dec)
	}
	return out
}

func (p *Parser) parseDefOrSig(decorators []ast.Decorator) (ast.ModuleItem, bool) {
	name, ok := p.expectIdent()
	if !ok {
		return ast.ModuleItem{}, false
	}
	if p.isSymbol(":") {
		p.advance()
		ty := p.parseType()
		sig := &ast.TypeSig{Decorators: decorators, Name: name, Type: ty, Span: diag.Span{Start: name.Span.Start, End: p.lastEnd()}}
		return ast.ModuleItem{TypeSig: sig}, true
	}
	var params []ast.Pattern
	for !p.isSymbol("=") && !p.atEOF() {
		params = append(params, p.parseAtomPattern())
	}
	if _, ok := p.expectSymbol("="); !ok {
		return ast.ModuleItem{}, false
	}
	body := p.parseExpr()
	def := &ast.Def{Decorators: decorators, Name: name, Params: params, Expr: body, Span: diag.Span{Start: name.Span.Start, End: p.lastEnd()}}
	return ast.ModuleItem{Def: def}, true
}

func (p *Parser) parseTypeDeclOrAlias() (ast.ModuleItem, bool) {
	start := p.advance().Span.Start // 'type'
	name, ok := p.expectIdent()
	if !ok {
		return ast.ModuleItem{}, false
	}
	var params []ast.SpannedName
	for p.isIdent() {
		n, _ := p.expectIdent()
		params = append(params, n)
	}
	if _, ok := p.expectSymbol("="); !ok {
		return ast.ModuleItem{}, false
	}
	// Heuristic matching the original grammar: a type alias aliases a
	// single type expression; an algebraic type lists `Ctor args | ...`
	// where the first token after `=` is an uppercase constructor name
	// and a top-level `|` follows on the same line; a lone constructor
	// name without `|` is read as an alias.
	if looksLikeCtorList(p) {
		var ctors []ast.TypeCtor
		for {
			ctorName, ok := p.expectIdent()
			if !ok {
				break
			}
			var args []ast.TypeExpr
			for p.peekRaw(0).Kind != lexer.Newline && !p.isSymbol("|") && !p.atSigDone() {
				args = append(args, p.parseAtomType())
			}
			ctors = append(ctors, ast.TypeCtor{Name: ctorName, Args: args, Span: diag.Span{Start: ctorName.Span.Start, End: p.lastEnd()}})
			if p.isSymbol("|") {
				p.advance()
				continue
			}
			break
		}
		decl := &ast.TypeDecl{Name: name, Params: params, Constructors: ctors, Span: diag.Span{Start: start, End: p.lastEnd()}}
		return ast.ModuleItem{TypeDecl: decl}, true
	}
	aliased := p.parseType()
	alias := &ast.TypeAlias{Name: name, Params: params, Aliased: aliased, Span: diag.Span{Start: start, End: p.lastEnd()}}
	return ast.ModuleItem{TypeAlias: alias}, true
}

// looksLikeCtorList distinguishes an algebraic type declaration
// (`type T = Ctor args | Ctor args | ...`) from a type alias
// (`type T = SomeType`). Both start with an uppercase name, so the
// deciding signal is whether a top-level `|` appears anywhere before the
// declaration ends; a lone uppercase name with no `|` is read as an
// alias to an existing type, which is the common case.
func looksLikeCtorList(p *Parser) bool {
	t := p.cur()
	if t.Kind != lexer.Ident || t.Text == "" || t.Text[0] < 'A' || t.Text[0] > 'Z' {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		tok := p.peekRaw(i)
		if tok.Kind == lexer.EOF || tok.Kind == lexer.Newline {
			return false
		}
		if tok.Kind == lexer.Symbol {
			switch tok.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return false
				}
				depth--
			case "|":
				if depth == 0 {
					return true
				}
			}
		}
	}
}

func (p *Parser) atSigDone() bool {
	return p.atEOF() || p.isSymbol("}") || (p.isIdent() && looksLikeNextTopLevelStart(p))
}

func looksLikeNextTopLevelStart(p *Parser) bool {
	return false
}

func (p *Parser) parseClassDecl() (ast.ModuleItem, bool) {
	start := p.advance().Span.Start // 'class'
	name, ok := p.expectIdent()
	if !ok {
		return ast.ModuleItem{}, false
	}
	var params []ast.TypeExpr
	if p.isSymbol("(") {
		p.advance()
		for !p.isSymbol(")") && !p.atEOF() {
			params = append(params, p.parseAtomType())
			if p.isSymbol(",") {
				p.advance()
			}
		}
		p.expectSymbol(")")
	}
	p.expectSymbol("=")
	members := p.parseClassBody()

	decl := &ast.ClassDecl{Name: name, Params: params, Members: members}
	if p.isKeyword("with") {
		p.advance()
		decl.Superclasses = p.parseClassHeadList()
	}
	decl.Span = diag.Span{Start: start, End: p.lastEnd()}
	return ast.ModuleItem{ClassDecl: decl}, true
}

func (p *Parser) parseClassBody() []ast.ClassMember {
	var members []ast.ClassMember
	if _, ok := p.expectSymbol("{"); !ok {
		return members
	}
	for !p.isSymbol("}") && !p.atEOF() {
		name, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		p.expectSymbol(":")
		ty := p.parseType()
		members = append(members, ast.ClassMember{Name: name, Type: ty, Span: diag.Span{Start: name.Span.Start, End: p.lastEnd()}})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return members
}

func (p *Parser) parseClassHeadList() []ast.ClassHead {
	var heads []ast.ClassHead
	for p.isIdent() {
		name, _ := p.expectIdent()
		var params []ast.TypeExpr
		for p.isIdent() && !p.isKeyword("with") {
			params = append(params, p.parseAtomType())
		}
		heads = append(heads, ast.ClassHead{Name: name, Params: params})
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return heads
}

func (p *Parser) parseInstanceDecl() (ast.ModuleItem, bool) {
	start := p.advance().Span.Start // 'instance'
	name, ok := p.expectIdent()
	if !ok {
		return ast.ModuleItem{}, false
	}
	var params []ast.TypeExpr
	for !p.isSymbol("=") && !p.isKeyword("with") && !p.atEOF() {
		params = append(params, p.parseAtomType())
	}
	p.expectSymbol("=")
	defs := p.parseDefBody()
	inst := &ast.InstanceDecl{Name: name, Params: params, Defs: defs}
	if p.isKeyword("with") {
		p.advance()
		inst.WithSuperDefs = p.parseDefBody()
	}
	inst.Span = diag.Span{Start: start, End: p.lastEnd()}
	return ast.ModuleItem{InstanceDecl: inst}, true
}

func (p *Parser) parseDefBody() []ast.Def {
	var defs []ast.Def
	if _, ok := p.expectSymbol("{"); !ok {
		return defs
	}
	for !p.isSymbol("}") && !p.atEOF() {
		name, ok := p.expectIdent()
		if !ok {
			p.advance()
			continue
		}
		var params []ast.Pattern
		for !p.isSymbol("=") && !p.atEOF() {
			params = append(params, p.parseAtomPattern())
		}
		p.expectSymbol("=")
		body := p.parseExpr()
		defs = append(defs, ast.Def{Name: name, Params: params, Expr: body, Span: diag.Span{Start: name.Span.Start, End: p.lastEnd()}})
		if p.isSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("}")
	return defs
}

func (p *Parser) parseDomainDecl() (ast.ModuleItem, bool) {
	start := p.advance().Span.Start // 'domain'
	name, ok := p.expectIdent()
	if !ok {
		return ast.ModuleItem{}, false
	}
	p.expectKeyword("over")
	over := p.parseAtomType()
	p.expectSymbol("=")
	var items []ast.DomainItem
	if _, ok := p.expectSymbol("{"); ok {
		for !p.isSymbol("}") && !p.atEOF() {
			if p.isKeyword("type") {
				item, ok := p.parseTypeDeclOrAlias()
				if ok && item.TypeDecl != nil {
					items = append(items, ast.DomainItem{TypeAlias: item.TypeDecl})
				}
				continue
			}
			nameTok, ok := p.domainMemberName()
			if !ok {
				p.advance()
				continue
			}
			if p.isSymbol(":") {
				p.advance()
				ty := p.parseType()
				items = append(items, ast.DomainItem{TypeSig: &ast.TypeSig{Name: nameTok, Type: ty}})
				continue
			}
			var params []ast.Pattern
			for !p.isSymbol("=") && !p.atEOF() {
				params = append(params, p.parseAtomPattern())
			}
			p.expectSymbol("=")
			body := p.parseExpr()
			def := ast.Def{Name: nameTok, Params: params, Expr: body}
			if isLiteralSuffix(nameTok.Name) {
				items = append(items, ast.DomainItem{LiteralDef: &def})
			} else {
				items = append(items, ast.DomainItem{Def: &def})
			}
			if p.isSymbol(",") {
				p.advance()
			}
		}
		p.expectSymbol("}")
	}
	decl := &ast.DomainDecl{Name: name, Over: over, Items: items, Span: diag.Span{Start: start, End: p.lastEnd()}}
	return ast.ModuleItem{DomainDecl: decl}, true
}

// domainMemberName reads a domain body member's name, which is either an
// ordinary identifier (a literal-suffix binding like `w`) or a reserved
// operator symbol being overloaded for the domain's host type (`+`, `-`,
// `*`, `/`, `++`).
func (p *Parser) domainMemberName() (ast.SpannedName, bool) {
	if p.isIdent() {
		return p.expectIdent()
	}
	t := p.cur()
	if t.Kind == lexer.Symbol {
		switch t.Text {
		case "+", "-", "*", "/", "++":
			p.advance()
			return ast.SpannedName{Name: t.Text, Span: t.Span}, true
		}
	}
	p.errorHere("expected a domain member name or operator")
	return ast.SpannedName{}, false
}

// isLiteralSuffix reports whether a domain-body name looks like a numeric
// literal suffix binding (e.g. `w`, `ms`) rather than an operator overload
// — any non-empty name other than the operators +, -, *, / and ++.
func isLiteralSuffix(name string) bool {
	if name == "" {
		return false
	}
	for _, op := range []string{"+", "-", "*", "/", "++"} {
		if name == op {
			return false
		}
	}
	return true
}
