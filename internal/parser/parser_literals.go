package parser

import (
	"strconv"
	"strings"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

func (p *Parser) parseLiteral() ast.Literal {
	t := p.advance()
	switch t.Kind {
	case lexer.Number:
		return ast.NumberLit{Text: t.Text, Span: t.Span}
	case lexer.String:
		return ast.StringLit{Text: t.Text, Span: t.Span}
	case lexer.Sigil:
		tag, body, flags := t.SigilParts()
		return ast.SigilLit{Tag: tag, Body: body, Flags: flags, Span: t.Span}
	case lexer.DateTime:
		return ast.DateTimeLit{Text: t.Text, Span: t.Span}
	case lexer.Ident:
		if t.Text == "True" || t.Text == "False" {
			return ast.BoolLit{Value: t.Text == "True", Span: t.Span}
		}
	}
	return ast.StringLit{Text: t.Text, Span: t.Span}
}

// parseStringLiteralExpr converts a raw `"…"` token into either a plain
// string literal expression or, when it contains `{…}` interpolation
// spans, a TextInterpolate node whose expression parts are re-lexed and
// re-parsed from the original source with an offset map so their spans
// point back into the outer source (spec §4.2).
func (p *Parser) parseStringLiteralExpr(t lexer.Token) ast.Expr {
	inner := t.Text
	if len(inner) >= 2 && strings.HasPrefix(inner, `"`) && strings.HasSuffix(inner, `"`) {
		inner = inner[1 : len(inner)-1]
	}
	if !hasUnescapedBrace(inner) {
		return ast.LiteralExpr{Lit: ast.StringLit{Text: t.Text, Span: t.Span}}
	}

	parts := splitInterpolation(inner)
	var textParts []ast.TextPart
	// column offset: +1 for the opening quote.
	col := t.Span.Start.Column + 1
	line := t.Span.Start.Line
	for _, part := range parts {
		partStart := diag.Position{Line: line, Column: col}
		if !part.isExpr {
			unescaped := unescapeBraces(part.text)
			textParts = append(textParts, ast.TextPart{
				Literal: unescaped,
				Span:    diag.Span{Start: partStart, End: partStart},
			})
			col += len([]rune(part.text))
			continue
		}
		exprSrc := part.text
		exprStart := diag.Position{Line: line, Column: col + 1} // past '{'
		subExpr := parseOffsetExpr(exprSrc, exprStart)
		textParts = append(textParts, ast.TextPart{
			IsExpr: true,
			Expr:   subExpr,
			Span:   diag.Span{Start: partStart, End: partStart},
		})
		col += len([]rune(part.text)) + 2 // '{' + '}'
	}
	return ast.TextInterpolate{Parts: textParts, Span: t.Span}
}

type interpPart struct {
	text   string
	isExpr bool
}

// splitInterpolation walks the unescaped body of a text literal, splitting
// it into literal-text chunks and `{expr}` chunks. `\{` and `\}` escape a
// literal brace and are left for unescapeBraces to resolve. Nested braces
// and quoted substrings inside an interpolation are balanced.
func splitInterpolation(body string) []interpPart {
	var parts []interpPart
	var buf strings.Builder
	runes := []rune(body)
	i := 0
	for i < len(runes) {
		if runes[i] == '\\' && i+1 < len(runes) && (runes[i+1] == '{' || runes[i+1] == '}') {
			buf.WriteRune(runes[i])
			buf.WriteRune(runes[i+1])
			i += 2
			continue
		}
		if runes[i] == '{' {
			if buf.Len() > 0 {
				parts = append(parts, interpPart{text: buf.String()})
				buf.Reset()
			}
			depth := 1
			j := i + 1
			inString := false
			for j < len(runes) && depth > 0 {
				switch runes[j] {
				case '"':
					inString = !inString
				case '{':
					if !inString {
						depth++
					}
				case '}':
					if !inString {
						depth--
						if depth == 0 {
							break
						}
					}
				}
				if depth == 0 {
					break
				}
				j++
			}
			exprText := string(runes[i+1 : j])
			parts = append(parts, interpPart{text: exprText, isExpr: true})
			i = j + 1
			continue
		}
		buf.WriteRune(runes[i])
		i++
	}
	if buf.Len() > 0 {
		parts = append(parts, interpPart{text: buf.String()})
	}
	return parts
}

func hasUnescapedBrace(body string) bool {
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			continue
		}
		if runes[i] == '{' {
			return true
		}
	}
	return false
}

func unescapeBraces(s string) string {
	s = strings.ReplaceAll(s, `\{`, "{")
	s = strings.ReplaceAll(s, `\}`, "}")
	return s
}

// parseOffsetExpr re-lexes and re-parses an expression slice extracted
// from inside a string literal, shifting resulting spans so they read as
// if the slice began at offsetStart in the outer source.
func parseOffsetExpr(src string, offsetStart diag.Position) ast.Expr {
	sub := &Parser{}
	tokens, _ := lexer.Lex(src)
	filtered := lexer.FilterTokens(tokens)
	for i := range filtered {
		filtered[i].Span = shiftSpan(filtered[i].Span, offsetStart)
	}
	sub.tokens = filtered
	return sub.parseExpr()
}

func shiftSpan(s diag.Span, offset diag.Position) diag.Span {
	shift := func(p diag.Position) diag.Position {
		if p.Line == 1 {
			return diag.Position{Line: offset.Line, Column: offset.Column + p.Column - 1}
		}
		return diag.Position{Line: offset.Line + p.Line - 1, Column: p.Column}
	}
	return diag.Span{Start: shift(s.Start), End: shift(s.End)}
}

func parseIntText(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
