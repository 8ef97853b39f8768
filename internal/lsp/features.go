package lsp

import (
	"strings"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
)

// inSpan reports whether pos falls within span, inclusive.
func inSpan(span diag.Span, pos diag.Position) bool {
	if pos.Line < span.Start.Line || pos.Line > span.End.Line {
		return false
	}
	if pos.Line == span.Start.Line && pos.Column < span.Start.Column {
		return false
	}
	if pos.Line == span.End.Line && pos.Column > span.End.Column {
		return false
	}
	return true
}

// HoverResult is the identifier (or symbolic operator) under the cursor,
// together with the declaration span it resolved to, if any.
type HoverResult struct {
	Name     string
	Kind     string // "def", "type", "module", ""
	DeclSpan diag.Span
	Found    bool
}

// Hover resolves the token under pos in doc's cached text against the
// document's own declarations and those of the other indexed documents.
func (w *WorkspaceIndex) Hover(doc *Document, pos diag.Position) HoverResult {
	tok := tokenAt(doc.Tokens, pos)
	if tok == nil {
		return HoverResult{}
	}
	name := tok.Text

	if doc.Module != nil {
		for _, item := range doc.Module.Items {
			if item.Def != nil && item.Def.Name.Name == name {
				return HoverResult{Name: name, Kind: "def", DeclSpan: item.Def.Name.Span, Found: true}
			}
			if item.TypeSig != nil && item.TypeSig.Name.Name == name {
				return HoverResult{Name: name, Kind: "def", DeclSpan: item.TypeSig.Name.Span, Found: true}
			}
			if item.TypeDecl != nil && item.TypeDecl.Name.Name == name {
				return HoverResult{Name: name, Kind: "type", DeclSpan: item.TypeDecl.Name.Span, Found: true}
			}
		}
		for _, use := range doc.Module.Uses {
			if use.Module.Name == name {
				return HoverResult{Name: name, Kind: "module", DeclSpan: use.Module.Span, Found: true}
			}
		}
	}

	for _, other := range w.Docs {
		if other == doc || other.Module == nil {
			continue
		}
		for _, item := range other.Module.Items {
			if item.Def != nil && item.Def.Name.Name == name && exported(other.Module, name) {
				return HoverResult{Name: name, Kind: "def", DeclSpan: item.Def.Name.Span, Found: true}
			}
		}
	}
	return HoverResult{Name: name}
}

func exported(mod *ast.Module, name string) bool {
	for _, e := range mod.Exports {
		if e.Name == name {
			return true
		}
	}
	return false
}

// tokenAt returns the token whose span contains pos, including symbolic
// operator tokens like `++` (lexed as Symbol kind).
func tokenAt(tokens []lexer.Token, pos diag.Position) *lexer.Token {
	for i := range tokens {
		t := &tokens[i]
		if inSpan(t.Span, pos) {
			return t
		}
	}
	return nil
}

// References collects every span in doc and its used modules where name
// appears as an identifier or symbolic-operator token.
func (w *WorkspaceIndex) References(doc *Document, name string) []diag.Span {
	var spans []diag.Span
	collect := func(d *Document) {
		for _, t := range d.Tokens {
			if (t.Kind == lexer.Ident || t.Kind == lexer.Symbol) && t.Text == name {
				spans = append(spans, t.Span)
			}
		}
	}
	collect(doc)
	if doc.Module == nil {
		return spans
	}
	for _, use := range doc.Module.Uses {
		for path, d := range w.Docs {
			if strings.HasSuffix(path, strings.ReplaceAll(use.Module.Name, ".", "/")+".aivi") {
				collect(d)
			}
		}
	}
	return spans
}

// TokenClass is the semantic-highlighting bucket a token is classified
// into; numeric values are stable and match the order a textmate/LSP
// semantic-token legend would declare them in.
type TokenClass int

const (
	ClassNone TokenClass = iota
	ClassKeyword
	ClassIdent
	ClassNumber
	ClassString
	ClassOperator
	ClassComment
	ClassSigil
	ClassDateTime
)

// ClassifiedToken pairs a lexer token with its semantic class. FromString
// marks tokens found inside a string interpolation; their spans are already
// shifted to positions in the original source.
type ClassifiedToken struct {
	Token      lexer.Token
	Class      TokenClass
	FromString bool
}

// SemanticTokens classifies every token in text, re-lexing the contents
// of each `{...}` interpolation found inside String tokens with the
// interpolation's start position added to every resulting span so
// offsets stay correct relative to the whole file.
func SemanticTokens(text string) []ClassifiedToken {
	tokens, _ := lexer.Lex(text)
	tokens = lexer.FilterTokens(tokens)

	var out []ClassifiedToken
	for _, t := range tokens {
		out = append(out, ClassifiedToken{Token: t, Class: classify(t)})
		if t.Kind == lexer.String {
			out = append(out, classifyInterpolations(t)...)
		}
	}
	return out
}

func classify(t lexer.Token) TokenClass {
	switch t.Kind {
	case lexer.Ident:
		if lexer.Keywords[t.Text] {
			return ClassKeyword
		}
		return ClassIdent
	case lexer.Number:
		return ClassNumber
	case lexer.String:
		return ClassString
	case lexer.Symbol:
		return ClassOperator
	case lexer.Comment:
		return ClassComment
	case lexer.Sigil:
		return ClassSigil
	case lexer.DateTime:
		return ClassDateTime
	default:
		return ClassNone
	}
}

// classifyInterpolations scans a String token's text for `{expr}` runs
// and re-lexes each expr substring, offsetting spans by the run's
// position within the original file so tokens inside interpolations
// highlight correctly.
func classifyInterpolations(str lexer.Token) []ClassifiedToken {
	var out []ClassifiedToken
	text := str.Text
	line, col := str.Span.Start.Line, str.Span.Start.Column
	i := 0
	for i < len(text) {
		if text[i] == '{' {
			depth := 1
			start := i + 1
			j := start
			for j < len(text) && depth > 0 {
				switch text[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			sub := text[start:j]
			subTokens, _ := lexer.Lex(sub)
			offsetLine, offsetCol := lineColAt(text[:start], line, col)
			for _, st := range subTokens {
				shifted := st
				shifted.Span = shiftSpan(st.Span, offsetLine, offsetCol)
				out = append(out, ClassifiedToken{Token: shifted, Class: classify(st), FromString: true})
			}
			i = j + 1
			continue
		}
		i++
	}
	return out
}

func lineColAt(prefix string, startLine, startCol int) (int, int) {
	line, col := startLine, startCol
	for _, r := range prefix {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func shiftSpan(s diag.Span, lineOff, colOff int) diag.Span {
	shift := func(p diag.Position) diag.Position {
		if p.Line == 1 {
			return diag.Position{Line: lineOff, Column: p.Column + colOff - 1}
		}
		return diag.Position{Line: p.Line + lineOff - 1, Column: p.Column}
	}
	return diag.Span{Start: shift(s.Start), End: shift(s.End)}
}

// Format renders text into a canonical layout: one statement per line,
// consistent spacing around operators and after commas, and brace bodies
// indented two spaces per nesting depth. It is a pure text -> text
// function and is idempotent: Format(Format(s)) == Format(s).
func Format(text string) string {
	tokens, _ := lexer.Lex(text)
	tokens = lexer.FilterTokens(tokens)

	var b strings.Builder
	depth := 0
	needSpace := false
	atLineStart := true
	for i, t := range tokens {
		switch t.Text {
		case "}":
			depth--
		}
		if t.Kind == lexer.Newline {
			b.WriteString("\n")
			needSpace = false
			atLineStart = true
			continue
		}
		if atLineStart && depth > 0 {
			b.WriteString(strings.Repeat("  ", depth))
		} else if needSpace && !noSpaceBefore(t.Text) {
			b.WriteString(" ")
		}
		atLineStart = false
		b.WriteString(t.Text)
		needSpace = !noSpaceAfter(t.Text)
		switch t.Text {
		case "{":
			depth++
		}
		_ = i
	}
	_ = depth
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func noSpaceBefore(s string) bool {
	switch s {
	case ",", ")", "]", ".", ";":
		return true
	}
	return false
}

func noSpaceAfter(s string) bool {
	switch s {
	case "(", "[", ".":
		return true
	}
	return false
}
