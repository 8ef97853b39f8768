// Package lexer turns AIVI source text into a token stream plus
// diagnostics, and audits bracket balance over that stream.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sunholo/aivi/internal/diag"
)

// Lexer performs a streaming rune-at-a-time scan, tracking 1-based
// line/column like the original compiler's internal/lexer.Lexer.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	ch, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.ch = ch
	l.column++
	if ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.readPosition
	var ch rune
	for i := 0; i <= offset; i++ {
		if idx >= len(l.input) {
			return 0
		}
		var size int
		ch, size = utf8.DecodeRuneInString(l.input[idx:])
		idx += size
	}
	return ch
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentContinue(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

// Lex tokenizes the full input, returning every token (including
// whitespace/comments) plus diagnostics for unexpected characters,
// unterminated strings, and unbalanced brackets. Concatenating every
// returned token's Text reproduces input byte-for-byte (spec §8 round-trip
// property), excluding the synthetic EOF token which carries empty text.
func Lex(input string) ([]Token, []diag.Diagnostic) {
	l := New(input)
	var tokens []Token
	var diags []diag.Diagnostic

	for l.ch != 0 {
		start := diag.Position{Line: l.line, Column: l.column}

		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			tokens = append(tokens, l.readWhitespace(start))
		case l.ch == '/' && l.peekChar() == '/':
			tokens = append(tokens, l.readLineComment(start))
		case l.ch == '-' && l.peekChar() == '-':
			tokens = append(tokens, l.readLineComment(start))
		case l.ch == '~' && isIdentStart(l.peekChar()):
			tok, ds := l.readSigil(start)
			tokens = append(tokens, tok)
			diags = append(diags, ds...)
		case l.ch == '"':
			tok, ds := l.readString(start)
			tokens = append(tokens, tok)
			diags = append(diags, ds...)
		case isIdentStart(l.ch):
			tokens = append(tokens, l.readIdentOrDateTime(start))
		case unicode.IsDigit(l.ch):
			tokens = append(tokens, l.readNumber(start))
		default:
			if sym, ok := l.matchSymbol(); ok {
				tokens = append(tokens, Token{Kind: Symbol, Text: sym, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(sym)))}})
			} else {
				diags = append(diags, diag.NewError(
					"E1000", "unexpected character '"+string(l.ch)+"'", diag.SpanAt(start)))
				tokens = append(tokens, Token{Kind: Unknown, Text: string(l.ch), Span: diag.SpanAt(start)})
				l.readChar()
			}
		}
	}

	diags = append(diags, checkBraces(tokens)...)
	return tokens, diags
}

func (l *Lexer) endPos(start diag.Position, runeLen int) diag.Position {
	if runeLen <= 0 {
		return start
	}
	return diag.Position{Line: start.Line, Column: start.Column + runeLen - 1}
}

func (l *Lexer) readWhitespace(start diag.Position) Token {
	var sb strings.Builder
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	kind := Whitespace
	if strings.Contains(text, "\n") {
		kind = Newline
	}
	return Token{Kind: kind, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}
}

func (l *Lexer) readLineComment(start diag.Position) Token {
	var sb strings.Builder
	for l.ch != 0 && l.ch != '\n' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	return Token{Kind: Comment, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}
}

func (l *Lexer) readIdentOrDateTime(start diag.Position) Token {
	var sb strings.Builder
	for isIdentContinue(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	// ISO-8601-looking date-time: IDENT(digits)-IDENT-IDENTTIDENT... is hard
	// to tell apart from plain idents at the character level, so date-time
	// literals are only recognized when they start with 4 digits (handled
	// in readNumber) — this branch is ident-only.
	text := sb.String()
	return Token{Kind: Ident, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}
}

func (l *Lexer) readNumber(start diag.Position) Token {
	var sb strings.Builder
	for unicode.IsDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	// ISO-8601-looking date-time literal: exactly 4 digits, '-', then a digit.
	if sb.Len() == 4 && l.ch == '-' && unicode.IsDigit(l.peekChar()) {
		return l.readDateTime(start, sb.String())
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for unicode.IsDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	text := sb.String()
	return Token{Kind: Number, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}
}

func (l *Lexer) readDateTime(start diag.Position, prefix string) Token {
	var sb strings.Builder
	sb.WriteString(prefix)
	isDateTimeChar := func(ch rune) bool {
		return unicode.IsDigit(ch) || ch == '-' || ch == ':' || ch == 'T' || ch == 'Z' || ch == '.' || ch == '+'
	}
	for isDateTimeChar(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	return Token{Kind: DateTime, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}
}

// readString reads a `"…"` literal with backslash escapes left un-unescaped
// and un-interpreted `{…}` interpolation spans (the parser splits them).
func (l *Lexer) readString(start diag.Position) (Token, []diag.Diagnostic) {
	var sb strings.Builder
	sb.WriteRune(l.ch) // opening quote
	l.readChar()
	closed := false
	for l.ch != 0 {
		if l.ch == '\\' && l.peekChar() != 0 {
			sb.WriteRune(l.ch)
			l.readChar()
			sb.WriteRune(l.ch)
			l.readChar()
			continue
		}
		if l.ch == '"' {
			sb.WriteRune(l.ch)
			l.readChar()
			closed = true
			break
		}
		if l.ch == '\n' {
			break
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	end := l.endPos(start, len([]rune(text)))
	tok := Token{Kind: String, Text: text, Span: diag.Span{Start: start, End: end}}
	if !closed {
		d := diag.NewError("E1001", "unterminated string literal", diag.Span{Start: start, End: end}).
			WithLabel("string literal started here", diag.SpanAt(start))
		return tok, []diag.Diagnostic{d}
	}
	return tok, nil
}

// readSigil reads `~tag"body"flags`.
func (l *Lexer) readSigil(start diag.Position) (Token, []diag.Diagnostic) {
	var sb strings.Builder
	sb.WriteRune(l.ch) // '~'
	l.readChar()
	for isIdentContinue(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch != '"' {
		text := sb.String()
		return Token{Kind: Sigil, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}, nil
	}
	strStart := diag.Position{Line: l.line, Column: l.column}
	strTok, diags := l.readString(strStart)
	sb.WriteString(strTok.Text)
	for isIdentContinue(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	return Token{Kind: Sigil, Text: text, Span: diag.Span{Start: start, End: l.endPos(start, len([]rune(text)))}}, diags
}

func (l *Lexer) matchSymbol() (string, bool) {
	for _, sym := range multiCharSymbols {
		n := len(sym)
		if n == 3 {
			if l.ch == rune(sym[0]) && l.peekChar() == rune(sym[1]) && l.peekAt(1) == rune(sym[2]) {
				l.readChar()
				l.readChar()
				l.readChar()
				return sym, true
			}
		}
	}
	for _, sym := range multiCharSymbols {
		if len(sym) != 2 {
			continue
		}
		if l.ch == rune(sym[0]) && l.peekChar() == rune(sym[1]) {
			l.readChar()
			l.readChar()
			return sym, true
		}
	}
	if singleCharSymbols[l.ch] {
		sym := string(l.ch)
		l.readChar()
		return sym, true
	}
	return "", false
}

// FilterTokens drops whitespace/comments, keeping the newline markers the
// parser relies on. This is the stream the parser actually consumes.
func FilterTokens(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		switch t.Kind {
		case Whitespace, Comment:
			continue
		case Newline:
			out = append(out, Token{Kind: Newline, Text: "\n", Span: t.Span})
		default:
			out = append(out, t)
		}
	}
	return out
}

func checkBraces(tokens []Token) []diag.Diagnostic {
	type open struct {
		text string
		span diag.Span
	}
	var stack []open
	var diags []diag.Diagnostic

	matches := func(o, c string) bool {
		return (o == "{" && c == "}") || (o == "(" && c == ")") || (o == "[" && c == "]")
	}

	for _, t := range tokens {
		if t.Kind != Symbol {
			continue
		}
		switch t.Text {
		case "{", "(", "[":
			stack = append(stack, open{t.Text, t.Span})
		case "}", ")", "]":
			if len(stack) == 0 {
				diags = append(diags, diag.NewError("E1002", "unmatched closing '"+t.Text+"'", t.Span))
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !matches(top.text, t.Text) {
				diags = append(diags, diag.NewError(
					"E1003", "mismatched '"+top.text+"' and '"+t.Text+"'", t.Span).
					WithLabel("opening here", top.span))
			}
		}
	}

	for _, o := range stack {
		diags = append(diags, diag.NewError("E1004", "unclosed '"+o.text+"'", o.span))
	}
	return diags
}
