package lexer

import "github.com/sunholo/aivi/internal/diag"

// Kind tags a Token. AIVI tokens are coarse — the parser, not the lexer,
// distinguishes keywords from identifiers.
type Kind int

const (
	Ident Kind = iota
	Number
	String
	Sigil
	DateTime
	Symbol
	Comment
	Whitespace
	Newline
	Unknown
	EOF
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Sigil:
		return "sigil"
	case DateTime:
		return "date-time"
	case Symbol:
		return "symbol"
	case Comment:
		return "comment"
	case Whitespace:
		return "whitespace"
	case Newline:
		return "newline"
	case Unknown:
		return "unknown"
	case EOF:
		return "eof"
	}
	return "?"
}

// Token is one lexical unit: a kind tag, its literal text, and its span.
// Strings carry escape sequences un-unescaped; interpolation braces are
// resolved later by the parser, not the lexer.
type Token struct {
	Kind Kind
	Text string
	Span diag.Span
}

// SigilParts splits a Sigil token's text into tag, body and flags, e.g.
// `~k"app.greeting"` -> ("k", "app.greeting", ""). Assumes Kind == Sigil.
func (t Token) SigilParts() (tag, body, flags string) {
	i := 0
	for i < len(t.Text) && t.Text[i] != '"' {
		i++
	}
	tag = t.Text[1:i]
	j := i + 1
	for j < len(t.Text) && t.Text[j] != '"' {
		if t.Text[j] == '\\' && j+1 < len(t.Text) {
			j += 2
			continue
		}
		j++
	}
	if j < len(t.Text) {
		body = t.Text[i+1 : j]
		flags = t.Text[j+1:]
	} else {
		body = t.Text[i+1:]
	}
	return tag, body, flags
}

// Reserved multi-character symbols, longest first, per spec §6.
var multiCharSymbols = []string{
	"...", "=>", "->", "<-", "<|", "|>", "==", "!=", "<=", ">=",
	"&&", "||", "::", "++", "??", "<<", ">>", ":=", "..",
}

var singleCharSymbols = map[rune]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	',': true, '.': true, ':': true, ';': true, '=': true, '+': true,
	'-': true, '*': true, '/': true, '|': true, '&': true, '!': true,
	'<': true, '>': true, '?': true, '@': true, '%': true, '~': true,
	'^': true,
}

// Keywords recognized by the parser. The lexer emits every keyword as an
// Ident token; this set lets the parser classify them without the lexer
// needing to know surface grammar.
var Keywords = map[string]bool{
	"do": true, "effect": true, "generate": true, "resource": true,
	"if": true, "then": true, "else": true, "when": true, "yield": true,
	"loop": true, "recurse": true, "pure": true, "module": true,
	"export": true, "use": true, "as": true, "hiding": true,
	"domain": true, "class": true, "instance": true, "type": true,
	"over": true, "patch": true,
}
