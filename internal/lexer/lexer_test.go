package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	src := `greet name = "hi {name}"`
	tokens, diags := Lex(src)
	require.Empty(t, diags)
	filtered := FilterTokens(tokens)
	require.Equal(t, []Kind{Ident, Ident, Symbol, String}, kinds(filtered))
	require.Equal(t, `"hi {name}"`, filtered[3].Text)
}

func TestLexRoundTrip(t *testing.T) {
	src := "f x = x |> g  -- trailing\n  + 1\n"
	tokens, _ := Lex(src)
	var rebuilt string
	for _, tok := range tokens {
		rebuilt += tok.Text
	}
	require.Equal(t, src, rebuilt)
}

func TestLexUnterminatedString(t *testing.T) {
	_, diags := Lex(`x = "unterminated`)
	require.Len(t, diags, 1)
	require.Equal(t, "E1001", diags[0].Code)
}

func TestLexUnexpectedChar(t *testing.T) {
	_, diags := Lex("x = `")
	require.Len(t, diags, 1)
	require.Equal(t, "E1000", diags[0].Code)
}

func TestLexSigil(t *testing.T) {
	tokens, diags := Lex(`~k"app.greeting"`)
	require.Empty(t, diags)
	filtered := FilterTokens(tokens)
	require.Equal(t, Sigil, filtered[0].Kind)
	tag, body, flags := filtered[0].SigilParts()
	require.Equal(t, "k", tag)
	require.Equal(t, "app.greeting", body)
	require.Equal(t, "", flags)
}

func TestLexBracketBalance(t *testing.T) {
	_, diags := Lex("f x = (x + 1]")
	require.Len(t, diags, 1)
	require.Equal(t, "E1003", diags[0].Code)

	_, diags = Lex("f x = (x + 1")
	require.Len(t, diags, 1)
	require.Equal(t, "E1004", diags[0].Code)

	_, diags = Lex("f x = x + 1)")
	require.Len(t, diags, 1)
	require.Equal(t, "E1002", diags[0].Code)
}

func TestLexMultiCharSymbols(t *testing.T) {
	tokens, diags := Lex("x |> f <| y ... z ?? w")
	require.Empty(t, diags)
	filtered := FilterTokens(tokens)
	var symbols []string
	for _, tok := range filtered {
		if tok.Kind == Symbol {
			symbols = append(symbols, tok.Text)
		}
	}
	require.Equal(t, []string{"|>", "<|", "...", "??"}, symbols)
}

func TestLexDateTimeLiteral(t *testing.T) {
	tokens, diags := Lex("2026-07-30T10:00:00Z")
	require.Empty(t, diags)
	filtered := FilterTokens(tokens)
	require.Len(t, filtered, 1)
	require.Equal(t, DateTime, filtered[0].Kind)
}
