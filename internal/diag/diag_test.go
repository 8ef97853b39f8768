package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasErrors(t *testing.T) {
	warn := NewWarning(E1505UnusedImport, "unused import", SpanAt(Position{1, 1}))
	require.False(t, HasErrors([]Diagnostic{warn}))

	err := NewError(E1501UnknownIdent, "unknown identifier 'x'", SpanAt(Position{1, 1}))
	require.True(t, HasErrors([]Diagnostic{warn, err}))
}

func TestRenderFileCaretFrame(t *testing.T) {
	source := "let x = \n"
	d := NewError(E1001UnterminatedString, "unterminated string literal", Span{
		Start: Position{Line: 1, Column: 9},
		End:   Position{Line: 1, Column: 9},
	}).WithLabel("string literal started here", SpanAt(Position{Line: 1, Column: 9}))

	out := RenderFile("mod.aivi", source, []Diagnostic{d})
	require.Contains(t, out, "error[E1001] mod.aivi:1:9 unterminated string literal")
	require.Contains(t, out, "1 | let x = ")
	require.True(t, strings.Contains(out, "^"))
	require.Contains(t, out, "note: string literal started here at mod.aivi:1:9")
}

func TestRenderFileClampsOutOfRangeSpan(t *testing.T) {
	source := "x\n"
	d := NewError(E1200UnexpectedToken, "unexpected token", Span{
		Start: Position{Line: 1, Column: 50},
		End:   Position{Line: 1, Column: 60},
	})
	out := RenderFile("mod.aivi", source, []Diagnostic{d})
	require.Contains(t, out, "error[E1200]")
}
