package builtins

import (
	"github.com/sunholo/aivi/internal/effects"
)

// console exposes the IO capability as the `console` namespace spec
// §4.9 names — print/println/readLine, gated on the "IO" capability.
func consoleNamespace(ctx *effects.EffContext) *namespace {
	n := newNamespace()
	n.add("print", 1, effCall(ctx, "IO", "print"))
	n.add("println", 1, effCall(ctx, "IO", "println"))
	n.add("readLine", 0, effCall(ctx, "IO", "readLine"))
	return n
}
