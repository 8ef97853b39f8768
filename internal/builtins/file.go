package builtins

import (
	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// file exposes the FS capability (internal/effects) as the `file`
// namespace spec §4.9 names — readFile/writeFile/exists, gated on the
// "FS" capability exactly like the original compiler's effect registry.
func fileNamespace(ctx *effects.EffContext) *namespace {
	n := newNamespace()
	n.add("readFile", 1, effCall(ctx, "FS", "readFile"))
	n.add("writeFile", 2, effCall(ctx, "FS", "writeFile"))
	n.add("exists", 1, effCall(ctx, "FS", "exists"))
	return n
}

// effCall adapts an internal/effects.Call dispatch into a builtin Impl,
// closing over the program's effect context.
func effCall(ctx *effects.EffContext, effectName, opName string) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		return effects.Call(ctx, effectName, opName, args)
	}
}
