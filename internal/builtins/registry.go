// Package builtins implements the nineteen typed namespace records spec
// §4.9/§6 describe: text, regex, math, calendar, color, crypto, graph,
// linalg, signal, database, log, sockets, streams, httpServer, ui,
// channel, concurrent, file, console. Each namespace is a *eval.Record of
// *eval.Builtin values; Register builds the whole set once per process
// and the interpreter installs it as Interp.Builtins (spec §9 "global
// builtin registry ... process-wide read-only state").
//
// Grounded on the original compiler's internal/eval/builtins*.go (builtins as
// curried, arity-checked native functions) and internal/effects (the
// capability-gated operations that back `file`/`console`/`sockets`).
package builtins

import (
	"fmt"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// fn builds an arity-N *eval.Builtin value. Builtins never receive an
// *effects.EffContext through Impl's signature (eval.Builtin.Impl is a
// plain func([]Value) (Value, error) — spec §4.7's curried Apply has no
// room for a side channel), so effectful namespaces close over ctx at
// Register time instead.

func fn(name string, arity int, impl func(args []eval.Value) (eval.Value, error)) *eval.Builtin {
	return &eval.Builtin{Name: name, Arity: arity, Impl: impl}
}

// namespace is a small builder so each namespace file can declare its
// fields as a flat list instead of repeating `.With(name, fn(...))`.
type namespace struct {
	rec *eval.Record
}

func newNamespace() *namespace {
	return &namespace{rec: eval.NewRecord()}
}

func (n *namespace) add(name string, arity int, impl func(args []eval.Value) (eval.Value, error)) *namespace {
	n.rec = n.rec.With(name, fn(name, arity, impl))
	return n
}

func (n *namespace) addValue(name string, v eval.Value) *namespace {
	n.rec = n.rec.With(name, v)
	return n
}

func (n *namespace) build() *eval.Record { return n.rec }

// Register builds every builtin namespace record. effCtx carries the
// capability grants for the running program (spec §7 "capability model");
// namespaces backed by internal/effects (file, console, sockets) check it
// on every call through effects.Call, exactly like the original compiler's
// capability-gated effect registry. interp is needed by namespaces that
// must drain Effect values themselves (concurrent.par/scope, ui.live's
// event loop).
func Register(interp *eval.Interp, effCtx *effects.EffContext) map[string]*eval.Record {
	return map[string]*eval.Record{
		"text":       textNamespace().build(),
		"regex":      regexNamespace().build(),
		"math":       mathNamespace().build(),
		"calendar":   calendarNamespace().build(),
		"color":      colorNamespace().build(),
		"crypto":     cryptoNamespace().build(),
		"graph":      graphNamespace().build(),
		"linalg":     linalgNamespace().build(),
		"signal":     signalNamespace().build(),
		"database":   databaseNamespace().build(),
		"log":        logNamespace().build(),
		"sockets":    socketsNamespace(effCtx).build(),
		"streams":    streamsNamespace(effCtx).build(),
		"httpServer": httpServerNamespace(interp, effCtx).build(),
		"ui":         uiNamespace(interp, effCtx).build(),
		"channel":    channelNamespace().build(),
		"concurrent": concurrentNamespace(interp).build(),
		"file":       fileNamespace(effCtx).build(),
		"console":    consoleNamespace(effCtx).build(),
	}
}

// argError formats a uniform arity/type mismatch message; every namespace
// function uses it so runtime errors read consistently regardless of
// which namespace raised them.
func argError(fname string, want string, got eval.Value) error {
	return fmt.Errorf("%s: expected %s, got %s", fname, want, got.Type())
}

func wantText(fname string, v eval.Value) (string, error) {
	t, ok := v.(eval.Text)
	if !ok {
		return "", argError(fname, "Text", v)
	}
	return t.Value, nil
}

func wantInt(fname string, v eval.Value) (int64, error) {
	i, ok := v.(eval.Int)
	if !ok {
		return 0, argError(fname, "Int", v)
	}
	return i.Value, nil
}

func wantFloat(fname string, v eval.Value) (float64, error) {
	switch n := v.(type) {
	case eval.Float:
		return n.Value, nil
	case eval.Int:
		return float64(n.Value), nil
	}
	return 0, argError(fname, "Float", v)
}

func wantBool(fname string, v eval.Value) (bool, error) {
	b, ok := v.(eval.Bool)
	if !ok {
		return false, argError(fname, "Bool", v)
	}
	return b.Value, nil
}

func wantList(fname string, v eval.Value) (*eval.List, error) {
	l, ok := v.(*eval.List)
	if !ok {
		return nil, argError(fname, "List", v)
	}
	return l, nil
}

func wantRecord(fname string, v eval.Value) (*eval.Record, error) {
	r, ok := v.(*eval.Record)
	if !ok {
		return nil, argError(fname, "Record", v)
	}
	return r, nil
}

// some/none build the Option constructors every namespace needs for
// fallible lookups (indexOf returning -1 in the original compiler's style would be
// un-idiomatic here; AIVI prefers Option per spec §4 ADTs).
func some(v eval.Value) eval.Value { return &eval.Constructor{TypeName: "Option", Name: "Some", Args: []eval.Value{v}} }
func none() eval.Value             { return &eval.Constructor{TypeName: "Option", Name: "None"} }

func ok(v eval.Value) eval.Value  { return &eval.Constructor{TypeName: "Result", Name: "Ok", Args: []eval.Value{v}} }
func errV(v eval.Value) eval.Value {
	return &eval.Constructor{TypeName: "Result", Name: "Err", Args: []eval.Value{v}}
}
