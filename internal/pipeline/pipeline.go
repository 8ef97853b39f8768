// Package pipeline wires the compiler passes into the single entry point
// cmd/aivi and internal/repl both drive: parse, resolve, infer types,
// desugar to HIR, lower to Kernel, and evaluate. Grounded on the original compiler's
// own internal/pipeline package (same Config/Result shape, same
// per-phase timing map), rebuilt for this repo's actual pass list:
// internal/resolver -> internal/types -> internal/hir -> internal/kernel
// -> internal/eval, instead of the original compiler's elaborate/core/link chain.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/builtins"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
	"github.com/sunholo/aivi/internal/hir"
	"github.com/sunholo/aivi/internal/kernel"
	"github.com/sunholo/aivi/internal/parser"
	"github.com/sunholo/aivi/internal/resolver"
	"github.com/sunholo/aivi/internal/types"
)

// Mode selects how much of the pipeline runs.
type Mode int

const (
	ModeCheck Mode = iota // parse + resolve + typecheck only
	ModeRun               // also lower and evaluate
)

// Config carries the flags cmd/aivi's subcommands translate CLI flags
// into.
type Config struct {
	Mode  Mode
	Trace bool
	Caps  []string // capability names to grant the program's EffContext
}

// Result collects every artifact and diagnostic a pipeline run produces.
type Result struct {
	Modules      map[string]*ast.Module
	Resolved     *resolver.Program
	Diagnostics  []diag.FileDiagnostic
	Value        eval.Value
	Interp       *eval.Interp
	PhaseTimings map[string]time.Duration
}

// HasErrors reports whether any collected diagnostic is Error severity.
func (r *Result) HasErrors() bool {
	for _, fd := range r.Diagnostics {
		if fd.Diagnostic.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Load parses rootFile and every module it transitively `use`s, found by
// mapping a module's dotted path onto `<srcRoot>/<a>/<b>.aivi`.
func Load(rootFile string) (modules map[string]*ast.Module, rootName string, err error) {
	srcRoot := filepath.Dir(rootFile)
	modules = map[string]*ast.Module{}
	var load func(path string) error
	load = func(path string) error {
		if _, ok := modules[path]; ok {
			return nil
		}
		file := filepath.Join(srcRoot, filepath.Join(strings.Split(path, ".")...)+".aivi")
		data, rerr := os.ReadFile(file)
		if rerr != nil {
			return fmt.Errorf("module %q: %w", path, rerr)
		}
		mod, diags := parser.Parse(string(data), file)
		if diag.HasErrors(diags) {
			return fmt.Errorf("parse errors in %s", file)
		}
		modules[path] = mod
		for _, use := range mod.Uses {
			if err := load(use.Module.Name); err != nil {
				return err
			}
		}
		return nil
	}

	data, rerr := os.ReadFile(rootFile)
	if rerr != nil {
		return nil, "", rerr
	}
	rootMod, diags := parser.Parse(string(data), rootFile)
	if diag.HasErrors(diags) {
		return nil, "", fmt.Errorf("parse errors in %s", rootFile)
	}
	rootName = rootMod.Name.Name
	modules[rootName] = rootMod
	for _, use := range rootMod.Uses {
		if err := load(use.Module.Name); err != nil {
			return nil, "", err
		}
	}
	return modules, rootName, nil
}

// Run executes the pipeline against an already-loaded module set,
// starting from rootName's `main` definition when cfg.Mode is ModeRun.
func Run(cfg Config, modules map[string]*ast.Module, rootName string) (*Result, error) {
	res := &Result{Modules: modules, PhaseTimings: map[string]time.Duration{}}

	start := time.Now()
	resolved, diags := resolver.Resolve(modules, rootName)
	res.Resolved = resolved
	res.Diagnostics = append(res.Diagnostics, diags...)
	res.PhaseTimings["resolve"] = time.Since(start)
	if res.HasErrors() {
		return res, fmt.Errorf("resolution failed")
	}

	start = time.Now()
	_, typeDiags := types.Infer(modules, resolved)
	res.Diagnostics = append(res.Diagnostics, typeDiags...)
	res.PhaseTimings["typecheck"] = time.Since(start)
	if res.HasErrors() {
		return res, fmt.Errorf("type checking failed")
	}

	if cfg.Mode == ModeCheck {
		return res, nil
	}

	start = time.Now()
	hirProg, hirDiags := hir.Desugar(modules, resolved)
	res.Diagnostics = append(res.Diagnostics, hirDiags...)
	res.PhaseTimings["desugar"] = time.Since(start)
	if res.HasErrors() {
		return res, fmt.Errorf("desugaring failed")
	}
	hirProg = hir.ApplyDebugInstrumentation(hirProg, cfg.Trace)

	start = time.Now()
	kernelProg := kernel.Lower(hirProg)
	res.PhaseTimings["lower"] = time.Since(start)

	start = time.Now()
	interp := eval.New()
	interp.Modules = kernelProg
	ctx := effects.NewEffContext()
	for _, cap := range cfg.Caps {
		ctx.Grant(effects.Capability{Name: cap})
	}
	interp.Builtins = builtins.Register(interp, ctx)
	if cfg.Trace {
		interp.SetTracer(func(line string) { fmt.Fprintln(os.Stderr, line) })
	}
	res.Interp = interp

	for _, mod := range kernelProg.Order {
		for name, decl := range kernelProg.Decls[mod] {
			interp.Globals.Bind(mod+"."+name, &eval.Thunk{Expr: decl.Body, Env: interp.Globals})
		}
	}

	mainVal, ok := interp.Globals.Lookup(rootName + ".main")
	if !ok {
		return res, fmt.Errorf("module %q declares no main", rootName)
	}
	result, err := evalEntry(interp, mainVal)
	res.PhaseTimings["evaluate"] = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Value = result
	return res, nil
}

// evalEntry forces main's thunk and, if it yields a suspended Effect
// (the `do`/`effect` block form main is expected to take), drains it.
func evalEntry(interp *eval.Interp, mainVal eval.Value) (eval.Value, error) {
	th, isThunk := mainVal.(*eval.Thunk)
	if isThunk {
		v, err := interp.Eval(th.Expr, th.Env, eval.NewCancel())
		if err != nil {
			return nil, err
		}
		mainVal = v
	}
	if eff, ok := mainVal.(*eval.Effect); ok {
		return interp.RunEffect(eff, eval.NewCancel())
	}
	return mainVal, nil
}
