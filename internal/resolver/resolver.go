// Package resolver binds names across a set of parsed modules: it orders
// modules for evaluation, builds each module's value and type scopes, and
// flags duplicate bindings, unknown identifiers, constructor-arity
// mismatches, decorator misuse, and export/import problems before the
// type checker ever runs (spec §4.3).
package resolver

import (
	"sort"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
)

// BuiltinNamespaces are the top-level identifiers the builtin library
// registers (spec §5, C8) — `text`, `math`, and so on — treated as
// already-bound names in every module's outermost scope unless a module
// shadows one with its own top-level definition.
var BuiltinNamespaces = []string{
	"text", "regex", "math", "calendar", "color", "crypto", "graph",
	"linalg", "signal", "database", "log", "sockets", "streams",
	"httpServer", "ui", "channel", "concurrent", "file", "console",
	// pure isn't a namespace but the effect/generate/resource blocks'
	// lift-into-effect builtin (spec §4.5/§5); bound here so `pure expr`
	// resolves the same way a namespace call does.
	"pure",
}

// knownDecorators maps a decorator name to its argument arity rule.
type decoratorRule struct {
	minArgs int
	maxArgs int // -1 means unbounded
}

var knownDecorators = map[string]decoratorRule{
	"inline":       {0, 0},
	"debug":        {0, -1},
	"mcp_tool":     {1, -1},
	"mcp_resource": {1, -1},
	"no_prelude":   {0, 0},
}

// Binding records where and how a name entered a module's value scope.
type Binding struct {
	Name  string
	Span  diag.Span
	Arity int // -1 when the binding isn't a function clause (import, sig-only)
	Kind  BindingKind
}

type BindingKind int

const (
	BindDef BindingKind = iota
	BindImport
	BindBuiltin
	BindParam
)

// Ctor records a constructor's declared arity, for pattern/call arity
// checks.
type Ctor struct {
	TypeName string
	Name     string
	Arity    int
}

// ModuleScope is the resolved scope information for one module.
type ModuleScope struct {
	Module     *ast.Module
	Values     map[string]Binding
	Ctors      map[string]Ctor
	Types      map[string]bool
	Imported   map[string]string // imported value name -> source module dotted name
	ImportUsed map[string]bool
}

// Program is the result of resolving a set of modules together.
type Program struct {
	Modules map[string]*ModuleScope // by dotted module name
	Order   []string                // evaluation order, dependencies first
}

// Resolve binds names across modules keyed by their dotted module name,
// starting from root. It never aborts on the first problem: every
// diagnostic is collected and returned alongside the best-effort Program.
func Resolve(modules map[string]*ast.Module, root string) (*Program, []diag.FileDiagnostic) {
	var diags []diag.FileDiagnostic
	prog := &Program{Modules: make(map[string]*ModuleScope)}

	for name, mod := range modules {
		scope := buildModuleScope(mod)
		prog.Modules[name] = scope
	}

	order, cycleDiag := topoOrder(modules, root)
	prog.Order = order
	if cycleDiag != nil {
		diags = append(diags, *cycleDiag)
	}

	for _, name := range order {
		mod := modules[name]
		scope := prog.Modules[name]
		resolveUses(mod, scope, prog, &diags)
		checkExports(mod, scope, &diags)
		checkDecorators(mod, &diags)
		checkNoPreludePlacement(mod, &diags)
		checkDuplicateBindings(scope, &diags)
		checkUnusedImports(mod, scope, &diags)
		walkExprScopes(mod, scope, &diags)
	}

	return prog, diags
}

// buildModuleScope collects a module's own top-level value and type
// bindings, without resolving imports yet (that needs the whole module
// set, done by resolveUses).
func buildModuleScope(mod *ast.Module) *ModuleScope {
	scope := &ModuleScope{
		Module:     mod,
		Values:     make(map[string]Binding),
		Ctors:      make(map[string]Ctor),
		Types:      make(map[string]bool),
		Imported:   make(map[string]string),
		ImportUsed: make(map[string]bool),
	}
	for _, ns := range BuiltinNamespaces {
		scope.Values[ns] = Binding{Name: ns, Kind: BindBuiltin, Arity: -1}
	}
	for _, item := range mod.Items {
		switch {
		case item.Def != nil:
			mergeDefBinding(scope, item.Def)
		case item.TypeSig != nil:
			// A bare signature alone does not bind a value; it only
			// annotates a Def that must also appear.
		case item.TypeDecl != nil:
			scope.Types[item.TypeDecl.Name.Name] = true
			for _, ctor := range item.TypeDecl.Constructors {
				scope.Ctors[ctor.Name.Name] = Ctor{TypeName: item.TypeDecl.Name.Name, Name: ctor.Name.Name, Arity: len(ctor.Args)}
			}
		case item.TypeAlias != nil:
			scope.Types[item.TypeAlias.Name.Name] = true
		case item.ClassDecl != nil:
			scope.Types[item.ClassDecl.Name.Name] = true
			for _, m := range item.ClassDecl.Members {
				scope.Values[m.Name.Name] = Binding{Name: m.Name.Name, Span: m.Span, Arity: -1, Kind: BindDef}
			}
		case item.DomainDecl != nil:
			scope.Types[item.DomainDecl.Name.Name] = true
			for _, di := range item.DomainDecl.Items {
				if di.Def != nil {
					mergeDefBinding(scope, di.Def)
				}
				if di.LiteralDef != nil {
					mergeDefBinding(scope, di.LiteralDef)
				}
			}
		}
	}
	return scope
}

func mergeDefBinding(scope *ModuleScope, def *ast.Def) {
	arity := len(def.Params)
	if existing, ok := scope.Values[def.Name.Name]; ok && existing.Kind == BindDef {
		if existing.Arity != arity {
			existing.Arity = -2 // sentinel: conflicting arities among clauses
			scope.Values[def.Name.Name] = existing
		}
		return
	}
	scope.Values[def.Name.Name] = Binding{Name: def.Name.Name, Span: def.Span, Arity: arity, Kind: BindDef}
}

// topoOrder computes a dependency-first module order via DFS, mirroring
// the original compiler's ModuleLinker.TopoSortFromRoot. A cycle does not abort
// resolution: it falls back to the modules' natural map-iteration order
// (stabilized by name) and reports E1504 as a warning, since AIVI modules
// may reference each other's type signatures without requiring strict
// acyclic value dependencies.
func topoOrder(modules map[string]*ast.Module, root string) ([]string, *diag.FileDiagnostic) {
	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var sorted []string
	var cyclePath []string
	var cycleFound []string

	var dfs func(name string)
	dfs = func(name string) {
		if visited[name] {
			return
		}
		if inPath[name] {
			start := 0
			for i, m := range cyclePath {
				if m == name {
					start = i
					break
				}
			}
			cycleFound = append(append([]string{}, cyclePath[start:]...), name)
			return
		}
		mod, ok := modules[name]
		if !ok {
			return
		}
		inPath[name] = true
		cyclePath = append(cyclePath, name)
		for _, use := range mod.Uses {
			dfs(use.Module.Name)
		}
		inPath[name] = false
		cyclePath = cyclePath[:len(cyclePath)-1]
		visited[name] = true
		sorted = append(sorted, name)
	}

	if _, ok := modules[root]; ok {
		dfs(root)
	}
	var remaining []string
	for name := range modules {
		if !visited[name] {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	for _, name := range remaining {
		dfs(name)
	}

	if len(cycleFound) > 0 {
		msg := "cyclic module imports detected; falling back to alphabetical module order: "
		for i, m := range cycleFound {
			if i > 0 {
				msg += " -> "
			}
			msg += m
		}
		d := diag.NewWarning(diag.E1504CyclicImport, msg, diag.Span{})
		names := make([]string, 0, len(modules))
		for name := range modules {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, &diag.FileDiagnostic{Path: root, Diagnostic: d}
	}
	return sorted, nil
}
