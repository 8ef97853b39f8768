package resolver

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
)

// resolveUses pulls each `use` declaration's named (or wildcard) imports
// into the importing module's value scope, recording their origin for
// the unused-import check.
func resolveUses(mod *ast.Module, scope *ModuleScope, prog *Program, diags *[]diag.FileDiagnostic) {
	for _, use := range mod.Uses {
		src, ok := prog.Modules[use.Module.Name]
		if !ok {
			continue // unresolved module path is reported by the loader, not here
		}
		if use.Wildcard && len(use.Items) == 0 {
			for name, b := range src.Values {
				if b.Kind == BindBuiltin {
					continue
				}
				if !isExported(src.Module, name) {
					continue
				}
				scope.Values[name] = Binding{Name: name, Span: use.Span, Arity: b.Arity, Kind: BindImport}
				scope.Imported[name] = use.Module.Name
			}
			continue
		}
		for _, item := range use.Items {
			if use.Wildcard {
				// `use m hiding (a, b)`: import everything except these.
				continue
			}
			b, ok := src.Values[item.Name]
			if !ok {
				*diags = append(*diags, diag.FileDiagnostic{
					Path:       mod.Path,
					Diagnostic: diag.NewError(diag.E1501UnknownIdent, "module '"+use.Module.Name+"' has no export named '"+item.Name+"'", item.Span),
				})
				continue
			}
			scope.Values[item.Name] = Binding{Name: item.Name, Span: use.Span, Arity: b.Arity, Kind: BindImport}
			scope.Imported[item.Name] = use.Module.Name
		}
		if use.Wildcard && len(use.Items) > 0 {
			for name, b := range src.Values {
				if b.Kind == BindBuiltin || !isExported(src.Module, name) {
					continue
				}
				hidden := false
				for _, item := range use.Items {
					if item.Name == name {
						hidden = true
						break
					}
				}
				if !hidden {
					scope.Values[name] = Binding{Name: name, Span: use.Span, Arity: b.Arity, Kind: BindImport}
					scope.Imported[name] = use.Module.Name
				}
			}
		}
	}
}

func isExported(mod *ast.Module, name string) bool {
	if len(mod.Exports) == 0 {
		return true // no explicit export list: everything is visible
	}
	for _, e := range mod.Exports {
		if e.Name == name {
			return true
		}
	}
	return false
}

// checkExports flags an `export (name, ...)` entry with no matching
// top-level definition (E1503).
func checkExports(mod *ast.Module, scope *ModuleScope, diags *[]diag.FileDiagnostic) {
	for _, e := range mod.Exports {
		if _, ok := scope.Values[e.Name]; ok {
			continue
		}
		if scope.Types[e.Name] {
			continue
		}
		if _, ok := scope.Ctors[e.Name]; ok {
			continue
		}
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1503UnknownExport, "export '"+e.Name+"' has no matching definition in this module", e.Span),
		})
	}
}

// checkDecorators validates every decorator's name and argument count
// against knownDecorators (E1506, E1511, E1512, E1513).
func checkDecorators(mod *ast.Module, diags *[]diag.FileDiagnostic) {
	for _, item := range mod.Items {
		switch {
		case item.Def != nil:
			for _, dec := range item.Def.Decorators {
				checkOneDecorator(mod, dec, diags)
			}
		case item.TypeSig != nil:
			for _, dec := range item.TypeSig.Decorators {
				checkOneDecorator(mod, dec, diags)
			}
		}
	}
}

func checkOneDecorator(mod *ast.Module, dec ast.Decorator, diags *[]diag.FileDiagnostic) {
	rule, ok := knownDecorators[dec.Name.Name]
	if !ok {
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1506UnknownDecorator, "unknown decorator '@"+dec.Name.Name+"'", dec.Span),
		})
		return
	}
	n := len(dec.Args)
	if dec.Name.Name == "inline" && n > 0 {
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1513InlineNoArg, "@inline takes no arguments", dec.Span),
		})
		return
	}
	if n < rule.minArgs {
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1511MissingDecoratorArg, "@"+dec.Name.Name+" requires at least one argument", dec.Span),
		})
		return
	}
	if rule.maxArgs >= 0 && n > rule.maxArgs {
		*diags = append(*diags, diag.FileDiagnostic{
			Path:       mod.Path,
			Diagnostic: diag.NewError(diag.E1512UnexpectedArg, "@"+dec.Name.Name+" takes at most one argument form", dec.Span),
		})
	}
}

// checkNoPreludePlacement flags `@no_prelude` written as a def-level
// decorator rather than a module-header annotation (E1507).
func checkNoPreludePlacement(mod *ast.Module, diags *[]diag.FileDiagnostic) {
	for _, item := range mod.Items {
		if item.Def == nil {
			continue
		}
		for _, dec := range item.Def.Decorators {
			if dec.Name.Name == "no_prelude" {
				*diags = append(*diags, diag.FileDiagnostic{
					Path:       mod.Path,
					Diagnostic: diag.NewError(diag.E1507NoPreludeMisplaced, "@no_prelude only applies to the module header, not individual definitions", dec.Span),
				})
			}
		}
	}
}

// checkDuplicateBindings flags a name bound by clauses of conflicting
// arity, which cannot form one coherent multi-clause function (E1500).
func checkDuplicateBindings(scope *ModuleScope, diags *[]diag.FileDiagnostic) {
	for name, b := range scope.Values {
		if b.Kind == BindDef && b.Arity == -2 {
			*diags = append(*diags, diag.FileDiagnostic{
				Path:       scope.Module.Path,
				Diagnostic: diag.NewError(diag.E1500DuplicateBinding, "'"+name+"' is defined with clauses of differing arity", b.Span),
			})
		}
	}
}

// checkUnusedImports flags an explicitly named import that is never
// referenced in the module body (E1505, warning).
func checkUnusedImports(mod *ast.Module, scope *ModuleScope, diags *[]diag.FileDiagnostic) {
	used := make(map[string]bool)
	var walkExpr func(ast.Expr)
	markIdent := func(name string) {
		if _, ok := scope.Imported[name]; ok {
			used[name] = true
		}
	}
	walkExpr = func(e ast.Expr) {
		visitExprChildren(e, walkExpr, markIdent)
	}
	for _, item := range mod.Items {
		if item.Def != nil {
			walkExpr(item.Def.Expr)
		}
	}
	for name, origin := range scope.Imported {
		if used[name] {
			continue
		}
		for _, use := range mod.Uses {
			if use.Module.Name == origin {
				*diags = append(*diags, diag.FileDiagnostic{
					Path:       mod.Path,
					Diagnostic: diag.NewWarning(diag.E1505UnusedImport, "'"+name+"' imported from '"+origin+"' is never used", use.Span),
				})
				break
			}
		}
	}
}
