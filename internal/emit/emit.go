// Package emit realizes the HIR → text seam spec §1 carves out for an
// external native-code collaborator: Emit never owns textual layout
// polish (that's the emitter's job), it owns the stable contract that
// feeds it — a deterministic, parseable rendering of the desugared HIR
// so a downstream backend never has to re-derive module order, clause
// numbering, or decorator flags from the surface AST.
//
// Grounded on the original compiler's internal/eval debug/show traversal style
// (one render function per node kind, falling through a default arm)
// applied to hir.Expr instead of eval.Value.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/aivi/internal/hir"
)

// Emit renders every module's declarations, in the program's resolved
// evaluation order, as `module.name = <expr>` lines.
func Emit(prog *hir.Program) (string, error) {
	var b strings.Builder
	for _, mod := range prog.Order {
		decls := prog.Decls[mod]
		names := make([]string, 0, len(decls))
		for name := range decls {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			decl := decls[name]
			fmt.Fprintf(&b, "%s.%s", mod, name)
			if decl.Inline {
				b.WriteString(" @inline")
			}
			if decl.Debug != nil {
				fmt.Fprintf(&b, " @debug(%s)", strings.Join(decl.Debug.Opts, ","))
			}
			b.WriteString(" = ")
			emitExpr(&b, decl.Body)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func emitExpr(b *strings.Builder, e hir.Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("()")
	case *hir.Var:
		b.WriteString(n.Name)
	case *hir.Lit:
		fmt.Fprintf(b, "%v", n.Lit)
	case *hir.Call:
		emitExpr(b, n.Func)
		b.WriteString("(")
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			emitExpr(b, arg)
		}
		b.WriteString(")")
	case *hir.Lambda:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = fmt.Sprintf("%v", p)
		}
		fmt.Fprintf(b, "\\%s -> ", strings.Join(params, " "))
		emitExpr(b, n.Body)
	case *hir.If:
		b.WriteString("if ")
		emitExpr(b, n.Cond)
		b.WriteString(" then ")
		emitExpr(b, n.Then)
		b.WriteString(" else ")
		emitExpr(b, n.Else)
	case *hir.Binary:
		emitExpr(b, n.Left)
		fmt.Fprintf(b, " %s ", n.Op)
		emitExpr(b, n.Right)
	case *hir.Unary:
		fmt.Fprintf(b, "%s", n.Op)
		emitExpr(b, n.Operand)
	case *hir.Block:
		b.WriteString("{ ... }")
	case *hir.Match:
		b.WriteString("when ")
		emitExpr(b, n.Scrutinee)
		b.WriteString(" { ... }")
	case *hir.MultiClause:
		fmt.Fprintf(b, "<%d clauses>", len(n.Clauses))
	case *hir.List:
		b.WriteString("[")
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			emitExpr(b, item.Expr)
		}
		b.WriteString("]")
	case *hir.Tuple:
		b.WriteString("(")
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			emitExpr(b, item)
		}
		b.WriteString(")")
	case *hir.Record:
		b.WriteString("{")
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%v: ", f.Path)
			emitExpr(b, f.Value)
		}
		b.WriteString("}")
	case *hir.FieldAccess:
		emitExpr(b, n.Base)
		fmt.Fprintf(b, ".%s", n.Field)
	case *hir.Text:
		b.WriteString("\"")
		for _, p := range n.Parts {
			if p.IsExpr {
				b.WriteString("{")
				emitExpr(b, p.Expr)
				b.WriteString("}")
			} else {
				b.WriteString(p.Literal)
			}
		}
		b.WriteString("\"")
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}
