package eval

import (
	"github.com/sunholo/aivi/internal/ast"
)

// Match tries to destructure v against p, binding any identifiers into a
// new child of env. It returns the extended env and true on success, or
// (env, false) on failure — the caller is responsible for trying the
// next arm/clause (spec §4.7 "MultiClause: try each clause in order").
func Match(p ast.Pattern, v Value, env *Env) (*Env, bool) {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		return env, true
	case ast.IdentPattern:
		child := env.Child()
		child.Bind(pat.Name.Name, v)
		return child, true
	case ast.LiteralPattern:
		return env, matchLiteral(pat.Lit, v)
	case ast.ConstructorPattern:
		ctor, ok := v.(*Constructor)
		if !ok || ctor.Name != pat.Name.Name || len(ctor.Args) != len(pat.Args) {
			return env, false
		}
		cur := env
		for i, sub := range pat.Args {
			var ok bool
			cur, ok = Match(sub, ctor.Args[i], cur)
			if !ok {
				return env, false
			}
		}
		return cur, true
	case ast.TuplePattern:
		tup, ok := v.(*Tuple)
		if !ok || len(tup.Items) != len(pat.Items) {
			return env, false
		}
		cur := env
		for i, sub := range pat.Items {
			var ok bool
			cur, ok = Match(sub, tup.Items[i], cur)
			if !ok {
				return env, false
			}
		}
		return cur, true
	case ast.ListPattern:
		return matchList(pat, v, env)
	case ast.RecordPattern:
		return matchRecord(pat, v, env)
	default:
		return env, false
	}
}

func matchLiteral(lit ast.Literal, v Value) bool {
	switch l := lit.(type) {
	case ast.NumberLit:
		return Equal(parseNumberLit(l.Text), v)
	case ast.StringLit:
		t, ok := v.(Text)
		return ok && t.Value == l.Text
	case ast.BoolLit:
		b, ok := v.(Bool)
		return ok && b.Value == l.Value
	default:
		return false
	}
}

func matchList(pat ast.ListPattern, v Value, env *Env) (*Env, bool) {
	list, ok := v.(*List)
	if !ok {
		return env, false
	}
	if pat.Rest == nil {
		if len(list.Items) != len(pat.Items) {
			return env, false
		}
	} else if len(list.Items) < len(pat.Items) {
		return env, false
	}
	cur := env
	for i, sub := range pat.Items {
		var ok bool
		cur, ok = Match(sub, list.Items[i], cur)
		if !ok {
			return env, false
		}
	}
	if pat.Rest != nil {
		rest := &List{Items: append([]Value{}, list.Items[len(pat.Items):]...)}
		var ok bool
		cur, ok = Match(pat.Rest, rest, cur)
		if !ok {
			return env, false
		}
	}
	return cur, true
}

func matchRecord(pat ast.RecordPattern, v Value, env *Env) (*Env, bool) {
	rec, ok := v.(*Record)
	if !ok {
		return env, false
	}
	cur := env
	for _, f := range pat.Fields {
		val, ok := fieldAtPath(rec, f.Path)
		if !ok {
			return env, false
		}
		cur, ok = Match(f.Pattern, val, cur)
		if !ok {
			return env, false
		}
	}
	return cur, true
}

func fieldAtPath(rec *Record, path []ast.SpannedName) (Value, bool) {
	var cur Value = rec
	for _, seg := range path {
		r, ok := cur.(*Record)
		if !ok {
			return nil, false
		}
		cur, ok = r.Fields[seg.Name]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
