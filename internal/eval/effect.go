package eval

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/kernel"
)

// evalBlockExpr interprets the four surface block kinds that survive
// into Kernel (spec §3 "block (kinds retained)"). Plain and generate
// blocks run eagerly, producing an ordinary value; effect and resource
// blocks are suspended into an Effect value — "the block body is not
// run" (spec §4.7) — until something drains them with RunEffect or
// RunResource.
func (it *Interp) evalBlockExpr(n *kernel.Block, env *Env, c *Cancel) (Value, error) {
	switch n.Kind {
	case ast.BlockEffect, ast.BlockResource:
		return &Effect{Block: n, Env: env}, nil
	case ast.BlockGenerate:
		return it.runGenerateBlock(n, env, c)
	default:
		return it.runPlainBlock(n, env, c)
	}
}

// runPlainBlock evaluates a `do { ... }` block's items in sequence,
// extending env on each bind, and returns the last item's value. A
// false `when` guard short-circuits the block to Unit.
func (it *Interp) runPlainBlock(n *kernel.Block, env *Env, c *Cancel) (Value, error) {
	cur := env
	var last Value = Unit{}
	for _, item := range n.Items {
		var err error
		cur, last, err = it.runBlockItem(item, cur, c)
		if err != nil {
			return nil, err
		}
		if last == nil {
			return Unit{}, nil
		}
	}
	return last, nil
}

// runBlockItem evaluates one bind/filter/expr statement, returning the
// (possibly extended) env and the item's value, or (env, nil, nil) to
// signal "short-circuit the enclosing block" on a failed filter.
func (it *Interp) runBlockItem(item kernel.BlockItem, env *Env, c *Cancel) (*Env, Value, error) {
	switch {
	case item.BindPattern != nil:
		v, err := it.Eval(item.Expr, env, c)
		if err != nil {
			return env, nil, err
		}
		child, ok := Match(item.BindPattern, v, env)
		if !ok {
			return env, nil, NewMessageError("E1902", "bind pattern did not match")
		}
		return child, v, nil
	case item.Filter != nil:
		v, err := it.Eval(item.Filter, env, c)
		if err != nil {
			return env, nil, err
		}
		if !Truthy(v) {
			return env, nil, nil
		}
		return env, Unit{}, nil
	case item.Expr != nil:
		v, err := it.Eval(item.Expr, env, c)
		if err != nil {
			return env, nil, err
		}
		return env, v, nil
	default:
		return env, Unit{}, nil
	}
}

// runGenerateBlock evaluates a `generate { ... }` comprehension: each
// bind item iterates its source list, filters narrow the current
// binding, and yield appends to the produced list. Multiple binds
// nest, matching list-comprehension semantics.
//
// `recurse` is a late addition to the surface grammar for self-feeding
// generators; this interpreter supports a single recursive step rather
// than a full reentrant loop — a recurse item evaluates once, its
// result (flattened if a list) is appended, and generation for that
// branch stops there. A real generator loop would need the block to
// be able to re-enter itself with updated bindings, which would need
// its own scheduling primitive; narrowing to one step keeps the common
// comprehension case correct without that machinery.
func (it *Interp) runGenerateBlock(n *kernel.Block, env *Env, c *Cancel) (Value, error) {
	var results []Value
	var walk func(items []kernel.BlockItem, cur *Env) error
	walk = func(items []kernel.BlockItem, cur *Env) error {
		if len(items) == 0 {
			return nil
		}
		item := items[0]
		rest := items[1:]
		switch {
		case item.BindPattern != nil:
			src, err := it.Eval(item.Expr, cur, c)
			if err != nil {
				return err
			}
			list, ok := src.(*List)
			if !ok {
				return NewMessageError("E1908", "generate bind source is not a list")
			}
			for _, elem := range list.Items {
				if err := c.Check(); err != nil {
					return err
				}
				child, ok := Match(item.BindPattern, elem, cur)
				if !ok {
					continue
				}
				if err := walk(rest, child); err != nil {
					return err
				}
			}
			return nil
		case item.Filter != nil:
			v, err := it.Eval(item.Filter, cur, c)
			if err != nil {
				return err
			}
			if !Truthy(v) {
				return nil
			}
			return walk(rest, cur)
		case item.Yield != nil:
			v, err := it.Eval(item.Yield, cur, c)
			if err != nil {
				return err
			}
			results = append(results, v)
			return walk(rest, cur)
		case item.Recurse != nil:
			v, err := it.Eval(item.Recurse, cur, c)
			if err != nil {
				return err
			}
			if l, ok := v.(*List); ok {
				results = append(results, l.Items...)
			} else {
				results = append(results, v)
			}
			return nil
		default:
			if item.Expr != nil {
				if _, err := it.Eval(item.Expr, cur, c); err != nil {
					return err
				}
			}
			return walk(rest, cur)
		}
	}
	if err := walk(n.Items, env); err != nil {
		return nil, err
	}
	return &List{Items: results}, nil
}

// RunEffect drains a suspended Effect's block items, sequencing binds
// (each of which is itself run if it produces a nested Effect) and
// returning the final lifted value (spec §4.7 "run_effect_value ...
// drains an Effect by executing its items, sequencing binds, lifting
// pure values, and returning the final value").
func (it *Interp) RunEffect(eff *Effect, c *Cancel) (Value, error) {
	if eff.IsPure {
		return eff.Pure, nil
	}
	cur := eff.Env
	var last Value = Unit{}
	for _, item := range eff.Block.Items {
		var v Value
		var err error
		switch {
		case item.BindPattern != nil:
			v, err = it.Eval(item.Expr, cur, c)
			if err != nil {
				return nil, err
			}
			v, err = it.forceEffect(v, c)
			if err != nil {
				return nil, err
			}
			child, ok := Match(item.BindPattern, v, cur)
			if !ok {
				return nil, NewMessageError("E1902", "effect bind pattern did not match")
			}
			cur = child
		case item.Filter != nil:
			guard, err := it.Eval(item.Filter, cur, c)
			if err != nil {
				return nil, err
			}
			if !Truthy(guard) {
				return Unit{}, nil
			}
			v = Unit{}
		case item.Recurse != nil:
			v, err = it.Eval(item.Recurse, cur, c)
			if err != nil {
				return nil, err
			}
			v, err = it.forceEffect(v, c)
			if err != nil {
				return nil, err
			}
		default:
			v, err = it.Eval(item.Expr, cur, c)
			if err != nil {
				return nil, err
			}
			v, err = it.forceEffect(v, c)
			if err != nil {
				return nil, err
			}
		}
		if err := c.Check(); err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// forceEffect runs v if it is itself a suspended Effect (the result of
// a nested `effect { ... }` expression evaluated mid-block), otherwise
// returns it unchanged.
func (it *Interp) forceEffect(v Value, c *Cancel) (Value, error) {
	if eff, ok := v.(*Effect); ok {
		return it.RunEffect(eff, c)
	}
	return v, nil
}

// RunResource drains a suspended resource Effect up to its `yield`,
// returning the yielded value plus a Cleanup effect that runs the
// remaining items (reverse order is already encoded structurally: the
// desugarer collapses everything after `yield` into one nested effect
// block run as a unit). Cleanup must run with cancellation masked on
// every exit path (spec §3 invariants); callers are responsible for
// invoking RunEffect on Cleanup inside a c.Masked() token and for doing
// so even when the consumer body panicked or was cancelled.
func (it *Interp) RunResource(eff *Effect, c *Cancel) (*Resource, error) {
	cur := eff.Env
	var yielded Value
	var cleanup *Effect
	for _, item := range eff.Block.Items {
		switch {
		case item.BindPattern != nil:
			v, err := it.Eval(item.Expr, cur, c)
			if err != nil {
				return nil, err
			}
			v, err = it.forceEffect(v, c)
			if err != nil {
				return nil, err
			}
			child, ok := Match(item.BindPattern, v, cur)
			if !ok {
				return nil, NewMessageError("E1902", "resource bind pattern did not match")
			}
			cur = child
		case item.Yield != nil:
			v, err := it.Eval(item.Yield, cur, c)
			if err != nil {
				return nil, err
			}
			yielded = v
		default:
			if item.Expr == nil {
				continue
			}
			v, err := it.Eval(item.Expr, cur, c)
			if err != nil {
				return nil, err
			}
			if e, ok := v.(*Effect); ok && yielded != nil {
				cleanup = e
			}
		}
	}
	if yielded == nil {
		return nil, NewMessageError("E1903", "resource block never yielded")
	}
	if cleanup == nil {
		cleanup = &Effect{IsPure: true, Pure: Unit{}}
	}
	return &Resource{Yielded: yielded, Cleanup: cleanup}, nil
}
