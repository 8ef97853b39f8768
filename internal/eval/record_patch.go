package eval

import (
	"fmt"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/kernel"
)

// evalRecordPatch applies `target <| { path: value, ... }` (spec §4.7
// "record patch ... produces a new record with the given path
// re-bound"). Each PatchField's Path is a chain of selectors: `.field`,
// `[literal]`, `[predicate]`, `[*]`, `[boolField]` — the last segment
// names what gets rewritten; every earlier segment navigates there.
func (it *Interp) evalRecordPatch(n *kernel.RecordPatch, env *Env, c *Cancel) (Value, error) {
	target, err := it.Eval(n.Target, env, c)
	if err != nil {
		return nil, err
	}
	for _, f := range n.Fields {
		newVal, err := it.Eval(f.Value, env, c)
		if err != nil {
			return nil, err
		}
		target, err = it.applyPatch(target, f.Path, newVal, env, c)
		if err != nil {
			return nil, err
		}
	}
	return target, nil
}

func (it *Interp) applyPatch(target Value, path []ast.PathSegment, newVal Value, env *Env, c *Cancel) (Value, error) {
	if len(path) == 0 {
		return newVal, nil
	}
	seg, rest := path[0], path[1:]
	switch {
	case seg.Field != nil:
		rec, ok := target.(*Record)
		if !ok {
			return nil, NewMessageError("E1913", "patch field target is not a record")
		}
		cur, ok := rec.Fields[seg.Field.Name]
		if !ok {
			cur = Unit{}
		}
		updated, err := it.patchLeaf(cur, rest, newVal, env, c)
		if err != nil {
			return nil, err
		}
		return rec.With(seg.Field.Name, updated), nil
	case seg.All:
		list, ok := target.(*List)
		if !ok {
			return nil, NewMessageError("E1913", "patch [*] target is not a list")
		}
		items := make([]Value, len(list.Items))
		for i, item := range list.Items {
			updated, err := it.patchLeaf(item, rest, newVal, env, c)
			if err != nil {
				return nil, err
			}
			items[i] = updated
		}
		return &List{Items: items}, nil
	case seg.BoolField != nil:
		list, ok := target.(*List)
		if !ok {
			return nil, NewMessageError("E1913", "patch [boolField] target is not a list")
		}
		items := make([]Value, len(list.Items))
		for i, item := range list.Items {
			rec, ok := item.(*Record)
			if ok {
				if flag, ok := rec.Fields[seg.BoolField.Name].(Bool); ok && flag.Value {
					updated, err := it.patchLeaf(item, rest, newVal, env, c)
					if err != nil {
						return nil, err
					}
					items[i] = updated
					continue
				}
			}
			items[i] = item
		}
		return &List{Items: items}, nil
	case seg.Index != nil:
		idxOrPred, err := it.Eval(seg.Index, env, c)
		if err != nil {
			return nil, err
		}
		list, isList := target.(*List)
		if !isList {
			return nil, NewMessageError("E1913", "patch [index] target is not a list")
		}
		items := append([]Value{}, list.Items...)
		if i, ok := idxOrPred.(Int); ok {
			if i.Value < 0 || int(i.Value) >= len(items) {
				return nil, NewMessageError("E1911", "patch index out of range")
			}
			updated, err := it.patchLeaf(items[i.Value], rest, newVal, env, c)
			if err != nil {
				return nil, err
			}
			items[i.Value] = updated
			return &List{Items: items}, nil
		}
		_, isClosure := idxOrPred.(*Closure)
		_, isBuiltin := idxOrPred.(*Builtin)
		if isClosure || isBuiltin {
			for i, item := range items {
				matched, err := it.Apply(idxOrPred, []Value{item}, c)
				if err != nil {
					return nil, err
				}
				if Truthy(matched) {
					updated, err := it.patchLeaf(items[i], rest, newVal, env, c)
					if err != nil {
						return nil, err
					}
					items[i] = updated
				}
			}
			return &List{Items: items}, nil
		}
		return nil, fmt.Errorf("patch: unsupported index selector")
	default:
		return nil, fmt.Errorf("patch: empty path segment")
	}
}

// patchLeaf rewrites cur directly when rest is empty (newVal may itself
// be a function of the current value, i.e. `_` holed patch expressions
// already lowered to a Lambda by the parser), or recurses through rest.
func (it *Interp) patchLeaf(cur Value, rest []ast.PathSegment, newVal Value, env *Env, c *Cancel) (Value, error) {
	if len(rest) == 0 {
		if fn, ok := newVal.(*Closure); ok {
			return it.Apply(fn, []Value{cur}, c)
		}
		return newVal, nil
	}
	return it.applyPatch(cur, rest, newVal, env, c)
}
