package builtins

import (
	"sync"

	"github.com/sunholo/aivi/internal/eval"
)

// concurrent: par/scope. par runs a list of suspended Effects to
// completion concurrently (spec §4.8 "concurrency & resources" — the
// runtime already models Effect as a first-class suspended computation;
// par is the scheduling primitive that actually drains several of them
// in parallel). scope establishes a cancellation boundary: its effect
// runs under a child Cancel token that is always cancelled on return, so
// any resources acquired inside are released before scope's caller sees
// a result (structured concurrency, grounded on the original compiler's capability
// context plus original_source's acquire/cleanup-in-reverse discipline).
func concurrentNamespace(interp *eval.Interp) *namespace {
	n := newNamespace()
	n.add("par", 1, concurrentPar(interp))
	n.add("scope", 1, concurrentScope(interp))
	return n
}

func concurrentPar(interp *eval.Interp) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		list, err := wantList("par", args[0])
		if err != nil {
			return nil, err
		}
		root := eval.NewCancel()
		results := make([]eval.Value, len(list.Items))
		errs := make([]error, len(list.Items))

		var wg sync.WaitGroup
		for i, item := range list.Items {
			eff, ok := item.(*eval.Effect)
			if !ok {
				return nil, argError("par", "List of Effect", item)
			}
			wg.Add(1)
			go func(i int, eff *eval.Effect) {
				defer wg.Done()
				v, err := interp.RunEffect(eff, root.Child())
				results[i] = v
				errs[i] = err
				if err != nil {
					root.Cancel()
				}
			}(i, eff)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return &eval.List{Items: results}, nil
	}
}

func concurrentScope(interp *eval.Interp) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		eff, ok := args[0].(*eval.Effect)
		if !ok {
			return nil, argError("scope", "Effect", args[0])
		}
		child := eval.NewCancel()
		defer child.Cancel()
		return interp.RunEffect(eff, child)
	}
}
