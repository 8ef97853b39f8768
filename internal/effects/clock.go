package effects

import (
	"fmt"
	"time"

	"github.com/sunholo/aivi/internal/eval"
)

// init registers Clock effect operations
func init() {
	RegisterOp("Clock", "now", clockNow)
	RegisterOp("Clock", "sleep", clockSleep)
}

// clockNow implements Clock.now() -> Int, the current time in
// milliseconds: monotonic epoch+elapsed in production, virtual time
// (starting at 0, fully reproducible) when a seed is set.
func clockNow(ctx *EffContext, args []eval.Value) (eval.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("E_CLOCK_TYPE_ERROR: now: expected 0 arguments, got %d", len(args))
	}

	if ctx.Env.Seed != 0 {
		return eval.Int{Value: ctx.Clock.virtual}, nil
	}

	elapsed := time.Since(ctx.Clock.startTime).Milliseconds()
	return eval.Int{Value: ctx.Clock.epoch + elapsed}, nil
}

// clockSleep implements Clock.sleep(ms: Int) -> (); under a seed it
// advances virtual time instead of actually blocking.
func clockSleep(ctx *EffContext, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("E_CLOCK_TYPE_ERROR: sleep: expected 1 argument, got %d", len(args))
	}

	ms, ok := args[0].(eval.Int)
	if !ok {
		return nil, fmt.Errorf("E_CLOCK_TYPE_ERROR: sleep: expected Int, got %T", args[0])
	}

	if ms.Value < 0 {
		return nil, fmt.Errorf("E_CLOCK_NEGATIVE_SLEEP: sleep: negative duration %d", ms.Value)
	}

	// Deterministic mode: advance virtual time (no actual sleep)
	if ctx.Env.Seed != 0 {
		ctx.Clock.virtual += ms.Value
		return eval.Unit{}, nil
	}

	<-time.After(time.Duration(ms.Value) * time.Millisecond)
	return eval.Unit{}, nil
}
