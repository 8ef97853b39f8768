package eval

import "sync/atomic"

// Cancel is one node in the parent/child cancellation token tree (spec
// §4.8, §5). Cancelling a token sets an atomic flag; every child token
// created from it inherits the cancelled state immediately and going
// forward. Grounded on the original_source runtime's token-tree design;
// context.Context is the stdlib's own version of exactly this idea, but
// AIVI's cleanup-masking requirement (cleanups must still run under a
// cancelled parent) doesn't fit context.Context's "once Done, everything
// downstream sees ctx.Err()" model directly, so a small dedicated type
// is used instead — justified stdlib-avoidance, see DESIGN.md.
type Cancel struct {
	flag     *int32
	parent   *Cancel
	masked   bool
}

// NewCancel creates a root cancellation token.
func NewCancel() *Cancel {
	var f int32
	return &Cancel{flag: &f}
}

// Child creates a cancellable descendant of c.
func (c *Cancel) Child() *Cancel {
	return &Cancel{flag: c.flag, parent: c}
}

// Masked creates a new root token that is NOT cancelled when c is, used
// to run cleanups while a parent's cancellation is pending (spec §3
// "cancellation propagates ... masked" — cleanup blocks must finish
// even though the resource's own cancellation already fired).
func (c *Cancel) Masked() *Cancel {
	var f int32
	return &Cancel{flag: &f, masked: true}
}

// Cancel marks this token (and therefore every descendant sharing its
// flag) as cancelled.
func (c *Cancel) Cancel() {
	atomic.StoreInt32(c.flag, 1)
}

// Cancelled reports whether this token has observed cancellation.
func (c *Cancel) Cancelled() bool {
	return atomic.LoadInt32(c.flag) != 0
}

// Check returns a RuntimeError if the token is cancelled, for builtins
// and loop points to call between units of work (spec §5 "every builtin
// may declare itself cancellable; its entry must call check_cancelled()").
func (c *Cancel) Check() error {
	if c.Cancelled() {
		return NewCancelledError()
	}
	return nil
}
