package eval

// lookupBuiltin resolves a namespace.member reference produced by
// Kernel lowering directly to a field on the pre-registered namespace
// record (internal/builtins.Register populates Interp.Builtins once at
// startup — spec §9 "global builtin registry ... process-wide
// read-only state").
func (it *Interp) lookupBuiltin(namespace, member string) (Value, error) {
	ns, ok := it.Builtins[namespace]
	if !ok {
		return nil, NewMessageError("E1905", "unknown builtin namespace "+namespace)
	}
	v, ok := ns.Fields[member]
	if !ok {
		return nil, NewMessageError("E1910", "no such builtin "+namespace+"."+member)
	}
	return v, nil
}
