package types

import "fmt"

// CoerceToText decides whether a value of type `have`, used where `want`
// is expected, needs a `toText` wrapper inserted (spec §4.2, expected-
// type-driven instance coercion elaboration). It returns ok=false with
// no error when no coercion is needed (have already satisfies want), and
// a CoercionError when want is Text but have has no ToText instance —
// coercion must be traceable and never silently widen beyond a declared
// instance.
func CoerceToText(classes *ClassEnv, have, want Type) (needed bool, err error) {
	if !want.Equals(TText) {
		return false, nil
	}
	if have.Equals(TText) {
		return false, nil
	}
	if _, resolveErr := classes.Resolve("ToText", have); resolveErr != nil {
		return false, &CoercionError{From: have, To: want}
	}
	return true, nil
}

// CoercionError reports an expected-type coercion the elaborator could
// not perform because no instance covers it (E1706).
type CoercionError struct {
	From Type
	To   Type
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s to %s: no ToText instance", e.From.String(), e.To.String())
}
