package eval

import "github.com/sunholo/aivi/internal/diag"

// RuntimeError is AIVI's tagged runtime-error union (spec §7 "Runtime
// errors — tagged kinds: Cancelled, Message(text), Error(value)").
// Grounded on the original compiler's eval.RuntimeError, narrowed to the three
// kinds spec §7 actually names.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Value   Value // set when Kind == ErrUser
	Code    string
}

type RuntimeErrorKind int

const (
	ErrMessage RuntimeErrorKind = iota
	ErrCancelled
	ErrUser
)

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case ErrCancelled:
		return "cancelled"
	case ErrUser:
		return e.Value.String()
	default:
		return e.Message
	}
}

func NewMessageError(code, msg string) *RuntimeError {
	return &RuntimeError{Kind: ErrMessage, Message: msg, Code: code}
}

func NewCancelledError() *RuntimeError {
	return &RuntimeError{Kind: ErrCancelled, Message: "cancelled", Code: diag.E1900Cancelled}
}

func NewUserError(v Value) *RuntimeError {
	return &RuntimeError{Kind: ErrUser, Value: v}
}

func IsCancelled(err error) bool {
	re, ok := err.(*RuntimeError)
	return ok && re.Kind == ErrCancelled
}
