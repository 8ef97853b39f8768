// Package eval is the tree-walking interpreter for AIVI's Kernel IR: the
// runtime value union (spec §3 "Runtime Value"), the environment chain,
// thunks, closures, multi-clause dispatch, effect/resource draining, and
// structured concurrency. Grounded on the original compiler's internal/eval package
// (same tagged-union-of-structs idiom, same env-chain-with-parent-pointer
// idiom) but built on AIVI's own value set instead of the original compiler's.
package eval

import (
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sunholo/aivi/internal/kernel"
)

// Value is any AIVI runtime value. Values are structurally immutable
// (spec §3 invariants); every mutation-shaped operation returns a new
// Value rather than editing one in place.
type Value interface {
	Type() string
	String() string
}

type Unit struct{}

func (Unit) Type() string   { return "Unit" }
func (Unit) String() string { return "()" }

type Bool struct{ Value bool }

func (b Bool) Type() string { return "Bool" }
func (b Bool) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type Int struct{ Value int64 }

func (i Int) Type() string   { return "Int" }
func (i Int) String() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (f Float) Type() string   { return "Float" }
func (f Float) String() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type Text struct{ Value string }

func (t Text) Type() string   { return "Text" }
func (t Text) String() string { return t.Value }

type DateTime struct{ Value time.Time }

func (d DateTime) Type() string   { return "DateTime" }
func (d DateTime) String() string { return d.Value.Format(time.RFC3339) }

type Bytes struct{ Value []byte }

func (b Bytes) Type() string   { return "Bytes" }
func (b Bytes) String() string { return fmt.Sprintf("<bytes:%d>", len(b.Value)) }

// Regex wraps a compiled pattern alongside its source text, since `regex`
// builtin results (Match, etc.) need to report the original pattern.
type Regex struct {
	Source string
	Re     *regexp.Regexp
}

func (r *Regex) Type() string   { return "Regex" }
func (r *Regex) String() string { return "~regex\"" + r.Source + "\"" }

// BigInt backs math.factorial and friends where Int64 would overflow.
type BigInt struct{ Value *big.Int }

func (b BigInt) Type() string   { return "BigInt" }
func (b BigInt) String() string { return b.Value.String() }

// Rational is an exact fraction, used by math's rational helpers.
type Rational struct{ Value *big.Rat }

func (r Rational) Type() string   { return "Rational" }
func (r Rational) String() string { return r.Value.RatString() }

// Decimal is a fixed/arbitrary-precision decimal, backed by big.Float so
// database/money-flavored computations don't accrue binary float error.
type Decimal struct{ Value *big.Float }

func (d Decimal) Type() string   { return "Decimal" }
func (d Decimal) String() string { return d.Value.Text('f', -1) }

// List is a shared immutable sequence. append/cons return new Lists.
type List struct{ Items []Value }

func (l *List) Type() string { return "List" }
func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Tuple struct{ Items []Value }

func (t *Tuple) Type() string { return "Tuple" }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, v := range t.Items {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Record is a shared immutable name->Value mapping. Order keeps the
// insertion order of the field names; equality ignores it, and String
// prints the fields sorted by name.
type Record struct {
	Fields map[string]Value
	Order  []string
}

func NewRecord() *Record { return &Record{Fields: map[string]Value{}} }

// With returns a new Record with name bound to value, preserving Order
// and appending name if it's new.
func (r *Record) With(name string, value Value) *Record {
	out := &Record{Fields: make(map[string]Value, len(r.Fields)+1), Order: append([]string{}, r.Order...)}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	if _, exists := r.Fields[name]; !exists {
		out.Order = append(out.Order, name)
	}
	out.Fields[name] = value
	return out
}

func (r *Record) Type() string { return "Record" }
func (r *Record) String() string {
	keys := append([]string{}, r.Order...)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, r.Fields[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Constructor is an applied algebraic data constructor: `Some(42)`,
// `None`, user `type` declarations.
type Constructor struct {
	TypeName string
	Name     string
	Args     []Value
}

func (c *Constructor) Type() string { return c.TypeName }
func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Closure is a curried lambda value: applying it to one argument either
// returns a new Closure (more params pending) or evaluates Body.
type Closure struct {
	Params []string
	Body   kernel.Expr
	Env    *Env
}

func (c *Closure) Type() string   { return "Function" }
func (c *Closure) String() string { return "<closure>" }

// Builtin carries an implementation function plus already-bound leading
// arguments, so builtins are first-class partially-applicable values
// exactly like user closures (spec §4.7 "Builtins").
type Builtin struct {
	Name  string
	Arity int
	Args  []Value
	Impl  func(args []Value) (Value, error)
}

func (b *Builtin) Type() string   { return "Builtin" }
func (b *Builtin) String() string { return fmt.Sprintf("<builtin:%s/%d>", b.Name, b.Arity) }

// Thunk is a lazily-evaluated binding. force sets InProgress before
// evaluating and clears it after caching Result; a second force
// observing InProgress already set fails with a recursive-thunk error
// (spec §3 invariants).
type Thunk struct {
	Expr       kernel.Expr
	Env        *Env
	InProgress bool
	Forced     bool
	Result     Value
}

func (t *Thunk) Type() string   { return "Thunk" }
func (t *Thunk) String() string { return "<thunk>" }

// Effect is a first-class suspended effectful computation: either a
// block (drained item by item by RunEffect) or an already-built value wrapped
// by `pure`.
type Effect struct {
	// Pure is set when this Effect is just a lifted value (`pure x`).
	Pure   Value
	IsPure bool
	Block  *kernel.Block
	Env    *Env
}

func (e *Effect) Type() string   { return "Effect" }
func (e *Effect) String() string { return "<effect>" }

// Resource is the result of evaluating a `resource { ... }` block up to
// its `yield`: the yielded value plus a cleanup Effect that runs the
// remaining items in reverse order with cancellation masked.
type Resource struct {
	Yielded Value
	Cleanup *Effect
}

func (r *Resource) Type() string   { return "Resource" }
func (r *Resource) String() string { return "<resource>" }

// ChanEnd is one end of a channel: both ends share Chan, and IsSender
// tells the sending end from the receiving one (spec §4.8 "channel").
type ChanEnd struct {
	Chan    *ChannelState
	IsSender bool
}

func (c *ChanEnd) Type() string {
	if c.IsSender {
		return "Sender"
	}
	return "Receiver"
}
func (c *ChanEnd) String() string { return "<" + c.Type() + ">" }

// ChannelState is the shared, internally-synchronized queue backing a
// channel pair.
type ChannelState struct {
	Ch     chan Value
	Closed chan struct{}
	once   bool
}

// Handle is an opaque native resource — file, socket, HTTP server,
// WebSocket, stream chunker — identified by a Kind tag and carrying
// whatever Go value actually backs it (an *os.File, net.Conn, etc).
type Handle struct {
	Kind string
	Impl any
}

func (h *Handle) Type() string   { return h.Kind }
func (h *Handle) String() string { return fmt.Sprintf("<%s>", h.Kind) }

// Truthy reports a value's use as an `if`/`when` condition.
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return ok && b.Value
}

// Equal implements AIVI's structural value equality, used by `==`,
// pattern literal matching, and Record/List comparisons.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Unit:
		_, ok := b.(Unit)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Int:
		if bv, ok := b.(Int); ok {
			return av.Value == bv.Value
		}
		if bv, ok := b.(Float); ok {
			return float64(av.Value) == bv.Value
		}
		return false
	case Float:
		if bv, ok := b.(Float); ok {
			return av.Value == bv.Value
		}
		if bv, ok := b.(Int); ok {
			return av.Value == float64(bv.Value)
		}
		return false
	case Text:
		bv, ok := b.(Text)
		return ok && av.Value == bv.Value
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for k, v := range av.Fields {
			ov, ok := bv.Fields[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	case *Constructor:
		bv, ok := b.(*Constructor)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && string(av.Value) == string(bv.Value)
	default:
		return false
	}
}
