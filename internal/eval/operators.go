package eval

import (
	"math/big"

	"github.com/sunholo/aivi/internal/kernel"
)

// evalOpApp evaluates a Kernel OpApp: arithmetic and comparison are
// polymorphic over Int/Float with Int promoted on mixed operands,
// `++` concatenates Text or List, `&&`/`||` short-circuit, `??`
// substitutes its right operand when the left is absent (Unit or a
// nullary/`None`-tagged constructor), and unary `-`/`!` negate a
// number/bool (spec §4.7, mirroring the Num/Eq/Ord/domain dispatch
// inferBinary already resolved during type checking — by Kernel time
// the operator is known to apply to a concrete runtime representation,
// so no further dictionary lookup is needed here for the builtin
// cases; a user `domain` override already became an ordinary Call
// during desugaring and never reaches OpApp).
func (it *Interp) evalOpApp(n *kernel.OpApp, env *Env, c *Cancel) (Value, error) {
	if len(n.Operands) == 1 {
		v, err := it.Eval(n.Operands[0], env, c)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, v)
	}
	left, err := it.Eval(n.Operands[0], env, c)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "&&":
		if !Truthy(left) {
			return Bool{Value: false}, nil
		}
		right, err := it.Eval(n.Operands[1], env, c)
		if err != nil {
			return nil, err
		}
		return Bool{Value: Truthy(right)}, nil
	case "||":
		if Truthy(left) {
			return Bool{Value: true}, nil
		}
		right, err := it.Eval(n.Operands[1], env, c)
		if err != nil {
			return nil, err
		}
		return Bool{Value: Truthy(right)}, nil
	case "??":
		if isAbsent(left) {
			return it.Eval(n.Operands[1], env, c)
		}
		return left, nil
	}
	right, err := it.Eval(n.Operands[1], env, c)
	if err != nil {
		return nil, err
	}
	return evalBinary(n.Op, left, right)
}

func isAbsent(v Value) bool {
	if _, ok := v.(Unit); ok {
		return true
	}
	if ctor, ok := v.(*Constructor); ok {
		return ctor.Name == "None"
	}
	return false
}

func evalUnary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		switch n := v.(type) {
		case Int:
			return Int{Value: -n.Value}, nil
		case Float:
			return Float{Value: -n.Value}, nil
		case BigInt:
			return BigInt{Value: new(big.Int).Neg(n.Value)}, nil
		}
	case "!":
		if b, ok := v.(Bool); ok {
			return Bool{Value: !b.Value}, nil
		}
	}
	return nil, NewMessageError("E1914", "bad operand for unary "+op)
}

func evalBinary(op string, l, r Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return arith(op, l, r)
	case "++":
		return concat(l, r)
	case "==":
		return Bool{Value: Equal(l, r)}, nil
	case "!=":
		return Bool{Value: !Equal(l, r)}, nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	}
	return nil, NewMessageError("E1914", "unknown operator "+op)
}

func concat(l, r Value) (Value, error) {
	switch lv := l.(type) {
	case Text:
		rv, ok := r.(Text)
		if !ok {
			return nil, NewMessageError("E1915", "++ operands must both be Text")
		}
		return Text{Value: lv.Value + rv.Value}, nil
	case *List:
		rv, ok := r.(*List)
		if !ok {
			return nil, NewMessageError("E1915", "++ operands must both be List")
		}
		items := append(append([]Value{}, lv.Items...), rv.Items...)
		return &List{Items: items}, nil
	}
	return nil, NewMessageError("E1915", "++ is only defined for Text and List")
}

// numKind picks the representation for a binary numeric op; mixed
// Int/Float arithmetic promotes to Float and asFloat/asBigInt widen an
// operand (spec §4.7 "numeric ops polymorphic over Int/Float with
// promotion rules").
func numKind(l, r Value) string {
	_, lf := l.(Float)
	_, rf := r.(Float)
	if lf || rf {
		return "float"
	}
	_, lb := l.(BigInt)
	_, rb := r.(BigInt)
	if lb || rb {
		return "bigint"
	}
	return "int"
}

func asFloat(v Value) float64 {
	switch n := v.(type) {
	case Int:
		return float64(n.Value)
	case Float:
		return n.Value
	case BigInt:
		f, _ := new(big.Float).SetInt(n.Value).Float64()
		return f
	}
	return 0
}

func asBigInt(v Value) *big.Int {
	switch n := v.(type) {
	case Int:
		return big.NewInt(n.Value)
	case BigInt:
		return n.Value
	}
	return big.NewInt(0)
}

func arith(op string, l, r Value) (Value, error) {
	switch numKind(l, r) {
	case "float":
		lf, rf := asFloat(l), asFloat(r)
		switch op {
		case "+":
			return Float{Value: lf + rf}, nil
		case "-":
			return Float{Value: lf - rf}, nil
		case "*":
			return Float{Value: lf * rf}, nil
		case "/":
			if rf == 0 {
				return nil, NewMessageError("E1916", "division by zero")
			}
			return Float{Value: lf / rf}, nil
		case "%":
			return nil, NewMessageError("E1914", "%% is not defined for Float")
		}
	case "bigint":
		lb, rb := asBigInt(l), asBigInt(r)
		res := new(big.Int)
		switch op {
		case "+":
			res.Add(lb, rb)
		case "-":
			res.Sub(lb, rb)
		case "*":
			res.Mul(lb, rb)
		case "/":
			if rb.Sign() == 0 {
				return nil, NewMessageError("E1916", "division by zero")
			}
			res.Quo(lb, rb)
		case "%":
			if rb.Sign() == 0 {
				return nil, NewMessageError("E1916", "division by zero")
			}
			res.Rem(lb, rb)
		}
		return BigInt{Value: res}, nil
	default:
		li, ri := l.(Int).Value, r.(Int).Value
		switch op {
		case "+":
			return Int{Value: li + ri}, nil
		case "-":
			return Int{Value: li - ri}, nil
		case "*":
			return Int{Value: li * ri}, nil
		case "/":
			if ri == 0 {
				return nil, NewMessageError("E1916", "division by zero")
			}
			return Int{Value: li / ri}, nil
		case "%":
			if ri == 0 {
				return nil, NewMessageError("E1916", "division by zero")
			}
			return Int{Value: li % ri}, nil
		}
	}
	return nil, NewMessageError("E1914", "bad arithmetic operator "+op)
}

func compare(op string, l, r Value) (Value, error) {
	var lt, gt bool
	switch numKind(l, r) {
	case "float", "int":
		lf, rf := asFloat(l), asFloat(r)
		lt, gt = lf < rf, lf > rf
	case "bigint":
		c := asBigInt(l).Cmp(asBigInt(r))
		lt, gt = c < 0, c > 0
	}
	if lt2, lOk := l.(Text); lOk {
		if rt2, rOk := r.(Text); rOk {
			lt, gt = lt2.Value < rt2.Value, lt2.Value > rt2.Value
		}
	}
	switch op {
	case "<":
		return Bool{Value: lt}, nil
	case "<=":
		return Bool{Value: lt || !gt}, nil
	case ">":
		return Bool{Value: gt}, nil
	case ">=":
		return Bool{Value: gt || !lt}, nil
	}
	return nil, NewMessageError("E1914", "unknown comparison "+op)
}
