package builtins

import (
	"math"
	"math/big"

	"github.com/sunholo/aivi/internal/eval"
)

// math has no third-party alternative in the pack for its numeric core;
// stdlib math + math/big is the justified choice (factorial/comb/perm
// need arbitrary precision, backed by the BigInt value AIVI already has
// for this exact purpose).
func mathNamespace() *namespace {
	n := newNamespace()
	n.addValue("pi", eval.Float{Value: math.Pi})
	n.addValue("tau", eval.Float{Value: 2 * math.Pi})
	n.addValue("e", eval.Float{Value: math.E})
	n.addValue("inf", eval.Float{Value: math.Inf(1)})
	n.addValue("nan", eval.Float{Value: math.NaN()})
	n.addValue("phi", eval.Float{Value: (1 + math.Sqrt(5)) / 2})
	n.addValue("sqrt2", eval.Float{Value: math.Sqrt2})
	n.addValue("ln2", eval.Float{Value: math.Ln2})
	n.addValue("ln10", eval.Float{Value: math.Log(10)})

	n.add("abs", 1, mAbs)
	n.add("sign", 1, mSign)
	n.add("min", 2, mMin)
	n.add("max", 2, mMax)
	n.add("clamp", 3, mClamp)
	n.add("sum", 1, mSum)

	n.add("floor", 1, unary(math.Floor))
	n.add("ceil", 1, unary(math.Ceil))
	n.add("round", 1, unary(math.Round))
	n.add("trunc", 1, unary(math.Trunc))
	n.add("fract", 1, mFract)
	n.add("modf", 2, mModf)
	n.add("frexp", 1, mFrexp)
	n.add("ldexp", 2, mLdexp)

	n.add("pow", 2, mPow)
	n.add("sqrt", 1, unary(math.Sqrt))
	n.add("cbrt", 1, unary(math.Cbrt))
	n.add("hypot", 2, mHypot)
	n.add("exp", 1, unary(math.Exp))
	n.add("exp2", 1, unary(math.Exp2))
	n.add("expm1", 1, unary(math.Expm1))

	n.add("log", 1, unary(math.Log))
	n.add("log2", 1, unary(math.Log2))
	n.add("log10", 1, unary(math.Log10))
	n.add("log1p", 1, unary(math.Log1p))

	n.add("sin", 1, unary(math.Sin))
	n.add("cos", 1, unary(math.Cos))
	n.add("tan", 1, unary(math.Tan))
	n.add("asin", 1, unary(math.Asin))
	n.add("acos", 1, unary(math.Acos))
	n.add("atan", 1, unary(math.Atan))
	n.add("atan2", 2, mAtan2)
	n.add("sinh", 1, unary(math.Sinh))
	n.add("cosh", 1, unary(math.Cosh))
	n.add("tanh", 1, unary(math.Tanh))

	n.add("gcd", 2, mGcd)
	n.add("lcm", 2, mLcm)
	n.add("factorial", 1, mFactorial)
	n.add("comb", 2, mComb)
	n.add("perm", 2, mPerm)
	n.add("divmod", 2, mDivmod)
	n.add("modPow", 3, mModPow)
	return n
}

func unary(f func(float64) float64) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		x, err := wantFloat("math", args[0])
		if err != nil {
			return nil, err
		}
		return eval.Float{Value: f(x)}, nil
	}
}

func mAbs(args []eval.Value) (eval.Value, error) {
	switch v := args[0].(type) {
	case eval.Int:
		if v.Value < 0 {
			return eval.Int{Value: -v.Value}, nil
		}
		return v, nil
	case eval.Float:
		return eval.Float{Value: math.Abs(v.Value)}, nil
	}
	return nil, argError("abs", "Int or Float", args[0])
}

func mSign(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("sign", args[0])
	if err != nil {
		return nil, err
	}
	switch {
	case x > 0:
		return eval.Int{Value: 1}, nil
	case x < 0:
		return eval.Int{Value: -1}, nil
	default:
		return eval.Int{Value: 0}, nil
	}
}

func mMin(args []eval.Value) (eval.Value, error) {
	a, err := wantFloat("min", args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantFloat("min", args[1])
	if err != nil {
		return nil, err
	}
	if a < b {
		return args[0], nil
	}
	return args[1], nil
}

func mMax(args []eval.Value) (eval.Value, error) {
	a, err := wantFloat("max", args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantFloat("max", args[1])
	if err != nil {
		return nil, err
	}
	if a > b {
		return args[0], nil
	}
	return args[1], nil
}

func mClamp(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("clamp", args[0])
	if err != nil {
		return nil, err
	}
	lo, err := wantFloat("clamp", args[1])
	if err != nil {
		return nil, err
	}
	hi, err := wantFloat("clamp", args[2])
	if err != nil {
		return nil, err
	}
	if x < lo {
		return args[1], nil
	}
	if x > hi {
		return args[2], nil
	}
	return args[0], nil
}

func mSum(args []eval.Value) (eval.Value, error) {
	l, err := wantList("sum", args[0])
	if err != nil {
		return nil, err
	}
	isFloat := false
	var fsum float64
	var isum int64
	for _, v := range l.Items {
		switch n := v.(type) {
		case eval.Int:
			if isFloat {
				fsum += float64(n.Value)
			} else {
				isum += n.Value
			}
		case eval.Float:
			if !isFloat {
				fsum = float64(isum)
				isFloat = true
			}
			fsum += n.Value
		default:
			return nil, argError("sum", "List of Int or Float", v)
		}
	}
	if isFloat {
		return eval.Float{Value: fsum}, nil
	}
	return eval.Int{Value: isum}, nil
}

func mFract(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("fract", args[0])
	if err != nil {
		return nil, err
	}
	_, frac := math.Modf(x)
	return eval.Float{Value: frac}, nil
}

func mModf(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("modf", args[0])
	if err != nil {
		return nil, err
	}
	ip, fp := math.Modf(x)
	return &eval.Tuple{Items: []eval.Value{eval.Float{Value: ip}, eval.Float{Value: fp}}}, nil
}

func mFrexp(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("frexp", args[0])
	if err != nil {
		return nil, err
	}
	frac, exp := math.Frexp(x)
	return &eval.Tuple{Items: []eval.Value{eval.Float{Value: frac}, eval.Int{Value: int64(exp)}}}, nil
}

func mLdexp(args []eval.Value) (eval.Value, error) {
	frac, err := wantFloat("ldexp", args[0])
	if err != nil {
		return nil, err
	}
	exp, err := wantInt("ldexp", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Float{Value: math.Ldexp(frac, int(exp))}, nil
}

func mPow(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("pow", args[0])
	if err != nil {
		return nil, err
	}
	y, err := wantFloat("pow", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Float{Value: math.Pow(x, y)}, nil
}

func mHypot(args []eval.Value) (eval.Value, error) {
	x, err := wantFloat("hypot", args[0])
	if err != nil {
		return nil, err
	}
	y, err := wantFloat("hypot", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Float{Value: math.Hypot(x, y)}, nil
}

func mAtan2(args []eval.Value) (eval.Value, error) {
	y, err := wantFloat("atan2", args[0])
	if err != nil {
		return nil, err
	}
	x, err := wantFloat("atan2", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Float{Value: math.Atan2(y, x)}, nil
}

func mGcd(args []eval.Value) (eval.Value, error) {
	a, err := wantInt("gcd", args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantInt("gcd", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Int{Value: gcd(a, b)}, nil
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func mLcm(args []eval.Value) (eval.Value, error) {
	a, err := wantInt("lcm", args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantInt("lcm", args[1])
	if err != nil {
		return nil, err
	}
	if a == 0 || b == 0 {
		return eval.Int{Value: 0}, nil
	}
	g := gcd(a, b)
	return eval.Int{Value: (a / g) * b}, nil
}

func mFactorial(args []eval.Value) (eval.Value, error) {
	n, err := wantInt("factorial", args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, argError("factorial", "non-negative Int", args[0])
	}
	result := big.NewInt(1)
	for i := int64(2); i <= n; i++ {
		result.Mul(result, big.NewInt(i))
	}
	return eval.BigInt{Value: result}, nil
}

func mComb(args []eval.Value) (eval.Value, error) {
	n, err := wantInt("comb", args[0])
	if err != nil {
		return nil, err
	}
	k, err := wantInt("comb", args[1])
	if err != nil {
		return nil, err
	}
	if k < 0 || k > n {
		return eval.BigInt{Value: big.NewInt(0)}, nil
	}
	num := big.NewInt(1)
	den := big.NewInt(1)
	for i := int64(0); i < k; i++ {
		num.Mul(num, big.NewInt(n-i))
		den.Mul(den, big.NewInt(i+1))
	}
	num.Div(num, den)
	return eval.BigInt{Value: num}, nil
}

func mPerm(args []eval.Value) (eval.Value, error) {
	n, err := wantInt("perm", args[0])
	if err != nil {
		return nil, err
	}
	k, err := wantInt("perm", args[1])
	if err != nil {
		return nil, err
	}
	if k < 0 || k > n {
		return eval.BigInt{Value: big.NewInt(0)}, nil
	}
	result := big.NewInt(1)
	for i := int64(0); i < k; i++ {
		result.Mul(result, big.NewInt(n-i))
	}
	return eval.BigInt{Value: result}, nil
}

func mDivmod(args []eval.Value) (eval.Value, error) {
	a, err := wantInt("divmod", args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantInt("divmod", args[1])
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, argError("divmod", "non-zero divisor", args[1])
	}
	return &eval.Tuple{Items: []eval.Value{eval.Int{Value: a / b}, eval.Int{Value: a % b}}}, nil
}

func mModPow(args []eval.Value) (eval.Value, error) {
	base, err := wantInt("modPow", args[0])
	if err != nil {
		return nil, err
	}
	exp, err := wantInt("modPow", args[1])
	if err != nil {
		return nil, err
	}
	mod, err := wantInt("modPow", args[2])
	if err != nil {
		return nil, err
	}
	result := new(big.Int).Exp(big.NewInt(base), big.NewInt(exp), big.NewInt(mod))
	return eval.BigInt{Value: result}, nil
}
