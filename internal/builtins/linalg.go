package builtins

import (
	"github.com/sunholo/aivi/internal/eval"
)

// linalg: dot/matMul/solve2x2. Stdlib-only numeric code, grounded on
// original_source/.../runtime/builtins/linalg.rs (no pack library offers
// small dense linear algebra worth the dependency weight).
func linalgNamespace() *namespace {
	n := newNamespace()
	n.add("dot", 2, linalgDot)
	n.add("matMul", 2, linalgMatMul)
	n.add("solve2x2", 2, linalgSolve2x2)
	return n
}

func floatVec(fname string, v eval.Value) ([]float64, error) {
	l, err := wantList(fname, v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(l.Items))
	for i, e := range l.Items {
		f, err := wantFloat(fname, e)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func floatMatrix(fname string, v eval.Value) ([][]float64, error) {
	l, err := wantList(fname, v)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(l.Items))
	for i, row := range l.Items {
		r, err := floatVec(fname, row)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func linalgDot(args []eval.Value) (eval.Value, error) {
	a, err := floatVec("dot", args[0])
	if err != nil {
		return nil, err
	}
	b, err := floatVec("dot", args[1])
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, argError("dot", "vectors of equal length", args[1])
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return eval.Float{Value: sum}, nil
}

func linalgMatMul(args []eval.Value) (eval.Value, error) {
	a, err := floatMatrix("matMul", args[0])
	if err != nil {
		return nil, err
	}
	b, err := floatMatrix("matMul", args[1])
	if err != nil {
		return nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, argError("matMul", "non-empty matrices", args[0])
	}
	if len(a[0]) != len(b) {
		return nil, argError("matMul", "matrices with matching inner dimension", args[1])
	}
	rows, inner, cols := len(a), len(b), len(b[0])
	result := make([]eval.Value, rows)
	for i := 0; i < rows; i++ {
		if len(a[i]) != inner {
			return nil, argError("matMul", "rectangular matrix", args[0])
		}
		row := make([]eval.Value, cols)
		for j := 0; j < cols; j++ {
			var sum float64
			for k := 0; k < inner; k++ {
				sum += a[i][k] * b[k][j]
			}
			row[j] = eval.Float{Value: sum}
		}
		result[i] = &eval.List{Items: row}
	}
	return &eval.List{Items: result}, nil
}

// linalgSolve2x2 solves [[a,b],[c,d]] x = [e,f] via Cramer's rule.
func linalgSolve2x2(args []eval.Value) (eval.Value, error) {
	m, err := floatMatrix("solve2x2", args[0])
	if err != nil {
		return nil, err
	}
	rhs, err := floatVec("solve2x2", args[1])
	if err != nil {
		return nil, err
	}
	if len(m) != 2 || len(m[0]) != 2 || len(m[1]) != 2 || len(rhs) != 2 {
		return nil, argError("solve2x2", "2x2 matrix and 2-vector", args[0])
	}
	a, b, c, d := m[0][0], m[0][1], m[1][0], m[1][1]
	e, f := rhs[0], rhs[1]
	det := a*d - b*c
	if det == 0 {
		return errV(eval.Text{Value: "singular matrix: zero determinant"}), nil
	}
	x := (e*d - b*f) / det
	y := (a*f - e*c) / det
	return ok(&eval.List{Items: []eval.Value{eval.Float{Value: x}, eval.Float{Value: y}}}), nil
}
