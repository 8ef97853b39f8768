package builtins

import (
	"math"
	"math/cmplx"

	"github.com/sunholo/aivi/internal/eval"
)

// signal: fft/ifft/windowHann/normalize, pinned to
// original_source/.../stdlib/signal.rs semantics (ifft normalises by N,
// normalize divides by peak absolute value and passes a zero signal
// through unchanged). A plain O(n^2) DFT is used rather than a radix-2
// FFT — the contract only promises complex bins in/out, not a particular
// algorithm, and no pack library supplies one worth the dependency.
func signalNamespace() *namespace {
	n := newNamespace()
	n.add("fft", 1, signalFFT)
	n.add("ifft", 1, signalIFFT)
	n.add("windowHann", 1, signalWindowHann)
	n.add("normalize", 1, signalNormalize)
	return n
}

func complexVec(fname string, v eval.Value) ([]complex128, error) {
	l, err := wantList(fname, v)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(l.Items))
	for i, item := range l.Items {
		switch c := item.(type) {
		case eval.Float:
			out[i] = complex(c.Value, 0)
		case eval.Int:
			out[i] = complex(float64(c.Value), 0)
		case *eval.Tuple:
			if len(c.Items) != 2 {
				return nil, argError(fname, "{re, im} pair", item)
			}
			re, err := wantFloat(fname, c.Items[0])
			if err != nil {
				return nil, err
			}
			im, err := wantFloat(fname, c.Items[1])
			if err != nil {
				return nil, err
			}
			out[i] = complex(re, im)
		default:
			return nil, argError(fname, "Float or {re, im} Tuple", item)
		}
	}
	return out, nil
}

func complexToValues(v []complex128) eval.Value {
	items := make([]eval.Value, len(v))
	for i, c := range v {
		items[i] = &eval.Tuple{Items: []eval.Value{eval.Float{Value: real(c)}, eval.Float{Value: imag(c)}}}
	}
	return &eval.List{Items: items}
}

func dft(in []complex128, invert bool) []complex128 {
	n := len(in)
	out := make([]complex128, n)
	sign := -1.0
	if invert {
		sign = 1.0
	}
	for k := 0; k < n; k++ {
		var sum complex128
		for t := 0; t < n; t++ {
			angle := sign * 2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += in[t] * cmplx.Exp(complex(0, angle))
		}
		out[k] = sum
	}
	return out
}

func signalFFT(args []eval.Value) (eval.Value, error) {
	in, err := complexVec("fft", args[0])
	if err != nil {
		return nil, err
	}
	return complexToValues(dft(in, false)), nil
}

func signalIFFT(args []eval.Value) (eval.Value, error) {
	in, err := complexVec("ifft", args[0])
	if err != nil {
		return nil, err
	}
	out := dft(in, true)
	n := float64(len(out))
	if n > 0 {
		for i := range out {
			out[i] /= complex(n, 0)
		}
	}
	return complexToValues(out), nil
}

func signalWindowHann(args []eval.Value) (eval.Value, error) {
	in, err := floatVec("windowHann", args[0])
	if err != nil {
		return nil, err
	}
	n := len(in)
	out := make([]eval.Value, n)
	for i, x := range in {
		var w float64
		if n > 1 {
			w = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		} else {
			w = 1
		}
		out[i] = eval.Float{Value: x * w}
	}
	return &eval.List{Items: out}, nil
}

func signalNormalize(args []eval.Value) (eval.Value, error) {
	in, err := floatVec("normalize", args[0])
	if err != nil {
		return nil, err
	}
	peak := 0.0
	for _, x := range in {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	out := make([]eval.Value, len(in))
	if peak == 0 {
		for i, x := range in {
			out[i] = eval.Float{Value: x}
		}
		return &eval.List{Items: out}, nil
	}
	for i, x := range in {
		out[i] = eval.Float{Value: x / peak}
	}
	return &eval.List{Items: out}, nil
}
