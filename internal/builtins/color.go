package builtins

import (
	"fmt"
	"math"

	"github.com/sunholo/aivi/internal/eval"
)

// color: HSL adjustment plus RGB/HSL/hex conversion. Stdlib-only (no pack
// library offers HSL color math; colors are plain { r, g, b } / { h, s, l }
// records, not a dedicated Value type).
func colorNamespace() *namespace {
	n := newNamespace()
	n.add("adjustLightness", 2, colorAdjustLightness)
	n.add("adjustSaturation", 2, colorAdjustSaturation)
	n.add("adjustHue", 2, colorAdjustHue)
	n.add("toRgb", 1, colorToRgb)
	n.add("toHsl", 1, colorToHsl)
	n.add("toHex", 1, colorToHex)
	return n
}

type hsl struct{ h, s, l float64 }
type rgb struct{ r, g, b float64 } // 0..1

func recordToHSL(fname string, v eval.Value) (hsl, error) {
	rec, err := wantRecord(fname, v)
	if err != nil {
		return hsl{}, err
	}
	h, err := wantFloat(fname, rec.Fields["h"])
	if err != nil {
		return hsl{}, err
	}
	s, err := wantFloat(fname, rec.Fields["s"])
	if err != nil {
		return hsl{}, err
	}
	l, err := wantFloat(fname, rec.Fields["l"])
	if err != nil {
		return hsl{}, err
	}
	return hsl{h, s, l}, nil
}

func hslToRecord(c hsl) eval.Value {
	rec := eval.NewRecord()
	rec = rec.With("h", eval.Float{Value: c.h})
	rec = rec.With("s", eval.Float{Value: c.s})
	rec = rec.With("l", eval.Float{Value: c.l})
	return rec
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func colorAdjustLightness(args []eval.Value) (eval.Value, error) {
	c, err := recordToHSL("adjustLightness", args[0])
	if err != nil {
		return nil, err
	}
	delta, err := wantFloat("adjustLightness", args[1])
	if err != nil {
		return nil, err
	}
	c.l = clamp01(c.l + delta)
	return hslToRecord(c), nil
}

func colorAdjustSaturation(args []eval.Value) (eval.Value, error) {
	c, err := recordToHSL("adjustSaturation", args[0])
	if err != nil {
		return nil, err
	}
	delta, err := wantFloat("adjustSaturation", args[1])
	if err != nil {
		return nil, err
	}
	c.s = clamp01(c.s + delta)
	return hslToRecord(c), nil
}

func colorAdjustHue(args []eval.Value) (eval.Value, error) {
	c, err := recordToHSL("adjustHue", args[0])
	if err != nil {
		return nil, err
	}
	delta, err := wantFloat("adjustHue", args[1])
	if err != nil {
		return nil, err
	}
	c.h = math.Mod(math.Mod(c.h+delta, 360)+360, 360)
	return hslToRecord(c), nil
}

func hslToRgb(c hsl) rgb {
	h, s, l := c.h/360, c.s, c.l
	if s == 0 {
		return rgb{l, l, l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return rgb{hueToRgb(p, q, h+1.0/3), hueToRgb(p, q, h), hueToRgb(p, q, h-1.0/3)}
}

func hueToRgb(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func rgbToHsl(c rgb) hsl {
	max := math.Max(c.r, math.Max(c.g, c.b))
	min := math.Min(c.r, math.Min(c.g, c.b))
	l := (max + min) / 2
	if max == min {
		return hsl{0, 0, l}
	}
	d := max - min
	var s float64
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	var h float64
	switch max {
	case c.r:
		h = (c.g - c.b) / d
		if c.g < c.b {
			h += 6
		}
	case c.g:
		h = (c.b-c.r)/d + 2
	case c.b:
		h = (c.r-c.g)/d + 4
	}
	h *= 60
	return hsl{h, s, l}
}

func colorToRgb(args []eval.Value) (eval.Value, error) {
	c, err := recordToHSL("toRgb", args[0])
	if err != nil {
		return nil, err
	}
	out := hslToRgb(c)
	rec := eval.NewRecord()
	rec = rec.With("r", eval.Int{Value: int64(math.Round(out.r * 255))})
	rec = rec.With("g", eval.Int{Value: int64(math.Round(out.g * 255))})
	rec = rec.With("b", eval.Int{Value: int64(math.Round(out.b * 255))})
	return rec, nil
}

func colorToHsl(args []eval.Value) (eval.Value, error) {
	rec, err := wantRecord("toHsl", args[0])
	if err != nil {
		return nil, err
	}
	r, err := wantInt("toHsl", rec.Fields["r"])
	if err != nil {
		return nil, err
	}
	g, err := wantInt("toHsl", rec.Fields["g"])
	if err != nil {
		return nil, err
	}
	b, err := wantInt("toHsl", rec.Fields["b"])
	if err != nil {
		return nil, err
	}
	return hslToRecord(rgbToHsl(rgb{float64(r) / 255, float64(g) / 255, float64(b) / 255})), nil
}

func colorToHex(args []eval.Value) (eval.Value, error) {
	c, err := recordToHSL("toHex", args[0])
	if err != nil {
		return nil, err
	}
	out := hslToRgb(c)
	hex := fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(out.r*255)), int(math.Round(out.g*255)), int(math.Round(out.b*255)))
	return eval.Text{Value: hex}, nil
}
