package builtins

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sunholo/aivi/internal/eval"
	"golang.org/x/text/unicode/norm"
)

// text implements spec §6 "text": length/isEmpty/case predicates/search/
// slice/split/trim/pad/replace/case-conversion/Unicode normalization
// (golang.org/x/text, the original compiler's own dependency) /byte encoding/
// debugText/parseInt/parseFloat. Strings are rune-indexed throughout,
// matching the original compiler's _str_len/_str_slice UTF-8-aware convention.
func textNamespace() *namespace {
	n := newNamespace()
	n.add("length", 1, textLength)
	n.add("isEmpty", 1, textIsEmpty)
	n.add("contains", 2, textContains)
	n.add("startsWith", 2, textStartsWith)
	n.add("endsWith", 2, textEndsWith)
	n.add("indexOf", 2, textIndexOf)
	n.add("lastIndexOf", 2, textLastIndexOf)
	n.add("count", 2, textCount)
	n.add("compare", 2, textCompare)
	n.add("slice", 3, textSlice)
	n.add("split", 2, textSplit)
	n.add("splitLines", 1, textSplitLines)
	n.add("chunk", 2, textChunk)
	n.add("trim", 1, textTrim)
	n.add("trimStart", 1, textTrimStart)
	n.add("trimEnd", 1, textTrimEnd)
	n.add("padStart", 3, textPadStart)
	n.add("padEnd", 3, textPadEnd)
	n.add("replace", 3, textReplace)
	n.add("replaceAll", 3, textReplaceAll)
	n.add("remove", 2, textRemove)
	n.add("repeat", 2, textRepeat)
	n.add("reverse", 1, textReverse)
	n.add("concat", 2, textConcat)
	n.add("toUpper", 1, textToUpper)
	n.add("toLower", 1, textToLower)
	n.add("nfc", 1, textNFC)
	n.add("nfd", 1, textNFD)
	n.add("nfkc", 1, textNFKC)
	n.add("nfkd", 1, textNFKD)
	n.add("toBytes", 2, textToBytes)
	n.add("fromBytes", 2, textFromBytes)
	n.add("debugText", 1, textDebugText)
	n.add("parseInt", 1, textParseInt)
	n.add("parseFloat", 1, textParseFloat)
	n.add("isUpper", 1, textIsUpperChar)
	n.add("isLower", 1, textIsLowerChar)
	return n
}

func runes(s string) []rune { return []rune(s) }

func textLength(args []eval.Value) (eval.Value, error) {
	s, err := wantText("length", args[0])
	if err != nil {
		return nil, err
	}
	return eval.Int{Value: int64(utf8.RuneCountInString(s))}, nil
}

func textIsEmpty(args []eval.Value) (eval.Value, error) {
	s, err := wantText("isEmpty", args[0])
	if err != nil {
		return nil, err
	}
	return eval.Bool{Value: s == ""}, nil
}

// textIsUpperChar/textIsLowerChar accept a single-rune Text, matching
// spec §6 "case predicates on Char" (AIVI has no separate Char value;
// a one-rune Text stands in for it, same as the original compiler treats runes).
func textIsUpperChar(args []eval.Value) (eval.Value, error) {
	s, err := wantText("isUpper", args[0])
	if err != nil {
		return nil, err
	}
	r, _ := utf8.DecodeRuneInString(s)
	return eval.Bool{Value: unicode.IsUpper(r)}, nil
}

func textIsLowerChar(args []eval.Value) (eval.Value, error) {
	s, err := wantText("isLower", args[0])
	if err != nil {
		return nil, err
	}
	r, _ := utf8.DecodeRuneInString(s)
	return eval.Bool{Value: unicode.IsLower(r)}, nil
}

func textContains(args []eval.Value) (eval.Value, error) {
	s, err := wantText("contains", args[0])
	if err != nil {
		return nil, err
	}
	sub, err := wantText("contains", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Bool{Value: strings.Contains(s, sub)}, nil
}

func textStartsWith(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("startsWith", args[0])
	sub, _ := wantText("startsWith", args[1])
	return eval.Bool{Value: strings.HasPrefix(s, sub)}, nil
}

func textEndsWith(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("endsWith", args[0])
	sub, _ := wantText("endsWith", args[1])
	return eval.Bool{Value: strings.HasSuffix(s, sub)}, nil
}

func textIndexOf(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("indexOf", args[0])
	sub, _ := wantText("indexOf", args[1])
	byteIdx := strings.Index(s, sub)
	if byteIdx < 0 {
		return none(), nil
	}
	return some(eval.Int{Value: int64(utf8.RuneCountInString(s[:byteIdx]))}), nil
}

func textLastIndexOf(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("lastIndexOf", args[0])
	sub, _ := wantText("lastIndexOf", args[1])
	byteIdx := strings.LastIndex(s, sub)
	if byteIdx < 0 {
		return none(), nil
	}
	return some(eval.Int{Value: int64(utf8.RuneCountInString(s[:byteIdx]))}), nil
}

func textCount(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("count", args[0])
	sub, _ := wantText("count", args[1])
	return eval.Int{Value: int64(strings.Count(s, sub))}, nil
}

func textCompare(args []eval.Value) (eval.Value, error) {
	s1, _ := wantText("compare", args[0])
	s2, _ := wantText("compare", args[1])
	return eval.Int{Value: int64(strings.Compare(s1, s2))}, nil
}

func textSlice(args []eval.Value) (eval.Value, error) {
	s, err := wantText("slice", args[0])
	if err != nil {
		return nil, err
	}
	start, err := wantInt("slice", args[1])
	if err != nil {
		return nil, err
	}
	end, err := wantInt("slice", args[2])
	if err != nil {
		return nil, err
	}
	rs := runes(s)
	n := int64(len(rs))
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return eval.Text{Value: ""}, nil
	}
	return eval.Text{Value: string(rs[start:end])}, nil
}

func textSplit(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("split", args[0])
	sep, _ := wantText("split", args[1])
	parts := strings.Split(s, sep)
	items := make([]eval.Value, len(parts))
	for i, p := range parts {
		items[i] = eval.Text{Value: p}
	}
	return &eval.List{Items: items}, nil
}

func textSplitLines(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("splitLines", args[0])
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	items := make([]eval.Value, len(parts))
	for i, p := range parts {
		items[i] = eval.Text{Value: p}
	}
	return &eval.List{Items: items}, nil
}

func textChunk(args []eval.Value) (eval.Value, error) {
	s, err := wantText("chunk", args[0])
	if err != nil {
		return nil, err
	}
	size, err := wantInt("chunk", args[1])
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, argError("chunk", "positive Int size", args[1])
	}
	rs := runes(s)
	var items []eval.Value
	for i := int64(0); i < int64(len(rs)); i += size {
		end := i + size
		if end > int64(len(rs)) {
			end = int64(len(rs))
		}
		items = append(items, eval.Text{Value: string(rs[i:end])})
	}
	return &eval.List{Items: items}, nil
}

func textTrim(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("trim", args[0])
	return eval.Text{Value: strings.TrimSpace(s)}, nil
}

func textTrimStart(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("trimStart", args[0])
	return eval.Text{Value: strings.TrimLeft(s, " \t\n\r")}, nil
}

func textTrimEnd(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("trimEnd", args[0])
	return eval.Text{Value: strings.TrimRight(s, " \t\n\r")}, nil
}

func pad(s string, width int64, padStr string, atStart bool) string {
	n := int64(utf8.RuneCountInString(s))
	if n >= width || padStr == "" {
		return s
	}
	padRunes := runes(padStr)
	var b strings.Builder
	for i := int64(0); i < width-n; i++ {
		b.WriteRune(padRunes[i%int64(len(padRunes))])
	}
	if atStart {
		return b.String() + s
	}
	return s + b.String()
}

func textPadStart(args []eval.Value) (eval.Value, error) {
	s, err := wantText("padStart", args[0])
	if err != nil {
		return nil, err
	}
	width, err := wantInt("padStart", args[1])
	if err != nil {
		return nil, err
	}
	padStr, err := wantText("padStart", args[2])
	if err != nil {
		return nil, err
	}
	return eval.Text{Value: pad(s, width, padStr, true)}, nil
}

func textPadEnd(args []eval.Value) (eval.Value, error) {
	s, err := wantText("padEnd", args[0])
	if err != nil {
		return nil, err
	}
	width, err := wantInt("padEnd", args[1])
	if err != nil {
		return nil, err
	}
	padStr, err := wantText("padEnd", args[2])
	if err != nil {
		return nil, err
	}
	return eval.Text{Value: pad(s, width, padStr, false)}, nil
}

func textReplace(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("replace", args[0])
	old, _ := wantText("replace", args[1])
	new_, _ := wantText("replace", args[2])
	return eval.Text{Value: strings.Replace(s, old, new_, 1)}, nil
}

func textReplaceAll(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("replaceAll", args[0])
	old, _ := wantText("replaceAll", args[1])
	new_, _ := wantText("replaceAll", args[2])
	return eval.Text{Value: strings.ReplaceAll(s, old, new_)}, nil
}

func textRemove(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("remove", args[0])
	sub, _ := wantText("remove", args[1])
	return eval.Text{Value: strings.ReplaceAll(s, sub, "")}, nil
}

func textRepeat(args []eval.Value) (eval.Value, error) {
	s, err := wantText("repeat", args[0])
	if err != nil {
		return nil, err
	}
	n, err := wantInt("repeat", args[1])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, argError("repeat", "non-negative Int", args[1])
	}
	return eval.Text{Value: strings.Repeat(s, int(n))}, nil
}

func textReverse(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("reverse", args[0])
	rs := runes(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return eval.Text{Value: string(rs)}, nil
}

func textConcat(args []eval.Value) (eval.Value, error) {
	s1, _ := wantText("concat", args[0])
	s2, _ := wantText("concat", args[1])
	return eval.Text{Value: s1 + s2}, nil
}

func textToUpper(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("toUpper", args[0])
	return eval.Text{Value: strings.ToUpper(s)}, nil
}

func textToLower(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("toLower", args[0])
	return eval.Text{Value: strings.ToLower(s)}, nil
}

func textNFC(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("nfc", args[0])
	return eval.Text{Value: norm.NFC.String(s)}, nil
}

func textNFD(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("nfd", args[0])
	return eval.Text{Value: norm.NFD.String(s)}, nil
}

func textNFKC(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("nfkc", args[0])
	return eval.Text{Value: norm.NFKC.String(s)}, nil
}

func textNFKD(args []eval.Value) (eval.Value, error) {
	s, _ := wantText("nfkd", args[0])
	return eval.Text{Value: norm.NFKD.String(s)}, nil
}

// encodeText encodes s into bytes in the named Encoding variant
// (spec §6 "Encoding ∈ {Utf8, Utf16, Utf32, Latin1}").
func encodeText(s, enc string) ([]byte, error) {
	switch enc {
	case "Utf8":
		return []byte(s), nil
	case "Utf16":
		out := make([]byte, 0, len(s)*2)
		for _, r := range s {
			if r > 0xFFFF {
				r1, r2 := utf16Surrogates(r)
				out = append(out, byte(r1>>8), byte(r1), byte(r2>>8), byte(r2))
				continue
			}
			out = append(out, byte(r>>8), byte(r))
		}
		return out, nil
	case "Utf32":
		out := make([]byte, 0, len(s)*4)
		for _, r := range s {
			out = append(out, byte(r>>24), byte(r>>16), byte(r>>8), byte(r))
		}
		return out, nil
	case "Latin1":
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xFF {
				return nil, argError("toBytes", "Latin1-representable Text", eval.Text{Value: s})
			}
			out = append(out, byte(r))
		}
		return out, nil
	}
	return nil, argError("toBytes", "Encoding", eval.Text{Value: enc})
}

func utf16Surrogates(r rune) (uint16, uint16) {
	r -= 0x10000
	return uint16(0xD800 + (r >> 10)), uint16(0xDC00 + (r & 0x3FF))
}

func encodingName(v eval.Value) (string, error) {
	c, ok := v.(*eval.Constructor)
	if !ok {
		return "", argError("toBytes", "Encoding", v)
	}
	return c.Name, nil
}

func textToBytes(args []eval.Value) (eval.Value, error) {
	s, err := wantText("toBytes", args[0])
	if err != nil {
		return nil, err
	}
	enc, err := encodingName(args[1])
	if err != nil {
		return nil, err
	}
	b, err := encodeText(s, enc)
	if err != nil {
		return nil, err
	}
	return eval.Bytes{Value: b}, nil
}

func textFromBytes(args []eval.Value) (eval.Value, error) {
	b, ok := args[0].(eval.Bytes)
	if !ok {
		return nil, argError("fromBytes", "Bytes", args[0])
	}
	enc, err := encodingName(args[1])
	if err != nil {
		return nil, err
	}
	switch enc {
	case "Utf8":
		return eval.Text{Value: string(b.Value)}, nil
	case "Latin1":
		rs := make([]rune, len(b.Value))
		for i, c := range b.Value {
			rs[i] = rune(c)
		}
		return eval.Text{Value: string(rs)}, nil
	case "Utf16", "Utf32":
		return nil, argError("fromBytes", "Utf8 or Latin1 (decode not yet supported)", eval.Text{Value: enc})
	}
	return nil, argError("fromBytes", "Encoding", args[1])
}

// textDebugText renders any value for display (debugging/tracing), with
// depth limiting and middle elision for very long output — grounded on
// the original compiler's internal/builtins/show.go showValue, adapted to AIVI's
// value set.
func textDebugText(args []eval.Value) (eval.Value, error) {
	return eval.Text{Value: debugString(args[0], 0)}, nil
}

const (
	debugMaxDepth = 3
	debugMaxWidth = 80
)

func debugString(v eval.Value, depth int) string {
	if depth > debugMaxDepth {
		return "..."
	}
	switch val := v.(type) {
	case eval.Unit:
		return "()"
	case eval.Bool, eval.Int, eval.Float, eval.Text, eval.DateTime, eval.BigInt, eval.Rational, eval.Decimal:
		return val.String()
	case *eval.List:
		parts := make([]string, len(val.Items))
		for i, e := range val.Items {
			parts[i] = debugString(e, depth+1)
		}
		return truncateDebug("[" + strings.Join(parts, ", ") + "]")
	case *eval.Tuple:
		parts := make([]string, len(val.Items))
		for i, e := range val.Items {
			parts[i] = debugString(e, depth+1)
		}
		return truncateDebug("(" + strings.Join(parts, ", ") + ")")
	case *eval.Record:
		keys := append([]string{}, val.Order...)
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + debugString(val.Fields[k], depth+1)
		}
		return truncateDebug("{" + strings.Join(parts, ", ") + "}")
	case *eval.Constructor:
		if len(val.Args) == 0 {
			return val.Name
		}
		parts := make([]string, len(val.Args))
		for i, a := range val.Args {
			parts[i] = debugString(a, depth+1)
		}
		return val.Name + "(" + strings.Join(parts, ", ") + ")"
	case *eval.Closure, *eval.Builtin:
		return "<function>"
	default:
		return v.String()
	}
}

func truncateDebug(s string) string {
	if len(s) <= debugMaxWidth {
		return s
	}
	const prefix, suffix = 20, 20
	if prefix+suffix+3 >= len(s) {
		return s
	}
	return s[:prefix] + "..." + s[len(s)-suffix:]
}

func textParseInt(args []eval.Value) (eval.Value, error) {
	s, err := wantText("parseInt", args[0])
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return errV(eval.Text{Value: "invalid integer: " + s}), nil
	}
	return ok(eval.Int{Value: n}), nil
}

func textParseFloat(args []eval.Value) (eval.Value, error) {
	s, err := wantText("parseFloat", args[0])
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errV(eval.Text{Value: "invalid float: " + s}), nil
	}
	return ok(eval.Float{Value: f}), nil
}
