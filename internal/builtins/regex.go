package builtins

import (
	"regexp"

	"github.com/sunholo/aivi/internal/eval"
)

// regex wraps stdlib regexp (Go's RE2 engine has no pack alternative —
// justified stdlib use, the same choice the original compiler made for its own
// string builtins). Match = { full, groups: List (Option Text), start, end }.
func regexNamespace() *namespace {
	n := newNamespace()
	n.add("compile", 1, regexCompile)
	n.add("test", 2, regexTest)
	n.add("match", 2, regexMatch)
	n.add("matches", 2, regexMatches)
	n.add("find", 2, regexFind)
	n.add("findAll", 2, regexFindAll)
	n.add("split", 2, regexSplit)
	n.add("replace", 3, regexReplace)
	n.add("replaceAll", 3, regexReplaceAll)
	return n
}

func wantRegex(fname string, v eval.Value) (*eval.Regex, error) {
	r, ok := v.(*eval.Regex)
	if !ok {
		return nil, argError(fname, "Regex", v)
	}
	return r, nil
}

func regexCompile(args []eval.Value) (eval.Value, error) {
	src, err := wantText("compile", args[0])
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return errV(eval.Text{Value: err.Error()}), nil
	}
	return ok(&eval.Regex{Source: src, Re: re}), nil
}

func regexTest(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("test", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("test", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Bool{Value: re.Re.MatchString(s)}, nil
}

// matchRecord builds the { full, groups, start, end } record spec §6
// requires for a single regexp.SubmatchIndex result.
func matchRecord(s string, idx []int) eval.Value {
	full := s[idx[0]:idx[1]]
	var groups []eval.Value
	for i := 2; i < len(idx); i += 2 {
		if idx[i] < 0 {
			groups = append(groups, none())
			continue
		}
		groups = append(groups, some(eval.Text{Value: s[idx[i]:idx[i+1]]}))
	}
	rec := eval.NewRecord()
	rec = rec.With("full", eval.Text{Value: full})
	rec = rec.With("groups", &eval.List{Items: groups})
	rec = rec.With("start", eval.Int{Value: int64(idx[0])})
	rec = rec.With("end", eval.Int{Value: int64(idx[1])})
	return rec
}

func regexMatch(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("match", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("match", args[1])
	if err != nil {
		return nil, err
	}
	idx := re.Re.FindStringSubmatchIndex(s)
	if idx == nil {
		return none(), nil
	}
	return some(matchRecord(s, idx)), nil
}

func regexMatches(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("matches", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("matches", args[1])
	if err != nil {
		return nil, err
	}
	all := re.Re.FindAllStringSubmatchIndex(s, -1)
	items := make([]eval.Value, len(all))
	for i, idx := range all {
		items[i] = matchRecord(s, idx)
	}
	return &eval.List{Items: items}, nil
}

func regexFind(args []eval.Value) (eval.Value, error) {
	return regexMatch(args)
}

func regexFindAll(args []eval.Value) (eval.Value, error) {
	return regexMatches(args)
}

func regexSplit(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("split", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("split", args[1])
	if err != nil {
		return nil, err
	}
	parts := re.Re.Split(s, -1)
	items := make([]eval.Value, len(parts))
	for i, p := range parts {
		items[i] = eval.Text{Value: p}
	}
	return &eval.List{Items: items}, nil
}

func regexReplace(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("replace", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("replace", args[1])
	if err != nil {
		return nil, err
	}
	repl, err := wantText("replace", args[2])
	if err != nil {
		return nil, err
	}
	idx := re.Re.FindStringIndex(s)
	if idx == nil {
		return eval.Text{Value: s}, nil
	}
	replaced := re.Re.ReplaceAllString(s[idx[0]:idx[1]], repl)
	return eval.Text{Value: s[:idx[0]] + replaced + s[idx[1]:]}, nil
}

func regexReplaceAll(args []eval.Value) (eval.Value, error) {
	re, err := wantRegex("replaceAll", args[0])
	if err != nil {
		return nil, err
	}
	s, err := wantText("replaceAll", args[1])
	if err != nil {
		return nil, err
	}
	repl, err := wantText("replaceAll", args[2])
	if err != nil {
		return nil, err
	}
	return eval.Text{Value: re.Re.ReplaceAllString(s, repl)}, nil
}
