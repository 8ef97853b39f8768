package builtins

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sunholo/aivi/internal/eval"
)

// log writes one structured JSON line per call: trace/debug/info to
// stdout, warn/error to stderr (spec §6 "log"). encoding/json is the
// justified stdlib choice here (SPEC_FULL.md §1 "Logging") — this is a
// leaf data format, not a concern any pack library owns more idiomatically.
func logNamespace() *namespace {
	n := newNamespace()
	n.add("trace", 2, logAt("trace", os.Stdout))
	n.add("debug", 2, logAt("debug", os.Stdout))
	n.add("info", 2, logAt("info", os.Stdout))
	n.add("warn", 2, logAt("warn", os.Stderr))
	n.add("error", 2, logAt("error", os.Stderr))
	return n
}

type logLine struct {
	Time  string         `json:"time"`
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Data  map[string]any `json:"data,omitempty"`
}

func valueToJSON(v eval.Value) any {
	switch val := v.(type) {
	case eval.Unit:
		return nil
	case eval.Bool:
		return val.Value
	case eval.Int:
		return val.Value
	case eval.Float:
		return val.Value
	case eval.Text:
		return val.Value
	case *eval.List:
		out := make([]any, len(val.Items))
		for i, e := range val.Items {
			out[i] = valueToJSON(e)
		}
		return out
	case *eval.Record:
		out := make(map[string]any, len(val.Fields))
		for k, v := range val.Fields {
			out[k] = valueToJSON(v)
		}
		return out
	case *eval.Constructor:
		if len(val.Args) == 0 {
			return val.Name
		}
		args := make([]any, len(val.Args))
		for i, a := range val.Args {
			args[i] = valueToJSON(a)
		}
		return map[string]any{val.Name: args}
	default:
		return val.String()
	}
}

func logAt(level string, w *os.File) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		msg, err := wantText("log."+level, args[0])
		if err != nil {
			return nil, err
		}
		rec, err := wantRecord("log."+level, args[1])
		if err != nil {
			return nil, err
		}
		data := make(map[string]any, len(rec.Fields))
		for k, v := range rec.Fields {
			data[k] = valueToJSON(v)
		}
		line := logLine{Time: time.Now().UTC().Format(time.RFC3339Nano), Level: level, Msg: msg, Data: data}
		enc, err := json.Marshal(line)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(w, string(enc))
		return eval.Unit{}, nil
	}
}
