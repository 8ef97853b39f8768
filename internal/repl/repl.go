// Package repl implements the interactive `aivi repl` shell: a liner-backed
// read-eval-print loop that threads every line through the same
// internal/pipeline the non-interactive `aivi run` command uses, so REPL
// semantics never drift from batch semantics.
//
// Grounded on the original compiler's internal/repl (liner + fatih/color prompt,
// `:`-prefixed command dispatch, a capability-annotated prompt string),
// rebuilt against internal/pipeline and internal/eval instead of the
// original compiler's internal/core.CoreEvaluator and internal/types type-class
// machinery, which this repo's type checker does not carry.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/parser"
	"github.com/sunholo/aivi/internal/pipeline"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

const sessionModule = "repl"

// REPL is one interactive session: accumulated definitions, granted
// capabilities, and the trace flag `:trace` toggles.
type REPL struct {
	defs      []string // accumulated `name = expr` lines, in entry order
	caps      map[string]bool
	trace     bool
	version   string
	buildTime string
	history   []string
}

// New creates a REPL with no version metadata.
func New() *REPL { return NewWithVersion("", "") }

// NewWithVersion creates a REPL reporting version/buildTime in its banner.
func NewWithVersion(version, buildTime string) *REPL {
	if version == "" {
		version = "dev"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return &REPL{
		caps:      map[string]bool{"IO": true},
		version:   version,
		buildTime: buildTime,
	}
}

// EnableTrace turns on kernel-evaluation tracing for every line evaluated
// from here on.
func (r *REPL) EnableTrace() { r.trace = true }

func (r *REPL) getPrompt() string {
	if len(r.caps) == 0 {
		return "aivi> "
	}
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("aivi[%s]> ", strings.Join(names, ","))
}

// Start runs the read-eval-print loop against in/out until EOF or `:quit`.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".aivi_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("AIVI"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if !strings.HasPrefix(input, ":") {
			return nil
		}
		for _, cmd := range commandNames {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return c
	})

	for {
		input, err := line.Prompt(r.getPrompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if input == ":quit" || input == ":q" || input == ":exit" {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// evalLine decides whether input is a new top-level definition or a bare
// expression, then runs the accumulated session through internal/pipeline.
func (r *REPL) evalLine(input string, out io.Writer) {
	if looksLikeDef(input) {
		candidate := append(append([]string{}, r.defs...), input)
		if _, _, err := r.compile(candidate, "main = Unit"); err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.defs = candidate
		fmt.Fprintf(out, "%s\n", green("defined "+defName(input)))
		return
	}

	res, rootName, err := r.compile(r.defs, "main = "+input)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	cfg := pipeline.Config{Mode: pipeline.ModeRun, Trace: r.trace, Caps: r.capList()}
	modules := map[string]*ast.Module{rootName: res}
	result, err := pipeline.Run(cfg, modules, rootName)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	fmt.Fprintf(out, "%s %v\n", yellow("=>"), result.Value)
}

// compile parses the accumulated defs plus an extra line as one module and
// type-checks it (ModeCheck), returning the parsed module and its name.
func (r *REPL) compile(defs []string, extra string) (*ast.Module, string, error) {
	src := "module " + sessionModule + "\n" + strings.Join(defs, "\n") + "\n" + extra + "\n"
	mod, diags := parser.Parse(src, "<repl>")
	if diag.HasErrors(diags) {
		return nil, "", fmt.Errorf("%s", firstError(diags))
	}
	modules := map[string]*ast.Module{sessionModule: mod}
	res, err := pipeline.Run(pipeline.Config{Mode: pipeline.ModeCheck}, modules, sessionModule)
	if err != nil {
		return nil, "", err
	}
	_ = res
	return mod, sessionModule, nil
}

func (r *REPL) capList() []string {
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	return names
}

// looksLikeDef reports whether a REPL line reads as `name args = expr`
// rather than a bare expression: an `=` not part of `==`, `!=`, `<=`, `>=`
// appearing before the first top-level operator.
func looksLikeDef(input string) bool {
	for i := 0; i < len(input); i++ {
		if input[i] != '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(input[i-1])) {
			continue
		}
		if i+1 < len(input) && input[i+1] == '=' {
			continue
		}
		return i > 0
	}
	return false
}

func firstError(diags []diag.Diagnostic) string {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return d.Message
		}
	}
	return "parse error"
}

func defName(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "?"
	}
	return fields[0]
}
