package repl

import (
	"fmt"
	"io"
	"strings"
)

var commandNames = []string{
	":help", ":quit", ":caps", ":grant", ":reset", ":history", ":trace", ":defs",
}

// handleCommand dispatches a `:`-prefixed REPL command.
func (r *REPL) handleCommand(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]
	switch cmd {
	case ":help":
		fmt.Fprintln(out, dim("Commands:"))
		fmt.Fprintln(out, "  :help            show this message")
		fmt.Fprintln(out, "  :quit, :q        exit the REPL")
		fmt.Fprintln(out, "  :caps            list granted capabilities")
		fmt.Fprintln(out, "  :grant <Name>    grant a capability (IO, FS, Net, ...)")
		fmt.Fprintln(out, "  :reset           clear all accumulated definitions")
		fmt.Fprintln(out, "  :history         show input history")
		fmt.Fprintln(out, "  :trace           toggle kernel evaluation tracing")
		fmt.Fprintln(out, "  :defs            list accumulated definitions")
	case ":caps":
		names := r.capList()
		fmt.Fprintf(out, "%s\n", strings.Join(names, ", "))
	case ":grant":
		if len(fields) < 2 {
			fmt.Fprintf(out, "%s: usage :grant <Name>\n", red("Error"))
			return
		}
		r.caps[fields[1]] = true
		fmt.Fprintf(out, "%s granted %s\n", green("✓"), fields[1])
	case ":reset":
		r.defs = nil
		fmt.Fprintln(out, green("session reset"))
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%4d  %s\n", i+1, h)
		}
	case ":trace":
		r.trace = !r.trace
		fmt.Fprintf(out, "trace: %v\n", r.trace)
	case ":defs":
		for _, d := range r.defs {
			fmt.Fprintln(out, d)
		}
	default:
		fmt.Fprintf(out, "%s: unknown command %s\n", red("Error"), cmd)
	}
}
