// Command aivi is the toolchain entry point: check, run, repl, watch, lsp,
// and mcp subcommands over the internal/pipeline compiler chain.
//
// Grounded on the original compiler's cmd/ailang (one subcommand per verb, a shared
// color-output convention), rewritten against github.com/spf13/cobra
// instead of the original compiler's hand-rolled flag.FlagSet dispatch — cobra is
// the pack-dominant CLI idiom and the original compiler's flag-based main.go predates
// the current internal/eval architecture (it calls an eval.NewSimple that
// no longer exists). Output styling layers
// github.com/charmbracelet/lipgloss over the github.com/fatih/color
// palette internal/repl already uses.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sunholo/aivi/internal/builtins"
	"github.com/sunholo/aivi/internal/config"
	"github.com/sunholo/aivi/internal/emit"
	"github.com/sunholo/aivi/internal/hir"
	"github.com/sunholo/aivi/internal/lsp"
	"github.com/sunholo/aivi/internal/pipeline"
	"github.com/sunholo/aivi/internal/repl"
	"github.com/sunholo/aivi/internal/resolver"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	errStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

var caps []string
var traceFlag bool

func main() {
	root := &cobra.Command{
		Use:   "aivi",
		Short: "AIVI compiler, runtime, and language server",
	}
	root.PersistentFlags().StringSliceVar(&caps, "cap", nil, "grant a runtime capability (IO, FS, Net, ...)")
	root.PersistentFlags().BoolVar(&traceFlag, "trace", false, "enable kernel evaluation tracing")

	root.AddCommand(
		checkCmd(),
		runCmd(),
		replCmd(),
		watchCmd(),
		lspCmd(),
		mcpCmd(),
		emitCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("aivi %s (%s)\n", version, buildTime)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.aivi>",
		Short: "parse, resolve, and type-check a program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, rootName, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Run(pipeline.Config{Mode: pipeline.ModeCheck, Trace: traceFlag, Caps: caps}, modules, rootName)
			reportDiagnostics(res)
			if err != nil {
				return err
			}
			fmt.Println(okStyle.Render("ok"))
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.aivi>",
		Short: "compile and run a program's `main`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, rootName, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			dir := projectDir(args[0])
			config.LoadEnv(dir)

			res, err := pipeline.Run(pipeline.Config{Mode: pipeline.ModeRun, Trace: traceFlag, Caps: caps}, modules, rootName)
			reportDiagnostics(res)
			if err != nil {
				return err
			}
			if res.Value != nil {
				fmt.Println(res.Value)
			}
			return nil
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.NewWithVersion(version, buildTime)
			if traceFlag {
				r.EnableTrace()
			}
			r.Start(os.Stdin, os.Stdout)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file.aivi>",
		Short: "re-run a program every time its module files change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := watcher.Add(projectDir(args[0])); err != nil {
				return err
			}

			runOnce := func() {
				modules, rootName, err := pipeline.Load(args[0])
				if err != nil {
					fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
					return
				}
				res, err := pipeline.Run(pipeline.Config{Mode: pipeline.ModeRun, Trace: traceFlag, Caps: caps}, modules, rootName)
				reportDiagnostics(res)
				if err != nil {
					fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
					return
				}
				if res.Value != nil {
					fmt.Println(res.Value)
				}
			}

			runOnce()
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						fmt.Println(okStyle.Render("--- rerun ---"))
						runOnce()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
				}
			}
		},
	}
}

func lspCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "index a workspace and watch it for changes (language-server backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = wd
			}
			idx := lsp.NewWorkspaceIndex(root)
			stop, err := idx.Watch()
			if err != nil {
				return err
			}
			defer stop()
			fmt.Fprintf(os.Stderr, "aivi lsp: indexed %d file(s) under %s\n", len(idx.Docs), root)
			select {}
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "workspace root to index (default: current directory)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp <file.aivi>",
		Short: "serve @mcp_tool/@mcp_resource decorated definitions over MCP on stdio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, rootName, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Run(pipeline.Config{Mode: pipeline.ModeRun, Caps: caps}, modules, rootName)
			reportDiagnostics(res)
			if err != nil {
				return err
			}
			mcpServer := builtins.ServeMCP(res.Interp, modules, "aivi", version)
			return server.ServeStdio(mcpServer)
		},
	}
}

func emitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit <file.aivi>",
		Short: "desugar a program to HIR and print its stable textual form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, rootName, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			resolved, diags := resolver.Resolve(modules, rootName)
			if len(diags) > 0 {
				return fmt.Errorf("resolution failed")
			}
			hirProg, hirDiags := hir.Desugar(modules, resolved)
			if len(hirDiags) > 0 {
				return fmt.Errorf("desugaring failed")
			}
			out, err := emit.Emit(hirProg)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func reportDiagnostics(res *pipeline.Result) {
	if res == nil {
		return
	}
	for _, fd := range res.Diagnostics {
		style := errStyle
		if fd.Diagnostic.Severity != 0 {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		}
		fmt.Fprintln(os.Stderr, style.Render(fmt.Sprintf("%s: %s", fd.Path, fd.Diagnostic.Message)))
	}
}

func projectDir(file string) string {
	dir := file
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return "."
}
