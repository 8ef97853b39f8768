// MCP decorator runtime: defs annotated `@mcp_tool` or `@mcp_resource`
// are exposed as Model Context Protocol tools, each call dispatched back
// into the interpreter as an ordinary function application. Grounded on
// the ternarybob-iter pack entry's mark3labs/mcp-go server wiring
// (server.NewMCPServer, mcp.NewTool/AddTool, ServeStdio), adapted from a
// fixed hand-written tool table to one built dynamically from decorated
// module declarations.
package builtins

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/eval"
)

// ToolDecl is one `@mcp_tool("description", "param1", "param2", ...)` or
// `@mcp_resource(...)` decorated def, collected by ScanDecorated.
type ToolDecl struct {
	Module      string
	Name        string
	Description string
	Params      []string
	Resource    bool
}

// ScanDecorated walks every module's top-level defs and collects those
// carrying an `@mcp_tool` or `@mcp_resource` decorator. The decorator's
// first argument is the tool description; remaining arguments name its
// parameters, in call order.
func ScanDecorated(modules map[string]*ast.Module) []ToolDecl {
	var decls []ToolDecl
	for modName, mod := range modules {
		for _, item := range mod.Items {
			if item.Def == nil {
				continue
			}
			for _, dec := range item.Def.Decorators {
				if dec.Name.Name != "mcp_tool" && dec.Name.Name != "mcp_resource" {
					continue
				}
				td := ToolDecl{Module: modName, Name: item.Def.Name.Name, Resource: dec.Name.Name == "mcp_resource"}
				if len(dec.Args) > 0 {
					td.Description = dec.Args[0]
					td.Params = dec.Args[1:]
				}
				decls = append(decls, td)
			}
		}
	}
	return decls
}

// ServeMCP builds an MCP server exposing every decorated tool found
// across modules, dispatching each call through interp.Apply against the
// already-bound module-qualified global (interp.Globals must already
// hold `module.name` thunks, as internal/pipeline.Run installs them).
func ServeMCP(interp *eval.Interp, modules map[string]*ast.Module, name, version string) *server.MCPServer {
	mcpServer := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	for _, decl := range ScanDecorated(modules) {
		decl := decl
		opts := []mcp.ToolOption{mcp.WithDescription(decl.Description)}
		for _, p := range decl.Params {
			opts = append(opts, mcp.WithString(p, mcp.Description(p)))
		}
		mcpServer.AddTool(mcp.NewTool(decl.Name, opts...), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return callTool(interp, decl, req)
		})
	}
	return mcpServer
}

func callTool(interp *eval.Interp, decl ToolDecl, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fnVal, ok := interp.Globals.Lookup(decl.Module + "." + decl.Name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s.%s is not bound", decl.Module, decl.Name)), nil
	}

	args := make([]eval.Value, 0, len(decl.Params))
	for _, p := range decl.Params {
		args = append(args, eval.Text{Value: req.GetString(p, "")})
	}

	result, err := interp.Apply(fnVal, args, eval.NewCancel())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if eff, isEffect := result.(*eval.Effect); isEffect {
		result, err = interp.RunEffect(eff, eval.NewCancel())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(renderValue(result)), nil
}

// renderValue stringifies a returned value for the MCP text-result
// channel; tools are expected to return Text, but any value renders.
func renderValue(v eval.Value) string {
	if t, ok := v.(eval.Text); ok {
		return t.Value
	}
	return fmt.Sprintf("%v", v)
}
