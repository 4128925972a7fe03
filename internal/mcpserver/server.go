// Package mcpserver exposes the running dock to MCP clients so agents can
// list dock entries and focus, close or launch applications the same way a
// click on the dock would.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/desyatkoff/hydock/internal/control/client"
)

// Dock is the subset of the control client used by the tools.
type Dock interface {
	Entries(ctx context.Context) ([]client.Entry, error)
	Visibility(ctx context.Context) (client.VisibilityStatus, error)
	Focus(ctx context.Context, class string) (client.DispatchResult, error)
	Close(ctx context.Context, class string) (client.DispatchResult, error)
	Launch(ctx context.Context) error
}

// Server wraps an MCP server whose tools forward to a Dock.
type Server struct {
	dock Dock
	mcp  *mcpsrv.MCPServer
}

// New registers every dock tool on a fresh MCP server.
func New(dock Dock, version string) *Server {
	s := &Server{
		dock: dock,
		mcp:  mcpsrv.NewMCPServer("hydock", version),
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return mcpsrv.ServeStdio(s.mcp)
}

// Serve starts the MCP server on the given transport.
func (s *Server) Serve(transport string, port int) error {
	switch transport {
	case "stdio":
		return s.ServeStdio()
	case "streamable-http":
		return mcpsrv.NewStreamableHTTPServer(s.mcp).Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("dock_entries",
			mcp.WithDescription("List the applications currently shown in the dock with their open window counts. Pinned applications without windows have a count of 0."),
		),
		s.handleEntries,
	)
	s.mcp.AddTool(
		mcp.NewTool("dock_status",
			mcp.WithDescription("Report whether the dock is shown or hidden, its screen edge and whether auto-hide is enabled"),
		),
		s.handleStatus,
	)
	s.mcp.AddTool(
		mcp.NewTool("focus_app",
			mcp.WithDescription("Focus the first window of an application, launching it when no window is open"),
			mcp.WithString("class", mcp.Required(), mcp.Description("Application class as listed by dock_entries (e.g. 'firefox')")),
		),
		s.handleFocus,
	)
	s.mcp.AddTool(
		mcp.NewTool("close_app",
			mcp.WithDescription("Close the first window of an application, launching it when no window is open"),
			mcp.WithString("class", mcp.Required(), mcp.Description("Application class as listed by dock_entries")),
		),
		s.handleClose,
	)
	s.mcp.AddTool(
		mcp.NewTool("run_launcher",
			mcp.WithDescription("Open the configured application launcher"),
		),
		s.handleLauncher,
	)
}

func toText(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func classParam(request mcp.CallToolRequest) string {
	params := request.GetArguments()
	class, _ := params["class"].(string)
	return strings.TrimSpace(class)
}

func (s *Server) handleEntries(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.dock.Entries(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type entry struct {
		Class   string `yaml:"class"`
		Windows int    `yaml:"windows"`
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{Class: string(e.Class), Windows: e.Windows})
	}
	return mcp.NewToolResultText(toText(out)), nil
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.dock.Visibility(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(map[string]any{
		"visibility": status.Visibility,
		"auto_hide":  status.AutoHide,
		"position":   status.Position,
		"entries":    status.Entries,
	})), nil
}

func (s *Server) handleFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(ctx, request, s.dock.Focus)
}

func (s *Server) handleClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatch(ctx, request, s.dock.Close)
}

func (s *Server) dispatch(ctx context.Context, request mcp.CallToolRequest, fn func(context.Context, string) (client.DispatchResult, error)) (*mcp.CallToolResult, error) {
	class := classParam(request)
	if class == "" {
		return mcp.NewToolResultError("class is required"), nil
	}
	res, err := fn(ctx, class)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(map[string]any{
		"class":    res.Class,
		"action":   res.Action,
		"result":   res.Result,
		"fallback": res.Fallback,
	})), nil
}

func (s *Server) handleLauncher(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.dock.Launch(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("launcher started"), nil
}

var _ Dock = (*client.Client)(nil)
