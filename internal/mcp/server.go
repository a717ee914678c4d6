// Package mcp exposes window arrangement to MCP clients over stdio. Tool
// calls are forwarded to the running daemon so they share its undo
// history.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/ipc"
)

const (
	ServerName    = "wintile"
	ServerVersion = "0.1.0"
)

// Controller is the daemon surface the tools call. *ipc.Client satisfies
// it.
type Controller interface {
	ListWindows() ([]arrange.WindowStatus, error)
	Organize(payload ipc.OrganizePayload) (arrange.Result, error)
	Undo() (arrange.Result, error)
	ListLayouts() (*ipc.LayoutsData, error)
	SetActiveLayout(name string, applyNow bool) (*ipc.ActiveLayoutData, error)
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for wintile.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
}

// NewServer creates an MCP server that forwards tool calls to ctl.
func NewServer(ctl Controller) *Server {
	s := &Server{ctl: ctl}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List top-level windows on the current desktop with their geometry, state and whether organize_windows would arrange them.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "organize_windows",
		Description: "Arrange the manageable windows on the active display with a layout (cascade, grid or stack). Previous placements are recorded so undo_layout can restore them.",
	}, s.handleOrganize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "undo_layout",
		Description: "Restore every window to the placement recorded before it was last arranged.",
	}, s.handleUndo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the available layouts and the default and active layout.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_active_layout",
		Description: "Change the layout used when no layout is named, optionally arranging windows with it right away.",
	}, s.handleSetLayout)
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.ctl.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}

	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		if args.ManageableOnly && !w.Manageable {
			continue
		}
		out.Windows = append(out.Windows, WindowInfo{
			ID:          uint32(w.ID),
			Title:       w.Title,
			Process:     w.Process,
			PID:         w.PID,
			X:           w.Bounds.Left,
			Y:           w.Bounds.Top,
			Width:       w.Bounds.Width(),
			Height:      w.Bounds.Height(),
			Minimized:   w.Minimized,
			Maximized:   w.Maximized,
			Manageable:  w.Manageable,
			HasSnapshot: w.HasSnapshot,
		})
	}
	return nil, out, nil
}

func (s *Server) handleOrganize(_ context.Context, _ *mcpsdk.CallToolRequest, args OrganizeInput) (*mcpsdk.CallToolResult, OperationOutput, error) {
	result, err := s.ctl.Organize(ipc.OrganizePayload{
		Layout:   strings.TrimSpace(args.Layout),
		Targets:  args.Targets,
		Excludes: args.Excludes,
	})
	if err != nil {
		return nil, OperationOutput{}, fmt.Errorf("organize windows: %w", err)
	}
	return nil, operationOutput(result, "arranged"), nil
}

func (s *Server) handleUndo(_ context.Context, _ *mcpsdk.CallToolRequest, _ UndoInput) (*mcpsdk.CallToolResult, OperationOutput, error) {
	result, err := s.ctl.Undo()
	if err != nil {
		return nil, OperationOutput{}, fmt.Errorf("undo layout: %w", err)
	}
	return nil, operationOutput(result, "restored"), nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	data, err := s.ctl.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, fmt.Errorf("list layouts: %w", err)
	}
	return nil, ListLayoutsOutput{
		Layouts:       data.Layouts,
		DefaultLayout: data.DefaultLayout,
		ActiveLayout:  data.ActiveLayout,
	}, nil
}

func (s *Server) handleSetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SetLayoutInput) (*mcpsdk.CallToolResult, SetLayoutOutput, error) {
	name := strings.TrimSpace(args.Layout)
	if name == "" {
		return nil, SetLayoutOutput{}, fmt.Errorf("layout is required")
	}

	data, err := s.ctl.SetActiveLayout(name, args.ApplyNow)
	if err != nil {
		return nil, SetLayoutOutput{}, fmt.Errorf("set active layout: %w", err)
	}

	out := SetLayoutOutput{ActiveLayout: data.ActiveLayout}
	if data.Result != nil {
		op := operationOutput(*data.Result, "arranged")
		out.Result = &op
	}
	return nil, out, nil
}

func operationOutput(result arrange.Result, verb string) OperationOutput {
	out := OperationOutput{
		OK:        result.OK(),
		Layout:    result.Layout,
		Total:     result.Total,
		Succeeded: result.Succeeded,
	}
	for _, id := range result.Failed {
		out.Failed = append(out.Failed, uint32(id))
	}

	switch {
	case result.Total == 0:
		out.Message = "no windows to act on"
	case len(result.Failed) > 0:
		out.Message = fmt.Sprintf("%s %d of %d windows; %d failed", verb, result.Succeeded, result.Total, len(result.Failed))
	default:
		out.Message = fmt.Sprintf("%s %d windows", verb, result.Succeeded)
	}
	return out
}
