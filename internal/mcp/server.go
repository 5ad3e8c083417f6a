// Package mcp exposes the running daemon to MCP clients over stdio. Every
// tool is a thin wrapper around a control-socket request.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wintile/internal/ipc"
)

const (
	ServerName    = "wintile"
	ServerVersion = "0.1.0"
)

// Client is the part of the control-socket client the tools use.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ToggleWorkMode() (bool, error)
	AlterConfig(op, field string, value int32) (*ipc.AlterConfigData, error)
	Reload() error
	ListWindows() (*ipc.WindowsData, error)
	GetBar() (*ipc.BarData, error)
	ClickBar(component string, idx int) error
}

var _ Client = (*ipc.Client)(nil)

// Server is the MCP server for a wintile daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls to client.
func NewServer(client Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{client: client, logger: logger}
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
		Name:        "get_status",
		Description: "Report whether work mode is on, the active workspace, how many windows are tiled and which config file is loaded.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_work_mode",
		Description: "Turn work mode on or off. Turning it off restores every managed window to its original style and position.",
	}, s.handleToggleWorkMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "alter_config",
		Description: "Change one runtime setting. op is increment, decrement or toggle. Numeric fields: margin, padding, app_bar_height, app_bar_bg, app_bar_font_size. Toggle fields: use_border, light_theme, launch_on_startup, remove_title_bar, remove_task_bar, display_app_bar.",
	}, s.handleAlterConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read config.yaml and init.lua, rebind hotkeys and reflow the tiles.",
	}, s.handleReload)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the managed windows in tiling order with their workspace, process and floating/fullscreen state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_bar",
		Description: "Render the app bar and return its text per section.",
	}, s.handleGetBar)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "click_bar",
		Description: "Click a segment of a bar component, e.g. component Workspaces index 1 switches to the second workspace.",
	}, s.handleClickBar)
}
