package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wintile/internal/bar"
	"github.com/1broseidon/wintile/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("daemon unreachable: %w", err)
	}
	return nil, GetStatusOutput{
		WorkMode:        st.WorkMode,
		ActiveWorkspace: st.ActiveWorkspace,
		WindowCount:     st.WindowCount,
		Keybindings:     st.Keybindings,
		ConfigPath:      st.ConfigPath,
		UptimeSeconds:   st.UptimeSeconds,
	}, nil
}

func (s *Server) handleToggleWorkMode(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleWorkModeInput) (*mcpsdk.CallToolResult, ToggleWorkModeOutput, error) {
	on, err := s.client.ToggleWorkMode()
	if err != nil {
		return nil, ToggleWorkModeOutput{}, err
	}
	s.logger.Info("work mode toggled over mcp", "enabled", on)
	return nil, ToggleWorkModeOutput{WorkMode: on}, nil
}

func (s *Server) handleAlterConfig(_ context.Context, _ *mcpsdk.CallToolRequest, args AlterConfigInput) (*mcpsdk.CallToolResult, AlterConfigOutput, error) {
	op := strings.ToLower(strings.TrimSpace(args.Op))
	switch op {
	case ipc.OpIncrement, ipc.OpDecrement:
		if args.Value <= 0 {
			return nil, AlterConfigOutput{}, fmt.Errorf("%s needs a positive value", op)
		}
	case ipc.OpToggle:
	default:
		return nil, AlterConfigOutput{}, fmt.Errorf("op must be increment, decrement or toggle, got %q", args.Op)
	}
	if args.Field == "" {
		return nil, AlterConfigOutput{}, fmt.Errorf("field is required")
	}

	res, err := s.client.AlterConfig(op, args.Field, args.Value)
	if err != nil {
		return nil, AlterConfigOutput{}, err
	}
	return nil, AlterConfigOutput{Applied: res.Applied, Reason: res.Reason}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.client.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	return nil, ReloadOutput{Reloaded: true}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: []WindowInfo{}}
	for _, w := range data.Windows {
		if args.Workspace != nil && w.Workspace != *args.Workspace {
			continue
		}
		out.Windows = append(out.Windows, windowInfo(w))
	}
	return nil, out, nil
}

func (s *Server) handleGetBar(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetBarInput) (*mcpsdk.CallToolResult, GetBarOutput, error) {
	data, err := s.client.GetBar()
	if err != nil {
		return nil, GetBarOutput{}, err
	}
	snap := data.Snapshot
	return nil, GetBarOutput{
		Open:   data.Open,
		Left:   bar.PlainText(bar.Snapshot{Left: snap.Left}),
		Center: bar.PlainText(bar.Snapshot{Center: snap.Center}),
		Right:  bar.PlainText(bar.Snapshot{Right: snap.Right}),
	}, nil
}

func (s *Server) handleClickBar(_ context.Context, _ *mcpsdk.CallToolRequest, args ClickBarInput) (*mcpsdk.CallToolResult, ClickBarOutput, error) {
	if args.Component == "" {
		return nil, ClickBarOutput{}, fmt.Errorf("component is required")
	}
	if args.Index < 0 {
		return nil, ClickBarOutput{}, fmt.Errorf("index must be >= 0")
	}
	if err := s.client.ClickBar(args.Component, args.Index); err != nil {
		return nil, ClickBarOutput{}, err
	}
	return nil, ClickBarOutput{Clicked: true}, nil
}
