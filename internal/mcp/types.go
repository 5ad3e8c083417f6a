package mcp

import "github.com/1broseidon/wintile/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	WorkMode        bool   `json:"work_mode"`
	ActiveWorkspace int32  `json:"active_workspace"`
	WindowCount     int    `json:"window_count"`
	Keybindings     int    `json:"keybindings"`
	ConfigPath      string `json:"config_path"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}

// ToggleWorkModeInput is the input for the toggle_work_mode tool.
type ToggleWorkModeInput struct{}

// ToggleWorkModeOutput is the output for the toggle_work_mode tool.
type ToggleWorkModeOutput struct {
	WorkMode bool `json:"work_mode"`
}

// AlterConfigInput is the input for the alter_config tool.
type AlterConfigInput struct {
	Op    string `json:"op" jsonschema:"increment, decrement or toggle"`
	Field string `json:"field" jsonschema:"Config field name, e.g. margin or use_border"`
	Value int32  `json:"value,omitempty" jsonschema:"Amount for increment and decrement"`
}

// AlterConfigOutput is the output for the alter_config tool.
type AlterConfigOutput struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}

// ReloadOutput is the output for the reload_config tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Workspace *int32 `json:"workspace,omitempty" jsonschema:"Only list windows of this workspace"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	Handle     string `json:"handle"`
	Title      string `json:"title"`
	Process    string `json:"process"`
	Workspace  int32  `json:"workspace"`
	Floating   bool   `json:"floating"`
	Fullscreen bool   `json:"fullscreen"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// GetBarInput is the input for the get_bar tool.
type GetBarInput struct{}

// GetBarOutput is the output for the get_bar tool.
type GetBarOutput struct {
	Open   bool   `json:"open"`
	Left   string `json:"left"`
	Center string `json:"center"`
	Right  string `json:"right"`
}

// ClickBarInput is the input for the click_bar tool.
type ClickBarInput struct {
	Component string `json:"component" jsonschema:"Bar component name, e.g. Workspaces"`
	Index     int    `json:"index" jsonschema:"Zero-based segment index within the component"`
}

// ClickBarOutput is the output for the click_bar tool.
type ClickBarOutput struct {
	Clicked bool `json:"clicked"`
}

func windowInfo(w ipc.WindowInfo) WindowInfo {
	return WindowInfo{
		Handle:     w.Handle,
		Title:      w.Title,
		Process:    w.Process,
		Workspace:  w.Workspace,
		Floating:   w.Floating,
		Fullscreen: w.Fullscreen,
	}
}
