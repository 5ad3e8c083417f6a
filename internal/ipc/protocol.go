package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/wintile/internal/bar"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandToggleWorkMode CommandType = "TOGGLE_WORK_MODE"
	CommandAlterConfig    CommandType = "ALTER_CONFIG"
	CommandReload         CommandType = "RELOAD"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandGetBar         CommandType = "GET_BAR"
	CommandClickBar       CommandType = "CLICK_BAR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WorkMode        bool   `json:"work_mode"`
	ActiveWorkspace int32  `json:"active_workspace"`
	WindowCount     int    `json:"window_count"`
	Keybindings     int    `json:"keybindings"`
	ConfigPath      string `json:"config_path"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
}

// WorkModeData is returned by TOGGLE_WORK_MODE.
type WorkModeData struct {
	Enabled bool `json:"enabled"`
}

// Config operations accepted by ALTER_CONFIG.
const (
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpToggle    = "toggle"
)

// AlterConfigPayload is the payload of ALTER_CONFIG. Value is ignored by toggle.
type AlterConfigPayload struct {
	Op    string `json:"op"`
	Field string `json:"field"`
	Value int32  `json:"value,omitempty"`
}

// AlterConfigData reports whether the change was applied. Unknown fields are
// not applied and carry the reason.
type AlterConfigData struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	Handle     string `json:"handle"`
	Title      string `json:"title"`
	Process    string `json:"process"`
	Workspace  int32  `json:"workspace"`
	Floating   bool   `json:"floating"`
	Fullscreen bool   `json:"fullscreen"`
	Rule       string `json:"rule"`
	Style      string `json:"style"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// BarData is returned by GET_BAR. Background is packed 0x00BBGGRR.
type BarData struct {
	Snapshot   bar.Snapshot `json:"snapshot"`
	Open       bool         `json:"open"`
	Background uint32       `json:"background"`
	LightTheme bool         `json:"light_theme"`
}

// ClickBarPayload is the payload of CLICK_BAR.
type ClickBarPayload struct {
	Component string `json:"component"`
	Index     int    `json:"index"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
