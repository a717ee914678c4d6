package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/layout"
	"github.com/1broseidon/wintile/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetMonitors     CommandType = "GET_MONITORS"
	CommandListLayouts     CommandType = "LIST_LAYOUTS"
	CommandListWindows     CommandType = "LIST_WINDOWS"
	CommandOrganize        CommandType = "ORGANIZE"
	CommandUndo            CommandType = "UNDO"
	CommandCycleLayout     CommandType = "CYCLE_LAYOUT"
	CommandSetActiveLayout CommandType = "SET_ACTIVE_LAYOUT"
	CommandWindowAction    CommandType = "WINDOW_ACTION"
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
	ActiveLayout   string `json:"active_layout" yaml:"active_layout"`
	DefaultLayout  string `json:"default_layout" yaml:"default_layout"`
	WindowCount    int    `json:"window_count" yaml:"window_count"`
	HistorySize    int    `json:"history_size" yaml:"history_size"`
	HotkeysEnabled bool   `json:"hotkeys_enabled" yaml:"hotkeys_enabled"`
	ConfigPath     string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
	UptimeSeconds  int64  `json:"uptime_seconds" yaml:"uptime_seconds"`
	DaemonRunning  bool   `json:"daemon_running" yaml:"daemon_running"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []platform.Display `json:"monitors" yaml:"monitors"`
	Active   int                `json:"active" yaml:"active"`
}

// LayoutsData represents the data returned by LIST_LAYOUTS
type LayoutsData struct {
	Layouts       []string `json:"layouts" yaml:"layouts"`
	DefaultLayout string   `json:"default_layout" yaml:"default_layout"`
	ActiveLayout  string   `json:"active_layout" yaml:"active_layout"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []arrange.WindowStatus `json:"windows" yaml:"windows"`
}

// OrganizePayload is the payload for ORGANIZE.
type OrganizePayload struct {
	Layout   string          `json:"layout,omitempty"`
	Options  *layout.Options `json:"options,omitempty"`
	Targets  []string        `json:"targets,omitempty"`
	Excludes []string        `json:"excludes,omitempty"`
}

// Request converts the payload into an organizer request.
func (p OrganizePayload) Request() arrange.Request {
	return arrange.Request{
		Layout:   p.Layout,
		Options:  p.Options,
		Targets:  p.Targets,
		Excludes: p.Excludes,
	}
}

// CycleLayoutPayload is the payload for CYCLE_LAYOUT.
type CycleLayoutPayload struct {
	Delta    int  `json:"delta"`
	ApplyNow bool `json:"apply_now,omitempty"`
}

// SetActiveLayoutPayload is the payload for SET_ACTIVE_LAYOUT.
type SetActiveLayoutPayload struct {
	LayoutName string `json:"layout_name"`
	ApplyNow   bool   `json:"apply_now,omitempty"`
}

// ActiveLayoutData is returned by CYCLE_LAYOUT and SET_ACTIVE_LAYOUT.
type ActiveLayoutData struct {
	ActiveLayout string          `json:"active_layout"`
	Result       *arrange.Result `json:"result,omitempty"`
}

// WindowAction names a single-window operation.
type WindowAction string

const (
	WindowMinimize WindowAction = "minimize"
	WindowMaximize WindowAction = "maximize"
	WindowRestore  WindowAction = "restore"
	WindowFocus    WindowAction = "focus"
	WindowMove     WindowAction = "move"
	WindowUndo     WindowAction = "undo"
)

// WindowActionPayload is the payload for WINDOW_ACTION. Bounds is
// required for move.
type WindowActionPayload struct {
	WindowID platform.WindowID `json:"window_id"`
	Action   WindowAction      `json:"action"`
	Bounds   *platform.Rect    `json:"bounds,omitempty"`
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
