package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	ManageableOnly bool `json:"manageable_only,omitempty" jsonschema:"When true, only list windows that organize_windows would arrange"`
}

// WindowInfo describes a single top-level window.
type WindowInfo struct {
	ID          uint32 `json:"id"`
	Title       string `json:"title"`
	Process     string `json:"process"`
	PID         int    `json:"pid"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Minimized   bool   `json:"minimized"`
	Maximized   bool   `json:"maximized"`
	Manageable  bool   `json:"manageable"`
	HasSnapshot bool   `json:"has_snapshot"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// OrganizeInput is the input for the organize_windows tool.
type OrganizeInput struct {
	Layout   string   `json:"layout,omitempty" jsonschema:"Layout name: cascade, grid or stack (default: the daemon's active layout)"`
	Targets  []string `json:"targets,omitempty" jsonschema:"Only arrange windows whose title or process contains one of these strings"`
	Excludes []string `json:"excludes,omitempty" jsonschema:"Skip windows whose title or process contains one of these strings"`
}

// OperationOutput reports the outcome of organize_windows and undo_layout.
type OperationOutput struct {
	OK        bool     `json:"ok"`
	Layout    string   `json:"layout,omitempty"`
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    []uint32 `json:"failed,omitempty"`
	Message   string   `json:"message"`
}

// UndoInput is the input for the undo_layout tool.
type UndoInput struct{}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts       []string `json:"layouts"`
	DefaultLayout string   `json:"default_layout"`
	ActiveLayout  string   `json:"active_layout"`
}

// SetLayoutInput is the input for the set_active_layout tool.
type SetLayoutInput struct {
	Layout   string `json:"layout" jsonschema:"Layout to make active"`
	ApplyNow bool   `json:"apply_now,omitempty" jsonschema:"When true, arrange windows with the layout immediately"`
}

// SetLayoutOutput is the output for the set_active_layout tool.
type SetLayoutOutput struct {
	ActiveLayout string           `json:"active_layout"`
	Result       *OperationOutput `json:"result,omitempty"`
}
