package platform

import "fmt"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates by its edges.
// Origins may be negative on multi-monitor setups.
type Rect struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// RectXYWH builds a Rect from an origin and a size.
func RectXYWH(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns Right - Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d", r.Width(), r.Height(), r.Left, r.Top)
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Bounds Rect   `json:"bounds" yaml:"bounds"`
	Usable Rect   `json:"usable" yaml:"usable"`
}

// Window is an immutable snapshot of a top-level window taken at
// enumeration time.
type Window struct {
	ID        WindowID `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Process   string   `json:"process" yaml:"process"`
	PID       int      `json:"pid" yaml:"pid"`
	Bounds    Rect     `json:"bounds" yaml:"bounds"`
	Visible   bool     `json:"visible" yaml:"visible"`
	Resizable bool     `json:"resizable" yaml:"resizable"`
}

// WindowState is the show state recorded in a Placement.
type WindowState string

const (
	StateNormal    WindowState = "normal"
	StateMinimized WindowState = "minimized"
	StateMaximized WindowState = "maximized"
)

// Placement is a window's rectangle plus its show state.
type Placement struct {
	Bounds    Rect        `json:"bounds" yaml:"bounds"`
	State     WindowState `json:"state" yaml:"state"`
	// Maximized is set when the window was maximized, including under StateMinimized.
	Maximized bool        `json:"maximized,omitempty" yaml:"maximized,omitempty"`
}

// NewPlacement builds a Placement from the window's minimized and maximized flags.
func NewPlacement(bounds Rect, minimized, maximized bool) Placement {
	p := Placement{Bounds: bounds, State: StateNormal, Maximized: maximized}
	switch {
	case minimized:
		p.State = StateMinimized
	case maximized:
		p.State = StateMaximized
	}
	return p
}

// Maximizes reports whether applying p leaves the window maximized.
func (p Placement) Maximizes() bool {
	return p.State == StateMaximized || p.Maximized
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	// Windows enumerates visible top-level windows in stacking order,
	// topmost first.
	Windows() ([]Window, error)
	IsMinimized(windowID WindowID) (bool, error)
	IsMaximized(windowID WindowID) (bool, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Placement(windowID WindowID) (Placement, error)
	SetPlacement(windowID WindowID, p Placement) error
	Minimize(windowID WindowID) error
	Maximize(windowID WindowID) error
	Restore(windowID WindowID) error
	Activate(windowID WindowID) error
}
