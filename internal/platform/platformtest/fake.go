// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
)

// Backend is an in-memory window system. Window geometry lives in Bounds
// and is updated by moves and placements. It is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	Display   platform.Display
	windows   []platform.Window
	bounds    map[platform.WindowID]platform.Rect
	minimized map[platform.WindowID]bool
	maximized map[platform.WindowID]bool
	failMove  map[platform.WindowID]bool
	focused   platform.WindowID

	moves    []platform.WindowID
	restores []platform.WindowID
	calls    int
}

var _ platform.Backend = (*Backend)(nil)

// DefaultDisplay is a single 1920x1080 display with no reserved area.
var DefaultDisplay = platform.Display{
	ID:     0,
	Name:   "fake-0",
	Bounds: platform.RectXYWH(0, 0, 1920, 1080),
	Usable: platform.RectXYWH(0, 0, 1920, 1080),
}

// New returns a backend holding windows in stacking order.
func New(windows ...platform.Window) *Backend {
	b := &Backend{
		Display:   DefaultDisplay,
		bounds:    make(map[platform.WindowID]platform.Rect),
		minimized: make(map[platform.WindowID]bool),
		maximized: make(map[platform.WindowID]bool),
		failMove:  make(map[platform.WindowID]bool),
	}
	b.SetWindows(windows...)
	return b
}

// Window builds a resizable 800x600 window offset by its id.
func Window(id platform.WindowID, title, process string) platform.Window {
	return platform.Window{
		ID:        id,
		Title:     title,
		Process:   process,
		PID:       int(id) + 100,
		Bounds:    platform.RectXYWH(int(id)*10, int(id)*10, 800, 600),
		Visible:   true,
		Resizable: true,
	}
}

// SetWindows replaces the enumerated windows. Geometry of windows already
// known is kept.
func (b *Backend) SetWindows(windows ...platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = windows
	for _, w := range windows {
		if _, ok := b.bounds[w.ID]; !ok {
			b.bounds[w.ID] = w.Bounds
		}
	}
}

// Bounds returns the current geometry of a window.
func (b *Backend) Bounds(id platform.WindowID) platform.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bounds[id]
}

// SetMinimized sets the minimized flag of a window.
func (b *Backend) SetMinimized(id platform.WindowID, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimized[id] = v
}

// FailMoves makes MoveResize fail for id.
func (b *Backend) FailMoves(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMove[id] = true
}

// Moves returns the ids passed to MoveResize, failed attempts included.
func (b *Backend) Moves() []platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.WindowID(nil), b.moves...)
}

// Restores returns the ids passed to Restore.
func (b *Backend) Restores() []platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.WindowID(nil), b.restores...)
}

// Focused returns the last activated window.
func (b *Backend) Focused() platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

// Calls counts display, enumeration and mutating calls. State queries
// are not counted.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *Backend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return []platform.Display{b.Display}, nil
}

func (b *Backend) ActiveDisplay() (platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.Display, nil
}

func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.focused == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return b.focused, nil
}

func (b *Backend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	out := make([]platform.Window, len(b.windows))
	for i, w := range b.windows {
		w.Bounds = b.bounds[w.ID]
		out[i] = w
	}
	return out, nil
}

func (b *Backend) IsMinimized(id platform.WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.minimized[id], nil
}

func (b *Backend) IsMaximized(id platform.WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maximized[id], nil
}

func (b *Backend) MoveResize(id platform.WindowID, r platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.moves = append(b.moves, id)
	if b.failMove[id] {
		return fmt.Errorf("move of window %d rejected", id)
	}
	b.maximized[id] = false
	b.bounds[id] = r
	return nil
}

func (b *Backend) Placement(id platform.WindowID) (platform.Placement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.bounds[id]
	if !ok {
		return platform.Placement{}, fmt.Errorf("window %d not found", id)
	}
	return platform.NewPlacement(r, b.minimized[id], b.maximized[id]), nil
}

func (b *Backend) SetPlacement(id platform.WindowID, p platform.Placement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if _, ok := b.bounds[id]; !ok {
		return fmt.Errorf("window %d not found", id)
	}
	b.bounds[id] = p.Bounds
	b.minimized[id] = p.State == platform.StateMinimized
	b.maximized[id] = p.Maximizes()
	return nil
}

func (b *Backend) Minimize(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.minimized[id] = true
	return nil
}

func (b *Backend) Maximize(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.maximized[id] = true
	return nil
}

func (b *Backend) Restore(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.restores = append(b.restores, id)
	b.minimized[id] = false
	b.maximized[id] = false
	return nil
}

func (b *Backend) Activate(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.focused = id
	return nil
}
