package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. Usable excludes docks and panels.
type Monitor struct {
	ID     int
	Name   string
	Bounds Geometry
	Usable Geometry
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	workArea := c.currentWorkArea()

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := Geometry{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)}
		usable := bounds
		if workArea != nil {
			if isect, ok := intersect(bounds, *workArea); ok {
				usable = isect
			}
		}

		monitors = append(monitors, Monitor{ID: i, Name: name, Bounds: bounds, Usable: usable})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}
	return monitors, nil
}

// GetActiveMonitor returns the monitor holding the focused window, then the
// one under the pointer, then the first one.
func (c *Connection) GetActiveMonitor() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}

	if active, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && active != 0 {
		if g, err := c.WindowGeometry(active); err == nil {
			if m, ok := monitorAt(monitors, g.X+g.Width/2, g.Y+g.Height/2); ok {
				return m, nil
			}
		}
	}

	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if m, ok := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); ok {
			return m, nil
		}
	}

	return monitors[0], nil
}

func (c *Connection) currentWorkArea() *Geometry {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return nil
	}
	idx := 0
	if d, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(d) < len(workArea) {
		idx = int(d)
	}
	wa := workArea[idx]
	return &Geometry{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
}

func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, m := range monitors {
		b := m.Bounds
		if x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height {
			return m, true
		}
	}
	return Monitor{}, false
}

func intersect(a, b Geometry) (Geometry, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Geometry{}, false
	}
	return Geometry{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
