package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateHidden        = "_NET_WM_STATE_HIDDEN"
	stateFullscreen    = "_NET_WM_STATE_FULLSCREEN"
	stateMaximizedHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaximizedVert = "_NET_WM_STATE_MAXIMIZED_VERT"

	netStateRemove = 0
	netStateAdd    = 1
)

// Geometry is a window's outer position and size in root coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

// StackingClients returns managed client windows topmost first. It falls
// back to _NET_CLIENT_LIST when the window manager does not publish a
// stacking list.
func (c *Connection) StackingClients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
	}

	// EWMH lists bottom-to-top.
	out := make([]xproto.Window, len(clients))
	for i, w := range clients {
		out[len(clients)-1-i] = w
	}
	return out, nil
}

// WindowGeometry returns the window rectangle translated to root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowClass returns the WM_CLASS class name, or "".
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowPID returns _NET_WM_PID.
func (c *Connection) WindowPID(windowID xproto.Window) (int, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, err
	}
	return int(pid), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

func (c *Connection) hasStates(windowID xproto.Window, wanted ...string) (map[string]bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(wanted))
	for _, s := range states {
		for _, w := range wanted {
			if s == w {
				found[w] = true
			}
		}
	}
	return found, nil
}

// IsMinimized reports whether the window is iconified, either through
// _NET_WM_STATE_HIDDEN or the ICCCM IconicState.
func (c *Connection) IsMinimized(windowID xproto.Window) (bool, error) {
	found, err := c.hasStates(windowID, stateHidden)
	if err == nil && found[stateHidden] {
		return true, nil
	}

	st, icccmErr := icccm.WmStateGet(c.XUtil, windowID)
	if icccmErr == nil {
		return st.State == icccm.StateIconic, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// IsMaximized reports whether both maximized atoms are set.
func (c *Connection) IsMaximized(windowID xproto.Window) (bool, error) {
	found, err := c.hasStates(windowID, stateMaximizedHorz, stateMaximizedVert)
	if err != nil {
		return false, err
	}
	return found[stateMaximizedHorz] && found[stateMaximizedVert], nil
}

// IsFullscreen reports whether _NET_WM_STATE_FULLSCREEN is set.
func (c *Connection) IsFullscreen(windowID xproto.Window) bool {
	found, err := c.hasStates(windowID, stateFullscreen)
	return err == nil && found[stateFullscreen]
}

// IsResizable reports false when the size hints pin min and max to the
// same size. Windows without hints are resizable.
func (c *Connection) IsResizable(windowID xproto.Window) bool {
	hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	const fixed = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if hints.Flags&fixed != fixed {
		return true
	}
	if hints.MaxWidth == 0 || hints.MaxHeight == 0 {
		return true
	}
	return hints.MinWidth != hints.MaxWidth || hints.MinHeight != hints.MaxHeight
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Best effort; some windows do not support state changes.
	_ = c.setMaximized(windowID, false)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(windowID xproto.Window) error {
	return c.sendRootMessage("WM_CHANGE_STATE", windowID, icccm.StateIconic)
}

// Maximize sets both maximized atoms.
func (c *Connection) Maximize(windowID xproto.Window) error {
	return c.setMaximized(windowID, true)
}

// Restore clears maximized state and de-iconifies the window.
func (c *Connection) Restore(windowID xproto.Window) error {
	if err := c.setMaximized(windowID, false); err != nil {
		return err
	}
	minimized, err := c.IsMinimized(windowID)
	if err != nil || !minimized {
		return nil
	}
	return c.ActivateWindow(windowID)
}

func (c *Connection) setMaximized(windowID xproto.Window, on bool) error {
	horz, err := c.atom(stateMaximizedHorz)
	if err != nil {
		return err
	}
	vert, err := c.atom(stateMaximizedVert)
	if err != nil {
		return err
	}

	action := uint32(netStateRemove)
	if on {
		action = netStateAdd
	}
	const sourceIndication = 2
	return c.sendRootMessage("_NET_WM_STATE", windowID, action, uint32(horz), uint32(vert), sourceIndication)
}
