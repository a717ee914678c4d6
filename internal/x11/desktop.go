package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const stickyDesktop = 0xFFFFFFFF

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// OnDesktop reports whether a window is visible on the given desktop.
// Sticky windows and windows without _NET_WM_DESKTOP count as visible.
func (c *Connection) OnDesktop(windowID xproto.Window, desktop int) bool {
	d, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil || d == stickyDesktop {
		return true
	}
	return int(d) == desktop
}

// ActivateWindow raises and focuses a window via _NET_ACTIVE_WINDOW.
// Window managers also de-iconify the target.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendRootMessage("_NET_ACTIVE_WINDOW", windowID, sourceIndication)
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
