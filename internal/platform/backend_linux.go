//go:build linux

package platform

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/wintile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	// procRoot is overridden in tests.
	procRoot string
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, procRoot: "/proc"}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// ActiveDisplay returns the currently active display.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	active, err := conn.GetActiveMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(active), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Windows lists titled normal windows on the current desktop, topmost
// first. Windows whose owning process cannot be read are skipped.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.StackingClients()
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := conn.GetCurrentDesktop()

	windows := make([]Window, 0, len(clients))
	for _, wid := range clients {
		if !conn.IsNormalWindow(wid) {
			continue
		}
		if desktopErr == nil && !conn.OnDesktop(wid, currentDesktop) {
			continue
		}

		title := conn.WindowTitle(wid)
		if title == "" {
			continue
		}

		pid, err := conn.WindowPID(wid)
		if err != nil {
			continue
		}
		process, err := b.processName(pid)
		if err != nil {
			continue
		}

		geom, err := conn.WindowGeometry(wid)
		if err != nil {
			continue
		}

		windows = append(windows, Window{
			ID:        WindowID(wid),
			Title:     title,
			Process:   process,
			PID:       pid,
			Bounds:    rectFromGeometry(geom),
			Visible:   true,
			Resizable: conn.IsResizable(wid),
		})
	}

	return windows, nil
}

// IsMinimized reports whether the window is iconified.
func (b *LinuxBackend) IsMinimized(windowID WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	return conn.IsMinimized(xproto.Window(windowID))
}

// IsMaximized reports whether the window is maximized in both directions.
func (b *LinuxBackend) IsMaximized(windowID WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	return conn.IsMaximized(xproto.Window(windowID))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.Left,
		bounds.Top,
		bounds.Width(),
		bounds.Height(),
	)
}

// Placement reads the window's current rectangle and show state.
func (b *LinuxBackend) Placement(windowID WindowID) (Placement, error) {
	conn, err := b.connection()
	if err != nil {
		return Placement{}, err
	}

	wid := xproto.Window(windowID)
	geom, err := conn.WindowGeometry(wid)
	if err != nil {
		return Placement{}, fmt.Errorf("failed to read geometry of window %d: %w", windowID, err)
	}

	minimized, minErr := conn.IsMinimized(wid)
	maximized, maxErr := conn.IsMaximized(wid)
	return NewPlacement(rectFromGeometry(geom), minimized && minErr == nil, maximized && maxErr == nil), nil
}

// SetPlacement reapplies the recorded geometry, then the recorded state.
func (b *LinuxBackend) SetPlacement(windowID WindowID, p Placement) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	wid := xproto.Window(windowID)
	if err := conn.Restore(wid); err != nil {
		return err
	}
	if err := conn.MoveResizeWindow(wid, p.Bounds.Left, p.Bounds.Top, p.Bounds.Width(), p.Bounds.Height()); err != nil {
		return err
	}

	if p.Maximizes() {
		if err := conn.Maximize(wid); err != nil {
			return err
		}
	}
	if p.State == StateMinimized {
		return conn.Minimize(wid)
	}
	return nil
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Minimize(xproto.Window(windowID))
}

// Maximize maximizes a window.
func (b *LinuxBackend) Maximize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Maximize(xproto.Window(windowID))
}

// Restore un-maximizes and de-iconifies a window.
func (b *LinuxBackend) Restore(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Restore(xproto.Window(windowID))
}

// Activate raises and focuses a window.
func (b *LinuxBackend) Activate(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(xproto.Window(windowID))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// processName reads the executable name from /proc/<pid>/comm.
func (b *LinuxBackend) processName(pid int) (string, error) {
	return readProcessName(b.procRoot, pid)
}

func readProcessName(procRoot string, pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	data, err := os.ReadFile(procRoot + "/" + strconv.Itoa(pid) + "/comm")
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("empty process name for pid %d", pid)
	}
	return name, nil
}

func rectFromGeometry(g x11.Geometry) Rect {
	return RectXYWH(g.X, g.Y, g.Width, g.Height)
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: rectFromGeometry(m.Bounds),
		Usable: rectFromGeometry(m.Usable),
	}
}
