package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/runtimepath"
)

// ErrDaemonUnavailable is returned when no daemon answers on the socket.
var ErrDaemonUnavailable = errors.New("daemon not running")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// sendRequest surfaces the connection error.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListLayouts retrieves available layouts and current selection.
func (c *Client) ListLayouts() (*LayoutsData, error) {
	var data LayoutsData
	if err := c.call(CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListWindows retrieves the daemon's view of the current windows.
func (c *Client) ListWindows() ([]arrange.WindowStatus, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Organize arranges windows in the daemon.
func (c *Client) Organize(payload OrganizePayload) (arrange.Result, error) {
	var result arrange.Result
	err := c.call(CommandOrganize, payload, &result)
	return result, err
}

// Undo restores the placements recorded by the daemon.
func (c *Client) Undo() (arrange.Result, error) {
	var result arrange.Result
	err := c.call(CommandUndo, nil, &result)
	return result, err
}

// CycleLayout moves the active layout by delta, optionally applying it.
func (c *Client) CycleLayout(delta int, applyNow bool) (*ActiveLayoutData, error) {
	var data ActiveLayoutData
	if err := c.call(CommandCycleLayout, CycleLayoutPayload{Delta: delta, ApplyNow: applyNow}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetActiveLayout sets the daemon's active layout, optionally applying it.
func (c *Client) SetActiveLayout(name string, applyNow bool) (*ActiveLayoutData, error) {
	var data ActiveLayoutData
	if err := c.call(CommandSetActiveLayout, SetActiveLayoutPayload{LayoutName: name, ApplyNow: applyNow}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// WindowAction performs a single-window operation in the daemon.
func (c *Client) WindowAction(id platform.WindowID, action WindowAction, bounds *platform.Rect) error {
	return c.call(CommandWindowAction, WindowActionPayload{WindowID: id, Action: action, Bounds: bounds}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
