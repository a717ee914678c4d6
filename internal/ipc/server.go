package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/runtimepath"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	organizer    *arrange.Organizer
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(organizer *arrange.Organizer, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, organizer, backend, reloadChan), nil
}

// NewServerAt creates a new IPC server listening on socketPath.
func NewServerAt(socketPath string, organizer *arrange.Organizer, backend platform.Backend, reloadChan chan struct{}) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		organizer:  organizer,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandOrganize:
		return s.handleOrganize(req.Payload)
	case CommandUndo:
		return s.handleUndo()
	case CommandCycleLayout:
		return s.handleCycleLayout(req.Payload)
	case CommandSetActiveLayout:
		return s.handleSetActiveLayout(req.Payload)
	case CommandWindowAction:
		return s.handleWindowAction(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func respond(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	var (
		newCfg *config.Config
		err    error
	)
	if path := s.organizer.Config().Path(); path != "" {
		var res *config.LoadResult
		if res, err = config.LoadFromPath(path); err == nil {
			newCfg = res.Config
		}
	} else {
		newCfg, err = config.Load()
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.organizer.UpdateConfig(newCfg)

	// Notify the daemon without blocking.
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")
	return respond(nil)
}

func (s *Server) handleGetStatus() *Response {
	cfg := s.organizer.Config()

	windowCount := 0
	if windows, err := s.organizer.Windows(); err == nil {
		for _, w := range windows {
			if w.Manageable {
				windowCount++
			}
		}
	}

	return respond(StatusData{
		ActiveLayout:   s.organizer.ActiveLayout(),
		DefaultLayout:  cfg.DefaultLayout,
		WindowCount:    windowCount,
		HistorySize:    s.organizer.HistorySize(),
		HotkeysEnabled: cfg.HotkeysEnabled,
		ConfigPath:     cfg.Path(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	})
}

func (s *Server) handleGetMonitors() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	data := MonitorsData{Monitors: displays}
	if active, err := s.backend.ActiveDisplay(); err == nil {
		data.Active = active.ID
	}
	return respond(data)
}

func (s *Server) handleListLayouts() *Response {
	return respond(LayoutsData{
		Layouts:       s.organizer.Engine().Names(),
		DefaultLayout: s.organizer.Config().DefaultLayout,
		ActiveLayout:  s.organizer.ActiveLayout(),
	})
}

func (s *Server) handleListWindows() *Response {
	windows, err := s.organizer.Windows()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}
	return respond(WindowsData{Windows: windows})
}

func (s *Server) handleOrganize(payload json.RawMessage) *Response {
	var req OrganizePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid organize payload: %v", err))
		}
	}

	result, err := s.organizer.Organize(req.Request())
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to organize windows: %v", err))
	}
	return respond(result)
}

func (s *Server) handleUndo() *Response {
	result, err := s.organizer.Undo()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to undo: %v", err))
	}
	return respond(result)
}

func (s *Server) handleCycleLayout(payload json.RawMessage) *Response {
	req := CycleLayoutPayload{Delta: 1}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid cycle payload: %v", err))
		}
	}

	name, err := s.organizer.CycleLayout(req.Delta)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to cycle layout: %v", err))
	}
	return s.activeLayoutResponse(name, req.ApplyNow)
}

func (s *Server) handleSetActiveLayout(payload json.RawMessage) *Response {
	var req SetActiveLayoutPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set layout payload: %v", err))
	}
	if req.LayoutName == "" {
		return NewErrorResponse("layout_name is required")
	}

	if err := s.organizer.SetActiveLayout(req.LayoutName); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set active layout: %v", err))
	}
	return s.activeLayoutResponse(req.LayoutName, req.ApplyNow)
}

func (s *Server) activeLayoutResponse(name string, applyNow bool) *Response {
	data := ActiveLayoutData{ActiveLayout: name}
	if applyNow {
		result, err := s.organizer.Organize(arrange.Request{Layout: name})
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to apply layout %s: %v", name, err))
		}
		data.Result = &result
	}
	return respond(data)
}

func (s *Server) handleWindowAction(payload json.RawMessage) *Response {
	var req WindowActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.WindowID == 0 {
		return NewErrorResponse("window_id is required")
	}

	if err := ApplyWindowAction(s.organizer, s.backend, req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s window %d: %v", req.Action, req.WindowID, err))
	}
	return respond(nil)
}

// ApplyWindowAction performs a single-window operation. Moves go through
// the organizer so they can be undone.
func ApplyWindowAction(organizer *arrange.Organizer, backend platform.Backend, req WindowActionPayload) error {
	switch req.Action {
	case WindowMinimize:
		return backend.Minimize(req.WindowID)
	case WindowMaximize:
		return backend.Maximize(req.WindowID)
	case WindowRestore:
		return backend.Restore(req.WindowID)
	case WindowFocus:
		return backend.Activate(req.WindowID)
	case WindowMove:
		if req.Bounds == nil {
			return fmt.Errorf("bounds are required for move")
		}
		return organizer.MoveWindow(req.WindowID, *req.Bounds)
	case WindowUndo:
		return organizer.UndoWindow(req.WindowID)
	default:
		return fmt.Errorf("unknown window action %q", req.Action)
	}
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}
