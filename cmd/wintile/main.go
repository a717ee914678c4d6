package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/output"
	"github.com/1broseidon/wintile/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "organize":
		os.Exit(runOrganize("organize", "", os.Args[2:]))
	case "cascade", "grid", "stack":
		os.Exit(runOrganize(os.Args[1], os.Args[1], os.Args[2:]))
	case "undo":
		os.Exit(runUndo(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "hotkey":
		os.Exit(runHotkey(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wintile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wintile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  organize [layout]   Arrange windows on the active display")
	fmt.Fprintln(w, "  cascade|grid|stack  Arrange windows with a specific layout")
	fmt.Fprintln(w, "  undo                Restore windows to their previous placement")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List available layouts")
	fmt.Fprintln(w, "  layout apply        Set the active layout (optionally arrange now)")
	fmt.Fprintln(w, "  layout cycle        Switch to the next or previous layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List windows and their state")
	fmt.Fprintln(w, "  window minimize     Minimize a window")
	fmt.Fprintln(w, "  window maximize     Maximize a window")
	fmt.Fprintln(w, "  window restore      Restore a minimized or maximized window")
	fmt.Fprintln(w, "  window focus        Focus a window")
	fmt.Fprintln(w, "  window move         Move and resize a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  hotkey list         List configured hotkeys")
	fmt.Fprintln(w, "  hotkey check        Validate a chord and action")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config reset        Reset configuration to defaults")
	fmt.Fprintln(w, "  config exclude      Add or remove excluded processes")
	fmt.Fprintln(w, "  config export       Write configuration to a file")
	fmt.Fprintln(w, "  config import       Load configuration from a file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  menu                Pick a layout or action from a launcher menu")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wintile <command> --help' for command options.")
}

// commonFlags are accepted by every command that loads config or prints
// results.
type commonFlags struct {
	configPath string
	format     string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/wintile/config.yaml)")
	fs.StringVar(&c.format, "output", "table", "Output format: table, json, yaml or text")
	return c
}

func (c *commonFlags) printer() (*output.Printer, error) {
	format, err := output.ParseFormat(c.format)
	if err != nil {
		return nil, err
	}
	return output.New(os.Stdout, format), nil
}

func (c *commonFlags) loadConfig() (*config.Config, error) {
	return loadConfig(c.configPath)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// parseArgs parses fs and reports the exit code when parsing fails.
func parseArgs(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// stringList is a repeatable string flag that also splits on commas.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// session runs commands against the daemon when it answers, otherwise
// against a local X connection.
type session struct {
	client    *ipc.Client
	backend   *platform.LinuxBackend
	organizer *arrange.Organizer
}

func openSession(cfg *config.Config) (*session, error) {
	client := ipc.NewClient()
	if err := client.Ping(); err == nil {
		return &session{client: client}, nil
	} else if !errors.Is(err, ipc.ErrDaemonUnavailable) {
		return nil, err
	}

	applyDisplayEnv(cfg)
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display: %w", err)
	}
	return &session{
		backend:   backend,
		organizer: arrange.NewOrganizer(backend, nil, cfg),
	}, nil
}

func (s *session) daemon() bool {
	return s.client != nil
}

func (s *session) Close() {
	if s.backend != nil {
		s.backend.Disconnect()
	}
}

func (s *session) organize(req arrange.Request) (arrange.Result, error) {
	if s.daemon() {
		return s.client.Organize(ipc.OrganizePayload{
			Layout:   req.Layout,
			Options:  req.Options,
			Targets:  req.Targets,
			Excludes: req.Excludes,
		})
	}
	return s.organizer.Organize(req)
}

func (s *session) undo() (arrange.Result, error) {
	if s.daemon() {
		return s.client.Undo()
	}
	return s.organizer.Undo()
}

// layouts returns the registered layouts and the active one.
func (s *session) layouts() ([]string, string, error) {
	if s.daemon() {
		data, err := s.client.ListLayouts()
		if err != nil {
			return nil, "", err
		}
		return data.Layouts, data.ActiveLayout, nil
	}
	return s.organizer.Engine().Names(), s.organizer.ActiveLayout(), nil
}

// cycle switches the active layout by delta and arranges with it.
func (s *session) cycle(delta int) (arrange.Result, error) {
	if s.daemon() {
		data, err := s.client.CycleLayout(delta, true)
		if err != nil {
			return arrange.Result{}, err
		}
		if data.Result == nil {
			return arrange.Result{Layout: data.ActiveLayout}, nil
		}
		return *data.Result, nil
	}
	name, err := s.organizer.CycleLayout(delta)
	if err != nil {
		return arrange.Result{}, err
	}
	return s.organizer.Organize(arrange.Request{Layout: name})
}

func (s *session) windows() ([]arrange.WindowStatus, error) {
	if s.daemon() {
		return s.client.ListWindows()
	}
	return s.organizer.Windows()
}

func (s *session) windowAction(req ipc.WindowActionPayload) error {
	if s.daemon() {
		return s.client.WindowAction(req.WindowID, req.Action, req.Bounds)
	}
	return ipc.ApplyWindowAction(s.organizer, s.backend, req)
}

// applyDisplayEnv points the X connection at the configured display when
// the environment does not name one.
func applyDisplayEnv(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.Display != "" && os.Getenv("DISPLAY") == "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}
