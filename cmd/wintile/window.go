package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/platform"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wintile window list [--all]")
	fmt.Fprintln(w, "  wintile window minimize <id>")
	fmt.Fprintln(w, "  wintile window maximize <id>")
	fmt.Fprintln(w, "  wintile window restore <id>")
	fmt.Fprintln(w, "  wintile window focus <id>")
	fmt.Fprintln(w, "  wintile window move <id> <x> <y> <width> <height>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Window ids are shown by 'wintile window list' and accept decimal or 0x hex.")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printWindowUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "list":
		return runWindowList(args[1:])
	case "minimize", "maximize", "restore", "focus", "move":
		return runWindowAction(ipc.WindowAction(args[0]), args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown window subcommand: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

// windowsView renders a window listing.
type windowsView []arrange.WindowStatus

func (v windowsView) Headers() []string {
	return []string{"ID", "PROCESS", "TITLE", "GEOMETRY", "STATE", "MANAGED"}
}

func (v windowsView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, w := range v {
		state := "normal"
		switch {
		case w.Minimized:
			state = "minimized"
		case w.Maximized:
			state = "maximized"
		}
		managed := "no"
		if w.Manageable {
			managed = "yes"
		}
		if w.HasSnapshot {
			managed += " (undo)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("0x%08x", uint32(w.ID)),
			w.Process,
			truncate(w.Title, 48),
			w.Bounds.String(),
			state,
			managed,
		})
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func runWindowList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile window list [--all]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List windows on the current desktop.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	all := fs.Bool("all", false, "Include windows that would not be arranged")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return fail(err)
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	windows, err := sess.windows()
	if err != nil {
		return fail(err)
	}
	if !*all {
		filtered := windows[:0]
		for _, w := range windows {
			if w.Manageable {
				filtered = append(filtered, w)
			}
		}
		windows = filtered
	}

	if out.Structured() {
		err = out.Print(windows)
	} else {
		err = out.Print(windowsView(windows))
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func parseWindowID(s string) (platform.WindowID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowID(v), nil
}

// parseRect parses x, y, width and height arguments.
func parseRect(args []string) (platform.Rect, error) {
	if len(args) != 4 {
		return platform.Rect{}, fmt.Errorf("expected <x> <y> <width> <height>")
	}
	var v [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return platform.Rect{}, fmt.Errorf("invalid number %q", a)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return platform.Rect{}, fmt.Errorf("width and height must be positive")
	}
	return platform.RectXYWH(v[0], v[1], v[2], v[3]), nil
}

func runWindowAction(action ipc.WindowAction, args []string) int {
	fs := flag.NewFlagSet(string(action), flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		if action == ipc.WindowMove {
			fmt.Fprintln(os.Stderr, "Usage: wintile window move <id> <x> <y> <width> <height>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Move and resize a window. The previous placement can be restored with undo.")
		} else {
			fmt.Fprintf(os.Stderr, "Usage: wintile window %s <id>\n", action)
		}
	}
	common := addCommonFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	want := 1
	if action == ipc.WindowMove {
		want = 5
	}
	if fs.NArg() != want {
		fs.Usage()
		return 2
	}

	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	req := ipc.WindowActionPayload{WindowID: id, Action: action}
	if action == ipc.WindowMove {
		rect, err := parseRect(fs.Args()[1:])
		if err != nil {
			return fail(err)
		}
		req.Bounds = &rect
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return fail(err)
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	if err := sess.windowAction(req); err != nil {
		return fail(err)
	}
	out.Success("Window 0x%08x: %s", uint32(id), action)
	return 0
}
