package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/layout"
	"github.com/1broseidon/wintile/internal/output"
)

// layoutFlags holds per-invocation overrides of the configured layout
// options.
type layoutFlags struct {
	offsetX  int
	offsetY  int
	columns  int
	padding  int
	position string
	width    layout.Dimension
	height   layout.Dimension
	targets  stringList
	excludes stringList
}

func addLayoutFlags(fs *flag.FlagSet) *layoutFlags {
	lf := &layoutFlags{}
	fs.IntVar(&lf.offsetX, "offset-x", 0, "Cascade horizontal offset in pixels")
	fs.IntVar(&lf.offsetY, "offset-y", 0, "Cascade vertical offset in pixels")
	fs.IntVar(&lf.columns, "columns", 0, "Grid column count (default: automatic)")
	fs.IntVar(&lf.padding, "padding", 0, "Grid padding in pixels")
	fs.StringVar(&lf.position, "position", "", "Stack position: center, left or right")
	fs.TextVar(&lf.width, "width", layout.Dimension{}, "Stack width, e.g. 80% or 1200px")
	fs.TextVar(&lf.height, "height", layout.Dimension{}, "Stack height, e.g. 80% or 900px")
	fs.Var(&lf.targets, "target", "Only arrange windows whose title or process contains this text (repeatable)")
	fs.Var(&lf.excludes, "exclude", "Skip windows whose title or process contains this text (repeatable)")
	return lf
}

// options merges the flags that were set on the command line over base.
// It returns nil when no option flag was given.
func (lf *layoutFlags) options(fs *flag.FlagSet, base layout.Options) (*layout.Options, error) {
	opts := base
	changed := false
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "offset-x":
			opts.Cascade.OffsetX = lf.offsetX
		case "offset-y":
			opts.Cascade.OffsetY = lf.offsetY
		case "columns":
			if lf.columns < 1 {
				err = fmt.Errorf("--columns must be at least 1")
			}
			opts.Grid.Columns = lf.columns
		case "padding":
			opts.Grid.Padding = lf.padding
		case "position":
			opts.Stack.Position = layout.Anchor(lf.position)
		case "width":
			opts.Stack.Width = lf.width
		case "height":
			opts.Stack.Height = lf.height
		default:
			return
		}
		changed = true
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func runOrganize(name, fixedLayout string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		if fixedLayout != "" {
			fmt.Fprintf(os.Stderr, "Usage: wintile %s [flags]\n", name)
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintf(os.Stderr, "Arrange windows on the active display with the %s layout.\n", fixedLayout)
		} else {
			fmt.Fprintln(os.Stderr, "Usage: wintile organize [flags] [layout]")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Arrange windows on the active display (default: the active layout).")
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	lf := addLayoutFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	layoutName := fixedLayout
	switch {
	case fixedLayout != "" && fs.NArg() != 0:
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	case fixedLayout == "" && fs.NArg() > 1:
		fmt.Fprintln(os.Stderr, "organize takes at most one layout name")
		return 2
	case fixedLayout == "" && fs.NArg() == 1:
		layoutName = fs.Arg(0)
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return fail(err)
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}
	opts, err := lf.options(fs, cfg.Layouts)
	if err != nil {
		return fail(err)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	if layoutName == "" && !sess.daemon() {
		layoutName = cfg.DefaultLayout
	}

	result, err := sess.organize(arrange.Request{
		Layout:   layoutName,
		Options:  opts,
		Targets:  lf.targets,
		Excludes: lf.excludes,
	})
	if err != nil {
		return fail(err)
	}
	return printResult(out, result, "Arranged")
}

func runUndo(args []string) int {
	fs := flag.NewFlagSet("undo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile undo")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore windows to the placement recorded before they were arranged.")
		fmt.Fprintln(os.Stderr, "Placements are kept by the daemon; without it there is nothing to undo.")
	}
	common := addCommonFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "undo takes no arguments")
		fs.Usage()
		return 2
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

	result, err := sess.undo()
	if err != nil {
		return fail(err)
	}
	if result.Total == 0 && !out.Structured() {
		out.Warn("Nothing to undo")
		return 1
	}
	return printResult(out, result, "Restored")
}

// resultView renders an arrange.Result.
type resultView struct {
	arrange.Result
}

func (v resultView) Headers() []string { return []string{"LAYOUT", "TOTAL", "SUCCEEDED", "FAILED"} }

func (v resultView) Rows() [][]string {
	failed := "-"
	if len(v.Failed) > 0 {
		failed = fmt.Sprint(v.Failed)
	}
	layoutName := v.Layout
	if layoutName == "" {
		layoutName = "-"
	}
	return [][]string{{layoutName, strconv.Itoa(v.Total), strconv.Itoa(v.Succeeded), failed}}
}

func printResult(out *output.Printer, result arrange.Result, verb string) int {
	if out.Structured() {
		if err := out.Print(result); err != nil {
			return fail(err)
		}
	} else if out.Format() == output.FormatText {
		out.Info("%s %d/%d window(s)", verb, result.Succeeded, result.Total)
	} else {
		switch {
		case result.Total == 0:
			out.Warn("No manageable windows found")
		case len(result.Failed) > 0:
			out.Warn("%s %d/%d window(s); %d failed", verb, result.Succeeded, result.Total, len(result.Failed))
		default:
			out.Success("%s %d window(s)", verb, result.Succeeded)
		}
		if result.Total > 0 {
			out.Print(resultView{result})
		}
	}
	if !result.OK() {
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	common := addCommonFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		return fail(err)
	}
	if out.Structured() {
		if err := out.Print(status); err != nil {
			return fail(err)
		}
		return 0
	}

	rows := [][]string{
		{"daemon_running", strconv.FormatBool(status.DaemonRunning)},
		{"active_layout", status.ActiveLayout},
		{"default_layout", status.DefaultLayout},
		{"window_count", strconv.Itoa(status.WindowCount)},
		{"history_size", strconv.Itoa(status.HistorySize)},
		{"hotkeys_enabled", strconv.FormatBool(status.HotkeysEnabled)},
		{"uptime_seconds", strconv.FormatInt(status.UptimeSeconds, 10)},
	}
	if status.ConfigPath != "" {
		rows = append(rows, []string{"config_path", status.ConfigPath})
	}
	if monitors, err := client.GetMonitors(); err == nil {
		for _, m := range monitors.Monitors {
			rows = append(rows, []string{"monitor." + m.Name, m.Usable.String()})
		}
	}
	out.Print(output.Table{Head: []string{"KEY", "VALUE"}, Body: rows})
	return 0
}
