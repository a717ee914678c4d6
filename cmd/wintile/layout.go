package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/layout"
	"github.com/1broseidon/wintile/internal/output"
)

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wintile layout list")
	fmt.Fprintln(w, "  wintile layout apply [--now] <layout>")
	fmt.Fprintln(w, "  wintile layout cycle [--prev] [--now]")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printLayoutUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "list":
		return runLayoutList(args[1:])
	case "apply":
		return runLayoutApply(args[1:])
	case "cycle":
		return runLayoutCycle(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown layout subcommand: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

// layoutsView renders a layout listing.
type layoutsView ipc.LayoutsData

func (v layoutsView) Headers() []string { return []string{"LAYOUT", "DEFAULT", "ACTIVE"} }

func (v layoutsView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Layouts))
	for _, name := range v.Layouts {
		row := []string{name, "", ""}
		if name == v.DefaultLayout {
			row[1] = "*"
		}
		if name == v.ActiveLayout {
			row[2] = "*"
		}
		rows = append(rows, row)
	}
	return rows
}

func runLayoutList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile layout list")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List available layouts (and current selection when the daemon is running).")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layout list takes no arguments")
		return 2
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}

	data, err := ipc.NewClient().ListLayouts()
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		cfg, cfgErr := common.loadConfig()
		if cfgErr != nil {
			return fail(cfgErr)
		}
		data = &ipc.LayoutsData{
			Layouts:       layout.NewEngine().Names(),
			DefaultLayout: cfg.DefaultLayout,
			ActiveLayout:  cfg.DefaultLayout,
		}
	} else if err != nil {
		return fail(err)
	}

	if out.Structured() {
		err = out.Print(data)
	} else {
		err = out.Print(layoutsView(*data))
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func runLayoutApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile layout apply [--now] <layout>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set the daemon's active layout (optionally arranging immediately).")
		fmt.Fprintln(os.Stderr, "Without a daemon the layout is applied right away.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	now := fs.Bool("now", false, "Arrange windows with the layout immediately")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "layout apply requires exactly one layout name")
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)

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

	if !sess.daemon() {
		result, err := sess.organize(arrange.Request{Layout: name})
		if err != nil {
			return fail(err)
		}
		return printResult(out, result, "Arranged")
	}

	data, err := sess.client.SetActiveLayout(name, *now)
	if err != nil {
		return fail(err)
	}
	return printActiveLayout(out, data)
}

func runLayoutCycle(args []string) int {
	fs := flag.NewFlagSet("cycle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile layout cycle [--prev] [--now]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Switch the daemon's active layout to the next one in name order.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	prev := fs.Bool("prev", false, "Cycle backwards")
	now := fs.Bool("now", false, "Arrange windows with the new layout immediately")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layout cycle takes no arguments")
		return 2
	}
	out, err := common.printer()
	if err != nil {
		return fail(err)
	}

	delta := 1
	if *prev {
		delta = -1
	}
	data, err := ipc.NewClient().CycleLayout(delta, *now)
	if err != nil {
		return fail(err)
	}
	return printActiveLayout(out, data)
}

func printActiveLayout(out *output.Printer, data *ipc.ActiveLayoutData) int {
	if out.Structured() {
		if err := out.Print(data); err != nil {
			return fail(err)
		}
		return 0
	}
	out.Success("Active layout: %s", data.ActiveLayout)
	if data.Result != nil {
		return printResult(out, *data.Result, "Arranged")
	}
	return 0
}
