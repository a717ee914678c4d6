package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/wintile/internal/hotkeys"
)

func printHotkeyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wintile hotkey list")
	fmt.Fprintln(w, "  wintile hotkey check <chord> [action]")
}

func runHotkey(args []string) int {
	if len(args) == 0 {
		printHotkeyUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printHotkeyUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "list":
		return runHotkeyList(args[1:])
	case "check":
		return runHotkeyCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown hotkey subcommand: %s\n\n", args[0])
		printHotkeyUsage(os.Stderr)
		return 2
	}
}

type hotkeyRow struct {
	Chord   string `json:"chord" yaml:"chord"`
	Keybind string `json:"keybind" yaml:"keybind"`
	Action  string `json:"action" yaml:"action"`
}

type hotkeysView []hotkeyRow

func (v hotkeysView) Headers() []string { return []string{"CHORD", "X11 GRAB", "ACTION"} }

func (v hotkeysView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, h := range v {
		rows = append(rows, []string{h.Chord, h.Keybind, h.Action})
	}
	return rows
}

func runHotkeyList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
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

	bindings, err := cfg.HotkeyBindings()
	if err != nil {
		return fail(err)
	}
	rows := make(hotkeysView, 0, len(bindings))
	for _, b := range bindings {
		keybind, err := hotkeys.KeybindString(b.Chord)
		if err != nil {
			keybind = "invalid: " + err.Error()
		}
		rows = append(rows, hotkeyRow{Chord: b.Chord, Keybind: keybind, Action: b.Action.String()})
	}

	if !cfg.HotkeysEnabled && !out.Structured() {
		out.Warn("Hotkeys are disabled (hotkeys_enabled: false)")
	}
	if err := out.Print(rows); err != nil {
		return fail(err)
	}
	return 0
}

func runHotkeyCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile hotkey check <chord> [action]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Validate a chord such as ctrl+alt+g and, optionally, an action such as")
		fmt.Fprintln(os.Stderr, "\"layout apply grid\". Reports conflicts with configured hotkeys.")
	}
	common := addCommonFlags(fs)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
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

	chord, err := hotkeys.Normalize(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	keybind, err := hotkeys.KeybindString(chord)
	if err != nil {
		return fail(err)
	}
	row := hotkeyRow{Chord: chord, Keybind: keybind}
	if fs.NArg() > 1 {
		action, err := hotkeys.ParseAction(strings.Join(fs.Args()[1:], " "))
		if err != nil {
			return fail(err)
		}
		row.Action = action.String()
	}

	if bindings, err := cfg.HotkeyBindings(); err == nil {
		for _, b := range bindings {
			if b.Chord == chord {
				out.Warn("%s is already bound to %q", chord, b.Action.String())
			}
		}
	}

	if err := out.Print(hotkeysView{row}); err != nil {
		return fail(err)
	}
	return 0
}
