package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/launcher"
)

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile menu [--launcher NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a layout or action from rofi, fuzzel, wofi or dmenu.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	common := addCommonFlags(fs)
	launcherName := fs.String("launcher", "", "Launcher program: auto, rofi, fuzzel, wofi or dmenu (default: from config)")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "menu takes no arguments")
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

	name := cfg.Launcher
	if *launcherName != "" {
		name = *launcherName
	}
	chooser, err := launcher.New(name)
	if err != nil {
		return fail(err)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	layouts, active, err := sess.layouts()
	if err != nil {
		return fail(err)
	}

	action, err := launcher.Pick(chooser, layouts, active)
	if errors.Is(err, launcher.ErrCancelled) {
		return 0
	}
	if err != nil {
		return fail(err)
	}

	var result arrange.Result
	verb := "Arranged"
	switch action.Kind {
	case hotkeys.ActionUndo:
		result, err = sess.undo()
		verb = "Restored"
	case hotkeys.ActionCycle:
		result, err = sess.cycle(action.Delta)
	case hotkeys.ActionMenu:
		return 0
	default:
		result, err = sess.organize(arrange.Request{Layout: action.Layout})
	}
	if err != nil {
		return fail(err)
	}
	return printResult(out, result, verb)
}
