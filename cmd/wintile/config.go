package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/ipc"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wintile config validate [--config PATH]")
	fmt.Fprintln(w, "  wintile config print [--config PATH] [--defaults]")
	fmt.Fprintln(w, "  wintile config path [--config PATH]")
	fmt.Fprintln(w, "  wintile config reset [--config PATH] [--yes]")
	fmt.Fprintln(w, "  wintile config exclude add|remove <process>")
	fmt.Fprintln(w, "  wintile config export <file>")
	fmt.Fprintln(w, "  wintile config import <file>")
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printConfigUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "print":
		return runConfigPrint(args[1:])
	case "path":
		return runConfigPath(args[1:])
	case "reset":
		return runConfigReset(args[1:])
	case "exclude":
		return runConfigExclude(args[1:])
	case "export":
		return runConfigExport(args[1:])
	case "import":
		return runConfigImport(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}

func configFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/wintile/config.yaml)")
	return fs, path
}

// resolveConfigPath returns the explicit path or the default location.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

// notifyDaemon asks a running daemon to reload. A missing daemon is not
// an error.
func notifyDaemon() {
	err := ipc.NewClient().Reload()
	switch {
	case err == nil:
		fmt.Println("daemon: reloaded")
	case errors.Is(err, ipc.ErrDaemonUnavailable):
	default:
		fmt.Fprintf(os.Stderr, "daemon: reload failed: %v\n", err)
	}
}

func runConfigValidate(args []string) int {
	fs, path := configFlagSet("validate")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if _, err := loadConfig(*path); err != nil {
		return fail(err)
	}
	fmt.Println("config: ok")
	return 0
}

func runConfigPrint(args []string) int {
	fs, path := configFlagSet("print")
	defaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		var err error
		if cfg, err = loadConfig(*path); err != nil {
			return fail(err)
		}
		if p := cfg.Path(); p != "" {
			fmt.Printf("# source: %s\n", p)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fail(err)
	}
	fmt.Print(string(data))
	return 0
}

func runConfigPath(args []string) int {
	fs, path := configFlagSet("path")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	p, err := resolveConfigPath(*path)
	if err != nil {
		return fail(err)
	}
	fmt.Println(p)
	return 0
}

func runConfigReset(args []string) int {
	fs, path := configFlagSet("reset")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	p, err := resolveConfigPath(*path)
	if err != nil {
		return fail(err)
	}

	if !*yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "config reset needs confirmation; pass --yes when not running in a terminal")
			return 2
		}
		confirmed := false
		err := huh.NewConfirm().
			Title("Reset configuration to defaults?").
			Description(p).
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fail(err)
		}
		if !confirmed {
			fmt.Println("config: unchanged")
			return 1
		}
	}

	if err := config.DefaultConfig().SaveTo(p); err != nil {
		return fail(err)
	}
	fmt.Printf("config: reset %s\n", p)
	notifyDaemon()
	return 0
}

func runConfigExclude(args []string) int {
	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile config exclude add|remove [--config PATH] <process>")
	}
	if len(args) == 0 || isHelp(args[0]) {
		usage()
		return 2
	}
	op := args[0]
	if op != "add" && op != "remove" {
		usage()
		return 2
	}

	fs, path := configFlagSet("exclude " + op)
	if code, ok := parseArgs(fs, args[1:]); !ok {
		return code
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}
	name := fs.Arg(0)

	cfg, err := loadConfig(*path)
	if err != nil {
		return fail(err)
	}

	var changed bool
	if op == "add" {
		changed = cfg.AddExcludedProcess(name)
	} else {
		changed = cfg.RemoveExcludedProcess(name)
	}
	if !changed {
		if op == "add" {
			fmt.Printf("config: %s is already excluded\n", name)
		} else {
			fmt.Printf("config: %s is not excluded\n", name)
		}
		return 0
	}

	if *path != "" {
		err = cfg.SaveTo(*path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return fail(err)
	}
	if op == "add" {
		fmt.Printf("config: excluding %s\n", name)
	} else {
		fmt.Printf("config: no longer excluding %s\n", name)
	}
	notifyDaemon()
	return 0
}

func runConfigExport(args []string) int {
	fs, path := configFlagSet("export")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wintile config export [--config PATH] <file>")
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		return fail(err)
	}
	if err := cfg.SaveTo(fs.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("config: exported to %s\n", fs.Arg(0))
	return 0
}

func runConfigImport(args []string) int {
	fs, path := configFlagSet("import")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wintile config import [--config PATH] <file>")
		return 2
	}
	src := fs.Arg(0)
	if _, err := os.Stat(src); err != nil {
		return fail(err)
	}

	res, err := config.LoadFromPath(src)
	if err != nil {
		return fail(err)
	}
	dst, err := resolveConfigPath(*path)
	if err != nil {
		return fail(err)
	}
	if err := res.Config.SaveTo(dst); err != nil {
		return fail(err)
	}
	fmt.Printf("config: imported %s into %s\n", src, dst)
	notifyDaemon()
	return 0
}
