package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.DefaultLayout != "cascade" {
		t.Fatalf("expected default layout cascade, got %q", cfg.DefaultLayout)
	}
	if cfg.Layouts.Cascade.OffsetX != 30 || cfg.Layouts.Grid.Padding != 10 || cfg.Layouts.Stack.Position != layout.AnchorCenter {
		t.Fatalf("unexpected layout defaults: %+v", cfg.Layouts)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file recorded, got %q", res.File)
	}
	if res.Config.Path() != path {
		t.Fatalf("expected config path %q, got %q", path, res.Config.Path())
	}
	if len(res.Config.Hotkeys) != 6 {
		t.Fatalf("expected default hotkeys, got %v", res.Config.Hotkeys)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultLayout != "cascade" {
		t.Fatalf("expected default_layout cascade, got %q", res.Config.DefaultLayout)
	}
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"default_layout: grid",
		"layouts:",
		"  grid:",
		"    columns: 3",
		"    padding: 0",
		"  stack:",
		"    position: right",
		"    width: 50%",
		"filters:",
		"  ignore_minimized: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.DefaultLayout != "grid" || cfg.Layouts.Grid.Columns != 3 || cfg.Layouts.Grid.Padding != 0 {
		t.Fatalf("unexpected grid config: %+v", cfg.Layouts.Grid)
	}
	if cfg.Layouts.Cascade.OffsetX != 30 {
		t.Fatalf("expected cascade default kept, got %+v", cfg.Layouts.Cascade)
	}
	if cfg.Layouts.Stack.Position != layout.AnchorRight || cfg.Layouts.Stack.Width.String() != "50%" {
		t.Fatalf("unexpected stack config: %+v", cfg.Layouts.Stack)
	}
	if cfg.Filters.IgnoreMinimized || !cfg.Filters.IgnoreFixedSize {
		t.Fatalf("unexpected filters: %+v", cfg.Filters)
	}
	if len(cfg.Filters.ExcludedProcesses) == 0 {
		t.Fatalf("expected default excluded processes kept")
	}
}

func TestLoadFromPath_HotkeysReplaceDefaults(t *testing.T) {
	path := writeConfig(t, "hotkeys:\n  super+shift+g: layout apply grid\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Hotkeys) != 1 {
		t.Fatalf("expected only user hotkeys, got %v", res.Config.Hotkeys)
	}

	bindings, err := res.Config.HotkeyBindings()
	if err != nil {
		t.Fatalf("HotkeyBindings: %v", err)
	}
	want := HotkeyBinding{Chord: "g+shift+win", Action: hotkeys.Action{Kind: hotkeys.ActionApply, Layout: "grid"}}
	if len(bindings) != 1 || bindings[0] != want {
		t.Fatalf("unexpected bindings: %+v", bindings)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "gap_size: 4\n")); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "log_level: info\nlayouts:\n  grid:\n    padding: -4\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "layouts.grid.padding" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 4 {
		t.Fatalf("expected source line 4, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), path+":4:") {
		t.Fatalf("expected file:line in error, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty default layout", func(c *Config) { c.DefaultLayout = "" }, "default_layout"},
		{"unknown default layout", func(c *Config) { c.DefaultLayout = "spiral" }, "default_layout"},
		{"negative columns", func(c *Config) { c.Layouts.Grid.Columns = -2 }, "layouts.grid.columns"},
		{"negative offset", func(c *Config) { c.Layouts.Cascade.OffsetX = -1 }, "layouts.cascade"},
		{"bad anchor", func(c *Config) { c.Layouts.Stack.Position = "top" }, "layouts.stack.position"},
		{"blank excluded process", func(c *Config) { c.Filters.ExcludedProcesses = []string{" "} }, "filters.excluded_processes"},
		{"bad chord", func(c *Config) { c.Hotkeys = map[string]string{"ctrl++": "undo"} }, "hotkeys.ctrl++"},
		{"modifier-only chord", func(c *Config) { c.Hotkeys = map[string]string{"ctrl+alt": "organize"} }, "hotkeys.ctrl+alt"},
		{"two-key chord", func(c *Config) { c.Hotkeys = map[string]string{"ctrl+a+b": "undo"} }, "hotkeys.ctrl+a+b"},
		{"bad action", func(c *Config) { c.Hotkeys = map[string]string{"ctrl+x": "explode"} }, "hotkeys.ctrl+x"},
		{"unknown layout action", func(c *Config) { c.Hotkeys = map[string]string{"ctrl+x": "layout apply spiral"} }, "hotkeys.ctrl+x"},
		{"unknown launcher", func(c *Config) { c.Launcher = "bemenu" }, "launcher"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestHotkeyBindings_DuplicateChord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hotkeys = map[string]string{
		"ctrl+alt+x": "undo",
		"alt+ctrl+x": "organize",
	}
	if _, err := cfg.HotkeyBindings(); err == nil {
		t.Fatalf("expected duplicate chord error")
	}
}

func TestExcludedProcesses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filters.ExcludedProcesses = []string{"polybar"}

	if cfg.AddExcludedProcess("Polybar") {
		t.Fatalf("expected case-insensitive duplicate to be ignored")
	}
	if !cfg.AddExcludedProcess("conky") {
		t.Fatalf("expected conky added")
	}
	if !cfg.RemoveExcludedProcess("POLYBAR") {
		t.Fatalf("expected polybar removed")
	}
	if cfg.RemoveExcludedProcess("polybar") {
		t.Fatalf("expected second removal to report false")
	}
	if len(cfg.Filters.ExcludedProcesses) != 1 || cfg.Filters.ExcludedProcesses[0] != "conky" {
		t.Fatalf("unexpected list: %v", cfg.Filters.ExcludedProcesses)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.DefaultLayout = "stack"
	height, _ := layout.Px(600)
	cfg.Layouts.Stack.Height = height

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.DefaultLayout != "stack" {
		t.Fatalf("expected stack, got %q", res.Config.DefaultLayout)
	}
	if res.Config.Layouts.Stack.Height.String() != "600px" {
		t.Fatalf("expected 600px height, got %q", res.Config.Layouts.Stack.Height.String())
	}
	if res.Config.Layouts.Stack.Width.IsSet() {
		t.Fatalf("expected unset width to stay unset")
	}
}

func TestSave_RefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.SaveTo(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file written, stat err=%v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if got != "/tmp/xdg/wintile/config.yaml" {
		t.Fatalf("unexpected path %q", got)
	}

	t.Setenv(EnvConfigPath, "/etc/wintile.yaml")
	if got, _ := DefaultConfigPath(); got != "/etc/wintile.yaml" {
		t.Fatalf("expected override, got %q", got)
	}
}
