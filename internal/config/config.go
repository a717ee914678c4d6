package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/launcher"
	"github.com/1broseidon/wintile/internal/layout"
	"gopkg.in/yaml.v3"
)

// Filters decide which windows are eligible for arrangement.
type Filters struct {
	IgnoreFixedSize   bool     `yaml:"ignore_fixed_size"`
	IgnoreMinimized   bool     `yaml:"ignore_minimized"`
	ExcludedProcesses []string `yaml:"excluded_processes"`
}

// Config holds the application configuration.
type Config struct {
	DefaultLayout  string            `yaml:"default_layout"`
	Layouts        layout.Options    `yaml:"layouts"`
	Filters        Filters           `yaml:"filters"`
	HotkeysEnabled bool              `yaml:"hotkeys_enabled"`
	Hotkeys        map[string]string `yaml:"hotkeys"` // chord -> action
	Launcher       string            `yaml:"launcher"`
	LogLevel       string            `yaml:"log_level"`
	Display        string            `yaml:"display,omitempty"`
	XAuthority     string            `yaml:"xauthority,omitempty"`

	// path is where the config was loaded from; Save writes back there.
	path string
}

// ValidationError points at the config key that failed validation.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func DefaultConfig() *Config {
	return &Config{
		DefaultLayout: "cascade",
		Layouts:       layout.DefaultOptions(),
		Filters: Filters{
			IgnoreFixedSize: true,
			IgnoreMinimized: true,
			ExcludedProcesses: []string{
				"plasmashell",
				"xfdesktop",
				"xfce4-panel",
				"polybar",
			},
		},
		HotkeysEnabled: true,
		Hotkeys: map[string]string{
			"ctrl+alt+o": "organize",
			"ctrl+alt+c": "layout apply cascade",
			"ctrl+alt+g": "layout apply grid",
			"ctrl+alt+s": "layout apply stack",
			"ctrl+alt+u": "layout undo",
			"ctrl+alt+m": "menu",
		},
		Launcher: "auto",
		LogLevel: "info",
	}
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// HotkeyBinding is a validated hotkey entry.
type HotkeyBinding struct {
	Chord  string
	Action hotkeys.Action
}

// HotkeyBindings parses the hotkeys section, sorted by canonical chord.
func (c *Config) HotkeyBindings() ([]HotkeyBinding, error) {
	bindings := make([]HotkeyBinding, 0, len(c.Hotkeys))
	seen := make(map[string]string, len(c.Hotkeys))
	for chord, actionStr := range c.Hotkeys {
		canonical, err := hotkeys.Normalize(chord)
		if err != nil {
			return nil, &ValidationError{Path: "hotkeys." + chord, Err: err}
		}
		if _, _, err := hotkeys.SplitChord(canonical); err != nil {
			return nil, &ValidationError{Path: "hotkeys." + chord, Err: err}
		}
		if prev, dup := seen[canonical]; dup {
			return nil, &ValidationError{Path: "hotkeys." + chord, Err: fmt.Errorf("same chord as %q", prev)}
		}
		seen[canonical] = chord

		action, err := hotkeys.ParseAction(actionStr)
		if err != nil {
			return nil, &ValidationError{Path: "hotkeys." + chord, Err: err}
		}
		if action.Layout != "" {
			if _, err := layout.ParseKind(action.Layout); err != nil {
				return nil, &ValidationError{Path: "hotkeys." + chord, Err: err}
			}
		}
		bindings = append(bindings, HotkeyBinding{Chord: canonical, Action: action})
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Chord < bindings[j].Chord
	})
	return bindings, nil
}

// AddExcludedProcess adds name to the exclusion list unless present.
// It reports whether the list changed.
func (c *Config) AddExcludedProcess(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, p := range c.Filters.ExcludedProcesses {
		if strings.EqualFold(p, name) {
			return false
		}
	}
	c.Filters.ExcludedProcesses = append(c.Filters.ExcludedProcesses, name)
	return true
}

// RemoveExcludedProcess removes name from the exclusion list.
func (c *Config) RemoveExcludedProcess(name string) bool {
	out := c.Filters.ExcludedProcesses[:0]
	removed := false
	for _, p := range c.Filters.ExcludedProcesses {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			removed = true
			continue
		}
		out = append(out, p)
	}
	c.Filters.ExcludedProcesses = out
	return removed
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultLayout) == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if _, err := layout.ParseKind(c.DefaultLayout); err != nil {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout must be one of: cascade, grid, stack")}
	}

	opts := c.Layouts
	if opts.Cascade.OffsetX < 0 || opts.Cascade.OffsetY < 0 {
		return &ValidationError{Path: "layouts.cascade", Err: fmt.Errorf("offsets must be >= 0")}
	}
	if opts.Grid.Columns < 0 {
		return &ValidationError{Path: "layouts.grid.columns", Err: fmt.Errorf("columns must be > 0 when set")}
	}
	if opts.Grid.Padding < 0 {
		return &ValidationError{Path: "layouts.grid.padding", Err: fmt.Errorf("padding must be >= 0")}
	}
	if !opts.Stack.Position.Valid() {
		return &ValidationError{Path: "layouts.stack.position", Err: fmt.Errorf("position must be one of: center, left, right")}
	}

	for i, p := range c.Filters.ExcludedProcesses {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Path: "filters.excluded_processes", Err: fmt.Errorf("entry %d is empty", i)}
		}
	}

	if _, err := c.HotkeyBindings(); err != nil {
		return err
	}

	if !launcher.ValidName(c.Launcher) {
		return &ValidationError{Path: "launcher", Err: fmt.Errorf("launcher must be one of: auto, %s", strings.Join(launcher.Programs, ", "))}
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// Save writes the configuration to the path it was loaded from, or the
// standard location.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.path = path
	return nil
}
