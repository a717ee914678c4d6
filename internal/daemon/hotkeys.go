package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/launcher"
)

// Dispatcher executes hotkey actions against the organizer.
type Dispatcher struct {
	organizer *arrange.Organizer
	logger    *slog.Logger

	mu sync.Mutex
	// chooser backs ActionMenu; nil means the menu is unavailable.
	chooser  launcher.Chooser
	menuOpen atomic.Bool
}

// NewDispatcher creates a dispatcher. chooser may be nil.
func NewDispatcher(organizer *arrange.Organizer, chooser launcher.Chooser, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{organizer: organizer, chooser: chooser, logger: logger}
}

// SetChooser replaces the launcher used for ActionMenu.
func (d *Dispatcher) SetChooser(c launcher.Chooser) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chooser = c
}

// Run executes one action.
func (d *Dispatcher) Run(action hotkeys.Action) {
	switch action.Kind {
	case hotkeys.ActionUndo:
		res, err := d.organizer.Undo()
		if err != nil {
			d.logger.Error("hotkey undo failed", "error", err)
			return
		}
		if !res.OK() {
			d.logger.Info("hotkey undo: nothing to restore")
			return
		}
		d.logger.Info("hotkey undo", "restored", res.Succeeded, "total", res.Total)

	case hotkeys.ActionCycle:
		name, err := d.organizer.CycleLayout(action.Delta)
		if err != nil {
			d.logger.Error("hotkey cycle failed", "error", err)
			return
		}
		d.logger.Info("switched layout", "layout", name)
		d.apply(name)

	case hotkeys.ActionMenu:
		d.menu()

	default:
		d.apply(action.Layout)
	}
}

func (d *Dispatcher) apply(name string) {
	res, err := d.organizer.Organize(arrange.Request{Layout: name})
	if err != nil {
		d.logger.Error("hotkey organize failed", "layout", name, "error", err)
		return
	}
	d.logger.Info("hotkey organize", "layout", res.Layout, "moved", res.Succeeded, "total", res.Total)
}

func (d *Dispatcher) menu() {
	d.mu.Lock()
	chooser := d.chooser
	d.mu.Unlock()
	if chooser == nil {
		d.logger.Warn("menu hotkey pressed but no launcher is available")
		return
	}
	if !d.menuOpen.CompareAndSwap(false, true) {
		return
	}
	defer d.menuOpen.Store(false)

	action, err := launcher.Pick(chooser, d.organizer.Engine().Names(), d.organizer.ActiveLayout())
	if errors.Is(err, launcher.ErrCancelled) {
		return
	}
	if err != nil {
		d.logger.Error("menu failed", "error", err)
		return
	}
	if action.Kind == hotkeys.ActionMenu {
		return
	}
	d.Run(action)
}

// BindHotkeys replaces the engine's bindings with the configured ones.
// The engine must be stopped; callers restart it afterwards.
func BindHotkeys(engine *hotkeys.Engine, cfg *config.Config, d *Dispatcher) (int, error) {
	if engine.Running() {
		return 0, fmt.Errorf("cannot rebind hotkeys while the engine is running")
	}
	for _, chord := range engine.Bindings() {
		engine.Unregister(chord)
	}
	if !cfg.HotkeysEnabled {
		return 0, nil
	}

	bindings, err := cfg.HotkeyBindings()
	if err != nil {
		return 0, err
	}

	for _, b := range bindings {
		action := b.Action
		if !engine.Register(b.Chord, func() { d.Run(action) }) {
			return 0, fmt.Errorf("invalid hotkey %q", b.Chord)
		}
		d.logger.Debug("hotkey bound", "chord", b.Chord, "action", action.String())
	}
	return len(bindings), nil
}
