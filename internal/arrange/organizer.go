package arrange

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/history"
	"github.com/1broseidon/wintile/internal/layout"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/selector"
)

// Request describes one organize operation.
type Request struct {
	// Layout names the layout; empty uses the active layout.
	Layout string
	// Options overrides the configured layout options when non-nil.
	Options *layout.Options
	// Targets and Excludes narrow the selection by title or process.
	Targets  []string
	Excludes []string
}

// Result summarizes a batch of window operations.
type Result struct {
	Layout    string              `json:"layout,omitempty" yaml:"layout,omitempty"`
	Total     int                 `json:"total" yaml:"total"`
	Succeeded int                 `json:"succeeded" yaml:"succeeded"`
	Failed    []platform.WindowID `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// OK reports whether at least one window was handled.
func (r Result) OK() bool {
	return r.Succeeded > 0
}

// WindowStatus is an enumerated window with its live state.
type WindowStatus struct {
	platform.Window `yaml:",inline"`
	Minimized       bool `json:"minimized" yaml:"minimized"`
	Maximized       bool `json:"maximized" yaml:"maximized"`
	Manageable      bool `json:"manageable" yaml:"manageable"`
	HasSnapshot     bool `json:"has_snapshot" yaml:"has_snapshot"`
}

// Organizer runs the select, compute and move pipeline against a backend
// and keeps the undo history. All operations are serialized.
type Organizer struct {
	mu           sync.Mutex
	backend      platform.Backend
	engine       *layout.Engine
	selector     *selector.Selector
	history      *history.Manager
	config       *config.Config
	activeLayout string
}

// NewOrganizer creates an organizer. A nil engine gets the built-in layouts.
func NewOrganizer(backend platform.Backend, engine *layout.Engine, cfg *config.Config) *Organizer {
	if engine == nil {
		engine = layout.NewEngine()
	}
	return &Organizer{
		backend:      backend,
		engine:       engine,
		selector:     selector.New(rulesFromConfig(cfg)),
		history:      history.NewManager(backend),
		config:       cfg,
		activeLayout: cfg.DefaultLayout,
	}
}

// Engine returns the layout engine used for computing positions.
func (o *Organizer) Engine() *layout.Engine {
	return o.engine
}

func rulesFromConfig(cfg *config.Config) selector.Rules {
	return selector.Rules{
		ExcludedProcesses: cfg.Filters.ExcludedProcesses,
		IgnoreFixedSize:   cfg.Filters.IgnoreFixedSize,
		IgnoreMinimized:   cfg.Filters.IgnoreMinimized,
	}
}

// Organize arranges the manageable windows on the active display. Invalid
// requests fail before any window is touched. Per-window failures are
// logged and reported in the result.
func (o *Organizer) Organize(req Request) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	name := req.Layout
	if name == "" {
		name = o.activeLayout
	}
	if !o.engine.Has(name) {
		return Result{}, fmt.Errorf("%w: %q", layout.ErrUnsupportedLayout, name)
	}

	opts := o.config.Layouts
	if req.Options != nil {
		opts = *req.Options
	}
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid layout options: %w", err)
	}

	result := Result{Layout: name}

	display, err := o.backend.ActiveDisplay()
	if err != nil {
		return result, fmt.Errorf("failed to get active display: %w", err)
	}
	screen := display.Usable
	log.Printf("Organizing with layout %s on %s (%s)", name, display.Name, screen)

	all, err := o.backend.Windows()
	if err != nil {
		return result, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	windows := o.selector.Select(all, o.backend)
	windows = selector.Narrow(windows, req.Targets, req.Excludes)

	result.Total = len(windows)
	if len(windows) == 0 {
		log.Println("No manageable windows to organize")
		return result, nil
	}

	positions, err := o.engine.ComputePositions(name, windows, screen, opts)
	if err != nil {
		return result, err
	}

	for i, w := range windows {
		target, ok := positions[w.ID]
		if !ok {
			continue
		}
		if err := o.moveLocked(w.ID, target); err != nil {
			log.Printf("Warning: failed to move window %d (%s): %v", w.ID, w.Title, err)
			result.Failed = append(result.Failed, w.ID)
			continue
		}
		log.Printf("Window %d: %s -> %s", i+1, w.Title, target)
		result.Succeeded++
	}

	log.Printf("Organized %d/%d window(s)", result.Succeeded, result.Total)
	return result, nil
}

// moveLocked records the current placement, un-minimizes, then moves.
// No move happens without a snapshot.
func (o *Organizer) moveLocked(id platform.WindowID, target platform.Rect) error {
	if target.Width() < 1 || target.Height() < 1 {
		return fmt.Errorf("invalid target geometry %s", target)
	}
	if err := o.history.Snapshot(id); err != nil {
		return err
	}
	if minimized, err := o.backend.IsMinimized(id); err == nil && minimized {
		if err := o.backend.Restore(id); err != nil {
			return fmt.Errorf("failed to restore minimized window: %w", err)
		}
	}
	return o.backend.MoveResize(id, target)
}

// MoveWindow moves a single window, recording its placement for undo.
func (o *Organizer) MoveWindow(id platform.WindowID, target platform.Rect) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.moveLocked(id, target)
}

// Undo restores every currently enumerated window that has a recorded
// placement.
func (o *Organizer) Undo() (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	all, err := o.backend.Windows()
	if err != nil {
		return Result{}, fmt.Errorf("failed to enumerate windows: %w", err)
	}

	result := Result{}
	for _, w := range all {
		if !o.history.Has(w.ID) {
			continue
		}
		result.Total++
		if err := o.history.RestoreErr(w.ID); err != nil {
			log.Printf("Warning: failed to restore window %d (%s): %v", w.ID, w.Title, err)
			result.Failed = append(result.Failed, w.ID)
			continue
		}
		result.Succeeded++
	}

	log.Printf("Restored %d/%d window(s)", result.Succeeded, result.Total)
	return result, nil
}

// UndoWindow restores a single window. It returns history.ErrNoSnapshot
// when nothing was recorded for it.
func (o *Organizer) UndoWindow(id platform.WindowID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history.RestoreErr(id)
}

// PruneHistory drops snapshots of windows that no longer exist.
func (o *Organizer) PruneHistory() (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.history.Len() == 0 {
		return 0, nil
	}
	all, err := o.backend.Windows()
	if err != nil {
		return 0, err
	}
	alive := make([]platform.WindowID, 0, len(all))
	for _, w := range all {
		alive = append(alive, w.ID)
	}
	return o.history.Prune(alive), nil
}

// HistorySize returns the number of windows with a recorded placement.
func (o *Organizer) HistorySize() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history.Len()
}

// Windows lists enumerated windows with their state and whether the
// current rules would arrange them.
func (o *Organizer) Windows() ([]WindowStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	all, err := o.backend.Windows()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}

	manageable := make(map[platform.WindowID]bool)
	for _, w := range o.selector.Select(all, o.backend) {
		manageable[w.ID] = true
	}

	out := make([]WindowStatus, 0, len(all))
	for _, w := range all {
		st := WindowStatus{
			Window:      w,
			Manageable:  manageable[w.ID],
			HasSnapshot: o.history.Has(w.ID),
		}
		st.Minimized, _ = o.backend.IsMinimized(w.ID)
		st.Maximized, _ = o.backend.IsMaximized(w.ID)
		out = append(out, st)
	}
	return out, nil
}

// ActiveLayout returns the current active layout name.
func (o *Organizer) ActiveLayout() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.activeLayout != "" {
		return o.activeLayout
	}
	return o.config.DefaultLayout
}

// SetActiveLayout sets the layout used when a request names none.
func (o *Organizer) SetActiveLayout(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.engine.Has(name) {
		return fmt.Errorf("%w: %q", layout.ErrUnsupportedLayout, name)
	}
	o.activeLayout = name
	return nil
}

// CycleLayout moves to the next or previous layout in sorted order.
func (o *Organizer) CycleLayout(delta int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := o.engine.Names()
	if len(names) == 0 {
		return "", fmt.Errorf("no layouts registered")
	}

	current := o.activeLayout
	if current == "" {
		current = o.config.DefaultLayout
	}

	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}

	n := len(names)
	next := (idx + delta) % n
	if next < 0 {
		next += n
	}

	o.activeLayout = names[next]
	return o.activeLayout, nil
}

// Config returns the configuration in use.
func (o *Organizer) Config() *config.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// UpdateConfig swaps in a reloaded configuration. The active layout falls
// back to the new default when it is no longer registered.
func (o *Organizer) UpdateConfig(cfg *config.Config) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.config = cfg
	o.selector.UpdateRules(rulesFromConfig(cfg))
	if o.activeLayout == "" || !o.engine.Has(o.activeLayout) {
		o.activeLayout = cfg.DefaultLayout
	}
}
