package arrange

import (
	"errors"
	"testing"

	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/history"
	"github.com/1broseidon/wintile/internal/layout"
	"github.com/1broseidon/wintile/internal/platform"
	"github.com/1broseidon/wintile/internal/platform/platformtest"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Filters.ExcludedProcesses = []string{"panel"}
	return cfg
}

func TestOrganizeContinuesPastFailedMove(t *testing.T) {
	backend := platformtest.New(
		platformtest.Window(1, "one", "a"),
		platformtest.Window(2, "two", "b"),
		platformtest.Window(3, "three", "c"),
	)
	backend.FailMoves(2)

	o := NewOrganizer(backend, nil, testConfig())
	res, err := o.Organize(Request{Layout: "grid"})
	if err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected OK result, got %+v", res)
	}
	if len(backend.Moves()) != 3 {
		t.Fatalf("expected 3 move attempts, got %d", len(backend.Moves()))
	}
	if res.Total != 3 || res.Succeeded != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.Failed) != 1 || res.Failed[0] != 2 {
		t.Fatalf("expected window 2 failed, got %v", res.Failed)
	}
}

func TestOrganizeAppliesGridGeometry(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"), platformtest.Window(2, "two", "b"))
	backend.Display.Usable = platform.RectXYWH(0, 0, 1000, 1000)

	o := NewOrganizer(backend, nil, testConfig())
	if _, err := o.Organize(Request{Layout: "grid"}); err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}

	// Two windows give a 2x1 grid with 10px padding.
	want := map[platform.WindowID]platform.Rect{
		1: platform.RectXYWH(10, 10, 485, 980),
		2: platform.RectXYWH(505, 10, 485, 980),
	}
	for id, rect := range want {
		if got := backend.Bounds(id); got != rect {
			t.Fatalf("window %d: expected %s, got %s", id, rect, got)
		}
	}
}

func TestOrganizeUnknownLayoutTouchesNothing(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"))
	o := NewOrganizer(backend, nil, testConfig())

	_, err := o.Organize(Request{Layout: "spiral"})
	if !errors.Is(err, layout.ErrUnsupportedLayout) {
		t.Fatalf("expected ErrUnsupportedLayout, got %v", err)
	}
	if backend.Calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.Calls())
	}
}

func TestOrganizeInvalidOptionsTouchesNothing(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"))
	o := NewOrganizer(backend, nil, testConfig())

	opts := layout.DefaultOptions()
	opts.Grid.Padding = -5
	if _, err := o.Organize(Request{Layout: "grid", Options: &opts}); err == nil {
		t.Fatalf("expected error for negative padding")
	}
	if backend.Calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.Calls())
	}
}

func TestOrganizeNoWindows(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "bar", "panel"))
	o := NewOrganizer(backend, nil, testConfig())

	res, err := o.Organize(Request{})
	if err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if res.OK() || res.Total != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if len(backend.Moves()) != 0 {
		t.Fatalf("expected no moves, got %v", backend.Moves())
	}
}

func TestOrganizeRestoresMinimizedBeforeMove(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"))
	cfg := testConfig()
	cfg.Filters.IgnoreMinimized = false
	backend.SetMinimized(1, true)

	o := NewOrganizer(backend, nil, cfg)
	if _, err := o.Organize(Request{Layout: "cascade"}); err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if len(backend.Restores()) != 1 || backend.Restores()[0] != 1 {
		t.Fatalf("expected window 1 restored, got %v", backend.Restores())
	}

	p, ok := o.history.Get(1)
	if !ok || p.State != platform.StateMinimized {
		t.Fatalf("expected minimized snapshot, got %+v (ok=%v)", p, ok)
	}
}

func TestOrganizeNarrowsByTarget(t *testing.T) {
	backend := platformtest.New(
		platformtest.Window(1, "Notes", "editor"),
		platformtest.Window(2, "Inbox", "mail"),
	)
	o := NewOrganizer(backend, nil, testConfig())

	res, err := o.Organize(Request{Layout: "stack", Targets: []string{"MAIL"}})
	if err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if res.Total != 1 || len(backend.Moves()) != 1 || backend.Moves()[0] != 2 {
		t.Fatalf("expected only window 2 moved, got %+v moves=%v", res, backend.Moves())
	}
}

func TestUndoBeforeOrganize(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"))
	o := NewOrganizer(backend, nil, testConfig())

	res, err := o.Undo()
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if res.OK() {
		t.Fatalf("expected nothing to undo, got %+v", res)
	}
	if err := o.UndoWindow(1); !errors.Is(err, history.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestUndoRestoresExactGeometry(t *testing.T) {
	w := platformtest.Window(7, "seven", "a")
	w.Bounds = platform.RectXYWH(100, 100, 800, 600)
	backend := platformtest.New(w)

	o := NewOrganizer(backend, nil, testConfig())
	if _, err := o.Organize(Request{Layout: "stack"}); err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if backend.Bounds(7) == w.Bounds {
		t.Fatalf("expected window to move")
	}

	res, err := o.Undo()
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if !res.OK() || res.Succeeded != 1 {
		t.Fatalf("expected one restore, got %+v", res)
	}
	if got := backend.Bounds(7); got != w.Bounds {
		t.Fatalf("expected %s after undo, got %s", w.Bounds, got)
	}
}

func TestMoveWindowRecordsSnapshot(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"))
	o := NewOrganizer(backend, nil, testConfig())

	if err := o.MoveWindow(1, platform.RectXYWH(0, 0, 0, 10)); err == nil {
		t.Fatalf("expected error for empty target")
	}
	if o.HistorySize() != 0 {
		t.Fatalf("expected no snapshot for rejected move")
	}

	if err := o.MoveWindow(1, platform.RectXYWH(5, 5, 300, 300)); err != nil {
		t.Fatalf("MoveWindow returned error: %v", err)
	}
	if o.HistorySize() != 1 {
		t.Fatalf("expected snapshot after move")
	}
}

func TestPruneHistory(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"), platformtest.Window(2, "two", "b"))
	o := NewOrganizer(backend, nil, testConfig())

	if _, err := o.Organize(Request{Layout: "cascade"}); err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	backend.SetWindows(platformtest.Window(1, "one", "a"))

	n, err := o.PruneHistory()
	if err != nil {
		t.Fatalf("PruneHistory returned error: %v", err)
	}
	if n != 1 || o.HistorySize() != 1 {
		t.Fatalf("expected one entry pruned, got n=%d size=%d", n, o.HistorySize())
	}
}

func TestWindowsReportsManageable(t *testing.T) {
	backend := platformtest.New(platformtest.Window(1, "one", "a"), platformtest.Window(2, "bar", "panel"))
	backend.SetMinimized(1, true)
	cfg := testConfig()
	cfg.Filters.IgnoreMinimized = false

	o := NewOrganizer(backend, nil, cfg)
	list, err := o.Windows()
	if err != nil {
		t.Fatalf("Windows returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(list))
	}
	if !list[0].Manageable || !list[0].Minimized {
		t.Fatalf("unexpected status for window 1: %+v", list[0])
	}
	if list[1].Manageable {
		t.Fatalf("excluded process should not be manageable")
	}
}

func TestCycleLayout(t *testing.T) {
	o := NewOrganizer(platformtest.New(), nil, testConfig())

	if got := o.ActiveLayout(); got != "cascade" {
		t.Fatalf("expected cascade active, got %q", got)
	}

	steps := []struct {
		delta int
		want  string
	}{
		{1, "grid"},
		{1, "stack"},
		{1, "cascade"},
		{-1, "stack"},
		{-2, "cascade"},
	}
	for _, step := range steps {
		got, err := o.CycleLayout(step.delta)
		if err != nil {
			t.Fatalf("CycleLayout(%d) returned error: %v", step.delta, err)
		}
		if got != step.want {
			t.Fatalf("CycleLayout(%d): expected %q, got %q", step.delta, step.want, got)
		}
	}
}

func TestSetActiveLayoutAndUpdateConfig(t *testing.T) {
	o := NewOrganizer(platformtest.New(), nil, testConfig())

	if err := o.SetActiveLayout("bogus"); !errors.Is(err, layout.ErrUnsupportedLayout) {
		t.Fatalf("expected ErrUnsupportedLayout, got %v", err)
	}
	if err := o.SetActiveLayout("grid"); err != nil {
		t.Fatalf("SetActiveLayout returned error: %v", err)
	}

	cfg := testConfig()
	cfg.DefaultLayout = "stack"
	o.UpdateConfig(cfg)
	if got := o.ActiveLayout(); got != "grid" {
		t.Fatalf("expected active layout to survive reload, got %q", got)
	}
	if o.Config().DefaultLayout != "stack" {
		t.Fatalf("expected new config to be in use")
	}
}

func TestUpdateConfigAppliesNewFilters(t *testing.T) {
	backend := platformtest.New(
		platformtest.Window(1, "editor", "code"),
		platformtest.Window(2, "chat", "slack"),
	)
	o := NewOrganizer(backend, nil, testConfig())

	cfg := testConfig()
	cfg.Filters.ExcludedProcesses = []string{"slack"}
	o.UpdateConfig(cfg)

	res, err := o.Organize(Request{Layout: "cascade"})
	if err != nil {
		t.Fatalf("Organize returned error: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected reloaded exclusion to drop slack, got total %d", res.Total)
	}
}
