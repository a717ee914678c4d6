package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/wintile/internal/platform"
)

func testWindows(n int) []platform.Window {
	windows := make([]platform.Window, n)
	for i := range windows {
		windows[i] = platform.Window{ID: platform.WindowID(100 + i), Title: "w"}
	}
	return windows
}

func TestComputePositions_GridFloorsCells(t *testing.T) {
	e := NewEngine()
	opts := DefaultOptions()
	opts.Grid.Padding = 0

	got, err := e.ComputePositions("grid", testWindows(4), platform.RectXYWH(0, 0, 1000, 1000), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cols, rows := GridDimensions(4, 0)
	if cols != 3 || rows != 2 {
		t.Fatalf("expected 3 cols x 2 rows, got %d x %d", cols, rows)
	}

	for id, r := range got {
		if r.Width() != 333 || r.Height() != 500 {
			t.Fatalf("window %d: expected 333x500, got %dx%d", id, r.Width(), r.Height())
		}
	}

	// Window 3 wraps to row 1, col 0.
	if r := got[103]; r.Left != 0 || r.Top != 500 {
		t.Fatalf("expected window 103 at 0,500, got %d,%d", r.Left, r.Top)
	}
	if r := got[102]; r.Left != 666 || r.Top != 0 {
		t.Fatalf("expected window 102 at 666,0, got %d,%d", r.Left, r.Top)
	}
}

func TestComputePositions_GridWithPaddingAndColumns(t *testing.T) {
	e := NewEngine()
	opts := Options{Grid: GridOptions{Columns: 2, Padding: 10}}

	got, err := e.ComputePositions("grid", testWindows(3), platform.RectXYWH(100, 50, 210, 130), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cell = (210-30)/2 x (130-30)/2 = 90x50
	want := map[platform.WindowID]platform.Rect{
		100: platform.RectXYWH(110, 60, 90, 50),
		101: platform.RectXYWH(210, 60, 90, 50),
		102: platform.RectXYWH(110, 120, 90, 50),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected positions:\n got %v\nwant %v", got, want)
	}
}

func TestComputePositions_Cascade(t *testing.T) {
	e := NewEngine()

	got, err := e.ComputePositions("cascade", testWindows(3), platform.RectXYWH(0, 0, 1920, 1080), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, origin := range [][2]int{{0, 0}, {30, 30}, {60, 60}} {
		r := got[platform.WindowID(100+i)]
		if r.Left != origin[0] || r.Top != origin[1] {
			t.Errorf("window %d: expected origin %v, got %d,%d", i, origin, r.Left, r.Top)
		}
		if r.Width() != 1344 || r.Height() != 756 {
			t.Errorf("window %d: expected 1344x756, got %dx%d", i, r.Width(), r.Height())
		}
	}
}

func TestComputePositions_CascadeResetsOverflowingAxis(t *testing.T) {
	e := NewEngine()
	opts := Options{Cascade: CascadeOptions{OffsetX: 200, OffsetY: 10}}

	// 70% of 1000 = 700; window 2 at x=400 would end at 1100.
	got, err := e.ComputePositions("cascade", testWindows(3), platform.RectXYWH(0, 0, 1000, 1000), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r := got[101]; r.Left != 200 || r.Top != 10 {
		t.Fatalf("expected window 101 at 200,10, got %d,%d", r.Left, r.Top)
	}
	if r := got[102]; r.Left != 0 || r.Top != 20 {
		t.Fatalf("expected window 102 x reset to 0 with y=20, got %d,%d", r.Left, r.Top)
	}
}

func TestComputePositions_StackCenterDefault(t *testing.T) {
	e := NewEngine()

	got, err := e.ComputePositions("stack", testWindows(3), platform.RectXYWH(0, 0, 1000, 1000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 900}
	for id, r := range got {
		if r != want {
			t.Fatalf("window %d: expected %+v, got %+v", id, want, r)
		}
	}
}

func TestStackRect_Anchors(t *testing.T) {
	screen := platform.RectXYWH(0, 0, 1000, 800)
	width, _ := Px(400)
	height, _ := Percent(50)

	tests := []struct {
		name     string
		position Anchor
		want     platform.Rect
	}{
		{"left", AnchorLeft, platform.RectXYWH(50, 50, 400, 400)},
		{"right", AnchorRight, platform.RectXYWH(550, 50, 400, 400)},
		{"center", AnchorCenter, platform.RectXYWH(300, 200, 400, 400)},
		{"unknown falls back to left", Anchor("bottom"), platform.RectXYWH(50, 50, 400, 400)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StackRect(screen, StackOptions{Position: tt.position, Width: width, Height: height})
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestComputePositions_OneEntryPerWindow(t *testing.T) {
	e := NewEngine()
	screen := platform.RectXYWH(-1920, 0, 1920, 1080)

	for _, name := range e.Names() {
		for n := 0; n <= 12; n++ {
			windows := testWindows(n)
			got, err := e.ComputePositions(name, windows, screen, DefaultOptions())
			if err != nil {
				t.Fatalf("%s n=%d: unexpected error: %v", name, n, err)
			}
			if len(got) != n {
				t.Fatalf("%s n=%d: expected %d entries, got %d", name, n, n, len(got))
			}
			for _, w := range windows {
				if _, ok := got[w.ID]; !ok {
					t.Fatalf("%s n=%d: window %d missing", name, n, w.ID)
				}
			}
		}
	}
}

func TestComputePositions_UnknownLayout(t *testing.T) {
	e := NewEngine()

	_, err := e.ComputePositions("spiral", testWindows(2), platform.RectXYWH(0, 0, 100, 100), DefaultOptions())
	if !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("expected ErrUnsupportedLayout, got %v", err)
	}
}

func TestEngine_RegisterCustomLayout(t *testing.T) {
	e := NewEngine()
	other := NewEngine()

	maximize := func(windows []platform.Window, screen platform.Rect, _ Options) map[platform.WindowID]platform.Rect {
		out := make(map[platform.WindowID]platform.Rect, len(windows))
		for _, w := range windows {
			out[w.ID] = screen
		}
		return out
	}
	if err := e.Register("Fill", maximize); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !e.Has("fill") {
		t.Fatalf("expected fill to be registered")
	}
	if other.Has("fill") {
		t.Fatalf("registration leaked into another engine")
	}

	want := []string{"cascade", "fill", "grid", "stack"}
	if got := e.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	screen := platform.RectXYWH(0, 0, 640, 480)
	got, err := e.ComputePositions("fill", testWindows(2), screen, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[100] != screen || got[101] != screen {
		t.Fatalf("unexpected positions: %v", got)
	}

	if err := e.Register("", maximize); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := e.Register("nil", nil); err == nil {
		t.Fatalf("expected error for nil compute function")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + k.String() + " ")
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("spiral"); !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("expected ErrUnsupportedLayout, got %v", err)
	}
}

func TestStackRect_CenterFloorsOversizedWindow(t *testing.T) {
	width, _ := Px(1001)
	height, _ := Px(1003)
	got := StackRect(platform.RectXYWH(0, 0, 1000, 1000), StackOptions{Position: AnchorCenter, Width: width, Height: height})
	if want := platform.RectXYWH(-1, -2, 1001, 1003); got != want {
		t.Fatalf("StackRect = %+v, want %+v", got, want)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{6, 2, 3},
		{-1, 2, -1},
		{-6, 3, -2},
		{-7, 3, -3},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
