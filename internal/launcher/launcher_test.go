package launcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/wintile/internal/hotkeys"
)

func TestRofiLine_SingleNullSeparator(t *testing.T) {
	p := newProgram("rofi")
	out := p.line(Entry{Label: "Layouts", Header: true, Icon: "folder"})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.Contains(out, "<b>Layouts</b>") {
		t.Fatalf("expected bold header, got %q", out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue\x1ficon\x1ffolder") {
		t.Fatalf("expected nonselectable and icon properties, got %q", out)
	}
}

func TestRofiLine_EscapesMarkup(t *testing.T) {
	p := newProgram("rofi")
	if out := p.line(Entry{Label: "a <b> & c"}); out != "a &lt;b&gt; &amp; c" {
		t.Fatalf("line = %q", out)
	}
}

func TestPlainLine_NoMarkup(t *testing.T) {
	p := newProgram("dmenu")
	if out := p.line(Entry{Label: "a <b>", Icon: "x"}); out != "a <b>" {
		t.Fatalf("line = %q", out)
	}
}

func TestRofiArgs_SelectsActiveRow(t *testing.T) {
	p := newProgram("rofi")
	rows := p.rows([]Entry{
		{Label: "Layouts", Header: true},
		{Label: "Apply cascade"},
		{Label: "Apply grid", Active: true},
	})
	args := p.args("wintile", rows)

	for _, pair := range [][2]string{{"-format", "i"}, {"-a", "2"}, {"-selected-row", "2"}, {"-p", "wintile"}} {
		if !containsArgs(args, pair[0], pair[1]) {
			t.Fatalf("expected %s %s in args, got %v", pair[0], pair[1], args)
		}
	}
}

func TestRows_DropsHeadersWithoutRofi(t *testing.T) {
	p := newProgram("fuzzel")
	rows := p.rows([]Entry{{Label: "Layouts", Header: true}, {Label: "Apply grid"}})
	if len(rows) != 1 || rows[0].Label != "Apply grid" {
		t.Fatalf("rows = %#v", rows)
	}
}

func TestRows_DisambiguatesTextPrograms(t *testing.T) {
	p := newProgram("dmenu")
	rows := p.rows([]Entry{{Label: "Dup", Action: "a"}, {Label: "Dup", Action: "b"}, {Label: "Dup", Action: "c"}})
	if rows[0].Label != "Dup" || rows[1].Label != "Dup (2)" || rows[2].Label != "Dup (3)" {
		t.Fatalf("rows = %#v", rows)
	}

	sel, err := p.parse("Dup (2)", rows)
	if err != nil || sel.Action != "b" {
		t.Fatalf("parse = %#v, %v", sel, err)
	}
}

func TestParse_Index(t *testing.T) {
	p := newProgram("rofi")
	rows := []Entry{{Label: "a", Action: "a"}, {Label: "b", Action: "b"}}
	got, err := p.parse("1", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != "b" {
		t.Fatalf("expected action b, got %q", got.Action)
	}
	if _, err := p.parse("5", rows); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"", "auto", "rofi", "Dmenu", " wofi "} {
		if !ValidName(name) {
			t.Fatalf("ValidName(%q) = false", name)
		}
	}
	if ValidName("bemenu") {
		t.Fatalf("ValidName(bemenu) = true")
	}
}

func TestLayoutMenu_ActionsParse(t *testing.T) {
	entries := LayoutMenu([]string{"cascade", "grid"}, "grid")
	var selectable int
	for _, e := range entries {
		if e.Header {
			continue
		}
		selectable++
		if _, err := hotkeys.ParseAction(e.Action); err != nil {
			t.Fatalf("entry %q has unparseable action %q: %v", e.Label, e.Action, err)
		}
		if e.Label == "Apply grid" && !e.Active {
			t.Fatalf("active layout not marked")
		}
	}
	if selectable != 6 {
		t.Fatalf("selectable entries = %d, want 6", selectable)
	}
}

type fakeChooser struct {
	pick   string
	err    error
	prompt string
}

func (f *fakeChooser) Choose(prompt string, entries []Entry) (Entry, error) {
	f.prompt = prompt
	if f.err != nil {
		return Entry{}, f.err
	}
	for _, e := range entries {
		if e.Label == f.pick {
			return e, nil
		}
	}
	return Entry{}, ErrCancelled
}

func TestPick(t *testing.T) {
	c := &fakeChooser{pick: "Apply grid"}
	action, err := Pick(c, []string{"cascade", "grid", "stack"}, "cascade")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if action.Kind != hotkeys.ActionApply || action.Layout != "grid" {
		t.Fatalf("action = %+v", action)
	}

	c = &fakeChooser{pick: "Previous layout"}
	action, err = Pick(c, []string{"cascade"}, "cascade")
	if err != nil || action.Kind != hotkeys.ActionCycle || action.Delta != -1 {
		t.Fatalf("action = %+v, err = %v", action, err)
	}

	c = &fakeChooser{err: ErrCancelled}
	if _, err := Pick(c, nil, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func containsArgs(args []string, a, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}
