package hotkeys

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func press(e *Engine, keys ...string) {
	for _, k := range keys {
		e.HandleEvent(Event{Key: k, Pressed: true})
	}
}

func release(e *Engine, keys ...string) {
	for _, k := range keys {
		e.HandleEvent(Event{Key: k, Pressed: false})
	}
}

func waitFired(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
		return ""
	}
}

func expectQuiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected callback %q", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngine_RegisterAliasesShareKey(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 4)

	if !e.Register("ctrl+alt+a", func() { fired <- "first" }) {
		t.Fatal("Register failed")
	}
	if !e.Register("Alt+Control+A", func() { fired <- "second" }) {
		t.Fatal("Register failed")
	}
	if got := e.Bindings(); !reflect.DeepEqual(got, []string{"a+alt+ctrl"}) {
		t.Fatalf("Bindings() = %v", got)
	}

	press(e, "ctrl_l", "alt_l", "a")
	if got := waitFired(t, fired); got != "second" {
		t.Fatalf("expected replaced callback, got %q", got)
	}
}

func TestEngine_PressOrderIndependent(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 4)
	e.Register("ctrl+alt+a", func() { fired <- "hit" })

	press(e, "alt_l", "ctrl_l", "a")
	waitFired(t, fired)
	release(e, "a", "ctrl_l", "alt_l")

	press(e, "a", "ctrl_r", "alt_r")
	waitFired(t, fired)
}

func TestEngine_ExactSetOnly(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 4)
	e.Register("ctrl+a", func() { fired <- "hit" })

	press(e, "shift_l", "ctrl_l", "a")
	expectQuiet(t, fired)

	release(e, "a", "shift_l")
	press(e, "a")
	waitFired(t, fired)
}

func TestEngine_HeldKeyDoesNotRefire(t *testing.T) {
	e := NewEngine(nil)
	var count atomic.Int32
	fired := make(chan string, 4)
	e.Register("ctrl+a", func() {
		count.Add(1)
		fired <- "hit"
	})

	press(e, "ctrl_l", "a")
	waitFired(t, fired)
	press(e, "a", "a", "ctrl_l")
	expectQuiet(t, fired)

	if got := count.Load(); got != 1 {
		t.Fatalf("expected 1 fire, got %d", got)
	}
}

func TestEngine_ReleaseNeverFires(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 4)
	e.Register("ctrl+alt+a", func() { fired <- "hit" })

	press(e, "shift_l", "ctrl_l", "alt_l", "a")
	expectQuiet(t, fired)

	// Releasing shift leaves exactly the chord pressed, but releases do not fire.
	release(e, "shift_l")
	expectQuiet(t, fired)
	if got := e.Pressed(); got != "a+alt+ctrl" {
		t.Fatalf("Pressed() = %q", got)
	}
}

func TestEngine_UnknownKeysIgnored(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 1)
	e.Register("ctrl+a", func() { fired <- "hit" })

	press(e, "media_next", "ctrl_l", "a")
	waitFired(t, fired)
}

func TestEngine_Unregister(t *testing.T) {
	e := NewEngine(nil)
	e.Register("ctrl+a", func() {})

	if e.Unregister("ctrl+b") {
		t.Fatal("expected false for unknown chord")
	}
	if e.Unregister("") {
		t.Fatal("expected false for empty chord")
	}
	if !e.Unregister("a+control") {
		t.Fatal("expected alias spelling to unregister")
	}
	if len(e.Bindings()) != 0 {
		t.Fatalf("expected no bindings, got %v", e.Bindings())
	}
	if e.Register("", func() {}) {
		t.Fatal("expected Register to reject empty chord")
	}
}

func TestEngine_PanickingCallbackIsIsolated(t *testing.T) {
	e := NewEngine(nil)
	fired := make(chan string, 1)
	e.Register("ctrl+p", func() { panic("boom") })
	e.Register("ctrl+o", func() { fired <- "ok" })

	press(e, "ctrl_l", "p")
	release(e, "p")
	press(e, "o")
	waitFired(t, fired)
}

func TestEngine_IndependentInstances(t *testing.T) {
	a := NewEngine(nil)
	b := NewEngine(nil)
	fired := make(chan string, 2)
	a.Register("ctrl+a", func() { fired <- "a" })
	b.Register("ctrl+a", func() { fired <- "b" })

	press(a, "ctrl_l")
	press(b, "a")
	expectQuiet(t, fired)
	if b.Pressed() != "a" {
		t.Fatalf("engine b pressed set = %q", b.Pressed())
	}
}

type fakeStream struct {
	events chan Event
	once   sync.Once
	closed atomic.Bool
}

func (s *fakeStream) Events() <-chan Event { return s.events }

func (s *fakeStream) Close() error {
	s.once.Do(func() { s.closed.Store(true) })
	return nil
}

type fakeSource struct {
	mu      sync.Mutex
	opened  [][]string
	streams []*fakeStream
	err     error
}

func (s *fakeSource) Open(chords []string) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	st := &fakeStream{events: make(chan Event, 16)}
	s.opened = append(s.opened, chords)
	s.streams = append(s.streams, st)
	return st, nil
}

func TestEngine_StartStop(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src)
	fired := make(chan string, 1)
	e.Register("win+shift+g", func() { fired <- "grid" })

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if len(src.streams) != 1 {
		t.Fatalf("expected one stream, got %d", len(src.streams))
	}
	if !reflect.DeepEqual(src.opened[0], []string{"g+shift+win"}) {
		t.Fatalf("source opened with %v", src.opened[0])
	}

	st := src.streams[0]
	st.events <- Event{Key: "super_l", Pressed: true}
	st.events <- Event{Key: "shift_l", Pressed: true}
	st.events <- Event{Key: "g", Pressed: true}
	waitFired(t, fired)

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !st.closed.Load() {
		t.Fatal("expected stream closed")
	}
	if e.Pressed() != "" {
		t.Fatalf("expected pressed set cleared, got %q", e.Pressed())
	}
	if e.Running() {
		t.Fatal("expected engine stopped")
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	// Restart gets a fresh stream.
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if len(src.streams) != 2 {
		t.Fatalf("expected a new stream on restart, got %d", len(src.streams))
	}
	_ = e.Stop()
}

func TestEngine_StartErrors(t *testing.T) {
	if err := NewEngine(nil).Start(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}

	boom := errors.New("grab failed")
	e := NewEngine(&fakeSource{err: boom})
	if err := e.Start(); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if e.Running() {
		t.Fatal("engine must not run after a failed start")
	}
}

func TestEngine_StopDoesNotCancelInFlightCallbacks(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src)
	started := make(chan struct{})
	unblock := make(chan struct{})
	done := make(chan string, 1)
	e.Register("ctrl+s", func() {
		close(started)
		<-unblock
		done <- "finished"
	})

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := src.streams[0]
	st.events <- Event{Key: "ctrl_l", Pressed: true}
	st.events <- Event{Key: "s", Pressed: true}
	<-started

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	close(unblock)
	waitFired(t, done)
}
