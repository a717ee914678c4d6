package hotkeys

import (
	"errors"
	"log"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
)

// Event is a single key transition reported by a Source.
type Event struct {
	Key     string
	Pressed bool
}

// Stream delivers key events until closed.
type Stream interface {
	Events() <-chan Event
	Close() error
}

// Source opens a key event stream. chords lists the canonical chords the
// engine wants to observe; sources that must grab keys use it.
type Source interface {
	Open(chords []string) (Stream, error)
}

// ErrNoSource is returned by Start when the engine has no key source.
var ErrNoSource = errors.New("no key source configured")

// Engine matches the live pressed-key set against registered chords and
// runs the bound callback when they are equal. Each engine owns its own
// state; several engines may run side by side.
type Engine struct {
	source Source

	mu       sync.Mutex
	bindings map[string]func()
	pressed  map[string]struct{}

	stream Stream
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates an engine reading from source. A nil source is
// allowed when events are fed through HandleEvent directly.
func NewEngine(source Source) *Engine {
	return &Engine{
		source:   source,
		bindings: make(map[string]func()),
		pressed:  make(map[string]struct{}),
	}
}

// Register binds callback to chord, replacing any earlier binding for the
// same canonical chord. It returns false when chord does not normalize.
func (e *Engine) Register(chord string, callback func()) bool {
	key, err := Normalize(chord)
	if err != nil || callback == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[key] = callback
	return true
}

// Unregister removes a binding. It returns false if none existed.
func (e *Engine) Unregister(chord string) bool {
	key, err := Normalize(chord)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.bindings[key]; !ok {
		return false
	}
	delete(e.bindings, key)
	return true
}

// Bindings lists registered canonical chords, sorted.
func (e *Engine) Bindings() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Pressed returns the canonical join of the currently pressed keys.
func (e *Engine) Pressed() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pressedChordLocked()
}

// HandleEvent updates the pressed set and fires a chord on press when the
// whole set equals it. A press of a key already held does nothing.
func (e *Engine) HandleEvent(ev Event) {
	token, ok := KeyToken(ev.Key)
	if !ok {
		return
	}

	e.mu.Lock()
	if !ev.Pressed {
		delete(e.pressed, token)
		e.mu.Unlock()
		return
	}
	if _, held := e.pressed[token]; held {
		e.mu.Unlock()
		return
	}
	e.pressed[token] = struct{}{}
	chord := e.pressedChordLocked()
	callback := e.bindings[chord]
	e.mu.Unlock()

	if callback != nil {
		go runCallback(chord, callback)
	}
}

func (e *Engine) pressedChordLocked() string {
	tokens := make([]string, 0, len(e.pressed))
	for t := range e.pressed {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "+")
}

func runCallback(chord string, callback func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Hotkey %s callback panicked: %v\n%s", chord, r, debug.Stack())
		}
	}()
	callback()
}

// Running reports whether the listener is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream != nil
}

// Start opens the key source and begins listening. Calling Start on a
// running engine is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream != nil {
		return nil
	}
	if e.source == nil {
		return ErrNoSource
	}

	chords := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		chords = append(chords, k)
	}
	sort.Strings(chords)

	stream, err := e.source.Open(chords)
	if err != nil {
		return err
	}

	e.stream = stream
	e.stop = make(chan struct{})
	e.wg.Add(1)
	go e.listen(stream.Events(), e.stop)
	return nil
}

func (e *Engine) listen(events <-chan Event, stop <-chan struct{}) {
	defer e.wg.Done()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.HandleEvent(ev)
		}
	}
}

// Stop detaches the key source and clears the pressed set. Callbacks
// already dispatched keep running.
func (e *Engine) Stop() error {
	e.mu.Lock()
	stream := e.stream
	if stream == nil {
		e.mu.Unlock()
		return nil
	}
	close(e.stop)
	e.stream = nil
	e.stop = nil
	e.mu.Unlock()

	err := stream.Close()
	e.wg.Wait()

	e.mu.Lock()
	clear(e.pressed)
	e.mu.Unlock()
	return err
}
