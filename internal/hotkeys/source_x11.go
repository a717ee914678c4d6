//go:build linux

package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// X11Source grabs chords on the root window. Grabbed presses are replayed
// as modifier presses followed by the key press; releases mirror them.
// Events arrive only while the backend's X event loop runs.
type X11Source struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var _ Source = (*X11Source)(nil)

// NewX11Source creates a key source from an X11-backed platform backend.
func NewX11Source(backend platform.Backend) (*X11Source, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("backend does not expose an X11 connection")
	}
	return &X11Source{xu: accessor.XUtil(), root: accessor.RootWindow()}, nil
}

var x11KeyNames = map[string]string{
	ModCtrl:        "control",
	ModAlt:         "mod1",
	ModShift:       "shift",
	ModWin:         "mod4",
	"enter":        "Return",
	"esc":          "Escape",
	"space":        "space",
	"tab":          "Tab",
	"backspace":    "BackSpace",
	"delete":       "Delete",
	"insert":       "Insert",
	"home":         "Home",
	"end":          "End",
	"page_up":      "Prior",
	"page_down":    "Next",
	"up":           "Up",
	"down":         "Down",
	"left":         "Left",
	"right":        "Right",
	"print_screen": "Print",
	"pause":        "Pause",
}

// KeybindString converts a canonical chord into the xgbutil keybind
// format, e.g. "a+alt+ctrl" becomes "control-mod1-a".
func KeybindString(chord string) (string, error) {
	tokens, key, err := SplitChord(chord)
	if err != nil {
		return "", err
	}

	mods := make([]string, 0, len(tokens))
	for _, t := range tokens {
		mods = append(mods, x11KeyNames[t])
	}
	if name, ok := x11KeyNames[key]; ok {
		key = name
	} else if len(key) > 1 && key[0] == 'f' {
		key = strings.ToUpper(key)
	}

	// Stable modifier order for readability.
	order := map[string]int{"control": 0, "mod1": 1, "shift": 2, "mod4": 3}
	for i := 1; i < len(mods); i++ {
		for j := i; j > 0 && order[mods[j]] < order[mods[j-1]]; j-- {
			mods[j], mods[j-1] = mods[j-1], mods[j]
		}
	}
	return strings.Join(append(mods, key), "-"), nil
}

// Open grabs every chord and returns a stream of synthesized key events.
func (s *X11Source) Open(chords []string) (Stream, error) {
	configureIgnoreMods(s.xu)

	st := &x11Stream{
		xu:     s.xu,
		root:   s.root,
		events: make(chan Event, 64),
	}
	st.replay = newChordReplay(st.sendLocked)

	for _, chord := range chords {
		keyStr, err := KeybindString(chord)
		if err != nil {
			st.Close()
			return nil, err
		}
		if err := st.bind(chord, keyStr); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

type x11Stream struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu     sync.Mutex
	closed bool
	events chan Event
	replay *chordReplay
	grabs  []string
}

func (st *x11Stream) bind(chord, keyStr string) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.replay.press(chord)
	}).Connect(st.xu, st.root, keyStr, true)
	if err != nil {
		return fmt.Errorf("failed to register hotkey %q: %w", chord, err)
	}
	st.grabs = append(st.grabs, keyStr)

	return keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.replay.release(chord)
	}).Connect(st.xu, st.root, keyStr, false)
}

func (st *x11Stream) sendLocked(keys []string, pressed bool) {
	if st.closed {
		return
	}
	for _, k := range keys {
		select {
		case st.events <- Event{Key: k, Pressed: pressed}:
		default:
			// Listener is behind; dropping keeps the X event loop responsive.
		}
	}
}

func (st *x11Stream) Events() <-chan Event {
	return st.events
}

func (st *x11Stream) Close() error {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return nil
	}
	st.closed = true
	grabs := st.grabs
	st.mu.Unlock()

	keybind.Detach(st.xu, st.root)
	for _, keyStr := range grabs {
		mods, keycodes, err := keybind.ParseString(st.xu, keyStr)
		if err != nil {
			continue
		}
		for _, kc := range keycodes {
			keybind.Ungrab(st.xu, st.root, mods, kc)
		}
	}
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
