package hotkeys

import "sort"

// chordReplay turns grab notifications (one per chord press or release)
// into the per-key press/release events an Engine consumes.
//
// A grabbed release is only delivered when the modifier state still
// matches the grab, so releasing a modifier before the key loses it.
// Every new press therefore releases whatever chords are still held.
type chordReplay struct {
	send func(keys []string, pressed bool)
	// held maps a chord to its keys in release order.
	held map[string][]string
}

func newChordReplay(send func(keys []string, pressed bool)) *chordReplay {
	return &chordReplay{send: send, held: make(map[string][]string)}
}

// press replays chord as its modifiers followed by its key.
func (r *chordReplay) press(chord string) {
	mods, key, err := SplitChord(chord)
	if err != nil {
		return
	}
	r.releaseAll()
	r.held[chord] = append([]string{key}, mods...)
	r.send(append(append([]string(nil), mods...), key), true)
}

// release replays the key then the modifiers of a held chord.
func (r *chordReplay) release(chord string) {
	keys, ok := r.held[chord]
	if !ok {
		return
	}
	delete(r.held, chord)
	r.send(keys, false)
}

func (r *chordReplay) releaseAll() {
	chords := make([]string, 0, len(r.held))
	for chord := range r.held {
		chords = append(chords, chord)
	}
	sort.Strings(chords)
	for _, chord := range chords {
		r.release(chord)
	}
}
