package hotkeys

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrEmptyChord is returned when a chord has no usable tokens.
var ErrEmptyChord = errors.New("empty chord")

// Canonical modifier tokens.
const (
	ModCtrl  = "ctrl"
	ModAlt   = "alt"
	ModShift = "shift"
	ModWin   = "win"
)

// modifierAliases maps modifier spellings accepted in chord strings to
// canonical tokens.
var modifierAliases = map[string]string{
	"control": ModCtrl,
	"ctrl":    ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"win":     ModWin,
	"windows": ModWin,
	"cmd":     ModWin,
	"super":   ModWin,
}

// sidedModifiers maps left/right modifier key names reported by key
// sources to canonical tokens. Chord strings do not accept them.
var sidedModifiers = map[string]string{
	"ctrl_l":    ModCtrl,
	"ctrl_r":    ModCtrl,
	"control_l": ModCtrl,
	"control_r": ModCtrl,
	"alt_l":     ModAlt,
	"alt_r":     ModAlt,
	"alt_gr":    ModAlt,
	"meta_l":    ModAlt,
	"meta_r":    ModAlt,
	"shift_l":   ModShift,
	"shift_r":   ModShift,
	"cmd_l":     ModWin,
	"cmd_r":     ModWin,
	"super_l":   ModWin,
	"super_r":   ModWin,
}

// namedKeys are non-character keys that produce their own token.
var namedKeys = map[string]bool{
	"enter": true, "esc": true, "space": true, "tab": true,
	"backspace": true, "delete": true, "insert": true,
	"home": true, "end": true, "page_up": true, "page_down": true,
	"up": true, "down": true, "left": true, "right": true,
	"print_screen": true, "pause": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

var namedKeyAliases = map[string]string{
	"return":   "enter",
	"escape":   "esc",
	"pageup":   "page_up",
	"pagedown": "page_down",
	"prior":    "page_up",
	"next":     "page_down",
	"del":      "delete",
	"print":    "print_screen",
}

// Normalize converts a chord string such as "Alt+Control+A" into its
// canonical form "a+alt+ctrl": lowercased, modifier aliases resolved,
// tokens sorted and joined with "+".
func Normalize(chord string) (string, error) {
	tokens, err := chordTokens(chord)
	if err != nil {
		return "", err
	}
	return joinTokens(tokens), nil
}

// Tokens returns the canonical tokens of a chord, sorted.
func Tokens(chord string) ([]string, error) {
	tokens, err := chordTokens(chord)
	if err != nil {
		return nil, err
	}
	sort.Strings(tokens)
	return tokens, nil
}

func chordTokens(chord string) ([]string, error) {
	chord = strings.ToLower(strings.TrimSpace(chord))
	if chord == "" {
		return nil, ErrEmptyChord
	}

	seen := make(map[string]struct{})
	var tokens []string
	for _, part := range strings.Split(chord, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty key", ErrEmptyChord, chord)
		}
		if canonical, ok := modifierAliases[part]; ok {
			part = canonical
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		tokens = append(tokens, part)
	}
	return tokens, nil
}

func joinTokens(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

// SplitChord normalizes chord and separates its modifiers from its key.
// A grabbable chord has exactly one non-modifier key.
func SplitChord(chord string) (mods []string, key string, err error) {
	tokens, err := Tokens(chord)
	if err != nil {
		return nil, "", err
	}
	for _, t := range tokens {
		if IsModifier(t) {
			mods = append(mods, t)
			continue
		}
		if key != "" {
			return nil, "", fmt.Errorf("chord %q has more than one non-modifier key", chord)
		}
		key = t
	}
	if key == "" {
		return nil, "", fmt.Errorf("chord %q has no non-modifier key", chord)
	}
	return mods, key, nil
}

// IsModifier reports whether token is a canonical modifier.
func IsModifier(token string) bool {
	switch token {
	case ModCtrl, ModAlt, ModShift, ModWin:
		return true
	}
	return false
}

// KeyToken converts a raw key name from a key source into a pressed-set
// token. Single characters are lowercased; named keys go through the
// modifier and named-key tables. Unknown keys yield no token.
func KeyToken(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if utf8.RuneCountInString(key) == 1 {
		if key == " " {
			return "space", true
		}
		return strings.ToLower(key), true
	}

	name := strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimPrefix(name, "key.")
	if canonical, ok := modifierAliases[name]; ok {
		return canonical, true
	}
	if canonical, ok := sidedModifiers[name]; ok {
		return canonical, true
	}
	if alias, ok := namedKeyAliases[name]; ok {
		name = alias
	}
	if namedKeys[name] {
		return name, true
	}
	return "", false
}
