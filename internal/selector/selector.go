package selector

import (
	"strings"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
)

// MinWindowSize is the smallest width or height a manageable window may
// have. Smaller windows are usually tooltips or overlays.
const MinWindowSize = 100

// Rules configures which windows are eligible for arrangement.
type Rules struct {
	ExcludedProcesses []string
	IgnoreFixedSize   bool
	IgnoreMinimized   bool
}

// StateReader answers live state queries for a window.
type StateReader interface {
	IsMinimized(windowID platform.WindowID) (bool, error)
}

// Select returns the manageable subset of windows in input order.
// A failed minimized query counts as not minimized.
func Select(windows []platform.Window, rules Rules, states StateReader) []platform.Window {
	excluded := processSet(rules.ExcludedProcesses)

	selected := make([]platform.Window, 0, len(windows))
	for _, w := range windows {
		if w.Process == "" {
			continue
		}
		if _, ok := excluded[strings.ToLower(w.Process)]; ok {
			continue
		}
		if rules.IgnoreFixedSize && !w.Resizable {
			continue
		}
		if rules.IgnoreMinimized && states != nil {
			if minimized, err := states.IsMinimized(w.ID); err == nil && minimized {
				continue
			}
		}
		if w.Bounds.Width() < MinWindowSize || w.Bounds.Height() < MinWindowSize {
			continue
		}
		selected = append(selected, w)
	}
	return selected
}

// Narrow keeps windows whose title or process contains any of targets
// and drops those matching any of excludes. Matching is case-insensitive.
// Empty targets keep everything.
func Narrow(windows []platform.Window, targets, excludes []string) []platform.Window {
	targets = lowerAll(targets)
	excludes = lowerAll(excludes)
	if len(targets) == 0 && len(excludes) == 0 {
		return windows
	}

	out := make([]platform.Window, 0, len(windows))
	for _, w := range windows {
		if len(targets) > 0 && !matchesAny(w, targets) {
			continue
		}
		if matchesAny(w, excludes) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Selector holds rules that may be swapped at runtime by a config reload.
type Selector struct {
	mu    sync.RWMutex
	rules Rules
}

// New creates a selector with the given rules.
func New(rules Rules) *Selector {
	return &Selector{rules: rules}
}

// UpdateRules replaces the active rules.
func (s *Selector) UpdateRules(rules Rules) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
}

// Rules returns a copy of the active rules.
func (s *Selector) Rules() Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.rules
	r.ExcludedProcesses = append([]string(nil), s.rules.ExcludedProcesses...)
	return r
}

// Select applies the active rules.
func (s *Selector) Select(windows []platform.Window, states StateReader) []platform.Window {
	return Select(windows, s.Rules(), states)
}

func processSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func matchesAny(w platform.Window, needles []string) bool {
	title := strings.ToLower(w.Title)
	process := strings.ToLower(w.Process)
	for _, n := range needles {
		if strings.Contains(title, n) || strings.Contains(process, n) {
			return true
		}
	}
	return false
}
