package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/wintile/internal/platform"
)

// ErrUnsupportedLayout is returned for layout names with no registered
// compute function.
var ErrUnsupportedLayout = errors.New("unsupported layout")

// Kind identifies a built-in layout variant.
type Kind int

const (
	Cascade Kind = iota
	Grid
	Stack
)

var kindNames = [...]string{
	Cascade: "cascade",
	Grid:    "grid",
	Stack:   "stack",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns the built-in variants in declaration order.
func Kinds() []Kind {
	return []Kind{Cascade, Grid, Stack}
}

// ParseKind resolves a built-in variant by name.
func ParseKind(name string) (Kind, error) {
	name = normalizeName(name)
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedLayout, name)
}

// ComputeFunc maps an ordered window list onto target rectangles within
// screen. It must be pure and return one entry per input window.
type ComputeFunc func(windows []platform.Window, screen platform.Rect, opts Options) map[platform.WindowID]platform.Rect

// Compute returns the compute function for a built-in variant.
func (k Kind) Compute() ComputeFunc {
	switch k {
	case Cascade:
		return computeCascade
	case Grid:
		return computeGrid
	case Stack:
		return computeStack
	}
	return nil
}

// Engine resolves layout names to compute functions. Independent engines
// do not share registrations.
type Engine struct {
	mu       sync.RWMutex
	registry map[string]ComputeFunc
}

// NewEngine returns an engine with the built-in variants registered.
func NewEngine() *Engine {
	e := &Engine{registry: make(map[string]ComputeFunc)}
	for _, k := range Kinds() {
		e.registry[k.String()] = k.Compute()
	}
	return e
}

// Register adds or replaces a named layout.
func (e *Engine) Register(name string, fn ComputeFunc) error {
	name = normalizeName(name)
	if name == "" {
		return errors.New("layout name is required")
	}
	if fn == nil {
		return fmt.Errorf("layout %q: compute function is nil", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry[name] = fn
	return nil
}

// Has reports whether name is registered.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.registry[normalizeName(name)]
	return ok
}

// Names lists registered layouts sorted by name.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.registry))
	for name := range e.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComputePositions computes target rectangles for windows using the named
// layout. Options are expected to be validated by the caller.
func (e *Engine) ComputePositions(
	name string,
	windows []platform.Window,
	screen platform.Rect,
	opts Options,
) (map[platform.WindowID]platform.Rect, error) {
	e.mu.RLock()
	fn, ok := e.registry[normalizeName(name)]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLayout, name)
	}

	if len(windows) == 0 {
		return map[platform.WindowID]platform.Rect{}, nil
	}

	positions := fn(windows, screen, opts)
	if positions == nil {
		positions = map[platform.WindowID]platform.Rect{}
	}
	return positions, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
