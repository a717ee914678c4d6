// Package history records window placements before they are changed so
// they can be restored later. A Manager is not safe for concurrent use;
// callers serialize organize and undo operations.
package history

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/wintile/internal/platform"
)

// ErrNoSnapshot is returned by RestoreErr when nothing was recorded for a
// window.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// PlacementStore reads and applies window placements.
type PlacementStore interface {
	Placement(windowID platform.WindowID) (platform.Placement, error)
	SetPlacement(windowID platform.WindowID, p platform.Placement) error
}

// Manager keeps the most recent placement snapshot per window for the
// lifetime of the process.
type Manager struct {
	store     PlacementStore
	snapshots map[platform.WindowID]platform.Placement
}

// NewManager creates an empty history over store.
func NewManager(store PlacementStore) *Manager {
	return &Manager{
		store:     store,
		snapshots: make(map[platform.WindowID]platform.Placement),
	}
}

// Snapshot records the current placement of a window, replacing any
// earlier snapshot.
func (m *Manager) Snapshot(windowID platform.WindowID) error {
	p, err := m.store.Placement(windowID)
	if err != nil {
		return fmt.Errorf("snapshot window %d: %w", windowID, err)
	}
	m.snapshots[windowID] = p
	return nil
}

// Restore reapplies the latest snapshot. It returns false when nothing
// was recorded or the placement could not be applied.
func (m *Manager) Restore(windowID platform.WindowID) bool {
	return m.RestoreErr(windowID) == nil
}

// RestoreErr is Restore with the failure reason: ErrNoSnapshot or the
// error from the placement store.
func (m *Manager) RestoreErr(windowID platform.WindowID) error {
	p, ok := m.snapshots[windowID]
	if !ok {
		return fmt.Errorf("window %d: %w", windowID, ErrNoSnapshot)
	}
	if err := m.store.SetPlacement(windowID, p); err != nil {
		return fmt.Errorf("restore window %d: %w", windowID, err)
	}
	return nil
}

// RestoreAll restores each window and returns how many succeeded.
func (m *Manager) RestoreAll(windowIDs []platform.WindowID) int {
	restored := 0
	for _, id := range windowIDs {
		if m.Restore(id) {
			restored++
		}
	}
	return restored
}

// Get returns the recorded placement for a window.
func (m *Manager) Get(windowID platform.WindowID) (platform.Placement, bool) {
	p, ok := m.snapshots[windowID]
	return p, ok
}

// Has reports whether a snapshot exists for a window.
func (m *Manager) Has(windowID platform.WindowID) bool {
	_, ok := m.snapshots[windowID]
	return ok
}

// Len returns the number of recorded windows.
func (m *Manager) Len() int {
	return len(m.snapshots)
}

// Handles lists recorded windows in ascending order.
func (m *Manager) Handles() []platform.WindowID {
	out := make([]platform.WindowID, 0, len(m.snapshots))
	for id := range m.snapshots {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Forget drops the snapshot for a window.
func (m *Manager) Forget(windowID platform.WindowID) {
	delete(m.snapshots, windowID)
}

// Prune drops snapshots for windows not in alive and returns how many
// were removed.
func (m *Manager) Prune(alive []platform.WindowID) int {
	keep := make(map[platform.WindowID]struct{}, len(alive))
	for _, id := range alive {
		keep[id] = struct{}{}
	}

	removed := 0
	for id := range m.snapshots {
		if _, ok := keep[id]; !ok {
			delete(m.snapshots, id)
			removed++
		}
	}
	return removed
}
