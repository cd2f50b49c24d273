package canvas

import "github.com/sketchdeck/sketchdeck/backend-go/internal/scene"

// HistoryCap bounds how many scene snapshots undo can reach back through.
// Once exceeded, the oldest snapshot is evicted; at least one entry is
// always retained.
const HistoryCap = 50

// History is an append-on-commit undo/redo stack of full scene snapshots.
// Invariant: 0 <= index < len(snapshots).
type History struct {
	snapshots []*scene.Drawing
	index     int
	cap       int
}

// NewHistory starts a history seeded with the initial scene.
func NewHistory(initial *scene.Drawing) *History {
	return NewHistoryWithCap(initial, HistoryCap)
}

// NewHistoryWithCap starts a history with a custom snapshot bound.
func NewHistoryWithCap(initial *scene.Drawing, cap int) *History {
	if cap < 1 {
		cap = 1
	}
	return &History{
		snapshots: []*scene.Drawing{initial.Clone()},
		index:     0,
		cap:       cap,
	}
}

// Commit snapshots the scene: any redo tail is truncated, the snapshot
// appended and the index advanced. Beyond the cap the oldest entry is
// evicted instead of growing.
func (h *History) Commit(d *scene.Drawing) {
	h.snapshots = append(h.snapshots[:h.index+1], d.Clone())
	h.index++

	if len(h.snapshots) > h.cap {
		h.snapshots = h.snapshots[1:]
		h.index--
	}
}

// Undo steps back one snapshot and returns a copy of it, or nil when
// already at the oldest entry. The returned drawing carries the snapshot's
// view transform; callers overwrite it with the live one since the view
// never takes part in undo.
func (h *History) Undo() *scene.Drawing {
	if h.index == 0 {
		return nil
	}
	h.index--
	return h.snapshots[h.index].Clone()
}

// Redo steps forward one snapshot, or returns nil at the tail.
func (h *History) Redo() *scene.Drawing {
	if h.index >= len(h.snapshots)-1 {
		return nil
	}
	h.index++
	return h.snapshots[h.index].Clone()
}

// CanUndo reports whether an older snapshot exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a newer snapshot exists.
func (h *History) CanRedo() bool { return h.index < len(h.snapshots)-1 }

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.snapshots) }
