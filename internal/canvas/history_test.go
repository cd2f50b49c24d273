package canvas

import (
	"fmt"
	"testing"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

func drawingWithName(name string) *scene.Drawing {
	return scene.NewDrawing("draw_1", name, 0, 0, "#ffffff")
}

func TestHistoryUndoRedoSymmetry(t *testing.T) {
	h := NewHistory(drawingWithName("v0"))
	h.Commit(drawingWithName("v1"))
	h.Commit(drawingWithName("v2"))

	if got := h.Undo(); got == nil || got.Name != "v1" {
		t.Fatalf("first undo should yield v1, got %v", got)
	}
	if got := h.Undo(); got == nil || got.Name != "v0" {
		t.Fatalf("second undo should yield v0, got %v", got)
	}
	if h.Undo() != nil {
		t.Error("undo past the oldest snapshot should return nil")
	}

	if got := h.Redo(); got == nil || got.Name != "v1" {
		t.Fatalf("first redo should yield v1, got %v", got)
	}
	if got := h.Redo(); got == nil || got.Name != "v2" {
		t.Fatalf("second redo should yield v2, got %v", got)
	}
	if h.Redo() != nil {
		t.Error("redo past the newest snapshot should return nil")
	}
}

func TestHistoryCommitTruncatesRedo(t *testing.T) {
	h := NewHistory(drawingWithName("v0"))
	h.Commit(drawingWithName("v1"))
	h.Commit(drawingWithName("v2"))

	h.Undo()
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("redo should be available after undoing")
	}

	h.Commit(drawingWithName("fork"))
	if h.CanRedo() {
		t.Error("committing after undo should discard the redo tail")
	}
	if got := h.Undo(); got == nil || got.Name != "v0" {
		t.Errorf("undo after fork should yield v0, got %v", got)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(drawingWithName("v0"))
	for i := 1; i <= HistoryCap; i++ {
		h.Commit(drawingWithName(fmt.Sprintf("v%d", i)))
	}

	if h.Len() != HistoryCap {
		t.Fatalf("history holds %d snapshots, want %d", h.Len(), HistoryCap)
	}

	// The initial snapshot was evicted: undoing all the way lands on v1.
	steps := 0
	var last *scene.Drawing
	for {
		snap := h.Undo()
		if snap == nil {
			break
		}
		last = snap
		steps++
	}
	if steps != HistoryCap-1 {
		t.Errorf("undo reached back %d steps, want %d", steps, HistoryCap-1)
	}
	if last == nil || last.Name != "v1" {
		t.Errorf("oldest reachable snapshot is %v, want v1", last)
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	live := drawingWithName("live")
	live.Elements = []scene.Element{
		&scene.TextElement{Attrs: attrs("el_1"), Text: "before", FontSize: 16},
	}

	h := NewHistory(live)
	live.Elements[0].(*scene.TextElement).Text = "after"

	snap := h.snapshots[0]
	if snap.Elements[0].(*scene.TextElement).Text != "before" {
		t.Error("mutating the live scene must not reach the stored snapshot")
	}

	h.Commit(live)
	got := h.Undo()
	got.Elements[0].(*scene.TextElement).Text = "mutated"
	if h.snapshots[0].Elements[0].(*scene.TextElement).Text != "before" {
		t.Error("mutating an undo result must not reach the stored snapshot")
	}
}
