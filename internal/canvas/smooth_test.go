package canvas

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
)

func TestAcceptStrokePoint(t *testing.T) {
	last := geom.Pt(0, 0)

	if AcceptStrokePoint(last, geom.Pt(0.5, 0), 5) {
		t.Error("sample inside the filter distance should be rejected")
	}
	if !AcceptStrokePoint(last, geom.Pt(1.5, 0), 5) {
		t.Error("sample past the filter distance should be accepted")
	}

	// Thick brushes space samples further apart.
	if AcceptStrokePoint(last, geom.Pt(1.5, 0), 50) {
		t.Error("filter distance should scale with brush size")
	}
	if !AcceptStrokePoint(last, geom.Pt(6, 0), 50) {
		t.Error("sample past the scaled filter distance should be accepted")
	}
}

func TestSmoothStrokeDegenerate(t *testing.T) {
	if SmoothStroke(nil) != nil {
		t.Error("no points should yield no curve")
	}
	if SmoothStroke([]geom.Point{{X: 1, Y: 1}}) != nil {
		t.Error("a single point should yield no curve")
	}
}

func TestSmoothStrokeTwoPoints(t *testing.T) {
	got := SmoothStroke([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 5}})
	want := geom.Curve{
		{Op: geom.MoveTo, End: geom.Pt(0, 0)},
		{Op: geom.LineTo, End: geom.Pt(10, 5)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSmoothStrokeThreePoints(t *testing.T) {
	got := SmoothStroke([]geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}})
	want := geom.Curve{
		{Op: geom.MoveTo, End: geom.Pt(0, 0)},
		{Op: geom.QuadTo, Ctrl: geom.Pt(5, 5), End: geom.Pt(10, 0)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSmoothStrokeChainSpansEndpoints(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}, {X: 6, Y: 0}, {X: 8, Y: 0}}
	got := SmoothStroke(pts)

	// One MoveTo plus a quadratic per interior point.
	if len(got) != 4 {
		t.Fatalf("got %d segments, want 4", len(got))
	}
	if got[0].Op != geom.MoveTo || got[0].End != pts[0] {
		t.Errorf("curve should start at the first raw sample, got %v", got[0])
	}
	if last := got[len(got)-1]; last.Op != geom.QuadTo || last.End != pts[len(pts)-1] {
		t.Errorf("curve should end exactly at the last raw sample, got %v", last)
	}

	// Intermediate segments end at midpoints between raw samples.
	if got[1].End != (geom.Point{X: 3, Y: 0}) {
		t.Errorf("first chain segment should end at the midpoint (3,0), got %v", got[1].End)
	}
	if got[2].End != (geom.Point{X: 5, Y: 0}) {
		t.Errorf("second chain segment should end at the midpoint (5,0), got %v", got[2].End)
	}
}

func TestSmoothStrokeCollinearControlPoints(t *testing.T) {
	// Collinear input keeps every control point on the line: the blended
	// control of equally spaced collinear samples is the sample itself.
	pts := []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}, {X: 6, Y: 0}, {X: 8, Y: 0}}
	for _, seg := range SmoothStroke(pts) {
		if seg.Op == geom.QuadTo && seg.Ctrl.Y != 0 {
			t.Errorf("control point %v drifted off the line", seg.Ctrl)
		}
	}
}
