package canvas

import (
	"fmt"
	"math"
	"testing"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

func idSequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

func TestEraserSamples(t *testing.T) {
	cur := geom.Pt(40, 0)

	if got := EraserSamples(cur, nil, 20); len(got) != 1 || got[0] != cur {
		t.Errorf("no previous position should yield just the current point, got %v", got)
	}

	prev := geom.Pt(0, 0)
	got := EraserSamples(cur, &prev, 20)
	// 40 units of travel at radius 20 is one sample per 5 units: 8 samples.
	if len(got) != 8 {
		t.Fatalf("got %d samples, want 8", len(got))
	}
	if got[len(got)-1] != cur {
		t.Errorf("last sample should be the current position, got %v", got[len(got)-1])
	}

	// A fast stroke is capped.
	far := geom.Pt(10000, 0)
	if got := EraserSamples(far, &prev, 20); len(got) != maxEraserInterpolation {
		t.Errorf("fast stroke should cap at %d samples, got %d", maxEraserInterpolation, len(got))
	}
}

func TestEraseStepRemovesShapesOutright(t *testing.T) {
	elements := []scene.Element{
		&scene.ShapeElement{Attrs: attrs("el_rect"), Kind: scene.ShapeRect, X: 0, Y: 0, Width: 20, Height: 20},
		&scene.TextElement{Attrs: attrs("el_text"), Text: "far away", X: 500, Y: 500, FontSize: 16},
	}

	out, changed := EraseStep(elements, geom.Pt(10, 10), nil, 5, 0, idSequence("el"))
	if !changed {
		t.Fatal("eraser over the rect should report a change")
	}
	if len(out) != 1 || out[0].Attr().ID != "el_text" {
		t.Errorf("rect should be removed and the text kept, got %v", out)
	}
}

func TestEraseStepUntouchedReturnsOriginal(t *testing.T) {
	elements := []scene.Element{
		&scene.PathElement{Attrs: attrs("el_1"), Curve: geom.Polyline([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}})},
	}

	out, changed := EraseStep(elements, geom.Pt(500, 500), nil, 5, 0, idSequence("el"))
	if changed {
		t.Error("eraser far from everything should not report a change")
	}
	if len(out) != 1 || out[0] != elements[0] {
		t.Error("untouched scene should come back unchanged")
	}
}

func TestEraseStepSplitsPathIntoFragments(t *testing.T) {
	// Horizontal three-vertex path; erase the middle with a radius-2 circle
	// at (10, 0). The path splits into two fragments meeting the eraser rim.
	path := &scene.PathElement{
		Attrs: attrs("el_orig"),
		Curve: geom.Polyline([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}}),
	}

	out, changed := EraseStep([]scene.Element{path}, geom.Pt(10, 0), nil, 2, 0, idSequence("frag"))
	if !changed {
		t.Fatal("eraser over the middle should report a change")
	}
	if len(out) != 2 {
		t.Fatalf("got %d fragments, want 2", len(out))
	}

	left := out[0].(*scene.PathElement).Curve.Vertices()
	right := out[1].(*scene.PathElement).Curve.Vertices()

	if left[0] != (geom.Point{X: 0, Y: 0}) {
		t.Errorf("left fragment should start at the original start, got %v", left[0])
	}
	if end := left[len(left)-1]; math.Abs(end.X-8) > 1e-9 || end.Y != 0 {
		t.Errorf("left fragment should end at the eraser rim (8,0), got %v", end)
	}
	if start := right[0]; math.Abs(start.X-12) > 1e-9 || start.Y != 0 {
		t.Errorf("right fragment should start at the eraser rim (12,0), got %v", start)
	}
	if right[len(right)-1] != (geom.Point{X: 20, Y: 0}) {
		t.Errorf("right fragment should end at the original end, got %v", right[len(right)-1])
	}

	// Fragments keep the style but get fresh ids.
	for _, el := range out {
		if el.Attr().ID == "el_orig" {
			t.Error("fragments must not reuse the original id")
		}
		if el.Attr().StrokeColor != path.StrokeColor {
			t.Error("fragments should keep the original stroke color")
		}
		if el.Attr().Timestamp != path.Timestamp {
			t.Error("fragments should keep the original timestamp")
		}
	}
}

func TestEraseStepFullRemoval(t *testing.T) {
	// A short path entirely inside the eraser leaves no fragments.
	path := &scene.PathElement{
		Attrs: attrs("el_1"),
		Curve: geom.Polyline([]geom.Point{{X: 9, Y: 0}, {X: 11, Y: 0}}),
	}

	out, changed := EraseStep([]scene.Element{path}, geom.Pt(10, 0), nil, 5, 0, idSequence("el"))
	if !changed {
		t.Fatal("erasing the whole path should report a change")
	}
	if len(out) != 0 {
		t.Errorf("fully covered path should vanish, got %v", out)
	}
}

func TestEraseStepVertexConservation(t *testing.T) {
	// Vertices outside the eraser survive across all fragments.
	pts := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}, {X: 40, Y: 0}}
	path := &scene.PathElement{Attrs: attrs("el_1"), Curve: geom.Polyline(pts)}

	out, changed := EraseStep([]scene.Element{path}, geom.Pt(20, 0), nil, 3, 0, idSequence("el"))
	if !changed {
		t.Fatal("expected a change")
	}

	var kept []geom.Point
	for _, el := range out {
		kept = append(kept, el.(*scene.PathElement).Curve.Vertices()...)
	}

	for _, p := range pts {
		if p.Distance(geom.Pt(20, 0)) <= 3 {
			continue
		}
		found := false
		for _, k := range kept {
			if k == p {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("surviving vertex %v missing from fragments", p)
		}
	}
}

func TestEraseStepPressureScalesRadius(t *testing.T) {
	// At pressure 2 the radius doubles, reaching a path a base-radius
	// eraser would miss.
	path := &scene.PathElement{
		Attrs: attrs("el_1"),
		Curve: geom.Polyline([]geom.Point{{X: 0, Y: 8}, {X: 10, Y: 8}}),
	}

	_, changed := EraseStep([]scene.Element{path}, geom.Pt(5, 0), nil, 5, 1, idSequence("el"))
	if changed {
		t.Error("neutral pressure should not reach the path")
	}

	_, changed = EraseStep([]scene.Element{path}, geom.Pt(5, 0), nil, 5, 2, idSequence("el"))
	if !changed {
		t.Error("doubled pressure should reach the path")
	}
}

func TestEraseStepZeroPressureKeepsRadius(t *testing.T) {
	// Pressure 0 means no pressure data; the radius must stay at its
	// configured size rather than clamp down to the half-size minimum.
	path := &scene.PathElement{
		Attrs: attrs("el_1"),
		Curve: geom.Polyline([]geom.Point{{X: 0, Y: 4}, {X: 10, Y: 4}}),
	}

	_, changed := EraseStep([]scene.Element{path}, geom.Pt(5, 0), nil, 5, 0, idSequence("el"))
	if !changed {
		t.Error("zero pressure should erase with the full configured radius")
	}
}

func TestEraseStepTransformedPath(t *testing.T) {
	// A translated path is erased in its own space: the eraser at the
	// world position of the path's midpoint must still touch it.
	path := &scene.PathElement{
		Attrs: attrs("el_1"),
		Curve: geom.Polyline([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}),
	}
	path.Transform = geom.Transform{TranslateX: 100, TranslateY: 100, Scale: 1}

	_, changed := EraseStep([]scene.Element{path}, geom.Pt(105, 100), nil, 2, 0, idSequence("el"))
	if !changed {
		t.Error("eraser at the transformed position should touch the path")
	}

	_, changed = EraseStep([]scene.Element{path}, geom.Pt(5, 0), nil, 2, 0, idSequence("el"))
	if changed {
		t.Error("eraser at the untransformed position should miss")
	}
}
