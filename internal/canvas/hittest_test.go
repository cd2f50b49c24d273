package canvas

import (
	"testing"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

func attrs(id string) scene.Attrs {
	return scene.Attrs{
		ID:          id,
		StrokeColor: "#000000",
		StrokeWidth: 2,
		Transform:   geom.Identity(),
	}
}

func TestTopmostElementAtReverseZOrder(t *testing.T) {
	bottom := &scene.ShapeElement{Attrs: attrs("el_bottom"), Kind: scene.ShapeRect, X: 0, Y: 0, Width: 100, Height: 100}
	top := &scene.ShapeElement{Attrs: attrs("el_top"), Kind: scene.ShapeRect, X: 25, Y: 25, Width: 50, Height: 50}
	elements := []scene.Element{bottom, top}

	hit := TopmostElementAt(geom.Pt(50, 50), elements, DefaultHitTolerance)
	if hit == nil || hit.Attr().ID != "el_top" {
		t.Errorf("overlap should resolve to the later element, got %v", hit)
	}

	hit = TopmostElementAt(geom.Pt(5, 5), elements, DefaultHitTolerance)
	if hit == nil || hit.Attr().ID != "el_bottom" {
		t.Errorf("point outside the top element should fall through, got %v", hit)
	}

	if TopmostElementAt(geom.Pt(500, 500), elements, DefaultHitTolerance) != nil {
		t.Error("point far from everything should hit nothing")
	}
}

func TestHitElementLine(t *testing.T) {
	line := &scene.ShapeElement{Attrs: attrs("el_1"), Kind: scene.ShapeLine, X: 0, Y: 0, X2: 100, Y2: 0}

	if !HitElement(geom.Pt(50, 8), line, DefaultHitTolerance) {
		t.Error("point within tolerance of the line should hit")
	}
	if HitElement(geom.Pt(50, 15), line, DefaultHitTolerance) {
		t.Error("point past tolerance should miss")
	}
}

func TestHitElementLineWideStroke(t *testing.T) {
	line := &scene.ShapeElement{Attrs: attrs("el_1"), Kind: scene.ShapeLine, X: 0, Y: 0, X2: 100, Y2: 0}
	line.StrokeWidth = 20

	if !HitElement(geom.Pt(50, 15), line, DefaultHitTolerance) {
		t.Error("stroke width beyond tolerance should widen the hit band")
	}
}

func TestHitElementCircle(t *testing.T) {
	circle := &scene.ShapeElement{Attrs: attrs("el_1"), Kind: scene.ShapeCircle, X: 0, Y: 0, Width: 40, Height: 40}

	if !HitElement(geom.Pt(20, 48), circle, DefaultHitTolerance) {
		t.Error("point within radius+tolerance should hit")
	}
	if HitElement(geom.Pt(20, 52), circle, DefaultHitTolerance) {
		t.Error("point past radius+tolerance should miss")
	}
}

func TestHitElementRespectsTransform(t *testing.T) {
	rect := &scene.ShapeElement{Attrs: attrs("el_1"), Kind: scene.ShapeRect, X: 0, Y: 0, Width: 10, Height: 10}
	rect.Transform = geom.Transform{TranslateX: 100, TranslateY: 100, Scale: 2}

	// Local (5,5) maps to (110,110) under the element transform.
	if !HitElement(geom.Pt(110, 110), rect, 0) {
		t.Error("transformed element should hit at its mapped position")
	}
	if HitElement(geom.Pt(5, 5), rect, 0) {
		t.Error("untransformed position should miss")
	}
}

func TestHitElementPath(t *testing.T) {
	path := &scene.PathElement{
		Attrs: attrs("el_1"),
		Curve: geom.Polyline([]geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}}),
	}

	if !HitElement(geom.Pt(50, 25), path, DefaultHitTolerance) {
		t.Error("point on the second leg should hit")
	}
	if HitElement(geom.Pt(0, 50), path, DefaultHitTolerance) {
		t.Error("point far from both legs should miss")
	}
}

func TestHandleAt(t *testing.T) {
	sh := &scene.ShapeElement{Attrs: attrs("el_1"), Kind: scene.ShapeRect, X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		p    geom.Point
		want Corner
	}{
		{geom.Pt(0, 0), CornerTopLeft},
		{geom.Pt(102, -2), CornerTopRight},
		{geom.Pt(-4, 98), CornerBottomLeft},
		{geom.Pt(100, 100), CornerBottomRight},
		{geom.Pt(50, 50), CornerNone},
	}
	for _, tt := range tests {
		if got := HandleAt(tt.p, sh); got != tt.want {
			t.Errorf("HandleAt(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}

	line := &scene.ShapeElement{Attrs: attrs("el_2"), Kind: scene.ShapeLine, X: 0, Y: 0, X2: 100, Y2: 0}
	if HandleAt(geom.Pt(0, 0), line) != CornerNone {
		t.Error("lines have no resize handles")
	}
}
