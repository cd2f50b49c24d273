package canvas

import (
	"math"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

// DefaultHitTolerance is the distance within which a point counts as
// touching an element during selection.
const DefaultHitTolerance = 10.0

// handleSize is the edge length of a resize handle in logical units.
const handleSize = 12.0

// TopmostElementAt returns the topmost element under p, testing in reverse
// z-order (later elements are on top), or nil when nothing is hit. p is in
// canvas-local space; each element's own transform is inverted before its
// per-type test.
func TopmostElementAt(p geom.Point, elements []scene.Element, tol float64) scene.Element {
	for i := len(elements) - 1; i >= 0; i-- {
		if HitElement(p, elements[i], tol) {
			return elements[i]
		}
	}
	return nil
}

// HitElement tests a single element against a point with the given
// tolerance. Shapes other than lines hit on their expanded bounding box;
// ellipses deliberately use the same box rule so hit-testing and erasing
// agree (the fill tool applies its stricter per-kind rule separately).
func HitElement(p geom.Point, el scene.Element, tol float64) bool {
	local := el.Attr().Transform.Invert(p)

	switch e := el.(type) {
	case *scene.ShapeElement:
		return hitShape(local, e, tol)
	case *scene.TextElement:
		return e.Bounds().Expand(tol).Contains(local)
	case *scene.PathElement:
		return hitPath(local, e, tol)
	}
	return false
}

func hitShape(p geom.Point, e *scene.ShapeElement, tol float64) bool {
	switch e.Kind {
	case scene.ShapeLine:
		limit := math.Max(e.StrokeWidth, tol)
		return geom.DistancePointToSegment(p, geom.Pt(e.X, e.Y), geom.Pt(e.X2, e.Y2)) <= limit
	case scene.ShapeCircle:
		radius := math.Max(e.Width, e.Height) / 2
		return p.Distance(e.Bounds().Center()) <= radius+tol
	default:
		// rect, square, ellipse and star all hit on expanded bounds.
		return e.Bounds().Expand(tol).Contains(p)
	}
}

func hitPath(p geom.Point, e *scene.PathElement, tol float64) bool {
	limit := math.Max(e.StrokeWidth, tol)
	verts := e.Curve.Vertices()
	if len(verts) == 0 {
		return false
	}
	if len(verts) == 1 {
		return p.Distance(verts[0]) <= limit
	}

	for i := 0; i < len(verts)-1; i++ {
		if geom.DistancePointToSegment(p, verts[i], verts[i+1]) <= limit {
			return true
		}
	}
	return false
}

// Corner identifies a resize handle on a selected shape.
type Corner string

const (
	CornerNone        Corner = ""
	CornerTopLeft     Corner = "tl"
	CornerTopRight    Corner = "tr"
	CornerBottomLeft  Corner = "bl"
	CornerBottomRight Corner = "br"
)

// HandleAt resolves which of the four corner handles of a selected shape
// the point falls in, or CornerNone. Lines have no resize handles.
func HandleAt(p geom.Point, e *scene.ShapeElement) Corner {
	if e.Kind == scene.ShapeLine {
		return CornerNone
	}

	local := e.Attrs.Transform.Invert(p)
	b := e.Bounds()

	corners := []struct {
		corner Corner
		at     geom.Point
	}{
		{CornerTopLeft, geom.Pt(b.X, b.Y)},
		{CornerTopRight, geom.Pt(b.X+b.Width, b.Y)},
		{CornerBottomLeft, geom.Pt(b.X, b.Y+b.Height)},
		{CornerBottomRight, geom.Pt(b.X+b.Width, b.Y+b.Height)},
	}

	half := handleSize / 2
	for _, c := range corners {
		box := geom.Rect{X: c.at.X - half, Y: c.at.Y - half, Width: handleSize, Height: handleSize}
		if box.Contains(local) {
			return c.corner
		}
	}
	return CornerNone
}

// DragOffset computes the offset between the grab point and the element's
// anchor so a drag keeps the element under the finger.
func DragOffset(p geom.Point, el scene.Element) geom.Point {
	anchor := ElementAnchor(el)
	return geom.Pt(p.X-anchor.X, p.Y-anchor.Y)
}

// ElementAnchor returns the reference position dragging moves: the origin
// for shapes and text, the first vertex for paths.
func ElementAnchor(el scene.Element) geom.Point {
	switch e := el.(type) {
	case *scene.ShapeElement:
		return geom.Pt(e.X, e.Y)
	case *scene.TextElement:
		return geom.Pt(e.X, e.Y)
	case *scene.PathElement:
		if verts := e.Curve.Vertices(); len(verts) > 0 {
			return verts[0]
		}
	}
	return geom.Point{}
}
