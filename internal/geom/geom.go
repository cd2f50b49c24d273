package geom

import "math"

// Point is a 2D coordinate in canvas-local space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Midpoint returns the midpoint of two points.
func (p Point) Midpoint(o Point) Point {
	return Point{X: 0.5 * (p.X + o.X), Y: 0.5 * (p.Y + o.Y)}
}

// Lerp linearly interpolates between p and o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{
		X: p.X + (o.X-p.X)*t,
		Y: p.Y + (o.Y-p.Y)*t,
	}
}

// Transform is an affine transform with uniform scale and no rotation.
// A local point maps to screen space as local*Scale + Translate.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a canvas-local point to screen space.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// Invert maps a screen point back to canvas-local space.
// A zero scale is treated as 1 so malformed transforms never divide by zero.
func (t Transform) Invert(p Point) Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return Point{
		X: (p.X - t.TranslateX) / s,
		Y: (p.Y - t.TranslateY) / s,
	}
}

// IsIdentity checks if this is the identity transform (within epsilon).
func (t Transform) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(t.TranslateX) < eps &&
		math.Abs(t.TranslateY) < eps &&
		math.Abs(t.Scale-1) < eps
}

// Matrix returns the transform as a Canvas2D-style [a, b, c, d, e, f] slice.
func (t Transform) Matrix() []float64 {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return []float64{s, 0, 0, s, t.TranslateX, t.TranslateY}
}

// Canvas zoom bounds.
const (
	MinCanvasScale = 0.5
	MaxCanvasScale = 3.0
)

// ConstrainScale clamps s to [min, max].
func ConstrainScale(s, min, max float64) float64 {
	if s < min {
		return min
	}
	if s > max {
		return max
	}
	return s
}

// ClampCanvasScale clamps a canvas zoom factor to its legal range.
func ClampCanvasScale(s float64) float64 {
	return ConstrainScale(s, MinCanvasScale, MaxCanvasScale)
}

// DistancePointToSegment returns the distance from p to the segment ab.
// A degenerate segment (a == b) falls back to point distance.
func DistancePointToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return p.Distance(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the axis-aligned rect spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Expand grows the rect by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
