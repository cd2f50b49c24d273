package canvas

import (
	"math"
	"sort"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

// Eraser pressure scaling bounds.
const (
	minEraserPressure = 0.5
	maxEraserPressure = 2.0
)

// maxEraserInterpolation bounds how many samples a fast eraser stroke is
// expanded into between two pointer positions.
const maxEraserInterpolation = 10

// EraserSamples expands an eraser movement into the coverage points tested
// against the scene: the current position plus up to 10 interpolated points
// back toward the previous position, one per quarter-radius of travel.
func EraserSamples(cur geom.Point, prev *geom.Point, radius float64) []geom.Point {
	if prev == nil || *prev == cur {
		return []geom.Point{cur}
	}

	step := radius / 4
	if step <= 0 {
		step = 1
	}

	n := int(math.Round(prev.Distance(cur) / step))
	if n < 1 {
		n = 1
	} else if n > maxEraserInterpolation {
		n = maxEraserInterpolation
	}

	samples := make([]geom.Point, 0, n)
	for i := 1; i <= n; i++ {
		samples = append(samples, prev.Lerp(cur, float64(i)/float64(n)))
	}
	return samples
}

// EraseStep applies one eraser sample batch to the element list. Shapes and
// text under the eraser are removed outright; freehand paths are split into
// surviving fragments. The returned slice replaces the scene atomically;
// when nothing was touched the original slice is returned unchanged with
// changed == false.
func EraseStep(elements []scene.Element, cur geom.Point, prev *geom.Point, radius, pressure float64, newID func() string) ([]scene.Element, bool) {
	// Pressure 0 means the device reported none (mouse, stylus hover);
	// the radius stays at its configured size instead of clamping to the
	// minimum.
	if pressure > 0 {
		radius *= geom.ConstrainScale(pressure, minEraserPressure, maxEraserPressure)
	}
	samples := EraserSamples(cur, prev, radius)

	out := make([]scene.Element, 0, len(elements))
	changed := false

	for _, el := range elements {
		switch e := el.(type) {
		case *scene.PathElement:
			frags, split := splitPath(e, samples, radius, newID)
			if split {
				changed = true
				out = append(out, frags...)
			} else {
				out = append(out, el)
			}
		default:
			// Shapes and text are never split: any touch removes them.
			if eraserTouches(el, samples, radius) {
				changed = true
			} else {
				out = append(out, el)
			}
		}
	}

	if !changed {
		return elements, false
	}
	return out, true
}

func eraserTouches(el scene.Element, samples []geom.Point, radius float64) bool {
	for _, s := range samples {
		if HitElement(s, el, radius) {
			return true
		}
	}
	return false
}

// splitPath partitions the path's polyline into the maximal runs that stay
// outside every eraser sample and rebuilds each run of at least two
// vertices as a fresh fragment element. Fragments keep the original style
// and timestamp but get new ids. Returns (nil, true) for full removal and
// (nil, false) when the eraser never touched the path.
func splitPath(e *scene.PathElement, samples []geom.Point, radius float64, newID func() string) ([]scene.Element, bool) {
	localSamples, localRadius := toElementSpace(e.Attrs.Transform, samples, radius)

	verts := e.Curve.Vertices()
	switch len(verts) {
	case 0:
		// Degenerate path: erase it entirely.
		return nil, true
	case 1:
		for _, s := range localSamples {
			if s.Distance(verts[0]) <= localRadius {
				return nil, true
			}
		}
		return nil, false
	}

	var (
		frags   [][]geom.Point
		run     []geom.Point
		touched bool
	)

	push := func(p geom.Point) {
		if len(run) == 0 || run[len(run)-1] != p {
			run = append(run, p)
		}
	}
	flush := func() {
		if len(run) >= 2 {
			frags = append(frags, run)
		}
		run = nil
	}

	for i := 0; i < len(verts)-1; i++ {
		a, b := verts[i], verts[i+1]
		erased := erasedIntervals(a, b, localSamples, localRadius)
		if len(erased) > 0 {
			touched = true
		}

		cursor := 0.0
		for _, iv := range erased {
			if iv.t0 > cursor {
				push(a.Lerp(b, cursor))
				push(a.Lerp(b, iv.t0))
			}
			flush()
			if iv.t1 > cursor {
				cursor = iv.t1
			}
		}
		if cursor < 1 {
			push(a.Lerp(b, cursor))
			push(b)
		}
	}
	flush()

	if !touched {
		return nil, false
	}

	out := make([]scene.Element, 0, len(frags))
	for _, pts := range frags {
		attrs := e.Attrs
		attrs.ID = newID()
		out = append(out, &scene.PathElement{Attrs: attrs, Curve: geom.Polyline(pts)})
	}
	return out, true
}

// toElementSpace maps eraser samples into an element's local space. The
// radius shrinks by the element's uniform scale so coverage is unchanged.
func toElementSpace(t geom.Transform, samples []geom.Point, radius float64) ([]geom.Point, float64) {
	if t.IsIdentity() {
		return samples, radius
	}

	local := make([]geom.Point, len(samples))
	for i, s := range samples {
		local[i] = t.Invert(s)
	}
	if t.Scale > 0 {
		radius /= t.Scale
	}
	return local, radius
}

type interval struct {
	t0, t1 float64
}

// erasedIntervals returns the merged parameter ranges of segment ab that
// lie within radius of any sample, each clipped to [0, 1] and sorted.
func erasedIntervals(a, b geom.Point, samples []geom.Point, radius float64) []interval {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy

	if lenSq == 0 {
		for _, s := range samples {
			if s.Distance(a) <= radius {
				return []interval{{0, 1}}
			}
		}
		return nil
	}

	var ivs []interval
	for _, s := range samples {
		fx := a.X - s.X
		fy := a.Y - s.Y

		// |a + t*(b-a) - s|^2 = radius^2, solved for t.
		bCoef := 2 * (fx*dx + fy*dy)
		cCoef := fx*fx + fy*fy - radius*radius
		disc := bCoef*bCoef - 4*lenSq*cCoef
		if disc < 0 {
			continue
		}

		sq := math.Sqrt(disc)
		t0 := (-bCoef - sq) / (2 * lenSq)
		t1 := (-bCoef + sq) / (2 * lenSq)
		if t1 < 0 || t0 > 1 {
			continue
		}
		ivs = append(ivs, interval{math.Max(t0, 0), math.Min(t1, 1)})
	}

	if len(ivs) < 2 {
		return ivs
	}

	sort.Slice(ivs, func(i, j int) bool { return ivs[i].t0 < ivs[j].t0 })
	merged := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.t0 <= last.t1 {
			if iv.t1 > last.t1 {
				last.t1 = iv.t1
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}
