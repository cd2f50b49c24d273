package canvas

import (
	"math"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
)

// StrokeFilterDistance is the minimum spacing between accepted brush
// samples; it scales with brush size so thick strokes don't accumulate
// excessive point density at high zoom.
func StrokeFilterDistance(brushSize float64) float64 {
	return math.Max(1, brushSize*0.1)
}

// AcceptStrokePoint reports whether a new raw sample is far enough from the
// previously accepted sample to be kept.
func AcceptStrokePoint(last, next geom.Point, brushSize float64) bool {
	return last.Distance(next) >= StrokeFilterDistance(brushSize)
}

// SmoothStroke converts filtered brush samples into a quadratic-curve
// chain. With fewer than two points there is no stroke; two points give a
// straight line; three a single quadratic; from four on, each sample
// becomes a control point blended toward its neighbors with the segment
// ending at the midpoint to the next sample. The final segment is anchored
// exactly at the last sample, so the stored curve always spans the raw
// endpoints.
func SmoothStroke(pts []geom.Point) geom.Curve {
	switch len(pts) {
	case 0, 1:
		return nil
	case 2:
		return geom.Curve{
			{Op: geom.MoveTo, End: pts[0]},
			{Op: geom.LineTo, End: pts[1]},
		}
	case 3:
		return geom.Curve{
			{Op: geom.MoveTo, End: pts[0]},
			{Op: geom.QuadTo, Ctrl: pts[1], End: pts[2]},
		}
	}

	c := make(geom.Curve, 0, len(pts))
	c = append(c, geom.Segment{Op: geom.MoveTo, End: pts[0]})

	last := len(pts) - 1
	for i := 1; i < last; i++ {
		ctrl := blendControl(pts[i-1], pts[i], pts[i+1])
		var end geom.Point
		if i == last-1 {
			end = pts[last]
		} else {
			end = pts[i].Midpoint(pts[i+1])
		}
		c = append(c, geom.Segment{Op: geom.QuadTo, Ctrl: ctrl, End: end})
	}
	return c
}

// blendControl nudges the current sample toward the chord through its
// neighbors, which rounds off sharp sampling corners without drifting far
// from the raw stroke.
func blendControl(prev, cur, next geom.Point) geom.Point {
	return geom.Point{
		X: cur.X*0.5 + (prev.X+next.X)*0.25,
		Y: cur.Y*0.5 + (prev.Y+next.Y)*0.25,
	}
}
