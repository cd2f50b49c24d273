package geom

import (
	"strconv"
	"strings"
)

// SegmentOp identifies a curve segment command.
type SegmentOp uint8

const (
	MoveTo SegmentOp = iota
	LineTo
	QuadTo
	ClosePath
)

// Segment is a single curve command. Ctrl is only meaningful for QuadTo;
// ClosePath carries no coordinates.
type Segment struct {
	Op   SegmentOp
	Ctrl Point
	End  Point
}

// Curve is an ordered sequence of segment commands, the stored geometry of
// a freehand stroke. The zero value is an empty curve.
type Curve []Segment

// Vertices decomposes the curve into an ordered coordinate list used as a
// polyline approximation for hit-testing and erasing. Quadratic control
// points are included so the approximation follows the stroke between
// anchor points. Malformed or empty curves yield an empty list.
func (c Curve) Vertices() []Point {
	if len(c) == 0 {
		return nil
	}

	pts := make([]Point, 0, len(c)*2)
	for _, seg := range c {
		switch seg.Op {
		case MoveTo, LineTo:
			pts = append(pts, seg.End)
		case QuadTo:
			pts = append(pts, seg.Ctrl, seg.End)
		case ClosePath:
			// no coordinates
		}
	}
	return pts
}

// Closed reports whether the terminal command closes the contour.
func (c Curve) Closed() bool {
	return len(c) > 0 && c[len(c)-1].Op == ClosePath
}

// Polyline builds a curve of straight segments through the given vertices.
// Fewer than two points yield an empty curve.
func Polyline(pts []Point) Curve {
	if len(pts) < 2 {
		return nil
	}

	c := make(Curve, 0, len(pts))
	c = append(c, Segment{Op: MoveTo, End: pts[0]})
	for _, p := range pts[1:] {
		c = append(c, Segment{Op: LineTo, End: p})
	}
	return c
}

// String serializes the curve in SVG path-data form ("M x y Q cx cy x y ...").
// This is the persisted representation; ParseCurve round-trips it.
func (c Curve) String() string {
	var b strings.Builder
	for i, seg := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch seg.Op {
		case MoveTo:
			b.WriteString("M ")
			writeCoords(&b, seg.End)
		case LineTo:
			b.WriteString("L ")
			writeCoords(&b, seg.End)
		case QuadTo:
			b.WriteString("Q ")
			writeCoords(&b, seg.Ctrl)
			b.WriteByte(' ')
			writeCoords(&b, seg.End)
		case ClosePath:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func writeCoords(b *strings.Builder, p Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
}

// ParseCurve parses SVG-style path data into a curve. It accepts the
// absolute M, L, Q and Z commands this system emits and tolerates malformed
// input by returning whatever prefix parsed cleanly; it never fails.
func ParseCurve(d string) Curve {
	fields := strings.FieldsFunc(d, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})

	var c Curve
	i := 0
	for i < len(fields) {
		cmd := fields[i]
		i++
		switch cmd {
		case "M", "L":
			p, ok := readPoint(fields, &i)
			if !ok {
				return c
			}
			op := MoveTo
			if cmd == "L" {
				op = LineTo
			}
			c = append(c, Segment{Op: op, End: p})
		case "Q":
			ctrl, ok := readPoint(fields, &i)
			if !ok {
				return c
			}
			end, ok := readPoint(fields, &i)
			if !ok {
				return c
			}
			c = append(c, Segment{Op: QuadTo, Ctrl: ctrl, End: end})
		case "Z", "z":
			c = append(c, Segment{Op: ClosePath})
		default:
			// Unknown command: stop at what parsed so far rather than guess.
			return c
		}
	}
	return c
}

func readPoint(fields []string, i *int) (Point, bool) {
	if *i+1 >= len(fields) {
		return Point{}, false
	}
	x, errX := strconv.ParseFloat(fields[*i], 64)
	y, errY := strconv.ParseFloat(fields[*i+1], 64)
	if errX != nil || errY != nil {
		return Point{}, false
	}
	*i += 2
	return Point{X: x, Y: y}, true
}
