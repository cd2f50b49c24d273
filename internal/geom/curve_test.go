package geom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCurveStringParseRoundTrip(t *testing.T) {
	c := Curve{
		{Op: MoveTo, End: Pt(0, 0)},
		{Op: QuadTo, Ctrl: Pt(2.5, 4), End: Pt(5, 0)},
		{Op: LineTo, End: Pt(10, -3)},
		{Op: ClosePath},
	}

	got := ParseCurve(c.String())
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestParseCurveTolerant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int // segments parsed
	}{
		{"empty", "", 0},
		{"garbage", "hello world", 0},
		{"truncated coords", "M 0 0 L 5", 1},
		{"unknown command stops", "M 0 0 C 1 2 3 4 5 6", 1},
		{"commas as separators", "M 0,0 L 5,5", 2},
		{"valid prefix kept", "M 0 0 Q 1 1 2 0 L nope", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCurve(tt.in); len(got) != tt.want {
				t.Errorf("ParseCurve(%q) parsed %d segments, want %d", tt.in, len(got), tt.want)
			}
		})
	}
}

func TestPolyline(t *testing.T) {
	if Polyline([]Point{{X: 1, Y: 1}}) != nil {
		t.Error("single point should yield an empty curve")
	}

	c := Polyline([]Point{{0, 0}, {5, 0}, {5, 5}})
	want := Curve{
		{Op: MoveTo, End: Pt(0, 0)},
		{Op: LineTo, End: Pt(5, 0)},
		{Op: LineTo, End: Pt(5, 5)},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCurveVertices(t *testing.T) {
	c := Curve{
		{Op: MoveTo, End: Pt(0, 0)},
		{Op: QuadTo, Ctrl: Pt(1, 2), End: Pt(2, 0)},
		{Op: ClosePath},
	}
	got := c.Vertices()
	want := []Point{{0, 0}, {1, 2}, {2, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCurveClosed(t *testing.T) {
	open := Polyline([]Point{{0, 0}, {1, 1}})
	if open.Closed() {
		t.Error("polyline should be open")
	}

	closed := append(open, Segment{Op: ClosePath})
	if !closed.Closed() {
		t.Error("curve ending in Z should be closed")
	}

	if (Curve{}).Closed() {
		t.Error("empty curve should be open")
	}
}
