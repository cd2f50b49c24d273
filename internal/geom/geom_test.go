package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestTransformApplyInvertRoundTrip(t *testing.T) {
	transforms := []Transform{
		Identity(),
		{TranslateX: 100, TranslateY: -40, Scale: 2},
		{TranslateX: -3.5, TranslateY: 12, Scale: 0.5},
	}
	points := []Point{{}, {X: 10, Y: 20}, {X: -7.25, Y: 3}}

	for _, tf := range transforms {
		for _, p := range points {
			got := tf.Invert(tf.Apply(p))
			if diff := cmp.Diff(p, got, approx); diff != "" {
				t.Errorf("round trip through %+v (-want +got):\n%s", tf, diff)
			}
		}
	}
}

func TestTransformInvertZeroScale(t *testing.T) {
	tf := Transform{TranslateX: 10, TranslateY: 20}
	got := tf.Invert(Point{X: 15, Y: 28})
	if diff := cmp.Diff(Point{X: 5, Y: 8}, got, approx); diff != "" {
		t.Errorf("zero scale should invert as scale 1 (-want +got):\n%s", diff)
	}
}

func TestClampCanvasScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.1, MinCanvasScale},
		{0.5, 0.5},
		{1, 1},
		{3, 3},
		{7.5, MaxCanvasScale},
	}
	for _, tt := range tests {
		if got := ClampCanvasScale(tt.in); got != tt.want {
			t.Errorf("ClampCanvasScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDistancePointToSegment(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(10, 0)

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"above middle", Pt(5, 3), 3},
		{"on segment", Pt(7, 0), 0},
		{"beyond end clamps to endpoint", Pt(13, 4), 5},
		{"before start clamps to endpoint", Pt(-3, 4), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistancePointToSegment(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistancePointToSegmentDegenerate(t *testing.T) {
	p := Pt(3, 4)
	if got := DistancePointToSegment(p, Pt(0, 0), Pt(0, 0)); math.Abs(got-5) > 1e-9 {
		t.Errorf("degenerate segment: got %v, want 5", got)
	}
}

func TestRectFromPointsNormalizes(t *testing.T) {
	got := RectFromPoints(Pt(10, 8), Pt(2, 20))
	want := Rect{X: 2, Y: 8, Width: 8, Height: 12}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 10}

	got := a.Union(b)
	want := Rect{X: 0, Y: -5, Width: 15, Height: 15}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(a, a.Union(Rect{}), approx); diff != "" {
		t.Errorf("union with empty should be identity (-want +got):\n%s", diff)
	}
}

func TestRectExpandContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if r.Contains(Pt(-1, 5)) {
		t.Error("point left of rect should be outside")
	}
	if !r.Expand(2).Contains(Pt(-1, 5)) {
		t.Error("expanded rect should contain the point")
	}
}
