package export

import (
	"bytes"
	"testing"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

func testAttrs(id string) scene.Attrs {
	return scene.Attrs{
		ID:          id,
		StrokeColor: "#336699",
		StrokeWidth: 3,
		Transform:   geom.Identity(),
	}
}

func TestWriteDrawingPDF(t *testing.T) {
	d := scene.NewDrawing("draw_1", "test", 800, 600, "#ffffff")
	d.Elements = []scene.Element{
		&scene.PathElement{
			Attrs: testAttrs("el_1"),
			Curve: geom.Curve{
				{Op: geom.MoveTo, End: geom.Pt(10, 10)},
				{Op: geom.QuadTo, Ctrl: geom.Pt(50, 80), End: geom.Pt(90, 10)},
			},
		},
		&scene.ShapeElement{Attrs: testAttrs("el_2"), Kind: scene.ShapeStar, X: 100, Y: 100, Width: 80, Height: 80},
		&scene.ShapeElement{Attrs: testAttrs("el_3"), Kind: scene.ShapeLine, X: 0, Y: 0, X2: 200, Y2: 200},
		&scene.TextElement{Attrs: testAttrs("el_4"), Text: "hello", X: 20, Y: 200, FontSize: 16},
	}

	var buf bytes.Buffer
	if err := WriteDrawingPDF(&buf, d); err != nil {
		t.Fatalf("WriteDrawingPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestWriteDrawingPDFEmptyScene(t *testing.T) {
	d := scene.NewDrawing("draw_1", "blank", 0, 0, "#ffffff")

	var buf bytes.Buffer
	if err := WriteDrawingPDF(&buf, d); err != nil {
		t.Fatalf("WriteDrawingPDF on empty scene: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty scene should still produce a document")
	}
}

func TestFitToPageScalesDown(t *testing.T) {
	d := scene.NewDrawing("draw_1", "big", 1900, 2700, "#ffffff")

	scale, offsetX, offsetY := fitToPage(d)
	if scale >= 1 {
		t.Errorf("oversized canvas should scale down, got %v", scale)
	}
	if w := 1900 * scale; w > pageWidth-2*pageMargin+1e-9 {
		t.Errorf("scaled width %v exceeds the printable area", w)
	}
	if offsetX < pageMargin || offsetY < pageMargin {
		t.Errorf("content offset (%v,%v) inside the margin", offsetX, offsetY)
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#336699", 0x33, 0x66, 0x99},
		{"#fff", 0xff, 0xff, 0xff},
		{"", 1, 2, 3},
		{"not-a-color", 1, 2, 3},
		{"#12345", 1, 2, 3},
	}
	for _, tt := range tests {
		r, g, b := hexColor(tt.in, 1, 2, 3)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("hexColor(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.in, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
