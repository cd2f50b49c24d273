package export

import (
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/canvas"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

// A4 portrait in millimetres.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	pageMargin = 10.0
)

// WriteDrawingPDF renders a drawing to a single-page A4 PDF. The canvas is
// scaled uniformly to fit inside the page margins; the saved view transform
// is ignored so the whole canvas exports regardless of how it was panned or
// zoomed on screen.
func WriteDrawingPDF(w io.Writer, d *scene.Drawing) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	r, g, b := hexColor(d.BackgroundColor, 255, 255, 255)
	p.SetFillColor(r, g, b)
	p.Rect(0, 0, pageWidth, pageHeight, "F")

	scale, offsetX, offsetY := fitToPage(d)
	for _, el := range d.Elements {
		drawElement(p, el, scale, offsetX, offsetY)
	}

	return p.Output(w)
}

// fitToPage computes the canvas-to-page mapping: a uniform scale plus an
// offset that centres the content inside the margins.
func fitToPage(d *scene.Drawing) (scale, offsetX, offsetY float64) {
	extent := contentExtent(d)
	if extent.IsEmpty() {
		return 1, pageMargin, pageMargin
	}

	innerW := pageWidth - 2*pageMargin
	innerH := pageHeight - 2*pageMargin

	scale = innerW / extent.Width
	if s := innerH / extent.Height; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}

	offsetX = pageMargin + (innerW-extent.Width*scale)/2 - extent.X*scale
	offsetY = pageMargin + (innerH-extent.Height*scale)/2 - extent.Y*scale
	return scale, offsetX, offsetY
}

// contentExtent is the canvas size when present, else the union of element
// bounds for legacy drawings saved without dimensions.
func contentExtent(d *scene.Drawing) geom.Rect {
	if d.CanvasWidth > 0 && d.CanvasHeight > 0 {
		return geom.Rect{Width: d.CanvasWidth, Height: d.CanvasHeight}
	}

	var extent geom.Rect
	for _, el := range d.Elements {
		b := elementExtent(el)
		if b.IsEmpty() {
			continue
		}
		if extent.IsEmpty() {
			extent = b
		} else {
			extent = extent.Union(b)
		}
	}
	return extent
}

func elementExtent(el scene.Element) geom.Rect {
	tf := el.Attr().Transform

	var pts []geom.Point
	switch e := el.(type) {
	case *scene.PathElement:
		pts = e.Curve.Vertices()
	case *scene.ShapeElement:
		b := e.Bounds()
		pts = []geom.Point{{X: b.X, Y: b.Y}, {X: b.X + b.Width, Y: b.Y + b.Height}}
	case *scene.TextElement:
		b := e.Bounds()
		pts = []geom.Point{{X: b.X, Y: b.Y}, {X: b.X + b.Width, Y: b.Y + b.Height}}
	}
	if len(pts) == 0 {
		return geom.Rect{}
	}

	world := make([]geom.Point, len(pts))
	for i, p := range pts {
		world[i] = tf.Apply(p)
	}

	extent := geom.RectFromPoints(world[0], world[0])
	for _, p := range world[1:] {
		extent = extent.Union(geom.RectFromPoints(p, p))
	}
	return extent
}

func drawElement(p *gofpdf.Fpdf, el scene.Element, scale, offsetX, offsetY float64) {
	attrs := el.Attr()
	page := func(local geom.Point) (float64, float64) {
		w := attrs.Transform.Apply(local)
		return w.X*scale + offsetX, w.Y*scale + offsetY
	}

	r, g, b := hexColor(attrs.StrokeColor, 0, 0, 0)
	p.SetDrawColor(r, g, b)
	p.SetLineWidth(attrs.StrokeWidth * scale * attrs.Transform.Scale)
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	style := "D"
	if attrs.FillColor != "" {
		fr, fg, fb := hexColor(attrs.FillColor, 0, 0, 0)
		p.SetFillColor(fr, fg, fb)
		style = "FD"
	}

	switch e := el.(type) {
	case *scene.PathElement:
		drawCurve(p, e.Curve, page, "D")

	case *scene.ShapeElement:
		if e.Kind == scene.ShapeLine {
			x1, y1 := page(geom.Point{X: e.X, Y: e.Y})
			x2, y2 := page(geom.Point{X: e.X2, Y: e.Y2})
			p.Line(x1, y1, x2, y2)
			return
		}
		drawCurve(p, canvas.ShapeCurve(e), page, style)

	case *scene.TextElement:
		fr, fg, fb := hexColor(attrs.StrokeColor, 0, 0, 0)
		p.SetTextColor(fr, fg, fb)
		// Canvas font sizes are in logical pixels, PDF wants points.
		p.SetFont("Helvetica", "", e.FontSize*scale*attrs.Transform.Scale*72/25.4)
		x, y := page(geom.Point{X: e.X, Y: e.Y})
		p.Text(x, y, e.Text)
	}
}

func drawCurve(p *gofpdf.Fpdf, c geom.Curve, page func(geom.Point) (float64, float64), style string) {
	if len(c) == 0 {
		return
	}

	for _, seg := range c {
		switch seg.Op {
		case geom.MoveTo:
			x, y := page(seg.End)
			p.MoveTo(x, y)
		case geom.LineTo:
			x, y := page(seg.End)
			p.LineTo(x, y)
		case geom.QuadTo:
			cx, cy := page(seg.Ctrl)
			x, y := page(seg.End)
			p.CurveTo(cx, cy, x, y)
		case geom.ClosePath:
			p.ClosePath()
		}
	}
	p.DrawPath(style)
}

// hexColor parses "#rgb" or "#rrggbb", falling back to the given default.
func hexColor(s string, dr, dg, db int) (int, int, int) {
	if len(s) == 0 || s[0] != '#' {
		return dr, dg, db
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return dr, dg, db
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return dr, dg, db
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}
