package canvas

import (
	"encoding/json"
	"math"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

// DrawCommand is a single renderer-agnostic drawing operation. Any backend
// (Canvas2D, SVG, PDF) replays the list in order; this is the geometric
// contract the engine exposes instead of picking a renderer.
type DrawCommand struct {
	Op          string    `json:"op"` // "background", "path", "text"
	ElementID   string    `json:"elementId,omitempty"`
	Transform   []float64 `json:"transform,omitempty"` // [a, b, c, d, e, f]
	Path        string    `json:"path,omitempty"`      // SVG path data
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Text        string    `json:"text,omitempty"`
	X           float64   `json:"x,omitempty"`
	Y           float64   `json:"y,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	FontFamily  string    `json:"fontFamily,omitempty"`
	Color       string    `json:"color,omitempty"`
}

// CompileDrawCommands flattens a drawing into painter's-order commands:
// one background clear followed by one command per element, already
// composed with the canvas view transform.
func CompileDrawCommands(d *scene.Drawing) []DrawCommand {
	if d == nil {
		return nil
	}

	commands := make([]DrawCommand, 0, len(d.Elements)+1)
	commands = append(commands, DrawCommand{Op: "background", Color: d.BackgroundColor})

	for _, el := range d.Elements {
		commands = append(commands, compileElement(el, d.CanvasTransform))
	}
	return commands
}

func compileElement(el scene.Element, view geom.Transform) DrawCommand {
	attrs := el.Attr()
	cmd := DrawCommand{
		ElementID:   attrs.ID,
		Transform:   composeTransforms(view, attrs.Transform),
		Stroke:      attrs.StrokeColor,
		StrokeWidth: attrs.StrokeWidth,
		Fill:        attrs.FillColor,
	}

	switch e := el.(type) {
	case *scene.PathElement:
		cmd.Op = "path"
		cmd.Path = e.Curve.String()
	case *scene.ShapeElement:
		cmd.Op = "path"
		cmd.Path = ShapeCurve(e).String()
	case *scene.TextElement:
		cmd.Op = "text"
		cmd.Text = e.Text
		cmd.X = e.X
		cmd.Y = e.Y
		cmd.FontSize = e.FontSize
		cmd.FontFamily = e.FontFamily
	}
	return cmd
}

// composeTransforms applies the element transform first, then the view.
func composeTransforms(view, el geom.Transform) []float64 {
	s := view.Scale * el.Scale
	return []float64{
		s, 0, 0, s,
		el.TranslateX*view.Scale + view.TranslateX,
		el.TranslateY*view.Scale + view.TranslateY,
	}
}

// ShapeCurve builds the outline geometry for a parametric shape.
func ShapeCurve(e *scene.ShapeElement) geom.Curve {
	switch e.Kind {
	case scene.ShapeLine:
		return geom.Curve{
			{Op: geom.MoveTo, End: geom.Pt(e.X, e.Y)},
			{Op: geom.LineTo, End: geom.Pt(e.X2, e.Y2)},
		}
	case scene.ShapeRect, scene.ShapeSquare:
		return geom.Curve{
			{Op: geom.MoveTo, End: geom.Pt(e.X, e.Y)},
			{Op: geom.LineTo, End: geom.Pt(e.X+e.Width, e.Y)},
			{Op: geom.LineTo, End: geom.Pt(e.X+e.Width, e.Y+e.Height)},
			{Op: geom.LineTo, End: geom.Pt(e.X, e.Y+e.Height)},
			{Op: geom.ClosePath},
		}
	case scene.ShapeCircle, scene.ShapeEllipse:
		return ellipseCurve(e.Bounds())
	case scene.ShapeStar:
		return starCurve(e.Bounds())
	}
	return nil
}

// ellipseCurve approximates an ellipse with quadratic arcs through the four
// axis extremes; good enough for the polyline contract renderers consume.
func ellipseCurve(b geom.Rect) geom.Curve {
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	rx, ry := b.Width/2, b.Height/2

	return geom.Curve{
		{Op: geom.MoveTo, End: geom.Pt(cx+rx, cy)},
		{Op: geom.QuadTo, Ctrl: geom.Pt(cx+rx, cy+ry), End: geom.Pt(cx, cy+ry)},
		{Op: geom.QuadTo, Ctrl: geom.Pt(cx-rx, cy+ry), End: geom.Pt(cx-rx, cy)},
		{Op: geom.QuadTo, Ctrl: geom.Pt(cx-rx, cy-ry), End: geom.Pt(cx, cy-ry)},
		{Op: geom.QuadTo, Ctrl: geom.Pt(cx+rx, cy-ry), End: geom.Pt(cx+rx, cy)},
		{Op: geom.ClosePath},
	}
}

// starCurve builds a five-point star inscribed in the bounds.
func starCurve(b geom.Rect) geom.Curve {
	center := b.Center()
	outer := math.Min(b.Width, b.Height) / 2
	inner := outer * 0.5

	c := make(geom.Curve, 0, 11)
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		p := geom.Pt(center.X+r*math.Cos(angle), center.Y+r*math.Sin(angle))
		if i == 0 {
			c = append(c, geom.Segment{Op: geom.MoveTo, End: p})
		} else {
			c = append(c, geom.Segment{Op: geom.LineTo, End: p})
		}
	}
	return append(c, geom.Segment{Op: geom.ClosePath})
}

// DrawCommandsJSON serializes a command list for transport.
func DrawCommandsJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
