package scene

import (
	"encoding/json"
	"fmt"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
)

// ShapeKind identifies a parametric shape variant.
type ShapeKind string

const (
	ShapeLine    ShapeKind = "line"
	ShapeRect    ShapeKind = "rect"
	ShapeSquare  ShapeKind = "square"
	ShapeCircle  ShapeKind = "circle"
	ShapeEllipse ShapeKind = "ellipse"
	ShapeStar    ShapeKind = "star"
)

// Attrs are the fields shared by every drawable element.
type Attrs struct {
	ID          string         `json:"id"`
	StrokeColor string         `json:"strokeColor"`
	FillColor   string         `json:"fillColor,omitempty"`
	StrokeWidth float64        `json:"strokeWidth"`
	Transform   geom.Transform `json:"transform"`
	Timestamp   int64          `json:"timestamp"`
}

// Element is the closed set of drawable scene elements. Elements are value
// objects: a mutation replaces the element in the drawing's list, never
// edits it in place.
type Element interface {
	Attr() Attrs
	Clone() Element

	element() // closed sum: only Path, Shape and Text implement Element
}

// PathElement is a freehand stroke.
type PathElement struct {
	Attrs
	Curve geom.Curve
}

// ShapeElement is a parametric shape. X2/Y2 are only meaningful for lines.
type ShapeElement struct {
	Attrs
	Kind   ShapeKind
	X      float64
	Y      float64
	Width  float64
	Height float64
	X2     float64
	Y2     float64
}

// TextElement is a placed text label.
type TextElement struct {
	Attrs
	Text       string
	X          float64
	Y          float64
	FontSize   float64
	FontFamily string
}

func (e *PathElement) Attr() Attrs  { return e.Attrs }
func (e *ShapeElement) Attr() Attrs { return e.Attrs }
func (e *TextElement) Attr() Attrs  { return e.Attrs }

func (e *PathElement) element()  {}
func (e *ShapeElement) element() {}
func (e *TextElement) element()  {}

// Clone deep-copies the path, including its curve storage.
func (e *PathElement) Clone() Element {
	out := *e
	out.Curve = append(geom.Curve(nil), e.Curve...)
	return &out
}

func (e *ShapeElement) Clone() Element {
	out := *e
	return &out
}

func (e *TextElement) Clone() Element {
	out := *e
	return &out
}

// Bounds returns the axis-aligned bounds of the shape in its local space.
func (e *ShapeElement) Bounds() geom.Rect {
	if e.Kind == ShapeLine {
		return geom.RectFromPoints(geom.Pt(e.X, e.Y), geom.Pt(e.X2, e.Y2))
	}
	return geom.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Bounds approximates the glyph box of the text: width scales with the
// character count, height with the font size.
func (e *TextElement) Bounds() geom.Rect {
	return geom.Rect{
		X:      e.X,
		Y:      e.Y,
		Width:  float64(len([]rune(e.Text))) * e.FontSize * 0.6,
		Height: e.FontSize * 1.2,
	}
}

// Wire representation: one flat envelope dispatched on "type".
type elementJSON struct {
	Type string `json:"type"`
	Attrs

	// path
	D string `json:"d,omitempty"`

	// legacy mask-eraser flag, see UnmarshalElement
	IsEraser bool `json:"isEraser,omitempty"`

	// shape
	Kind   ShapeKind `json:"kind,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	X2     *float64  `json:"x2,omitempty"`
	Y2     *float64  `json:"y2,omitempty"`

	// text
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
}

const (
	typePath  = "path"
	typeShape = "shape"
	typeText  = "text"
)

// MarshalElement serializes an element to its tagged wire form.
func MarshalElement(el Element) ([]byte, error) {
	var env elementJSON

	switch e := el.(type) {
	case *PathElement:
		env = elementJSON{Type: typePath, Attrs: e.Attrs, D: e.Curve.String()}
	case *ShapeElement:
		env = elementJSON{
			Type:   typeShape,
			Attrs:  e.Attrs,
			Kind:   e.Kind,
			X:      e.X,
			Y:      e.Y,
			Width:  e.Width,
			Height: e.Height,
		}
		if e.Kind == ShapeLine {
			x2, y2 := e.X2, e.Y2
			env.X2 = &x2
			env.Y2 = &y2
		}
	case *TextElement:
		env = elementJSON{
			Type:       typeText,
			Attrs:      e.Attrs,
			Text:       e.Text,
			X:          e.X,
			Y:          e.Y,
			FontSize:   e.FontSize,
			FontFamily: e.FontFamily,
		}
	default:
		return nil, fmt.Errorf("unknown element type %T", el)
	}

	return json.Marshal(env)
}

// UnmarshalElement parses the tagged wire form back into an element.
// Legacy mask-eraser strokes (isEraser) predate split-on-erase and are
// discarded: both element and error are nil. Unknown types are rejected.
func UnmarshalElement(data []byte) (Element, error) {
	var env elementJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}

	switch env.Type {
	case typePath:
		if env.IsEraser {
			return nil, nil
		}
		return &PathElement{Attrs: env.Attrs, Curve: geom.ParseCurve(env.D)}, nil
	case typeShape:
		e := &ShapeElement{
			Attrs:  env.Attrs,
			Kind:   env.Kind,
			X:      env.X,
			Y:      env.Y,
			Width:  env.Width,
			Height: env.Height,
		}
		if env.X2 != nil {
			e.X2 = *env.X2
		}
		if env.Y2 != nil {
			e.Y2 = *env.Y2
		}
		return e, nil
	case typeText:
		return &TextElement{
			Attrs:      env.Attrs,
			Text:       env.Text,
			X:          env.X,
			Y:          env.Y,
			FontSize:   env.FontSize,
			FontFamily: env.FontFamily,
		}, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", env.Type)
	}
}
