package scene

import (
	"encoding/json"
	"fmt"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
)

// Drawing is a scene plus its metadata: the ordered element list (later =
// on top), background, view transform and document bookkeeping. It is the
// serialization contract between the engine and its persistence boundary.
type Drawing struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Elements        []Element      `json:"-"`
	BackgroundColor string         `json:"backgroundColor"`
	CanvasTransform geom.Transform `json:"canvasTransform"`
	CanvasWidth     float64        `json:"canvasWidth"`
	CanvasHeight    float64        `json:"canvasHeight"`
	Version         int            `json:"version"`
	CreatedAt       string         `json:"createdAt"`
	UpdatedAt       string         `json:"updatedAt"`
}

// NewDrawing creates an empty drawing with an identity view transform.
func NewDrawing(id, name string, width, height float64, background string) *Drawing {
	return &Drawing{
		ID:              id,
		Name:            name,
		BackgroundColor: background,
		CanvasTransform: geom.Identity(),
		CanvasWidth:     width,
		CanvasHeight:    height,
		Version:         1,
	}
}

// Clone deep-copies the drawing. History snapshots and in-flight saves rely
// on clones being fully isolated from the live scene.
func (d *Drawing) Clone() *Drawing {
	out := *d
	out.Elements = make([]Element, len(d.Elements))
	for i, el := range d.Elements {
		out.Elements[i] = el.Clone()
	}
	return &out
}

// IndexOf returns the position of the element with the given id, or -1.
func (d *Drawing) IndexOf(id string) int {
	for i, el := range d.Elements {
		if el.Attr().ID == id {
			return i
		}
	}
	return -1
}

// ElementByID returns the element with the given id, or nil.
func (d *Drawing) ElementByID(id string) Element {
	if i := d.IndexOf(id); i >= 0 {
		return d.Elements[i]
	}
	return nil
}

// ReplaceElement swaps the element with el's id for el, preserving z-order.
// Unknown ids are ignored.
func (d *Drawing) ReplaceElement(el Element) {
	if i := d.IndexOf(el.Attr().ID); i >= 0 {
		d.Elements[i] = el
	}
}

type drawingJSON struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Elements        []json.RawMessage `json:"elements"`
	BackgroundColor string            `json:"backgroundColor"`
	CanvasTransform geom.Transform    `json:"canvasTransform"`
	CanvasWidth     float64           `json:"canvasWidth"`
	CanvasHeight    float64           `json:"canvasHeight"`
	Version         int               `json:"version"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

// MarshalJSON serializes the drawing with each element in tagged form.
func (d *Drawing) MarshalJSON() ([]byte, error) {
	out := drawingJSON{
		ID:              d.ID,
		Name:            d.Name,
		Elements:        make([]json.RawMessage, 0, len(d.Elements)),
		BackgroundColor: d.BackgroundColor,
		CanvasTransform: d.CanvasTransform,
		CanvasWidth:     d.CanvasWidth,
		CanvasHeight:    d.CanvasHeight,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}

	for _, el := range d.Elements {
		raw, err := MarshalElement(el)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, raw)
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses a drawing, dropping legacy mask-eraser strokes and
// rejecting structurally invalid documents.
func (d *Drawing) UnmarshalJSON(data []byte) error {
	var in drawingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode drawing: %w", err)
	}

	elements := make([]Element, 0, len(in.Elements))
	for _, raw := range in.Elements {
		el, err := UnmarshalElement(raw)
		if err != nil {
			return err
		}
		if el == nil {
			continue // legacy mask stroke, dropped
		}
		elements = append(elements, el)
	}

	*d = Drawing{
		ID:              in.ID,
		Name:            in.Name,
		Elements:        elements,
		BackgroundColor: in.BackgroundColor,
		CanvasTransform: in.CanvasTransform,
		CanvasWidth:     in.CanvasWidth,
		CanvasHeight:    in.CanvasHeight,
		Version:         in.Version,
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
	return nil
}

// Validate checks the structural invariants a loaded drawing must satisfy.
func (d *Drawing) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("drawing has no id")
	}

	seen := make(map[string]struct{}, len(d.Elements))
	for _, el := range d.Elements {
		id := el.Attr().ID
		if id == "" {
			return fmt.Errorf("element has no id")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate element id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
