//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/canvas"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

var session *canvas.Session

func main() {
	session = canvas.NewSession(scene.NewDrawing("draw_local", "Untitled", 0, 0, "#ffffff"), canvas.DefaultConfig())

	// Create the canvas API object
	sketchCanvas := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	sketchCanvas.Set("loadDrawing", js.FuncOf(loadDrawing))
	sketchCanvas.Set("pointerDown", js.FuncOf(pointerDown))
	sketchCanvas.Set("pointerMove", js.FuncOf(pointerMove))
	sketchCanvas.Set("pointerUp", js.FuncOf(pointerUp))
	sketchCanvas.Set("pinchStart", js.FuncOf(pinchStart))
	sketchCanvas.Set("pinchMove", js.FuncOf(pinchMove))
	sketchCanvas.Set("pinchEnd", js.FuncOf(pinchEnd))
	sketchCanvas.Set("setTool", js.FuncOf(setTool))
	sketchCanvas.Set("placeText", js.FuncOf(placeText))
	sketchCanvas.Set("updateText", js.FuncOf(updateText))
	sketchCanvas.Set("deleteElement", js.FuncOf(deleteElement))
	sketchCanvas.Set("undo", js.FuncOf(undo))
	sketchCanvas.Set("redo", js.FuncOf(redo))
	sketchCanvas.Set("clear", js.FuncOf(clear))
	sketchCanvas.Set("save", js.FuncOf(save))
	sketchCanvas.Set("saveDone", js.FuncOf(saveDone))
	sketchCanvas.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	sketchCanvas.Set("render", js.FuncOf(render))
	sketchCanvas.Set("getDrawing", js.FuncOf(getDrawing))
	sketchCanvas.Set("getState", js.FuncOf(getState))
	sketchCanvas.Set("drainEvents", js.FuncOf(drainEvents))

	// Register on global scope
	js.Global().Set("sketchCanvas", sketchCanvas)

	// Signal that WASM is ready
	js.Global().Set("sketchWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDrawing(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing drawing JSON"})
	}

	var d scene.Drawing
	if err := json.Unmarshal([]byte(args[0].String()), &d); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	if err := d.Validate(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	session = canvas.NewSession(&d, canvas.DefaultConfig())
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	pressure := 1.0
	if len(args) > 2 {
		pressure = args[2].Float()
	}
	session.TouchStart(geom.Point{X: args[0].Float(), Y: args[1].Float()}, pressure)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	pressure := 1.0
	if len(args) > 2 {
		pressure = args[2].Float()
	}
	session.TouchMove(geom.Point{X: args[0].Float(), Y: args[1].Float()}, pressure)
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	session.TouchEnd(geom.Point{X: args[0].Float(), Y: args[1].Float()})
	return nil
}

func pinchStart(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	session.PinchStart(
		geom.Point{X: args[0].Float(), Y: args[1].Float()},
		geom.Point{X: args[2].Float(), Y: args[3].Float()},
	)
	return nil
}

func pinchMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	session.PinchMove(
		geom.Point{X: args[0].Float(), Y: args[1].Float()},
		geom.Point{X: args[2].Float(), Y: args[3].Float()},
	)
	return nil
}

func pinchEnd(this js.Value, args []js.Value) interface{} {
	session.PinchEnd()
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.SetTool(canvas.Tool(args[0].String()))
	return nil
}

func placeText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.PlaceText(args[0].String())
	return nil
}

func updateText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	session.UpdateText(args[0].String(), args[1].String())
	return nil
}

func deleteElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.DeleteElement(args[0].String())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	session.Undo()
	return nil
}

func redo(this js.Value, args []js.Value) interface{} {
	session.Redo()
	return nil
}

func clear(this js.Value, args []js.Value) interface{} {
	session.Clear()
	return nil
}

func save(this js.Value, args []js.Value) interface{} {
	session.Save()
	return nil
}

// saveDone reports the host's persistence outcome back to the session. An
// empty string means success.
func saveDone(this js.Value, args []js.Value) interface{} {
	var err error
	if len(args) > 0 && args[0].String() != "" {
		err = errors.New(args[0].String())
	}
	session.SaveDone(err)
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	session.Tick()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	out, err := canvas.DrawCommandsJSON(canvas.CompileDrawCommands(session.Drawing()))
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

func getDrawing(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(session.Drawing())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(map[string]interface{}{
		"tool":      string(session.Tool()),
		"state":     string(session.State()),
		"selection": session.Selected(),
		"canUndo":   session.CanUndo(),
		"canRedo":   session.CanRedo(),
	})
}

// drainEvents returns pending session events as JSON. Save requests carry
// the snapshot for the host to persist; text events carry the element and
// prompt position for the host UI.
func drainEvents(this js.Value, args []js.Value) interface{} {
	type wireEvent struct {
		Kind      string          `json:"kind"`
		ElementID string          `json:"elementId,omitempty"`
		Snapshot  json.RawMessage `json:"snapshot,omitempty"`
		Error     string          `json:"error,omitempty"`
		X         float64         `json:"x,omitempty"`
		Y         float64         `json:"y,omitempty"`
	}

	events := session.Events()
	out := make([]wireEvent, 0, len(events))
	for _, ev := range events {
		we := wireEvent{Kind: string(ev.Kind), ElementID: ev.ElementID}
		if ev.Snapshot != nil {
			if data, err := json.Marshal(ev.Snapshot); err == nil {
				we.Snapshot = data
			}
		}
		if ev.Err != nil {
			we.Error = ev.Err.Error()
		}
		if ev.Kind == canvas.EventTextPrompt {
			at := session.PendingTextAt()
			we.X, we.Y = at.X, at.Y
		}
		out = append(out, we)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}
