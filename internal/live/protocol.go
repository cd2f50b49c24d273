package live

import "encoding/json"

// Message is the websocket envelope in both directions.
type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Client → server message types.
const (
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypePinchStart  = "pinch.start"
	TypePinchMove   = "pinch.move"
	TypePinchEnd    = "pinch.end"
	TypeToolSelect  = "tool.select"
	TypeTextPlace   = "text.place"
	TypeTextUpdate  = "text.update"
	TypeDelete      = "element.delete"
	TypeUndo        = "history.undo"
	TypeRedo        = "history.redo"
	TypeClear       = "canvas.clear"
	TypeSave        = "canvas.save"
)

// clientSent reports whether a message type may originate from a client.
func clientSent(t string) bool {
	switch t {
	case TypePointerDown, TypePointerMove, TypePointerUp,
		TypePinchStart, TypePinchMove, TypePinchEnd,
		TypeToolSelect, TypeTextPlace, TypeTextUpdate,
		TypeDelete, TypeUndo, TypeRedo, TypeClear, TypeSave:
		return true
	}
	return false
}

// Server → client message types.
const (
	TypeWelcome      = "welcome"
	TypeSceneUpdate  = "scene.update"
	TypeSessionState = "session.state"
	TypeTextMenu     = "text.menu"
	TypeTextEdit     = "text.edit"
	TypeTextPrompt   = "text.prompt"
	TypeSaveOK       = "save.ok"
	TypeSaveFailed   = "save.failed"
	TypeError        = "error"
)

// PointerPayload carries a single-touch sample in screen coordinates.
type PointerPayload struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure,omitempty"`
}

// PinchPayload carries both touch points of a pinch gesture.
type PinchPayload struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type TextPayload struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type ElementPayload struct {
	ID string `json:"id"`
}

// SavePayload optionally carries a base64 PNG preview captured client-side.
type SavePayload struct {
	Preview string `json:"preview,omitempty"`
}

// SceneUpdatePayload is the render contract pushed after every mutation.
type SceneUpdatePayload struct {
	Commands json.RawMessage `json:"commands"`
	CanUndo  bool            `json:"canUndo"`
	CanRedo  bool            `json:"canRedo"`
}

// SessionStatePayload mirrors the session's tool and interaction state.
type SessionStatePayload struct {
	Tool      string `json:"tool"`
	State     string `json:"state"`
	Selection string `json:"selection,omitempty"`
}

type TextEventPayload struct {
	ElementID string  `json:"elementId,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
