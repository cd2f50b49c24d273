package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/canvas"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
)

// tickInterval drives the session's debounced work (erase coalescing,
// long-press, auto-save) while a room is open.
const tickInterval = 50 * time.Millisecond

// saveTimeout bounds a single persistence round-trip.
const saveTimeout = 10 * time.Second

type inboundMessage struct {
	sender *Client
	msg    *Message
}

// Room owns one open drawing. The session is single-threaded; the room's
// run loop is the only goroutine that touches it. Clients feed parsed
// messages through inbound and saves complete through saveDone.
type Room struct {
	drawingID string
	hub       *Hub
	session   *canvas.Session
	store     canvas.Store

	clients map[string]*Client // clientID -> client, guarded by hub.mu

	inbound  chan inboundMessage
	saveDone chan error
	stop     chan struct{}

	// preview captured client-side, consumed by the next save
	pendingPreview []byte
}

func newRoom(hub *Hub, drawingID string, session *canvas.Session, store canvas.Store) *Room {
	return &Room{
		drawingID: drawingID,
		hub:       hub,
		session:   session,
		store:     store,
		clients:   make(map[string]*Client),
		inbound:   make(chan inboundMessage, 64),
		saveDone:  make(chan error, 1),
		stop:      make(chan struct{}),
	}
}

func (r *Room) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case in := <-r.inbound:
			r.apply(in.sender, in.msg)

		case <-ticker.C:
			r.session.Tick()

		case err := <-r.saveDone:
			r.session.SaveDone(err)
			if err == nil {
				r.broadcast(&Message{Type: TypeSaveOK, DrawingID: r.drawingID})
			}

		case <-r.stop:
			r.flush()
			return
		}

		r.dispatch()
	}
}

// flush persists the final scene synchronously before the room closes.
func (r *Room) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := r.store.Save(ctx, r.session.Snapshot(), r.pendingPreview); err != nil {
		slog.Error("final save failed", "drawing", r.drawingID, "error", err)
	}
}

func (r *Room) apply(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.TouchStart(geom.Point{X: p.X, Y: p.Y}, p.Pressure)

	case TypePointerMove:
		var p PointerPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.TouchMove(geom.Point{X: p.X, Y: p.Y}, p.Pressure)

	case TypePointerUp:
		var p PointerPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.TouchEnd(geom.Point{X: p.X, Y: p.Y})

	case TypePinchStart:
		var p PinchPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.PinchStart(geom.Point{X: p.X1, Y: p.Y1}, geom.Point{X: p.X2, Y: p.Y2})

	case TypePinchMove:
		var p PinchPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.PinchMove(geom.Point{X: p.X1, Y: p.Y1}, geom.Point{X: p.X2, Y: p.Y2})

	case TypePinchEnd:
		r.session.PinchEnd()

	case TypeToolSelect:
		var p ToolPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.SetTool(canvas.Tool(p.Tool))

	case TypeTextPlace:
		var p TextPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.PlaceText(p.Text)

	case TypeTextUpdate:
		var p TextPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.UpdateText(p.ID, p.Text)

	case TypeDelete:
		var p ElementPayload
		if !decode(sender, msg.Payload, &p) {
			return
		}
		r.session.DeleteElement(p.ID)

	case TypeUndo:
		r.session.Undo()

	case TypeRedo:
		r.session.Redo()

	case TypeClear:
		r.session.Clear()

	case TypeSave:
		var p SavePayload
		if len(msg.Payload) > 0 && !decode(sender, msg.Payload, &p) {
			return
		}
		if p.Preview != "" {
			preview, err := base64.StdEncoding.DecodeString(p.Preview)
			if err != nil {
				sender.SendError("invalid preview encoding")
				return
			}
			r.pendingPreview = preview
		}
		r.session.Save()

	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}

	r.broadcast(r.stateMessage())
}

// dispatch drains session events into broadcasts and save work.
func (r *Room) dispatch() {
	for _, ev := range r.session.Events() {
		switch ev.Kind {
		case canvas.EventSceneChanged:
			r.broadcast(r.sceneMessage())

		case canvas.EventSaveRequested:
			snapshot := ev.Snapshot
			preview := r.pendingPreview
			r.pendingPreview = nil
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
				defer cancel()
				r.saveDone <- r.store.Save(ctx, snapshot, preview)
			}()

		case canvas.EventSaveFailed:
			slog.Error("save failed", "drawing", r.drawingID, "error", ev.Err)
			payload, _ := json.Marshal(ErrorPayload{Error: ev.Err.Error()})
			r.broadcast(&Message{Type: TypeSaveFailed, DrawingID: r.drawingID, Payload: payload})

		case canvas.EventTextMenu:
			payload, _ := json.Marshal(TextEventPayload{ElementID: ev.ElementID})
			r.broadcast(&Message{Type: TypeTextMenu, DrawingID: r.drawingID, Payload: payload})

		case canvas.EventTextEdit:
			payload, _ := json.Marshal(TextEventPayload{ElementID: ev.ElementID})
			r.broadcast(&Message{Type: TypeTextEdit, DrawingID: r.drawingID, Payload: payload})

		case canvas.EventTextPrompt:
			at := r.session.PendingTextAt()
			payload, _ := json.Marshal(TextEventPayload{X: at.X, Y: at.Y})
			r.broadcast(&Message{Type: TypeTextPrompt, DrawingID: r.drawingID, Payload: payload})
		}
	}
}

func (r *Room) sceneMessage() *Message {
	commands, err := json.Marshal(canvas.CompileDrawCommands(r.session.Drawing()))
	if err != nil {
		slog.Error("marshal draw commands", "drawing", r.drawingID, "error", err)
		commands = []byte("[]")
	}
	payload, _ := json.Marshal(SceneUpdatePayload{
		Commands: commands,
		CanUndo:  r.session.CanUndo(),
		CanRedo:  r.session.CanRedo(),
	})
	return &Message{Type: TypeSceneUpdate, DrawingID: r.drawingID, Payload: payload}
}

func (r *Room) stateMessage() *Message {
	payload, _ := json.Marshal(SessionStatePayload{
		Tool:      string(r.session.Tool()),
		State:     string(r.session.State()),
		Selection: r.session.Selected(),
	})
	return &Message{Type: TypeSessionState, DrawingID: r.drawingID, Payload: payload}
}

func (r *Room) broadcast(msg *Message) {
	r.hub.broadcastToRoom(r.drawingID, msg, "")
}

func decode(sender *Client, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("invalid payload", "error", err, "user", sender.UserID)
		sender.SendError("invalid payload")
		return false
	}
	return true
}
