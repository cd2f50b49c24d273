package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/canvas"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
)

// StoreFactory binds a persistence boundary scoped to one user. The first
// client to open a drawing owns the room's store.
type StoreFactory func(userID string) canvas.Store

const loadTimeout = 5 * time.Second

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // drawingID -> room
	stores     StoreFactory
	cfg        canvas.Config
	register   chan *Client
	unregister chan *Client
}

func NewHub(stores StoreFactory, cfg canvas.Config) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		stores:     stores,
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.DrawingID]
	h.mu.RUnlock()

	if !ok {
		opened, err := h.openRoom(client)
		if err != nil {
			slog.Error("open drawing", "drawing", client.DrawingID, "user", client.UserID, "error", err)
			client.SendError("could not open drawing")
			return
		}
		room = opened
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// New clients get the current scene immediately.
	client.Send(&Message{Type: TypeWelcome, DrawingID: client.DrawingID})
	client.Send(room.sceneMessage())
	client.Send(room.stateMessage())

	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
}

// openRoom loads the drawing and starts the room loop. A missing or
// unreadable canvas state opens as a blank canvas rather than failing.
func (h *Hub) openRoom(client *Client) (*Room, error) {
	store := h.stores(client.UserID)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	d, err := store.Load(ctx, client.DrawingID)
	if err != nil {
		if !errors.Is(err, canvas.ErrNotFound) {
			return nil, err
		}
		d = scene.NewDrawing(client.DrawingID, "Untitled", 0, 0, h.cfg.BackgroundColor)
	}

	session := canvas.NewSession(d, h.cfg)
	room := newRoom(h, client.DrawingID, session, store)

	h.mu.Lock()
	if existing, ok := h.rooms[client.DrawingID]; ok {
		// Another client opened the room while we were loading.
		h.mu.Unlock()
		return existing, nil
	}
	h.rooms[client.DrawingID] = room
	h.mu.Unlock()

	go room.run()
	return room, nil
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DrawingID)
	}
	h.mu.Unlock()

	if empty {
		close(room.stop)
	}

	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

// Stop closes every open room, flushing each scene to storage. Used on
// shutdown.
func (h *Hub) Stop() {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, room := range rooms {
		close(room.stop)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.DrawingID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case room.inbound <- inboundMessage{sender: sender, msg: msg}:
	default:
		slog.Warn("room inbound full, dropping message", "drawing", sender.DrawingID, "type", msg.Type)
	}
}

func (h *Hub) broadcastToRoom(drawingID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[drawingID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
