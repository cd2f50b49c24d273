package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeTimeout    = 10 * time.Second
	pingInterval    = 30 * time.Second
	maxMessageBytes = 64 * 1024
)

// Client is one websocket connection to an open drawing. Identity is
// fixed at upgrade time; whatever the peer put in a message envelope is
// overwritten before the room sees it.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	UserID    string
	DrawingID string
	ClientID  string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, drawingID, clientID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		UserID:    userID,
		DrawingID: drawingID,
		ClientID:  clientID,
	}
}

// ReadPump decodes inbound frames and hands them to the drawing's room.
// Frames that are not well-formed client commands are rejected at the
// edge so the room loop only ever sees known message types.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageBytes)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("websocket read", "drawing", c.DrawingID, "user", c.UserID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("undecodable frame", "drawing", c.DrawingID, "user", c.UserID, "error", err)
			c.SendError("invalid message")
			continue
		}
		if !clientSent(msg.Type) {
			slog.Warn("unexpected message type", "drawing", c.DrawingID, "type", msg.Type)
			c.SendError("unknown message type")
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.DrawingID = c.DrawingID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	pings := time.NewTicker(pingInterval)
	defer func() {
		pings.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// Hub closed the channel; the client left the room.
				c.conn.Close(websocket.StatusGoingAway, "room closed")
				return
			}
			if err := c.write(ctx, frame); err != nil {
				slog.Debug("websocket write", "drawing", c.DrawingID, "user", c.UserID, "error", err)
				return
			}

		case <-pings.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, frame)
}

// Send queues a message. A slow consumer loses frames rather than stall
// the room; every broadcast supersedes the previous one.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("send buffer full, dropping frame", "drawing", c.DrawingID, "user", c.UserID, "type", msg.Type)
	}
}

// SendError reports a per-client protocol error without involving the
// room.
func (c *Client) SendError(reason string) {
	payload, _ := json.Marshal(ErrorPayload{Error: reason})
	c.Send(&Message{Type: TypeError, DrawingID: c.DrawingID, Payload: payload})
}
