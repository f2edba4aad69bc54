package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client represents a single WebSocket connection for one user. A user
// may hold several clients at once (multi-device).
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// controlFrame is the only client-to-server message: channel
// subscription management while viewing a group.
type controlFrame struct {
	Action  string `json:"action"` // "join" or "leave"
	Channel string `json:"channel"`
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// UserID returns the owning user's id
func (c *Client) UserID() string {
	return c.userID
}

// enqueue queues raw bytes for delivery. Returns false when the buffer
// is full or the connection is already closed; the caller drops it.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads control frames from the WebSocket (join/leave plus
// pong/close handling)
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		c.handleControl(&frame)
	}
}

// handleControl applies a join/leave frame. Joining a group channel
// requires approved membership; everything else is ignored.
func (c *Client) handleControl(frame *controlFrame) {
	groupID, ok := ParseGroupChannel(frame.Channel)
	if !ok {
		return
	}

	switch frame.Action {
	case "join":
		if c.hub.membership != nil {
			approved, err := c.hub.membership.IsApprovedMember(c.userID, groupID)
			if err != nil || !approved {
				return
			}
		}
		c.hub.registry.Join(c.id, frame.Channel)
	case "leave":
		c.hub.registry.Leave(c.id, frame.Channel)
	}
}

// WritePump sends queued events to the WebSocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
