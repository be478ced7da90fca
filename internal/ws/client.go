package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/MarcusAlienx/casanala/internal/access"
	"github.com/MarcusAlienx/casanala/internal/auth"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (we validate via JWT)
	},
}

// roomPages maps a subscription room to the guarded page whose roles may join it.
var roomPages = map[string]access.Page{
	"kitchen":  access.PageKitchen,
	"delivery": access.PageDelivery,
	"pickup":   access.PagePickup,
	RoomAll:    access.PageOrders,
}

// SessionResolver resolves the role of a websocket subscriber. Satisfied by *access.Resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, userID, email string) *access.Session
}

// Client represents a single WebSocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	room string
	send chan []byte
}

// ReadPump pumps messages from the WebSocket connection to the hub.
// Staff screens never send anything; the loop only detects disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.leave()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read", zap.String("room", c.room), zap.Error(err))
			}
			break
		}
	}
}

// join registers c with the hub. It reports false when the hub has stopped.
func (c *Client) join() bool {
	select {
	case c.hub.register <- c:
		return true
	case <-c.hub.done:
		return false
	}
}

// leave unregisters c; after shutdown the hub has already dropped it.
func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// authorize checks the token and the caller's role for room. It returns the
// HTTP status to reject with, or 0 when the subscription is allowed.
func authorize(r *http.Request, jwtSecret string, resolver SessionResolver, room string) (int, string) {
	page, ok := roomPages[room]
	if !ok {
		return http.StatusBadRequest, "unknown view"
	}

	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		return http.StatusUnauthorized, "missing token"
	}
	claims, err := auth.ValidateToken(jwtSecret, tokenStr)
	if err != nil {
		return http.StatusUnauthorized, "invalid token"
	}

	s := resolver.Resolve(r.Context(), claims.UserID, claims.Email)
	if access.Decide(false, s, access.RolesFor(page)).Outcome != access.OutcomeGranted {
		return http.StatusForbidden, "view access denied"
	}
	return 0, ""
}

// ServeWS handles WebSocket requests from staff screens.
// Endpoint: WS /ws/orders?view=kitchen|delivery|pickup|all&token=JWT
func ServeWS(hub *Hub, jwtSecret string, resolver SessionResolver, w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("view")
	if room == "" {
		room = RoomAll
	}

	if status, msg := authorize(r, jwtSecret, resolver, room); status != 0 {
		http.Error(w, msg, status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		room: room,
		send: make(chan []byte, 256),
	}
	if !client.join() {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
