package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

const (
	EventStateUpdate = "state_update"
	EventEliminated  = "eliminated"
	EventVictory     = "victory"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// presentation layers are served from any local origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one frame pushed to the clients of a session
type Message struct {
	SessionID string              `json:"session_id"`
	Table     *service.TableState `json:"table,omitempty"`
	Event     string              `json:"event,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type countQuery struct {
	sessionID string
	reply     chan int
}

// Hub maintains the set of active clients per session. The session map is
// owned by the Run goroutine.
type Hub struct {
	sessions   map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	count      chan countQuery
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countQuery),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case q := <-h.count:
			q.reply <- len(h.sessions[q.sessionID])
		}
	}
}

// Clients returns how many clients watch a session
func (h *Hub) Clients(sessionID string) int {
	reply := make(chan int, 1)
	h.count <- countQuery{sessionID: sessionID, reply: reply}
	return <-reply
}

// ServeWS upgrades the request and attaches the connection to a session
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a table snapshot to all clients of a session
func (h *Hub) BroadcastToSession(sessionID string, table *service.TableState) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		Table:     table,
		Event:     EventStateUpdate,
	}
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}
}

// Publish pushes the outcome of a turn operation: eliminations and the
// victory as events, then the new table
func (h *Hub) Publish(res *service.TurnResult) {
	if res == nil {
		return
	}
	for _, ev := range res.Events {
		switch engine.EventType(ev.Type) {
		case engine.EventEliminated:
			h.BroadcastEvent(res.SessionID, EventEliminated, ev)
		case engine.EventVictory:
			h.BroadcastEvent(res.SessionID, EventVictory, ev)
		}
	}
	if res.Table != nil {
		h.BroadcastToSession(res.SessionID, res.Table)
	}
}

func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[client.sessionID]))
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.Printf("Client unregistered from session %s (remaining clients: %d)",
		client.sessionID, len(clients))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			// slow client
			h.unregisterClient(client)
		}
	}
}

// readPump keeps the connection alive; clients act through the REST API
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump sends queued frames, one JSON message per frame
func (c *Client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
