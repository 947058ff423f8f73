package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// message is the wire envelope: {"type": "frame|log|stats", "data": ...}.
type message struct {
	Type models.EventKind `json:"type"`
	Data interface{}      `json:"data"`
}

// Hub broadcasts presenter events to websocket clients. Slow clients drop
// messages instead of holding up the dispatcher.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  map[models.EventKind][]byte
}

var _ domrepo.Presenter = (*Hub)(nil)

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin:       func(r *http.Request) bool { return true },
			EnableCompression: true,
		},
		clients: make(map[*client]struct{}),
		latest:  make(map[models.EventKind][]byte),
	}
}

// Handle encodes ev once and fans it out to every client.
func (h *Hub) Handle(ev models.Event) {
	b, err := encode(ev)
	if err != nil {
		h.log.Warn("ws encode failed", logger.String("kind", string(ev.Kind)), logger.Error(err))
		return
	}

	h.mu.Lock()
	if ev.Kind != models.EventLog {
		h.latest[ev.Kind] = b
	}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
		}
	}
}

func encode(ev models.Event) ([]byte, error) {
	m := message{Type: ev.Kind}
	switch ev.Kind {
	case models.EventFrame:
		m.Data = ev.Frame
	case models.EventLog:
		m.Data = ev.Log
	case models.EventStats:
		m.Data = ev.Stats
	}
	return json.Marshal(m)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", logger.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), hub: h}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	// Replay the last frame and stats so new clients can draw immediately.
	for _, kind := range []models.EventKind{models.EventStats, models.EventFrame} {
		if b, ok := h.latest[kind]; ok {
			c.send <- b
		}
	}
	h.mu.Unlock()

	h.log.Debug("ws client connected", logger.Int("clients", count))
	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; clients do not send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
		c.hub.log.Debug("ws client disconnected")
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
