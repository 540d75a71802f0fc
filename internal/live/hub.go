// Package live pushes notice and menu changes to open browser tabs over a
// websocket.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/nav"
)

const writeWait = 10 * time.Second

// Message types.
const (
	TypeNotice = "notice"
	TypeNav    = "nav"
)

// Message is the outgoing websocket frame.
type Message struct {
	Type   string          `json:"type"`
	Notice *content.Notice `json:"notice,omitempty"`
	Nav    []nav.Item      `json:"nav,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sendBuffer is how many messages may queue for one browser before it is
// dropped as too slow.
const sendBuffer = 16

// client is one connected browser. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected browsers and broadcasts to all of them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	closed   bool
	snapshot func() []Message
}

// NewHub creates a hub. snapshot, when set, produces the messages sent to a
// browser right after it connects.
func NewHub(snapshot func() []Message) *Hub {
	return &Hub{clients: make(map[*client]struct{}), snapshot: snapshot}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the browser goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("live: websocket upgrade", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.snapshot != nil {
		for _, m := range h.snapshot() {
			if payload, ok := encode(m); ok {
				h.enqueueLocked(c, payload)
			}
		}
	}
	h.mu.Unlock()

	go c.writeLoop()

	defer h.remove(c)
	// Browsers never send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("live: websocket read", "error", err)
			}
			return
		}
	}
}

// writeLoop drains the send queue. When the queue is closed it says goodbye
// and closes the connection.
func (c *client) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Debug("live: websocket write", "error", err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(time.Second))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// dropLocked unregisters c and closes its queue, which ends its writer.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// enqueueLocked queues payload for c without waiting. A browser whose queue
// is full is dropped.
func (h *Hub) enqueueLocked(c *client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		slog.Debug("live: dropping slow browser")
		h.dropLocked(c)
	}
}

func encode(m Message) ([]byte, bool) {
	payload, err := json.Marshal(m)
	if err != nil {
		slog.Error("live: marshal message", "error", err)
		return nil, false
	}
	return payload, true
}

// Broadcast queues m for every connected browser. It never waits on a
// browser.
func (h *Hub) Broadcast(m Message) {
	payload, ok := encode(m)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueueLocked(c, payload)
	}
}

// NoticeChanged broadcasts a new ticker notice.
func (h *Hub) NoticeChanged(n *content.Notice) {
	h.Broadcast(Message{Type: TypeNotice, Notice: n})
}

// NavChanged broadcasts a rebuilt menu tree.
func (h *Hub) NavChanged(tree []nav.Item) {
	h.Broadcast(Message{Type: TypeNav, Nav: tree})
}

// Count returns the number of connected browsers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every browser and refuses new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}
