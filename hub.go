package folio

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/live"
)

const liveWriteTimeout = 5 * time.Second

// liveMessage is what browsers receive when a collection changed.
type liveMessage struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
}

// LiveHub fans layer changes out to connected browsers.
type LiveHub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan live.Change
}

// NewLiveHub creates a hub. Run must be started for messages to flow.
func NewLiveHub(log zerolog.Logger) *LiveHub {
	return &LiveHub{
		log:     log.With().Str("component", "hub").Logger(),
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan live.Change, 16),
	}
}

// Run delivers queued changes until ctx is done, then closes every client.
func (h *LiveHub) Run(ctx context.Context) {
	for {
		select {
		case change := <-h.ch:
			msg := liveMessage{Type: "change", Collection: change.Collection}
			for _, conn := range h.snapshot() {
				_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Debug().Err(err).Msg("drop live client")
					h.Remove(conn)
					_ = conn.Close()
				}
			}
		case <-ctx.Done():
			for _, conn := range h.snapshot() {
				h.Remove(conn)
				_ = conn.Close()
			}
			return
		}
	}
}

// Broadcast queues a change. It never blocks; changes are dropped when the
// queue is full.
func (h *LiveHub) Broadcast(change live.Change) {
	select {
	case h.ch <- change:
	default:
	}
}

// Add registers a connected client.
func (h *LiveHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

// Remove forgets a client. The caller closes the connection.
func (h *LiveHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Len reports the number of connected clients.
func (h *LiveHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *LiveHub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
}

// handleLive upgrades to a websocket and keeps it registered until the
// client goes away. Clients only listen; anything they send is discarded.
func (a *App) handleLive(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	a.hub.Add(conn)
	defer func() {
		a.hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}
