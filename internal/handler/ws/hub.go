package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"BingoPulse/internal/domain/models"
	domrepo "BingoPulse/internal/domain/repository"
	xlogger "BingoPulse/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ErrHubClosed is returned by Notify after Close.
var ErrHubClosed = errors.New("ws: hub closed")

// ServerMessage is the envelope for every frame the hub writes.
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type clientMessage struct {
	Type string `json:"type"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) trySend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Hub pushes store change events to connected dashboard clients. Clients
// that cannot keep up with their send buffer are disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *xlogger.Logger
	bufSize  int

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewHub(logger *xlogger.Logger, sendBuffer int) *Hub {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger.Named("ws"),
		bufSize: sendBuffer,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWS)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("upgrade failed", xlogger.Error(err))
		return nil
	}
	cl := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.bufSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[cl] = struct{}{}
	total := len(h.clients)
	h.wg.Add(1)
	h.mu.Unlock()
	h.logger.Info("client connected", xlogger.String("client", cl.id), xlogger.Int("total", total))

	hello, _ := json.Marshal(ServerMessage{Type: "welcome", Payload: map[string]string{"client_id": cl.id}, Timestamp: time.Now()})
	cl.trySend(hello)

	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

func (h *Hub) readPump(cl *client) {
	defer h.drop(cl)
	cl.conn.SetReadLimit(4096)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read error", xlogger.String("client", cl.id), xlogger.Error(err))
			}
			return
		}
		var msg clientMessage
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, _ := json.Marshal(ServerMessage{Type: "pong", Timestamp: time.Now()})
			cl.trySend(pong)
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
		h.wg.Done()
	}()
	for {
		select {
		case b, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.drop(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(cl)
				return
			}
		}
	}
}

// drop unregisters a client and closes its send channel once.
func (h *Hub) drop(cl *client) {
	cl.mu.Lock()
	if cl.closed {
		cl.mu.Unlock()
		return
	}
	cl.closed = true
	close(cl.send)
	cl.mu.Unlock()

	h.mu.Lock()
	delete(h.clients, cl)
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client disconnected", xlogger.String("client", cl.id), xlogger.Int("total", total))
}

// Notify broadcasts ev to every client without blocking.
func (h *Hub) Notify(_ context.Context, ev models.Event) error {
	b, err := json.Marshal(ServerMessage{Type: "event", Payload: ev, Timestamp: time.Now()})
	if err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(b) {
			h.logger.Warn("client too slow, disconnecting", xlogger.String("client", c.id))
			h.drop(c)
		}
	}
	return nil
}

// Close disconnects all clients and waits for their writers to exit.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
	h.wg.Wait()
	return nil
}

var _ domrepo.Notifier = (*Hub)(nil)
