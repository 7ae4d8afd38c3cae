package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"BingoPulse/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsEvents(t *testing.T) {
	h := NewHub(nil, 8)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	if msg := readMessage(t, conn); msg.Type != "welcome" {
		t.Fatalf("expected welcome, got %q", msg.Type)
	}
	waitClients(t, h, 1)

	if err := h.Notify(context.Background(), models.Event{Kind: models.EventSnapshot, Generation: 3}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "event" {
		t.Fatalf("expected event, got %q", msg.Type)
	}
	payload := msg.Payload.(map[string]interface{})
	if payload["kind"] != "snapshot" || payload["generation"].(float64) != 3 {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestHubAnswersPing(t *testing.T) {
	h := NewHub(nil, 8)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	readMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != "pong" {
		t.Fatalf("expected pong, got %q", msg.Type)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	h := NewHub(nil, 8)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	readMessage(t, conn)
	waitClients(t, h, 1)

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.Clients() != 0 {
		t.Fatalf("clients left after close: %d", h.Clients())
	}
	if err := h.Notify(context.Background(), models.Event{Kind: models.EventBets}); err != ErrHubClosed {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}
