package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/pkg/logger"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return m
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.Handle(models.NewStatsEvent(models.Stats{TotalSignals: 3, EndpointName: "Main"}))

	conn := dial(t, srv.URL)
	defer conn.Close()

	// Stats are replayed on connect.
	m := readMessage(t, conn)
	if string(m["type"]) != `"stats"` || !strings.Contains(string(m["data"]), `"total_signals":3`) {
		t.Fatalf("unexpected replay %v", m)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Handle(models.NewLogEvent(models.LogBuy, "BUY BTCUSDT"))
	m = readMessage(t, conn)
	if string(m["type"]) != `"log"` || !strings.Contains(string(m["data"]), "BUY BTCUSDT") {
		t.Fatalf("unexpected log message %v", m)
	}
}

func TestHubRemovesClosedClients(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("closed client not removed")
	}
}
