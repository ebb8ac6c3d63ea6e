package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func stubGate(accountID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", accountID)
		return c.Next()
	}
}

func streamListener(t *testing.T, hub *Hub, accountID string) (string, func()) {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub, stubGate(accountID))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	go func() {
		_ = app.Listener(ln)
	}()
	return "ws://" + ln.Addr().String() + "/stream/ws", func() {
		_ = app.Shutdown()
		ln.Close()
	}
}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil), stubGate("acct-1"))

	req := httptest.NewRequest(http.MethodGet, "/stream/ws", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func TestStreamHandlersDeliversNotification(t *testing.T) {
	hub := NewHub(nil)
	wsURL, stop := streamListener(t, hub, "acct-1")
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Give the read loop a moment to register the client.
	time.Sleep(20 * time.Millisecond)
	hub.NotifyEvent(Event{Type: "like", From: "acct-2", To: "acct-1"})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"type":"like","from":"acct-2","to":"acct-1"}` {
		t.Fatalf("unexpected message %s", msg)
	}
}

func TestStreamHandlersWriteAfterClose(t *testing.T) {
	hub := NewHub(nil)
	wsURL, stop := streamListener(t, hub, "acct-2")
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	conn.Close()

	hub.Notify("acct-2", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}

func TestStreamHandlersCloseMessage(t *testing.T) {
	hub := NewHub(nil)
	wsURL, stop := streamListener(t, hub, "acct-3")
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	hub.Notify("acct-3", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
