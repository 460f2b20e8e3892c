package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }

// waitRegistered blocks until the hub holds n clients for the session;
// registration runs on the hub goroutine after the channel send returns.
func waitRegistered(t *testing.T, hub *Hub, sessionID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < 200; i++ {
		hub.mu.RLock()
		got := len(hub.clients[sessionID])
		hub.mu.RUnlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client never registered for session %s", sessionID)
}

func TestSendDropsSlowClientOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	sessionID := uuid.New()
	client := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	hub.register <- client
	waitRegistered(t, hub, sessionID, 1)

	// First event fills the buffer; the second hits a full buffer and must
	// hand the client to the unregister path without closing Send itself.
	hub.Send(sessionID, Event{Type: "pipeline_started"})
	hub.Send(sessionID, Event{Type: "dataset_ready"})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-client.Send:
			if !ok {
				// Closed exactly once by the unregister handler; a second
				// close anywhere would have panicked this test.
				hub.mu.RLock()
				remaining := len(hub.clients[sessionID])
				hub.mu.RUnlock()
				if remaining != 0 {
					t.Fatalf("dropped client still registered, %d clients remain", remaining)
				}
				return
			}
		case <-deadline:
			t.Fatal("send channel never closed after the client was dropped")
		}
	}
}

func TestSendReachesAllSessionClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	sessionID := uuid.New()
	first := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}
	second := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}
	other := &Client{Hub: hub, SessionID: uuid.New(), Send: make(chan []byte, 4)}
	hub.register <- first
	hub.register <- second
	hub.register <- other
	waitRegistered(t, hub, sessionID, 2)
	waitRegistered(t, hub, other.SessionID, 1)

	hub.Send(sessionID, Event{Type: "pipeline_started"})

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.Send:
			if len(msg) == 0 {
				t.Error("empty payload delivered")
			}
		case <-time.After(time.Second):
			t.Fatal("session client never received the event")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to a client watching another session")
	default:
	}
}
