package folio

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/live"
)

func waitClients(t *testing.T, h *LiveHub, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for h.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d live clients, have %d", n, h.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveSocketReceivesChanges(t *testing.T) {
	a := setupTestApp(t)
	srv := httptest.NewServer(a.Echo)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitClients(t, a.hub, 1)

	a.Layer.AddContact(context.Background(), content.Contact{Platform: "Email", Username: "me@example.com"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "change" && msg.Collection == content.CollectionContacts {
			break
		}
	}

	conn.Close()
	waitClients(t, a.hub, 0)
}

func TestBroadcastDoesNotBlock(t *testing.T) {
	h := NewLiveHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Broadcast(live.Change{Collection: content.CollectionProjects})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked without a running hub")
	}
}
