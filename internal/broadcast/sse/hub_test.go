package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "game:state",
			data:      `{"playerId":"p1"}`,
			expected:  "event: game:state\ndata: {\"playerId\":\"p1\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "game:finished",
			data:      "line1\nline2",
			expected:  "event: game:finished\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("session:sess-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("game:state", `{"state":"ready"}`)

	select {
	case msg := <-client.send:
		expected := "event: game:state\ndata: {\"state\":\"ready\"}\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("session:sess-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("session:sess-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := NewClient(hub, "player1")
	client2 := NewClient(hub, "player2")
	client3 := NewClient(hub, "player3")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.BroadcastEvent("player:joined", "data")

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			expected := "event: player:joined\ndata: data\n\n"
			if string(msg) != expected {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), expected)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("session:a")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	// Getting again should return the same hub
	hub2 := manager.GetOrCreateHub("session:a")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same room")
	}

	// Different room should return different hub
	hub3 := manager.GetOrCreateHub("session:b")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different room")
	}

	manager.RemoveHub("session:a")
	manager.RemoveHub("session:b")
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	if hub := manager.GetHub("session:missing"); hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("session:a")
	got := manager.GetHub("session:a")
	if got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}

	manager.RemoveHub("session:a")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	_ = manager.GetOrCreateHub("session:empty")

	active := manager.GetOrCreateHub("session:active")
	client := NewClient(active, "player1")
	active.Register(client)
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()

	if manager.GetHub("session:empty") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("session:active") == nil {
		t.Error("Active hub was removed during cleanup")
	}

	manager.RemoveHub("session:active")
}

func TestBroadcaster_DeliversEventToSessionRoom(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	b := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub(broadcast.SessionRoom("sess-1"))
	client := NewClient(hub, "player1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	event := model.Event{
		Type:      model.EventMatchFound,
		SessionID: "sess-1",
		PlayerID:  "player1",
		Payload:   model.MatchFoundPayload{SessionID: "sess-1", OpponentID: "player2"},
	}
	b.ToSession("sess-1", event)

	select {
	case msg := <-client.send:
		if want := "event: matchmaking:found\n"; len(msg) < len(want) || string(msg[:len(want)]) != want {
			t.Errorf("message does not start with event name: %q", string(msg))
		}
		// Payload survives the round trip as JSON
		payload := string(msg)
		var decoded model.Event
		start := len("event: matchmaking:found\ndata: ")
		end := len(payload) - 2
		if err := json.Unmarshal([]byte(payload[start:end]), &decoded); err != nil {
			t.Fatalf("event data is not valid JSON: %v", err)
		}
		if decoded.SessionID != "sess-1" {
			t.Errorf("decoded session = %q, want sess-1", decoded.SessionID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive event")
	}

	manager.RemoveHub(broadcast.SessionRoom("sess-1"))
}

func TestBroadcaster_NoSubscribersIsNoOp(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	b := NewBroadcaster(manager, testutil.NopLogger())

	// Must not panic or create a hub
	b.ToPlayer("player1", model.Event{Type: model.EventMatchQueued})

	if manager.GetHub(broadcast.PlayerRoom("player1")) != nil {
		t.Error("emit created a hub with no subscribers")
	}
}
