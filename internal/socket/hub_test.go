package socket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID string) *Client {
	return &Client{
		ID:     "client-" + userID,
		UserID: userID,
		Hub:    hub,
		Send:   make(chan []byte, 16),
		Rooms:  make(map[string]bool),
	}
}

// waitFor reads from the client until a message of the wanted type arrives.
func waitFor(t *testing.T, c *Client, want MessageType) Message {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			if msg.Type == want {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestBroadcaster_ProjectRoomDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.register <- alice
	hub.register <- bob
	hub.JoinRoom(alice, ProjectRoom("p1"))
	hub.JoinRoom(bob, ProjectRoom("p1"))

	NewBroadcaster(hub).BroadcastVDCRUpdated("p1", map[string]interface{}{"id": "v1"}, "pending", "approved", "alice")

	msg := waitFor(t, bob, MessageVDCRUpdated)
	assert.Equal(t, "approved", msg.Payload["newStatus"])
	assert.Equal(t, "p1", msg.Payload["projectId"])
}

func TestHub_CanJoin(t *testing.T) {
	hub := NewHub()
	assert.True(t, hub.CanJoin("u1", UserRoom("u1")))
	assert.False(t, hub.CanJoin("u1", UserRoom("u2")))
	assert.False(t, hub.CanJoin("u1", ProjectRoom("p1")))

	hub.SetAuthorizer(func(userID, room string) bool {
		return userID == "u1" && room == ProjectRoom("p1")
	})
	assert.True(t, hub.CanJoin("u1", ProjectRoom("p1")))
	assert.False(t, hub.CanJoin("u2", ProjectRoom("p1")))
}

func TestBroadcaster_NilIsNoop(t *testing.T) {
	var b *Broadcaster
	assert.NotPanics(t, func() {
		b.BroadcastEquipmentUpdated("p1", "e1", []string{"status"}, "u1")
		b.SendNotification("u1", map[string]interface{}{})
	})
}

func TestHub_SendAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub()
	hub.Shutdown()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.SendToUser("u1", MessageNotification, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SendToUser blocked after shutdown")
	}
}

func TestHub_ProjectPresence(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	bobTablet := newTestClient(hub, "bob")
	for _, c := range []*Client{alice, bob, bobTablet} {
		hub.register <- c
	}
	room := ProjectRoom("p1")

	hub.JoinRoom(alice, room)
	hub.JoinRoom(bob, room)
	msg := waitFor(t, alice, MessageViewerJoined)
	assert.Equal(t, "bob", msg.Payload["userId"])
	assert.Equal(t, []string{"alice", "bob"}, hub.ProjectViewers("p1"))

	// A second connection for the same user is not a new viewer.
	hub.JoinRoom(bobTablet, room)
	hub.LeaveRoom(bob, room)
	assert.Equal(t, []string{"alice", "bob"}, hub.ProjectViewers("p1"))

	hub.LeaveRoom(bobTablet, room)
	msg = waitFor(t, alice, MessageViewerLeft)
	assert.Equal(t, "bob", msg.Payload["userId"])
	assert.Equal(t, []string{"alice"}, hub.ProjectViewers("p1"))
}

func TestHub_CanJoinRejectsUnknownRooms(t *testing.T) {
	hub := NewHub()
	hub.SetAuthorizer(func(string, string) bool { return true })

	assert.False(t, hub.CanJoin("u1", "global"))
	assert.False(t, hub.CanJoin("u1", ProjectRoom("")))
	assert.True(t, hub.CanJoin("u1", ProjectRoom("p1")))
}
