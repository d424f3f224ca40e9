// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Notification messages
	MessageNotification      MessageType = "notification"
	MessageNotificationRead  MessageType = "notification_read"
	MessageNotificationCount MessageType = "notification_count"

	// Equipment messages
	MessageEquipmentCreated MessageType = "equipment_created"
	MessageEquipmentUpdated MessageType = "equipment_updated"
	MessageEquipmentDeleted MessageType = "equipment_deleted"

	// VDCR messages
	MessageVDCRCreated MessageType = "vdcr_created"
	MessageVDCRUpdated MessageType = "vdcr_updated"
	MessageVDCRDeleted MessageType = "vdcr_deleted"

	// Project messages
	MessageProjectUpdated MessageType = "project_updated"
	MessageProjectDeleted MessageType = "project_deleted"

	// Team messages
	MessageMemberAdded   MessageType = "member_added"
	MessageMemberUpdated MessageType = "member_updated"
	MessageMemberRemoved MessageType = "member_removed"

	// Who currently has a project dashboard open
	MessageViewerJoined MessageType = "viewer_joined"
	MessageViewerLeft   MessageType = "viewer_left"
	MessageViewers      MessageType = "viewers"

	// System messages
	MessagePing  MessageType = "ping"
	MessagePong  MessageType = "pong"
	MessageAck   MessageType = "ack"
	MessageError MessageType = "error"
)

const (
	projectRoomPrefix = "project:"
	userRoomPrefix    = "user:"
	hubPingInterval   = 30 * time.Second
)

// RoomAuthorizer decides whether a user may subscribe to a room.
type RoomAuthorizer func(userID, room string) bool

// ProjectRoom is the room every member of a project joins.
func ProjectRoom(projectID string) string {
	return projectRoomPrefix + projectID
}

// UserRoom is a user's personal room.
func UserRoom(userID string) string {
	return userRoomPrefix + userID
}

// projectOf returns the project ID of a project room.
func projectOf(room string) (string, bool) {
	id, ok := strings.CutPrefix(room, projectRoomPrefix)
	return id, ok && id != ""
}

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client is one open dashboard connection. A user may hold several.
type Client struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	lastPing time.Time
}

// Hub routes dashboard events to the connections subscribed to a project or user room.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string]map[*Client]bool
	roomClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	outbox     chan *envelope

	authorize RoomAuthorizer
	done      chan struct{}
	stopOnce  sync.Once

	mu sync.RWMutex
}

// envelope is a serialized message on its way to a room or a user.
type envelope struct {
	room    string
	userID  string
	exclude string
	data    []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string]map[*Client]bool),
		roomClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		outbox:      make(chan *envelope, 512),
		done:        make(chan struct{}),
	}
}

// SetAuthorizer installs the check used when clients ask to join a room.
// Without one, clients may only join their own user room.
func (h *Hub) SetAuthorizer(fn RoomAuthorizer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.authorize = fn
}

// CanJoin reports whether userID may subscribe to room.
func (h *Hub) CanJoin(userID, room string) bool {
	if room == UserRoom(userID) {
		return true
	}
	if _, ok := projectOf(room); !ok {
		return false
	}
	h.mu.RLock()
	fn := h.authorize
	h.mu.RUnlock()
	return fn != nil && fn(userID, room)
}

// Shutdown stops Run. Messages sent afterwards are dropped.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(hubPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.outbox:
			h.deliver(env)

		case <-pingTicker.C:
			h.pingClients()

		case <-h.done:
			log.Println("[Hub] WebSocket hub stopped")
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	log.Printf("[Hub] ✅ Client registered: user=%s, id=%s, total_clients=%d",
		client.UserID, client.ID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	if conns, ok := h.userClients[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	var left []string
	client.mu.Lock()
	for room := range client.Rooms {
		if h.removeFromRoom(client, room) {
			left = append(left, room)
		}
	}
	client.mu.Unlock()

	close(client.Send)
	log.Printf("[Hub] ❌ Client disconnected: user=%s, id=%s, total_clients=%d",
		client.UserID, client.ID, len(h.clients))
	h.mu.Unlock()

	// Run owns the outbox, so announcements must not block it.
	for _, room := range left {
		go h.announcePresence(room, client.UserID, MessageViewerLeft)
	}
}

// removeFromRoom drops client from room and reports whether that was the user's
// last connection in a project room. Callers hold h.mu.
func (h *Hub) removeFromRoom(client *Client, room string) bool {
	conns, ok := h.roomClients[room]
	if !ok {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.roomClients, room)
	}
	if _, isProject := projectOf(room); !isProject {
		return false
	}
	for other := range conns {
		if other.UserID == client.UserID {
			return false
		}
	}
	return true
}

func (h *Hub) deliver(env *envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var targets map[*Client]bool
	if env.userID != "" {
		targets = h.userClients[env.userID]
	} else {
		targets = h.roomClients[env.room]
	}

	sent := 0
	for client := range targets {
		if env.exclude != "" && client.UserID == env.exclude {
			continue
		}
		select {
		case client.Send <- env.data:
			sent++
		default:
			go h.drop(client)
		}
	}
	if env.userID != "" {
		log.Printf("[Hub] Direct message to user %s: sent to %d clients", env.userID, sent)
	} else {
		log.Printf("[Hub] Broadcast to room %s: sent to %d clients", env.room, sent)
	}
}

// drop unregisters a client whose buffer is full.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) pingClients() {
	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			go h.drop(client)
		}
	}
}

// ============================================
// Room Management
// ============================================

// JoinRoom adds a client to a room. Joining a project room announces the user
// to the other viewers of that project the first time one of their connections joins.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	firstForUser := true
	for other := range h.roomClients[room] {
		if other.UserID == client.UserID {
			firstForUser = false
			break
		}
	}
	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true
	h.mu.Unlock()

	log.Printf("[Hub] 👥 Client joined room: user=%s, room=%s", client.UserID, room)

	if _, isProject := projectOf(room); isProject && firstForUser {
		h.announcePresence(room, client.UserID, MessageViewerJoined)
	}
}

// LeaveRoom removes a client from a room
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()
	last := h.removeFromRoom(client, room)
	h.mu.Unlock()

	log.Printf("[Hub] 👋 Client left room: user=%s, room=%s", client.UserID, room)

	if last {
		h.announcePresence(room, client.UserID, MessageViewerLeft)
	}
}

func (h *Hub) announcePresence(room, userID string, msgType MessageType) {
	projectID, _ := projectOf(room)
	h.SendToRoom(room, msgType, map[string]interface{}{
		"projectId": projectID,
		"userId":    userID,
		"viewers":   h.ProjectViewers(projectID),
	}, userID)
}

// ============================================
// Sending
// ============================================

// SendToUser sends a message to every connection of a user
func (h *Hub) SendToUser(userID string, msgType MessageType, payload map[string]interface{}) {
	data, ok := encode(msgType, payload)
	if !ok {
		return
	}
	log.Printf("[Hub] 📤 SendToUser: user=%s, type=%s", userID, msgType)
	h.enqueue(&envelope{userID: userID, data: data})
}

// SendToRoom broadcasts a message to all clients in a room except excludeUserID's
func (h *Hub) SendToRoom(room string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	data, ok := encode(msgType, payload)
	if !ok {
		return
	}
	log.Printf("[Hub] 📤 SendToRoom: room=%s, type=%s, exclude=%s", room, msgType, excludeUserID)
	h.enqueue(&envelope{room: room, exclude: excludeUserID, data: data})
}

func (h *Hub) enqueue(env *envelope) {
	select {
	case h.outbox <- env:
	case <-h.done:
	}
}

func encode(msgType MessageType, payload map[string]interface{}) ([]byte, bool) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		log.Printf("[Hub] Error marshaling %s message: %v", msgType, err)
		return nil, false
	}
	return data, true
}

// ============================================
// Queries
// ============================================

// ProjectViewers returns the sorted IDs of users with the project's dashboard open.
func (h *Hub) ProjectViewers(projectID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := map[string]bool{}
	viewers := []string{}
	for client := range h.roomClients[ProjectRoom(projectID)] {
		if !seen[client.UserID] {
			seen[client.UserID] = true
			viewers = append(viewers, client.UserID)
		}
	}
	sort.Strings(viewers)
	return viewers
}

// GetConnectedClientsCount returns total connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
