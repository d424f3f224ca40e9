// internal/socket/client.go
package socket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Dashboard clients only send small control frames.
	maxMessageSize int64 = 4096
)

// Actions a dashboard may send.
const (
	ActionJoin    = "join"
	ActionLeave   = "leave"
	ActionWatch   = "watch_project"
	ActionUnwatch = "unwatch_project"
	ActionViewers = "viewers"
	ActionPing    = "ping"
	ActionPong    = "pong"
)

// ClientMessage is a control frame from the dashboard. Room addresses a raw
// room; ProjectID is the shorthand the dashboard uses for project rooms.
type ClientMessage struct {
	Action    string `json:"action"`
	Room      string `json:"room,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

func (m ClientMessage) room() string {
	if m.Room != "" {
		return m.Room
	}
	if m.ProjectID != "" {
		return ProjectRoom(m.ProjectID)
	}
	return ""
}

// ReadPump reads control frames until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.drop(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.touch()
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Client] WebSocket error for user %s: %v", c.UserID, err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[Client] Error parsing message from user %s: %v", c.UserID, err)
			c.sendError("malformed message", "")
			continue
		}
		c.handle(msg)
	}
}

// WritePump drains Send onto the connection, coalescing queued events into one frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeBatch(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeBatch(first []byte) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(first)
	for n := len(c.Send); n > 0; n-- {
		w.Write([]byte{'\n'})
		w.Write(<-c.Send)
	}
	return w.Close()
}

func (c *Client) handle(msg ClientMessage) {
	room := msg.room()
	log.Printf("[Client] Received action=%s room=%s from user=%s", msg.Action, room, c.UserID)

	switch msg.Action {
	case ActionJoin, ActionWatch:
		if room == "" {
			c.sendError("room required", "")
			return
		}
		if !c.Hub.CanJoin(c.UserID, room) {
			log.Printf("[Client] ⛔ user=%s denied room=%s", c.UserID, room)
			c.sendError("not allowed to join room", room)
			return
		}
		c.Hub.JoinRoom(c, room)
		c.sendAck("joined", room)

	case ActionLeave, ActionUnwatch:
		if room != "" {
			c.Hub.LeaveRoom(c, room)
			c.sendAck("left", room)
		}

	case ActionViewers:
		projectID, ok := projectOf(room)
		if !ok || !c.inRoom(room) {
			c.sendError("watch the project first", room)
			return
		}
		c.enqueue(MessageViewers, map[string]interface{}{
			"projectId": projectID,
			"viewers":   c.Hub.ProjectViewers(projectID),
		})

	case ActionPing:
		c.touch()
		c.enqueue(MessagePong, map[string]interface{}{"time": time.Now().Unix()})

	case ActionPong:
		c.touch()

	default:
		log.Printf("[Client] Unknown action: %s from user: %s", msg.Action, c.UserID)
		c.sendError("unknown action", room)
	}
}

func (c *Client) inRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Rooms[room]
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

func (c *Client) sendAck(action, room string) {
	c.enqueue(MessageAck, map[string]interface{}{
		"action": action,
		"room":   room,
	})
}

func (c *Client) sendError(reason, room string) {
	c.enqueue(MessageError, map[string]interface{}{
		"error": reason,
		"room":  room,
	})
}

// enqueue drops the message when the client's buffer is full.
func (c *Client) enqueue(msgType MessageType, payload map[string]interface{}) {
	data, ok := encode(msgType, payload)
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("[Client] Failed to send %s to user %s", msgType, c.UserID)
	}
}
