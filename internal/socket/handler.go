// internal/socket/handler.go
package socket

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenVerifier checks the access tokens issued by the auth service.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*jwt.Token, error)
	GetUserIDFromToken(token *jwt.Token) (string, error)
}

// Handler upgrades dashboard connections.
type Handler struct {
	Hub      *Hub
	tokens   TokenVerifier
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. An empty allowedOrigins accepts any Origin header.
func NewHandler(hub *Hub, tokens TokenVerifier, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}
	return &Handler{
		Hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[strings.TrimRight(origin, "/")]
			},
		},
	}
}

// HandleWebSocket authenticates from the token query parameter, since browsers
// cannot set headers on a WebSocket handshake, then upgrades the connection.
//
//	/api/ws?token=<access>&projects=<id>,<id>
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade error: %v", err)
		return
	}
	log.Printf("[WebSocket] ✅ Client connected: userID=%s", userID)

	client := NewClient(h.Hub, userID, conn)
	h.Hub.register <- client
	h.Hub.JoinRoom(client, UserRoom(userID))

	for _, projectID := range strings.Split(c.Query("projects"), ",") {
		room := ProjectRoom(strings.TrimSpace(projectID))
		if _, ok := projectOf(room); ok && h.Hub.CanJoin(userID, room) {
			h.Hub.JoinRoom(client, room)
		}
	}

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) authenticate(c *gin.Context) (string, bool) {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if tokenString == "" {
		log.Println("[WebSocket] No token provided")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return "", false
	}

	token, err := h.tokens.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		log.Printf("[WebSocket] Invalid token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return "", false
	}
	userID, err := h.tokens.GetUserIDFromToken(token)
	if err != nil || userID == "" {
		log.Printf("[WebSocket] No user ID in token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return "", false
	}
	return userID, true
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    make(map[string]bool),
		lastPing: time.Now(),
	}
}
