package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/middleware"
	"github.com/rs/zerolog/log"
)

// ============================================================================
// WEBSOCKET HUB
// ============================================================================

// Client represents a connected WebSocket client. Send is never closed; the
// hub closes done once the client is dropped.
type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID
	Send   chan []byte
	done   chan struct{}
}

func newClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// queue hands data to the write pump without blocking. It reports false once
// the client is dropped or its buffer is full.
func (c *Client) queue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub fans collection-changed events out to every connected client. The
// REST API stays the source of truth; events are only re-fetch hints.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan dto.WSEvent
	quit       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan dto.WSEvent, 256),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			log.Debug().Str("user_id", client.UserID.String()).Int("clients", len(h.clients)).Msg("ws client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.done)
			}
			log.Debug().Str("user_id", client.UserID.String()).Int("clients", len(h.clients)).Msg("ws client disconnected")

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("ws marshal event")
				continue
			}
			for client := range h.clients {
				client.queue(data)
			}

		case <-h.quit:
			for client := range h.clients {
				close(client.done)
				delete(h.clients, client)
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// NotifyChange queues a collection.changed event. It never blocks the caller.
func (h *Hub) NotifyChange(collection, action string, id *uuid.UUID) {
	event := dto.WSEvent{
		Type: "collection.changed",
		Payload: dto.CollectionChanged{
			Collection: collection,
			Action:     action,
			ID:         id,
		},
	}
	select {
	case h.broadcast <- event:
	default:
		log.Warn().Str("collection", collection).Msg("ws broadcast queue full, dropping event")
	}
}

// ============================================================================
// WEBSOCKET HANDLER
// ============================================================================

type WebSocketHandler struct {
	Hub *Hub
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := NewHub()
	go hub.Run()

	return &WebSocketHandler{Hub: hub}
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	client := newClient(c, userID)

	select {
	case h.Hub.register <- client:
	case <-h.Hub.quit:
		c.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

// readPump only answers pings; clients never push state through the socket.
func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		select {
		case h.Hub.unregister <- client:
		case <-h.Hub.quit:
		}
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("ws read")
			}
			break
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			data, _ := json.Marshal(dto.WSEvent{Type: "pong"})
			client.queue(data)
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case <-client.done:
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-client.Send:
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ============================================================================
// FIBER UPGRADE HANDLER
// ============================================================================

// WebSocketUpgrade authenticates the ?token= query, falling back to an
// Authorization: Bearer header, and lets only upgrade requests through.
func (h *WebSocketHandler) WebSocketUpgrade(authMiddleware *middleware.AuthMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Token is required for websocket"))
		}

		claims, err := authMiddleware.GetJWTService().ValidateAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("INVALID_TOKEN", "Invalid token"))
		}

		userID, _ := uuid.Parse(claims.Sub)
		c.Locals("userID", userID)
		return c.Next()
	}
}
