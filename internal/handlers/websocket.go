package handlers

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arnold/levelup-api/internal/middleware"
	"github.com/arnold/levelup-api/internal/services"
)

// connection serializes writes to one websocket
type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub fans out events to every open dashboard of a user.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool // userID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*connection]bool)}
}

func (h *Hub) register(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*connection]bool)
	}
	h.rooms[userID][conn] = true
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"total":   len(h.rooms[userID]),
	}).Debug("WS register")
}

func (h *Hub) unregister(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// Connections reports how many sockets the user has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Publish implements services.EventPublisher.
func (h *Hub) Publish(userID uuid.UUID, event services.Event) {
	h.mu.RLock()
	conns := make([]*connection, 0, len(h.rooms[userID]))
	for c := range h.rooms[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("WS publish marshal error")
		return
	}

	for _, c := range conns {
		if err := c.write(msg); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("WS write error")
		}
	}
}

// WebSocketUpgrade checks the upgrade request and authenticates it. Browsers
// cannot set headers on a websocket, so ?token= is accepted too.
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := c.Query("token")
		if tokenString == "" {
			tokenString = middleware.BearerToken(c)
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(h.jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		middleware.SetIdentity(c, claims)
		return c.Next()
	}
}

// HandleWebSocket streams the user's events until the client disconnects.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	username, _ := c.Locals("username").(string)
	if !ok || username != c.Params("username") {
		c.Close()
		return
	}

	conn := &connection{conn: c}
	h.hub.register(userID, conn)
	defer h.hub.unregister(userID, conn)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
