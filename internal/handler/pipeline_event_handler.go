package handler

import (
	"influencer-scout-be/internal/pkg/logger"
	internalWS "influencer-scout-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// PipelineEventHandler exposes the websocket feed of pipeline progress
// events for a session.
type PipelineEventHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewPipelineEventHandler(hub *internalWS.Hub, log logger.ILogger) *PipelineEventHandler {
	return &PipelineEventHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the connection and attaches it to the session's feed.
// The session id comes from the query string; browsers cannot set headers
// on websocket handshakes.
func (h *PipelineEventHandler) ServeWs(c *fiber.Ctx) error {
	sessionIDStr := c.Query("session_id")
	if sessionIDStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session_id query parameter"})
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session_id format"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("PipelineEventHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("PipelineEventHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *PipelineEventHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
