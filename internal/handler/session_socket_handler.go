package handler

import (
	"errors"

	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/service"
	internalWS "pivot-graph-be/internal/websocket"
	"pivot-graph-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionSocketHandler streams a session's graph deltas and lifecycle events
// over a websocket.
type SessionSocketHandler struct {
	sessions  service.ISessionService
	publisher service.IPublisherService
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewSessionSocketHandler(sessions service.ISessionService, pub service.IPublisherService, hub *internalWS.Hub, log logger.ILogger) *SessionSocketHandler {
	return &SessionSocketHandler{
		sessions:  sessions,
		publisher: pub,
		hub:       hub,
		logger:    log,
	}
}

func (h *SessionSocketHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/graph/:session")
	g.Get("/ws", h.ServeWs)
	g.Post("/events/debug", h.DebugTriggerEvent)
}

// ServeWs upgrades the request once the session is known to exist.
func (h *SessionSocketHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session")
	if _, err := h.sessions.Get(sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionSocketHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionSocketHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// DebugTriggerEvent publishes an arbitrary event for the session to exercise
// the relay path end to end.
func (h *SessionSocketHandler) DebugTriggerEvent(c *fiber.Ctx) error {
	type Request struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Type == "" {
		req.Type = "TEST_EVENT"
	}

	sessionID := c.Params("session")
	if _, err := h.sessions.Get(sessionID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	event := events.NewGraphEvent(req.Type, sessionID, req.Payload)
	if err := h.publisher.Publish(c.UserContext(), event); err != nil {
		h.logger.Error("SessionSocketHandler", "Failed to publish debug event", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "type": event.EventType()})
}
