package handlers

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/greenkeep/greenkeep-backend/internal/handlers/ws"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

type WebSocketHandler struct {
	hub             *ws.Hub
	router          *ws.Router
	presenceService *service.PresenceService
}

func NewWebSocketHandler(hub *ws.Hub, router *ws.Router, presenceService *service.PresenceService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		router:          router,
		presenceService: presenceService,
	}
}

// Hub exposes the connection registry so other handlers can push events.
func (h *WebSocketHandler) Hub() *ws.Hub {
	return h.hub
}

// ParticipantChecker lets the handler verify membership before the connection
// is admitted.
type ParticipantChecker interface {
	IsParticipant(conversationID, userID uint) (bool, error)
}

// HandleConnection runs one duplex connection for a (user, conversation)
// pair. A caller that is not a participant is closed immediately with a
// policy-violation code; nothing it sends is processed.
func (h *WebSocketHandler) HandleConnection(checker ParticipantChecker) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		userID, ok := c.Locals("userID").(uint)
		if !ok {
			closePolicyViolation(c, "unauthorized")
			return
		}

		conversationID64, err := strconv.ParseUint(c.Params("conversation_id"), 10, 32)
		if err != nil {
			closePolicyViolation(c, "invalid conversation id")
			return
		}
		conversationID := uint(conversationID64)

		member, err := checker.IsParticipant(conversationID, userID)
		if err != nil || !member {
			closePolicyViolation(c, "not a participant")
			return
		}

		connID := uuid.NewString()
		client := ws.NewClient(userID, connID, conversationID, c)

		h.hub.Register(client)
		h.hub.Subscribe(conversationID, userID)
		if err := h.presenceService.SetOnline(userID, connID); err != nil {
			slog.Warn("failed to set user online", "user_id", userID, "error", err)
		}

		go client.WritePump()

		defer h.cleanup(client)

		slog.Info("websocket connected",
			"user_id", userID, "conversation_id", conversationID, "conn_id", connID)

		for {
			_, frame, err := c.ReadMessage()
			if err != nil {
				return
			}

			event, err := ws.DecodeInbound(frame)
			if err != nil {
				sendError(client, "malformed_event", err.Error())
				continue
			}

			if err := h.router.HandleEvent(client, event); err != nil {
				sendError(client, ws.ErrorCode(err), err.Error())
			}
		}
	}
}

// cleanup runs exactly once per connection, on any termination path. The
// offline transition fires only when this was the user's last connection.
func (h *WebSocketHandler) cleanup(client *ws.Client) {
	client.Close()
	h.hub.Unsubscribe(client.ConversationID, client.UserID)
	last := h.hub.Unregister(client.UserID, client.ConnID)

	slog.Info("websocket disconnected",
		"user_id", client.UserID, "conversation_id", client.ConversationID,
		"conn_id", client.ConnID, "last", last)

	if !last {
		return
	}
	if err := h.presenceService.SetOffline(client.UserID); err != nil {
		slog.Warn("failed to set user offline", "user_id", client.UserID, "error", err)
	}
	h.hub.BroadcastToConversation(client.ConversationID,
		ws.UserOffline(client.UserID), &client.UserID)
}

func sendError(client *ws.Client, code, message string) {
	data, err := json.Marshal(ws.Error(code, message))
	if err != nil {
		return
	}
	client.Enqueue(data)
}

func closePolicyViolation(c *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := c.WriteMessage(websocket.CloseMessage, msg); err != nil {
		slog.Debug("failed to write close frame", "error", err)
	}
}
