package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/greenkeep/greenkeep-backend/internal/cache"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/notify"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
	presenceService     *service.PresenceService
	userService         *service.UserService
	mailer              *notify.Mailer
	unreadCache         *cache.UnreadCache
}

func NewConversationHandler(
	conversationService *service.ConversationService,
	presenceService *service.PresenceService,
	userService *service.UserService,
	mailer *notify.Mailer,
	unreadCache *cache.UnreadCache,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		presenceService:     presenceService,
		userService:         userService,
		mailer:              mailer,
		unreadCache:         unreadCache,
	}
}

type createConversationInput struct {
	ParticipantIDs []uint                  `json:"participant_ids"`
	Type           models.ConversationType `json:"type"`
	RelatedID      *uint                   `json:"related_id"`
}

func (h *ConversationHandler) CreateConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createConversationInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.Type == "" {
		input.Type = models.BotanicalAdviceConversation
	}

	// The creator is always a participant.
	input.ParticipantIDs = append(input.ParticipantIDs, userID)

	conversation, err := h.conversationService.CreateConversation(input.ParticipantIDs, input.Type, input.RelatedID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidParticipants) {
			return httpx.BadRequest(c, "invalid_participants", err.Error())
		}
		return httpx.Internal(c, "create_conversation_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(conversation)
}

func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	skip, limit := pagination(c)
	summaries, err := h.conversationService.ListUserConversations(userID, skip, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_conversations_failed")
	}
	return c.JSON(summaries)
}

func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	if err := h.requireParticipant(conversationID, userID); err != nil {
		return h.participantError(c, err)
	}

	conversation, err := h.conversationService.GetConversation(conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return httpx.NotFound(c, "conversation_not_found", "Conversation not found")
		}
		return httpx.Internal(c, "fetch_conversation_failed")
	}
	return c.JSON(conversation)
}

func (h *ConversationHandler) ListMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	if err := h.requireParticipant(conversationID, userID); err != nil {
		return h.participantError(c, err)
	}

	skip, limit := pagination(c)
	messages, err := h.conversationService.ListMessages(conversationID, skip, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return c.JSON(responses)
}

type sendMessageInput struct {
	Content string `json:"content"`
}

// SendMessage persists a message over REST. Live subscribers pick it up on
// their next fetch; the realtime echo path is the websocket, not this
// endpoint. Email notification runs the same as for socket sends.
func (h *ConversationHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	var input sendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.conversationService.CreateMessage(conversationID, input.Content, &userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			return httpx.BadRequest(c, "empty_content", "Content is required")
		case errors.Is(err, service.ErrContentTooLong):
			return httpx.BadRequest(c, "content_too_long", "Content exceeds the maximum length")
		case errors.Is(err, service.ErrNotParticipant):
			return httpx.Forbidden(c, "not_participant", "Not a participant of this conversation")
		case errors.Is(err, service.ErrConversationNotFound):
			return httpx.NotFound(c, "conversation_not_found", "Conversation not found")
		}
		return httpx.Internal(c, "send_message_failed")
	}

	h.notifyParticipants(conversationID, userID)
	h.invalidateUnread(conversationID, userID)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	if err := h.conversationService.MarkRead(conversationID, userID); err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			return httpx.Forbidden(c, "not_participant", "Not a participant of this conversation")
		}
		return httpx.Internal(c, "mark_read_failed")
	}

	if err := h.unreadCache.Invalidate(userID); err != nil {
		slog.Warn("failed to invalidate unread cache", "user_id", userID, "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ConversationHandler) ListParticipants(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	if err := h.requireParticipant(conversationID, userID); err != nil {
		return h.participantError(c, err)
	}

	participants, err := h.conversationService.Participants(conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return httpx.NotFound(c, "conversation_not_found", "Conversation not found")
		}
		return httpx.Internal(c, "fetch_participants_failed")
	}
	return c.JSON(participants)
}

func (h *ConversationHandler) ListTypingUsers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	if err := h.requireParticipant(conversationID, userID); err != nil {
		return h.participantError(c, err)
	}

	typing, err := h.presenceService.TypingUsers(conversationID)
	if err != nil {
		return httpx.Internal(c, "fetch_typing_failed")
	}
	return c.JSON(typing)
}

func (h *ConversationHandler) UnreadCount(c *fiber.Ctx) error {
	return h.unreadCounts(c, h.conversationService.UnreadCounts)
}

func (h *ConversationHandler) UnreadCountTotal(c *fiber.Ctx) error {
	return h.unreadCounts(c, h.conversationService.UnreadCountTotals)
}

func (h *ConversationHandler) unreadCounts(c *fiber.Ctx, fetch func(uint) ([]models.UnreadCount, error)) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if cached, ok := h.unreadCache.Get(userID); ok {
		return c.JSON(cached)
	}

	counts, err := fetch(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_unread_failed")
	}
	if err := h.unreadCache.Set(userID, counts); err != nil {
		slog.Warn("failed to cache unread counts", "user_id", userID, "error", err)
	}
	return c.JSON(counts)
}

func (h *ConversationHandler) requireParticipant(conversationID, userID uint) error {
	member, err := h.conversationService.IsParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return service.ErrNotParticipant
	}
	return nil
}

func (h *ConversationHandler) participantError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotParticipant) {
		return httpx.Forbidden(c, "not_participant", "Not a participant of this conversation")
	}
	return httpx.Internal(c, "participant_check_failed")
}

// notifyParticipants queues a notification email to everyone in the
// conversation except the sender.
func (h *ConversationHandler) notifyParticipants(conversationID, senderID uint) {
	participantIDs, err := h.conversationService.ParticipantIDs(conversationID)
	if err != nil {
		slog.Warn("failed to list participants for notification",
			"conversation_id", conversationID, "error", err)
		return
	}

	senderName := "Someone"
	if sender, err := h.userService.Get(senderID); err == nil {
		senderName = sender.DisplayName()
	}

	for _, participantID := range participantIDs {
		if participantID == senderID {
			continue
		}
		recipient, err := h.userService.Get(participantID)
		if err != nil {
			slog.Warn("failed to resolve notification recipient", "user_id", participantID, "error", err)
			continue
		}
		h.mailer.NotifyNewMessage(recipient.Email, senderName, conversationID)
	}
}

// invalidateUnread drops cached unread counts for everyone except the sender,
// whose counts did not change.
func (h *ConversationHandler) invalidateUnread(conversationID, senderID uint) {
	participantIDs, err := h.conversationService.ParticipantIDs(conversationID)
	if err != nil {
		return
	}
	for _, participantID := range participantIDs {
		if participantID == senderID {
			continue
		}
		if err := h.unreadCache.Invalidate(participantID); err != nil {
			slog.Warn("failed to invalidate unread cache", "user_id", participantID, "error", err)
		}
	}
}

func pagination(c *fiber.Ctx) (skip, limit int) {
	limit = 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if skipStr := c.Query("skip"); skipStr != "" {
		if s, err := strconv.Atoi(skipStr); err == nil && s > 0 {
			skip = s
		}
	}
	return skip, limit
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
