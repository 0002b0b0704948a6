package ws

import (
	"errors"
	"log/slog"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

// ConversationStore is the slice of the conversation service the router needs.
type ConversationStore interface {
	CreateMessage(conversationID uint, content string, senderID *uint) (*models.Message, error)
	MarkRead(conversationID, userID uint) error
	ParticipantIDs(conversationID uint) ([]uint, error)
}

// PresenceTracker records typing signals.
type PresenceTracker interface {
	SetTyping(userID, conversationID uint, isTyping bool) error
}

// UserDirectory resolves user ids to identity info for notifications.
type UserDirectory interface {
	Get(userID uint) (*models.User, error)
}

// Notifier delivers out-of-band new-message notifications. Implementations
// must not block; failures are theirs to log.
type Notifier interface {
	NotifyNewMessage(recipient, senderName string, conversationID uint)
}

// UnreadInvalidator drops a user's cached unread counts after a mutation.
type UnreadInvalidator interface {
	Invalidate(userID uint) error
}

// Router dispatches inbound events for live connections. One router instance
// serves every connection; per-connection state lives on the Client.
type Router struct {
	hub      *Hub
	store    ConversationStore
	presence PresenceTracker
	users    UserDirectory
	notifier Notifier
	unread   UnreadInvalidator
}

func NewRouter(hub *Hub, store ConversationStore, presence PresenceTracker, users UserDirectory, notifier Notifier, unread UnreadInvalidator) *Router {
	return &Router{
		hub:      hub,
		store:    store,
		presence: presence,
		users:    users,
		notifier: notifier,
		unread:   unread,
	}
}

// HandleEvent runs one inbound event through its handler. The returned error
// is reported to the sending client only; it never tears down the connection.
func (r *Router) HandleEvent(client *Client, event InboundEvent) error {
	switch e := event.(type) {
	case MessageEvent:
		return r.handleMessage(client, e)
	case TypingEvent:
		return r.handleTyping(client, e)
	case ReadEvent:
		return r.handleRead(client)
	default:
		return errors.New("unhandled event variant")
	}
}

// handleMessage persists the message, echoes it to every subscriber including
// the sender's own devices, then notifies offline-capable channels. The
// broadcast happens only after the store commit; notification failures never
// reach the sender.
func (r *Router) handleMessage(client *Client, event MessageEvent) error {
	senderID := client.UserID
	message, err := r.store.CreateMessage(client.ConversationID, event.Content, &senderID)
	if err != nil {
		return err
	}

	r.hub.BroadcastToConversation(client.ConversationID, NewMessage(message.ToResponse()), nil)
	r.notifyParticipants(client.ConversationID, senderID)
	return nil
}

func (r *Router) invalidateUnread(userID uint) {
	if r.unread == nil {
		return
	}
	if err := r.unread.Invalidate(userID); err != nil {
		slog.Warn("failed to invalidate unread cache", "user_id", userID, "error", err)
	}
}

func (r *Router) handleTyping(client *Client, event TypingEvent) error {
	if err := r.presence.SetTyping(client.UserID, client.ConversationID, event.IsTyping); err != nil {
		// A stale typing row is harmless; still tell the other side.
		slog.Warn("failed to persist typing status",
			"user_id", client.UserID, "conversation_id", client.ConversationID, "error", err)
	}
	r.hub.BroadcastToConversation(client.ConversationID,
		TypingStatus(client.UserID, client.ConversationID, event.IsTyping), &client.UserID)
	return nil
}

func (r *Router) handleRead(client *Client) error {
	if err := r.store.MarkRead(client.ConversationID, client.UserID); err != nil {
		return err
	}
	r.invalidateUnread(client.UserID)
	r.hub.BroadcastToConversation(client.ConversationID,
		MessagesRead(client.UserID, client.ConversationID), &client.UserID)
	return nil
}

// notifyParticipants emails every participant except the sender, whether or
// not they are currently connected. Each recipient is independent; a lookup
// failure for one never blocks the others.
func (r *Router) notifyParticipants(conversationID, senderID uint) {
	participantIDs, err := r.store.ParticipantIDs(conversationID)
	if err != nil {
		slog.Warn("failed to list participants for notification",
			"conversation_id", conversationID, "error", err)
		return
	}

	senderName := "Someone"
	if sender, err := r.users.Get(senderID); err == nil {
		senderName = sender.DisplayName()
	}

	for _, participantID := range participantIDs {
		if participantID == senderID {
			continue
		}
		r.invalidateUnread(participantID)
		if r.notifier == nil {
			continue
		}
		recipient, err := r.users.Get(participantID)
		if err != nil {
			slog.Warn("failed to resolve notification recipient",
				"user_id", participantID, "error", err)
			continue
		}
		r.notifier.NotifyNewMessage(recipient.Email, senderName, conversationID)
	}
}

// ErrorCode maps a handler error to the wire-level error code sent back to
// the client.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, service.ErrContentTooLong):
		return "content_too_long"
	case errors.Is(err, service.ErrConversationNotFound):
		return "conversation_not_found"
	case errors.Is(err, service.ErrNotParticipant):
		return "not_participant"
	default:
		return "processing_failed"
	}
}
