package ws

import (
	"encoding/json"
	"fmt"

	"github.com/greenkeep/greenkeep-backend/internal/models"
)

// Inbound event types accepted on the wire.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventRead    = "read"
)

// Outbound event types emitted on the wire.
const (
	EventNewMessage   = "new_message"
	EventTypingStatus = "typing_status"
	EventMessagesRead = "messages_read"
	EventUserOffline  = "user_offline"
	EventError        = "error"
)

// InboundEvent is the closed set of events a client may send. The concrete
// types are MessageEvent, TypingEvent and ReadEvent; dispatch is an exhaustive
// type switch, not a registry.
type InboundEvent interface {
	inboundEvent()
}

type MessageEvent struct {
	Content string `json:"content"`
}

type TypingEvent struct {
	IsTyping bool `json:"is_typing"`
}

type ReadEvent struct{}

func (MessageEvent) inboundEvent() {}
func (TypingEvent) inboundEvent()  {}
func (ReadEvent) inboundEvent()    {}

// DecodeInbound parses one wire frame into its event variant. Unknown types
// are an error; the frame is flat JSON with a "type" discriminator.
func DecodeInbound(data []byte) (InboundEvent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	switch probe.Type {
	case EventMessage:
		var event MessageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("malformed message event: %w", err)
		}
		return event, nil
	case EventTyping:
		var event TypingEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("malformed typing event: %w", err)
		}
		return event, nil
	case EventRead:
		return ReadEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", probe.Type)
	}
}

// Outbound event payloads. Each carries its own "type" field so a frame can be
// marshaled once and fanned out to every subscriber.

type NewMessageEvent struct {
	Type    string                 `json:"type"`
	Message models.MessageResponse `json:"message"`
}

func NewMessage(message models.MessageResponse) NewMessageEvent {
	return NewMessageEvent{Type: EventNewMessage, Message: message}
}

type TypingStatusEvent struct {
	Type           string `json:"type"`
	UserID         uint   `json:"user_id"`
	ConversationID uint   `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

func TypingStatus(userID, conversationID uint, isTyping bool) TypingStatusEvent {
	return TypingStatusEvent{
		Type:           EventTypingStatus,
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
	}
}

type MessagesReadEvent struct {
	Type           string `json:"type"`
	UserID         uint   `json:"user_id"`
	ConversationID uint   `json:"conversation_id"`
}

func MessagesRead(userID, conversationID uint) MessagesReadEvent {
	return MessagesReadEvent{
		Type:           EventMessagesRead,
		UserID:         userID,
		ConversationID: conversationID,
	}
}

type UserOfflineEvent struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
}

func UserOffline(userID uint) UserOfflineEvent {
	return UserOfflineEvent{Type: EventUserOffline, UserID: userID}
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

func Error(code, message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Code: code, Error: message}
}
