package models

import "time"

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
	StatusAway    PresenceStatus = "away"
)

// UserPresence is the best-effort online signal, one row per user. SocketID
// records the most recent live connection (last writer wins across devices).
// The table is rebuilt from client events after a restart.
type UserPresence struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	Status     PresenceStatus `gorm:"type:varchar(16);default:'offline'" json:"status"`
	LastSeenAt time.Time      `json:"last_seen_at"`
	SocketID   string         `gorm:"type:varchar(36)" json:"socket_id"`
}

// UserTypingStatus is the per-conversation typing signal. LastTypedAt is
// stamped on every update, whatever the IsTyping value, so staleness is
// measured from the most recent signal rather than the last state flip.
type UserTypingStatus struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_typing_user_conversation" json:"user_id"`
	ConversationID uint      `gorm:"not null;uniqueIndex:idx_typing_user_conversation;index" json:"conversation_id"`
	IsTyping       bool      `gorm:"default:false" json:"is_typing"`
	LastTypedAt    time.Time `json:"last_typed_at"`
}

type TypingUserResponse struct {
	UserID      uint      `json:"user_id"`
	IsTyping    bool      `json:"is_typing"`
	LastTypedAt time.Time `json:"last_typed_at"`
}

func (t *UserTypingStatus) ToResponse() TypingUserResponse {
	return TypingUserResponse{
		UserID:      t.UserID,
		IsTyping:    t.IsTyping,
		LastTypedAt: t.LastTypedAt,
	}
}
