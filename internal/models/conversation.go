package models

import "time"

type ConversationType string

const (
	PlantCareConversation       ConversationType = "plant_care"
	BotanicalAdviceConversation ConversationType = "botanical_advice"
)

// Conversation is a message thread between a fixed set of participants.
// Type and RelatedID are immutable after creation; UpdatedAt is bumped
// atomically with every new message so conversation lists sort by activity.
type Conversation struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	Type      ConversationType `gorm:"type:varchar(32);not null" json:"type"`
	RelatedID *uint            `gorm:"index" json:"related_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `gorm:"index" json:"updated_at"`

	Messages     []Message                 `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// ConversationParticipant carries the per-user read cursor. LastReadAt is nil
// until the user reads the conversation for the first time, and only ever
// moves forward.
type ConversationParticipant struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	ConversationID uint       `gorm:"not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_conversation_user;index" json:"user_id"`
	LastReadAt     *time.Time `json:"last_read_at"`
}

// Message rows are immutable after creation except for the conversation-level
// IsRead flag. A nil SenderID marks a system message.
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Content        string    `gorm:"type:varchar(2000);not null" json:"content"`
	SenderID       *uint     `gorm:"index" json:"sender_id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
}

type MessageResponse struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	SenderID       *uint     `json:"sender_id"`
	ConversationID uint      `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	IsRead         bool      `json:"is_read"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		Content:        m.Content,
		SenderID:       m.SenderID,
		ConversationID: m.ConversationID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		IsRead:         m.IsRead,
	}
}

// IsSystem reports whether the message was produced by the application rather
// than a user (e.g. the care-acceptance announcement).
func (m *Message) IsSystem() bool {
	return m.SenderID == nil
}

// UnreadCount is one row of the per-conversation unread aggregation.
type UnreadCount struct {
	ConversationID uint  `gorm:"column:conversation_id" json:"conversation_id"`
	UnreadCount    int64 `gorm:"column:unread_count" json:"unread_count"`
}

// ConversationSummary is the enriched row returned by the conversation list:
// the thread plus its last message, the caller's unread count, the other
// participants and, for plant-care threads, the linked care session.
type ConversationSummary struct {
	ID           uint                `json:"id"`
	Type         ConversationType    `json:"type"`
	RelatedID    *uint               `json:"related_id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Participants []UserResponse      `json:"participants"`
	LastMessage  *MessageResponse    `json:"last_message"`
	UnreadCount  int64               `json:"unread_count"`
	CareSession  *CareSessionSummary `json:"care_session,omitempty"`
}
