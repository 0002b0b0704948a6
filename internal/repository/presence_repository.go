package repository

import (
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// SetOnline upserts the user's presence row to online. SocketID identifies the
// most recent connection; with multiple devices the last writer wins.
func (r *PresenceRepository) SetOnline(userID uint, socketID string) error {
	now := time.Now().UTC()
	presence := models.UserPresence{
		UserID:     userID,
		Status:     models.StatusOnline,
		LastSeenAt: now,
		SocketID:   socketID,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       models.StatusOnline,
			"last_seen_at": now,
			"socket_id":    socketID,
		}),
	}).Create(&presence).Error
}

func (r *PresenceRepository) SetOffline(userID uint) error {
	now := time.Now().UTC()
	presence := models.UserPresence{
		UserID:     userID,
		Status:     models.StatusOffline,
		LastSeenAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       models.StatusOffline,
			"last_seen_at": now,
		}),
	}).Create(&presence).Error
}

func (r *PresenceRepository) GetPresence(userID uint) (*models.UserPresence, error) {
	var presence models.UserPresence
	err := r.db.Where("user_id = ?", userID).First(&presence).Error
	if err != nil {
		return nil, err
	}
	return &presence, nil
}

// UpsertTyping always stamps last_typed_at, whatever the is_typing value, so
// freshness is measured from the most recent signal.
func (r *PresenceRepository) UpsertTyping(userID, conversationID uint, isTyping bool) error {
	now := time.Now().UTC()
	status := models.UserTypingStatus{
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
		LastTypedAt:    now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_typing":     isTyping,
			"last_typed_at": now,
		}),
	}).Create(&status).Error
}

// TypingForConversation returns all typing rows for the conversation; the
// freshness window is applied by the caller so stale rows are excluded without
// being deleted.
func (r *PresenceRepository) TypingForConversation(conversationID uint) ([]models.UserTypingStatus, error) {
	var rows []models.UserTypingStatus
	err := r.db.Where("conversation_id = ?", conversationID).Find(&rows).Error
	return rows, err
}
