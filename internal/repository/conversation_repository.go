package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateConversation inserts the conversation row plus one participant row per
// user id, all in one transaction.
func (r *ConversationRepository) CreateConversation(conversation *models.Conversation, participantIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		for _, userID := range participantIDs {
			participant := models.ConversationParticipant{
				ConversationID: conversation.ID,
				UserID:         userID,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.First(&conversation, id).Error
	return &conversation, err
}

func (r *ConversationRepository) ListForUser(userID uint, skip, limit int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

// CreateMessage inserts the message and bumps the conversation's updated_at to
// the message's created_at in the same transaction, so either both land or
// neither is visible. The conversation is loaded first so a missing thread
// surfaces as gorm.ErrRecordNotFound before anything is written.
func (r *ConversationRepository) CreateMessage(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.First(&conversation, message.ConversationID).Error; err != nil {
			return err
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("updated_at", message.CreatedAt).Error
	})
}

func (r *ConversationRepository) ListMessages(conversationID uint, skip, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *ConversationRepository) LastMessage(conversationID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// A conversation with no messages yet is not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkConversationRead flips every unread message and advances the caller's
// read cursor in one transaction. The cursor is only ever set to the current
// time, never to a caller-supplied value, which keeps it monotonic.
func (r *ConversationRepository) MarkConversationRead(conversationID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND is_read = ?", conversationID, false).
			Update("is_read", true).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Update("last_read_at", now).Error
	})
}

func (r *ConversationRepository) Participants(conversationID uint) ([]models.ConversationParticipant, error) {
	var participants []models.ConversationParticipant
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Find(&participants).Error
	return participants, err
}

func (r *ConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

// UnreadCounts aggregates unread messages per conversation for one user. A
// message is unread when it was sent by someone else (or by the system), its
// conversation-level flag has not been flipped, and it postdates the user's
// read cursor; both the flag and the cursor must independently say unread.
func (r *ConversationRepository) UnreadCounts(userID uint) ([]models.UnreadCount, error) {
	query := strings.TrimSpace(`
SELECT
	m.conversation_id,
	COUNT(*) AS unread_count
FROM messages m
JOIN conversation_participants cp
	ON cp.conversation_id = m.conversation_id AND cp.user_id = ?
WHERE
	(m.sender_id IS NULL OR m.sender_id <> ?)
	AND m.is_read = false
	AND (cp.last_read_at IS NULL OR m.created_at > cp.last_read_at)
GROUP BY m.conversation_id
ORDER BY m.conversation_id
`)

	var rows []models.UnreadCount
	err := r.db.Raw(query, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ConversationRepository) UnreadCountForConversation(conversationID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = messages.conversation_id AND cp.user_id = ?", userID).
		Where("messages.conversation_id = ?", conversationID).
		Where("(messages.sender_id IS NULL OR messages.sender_id <> ?)", userID).
		Where("messages.is_read = ?", false).
		Where("(cp.last_read_at IS NULL OR messages.created_at > cp.last_read_at)").
		Count(&count).Error
	return count, err
}
