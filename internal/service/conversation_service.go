package service

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"github.com/greenkeep/greenkeep-backend/internal/validation"
	"gorm.io/gorm"
)

type ConversationService struct {
	conversationRepo repository.ConversationRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	careRepo         repository.CareRepositoryInterface
}

func NewConversationService(
	conversationRepo repository.ConversationRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	careRepo repository.CareRepositoryInterface,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		careRepo:         careRepo,
	}
}

// CreateConversation creates the thread plus one participant row per distinct
// user id. Duplicates collapse; fewer than two distinct ids is rejected. The
// welcome message for plant-care threads is orchestrated by the care workflow,
// not here.
func (s *ConversationService) CreateConversation(participantIDs []uint, conversationType models.ConversationType, relatedID *uint) (*models.Conversation, error) {
	unique := dedupeIDs(participantIDs)
	if len(unique) < 2 {
		return nil, ErrInvalidParticipants
	}

	conversation := &models.Conversation{
		Type:      conversationType,
		RelatedID: relatedID,
	}
	if err := s.conversationRepo.CreateConversation(conversation, unique); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ConversationService) GetConversation(conversationID uint) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// CreateMessage validates and persists one message. A nil senderID marks a
// system message and skips the participant check. Content limits are enforced
// before the store is touched.
func (s *ConversationService) CreateMessage(conversationID uint, content string, senderID *uint) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > validation.MaxMessageLength() {
		return nil, ErrContentTooLong
	}

	if senderID != nil {
		member, err := s.conversationRepo.IsParticipant(conversationID, *senderID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotParticipant
		}
	}

	message := &models.Message{
		Content:        content,
		SenderID:       senderID,
		ConversationID: conversationID,
		IsRead:         false,
	}
	if err := s.conversationRepo.CreateMessage(message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return message, nil
}

func (s *ConversationService) ListMessages(conversationID uint, skip, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.conversationRepo.ListMessages(conversationID, skip, limit)
}

// MarkRead flips every unread message in the conversation and advances the
// caller's read cursor. The caller must be a participant.
func (s *ConversationService) MarkRead(conversationID, userID uint) error {
	member, err := s.conversationRepo.IsParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotParticipant
	}
	return s.conversationRepo.MarkConversationRead(conversationID, userID)
}

func (s *ConversationService) IsParticipant(conversationID, userID uint) (bool, error) {
	return s.conversationRepo.IsParticipant(conversationID, userID)
}

// ParticipantIDs returns the user ids of everyone in the conversation.
func (s *ConversationService) ParticipantIDs(conversationID uint) ([]uint, error) {
	participants, err := s.conversationRepo.Participants(conversationID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

// Participants resolves the conversation's members to their identity info.
func (s *ConversationService) Participants(conversationID uint) ([]models.UserResponse, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}
	ids, err := s.ParticipantIDs(conversationID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

// ListUserConversations returns the user's threads, most recently updated
// first, each enriched with the last message, the caller's unread count, the
// other participants and, for plant-care threads, the linked care session. A
// thread with no messages yet simply has no last message.
func (s *ConversationService) ListUserConversations(userID uint, skip, limit int) ([]models.ConversationSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	conversations, err := s.conversationRepo.ListForUser(userID, skip, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for i := range conversations {
		conversation := &conversations[i]
		summary := models.ConversationSummary{
			ID:        conversation.ID,
			Type:      conversation.Type,
			RelatedID: conversation.RelatedID,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		}

		if last, err := s.conversationRepo.LastMessage(conversation.ID); err != nil {
			return nil, err
		} else if last != nil {
			response := last.ToResponse()
			summary.LastMessage = &response
		}

		count, err := s.conversationRepo.UnreadCountForConversation(conversation.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = count

		others, err := s.otherParticipants(conversation.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.Participants = others

		if conversation.Type == models.PlantCareConversation && conversation.RelatedID != nil {
			care, err := s.careRepo.FindByID(*conversation.RelatedID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				slog.Warn("conversation references a missing care session",
					"conversation_id", conversation.ID, "related_id", *conversation.RelatedID)
			} else if err != nil {
				return nil, err
			} else {
				careSummary := care.ToSummary()
				summary.CareSession = &careSummary
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UnreadCounts returns one row per conversation with unread messages. When
// everything is read it returns the zero sentinel row instead of an empty
// list; existing clients depend on that shape.
func (s *ConversationService) UnreadCounts(userID uint) ([]models.UnreadCount, error) {
	rows, err := s.conversationRepo.UnreadCounts(userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.UnreadCount{{ConversationID: 0, UnreadCount: 0}}, nil
	}
	return rows, nil
}

// UnreadCountTotals backs the separate totals endpoint; same semantics and
// shape as UnreadCounts, kept as its own aggregation helper.
func (s *ConversationService) UnreadCountTotals(userID uint) ([]models.UnreadCount, error) {
	return s.UnreadCounts(userID)
}

func (s *ConversationService) otherParticipants(conversationID, userID uint) ([]models.UserResponse, error) {
	ids, err := s.ParticipantIDs(conversationID)
	if err != nil {
		return nil, err
	}
	otherIDs := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != userID {
			otherIDs = append(otherIDs, id)
		}
	}
	users, err := s.userRepo.FindByIDs(otherIDs)
	if err != nil {
		return nil, err
	}
	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
