package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/cache"
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"gorm.io/gorm"
)

// TypingFreshnessWindow is how long a typing signal stays valid without being
// renewed. Rows older than this are excluded at read time rather than swept by
// a background job.
const TypingFreshnessWindow = 30 * time.Second

type PresenceService struct {
	presenceRepo  repository.PresenceRepositoryInterface
	presenceCache *cache.PresenceCache
}

func NewPresenceService(presenceRepo repository.PresenceRepositoryInterface, presenceCache *cache.PresenceCache) *PresenceService {
	return &PresenceService{
		presenceRepo:  presenceRepo,
		presenceCache: presenceCache,
	}
}

func (s *PresenceService) SetOnline(userID uint, socketID string) error {
	if err := s.presenceCache.SetUserOnline(userID); err != nil {
		slog.Warn("failed to mark user online in cache", "user_id", userID, "error", err)
	}
	return s.presenceRepo.SetOnline(userID, socketID)
}

// SetOffline is only called once the connection registry reports zero
// remaining connections for the user.
func (s *PresenceService) SetOffline(userID uint) error {
	if err := s.presenceCache.SetUserOffline(userID); err != nil {
		slog.Warn("failed to mark user offline in cache", "user_id", userID, "error", err)
	}
	return s.presenceRepo.SetOffline(userID)
}

func (s *PresenceService) GetPresence(userID uint) (*models.UserPresence, error) {
	presence, err := s.presenceRepo.GetPresence(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No row yet means the user has never connected.
		return &models.UserPresence{UserID: userID, Status: models.StatusOffline}, nil
	}
	return presence, err
}

func (s *PresenceService) IsOnline(userID uint) bool {
	if s.presenceCache.IsUserOnline(userID) {
		return true
	}
	presence, err := s.presenceRepo.GetPresence(userID)
	if err != nil {
		return false
	}
	return presence.Status == models.StatusOnline
}

func (s *PresenceService) SetTyping(userID, conversationID uint, isTyping bool) error {
	return s.presenceRepo.UpsertTyping(userID, conversationID, isTyping)
}

// TypingUsers returns the users currently typing in the conversation. Rows
// outside the freshness window are excluded, not deleted.
func (s *PresenceService) TypingUsers(conversationID uint) ([]models.TypingUserResponse, error) {
	rows, err := s.presenceRepo.TypingForConversation(conversationID)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().Add(-TypingFreshnessWindow)
	typing := make([]models.TypingUserResponse, 0, len(rows))
	for i := range rows {
		if rows[i].IsTyping && rows[i].LastTypedAt.After(cutoff) {
			typing = append(typing, rows[i].ToResponse())
		}
	}
	return typing, nil
}
