package repository

import (
	"github.com/greenkeep/greenkeep-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByIDs(ids []uint) ([]models.User, error)
}

// ConversationRepositoryInterface defines the contract for conversation,
// message and read-cursor persistence
type ConversationRepositoryInterface interface {
	CreateConversation(conversation *models.Conversation, participantIDs []uint) error
	FindByID(id uint) (*models.Conversation, error)
	ListForUser(userID uint, skip, limit int) ([]models.Conversation, error)
	CreateMessage(message *models.Message) error
	ListMessages(conversationID uint, skip, limit int) ([]models.Message, error)
	LastMessage(conversationID uint) (*models.Message, error)
	MarkConversationRead(conversationID, userID uint) error
	Participants(conversationID uint) ([]models.ConversationParticipant, error)
	IsParticipant(conversationID, userID uint) (bool, error)
	UnreadCounts(userID uint) ([]models.UnreadCount, error)
	UnreadCountForConversation(conversationID, userID uint) (int64, error)
}

// PresenceRepositoryInterface defines the contract for presence and typing
// status upserts
type PresenceRepositoryInterface interface {
	SetOnline(userID uint, socketID string) error
	SetOffline(userID uint) error
	GetPresence(userID uint) (*models.UserPresence, error)
	UpsertTyping(userID, conversationID uint, isTyping bool) error
	TypingForConversation(conversationID uint) ([]models.UserTypingStatus, error)
}

// CareFilter narrows care-session listings.
type CareFilter struct {
	OwnerID     *uint
	CaretakerID *uint
	Status      *models.CareStatus
	Skip        int
	Limit       int
}

// CareRepositoryInterface defines the contract for care session operations
type CareRepositoryInterface interface {
	Create(care *models.CareSession) error
	FindByID(id uint) (*models.CareSession, error)
	List(filter CareFilter) ([]models.CareSession, error)
	Update(care *models.CareSession) error
}

// AdviceRepositoryInterface defines the contract for botanical advice
// operations
type AdviceRepositoryInterface interface {
	Create(advice *models.Advice) error
	FindByID(id uint) (*models.Advice, error)
	ListByPlant(plantID uint, skip, limit int) ([]models.Advice, error)
	ListByBotanist(botanistID uint, skip, limit int) ([]models.Advice, error)
	Update(advice *models.Advice) error
	Delete(id uint) error
}

// PlantRepositoryInterface defines the contract for plant operations
type PlantRepositoryInterface interface {
	Create(plant *models.Plant) error
	FindByID(id uint) (*models.Plant, error)
	ListByOwner(ownerID uint, skip, limit int) ([]models.Plant, error)
	Update(plant *models.Plant) error
}
