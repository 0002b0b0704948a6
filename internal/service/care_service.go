package service

import (
	"errors"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"gorm.io/gorm"
)

// CareAcceptedMessage is the system message posted into the new plant-care
// conversation when a request is accepted.
const CareAcceptedMessage = "The care request has been accepted. You can now discuss the details."

type CareService struct {
	careRepo      repository.CareRepositoryInterface
	plantRepo     repository.PlantRepositoryInterface
	conversations *ConversationService
}

func NewCareService(
	careRepo repository.CareRepositoryInterface,
	plantRepo repository.PlantRepositoryInterface,
	conversations *ConversationService,
) *CareService {
	return &CareService{
		careRepo:      careRepo,
		plantRepo:     plantRepo,
		conversations: conversations,
	}
}

type CreateCareInput struct {
	PlantID          uint      `json:"plant_id"`
	CaretakerID      uint      `json:"caretaker_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	CareInstructions string    `json:"care_instructions"`
}

func (s *CareService) Create(ownerID uint, input CreateCareInput) (*models.CareSession, error) {
	plant, err := s.plantRepo.FindByID(input.PlantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, err
	}
	if plant.OwnerID != ownerID {
		return nil, ErrNotAllowed
	}
	if input.CaretakerID == ownerID {
		return nil, ErrNotAllowed
	}

	care := &models.CareSession{
		PlantID:          input.PlantID,
		OwnerID:          ownerID,
		CaretakerID:      input.CaretakerID,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Status:           models.CarePending,
		CareInstructions: input.CareInstructions,
	}
	if err := s.careRepo.Create(care); err != nil {
		return nil, err
	}
	return care, nil
}

func (s *CareService) Get(careID uint) (*models.CareSession, error) {
	care, err := s.careRepo.FindByID(careID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCareNotFound
	}
	if err != nil {
		return nil, err
	}
	return care, nil
}

func (s *CareService) List(filter repository.CareFilter) ([]models.CareSession, error) {
	return s.careRepo.List(filter)
}

// UpdateStatus transitions a care session. Accepting or refusing is the
// caretaker's decision, cancelling is the owner's, and a session only moves
// to in_progress once it has been accepted. Accepting creates the plant-care
// conversation between owner and caretaker, posts the system announcement,
// and links the conversation back onto the session. The existing
// ConversationID is checked first so a retried acceptance does not create a
// second thread.
func (s *CareService) UpdateStatus(careID, actorID uint, status models.CareStatus) (*models.CareSession, error) {
	care, err := s.Get(careID)
	if err != nil {
		return nil, err
	}
	if care.OwnerID != actorID && care.CaretakerID != actorID {
		return nil, ErrNotAllowed
	}

	switch status {
	case models.CareAccepted, models.CareRefused:
		if care.CaretakerID != actorID {
			return nil, ErrNotAllowed
		}
	case models.CareCancelled:
		if care.OwnerID != actorID {
			return nil, ErrNotAllowed
		}
	case models.CareInProgress:
		if care.Status != models.CareAccepted && care.Status != models.CareInProgress {
			return nil, ErrInvalidCareTransition
		}
	}

	previous := care.Status
	care.Status = status

	if status == models.CareAccepted && previous != models.CareAccepted && care.ConversationID == nil {
		conversation, err := s.conversations.CreateConversation(
			[]uint{care.OwnerID, care.CaretakerID},
			models.PlantCareConversation,
			&care.ID,
		)
		if err != nil {
			return nil, err
		}
		if _, err := s.conversations.CreateMessage(conversation.ID, CareAcceptedMessage, nil); err != nil {
			return nil, err
		}
		care.ConversationID = &conversation.ID
	}

	if err := s.careRepo.Update(care); err != nil {
		return nil, err
	}
	return care, nil
}

// AttachPhoto stores a start or end photo URL on the care session. Either
// party may document the plant's condition.
func (s *CareService) AttachPhoto(careID, actorID uint, photoURL string, isEndPhoto bool) (*models.CareSession, error) {
	care, err := s.Get(careID)
	if err != nil {
		return nil, err
	}
	if care.OwnerID != actorID && care.CaretakerID != actorID {
		return nil, ErrNotAllowed
	}

	if isEndPhoto {
		care.EndPhotoURL = photoURL
	} else {
		care.StartPhotoURL = photoURL
	}
	if err := s.careRepo.Update(care); err != nil {
		return nil, err
	}
	return care, nil
}
