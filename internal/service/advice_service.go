package service

import (
	"errors"
	"strings"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"gorm.io/gorm"
)

// AdviceService manages botanical advice: botanists write care notes for
// plants, and advice goes through a botanist review before it counts as
// validated.
type AdviceService struct {
	adviceRepo repository.AdviceRepositoryInterface
	plantRepo  repository.PlantRepositoryInterface
	userRepo   repository.UserRepositoryInterface
}

func NewAdviceService(
	adviceRepo repository.AdviceRepositoryInterface,
	plantRepo repository.PlantRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *AdviceService {
	return &AdviceService{
		adviceRepo: adviceRepo,
		plantRepo:  plantRepo,
		userRepo:   userRepo,
	}
}

// Create writes a new advice for the plant. Only botanist accounts may
// author advice; everyone can read it.
func (s *AdviceService) Create(botanistID, plantID uint, content string) (*models.Advice, error) {
	botanist, err := s.userRepo.FindByID(botanistID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotBotanist
	}
	if err != nil {
		return nil, err
	}
	if !botanist.IsBotanist {
		return nil, ErrNotBotanist
	}

	if _, err := s.plantRepo.FindByID(plantID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	} else if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	advice := &models.Advice{
		PlantID:    plantID,
		BotanistID: botanistID,
		Content:    content,
		Status:     models.AdvicePending,
	}
	if err := s.adviceRepo.Create(advice); err != nil {
		return nil, err
	}
	return advice, nil
}

func (s *AdviceService) Get(adviceID uint) (*models.Advice, error) {
	advice, err := s.adviceRepo.FindByID(adviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return advice, nil
}

func (s *AdviceService) ListByPlant(plantID uint, skip, limit int) ([]models.Advice, error) {
	return s.adviceRepo.ListByPlant(plantID, skip, limit)
}

func (s *AdviceService) ListByBotanist(botanistID uint, skip, limit int) ([]models.Advice, error) {
	return s.adviceRepo.ListByBotanist(botanistID, skip, limit)
}

// Update rewrites the advice text. Only the authoring botanist may edit, and
// an edited advice goes back to pending review.
func (s *AdviceService) Update(adviceID, actorID uint, content string) (*models.Advice, error) {
	advice, err := s.Get(adviceID)
	if err != nil {
		return nil, err
	}
	if advice.BotanistID != actorID {
		return nil, ErrNotAllowed
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	advice.Content = content
	advice.Status = models.AdvicePending
	if err := s.adviceRepo.Update(advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// Validate records a botanist's review verdict. Any botanist may review,
// including on their colleagues' advice.
func (s *AdviceService) Validate(adviceID, actorID uint, status models.AdviceStatus) (*models.Advice, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotBotanist
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsBotanist {
		return nil, ErrNotBotanist
	}

	advice, err := s.Get(adviceID)
	if err != nil {
		return nil, err
	}
	advice.Status = status
	if err := s.adviceRepo.Update(advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// Delete removes the advice. Author only.
func (s *AdviceService) Delete(adviceID, actorID uint) error {
	advice, err := s.Get(adviceID)
	if err != nil {
		return err
	}
	if advice.BotanistID != actorID {
		return ErrNotAllowed
	}
	return s.adviceRepo.Delete(adviceID)
}
