package service

import (
	"errors"
	"strings"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"gorm.io/gorm"
)

type PlantService struct {
	plantRepo repository.PlantRepositoryInterface
}

func NewPlantService(plantRepo repository.PlantRepositoryInterface) *PlantService {
	return &PlantService{plantRepo: plantRepo}
}

func (s *PlantService) Create(ownerID uint, name, species, description string) (*models.Plant, error) {
	plant := &models.Plant{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Species:     strings.TrimSpace(species),
		Description: strings.TrimSpace(description),
	}
	if err := s.plantRepo.Create(plant); err != nil {
		return nil, err
	}
	return plant, nil
}

func (s *PlantService) Get(plantID uint) (*models.Plant, error) {
	plant, err := s.plantRepo.FindByID(plantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, err
	}
	return plant, nil
}

func (s *PlantService) ListByOwner(ownerID uint, skip, limit int) ([]models.Plant, error) {
	return s.plantRepo.ListByOwner(ownerID, skip, limit)
}

// SetPhoto records the stored photo key on the plant; owner only.
func (s *PlantService) SetPhoto(plantID, ownerID uint, photoURL string) (*models.Plant, error) {
	plant, err := s.Get(plantID)
	if err != nil {
		return nil, err
	}
	if plant.OwnerID != ownerID {
		return nil, ErrNotAllowed
	}
	plant.PhotoURL = photoURL
	if err := s.plantRepo.Update(plant); err != nil {
		return nil, err
	}
	return plant, nil
}
