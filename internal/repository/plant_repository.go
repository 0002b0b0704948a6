package repository

import (
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"gorm.io/gorm"
)

type PlantRepository struct {
	db *gorm.DB
}

func NewPlantRepository(db *gorm.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) Create(plant *models.Plant) error {
	return r.db.Create(plant).Error
}

func (r *PlantRepository) FindByID(id uint) (*models.Plant, error) {
	var plant models.Plant
	err := r.db.First(&plant, id).Error
	return &plant, err
}

func (r *PlantRepository) ListByOwner(ownerID uint, skip, limit int) ([]models.Plant, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var plants []models.Plant
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&plants).Error
	return plants, err
}

func (r *PlantRepository) Update(plant *models.Plant) error {
	return r.db.Save(plant).Error
}
