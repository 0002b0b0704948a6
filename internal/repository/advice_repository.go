package repository

import (
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"gorm.io/gorm"
)

type AdviceRepository struct {
	db *gorm.DB
}

func NewAdviceRepository(db *gorm.DB) *AdviceRepository {
	return &AdviceRepository{db: db}
}

func (r *AdviceRepository) Create(advice *models.Advice) error {
	return r.db.Create(advice).Error
}

func (r *AdviceRepository) FindByID(id uint) (*models.Advice, error) {
	var advice models.Advice
	err := r.db.First(&advice, id).Error
	return &advice, err
}

func (r *AdviceRepository) ListByPlant(plantID uint, skip, limit int) ([]models.Advice, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var advices []models.Advice
	err := r.db.
		Where("plant_id = ?", plantID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&advices).Error
	return advices, err
}

func (r *AdviceRepository) ListByBotanist(botanistID uint, skip, limit int) ([]models.Advice, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var advices []models.Advice
	err := r.db.
		Where("botanist_id = ?", botanistID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&advices).Error
	return advices, err
}

func (r *AdviceRepository) Update(advice *models.Advice) error {
	return r.db.Save(advice).Error
}

func (r *AdviceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Advice{}, id).Error
}
