package repository

import (
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"gorm.io/gorm"
)

type CareRepository struct {
	db *gorm.DB
}

func NewCareRepository(db *gorm.DB) *CareRepository {
	return &CareRepository{db: db}
}

func (r *CareRepository) Create(care *models.CareSession) error {
	return r.db.Create(care).Error
}

func (r *CareRepository) FindByID(id uint) (*models.CareSession, error) {
	var care models.CareSession
	err := r.db.First(&care, id).Error
	return &care, err
}

func (r *CareRepository) List(filter CareFilter) ([]models.CareSession, error) {
	query := r.db.Model(&models.CareSession{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CaretakerID != nil {
		query = query.Where("caretaker_id = ?", *filter.CaretakerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var cares []models.CareSession
	err := query.
		Order("created_at DESC").
		Offset(filter.Skip).
		Limit(limit).
		Find(&cares).Error
	return cares, err
}

func (r *CareRepository) Update(care *models.CareSession) error {
	return r.db.Save(care).Error
}
