package models

import (
	"time"

	"gorm.io/gorm"
)

type Plant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Name        string `gorm:"not null" json:"name"`
	Species     string `json:"species"`
	Description string `gorm:"type:text" json:"description"`
	PhotoURL    string `json:"photo_url"`

	Cares []CareSession `gorm:"foreignKey:PlantID" json:"-"`
}

type PlantResponse struct {
	ID          uint      `json:"id"`
	OwnerID     uint      `json:"owner_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Plant) ToResponse() PlantResponse {
	return PlantResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Species:     p.Species,
		Description: p.Description,
		PhotoURL:    p.PhotoURL,
		CreatedAt:   p.CreatedAt,
	}
}
