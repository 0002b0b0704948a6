package models

import (
	"time"

	"gorm.io/gorm"
)

type AdviceStatus string

const (
	AdvicePending   AdviceStatus = "pending"
	AdviceValidated AdviceStatus = "validated"
	AdviceRejected  AdviceStatus = "rejected"
)

// Advice is a botanist's care note for a plant. It starts pending and is
// validated or rejected by a botanist review. A botanical-advice conversation
// may reference an advice row through its RelatedID.
type Advice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PlantID    uint         `gorm:"not null;index" json:"plant_id"`
	BotanistID uint         `gorm:"not null;index" json:"botanist_id"`
	Content    string       `gorm:"type:text;not null" json:"content"`
	Status     AdviceStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
}

type AdviceResponse struct {
	ID         uint         `json:"id"`
	PlantID    uint         `json:"plant_id"`
	BotanistID uint         `json:"botanist_id"`
	Content    string       `json:"content"`
	Status     AdviceStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (a *Advice) ToResponse() AdviceResponse {
	return AdviceResponse{
		ID:         a.ID,
		PlantID:    a.PlantID,
		BotanistID: a.BotanistID,
		Content:    a.Content,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
