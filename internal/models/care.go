package models

import (
	"time"

	"gorm.io/gorm"
)

type CareStatus string

const (
	CarePending    CareStatus = "pending"
	CareAccepted   CareStatus = "accepted"
	CareRefused    CareStatus = "refused"
	CareInProgress CareStatus = "in_progress"
	CareCompleted  CareStatus = "completed"
	CareCancelled  CareStatus = "cancelled"
)

// CareSession is a plant-sitting engagement between an owner and a caretaker.
// ConversationID is set once, when the request is accepted and the matching
// plant-care conversation is created.
type CareSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PlantID     uint `gorm:"not null;index" json:"plant_id"`
	OwnerID     uint `gorm:"not null;index" json:"owner_id"`
	CaretakerID uint `gorm:"not null;index" json:"caretaker_id"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   time.Time  `gorm:"not null" json:"end_date"`
	Status    CareStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CareInstructions string `gorm:"type:text" json:"care_instructions"`
	StartPhotoURL    string `json:"start_photo_url"`
	EndPhotoURL      string `json:"end_photo_url"`

	ConversationID *uint `gorm:"index" json:"conversation_id"`
}

type CareSessionResponse struct {
	ID               uint       `json:"id"`
	PlantID          uint       `json:"plant_id"`
	OwnerID          uint       `json:"owner_id"`
	CaretakerID      uint       `json:"caretaker_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Status           CareStatus `json:"status"`
	CareInstructions string     `json:"care_instructions"`
	StartPhotoURL    string     `json:"start_photo_url"`
	EndPhotoURL      string     `json:"end_photo_url"`
	ConversationID   *uint      `json:"conversation_id"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (c *CareSession) ToResponse() CareSessionResponse {
	return CareSessionResponse{
		ID:               c.ID,
		PlantID:          c.PlantID,
		OwnerID:          c.OwnerID,
		CaretakerID:      c.CaretakerID,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		Status:           c.Status,
		CareInstructions: c.CareInstructions,
		StartPhotoURL:    c.StartPhotoURL,
		EndPhotoURL:      c.EndPhotoURL,
		ConversationID:   c.ConversationID,
		CreatedAt:        c.CreatedAt,
	}
}

// CareSessionSummary is the compact shape embedded in conversation lists.
type CareSessionSummary struct {
	ID        uint       `json:"id"`
	PlantID   uint       `json:"plant_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    CareStatus `json:"status"`
}

func (c *CareSession) ToSummary() CareSessionSummary {
	return CareSessionSummary{
		ID:        c.ID,
		PlantID:   c.PlantID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Status:    c.Status,
	}
}
