package models

import (
	"time"

	"tablepick/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hearing is a single question/answer record, the pre-interview flow.
type Hearing struct {
	ID        string    `gorm:"primaryKey;size:36" json:"hearing_id"`
	GroupID   string    `gorm:"size:36;not null;index" json:"group_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text" json:"answer,omitempty"`
	Status    string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (h *Hearing) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Status == "" {
		h.Status = domain.HearingStatusPending
	}
	return nil
}
