package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an anonymous nickname record. There is no account or session;
// the client keeps its user id and presents it on each request.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"user_id"`
	Nickname    string    `gorm:"size:50;not null" json:"nickname"`
	Preferences string    `gorm:"type:text" json:"preferences,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Groups []Group `gorm:"many2many:group_members" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
