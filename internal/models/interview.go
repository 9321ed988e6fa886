package models

import (
	"time"

	"tablepick/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interview is one member's conversational session for a group. At most
// one per (group, user); starting a second returns the first.
type Interview struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"interview_id"`
	UserID             string     `gorm:"size:36;not null;index:idx_interview_group_user,unique" json:"user_id"`
	GroupID            string     `gorm:"size:36;not null;index:idx_interview_group_user,unique" json:"group_id"`
	Status             string     `gorm:"size:20;not null;default:pending" json:"status"`
	PreferencesSummary string     `gorm:"type:text" json:"preferences_summary,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Group    Group     `gorm:"foreignKey:GroupID" json:"-"`
	Messages []Message `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (i *Interview) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = domain.InterviewStatusPending
	}
	return nil
}

// Message is one turn of an interview transcript. SequenceNumber fixes
// the order; AISource/AIModel/IsMock record where assistant turns came
// from (live API vs the scripted interviewer).
type Message struct {
	ID             string    `gorm:"primaryKey;size:36" json:"message_id"`
	InterviewID    string    `gorm:"size:36;not null;index" json:"interview_id"`
	Role           string    `gorm:"size:10;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	SequenceNumber int       `gorm:"not null" json:"sequence_number"`
	IsMock         bool      `json:"-"`
	AISource       string    `gorm:"size:20" json:"-"`
	AIModel        string    `gorm:"size:50" json:"-"`
	CreatedAt      time.Time `json:"created_at"`

	Interview Interview `gorm:"foreignKey:InterviewID" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
