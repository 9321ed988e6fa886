package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"tablepick/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID         string    `gorm:"primaryKey;size:36" json:"group_id"`
	Name       string    `gorm:"size:255" json:"name"`
	HostUserID string    `gorm:"size:36;not null;index" json:"host_user_id"`
	InviteCode string    `gorm:"uniqueIndex;size:6;not null" json:"invite_code"`
	Status     string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Host    User   `gorm:"foreignKey:HostUserID" json:"-"`
	Members []User `gorm:"many2many:group_members" json:"members,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.InviteCode == "" {
		code, err := GenerateInviteCode()
		if err != nil {
			return err
		}
		g.InviteCode = code
	}
	if g.Status == "" {
		g.Status = domain.GroupStatusActive
	}
	return nil
}

func (g *Group) IsHost(userID string) bool { return g.HostUserID == userID }

// HasMember checks the preloaded Members slice.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns a random 6-character join token.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, domain.InviteCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = inviteAlphabet[n.Int64()]
	}
	return string(buf), nil
}
