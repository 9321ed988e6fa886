package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AmenityFlags is an open map of boolean venue conditions (wifi,
// private_room, non_smoking, ...) stored as a JSON text column.
type AmenityFlags map[string]bool

func (f AmenityFlags) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *AmenityFlags) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("amenity flags: unsupported type %T", value)
	}
	if len(data) == 0 {
		*f = nil
		return nil
	}
	return json.Unmarshal(data, f)
}

// SearchPreference holds one member's search constraints for a group.
// There is at most one row per (group, user); resubmission replaces it.
type SearchPreference struct {
	ID      string `gorm:"primaryKey;size:36" json:"preference_id"`
	GroupID string `gorm:"size:36;not null;index:idx_pref_group_user,unique" json:"group_id"`
	UserID  string `gorm:"size:36;not null;index:idx_pref_group_user,unique" json:"user_id"`

	LocationKeyword string   `gorm:"size:255" json:"location_keyword,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	SearchRange     int      `gorm:"default:3" json:"search_range"`

	GenreCodes         string `gorm:"type:text" json:"genre_codes,omitempty"`
	CuisinePreferences string `gorm:"type:text" json:"cuisine_preferences,omitempty"`

	BudgetCodes string `gorm:"type:text" json:"budget_codes,omitempty"`
	BudgetMin   *int   `json:"budget_min,omitempty"`
	BudgetMax   *int   `json:"budget_max,omitempty"`

	PartyCapacity     *int       `json:"party_capacity,omitempty"`
	PreferredDatetime *time.Time `json:"preferred_datetime,omitempty"`

	Keywords        string       `gorm:"type:text" json:"keywords,omitempty"`
	OtherConditions AmenityFlags `gorm:"type:text" json:"other_conditions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (SearchPreference) TableName() string { return "search_preferences" }

func (p *SearchPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
