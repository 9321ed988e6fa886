package models

import (
	"encoding/json"
	"time"

	"tablepick/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recommendation is the candidate set generated once for a group. The
// unique index on GroupID enforces the one-shot rule: regeneration is a
// conflict even after the first set has gone stale.
type Recommendation struct {
	ID            string    `gorm:"primaryKey;size:36" json:"recommendation_id"`
	GroupID       string    `gorm:"uniqueIndex;size:36;not null" json:"group_id"`
	Status        string    `gorm:"size:20;not null;default:pending" json:"status"`
	FinalDecision string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Group      Group                 `gorm:"foreignKey:GroupID" json:"-"`
	Candidates []RestaurantCandidate `gorm:"foreignKey:RecommendationID" json:"candidates,omitempty"`
}

func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = domain.RecommendationStatusPending
	}
	return nil
}

// FinalDecisionData is the host's final pick, stored as JSON on the
// recommendation row. A second write overwrites the first; no history.
type FinalDecisionData struct {
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	DecidedBy      string    `json:"decided_by"`
	DecidedAt      time.Time `json:"decided_at"`
}

// Decision unmarshals the stored final decision, or returns nil when
// none has been recorded.
func (r *Recommendation) Decision() *FinalDecisionData {
	if r.FinalDecision == "" {
		return nil
	}
	var d FinalDecisionData
	if err := json.Unmarshal([]byte(r.FinalDecision), &d); err != nil {
		return nil
	}
	return &d
}

// SetDecision serializes d onto the row (not persisted by itself).
func (r *Recommendation) SetDecision(d FinalDecisionData) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.FinalDecision = string(raw)
	return nil
}

// RestaurantCandidate is one venue option attached to a recommendation.
type RestaurantCandidate struct {
	ID               string    `gorm:"primaryKey;size:36" json:"candidate_id"`
	RecommendationID string    `gorm:"size:36;not null;index" json:"recommendation_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Address          string    `gorm:"type:text" json:"address,omitempty"`
	Phone            string    `gorm:"size:20" json:"phone,omitempty"`
	Rating           float64   `json:"rating"`
	PriceRange       string    `gorm:"size:50" json:"price_range,omitempty"`
	CuisineType      string    `gorm:"size:100" json:"cuisine_type,omitempty"`
	Description      string    `gorm:"type:text" json:"description,omitempty"`
	OpeningHours     string    `gorm:"size:200" json:"opening_hours,omitempty"`
	Area             string    `gorm:"size:100" json:"area,omitempty"`
	ExternalID       string    `gorm:"size:255" json:"external_id,omitempty"`
	ExternalURL      string    `gorm:"size:500" json:"external_url,omitempty"`
	ImageURL         string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`

	Recommendation Recommendation `gorm:"foreignKey:RecommendationID" json:"-"`
	Votes          []Vote         `gorm:"foreignKey:CandidateID" json:"-"`
}

func (RestaurantCandidate) TableName() string { return "restaurant_candidates" }

func (c *RestaurantCandidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Vote is a user's reaction to one candidate. RecommendationID is
// denormalized from the candidate so the unique (recommendation, user)
// index can enforce the single-live-vote rule in storage: no interleave
// of concurrent casts can leave one user with two live votes.
type Vote struct {
	ID               string    `gorm:"primaryKey;size:36" json:"vote_id"`
	CandidateID      string    `gorm:"size:36;not null;index" json:"candidate_id"`
	RecommendationID string    `gorm:"size:36;not null;index:idx_vote_recommendation_user,unique" json:"recommendation_id"`
	UserID           string    `gorm:"size:36;not null;index:idx_vote_recommendation_user,unique" json:"user_id"`
	VoteType         string    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Candidate RestaurantCandidate `gorm:"foreignKey:CandidateID" json:"-"`
	User      User                `gorm:"foreignKey:UserID" json:"-"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
