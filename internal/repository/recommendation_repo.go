package repository

import (
	"tablepick/internal/models"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// CreateWithCandidates inserts the recommendation and its candidate set
// atomically. A duplicate group surfaces as gorm.ErrDuplicatedKey via
// the unique index on group_id.
func (r *RecommendationRepository) CreateWithCandidates(rec *models.Recommendation, candidates []models.RestaurantCandidate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		for i := range candidates {
			candidates[i].RecommendationID = rec.ID
			if err := tx.Create(&candidates[i]).Error; err != nil {
				return err
			}
		}
		rec.Candidates = candidates
		return nil
	})
}

func (r *RecommendationRepository) GetByID(id string) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := r.db.Preload("Candidates").First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestByGroup returns the group's most recent recommendation with its
// candidates. With the one-per-group rule there is at most one, but
// readers still order by creation time rather than assume it.
func (r *RecommendationRepository) LatestByGroup(groupID string) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := r.db.Preload("Candidates").
		Where("group_id = ?", groupID).
		Order("created_at DESC").First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecommendationRepository) Update(rec *models.Recommendation) error {
	return r.db.Save(rec).Error
}

func (r *RecommendationRepository) GetCandidate(id string) (*models.RestaurantCandidate, error) {
	var c models.RestaurantCandidate
	if err := r.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
