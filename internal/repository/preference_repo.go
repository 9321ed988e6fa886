package repository

import (
	"tablepick/internal/models"

	"gorm.io/gorm"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Replace drops any prior row for the (group, user) pair and stores the
// new one in the same transaction. No preference history is kept.
func (r *PreferenceRepository) Replace(p *models.SearchPreference) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ? AND user_id = ?", p.GroupID, p.UserID).
			Delete(&models.SearchPreference{}).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (r *PreferenceRepository) GetByGroupAndUser(groupID, userID string) (*models.SearchPreference, error) {
	var p models.SearchPreference
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByGroup reads all preference rows for a group in one query, so the
// merge engine always sees a consistent snapshot.
func (r *PreferenceRepository) ListByGroup(groupID string) ([]models.SearchPreference, error) {
	var list []models.SearchPreference
	err := r.db.Where("group_id = ?", groupID).Find(&list).Error
	return list, err
}

func (r *PreferenceRepository) Update(p *models.SearchPreference) error {
	return r.db.Save(p).Error
}
