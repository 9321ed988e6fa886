package repository

import (
	"tablepick/internal/models"

	"gorm.io/gorm"
)

type HearingRepository struct {
	db *gorm.DB
}

func NewHearingRepository(db *gorm.DB) *HearingRepository {
	return &HearingRepository{db: db}
}

func (r *HearingRepository) Create(h *models.Hearing) error {
	return r.db.Create(h).Error
}

func (r *HearingRepository) GetByID(id string) (*models.Hearing, error) {
	var h models.Hearing
	if err := r.db.First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HearingRepository) Update(h *models.Hearing) error {
	return r.db.Save(h).Error
}

func (r *HearingRepository) ListByGroup(groupID string) ([]models.Hearing, error) {
	var list []models.Hearing
	err := r.db.Where("group_id = ?", groupID).Find(&list).Error
	return list, err
}

func (r *HearingRepository) ListByUser(userID string) ([]models.Hearing, error) {
	var list []models.Hearing
	err := r.db.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *HearingRepository) ListByGroupAndUser(groupID, userID string) ([]models.Hearing, error) {
	var list []models.Hearing
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Find(&list).Error
	return list, err
}
