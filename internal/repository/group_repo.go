package repository

import (
	"tablepick/internal/models"

	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(g *models.Group) error {
	return r.db.Create(g).Error
}

func (r *GroupRepository) GetByID(id string) (*models.Group, error) {
	var g models.Group
	if err := r.db.Preload("Members").First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) GetByInviteCode(code string) (*models.Group, error) {
	var g models.Group
	if err := r.db.Preload("Members").First(&g, "invite_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) Update(g *models.Group) error {
	return r.db.Save(g).Error
}

func (r *GroupRepository) AddMember(group *models.Group, user *models.User) error {
	return r.db.Model(group).Association("Members").Append(user)
}

func (r *GroupRepository) RemoveMember(group *models.Group, user *models.User) error {
	return r.db.Model(group).Association("Members").Delete(user)
}

// MemberCount counts the join table directly rather than relying on a
// preloaded slice; voting completeness depends on the current count.
func (r *GroupRepository) MemberCount(groupID string) (int64, error) {
	var c int64
	err := r.db.Table("group_members").Where("group_id = ?", groupID).Count(&c).Error
	return c, err
}

func (r *GroupRepository) IsMember(groupID, userID string) (bool, error) {
	var c int64
	err := r.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&c).Error
	return c > 0, err
}
