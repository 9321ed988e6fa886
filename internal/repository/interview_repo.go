package repository

import (
	"tablepick/internal/domain"
	"tablepick/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// CreateWithOpening stores the interview and its opening assistant turn
// atomically, so a crash between the two writes can never leave an
// in-progress interview with an empty transcript.
func (r *InterviewRepository) CreateWithOpening(i *models.Interview, opening *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(i).Error; err != nil {
			return err
		}
		opening.InterviewID = i.ID
		return tx.Create(opening).Error
	})
}

func (r *InterviewRepository) GetByID(id string) (*models.Interview, error) {
	var i models.Interview
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_number ASC")
	}).First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InterviewRepository) GetByGroupAndUser(groupID, userID string) (*models.Interview, error) {
	var i models.Interview
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_number ASC")
	}).Where("group_id = ? AND user_id = ?", groupID, userID).First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InterviewRepository) Update(i *models.Interview) error {
	return r.db.Save(i).Error
}

func (r *InterviewRepository) ListByGroup(groupID string) ([]models.Interview, error) {
	var list []models.Interview
	err := r.db.Where("group_id = ?", groupID).Find(&list).Error
	return list, err
}

func (r *InterviewRepository) ListByUser(userID string) ([]models.Interview, error) {
	var list []models.Interview
	err := r.db.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *InterviewRepository) Messages(interviewID string) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("interview_id = ?", interviewID).
		Order("sequence_number ASC").Find(&list).Error
	return list, err
}

func (r *InterviewRepository) CreateMessage(m *models.Message) error {
	return r.db.Create(m).Error
}

// CreateExchange appends a user turn and its assistant reply with
// consecutive sequence numbers. Numbering comes from a count taken
// under a lock on the interview row, so concurrent exchanges serialize
// instead of handing out the same number twice.
func (r *InterviewRepository) CreateExchange(interviewID string, userMsg, assistantMsg *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var interview models.Interview
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&interview, "id = ?", interviewID).Error; err != nil {
			return err
		}
		var stored int64
		if err := tx.Model(&models.Message{}).
			Where("interview_id = ?", interviewID).Count(&stored).Error; err != nil {
			return err
		}
		userMsg.InterviewID = interviewID
		userMsg.SequenceNumber = int(stored) + 1
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		assistantMsg.InterviewID = interviewID
		assistantMsg.SequenceNumber = int(stored) + 2
		return tx.Create(assistantMsg).Error
	})
}

func (r *InterviewRepository) CountByGroupAndStatus(groupID, status string) (int64, error) {
	var c int64
	err := r.db.Model(&models.Interview{}).
		Where("group_id = ? AND status = ?", groupID, status).Count(&c).Error
	return c, err
}

// CountCompleted is the gate for recommendation generation.
func (r *InterviewRepository) CountCompleted(groupID string) (int64, error) {
	return r.CountByGroupAndStatus(groupID, domain.InterviewStatusCompleted)
}
