package service

import (
	"errors"
	"time"

	"tablepick/internal/domain"
	"tablepick/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// castAttempts bounds the retry loop when two casts race to insert the
// first vote for the same (recommendation, user).
const castAttempts = 3

// VoteService enforces the single-live-vote rule: one user holds at
// most one vote across all candidates of a recommendation. It works on
// the *gorm.DB directly because the retract/update/insert sequence must
// run inside one transaction.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// CastResult reports what a cast did and the resulting vote identity.
type CastResult struct {
	VoteID  string
	Created bool
}

// Cast records userID's vote on candidateID. Voting for a different
// candidate of the same recommendation silently retracts the prior
// vote; re-voting the same candidate overwrites the type in place.
func (s *VoteService) Cast(candidateID, userID, voteType string) (*CastResult, error) {
	if !domain.ValidVoteType(voteType) {
		return nil, ErrInvalidVoteType
	}

	var result CastResult
	var err error
	for attempt := 0; attempt < castAttempts; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			return s.cast(tx, candidateID, userID, voteType, &result)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// Lost an insert race. Rerun against the committed winner so
		// the cast lands on the update or retract path instead.
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *VoteService) cast(tx *gorm.DB, candidateID, userID, voteType string, result *CastResult) error {
	var candidate models.RestaurantCandidate
	if err := tx.First(&candidate, "id = ?", candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCandidateNotFound
		}
		return err
	}
	// The user row is the serialization point: concurrent casts by the
	// same user queue on this lock instead of each acting on a stale
	// snapshot of the vote table.
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Retract a live vote on any sibling candidate first.
	var prior models.Vote
	err := tx.Where("recommendation_id = ? AND user_id = ?", candidate.RecommendationID, userID).
		First(&prior).Error
	switch {
	case err == nil:
		if prior.CandidateID == candidateID {
			prior.VoteType = voteType
			prior.UpdatedAt = time.Now()
			if err := tx.Save(&prior).Error; err != nil {
				return err
			}
			*result = CastResult{VoteID: prior.ID, Created: false}
			return nil
		}
		if err := tx.Delete(&models.Vote{}, "id = ?", prior.ID).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first vote in this recommendation
	default:
		return err
	}

	vote := models.Vote{
		CandidateID:      candidateID,
		RecommendationID: candidate.RecommendationID,
		UserID:           userID,
		VoteType:         voteType,
	}
	if err := tx.Create(&vote).Error; err != nil {
		return err
	}
	*result = CastResult{VoteID: vote.ID, Created: true}
	return nil
}

// CandidateTally is the per-candidate vote breakdown.
type CandidateTally struct {
	CandidateID string         `json:"candidate_id"`
	Name        string         `json:"name"`
	VoteSummary map[string]int `json:"vote_summary"`
	TotalVotes  int            `json:"total_votes"`
}

// TallyResult covers the whole recommendation. Complete is recomputed
// against the current member count on every call, never cached, because
// membership can change while voting is open.
type TallyResult struct {
	GroupID          string           `json:"group_id"`
	RecommendationID string           `json:"recommendation_id"`
	Results          []CandidateTally `json:"vote_results"`
	TotalMembers     int              `json:"total_members"`
	VotedMembers     int              `json:"voted_members"`
	Complete         bool             `json:"is_voting_complete"`
}

func (s *VoteService) Tally(groupID string) (*TallyResult, error) {
	rec, err := s.latestRecommendation(groupID)
	if err != nil {
		return nil, err
	}
	var memberCount int64
	if err := s.db.Table("group_members").Where("group_id = ?", groupID).Count(&memberCount).Error; err != nil {
		return nil, err
	}

	voters := map[string]struct{}{}
	results := make([]CandidateTally, 0, len(rec.Candidates))
	for _, candidate := range rec.Candidates {
		var votes []models.Vote
		if err := s.db.Where("candidate_id = ?", candidate.ID).Find(&votes).Error; err != nil {
			return nil, err
		}
		summary := map[string]int{
			domain.VoteTypeLike:    0,
			domain.VoteTypeDislike: 0,
			domain.VoteTypeNeutral: 0,
		}
		for _, v := range votes {
			summary[v.VoteType]++
			voters[v.UserID] = struct{}{}
		}
		results = append(results, CandidateTally{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			VoteSummary: summary,
			TotalVotes:  len(votes),
		})
	}

	return &TallyResult{
		GroupID:          groupID,
		RecommendationID: rec.ID,
		Results:          results,
		TotalMembers:     int(memberCount),
		VotedMembers:     len(voters),
		Complete:         len(voters) >= int(memberCount),
	}, nil
}

// VoteState is one user's current position within a recommendation.
type VoteState struct {
	HasVoted    bool   `json:"has_voted"`
	CandidateID string `json:"voted_candidate_id,omitempty"`
	VoteType    string `json:"vote_type,omitempty"`
	VoteID      string `json:"vote_id,omitempty"`
}

// UserVote reflects retractions immediately: after a candidate switch
// only the newest vote is ever visible here.
func (s *VoteService) UserVote(groupID, userID string) (*VoteState, error) {
	rec, err := s.latestRecommendation(groupID)
	if err != nil {
		return nil, err
	}
	var vote models.Vote
	err = s.db.Where("recommendation_id = ? AND user_id = ?", rec.ID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VoteState{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &VoteState{
		HasVoted:    true,
		CandidateID: vote.CandidateID,
		VoteType:    vote.VoteType,
		VoteID:      vote.ID,
	}, nil
}

func (s *VoteService) latestRecommendation(groupID string) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := s.db.Preload("Candidates").
		Where("group_id = ?", groupID).
		Order("created_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecommendationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
