package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tablepick/internal/domain"
	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/pkg/hotpepper"

	"gorm.io/gorm"
)

// maxCandidates is how many directory hits become votable candidates.
const maxCandidates = 3

// RecommendationService generates the one-shot candidate set for a
// group and records the host's final decision.
type RecommendationService struct {
	groups     *repository.GroupRepository
	interviews *repository.InterviewRepository
	prefs      *repository.PreferenceRepository
	recs       *repository.RecommendationRepository
	directory  hotpepper.Directory
}

func NewRecommendationService(
	groups *repository.GroupRepository,
	interviews *repository.InterviewRepository,
	prefs *repository.PreferenceRepository,
	recs *repository.RecommendationRepository,
	directory hotpepper.Directory,
) *RecommendationService {
	return &RecommendationService{
		groups:     groups,
		interviews: interviews,
		prefs:      prefs,
		recs:       recs,
		directory:  directory,
	}
}

// Generate creates the group's recommendation once every member has
// completed their interview. A group gets exactly one recommendation,
// ever: the unique index on group_id backstops the pre-check, so two
// concurrent calls cannot both insert.
func (s *RecommendationService) Generate(ctx context.Context, groupID string) (*models.Recommendation, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	memberCount, err := s.groups.MemberCount(groupID)
	if err != nil {
		return nil, err
	}
	completed, err := s.interviews.CountCompleted(groupID)
	if err != nil {
		return nil, err
	}
	if completed < memberCount {
		slog.Info("recommendation blocked on interviews",
			"group_id", groupID, "completed", completed, "members", memberCount)
		return nil, ErrInterviewsIncomplete
	}

	if _, err := s.recs.LatestByGroup(groupID); err == nil {
		return nil, ErrRecommendationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	restaurants, err := s.SearchForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(restaurants) > maxCandidates {
		restaurants = restaurants[:maxCandidates]
	}

	candidates := make([]models.RestaurantCandidate, 0, len(restaurants))
	for _, r := range restaurants {
		candidates = append(candidates, models.RestaurantCandidate{
			Name:         r.Name,
			Address:      r.Address,
			Rating:       r.Rating,
			PriceRange:   r.PriceRange,
			CuisineType:  r.CuisineType,
			Description:  r.Description,
			OpeningHours: r.OpenHours,
			ExternalID:   r.ExternalID,
			ExternalURL:  r.URL,
			ImageURL:     r.ImageURL,
		})
	}

	rec := &models.Recommendation{
		GroupID: group.ID,
		Status:  domain.RecommendationStatusCompleted,
	}
	if err := s.recs.CreateWithCandidates(rec, candidates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race to a concurrent generate call
			return nil, ErrRecommendationExists
		}
		return nil, err
	}
	slog.Info("recommendation created", "group_id", groupID, "candidates", len(candidates))
	return rec, nil
}

// SearchForGroup merges all submitted preferences and runs the
// directory search. Search failures propagate as *hotpepper.SearchError
// for the handler to report; they are never papered over with data.
func (s *RecommendationService) SearchForGroup(ctx context.Context, groupID string) ([]hotpepper.Restaurant, error) {
	prefs, err := s.prefs.ListByGroup(groupID)
	if err != nil {
		return nil, err
	}
	query := MergeGroupPreferences(prefs)
	return s.directory.Search(ctx, query)
}

// MergeGroupPreferences adapts stored preference rows for the merge
// engine. Exposed so the search endpoint can report the merged query it
// used.
func MergeGroupPreferences(prefs []models.SearchPreference) hotpepper.Query {
	in := make([]hotpepper.Preference, 0, len(prefs))
	for _, p := range prefs {
		mp := hotpepper.Preference{
			Lat:         p.Lat,
			Lng:         p.Lng,
			SearchRange: p.SearchRange,
			Keyword:     p.Keywords,
			GenreCodes:  p.GenreCodes,
			BudgetCodes: p.BudgetCodes,
			Amenities:   p.OtherConditions,
		}
		if p.PartyCapacity != nil {
			mp.PartyCapacity = *p.PartyCapacity
		}
		in = append(in, mp)
	}
	return hotpepper.Merge(in)
}

// SetFinalDecision writes the host's pick onto the group's latest
// recommendation. A later write overwrites an earlier one; no history
// is kept.
func (s *RecommendationService) SetFinalDecision(groupID, decidedBy, restaurantID, restaurantName string) (*models.FinalDecisionData, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if !group.IsHost(decidedBy) {
		return nil, ErrNotHost
	}
	rec, err := s.recs.LatestByGroup(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}
	decision := models.FinalDecisionData{
		RestaurantID:   restaurantID,
		RestaurantName: restaurantName,
		DecidedBy:      decidedBy,
		DecidedAt:      time.Now(),
	}
	if err := rec.SetDecision(decision); err != nil {
		return nil, err
	}
	if err := s.recs.Update(rec); err != nil {
		return nil, err
	}
	return &decision, nil
}

// FinalDecision returns the recorded decision, or nil when the group
// has none (including when it has no recommendation yet).
func (s *RecommendationService) FinalDecision(groupID string) (*models.FinalDecisionData, error) {
	rec, err := s.recs.LatestByGroup(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Decision(), nil
}
