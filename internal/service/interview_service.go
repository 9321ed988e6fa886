package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tablepick/internal/domain"
	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/pkg/openai"

	"gorm.io/gorm"
)

// InterviewService runs the conversational preference capture for one
// member. The extractor is injected so tests can swap in a fake.
type InterviewService struct {
	interviews *repository.InterviewRepository
	groups     *repository.GroupRepository
	users      *repository.UserRepository
	extractor  openai.Extractor
}

func NewInterviewService(
	interviews *repository.InterviewRepository,
	groups *repository.GroupRepository,
	users *repository.UserRepository,
	extractor openai.Extractor,
) *InterviewService {
	return &InterviewService{
		interviews: interviews,
		groups:     groups,
		users:      users,
		extractor:  extractor,
	}
}

// Start creates the member's interview with its opening assistant turn.
// If one already exists for the (group, user) pair it is returned as-is
// rather than treated as an error.
func (s *InterviewService) Start(groupID, userID string) (*models.Interview, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, ErrNotMember
	}

	existing, err := s.interviews.GetByGroupAndUser(groupID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	interview := &models.Interview{
		UserID:  userID,
		GroupID: groupID,
		Status:  domain.InterviewStatusInProgress,
	}
	opening := &models.Message{
		Role:           domain.MessageRoleAssistant,
		Content:        openai.OpeningMessage,
		SequenceNumber: 1,
	}
	if err := s.interviews.CreateWithOpening(interview, opening); err != nil {
		return nil, err
	}
	interview.Messages = []models.Message{*opening}
	return interview, nil
}

func (s *InterviewService) Get(interviewID string) (*models.Interview, error) {
	interview, err := s.interviews.GetByID(interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}
	return interview, nil
}

func (s *InterviewService) ListByGroup(groupID string) ([]models.Interview, error) {
	return s.interviews.ListByGroup(groupID)
}

func (s *InterviewService) ListByUser(userID string) ([]models.Interview, error) {
	return s.interviews.ListByUser(userID)
}

// Chat appends the user's message, asks the extractor for the next
// assistant turn, and stores both with their provenance.
func (s *InterviewService) Chat(ctx context.Context, interviewID, content string) (*models.Message, error) {
	interview, err := s.Get(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status != domain.InterviewStatusInProgress {
		return nil, ErrInterviewNotInProgress
	}

	transcript := make([]openai.Message, 0, len(interview.Messages)+1)
	for _, m := range interview.Messages {
		transcript = append(transcript, openai.Message{Role: m.Role, Content: m.Content})
	}
	transcript = append(transcript, openai.Message{Role: domain.MessageRoleUser, Content: content})

	reply, err := s.extractor.Chat(ctx, transcript)
	if err != nil {
		// Store nothing on extractor failure so the transcript never
		// holds a user turn with no reply.
		return nil, err
	}

	userMsg := &models.Message{
		Role:    domain.MessageRoleUser,
		Content: content,
	}
	assistantMsg := &models.Message{
		Role:     domain.MessageRoleAssistant,
		Content:  reply.Content,
		IsMock:   reply.IsMock,
		AISource: reply.Source,
		AIModel:  reply.Model,
	}
	if err := s.interviews.CreateExchange(interviewID, userMsg, assistantMsg); err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

// Complete analyzes the transcript into a structured preference record
// and closes the interview. Completing twice is a validation error.
func (s *InterviewService) Complete(ctx context.Context, interviewID string) (*models.Interview, openai.Preferences, error) {
	var empty openai.Preferences
	interview, err := s.Get(interviewID)
	if err != nil {
		return nil, empty, err
	}
	if interview.Status == domain.InterviewStatusCompleted {
		return nil, empty, ErrInterviewCompleted
	}

	transcript := make([]openai.Message, 0, len(interview.Messages))
	for _, m := range interview.Messages {
		transcript = append(transcript, openai.Message{Role: m.Role, Content: m.Content})
	}
	prefs, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		// Extraction must not block completion; fall back to an
		// empty record.
		prefs = empty
	}
	summary, err := json.Marshal(prefs)
	if err != nil {
		return nil, empty, err
	}

	now := time.Now()
	interview.Status = domain.InterviewStatusCompleted
	interview.PreferencesSummary = string(summary)
	interview.CompletedAt = &now
	if err := s.interviews.Update(interview); err != nil {
		return nil, empty, err
	}
	return interview, prefs, nil
}

// GroupStatus summarizes interview progress across the group, the gate
// readers poll before generating recommendations.
type GroupStatus struct {
	TotalMembers   int     `json:"total_members"`
	Completed      int     `json:"completed_interviews"`
	InProgress     int     `json:"in_progress_interviews"`
	AllCompleted   bool    `json:"all_completed"`
	CompletionRate float64 `json:"completion_rate"`
}

func (s *InterviewService) StatusForGroup(groupID string) (*GroupStatus, error) {
	if _, err := s.groups.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	members, err := s.groups.MemberCount(groupID)
	if err != nil {
		return nil, err
	}
	completed, err := s.interviews.CountCompleted(groupID)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.interviews.CountByGroupAndStatus(groupID, domain.InterviewStatusInProgress)
	if err != nil {
		return nil, err
	}
	status := &GroupStatus{
		TotalMembers: int(members),
		Completed:    int(completed),
		InProgress:   int(inProgress),
		AllCompleted: completed >= members,
	}
	if members > 0 {
		status.CompletionRate = float64(completed) / float64(members)
	}
	return status, nil
}
