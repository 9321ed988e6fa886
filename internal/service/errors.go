package service

import "errors"

// Sentinel errors handlers map onto HTTP statuses: not-found and
// validation surface immediately, conflicts come from idempotency
// rules, upstream errors wrap a typed gateway failure.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrGroupNotFound          = errors.New("group not found")
	ErrCandidateNotFound      = errors.New("restaurant candidate not found")
	ErrRecommendationNotFound = errors.New("no recommendation found for this group")
	ErrInterviewNotFound      = errors.New("interview not found")

	ErrInvalidVoteType        = errors.New("invalid vote type: must be like, dislike or neutral")
	ErrNotMember              = errors.New("user is not a member of this group")
	ErrNotHost                = errors.New("only the group host can make the final decision")
	ErrInterviewNotInProgress = errors.New("interview is not in progress")
	ErrInterviewCompleted     = errors.New("interview is already completed")

	ErrRecommendationExists = errors.New("recommendation already exists for this group")
	ErrInterviewsIncomplete = errors.New("all members must complete their interviews first")
	ErrNoPreferences        = errors.New("no search preferences submitted for this group")
)
