package domain

const (
	GroupStatusActive    = "active"
	GroupStatusCompleted = "completed"
	GroupStatusCancelled = "cancelled"
)

const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusCancelled  = "cancelled"
)

const (
	MessageRoleSystem    = "system"
	MessageRoleAssistant = "assistant"
	MessageRoleUser      = "user"
)

const (
	HearingStatusPending   = "pending"
	HearingStatusCompleted = "completed"
	HearingStatusSkipped   = "skipped"
)

const (
	RecommendationStatusPending   = "pending"
	RecommendationStatusActive    = "active"
	RecommendationStatusCompleted = "completed"
	RecommendationStatusCancelled = "cancelled"
)

const (
	VoteTypeLike    = "like"
	VoteTypeDislike = "dislike"
	VoteTypeNeutral = "neutral"
)

// ValidVoteType reports whether v is one of the three vote types.
func ValidVoteType(v string) bool {
	return v == VoteTypeLike || v == VoteTypeDislike || v == VoteTypeNeutral
}

// Search radius tiers accepted by the directory API (300m .. 3000m).
const (
	SearchRangeMin     = 1
	SearchRangeMax     = 5
	SearchRangeDefault = 3
)

const InviteCodeLength = 6
