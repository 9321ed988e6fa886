package service

import (
	"testing"

	"tablepick/internal/domain"
	"tablepick/internal/models"
	"tablepick/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCastCreatesFirstVote(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei", "Bistro Montagne")

	svc := NewVoteService(db)
	res, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.VoteID)
}

func TestCastSameCandidateOverwritesTypeInPlace(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei")

	svc := NewVoteService(db)
	first, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	second, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeDislike)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.VoteID, second.VoteID)

	var count int64
	require.NoError(t, db.Model(&models.Vote{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var vote models.Vote
	require.NoError(t, db.First(&vote, "id = ?", first.VoteID).Error)
	assert.Equal(t, domain.VoteTypeDislike, vote.VoteType)
}

func TestCastSwitchingCandidateRetractsPriorVote(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei", "Bistro Montagne")

	svc := NewVoteService(db)
	first, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	second, err := svc.Cast(candidates[1].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.NotEqual(t, first.VoteID, second.VoteID)

	// Only the newest vote survives.
	var votes []models.Vote
	require.NoError(t, db.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, candidates[1].ID, votes[0].CandidateID)

	state, err := svc.UserVote(group.ID, host.ID)
	require.NoError(t, err)
	assert.True(t, state.HasVoted)
	assert.Equal(t, candidates[1].ID, state.CandidateID)
}

func TestCastRejectsUnknownVoteType(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVoteService(db)
	_, err := svc.Cast("whatever", "whoever", "maybe")
	assert.ErrorIs(t, err, ErrInvalidVoteType)
}

func TestCastUnknownCandidateAndUser(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei")

	svc := NewVoteService(db)
	_, err := svc.Cast("missing", host.ID, domain.VoteTypeLike)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
	_, err = svc.Cast(candidates[0].ID, "missing", domain.VoteTypeLike)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTallyCountsVotesPerCandidate(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	group := createGroup(t, db, host, alice, bob)
	rec, candidates := createRecommendation(t, db, group.ID, "Sakura Tei", "Bistro Montagne")

	svc := NewVoteService(db)
	_, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	_, err = svc.Cast(candidates[0].ID, alice.ID, domain.VoteTypeDislike)
	require.NoError(t, err)

	tally, err := svc.Tally(group.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, tally.RecommendationID)
	assert.Equal(t, 3, tally.TotalMembers)
	assert.Equal(t, 2, tally.VotedMembers)
	assert.False(t, tally.Complete)

	require.Len(t, tally.Results, 2)
	byCandidate := map[string]CandidateTally{}
	for _, r := range tally.Results {
		byCandidate[r.CandidateID] = r
	}
	first := byCandidate[candidates[0].ID]
	assert.Equal(t, 2, first.TotalVotes)
	assert.Equal(t, 1, first.VoteSummary[domain.VoteTypeLike])
	assert.Equal(t, 1, first.VoteSummary[domain.VoteTypeDislike])
	assert.Equal(t, 0, byCandidate[candidates[1].ID].TotalVotes)

	_, err = svc.Cast(candidates[1].ID, bob.ID, domain.VoteTypeNeutral)
	require.NoError(t, err)
	tally, err = svc.Tally(group.ID)
	require.NoError(t, err)
	assert.True(t, tally.Complete)
}

func TestTallyCompletenessTracksCurrentMembership(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	alice := createUser(t, db, "alice")
	group := createGroup(t, db, host, alice)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei")

	svc := NewVoteService(db)
	_, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)

	tally, err := svc.Tally(group.ID)
	require.NoError(t, err)
	assert.False(t, tally.Complete)

	// alice leaves; the one existing vote is now enough.
	groups := repository.NewGroupRepository(db)
	require.NoError(t, groups.RemoveMember(group, alice))

	tally, err = svc.Tally(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.TotalMembers)
	assert.True(t, tally.Complete)
}

func TestUserVoteWithoutVote(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	createRecommendation(t, db, group.ID, "Sakura Tei")

	svc := NewVoteService(db)
	state, err := svc.UserVote(group.ID, host.ID)
	require.NoError(t, err)
	assert.False(t, state.HasVoted)
	assert.Empty(t, state.CandidateID)
}

func TestVoteQueriesWithoutRecommendation(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)

	svc := NewVoteService(db)
	_, err := svc.Tally(group.ID)
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
	_, err = svc.UserVote(group.ID, host.ID)
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
}

func TestStorageRejectsSecondLiveVotePerUser(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	rec, candidates := createRecommendation(t, db, group.ID, "Sakura Tei", "Bistro Montagne")

	svc := NewVoteService(db)
	_, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)

	// Writing a sibling-candidate row directly, bypassing the service,
	// must trip the (recommendation, user) unique index.
	err = db.Create(&models.Vote{
		CandidateID:      candidates[1].ID,
		RecommendationID: rec.ID,
		UserID:           host.ID,
		VoteType:         domain.VoteTypeLike,
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.Vote{}).Where("recommendation_id = ? AND user_id = ?", rec.ID, host.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// hideNextVoteRead makes the next prior-vote lookup miss, the way a
// racing transaction's stale snapshot would.
func hideNextVoteRead(t *testing.T, db *gorm.DB) {
	t.Helper()
	done := false
	err := db.Callback().Query().After("gorm:query").Register("hide_vote_read", func(tx *gorm.DB) {
		if done || tx.Statement.Table != "votes" {
			return
		}
		done = true
		tx.AddError(gorm.ErrRecordNotFound)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Callback().Query().Remove("hide_vote_read"))
	})
}

func TestCastRecoversFromStaleReadOnSameCandidate(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei")

	svc := NewVoteService(db)
	first, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)

	// A rapid re-click races the first cast: the prior-vote read misses,
	// the insert collides, and the cast must settle on the update path
	// instead of surfacing the conflict.
	hideNextVoteRead(t, db)
	second, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeDislike)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.VoteID, second.VoteID)

	var count int64
	require.NoError(t, db.Model(&models.Vote{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var vote models.Vote
	require.NoError(t, db.First(&vote, "id = ?", first.VoteID).Error)
	assert.Equal(t, domain.VoteTypeDislike, vote.VoteType)
}

func TestCastRecoversFromStaleReadOnSiblingCandidate(t *testing.T) {
	db := setupTestDB(t)
	host := createUser(t, db, "host")
	group := createGroup(t, db, host)
	_, candidates := createRecommendation(t, db, group.ID, "Sakura Tei", "Bistro Montagne")

	svc := NewVoteService(db)
	_, err := svc.Cast(candidates[0].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)

	// Same race across sibling candidates: after the conflict the cast
	// reruns, retracts the winner, and the user still holds one vote.
	hideNextVoteRead(t, db)
	second, err := svc.Cast(candidates[1].ID, host.ID, domain.VoteTypeLike)
	require.NoError(t, err)
	assert.True(t, second.Created)

	var votes []models.Vote
	require.NoError(t, db.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, candidates[1].ID, votes[0].CandidateID)
	assert.Equal(t, second.VoteID, votes[0].ID)
}
