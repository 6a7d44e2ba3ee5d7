package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

func TestComputeResults_StillActive(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	election := seedElection(t, s.db, models.StatusActive, alice.ID)

	_, err := s.tally.ComputeResults(context.Background(), election.ID)
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPrecondition))
}

func TestComputeResults_ZeroVotes(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	bob := seedUser(t, s.db, "Bob")
	election := seedElection(t, s.db, models.StatusFinished, alice.ID, bob.ID)

	tally, err := s.tally.ComputeResults(context.Background(), election.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), tally.TotalVotes)
	require.Len(t, tally.Results, 2)
	for _, r := range tally.Results {
		assert.Equal(t, int64(0), r.VoteCount)
		assert.Equal(t, 0.0, r.Percentage)
	}
	// 零票选举没有胜者
	assert.Empty(t, tally.Winners)
	assert.True(t, tally.Finalized)
}

func TestComputeResults_RankingAndPercentages(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	bob := seedUser(t, s.db, "Bob")
	carol := seedUser(t, s.db, "Carol")
	election := seedElection(t, s.db, models.StatusActive, alice.ID, bob.ID, carol.ID)

	// Alice 3票, Bob 1票, Carol 0票
	castVotes(t, s.votes, election.ID, alice.ID, 100, 101, 102)
	castVotes(t, s.votes, election.ID, bob.ID, 103)

	require.NoError(t, s.db.Model(&models.Election{}).Where("id = ?", election.ID).
		Update("status", models.StatusFinished).Error)

	tally, err := s.tally.ComputeResults(context.Background(), election.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), tally.TotalVotes)
	require.Len(t, tally.Results, 3)

	// 票数降序
	assert.Equal(t, alice.ID, tally.Results[0].CandidateID)
	assert.Equal(t, "Alice", tally.Results[0].Name)
	assert.Equal(t, int64(3), tally.Results[0].VoteCount)
	assert.Equal(t, 75.0, tally.Results[0].Percentage)

	assert.Equal(t, bob.ID, tally.Results[1].CandidateID)
	assert.Equal(t, 25.0, tally.Results[1].Percentage)

	assert.Equal(t, carol.ID, tally.Results[2].CandidateID)
	assert.Equal(t, int64(0), tally.Results[2].VoteCount)
	assert.Equal(t, 0.0, tally.Results[2].Percentage)

	// 百分比合计在舍入容差内等于100
	var sum float64
	for _, r := range tally.Results {
		sum += r.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.01*float64(len(tally.Results)))

	// 唯一胜者
	require.Len(t, tally.Winners, 1)
	assert.Equal(t, alice.ID, tally.Winners[0].CandidateID)
}

func TestComputeResults_Tie(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	bob := seedUser(t, s.db, "Bob")
	election := seedElection(t, s.db, models.StatusActive, alice.ID, bob.ID)

	// 各3票，平票
	castVotes(t, s.votes, election.ID, alice.ID, 100, 101, 102)
	castVotes(t, s.votes, election.ID, bob.ID, 103, 104, 105)

	require.NoError(t, s.db.Model(&models.Election{}).Where("id = ?", election.ID).
		Update("status", models.StatusFinished).Error)

	tally, err := s.tally.ComputeResults(context.Background(), election.ID)
	require.NoError(t, err)

	require.Len(t, tally.Winners, 2)
	winnerIDs := []uint{tally.Winners[0].CandidateID, tally.Winners[1].CandidateID}
	assert.Contains(t, winnerIDs, alice.ID)
	assert.Contains(t, winnerIDs, bob.ID)

	// 平票按候选人ID升序排列
	assert.Equal(t, alice.ID, tally.Results[0].CandidateID)
	assert.Equal(t, bob.ID, tally.Results[1].CandidateID)
}

func TestComputeResults_UnknownCandidate(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	election := seedElection(t, s.db, models.StatusFinished, alice.ID, 9999)

	tally, err := s.tally.ComputeResults(context.Background(), election.ID)
	require.NoError(t, err)

	require.Len(t, tally.Results, 2)
	found := false
	for _, r := range tally.Results {
		if r.CandidateID == 9999 {
			assert.Equal(t, "Unknown", r.Name)
			found = true
		}
	}
	assert.True(t, found)
}

func TestComputeLive(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	bob := seedUser(t, s.db, "Bob")
	election := seedElection(t, s.db, models.StatusActive, alice.ID, bob.ID)

	castVotes(t, s.votes, election.ID, alice.ID, 100, 101)

	// active状态下允许实时视图
	tally, err := s.tally.ComputeLive(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), tally.TotalVotes)
	assert.False(t, tally.Finalized)
	assert.Equal(t, alice.ID, tally.Results[0].CandidateID)
}

func TestVoterTurnout(t *testing.T) {
	s := newTestServices(t)
	alice := seedUser(t, s.db, "Alice")
	election := seedElection(t, s.db, models.StatusActive, alice.ID)

	castVotes(t, s.votes, election.ID, alice.ID, 100, 101, 102)

	count, err := s.tally.VoterTurnout(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = s.tally.VoterTurnout(context.Background(), 9999)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
