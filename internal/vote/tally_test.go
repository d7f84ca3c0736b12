package vote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quickpick/internal/domain"
	"github.com/victornm/quickpick/internal/vote"
)

func ballot(participant string, picks ...string) []domain.Vote {
	votes := make([]domain.Vote, 0, len(picks))
	for i, rec := range picks {
		votes = append(votes, domain.Vote{
			ParticipantID:    participant,
			RecommendationID: rec,
			Rank:             i + 1,
		})
	}
	return votes
}

func TestResults(t *testing.T) {
	tests := map[string]struct {
		votes []domain.Vote
		ids   []string
		want  []domain.VotingResult
	}{
		"two full ballots": {
			votes: append(ballot("p1", "r1", "r2", "r3"), ballot("p2", "r1", "r3", "r2")...),
			ids:   []string{"r1", "r2", "r3"},
			want: []domain.VotingResult{
				{RecommendationID: "r1", TotalPoints: 6, VoteCount: 2, FirstPlaceVotes: 2},
				{RecommendationID: "r2", TotalPoints: 3, VoteCount: 2},
				{RecommendationID: "r3", TotalPoints: 3, VoteCount: 2},
			},
		},

		"no votes still yields a result per id": {
			votes: nil,
			ids:   []string{"r1", "r2", "r3"},
			want: []domain.VotingResult{
				{RecommendationID: "r1"},
				{RecommendationID: "r2"},
				{RecommendationID: "r3"},
			},
		},

		"unknown recommendation ignored": {
			votes: ballot("p1", "r1", "ghost"),
			ids:   []string{"r1"},
			want: []domain.VotingResult{
				{RecommendationID: "r1", TotalPoints: 3, VoteCount: 1, FirstPlaceVotes: 1},
			},
		},

		"out of range rank scores nothing but counts": {
			votes: []domain.Vote{{ParticipantID: "p1", RecommendationID: "r1", Rank: 7}},
			ids:   []string{"r1"},
			want: []domain.VotingResult{
				{RecommendationID: "r1", TotalPoints: 0, VoteCount: 1},
			},
		},

		"first place votes break point ties": {
			votes: append(
				[]domain.Vote{{ParticipantID: "p1", RecommendationID: "r2", Rank: 1}},
				domain.Vote{ParticipantID: "p2", RecommendationID: "r1", Rank: 2},
				domain.Vote{ParticipantID: "p3", RecommendationID: "r1", Rank: 3},
			),
			ids: []string{"r1", "r2"},
			want: []domain.VotingResult{
				{RecommendationID: "r2", TotalPoints: 3, VoteCount: 1, FirstPlaceVotes: 1},
				{RecommendationID: "r1", TotalPoints: 3, VoteCount: 2},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := vote.Results(tt.votes, tt.ids)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResults_Ordering(t *testing.T) {
	votes := append(ballot("p1", "r1", "r2", "r3"), ballot("p2", "r1", "r3", "r2")...)

	got := vote.Results(votes, []string{"r1", "r2", "r3"})

	require.Len(t, got, 3)
	assert.Equal(t, "r1", got[0].RecommendationID)
	assert.Equal(t, 6, got[0].TotalPoints)
}

func TestWinner(t *testing.T) {
	recs := []domain.Recommendation{
		{ID: "r1", Title: "First"},
		{ID: "r2", Title: "Second"},
		{ID: "r3", Title: "Third"},
	}

	t.Run("full tally picks the highest total", func(t *testing.T) {
		votes := append(ballot("p1", "r2", "r1", "r3"), ballot("p2", "r2", "r3", "r1")...)

		w := vote.Winner(votes, recs)

		require.NotNil(t, w)
		assert.Equal(t, "r2", w.ID)
	})

	t.Run("no votes falls back to the first shortlisted", func(t *testing.T) {
		w := vote.Winner(nil, recs)

		require.NotNil(t, w)
		assert.Equal(t, "r1", w.ID)
	})

	t.Run("empty shortlist has no winner", func(t *testing.T) {
		assert.Nil(t, vote.Winner(nil, nil))
	})
}

func TestValidateBallot(t *testing.T) {
	tests := map[string]struct {
		votes []domain.Vote
		want  bool
	}{
		"valid full ballot":    {votes: ballot("p1", "r1", "r2", "r3"), want: true},
		"valid partial ballot": {votes: ballot("p1", "r1"), want: true},
		"empty ballot":         {votes: nil, want: true},
		"duplicate rank": {
			votes: []domain.Vote{
				{ParticipantID: "p1", RecommendationID: "r1", Rank: 1},
				{ParticipantID: "p1", RecommendationID: "r2", Rank: 1},
			},
			want: false,
		},
		"duplicate recommendation": {
			votes: []domain.Vote{
				{ParticipantID: "p1", RecommendationID: "r1", Rank: 1},
				{ParticipantID: "p1", RecommendationID: "r1", Rank: 2},
			},
			want: false,
		},
		"rank zero":     {votes: []domain.Vote{{RecommendationID: "r1", Rank: 0}}, want: false},
		"rank too high": {votes: []domain.Vote{{RecommendationID: "r1", Rank: 4}}, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, vote.ValidateBallot(tt.votes))
		})
	}
}
