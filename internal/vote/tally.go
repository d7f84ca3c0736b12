// Package vote turns accumulated ranked ballots into point totals and picks
// the winning recommendation.
package vote

import (
	"sort"

	"github.com/victornm/quickpick/internal/domain"
)

// Rank -> points. Any other rank contributes nothing.
var rankPoints = map[int]int{
	1: 3,
	2: 2,
	3: 1,
}

// MaxRank is the lowest pick a ballot may carry.
const MaxRank = 3

// Results tallies votes over the shortlisted recommendation ids. Every id
// gets a result, even with zero votes. Results are sorted by total points
// descending, then first-place votes descending; remaining ties keep the
// input id order.
func Results(votes []domain.Vote, recommendationIDs []string) []domain.VotingResult {
	results := make([]domain.VotingResult, 0, len(recommendationIDs))
	index := make(map[string]int, len(recommendationIDs))
	for i, id := range recommendationIDs {
		index[id] = i
		results = append(results, domain.VotingResult{RecommendationID: id})
	}

	for _, v := range votes {
		i, ok := index[v.RecommendationID]
		if !ok {
			continue
		}
		results[i].TotalPoints += rankPoints[v.Rank]
		results[i].VoteCount++
		if v.Rank == 1 {
			results[i].FirstPlaceVotes++
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalPoints != results[j].TotalPoints {
			return results[i].TotalPoints > results[j].TotalPoints
		}
		return results[i].FirstPlaceVotes > results[j].FirstPlaceVotes
	})

	return results
}

// Winner picks the recommendation the full tally ranks first. With no votes
// at all it falls back to the first shortlisted recommendation. Returns nil
// only for an empty shortlist.
func Winner(votes []domain.Vote, recommendations []domain.Recommendation) *domain.Recommendation {
	if len(recommendations) == 0 {
		return nil
	}

	ids := make([]string, 0, len(recommendations))
	byID := make(map[string]*domain.Recommendation, len(recommendations))
	for i := range recommendations {
		ids = append(ids, recommendations[i].ID)
		byID[recommendations[i].ID] = &recommendations[i]
	}

	results := Results(votes, ids)
	if results[0].VoteCount == 0 {
		return &recommendations[0]
	}
	return byID[results[0].RecommendationID]
}

// ValidateBallot checks one participant's submitted ballot: every rank must
// be within 1..MaxRank, each rank used at most once, and each recommendation
// ranked at most once.
func ValidateBallot(votes []domain.Vote) bool {
	seenRank := make(map[int]bool, len(votes))
	seenRec := make(map[string]bool, len(votes))
	for _, v := range votes {
		if v.Rank < 1 || v.Rank > MaxRank {
			return false
		}
		if seenRank[v.Rank] || seenRec[v.RecommendationID] {
			return false
		}
		seenRank[v.Rank] = true
		seenRec[v.RecommendationID] = true
	}
	return true
}
