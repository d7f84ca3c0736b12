package recommend

import (
	"strings"

	"github.com/victornm/quickpick/internal/domain"
)

const (
	baseScore   = 70
	genreBonus  = 5
	energyBonus = 10
	maxScore    = 100
)

// moodGenres maps each mood to the TMDB genre ids it implies.
var moodGenres = map[domain.Mood][]int{
	domain.MoodHappy:      {35, 10751, 16}, // Comedy, Family, Animation
	domain.MoodThrilling:  {28, 53, 80},    // Action, Thriller, Crime
	domain.MoodThoughtful: {18, 99, 36},    // Drama, Documentary, History
	domain.MoodFunny:      {35, 16},        // Comedy, Animation
	domain.MoodScary:      {27, 53, 9648},  // Horror, Thriller, Mystery
	domain.MoodRomantic:   {10749, 18, 35}, // Romance, Drama, Comedy
}

// Genre sets the energy bonus keys on.
var (
	intenseGenres = map[int]bool{28: true, 53: true, 27: true}      // Action, Thriller, Horror
	chillGenres   = map[int]bool{35: true, 10751: true, 10749: true} // Comedy, Family, Romance
)

// preferredGenres returns the union of genre ids implied by the aggregated
// mood set.
func preferredGenres(agg Aggregated) map[int]bool {
	union := make(map[int]bool)
	for mood := range agg.Moods {
		for _, id := range moodGenres[mood] {
			union[id] = true
		}
	}
	return union
}

// Score computes the 0-100 match score of a candidate's genres against the
// aggregated preferences: base 70, +5 per genre in the mood-implied union,
// +10 once for an energy match. Intense takes priority over chill when both
// appear in the aggregate.
func Score(genres []domain.Genre, agg Aggregated) int {
	score := baseScore

	preferred := preferredGenres(agg)
	for _, g := range genres {
		if preferred[g.ID] {
			score += genreBonus
		}
	}

	if agg.Energies[domain.EnergyIntense] {
		if anyGenre(genres, intenseGenres) {
			score += energyBonus
		}
	} else if agg.Energies[domain.EnergyChill] {
		if anyGenre(genres, chillGenres) {
			score += energyBonus
		}
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// Reason explains a candidate's fit: its primary genre plus an energy
// clause, or a generic phrase when the candidate carries no genres.
func Reason(genres []domain.Genre, agg Aggregated) string {
	var parts []string

	if len(genres) > 0 {
		parts = append(parts, "Great "+strings.ToLower(genres[0].Name)+" pick")
	}

	if agg.Energies[domain.EnergyIntense] {
		parts = append(parts, "with intense moments")
	} else if agg.Energies[domain.EnergyChill] {
		parts = append(parts, "for a relaxed watch")
	}

	if len(parts) == 0 {
		return "Perfect match for your group"
	}
	return strings.Join(parts, " ")
}

func anyGenre(genres []domain.Genre, set map[int]bool) bool {
	for _, g := range genres {
		if set[g.ID] {
			return true
		}
	}
	return false
}
