package recommend

import (
	"github.com/victornm/quickpick/internal/domain"
)

// Aggregated is the group-level signal derived from every submitted
// preference set. Moods and energies are sets: expressing a mood twice
// weighs the same as expressing it once.
type Aggregated struct {
	Moods        map[domain.Mood]bool
	Energies     map[domain.EnergyLevel]bool
	PreferMovies bool
	PreferTV     bool
}

// Aggregate combines the preferences of all participants who have submitted.
// Participants without preferences are skipped. Content type is decided by
// counting movie vs tv requests ("both" counts toward neither); ties favor
// movies, so an empty roster still prefers movies.
func Aggregate(participants []domain.Participant) Aggregated {
	agg := Aggregated{
		Moods:    make(map[domain.Mood]bool),
		Energies: make(map[domain.EnergyLevel]bool),
	}

	var movieCount, tvCount int
	for _, p := range participants {
		if p.Preferences == nil {
			continue
		}

		agg.Moods[p.Preferences.Mood] = true
		agg.Energies[p.Preferences.Energy] = true

		switch p.Preferences.ContentType {
		case domain.ContentMovie:
			movieCount++
		case domain.ContentTV:
			tvCount++
		}
	}

	agg.PreferMovies = movieCount >= tvCount
	agg.PreferTV = tvCount > movieCount
	return agg
}
