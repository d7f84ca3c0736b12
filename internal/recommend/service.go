package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/victornm/quickpick/internal/catalog"
	"github.com/victornm/quickpick/internal/domain"
)

const (
	defaultShortlist  = 3
	defaultMinLatency = 1500 * time.Millisecond
)

type Config struct {
	Catalog    catalog.Provider
	Shortlist  int
	MinLatency time.Duration
}

// Service turns a session's participants into a scored shortlist. Generate
// is long-running by contract: it never returns before MinLatency has
// elapsed, so clients treat it as a suspending operation.
type Service struct {
	catalog    catalog.Provider
	shortlist  int
	minLatency time.Duration
}

func NewService(c Config) *Service {
	s := &Service{
		catalog:    c.Catalog,
		shortlist:  c.Shortlist,
		minLatency: c.MinLatency,
	}
	if s.shortlist <= 0 {
		s.shortlist = defaultShortlist
	}
	if s.minLatency <= 0 {
		s.minLatency = defaultMinLatency
	}
	return s
}

// Generate aggregates the group's preferences, pulls candidates from the
// catalog, scores them and returns the top candidates sorted by score
// descending. Cancelling ctx abandons the run.
func (s *Service) Generate(ctx context.Context, participants []domain.Participant) ([]domain.Recommendation, error) {
	start := time.Now()

	agg := Aggregate(participants)
	pool, err := s.assemblePool(ctx, agg)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(pool))
	for _, item := range pool {
		genres := catalog.Genres(item.GenreIDs, item.Type)
		recs = append(recs, domain.Recommendation{
			ID:           fmt.Sprintf("%s_%d", item.Type, item.ID),
			SourceID:     item.ID,
			Title:        item.Title,
			Overview:     item.Overview,
			PosterPath:   item.PosterPath,
			BackdropPath: item.BackdropPath,
			ReleaseDate:  item.ReleaseDate,
			VoteAverage:  item.VoteAverage,
			Genres:       genres,
			Runtime:      item.Runtime,
			SeasonCount:  item.SeasonCount,
			ContentType:  item.Type,
			MatchScore:   Score(genres, agg),
			MatchReason:  Reason(genres, agg),
		})
	}

	// Stable: ties keep pool order, which is why pool assembly order matters.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})

	if len(recs) > s.shortlist {
		recs = recs[:s.shortlist]
	}

	if err := s.waitMinLatency(ctx, start); err != nil {
		return nil, err
	}

	return recs, nil
}

// assemblePool fetches movie and TV candidates and orders them: TV first
// when the group prefers TV, movies first otherwise.
func (s *Service) assemblePool(ctx context.Context, agg Aggregated) ([]catalog.Item, error) {
	genreIDs := make([]int, 0)
	for id := range preferredGenres(agg) {
		genreIDs = append(genreIDs, id)
	}
	sort.Ints(genreIDs)

	movies, err := s.catalog.Discover(ctx, catalog.Filter{
		Type:     domain.ContentMovie,
		GenreIDs: genreIDs,
		Page:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("recommend: discover movies: %w", err)
	}

	shows, err := s.catalog.Discover(ctx, catalog.Filter{
		Type:     domain.ContentTV,
		GenreIDs: genreIDs,
		Page:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("recommend: discover tv: %w", err)
	}

	if agg.PreferTV {
		return append(shows, movies...), nil
	}
	return append(movies, shows...), nil
}

func (s *Service) waitMinLatency(ctx context.Context, start time.Time) error {
	remaining := s.minLatency - time.Since(start)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("recommend: generation abandoned: %w", ctx.Err())
	}
}
