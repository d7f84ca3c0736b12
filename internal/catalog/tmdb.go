package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victornm/quickpick/internal/domain"
)

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

// TMDB is a Provider backed by The Movie Database HTTP API.
type TMDB struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type TMDBConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewTMDB(c TMDBConfig) *TMDB {
	if c.BaseURL == "" {
		c.BaseURL = defaultTMDBBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}

	return &TMDB{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		apiKey:  c.APIKey,
		client:  &http.Client{Timeout: c.Timeout},
	}
}

type tmdbMovie struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Overview     string          `json:"overview"`
	PosterPath   string          `json:"poster_path"`
	BackdropPath string          `json:"backdrop_path"`
	ReleaseDate  string          `json:"release_date"`
	VoteAverage  decimal.Decimal `json:"vote_average"`
	GenreIDs     []int           `json:"genre_ids"`
	Runtime      *int            `json:"runtime,omitempty"`
}

type tmdbShow struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Overview      string          `json:"overview"`
	PosterPath    string          `json:"poster_path"`
	BackdropPath  string          `json:"backdrop_path"`
	FirstAirDate  string          `json:"first_air_date"`
	VoteAverage   decimal.Decimal `json:"vote_average"`
	GenreIDs      []int           `json:"genre_ids"`
	NumberSeasons *int            `json:"number_of_seasons,omitempty"`
}

type tmdbMovieList struct {
	Page    int         `json:"page"`
	Results []tmdbMovie `json:"results"`
}

type tmdbShowList struct {
	Page    int        `json:"page"`
	Results []tmdbShow `json:"results"`
}

// Discover queries /discover/movie or /discover/tv with the given filter.
func (t *TMDB) Discover(ctx context.Context, f Filter) ([]Item, error) {
	q := url.Values{}
	q.Set("include_adult", "false")
	if len(f.GenreIDs) > 0 {
		ids := make([]string, 0, len(f.GenreIDs))
		for _, id := range f.GenreIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		q.Set("with_genres", strings.Join(ids, ","))
	}
	if !f.MinRating.IsZero() {
		q.Set("vote_average.gte", f.MinRating.String())
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	if f.Type == domain.ContentTV {
		var list tmdbShowList
		if err := t.get(ctx, "/discover/tv", q, &list); err != nil {
			return nil, err
		}
		return showsToItems(list.Results), nil
	}

	var list tmdbMovieList
	if err := t.get(ctx, "/discover/movie", q, &list); err != nil {
		return nil, err
	}
	return moviesToItems(list.Results), nil
}

// Search queries movie and TV search and returns both result sets, movies
// first.
func (t *TMDB) Search(ctx context.Context, query string, page int) ([]Item, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var movies tmdbMovieList
	if err := t.get(ctx, "/search/movie", q, &movies); err != nil {
		return nil, err
	}

	var shows tmdbShowList
	if err := t.get(ctx, "/search/tv", q, &shows); err != nil {
		return nil, err
	}

	return append(moviesToItems(movies.Results), showsToItems(shows.Results)...), nil
}

func (t *TMDB) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: %s: decode response: %w", path, err)
	}

	return nil
}

func moviesToItems(movies []tmdbMovie) []Item {
	items := make([]Item, 0, len(movies))
	for _, m := range movies {
		items = append(items, Item{
			ID:           m.ID,
			Title:        m.Title,
			Overview:     m.Overview,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			ReleaseDate:  m.ReleaseDate,
			VoteAverage:  m.VoteAverage,
			GenreIDs:     m.GenreIDs,
			Runtime:      m.Runtime,
			Type:         domain.ContentMovie,
		})
	}
	return items
}

func showsToItems(shows []tmdbShow) []Item {
	items := make([]Item, 0, len(shows))
	for _, s := range shows {
		items = append(items, Item{
			ID:           s.ID,
			Title:        s.Name,
			Overview:     s.Overview,
			PosterPath:   s.PosterPath,
			BackdropPath: s.BackdropPath,
			ReleaseDate:  s.FirstAirDate,
			VoteAverage:  s.VoteAverage,
			GenreIDs:     s.GenreIDs,
			SeasonCount:  s.NumberSeasons,
			Type:         domain.ContentTV,
		})
	}
	return items
}
