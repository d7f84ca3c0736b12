// Package catalog abstracts the content source the recommendation engine
// draws candidates from. Implementations must tolerate empty pages and
// absent optional fields.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/victornm/quickpick/internal/domain"
)

// Item is one candidate from the catalog, before scoring.
type Item struct {
	ID           int64
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	ReleaseDate  string
	VoteAverage  decimal.Decimal
	GenreIDs     []int
	Runtime      *int
	SeasonCount  *int
	Type         domain.ContentType
}

// Filter narrows a discovery query. Zero values mean "no constraint".
type Filter struct {
	Type      domain.ContentType // movie or tv, never both
	GenreIDs  []int
	MinRating decimal.Decimal
	SortBy    string
	Page      int
}

// Provider is a read-only content source.
type Provider interface {
	Discover(ctx context.Context, f Filter) ([]Item, error)
	Search(ctx context.Context, query string, page int) ([]Item, error)
}

// TMDB genre id -> name, movies.
var movieGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// TMDB genre id -> name, TV.
var tvGenres = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// Genres resolves an item's genre ids to named genres, dropping ids the
// catalog does not know.
func Genres(genreIDs []int, contentType domain.ContentType) []domain.Genre {
	names := movieGenres
	if contentType == domain.ContentTV {
		names = tvGenres
	}

	genres := make([]domain.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		if name, ok := names[id]; ok {
			genres = append(genres, domain.Genre{ID: id, Name: name})
		}
	}
	return genres
}
