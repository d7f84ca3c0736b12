package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victornm/quickpick/internal/domain"
)

const pageSize = 20

// Postgres is a Provider reading a locally mirrored catalog table, for
// deployments that cannot reach the upstream API.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Discover(ctx context.Context, f Filter) ([]Item, error) {
	stmt := `
SELECT source_id, content_type, title, overview,
       COALESCE(poster_path, ''), COALESCE(backdrop_path, ''),
       COALESCE(release_date, ''), vote_average, genre_ids, runtime, season_count
FROM catalog_items
WHERE content_type = $1
  AND vote_average >= $2
  AND (cardinality($3::int[]) = 0 OR genre_ids && $3::int[])
`
	switch f.SortBy {
	case "vote_average.desc":
		stmt += "ORDER BY vote_average DESC, source_id\n"
	default:
		stmt += "ORDER BY popularity DESC, source_id\n"
	}
	stmt += "LIMIT $4 OFFSET $5;"

	page := f.Page
	if page < 1 {
		page = 1
	}

	genreIDs := f.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}

	rows, err := p.db.Query(ctx, stmt,
		string(f.Type), f.MinRating, genreIDs, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: discover: %w", err)
	}

	return collectItems(rows)
}

func (p *Postgres) Search(ctx context.Context, query string, page int) ([]Item, error) {
	const stmt = `
SELECT source_id, content_type, title, overview,
       COALESCE(poster_path, ''), COALESCE(backdrop_path, ''),
       COALESCE(release_date, ''), vote_average, genre_ids, runtime, season_count
FROM catalog_items
WHERE title ILIKE '%' || $1 || '%'
ORDER BY popularity DESC, source_id
LIMIT $2 OFFSET $3;`

	if page < 1 {
		page = 1
	}

	rows, err := p.db.Query(ctx, stmt, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}

	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	items, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Item, error) {
		var (
			it          Item
			contentType string
			genreIDs    []int32
		)
		if err := r.Scan(&it.ID, &contentType, &it.Title, &it.Overview,
			&it.PosterPath, &it.BackdropPath, &it.ReleaseDate,
			&it.VoteAverage, &genreIDs, &it.Runtime, &it.SeasonCount); err != nil {
			return Item{}, err
		}

		it.Type = domain.ContentType(contentType)
		it.GenreIDs = make([]int, 0, len(genreIDs))
		for _, id := range genreIDs {
			it.GenreIDs = append(it.GenreIDs, int(id))
		}
		return it, nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: collect rows: %w", err)
	}

	return items, nil
}
