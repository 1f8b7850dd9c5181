package models

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/storage"
	"yamdb/proj/internal/storage/postgres"
)

type TitleModel struct {
	DB *pgxpool.Pool
}

const titleSelect = `SELECT count(*) OVER() AS count, t.id, t.name, t.year, t.description,
	(SELECT AVG(r.score)::float8 FROM reviews r WHERE r.title_id = t.id) AS rating,
	c.id AS category_id, c.name AS category_name, c.slug AS category_slug,
	COALESCE((
		SELECT json_agg(json_build_object('name', g.name, 'slug', g.slug) ORDER BY g.name)
		FROM genres g JOIN genre_titles gt ON gt.genre_id = g.id
		WHERE gt.title_id = t.id
	), '[]'::json) AS genres
FROM titles t LEFT JOIN categories c ON c.id = t.category_id`

type titleRow struct {
	Count        int            `db:"count"`
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Year         int32          `db:"year"`
	Description  string         `db:"description"`
	Rating       *float64       `db:"rating"`
	CategoryID   *int64         `db:"category_id"`
	CategoryName *string        `db:"category_name"`
	CategorySlug *string        `db:"category_slug"`
	Genres       []models.Genre `db:"genres"`
}

func (r *titleRow) toTitle() models.Title {
	title := models.Title{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Rating:      r.Rating,
		Description: r.Description,
		Genres:      r.Genres,
	}
	if title.Genres == nil {
		title.Genres = []models.Genre{}
	}
	if r.CategoryID != nil {
		title.Category = &models.Category{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	return title
}

func (m *TitleModel) Get(ctx context.Context, id int64) (*models.Title, error) {
	rows, _ := m.DB.Query(ctx, titleSelect+" WHERE t.id = $1", id)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	title := row.toTitle()
	return &title, nil
}

func (m *TitleModel) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM titles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (m *TitleModel) List(ctx context.Context, filter filters.TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		titleSelect+`
		WHERE ($1::text = '' OR c.slug = $1)
		AND ($2::text = '' OR EXISTS (
			SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = t.id AND g.slug = $2
		))
		AND ($3::text = '' OR t.name ILIKE $3)
		AND ($4::integer IS NULL OR t.year = $4)
		ORDER BY t.name ASC, t.id ASC
		LIMIT $5 OFFSET $6`,
		filter.Category,
		filter.Genre,
		containsPattern(filter.Name),
		filter.Year,
		f.Limit(),
		f.Offset(),
	)
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	titles := make([]models.Title, 0, len(outputRows))
	for _, row := range outputRows {
		titles = append(titles, row.toTitle())
	}
	if len(outputRows) == 0 {
		return titles, 0, nil
	}
	return titles, outputRows[0].Count, nil
}

func categoryID(title *models.Title) *int64 {
	if title.Category == nil {
		return nil
	}
	return &title.Category.ID
}

func genreIDs(title *models.Title) []int64 {
	ids := make([]int64, 0, len(title.Genres))
	for _, g := range title.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func linkGenres(ctx context.Context, tx pgx.Tx, titleID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(
		ctx,
		`INSERT INTO genre_titles (genre_id, title_id) SELECT unnest($1::bigint[]), $2
		ON CONFLICT (genre_id, title_id) DO NOTHING`,
		ids,
		titleID,
	)
	return err
}

// Insert stores the title together with its genre links and returns the new id.
// Category and genres must already carry their ids.
func (m *TitleModel) Insert(ctx context.Context, title *models.Title) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		err := tx.QueryRow(
			ctx,
			"INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id",
			title.Name,
			title.Year,
			title.Description,
			categoryID(title),
		).Scan(&id)
		if err != nil {
			return err
		}
		return linkGenres(ctx, tx, id, genreIDs(title))
	})
	if err != nil {
		return 0, postgres.MapError(err)
	}
	return id, nil
}

// Update rewrites the scalar fields of the title. Genre links are replaced only when replaceGenres is set.
func (m *TitleModel) Update(ctx context.Context, title *models.Title, replaceGenres bool) error {
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		status, err := tx.Exec(
			ctx,
			"UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4 WHERE id = $5",
			title.Name,
			title.Year,
			title.Description,
			categoryID(title),
			title.ID,
		)
		if err != nil {
			return err
		}
		if status.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		if !replaceGenres {
			return nil
		}
		if _, err := tx.Exec(ctx, "DELETE FROM genre_titles WHERE title_id = $1", title.ID); err != nil {
			return err
		}
		return linkGenres(ctx, tx, title.ID, genreIDs(title))
	})
	return postgres.MapError(err)
}

func (m *TitleModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM titles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
