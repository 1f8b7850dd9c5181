package models

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/storage"
	"yamdb/proj/internal/storage/postgres"
)

// SlugModel stores name/slug dictionaries. Categories and genres share the same shape.
type SlugModel[T models.Category | models.Genre] struct {
	DB    *pgxpool.Pool
	table string
}

func NewSlugModel[T models.Category | models.Genre](db *pgxpool.Pool, table string) *SlugModel[T] {
	return &SlugModel[T]{DB: db, table: table}
}

func (m *SlugModel[T]) Insert(ctx context.Context, name, slug string) (*T, error) {
	rows, _ := m.DB.Query(
		ctx,
		fmt.Sprintf("INSERT INTO %s (name, slug) VALUES ($1, $2) RETURNING id, name, slug", m.table),
		name,
		slug,
	)
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &item, nil
}

func (m *SlugModel[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	rows, _ := m.DB.Query(
		ctx,
		fmt.Sprintf("SELECT id, name, slug FROM %s WHERE slug = $1", m.table),
		slug,
	)
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &item, nil
}

// GetBySlugs returns the rows matching slugs ordered by name. Unknown slugs are simply absent.
func (m *SlugModel[T]) GetBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	rows, _ := m.DB.Query(
		ctx,
		fmt.Sprintf("SELECT id, name, slug FROM %s WHERE slug = ANY($1) ORDER BY name", m.table),
		slugs,
	)
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return items, nil
}

// slugRow mirrors the shared shape of Category and Genre, so it converts to either.
type slugRow struct {
	ID   int64
	Name string
	Slug string
}

func (m *SlugModel[T]) List(ctx context.Context, search string, f filters.Filters) ([]T, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		fmt.Sprintf(`SELECT count(*) OVER() AS count, id, name, slug FROM %s
		WHERE ($1::text = '' OR name ILIKE $1)
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`, m.table),
		containsPattern(search),
		f.Limit(),
		f.Offset(),
	)
	var total int
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var r slugRow
		err := row.Scan(&total, &r.ID, &r.Name, &r.Slug)
		return T(r), err
	})
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	return items, total, nil
}

func (m *SlugModel[T]) DeleteBySlug(ctx context.Context, slug string) error {
	status, err := m.DB.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE slug = $1", m.table), slug)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
