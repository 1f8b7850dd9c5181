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

type ReviewModel struct {
	DB *pgxpool.Pool
}

const reviewColumns = "r.id, r.title_id, r.author_id, u.username AS author, r.text, r.score, r.pub_date"

func (m *ReviewModel) Get(ctx context.Context, titleID, id int64) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+reviewColumns+" FROM reviews r JOIN users u ON u.id = r.author_id WHERE r.title_id = $1 AND r.id = $2",
		titleID,
		id,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &review, nil
}

func (m *ReviewModel) List(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER() AS count, `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT $2 OFFSET $3`,
		titleID,
		f.Limit(),
		f.Offset(),
	)
	type row struct {
		Count int `db:"count"`
		models.Review
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	reviews := make([]models.Review, 0, len(outputRows))
	for _, r := range outputRows {
		reviews = append(reviews, r.Review)
	}
	if len(outputRows) == 0 {
		return reviews, 0, nil
	}
	return reviews, outputRows[0].Count, nil
}

func (m *ReviewModel) Exists(ctx context.Context, titleID, authorID int64) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)",
		titleID,
		authorID,
	).Scan(&exists)
	return exists, err
}

func (m *ReviewModel) Insert(ctx context.Context, review *models.Review) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH r AS (
			INSERT INTO reviews (title_id, author_id, text, score) VALUES ($1, $2, $3, $4) RETURNING *
		)
		SELECT `+reviewColumns+` FROM r JOIN users u ON u.id = r.author_id`,
		review.TitleID,
		review.AuthorID,
		review.Text,
		review.Score,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &created, nil
}

func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH r AS (
			UPDATE reviews SET text = $1, score = $2 WHERE id = $3 AND title_id = $4 RETURNING *
		)
		SELECT `+reviewColumns+` FROM r JOIN users u ON u.id = r.author_id`,
		review.Text,
		review.Score,
		review.ID,
		review.TitleID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

func (m *ReviewModel) Delete(ctx context.Context, titleID, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE title_id = $1 AND id = $2", titleID, id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
