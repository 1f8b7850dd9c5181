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

type CommentModel struct {
	DB *pgxpool.Pool
}

const commentColumns = "c.id, c.review_id, c.author_id, u.username AS author, c.text, c.pub_date"

// Comments are addressed through their review, which in turn must belong to titleID.

func (m *CommentModel) Get(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+commentColumns+` FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN reviews r ON r.id = c.review_id
		WHERE r.title_id = $1 AND c.review_id = $2 AND c.id = $3`,
		titleID,
		reviewID,
		id,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &comment, nil
}

func (m *CommentModel) List(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER() AS count, `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.review_id = $1
		ORDER BY c.pub_date DESC, c.id DESC
		LIMIT $2 OFFSET $3`,
		reviewID,
		f.Limit(),
		f.Offset(),
	)
	type row struct {
		Count int `db:"count"`
		models.Comment
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	comments := make([]models.Comment, 0, len(outputRows))
	for _, r := range outputRows {
		comments = append(comments, r.Comment)
	}
	if len(outputRows) == 0 {
		return comments, 0, nil
	}
	return comments, outputRows[0].Count, nil
}

func (m *CommentModel) Insert(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH c AS (
			INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3) RETURNING *
		)
		SELECT `+commentColumns+` FROM c JOIN users u ON u.id = c.author_id`,
		comment.ReviewID,
		comment.AuthorID,
		comment.Text,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &created, nil
}

func (m *CommentModel) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH c AS (
			UPDATE comments SET text = $1 WHERE id = $2 AND review_id = $3 RETURNING *
		)
		SELECT `+commentColumns+` FROM c JOIN users u ON u.id = c.author_id`,
		comment.Text,
		comment.ID,
		comment.ReviewID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

func (m *CommentModel) Delete(ctx context.Context, reviewID, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM comments WHERE review_id = $1 AND id = $2", reviewID, id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
