package models

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/storage"
	"yamdb/proj/internal/storage/postgres"
)

const userColumns = "id, username, email, first_name, last_name, bio, role, is_active, is_superuser, date_joined"

type UserModel struct {
	DB *pgxpool.Pool
}

func (m *UserModel) getBy(ctx context.Context, column string, value any) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value)
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &user, nil
}

func (m *UserModel) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.getBy(ctx, "id", id)
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.getBy(ctx, "username", username)
}

// GetByUsernameOrEmail returns every user whose username or email matches.
func (m *UserModel) GetByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 OR email = $2 ORDER BY id",
		username,
		email,
	)
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return users, nil
}

func (m *UserModel) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER() AS count, `+userColumns+` FROM users
		WHERE ($1::text = '' OR username ILIKE $1)
		ORDER BY username ASC
		LIMIT $2 OFFSET $3`,
		containsPattern(search),
		f.Limit(),
		f.Offset(),
	)
	type row struct {
		Count int `db:"count"`
		models.User
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	users := make([]models.User, 0, len(outputRows))
	for _, r := range outputRows {
		users = append(users, r.User)
	}
	if len(outputRows) == 0 {
		return users, 0, nil
	}
	return users, outputRows[0].Count, nil
}

func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (username, email, first_name, last_name, bio, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+userColumns,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.IsActive,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &created, nil
}

func (m *UserModel) Update(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6
		WHERE id = $7 RETURNING `+userColumns,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.ID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

func (m *UserModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SavePending stores a fresh confirmation code for email and creates or renames the
// matching user, leaving it inactive until a token is issued. Both writes share one transaction.
func (m *UserModel) SavePending(ctx context.Context, username, email, code string, now time.Time) (*models.User, error) {
	var user models.User
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO confirmation_codes (email, code, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
			email,
			code,
			now,
		)
		if err != nil {
			return err
		}
		rows, _ := tx.Query(
			ctx,
			`INSERT INTO users (username, email, is_active) VALUES ($1, $2, false)
			ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username, is_active = false
			RETURNING `+userColumns,
			username,
			email,
		)
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
		return err
	})
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &user, nil
}

func (m *UserModel) GetCode(ctx context.Context, email string) (*models.ConfirmationCode, error) {
	rows, _ := m.DB.Query(ctx, "SELECT email, code, created_at FROM confirmation_codes WHERE email = $1", email)
	code, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.ConfirmationCode])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &code, nil
}

func (m *UserModel) Activate(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "UPDATE users SET is_active = true WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
