// Package importer loads the fixture CSV files shipped in static/data into the database.
//
// Every file has a header row. Rows are inserted by explicit id and rows that already
// exist are left untouched, so an import can be repeated safely. Rows pointing at a
// parent that does not exist are skipped and reported.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/storage"
	"yamdb/proj/internal/storage/postgres"
)

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type record map[string]string

func (r record) integer(key string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r[key]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", key, err)
	}
	return v, nil
}

// optionalInt64 returns nil for an empty column.
func (r record) optionalInt64(key string) (*int64, error) {
	if strings.TrimSpace(r[key]) == "" {
		return nil, nil
	}
	v, err := r.integer(key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r record) timestamp(key string) (time.Time, error) {
	v, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r[key]))
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", key, err)
	}
	return v, nil
}

type source struct {
	name    string
	file    string
	table   string
	columns []string
	query   string
	args    func(r record) ([]any, error)
}

// Sources lists the importable files in dependency order.
var Sources = []source{
	{
		name:    "users",
		file:    "users.csv",
		table:   "users",
		columns: []string{"id", "username", "email", "role"},
		query: `INSERT INTO users (id, username, email, role, bio, first_name, last_name, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, false)
			ON CONFLICT (id) DO NOTHING`,
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			role := models.Role(r["role"])
			if role == "" {
				role = models.RoleUser
			}
			if !role.Valid() {
				return nil, fmt.Errorf("column role: unknown role %q", role)
			}
			return []any{id, r["username"], r["email"], string(role), r["bio"], r["first_name"], r["last_name"]}, nil
		},
	},
	slugSource("categories", "category.csv"),
	slugSource("genres", "genre.csv"),
	{
		name:    "titles",
		file:    "titles.csv",
		table:   "titles",
		columns: []string{"id", "name", "year", "category"},
		query: `INSERT INTO titles (id, name, year, description, category_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			year, err := r.integer("year")
			if err != nil {
				return nil, err
			}
			category, err := r.optionalInt64("category")
			if err != nil {
				return nil, err
			}
			return []any{id, r["name"], int32(year), r["description"], category}, nil
		},
	},
	{
		name:    "genre-titles",
		file:    "genre_title.csv",
		table:   "genre_titles",
		columns: []string{"id", "title_id", "genre_id"},
		query: `INSERT INTO genre_titles (id, genre_id, title_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			titleID, err := r.integer("title_id")
			if err != nil {
				return nil, err
			}
			genreID, err := r.integer("genre_id")
			if err != nil {
				return nil, err
			}
			return []any{id, genreID, titleID}, nil
		},
	},
	{
		name:    "reviews",
		file:    "review.csv",
		table:   "reviews",
		columns: []string{"id", "title_id", "text", "author", "score", "pub_date"},
		query: `INSERT INTO reviews (id, title_id, author_id, text, score, pub_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING`,
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			titleID, err := r.integer("title_id")
			if err != nil {
				return nil, err
			}
			authorID, err := r.integer("author")
			if err != nil {
				return nil, err
			}
			score, err := r.integer("score")
			if err != nil {
				return nil, err
			}
			if score < 1 || score > 10 {
				return nil, fmt.Errorf("column score: %d out of range", score)
			}
			pubDate, err := r.timestamp("pub_date")
			if err != nil {
				return nil, err
			}
			return []any{id, titleID, authorID, r["text"], int16(score), pubDate}, nil
		},
	},
	{
		name:    "comments",
		file:    "comments.csv",
		table:   "comments",
		columns: []string{"id", "review_id", "text", "author", "pub_date"},
		query: `INSERT INTO comments (id, review_id, author_id, text, pub_date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			reviewID, err := r.integer("review_id")
			if err != nil {
				return nil, err
			}
			authorID, err := r.integer("author")
			if err != nil {
				return nil, err
			}
			pubDate, err := r.timestamp("pub_date")
			if err != nil {
				return nil, err
			}
			return []any{id, reviewID, authorID, r["text"], pubDate}, nil
		},
	},
}

func slugSource(table, file string) source {
	return source{
		name:    table,
		file:    file,
		table:   table,
		columns: []string{"id", "name", "slug"},
		query: fmt.Sprintf(`INSERT INTO %s (id, name, slug)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, table),
		args: func(r record) ([]any, error) {
			id, err := r.integer("id")
			if err != nil {
				return nil, err
			}
			return []any{id, r["name"], r["slug"]}, nil
		},
	}
}

// Names returns the source names accepted by Run, in import order.
func Names() []string {
	names := make([]string, len(Sources))
	for i, s := range Sources {
		names[i] = s.name
	}
	return names
}

var ErrUnknownSource = errors.New("unknown import source")

type Result struct {
	Source   string
	Inserted int
	Existing int
	Skipped  int
	Missing  bool
}

type Importer struct {
	db  Execer
	log *slog.Logger
	dir string
}

func New(db Execer, log *slog.Logger, dataDir string) *Importer {
	return &Importer{db: db, log: log, dir: dataDir}
}

// Run imports the named sources, or every source when names is empty or contains "all".
// Sources always run in dependency order. A missing file is reported and skipped;
// a malformed file stops that source only and its error is returned once all sources ran.
func (i *Importer) Run(ctx context.Context, names ...string) ([]Result, error) {
	selected, err := selectSources(names)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(selected))
	var errs []error
	for _, src := range selected {
		res, err := i.importSource(ctx, src)
		results = append(results, res)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.name, err))
		}
	}
	return results, errors.Join(errs...)
}

func selectSources(names []string) ([]source, error) {
	if len(names) == 0 {
		return Sources, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "all" {
			return Sources, nil
		}
		wanted[name] = true
	}
	selected := make([]source, 0, len(wanted))
	for _, src := range Sources {
		if wanted[src.name] {
			selected = append(selected, src)
			delete(wanted, src.name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for name := range wanted {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(unknown, ", "))
	}
	return selected, nil
}

func (i *Importer) importSource(ctx context.Context, src source) (Result, error) {
	const op = "importer.importSource"
	log := i.log.With("op", op, "source", src.name)
	res := Result{Source: src.name}

	path := filepath.Join(i.dir, src.file)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("file not found, skipping", "path", path)
			res.Missing = true
			return res, nil
		}
		return res, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, err
	}
	for idx := range header {
		header[idx] = strings.TrimSpace(strings.TrimPrefix(header[idx], "\ufeff"))
	}
	if err := checkColumns(header, src.columns); err != nil {
		return res, err
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		line, _ := reader.FieldPos(0)
		rec := make(record, len(header))
		for idx, col := range header {
			if idx < len(row) {
				rec[col] = row[idx]
			}
		}
		args, err := src.args(rec)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		tag, err := i.db.Exec(ctx, src.query, args...)
		if err != nil {
			err = postgres.MapError(err)
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrConflict) {
				log.Warn("row skipped", "line", line, "reason", err.Error())
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if tag.RowsAffected() == 0 {
			res.Existing++
		} else {
			res.Inserted++
		}
	}

	if res.Inserted > 0 {
		if err := i.resetSequence(ctx, src.table); err != nil {
			return res, err
		}
	}
	log.Info("source imported", "inserted", res.Inserted, "existing", res.Existing, "skipped", res.Skipped)
	return res, nil
}

func checkColumns(header, required []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// resetSequence moves the id sequence of table past the largest id in it.
func (i *Importer) resetSequence(ctx context.Context, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
		table,
	)
	_, err := i.db.Exec(ctx, query)
	return err
}
