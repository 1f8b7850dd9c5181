package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/proj/internal/lib/logger"
	"yamdb/proj/internal/storage/postgres"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls []execCall
	exec  func(sql string, args []any) (pgconn.CommandTag, error)
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.calls = append(db.calls, execCall{sql: sql, args: args})
	if db.exec != nil {
		return db.exec(sql, args)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (db *fakeDB) inserts(table string) []execCall {
	var calls []execCall
	for _, c := range db.calls {
		if strings.HasPrefix(c.sql, "INSERT INTO "+table+" ") {
			calls = append(calls, c)
		}
	}
	return calls
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunAllInDependencyOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"users.csv":       "id,username,email,role,bio,first_name,last_name\n100,bingobongo,bingobongo@yamdb.fake,user,,,\n",
		"category.csv":    "id,name,slug\n1,Фильм,movie\n",
		"genre.csv":       "id,name,slug\n1,Драма,drama\n",
		"titles.csv":      "id,name,year,category\n1,Побег из Шоушенка,1994,1\n2,Без категории,2000,\n",
		"genre_title.csv": "id,title_id,genre_id\n1,1,1\n",
		"review.csv":      "id,title_id,text,author,score,pub_date\n1,1,Ну такое,100,10,2019-09-24T21:08:21.567Z\n",
		"comments.csv":    "id,review_id,text,author,pub_date\n1,1,Согласен,100,2019-09-24T21:08:21.567Z\n",
	})
	db := &fakeDB{}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "all")
	require.NoError(t, err)

	names := make([]string, len(results))
	for i, res := range results {
		names[i] = res.Source
		assert.Zero(t, res.Skipped, res.Source)
	}
	assert.Equal(t, Names(), names)

	users := db.inserts("users")
	require.Len(t, users, 1)
	assert.Equal(t, []any{int64(100), "bingobongo", "bingobongo@yamdb.fake", "user", "", "", ""}, users[0].args)

	titles := db.inserts("titles")
	require.Len(t, titles, 2)
	category := int64(1)
	assert.Equal(t, []any{int64(1), "Побег из Шоушенка", int32(1994), "", &category}, titles[0].args)
	assert.Nil(t, titles[1].args[4])

	links := db.inserts("genre_titles")
	require.Len(t, links, 1)
	assert.Equal(t, []any{int64(1), int64(1), int64(1)}, links[0].args)

	reviews := db.inserts("reviews")
	require.Len(t, reviews, 1)
	pubDate := time.Date(2019, 9, 24, 21, 8, 21, 567_000_000, time.UTC)
	assert.True(t, pubDate.Equal(reviews[0].args[5].(time.Time)))
	assert.Equal(t, int16(10), reviews[0].args[4])

	var setvals int
	for _, c := range db.calls {
		if strings.HasPrefix(c.sql, "SELECT setval") {
			setvals++
		}
	}
	assert.Equal(t, len(Sources), setvals)
}

func TestRunSkipsMissingParents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"review.csv": "id,title_id,text,author,score,pub_date\n" +
			"1,1,ok,100,5,2019-09-24T21:08:21Z\n" +
			"2,999,orphan,100,5,2019-09-24T21:08:21Z\n",
	})
	db := &fakeDB{exec: func(sql string, args []any) (pgconn.CommandTag, error) {
		if strings.HasPrefix(sql, "INSERT") && args[1] == int64(999) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: postgres.ErrForeignKeyCode, ConstraintName: "reviews_title_id_fkey"}
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "reviews")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Result{Source: "reviews", Inserted: 1, Skipped: 1}, results[0])
}

func TestRunCountsExistingRows(t *testing.T) {
	dir := writeFiles(t, map[string]string{"genre.csv": "id,name,slug\n1,Драма,drama\n2,Комедия,comedy\n"})
	db := &fakeDB{exec: func(sql string, args []any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "genres")
	require.NoError(t, err)
	assert.Equal(t, Result{Source: "genres", Existing: 2}, results[0])
	for _, c := range db.calls {
		assert.False(t, strings.HasPrefix(c.sql, "SELECT setval"), "sequence must not move when nothing was inserted")
	}
}

func TestRunMissingFileContinues(t *testing.T) {
	dir := writeFiles(t, map[string]string{"genre.csv": "id,name,slug\n1,Драма,drama\n"})
	db := &fakeDB{}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "genres", "categories")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "categories", results[0].Source)
	assert.True(t, results[0].Missing)
	assert.Equal(t, 1, results[1].Inserted)
}

func TestRunMalformedFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"category.csv": "id,name\n1,Фильм\n",
		"genre.csv":    "id,name,slug\nx,Драма,drama\n",
		"users.csv":    "id,username,email,role\n1,bob,bob@x.com,superhero\n",
	})
	db := &fakeDB{}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "users", "categories", "genres")
	require.Error(t, err)
	assert.Len(t, results, 3)
	assert.Contains(t, err.Error(), "categories: missing columns: slug")
	assert.Contains(t, err.Error(), "genres: line 2")
	assert.Contains(t, err.Error(), "unknown role")
	assert.Empty(t, db.calls)
}

func TestRunStorageFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{"genre.csv": "id,name,slug\n1,Драма,drama\n"})
	boom := errors.New("connection reset")
	db := &fakeDB{exec: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, boom
	}}
	_, err := New(db, logger.Discard(), dir).Run(context.Background(), "genres")
	assert.ErrorIs(t, err, boom)
}

func TestRunUnknownSource(t *testing.T) {
	_, err := New(&fakeDB{}, logger.Discard(), t.TempDir()).Run(context.Background(), "genres", "movies")
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "movies")
}

func TestBOMHeader(t *testing.T) {
	dir := writeFiles(t, map[string]string{"category.csv": "\ufeffid,name,slug\n1,Книга,book\n"})
	db := &fakeDB{}
	results, err := New(db, logger.Discard(), dir).Run(context.Background(), "categories")
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Inserted)
}
