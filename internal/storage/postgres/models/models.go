package models

import (
	"strings"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/storage/postgres"
)

type Models struct {
	Users      *UserModel
	Categories *SlugModel[models.Category]
	Genres     *SlugModel[models.Genre]
	Titles     *TitleModel
	Reviews    *ReviewModel
	Comments   *CommentModel
}

func New(db *postgres.PostgresDB) *Models {
	return &Models{
		Users:      &UserModel{db.Conn},
		Categories: NewSlugModel[models.Category](db.Conn, "categories"),
		Genres:     NewSlugModel[models.Genre](db.Conn, "genres"),
		Titles:     &TitleModel{db.Conn},
		Reviews:    &ReviewModel{db.Conn},
		Comments:   &CommentModel{db.Conn},
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in the column.
// Empty input stays empty so queries can skip the filter.
func containsPattern(s string) string {
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}
