package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/proj/internal/domain/models"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "", containsPattern(""))
	assert.Equal(t, "%dra%", containsPattern("dra"))
	assert.Equal(t, `%100\%\_off\\%`, containsPattern(`100%_off\`))
}

func convertSlugRow[T models.Category | models.Genre](r slugRow) T {
	return T(r)
}

func TestSlugRowConversion(t *testing.T) {
	r := slugRow{ID: 7, Name: "Drama", Slug: "drama"}
	assert.Equal(t, models.Genre{ID: 7, Name: "Drama", Slug: "drama"}, convertSlugRow[models.Genre](r))
	assert.Equal(t, models.Category{ID: 7, Name: "Drama", Slug: "drama"}, convertSlugRow[models.Category](r))
}
