package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/logger"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

type storageMock[T models.Category | models.Genre] struct {
	mock.Mock
}

func (m *storageMock[T]) Insert(ctx context.Context, name, slug string) (*T, error) {
	args := m.Called(ctx, name, slug)
	item, _ := args.Get(0).(*T)
	return item, args.Error(1)
}

func (m *storageMock[T]) List(ctx context.Context, search string, f filters.Filters) ([]T, int, error) {
	args := m.Called(ctx, search, f)
	items, _ := args.Get(0).([]T)
	return items, args.Int(1), args.Error(2)
}

func (m *storageMock[T]) DeleteBySlug(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	st := new(storageMock[models.Category])
	svc := New[models.Category](logger.Discard(), "category", st)

	st.On("Insert", ctx, "Films", "films").Return(&models.Category{ID: 1, Name: "Films", Slug: "films"}, nil).Once()
	item, err := svc.Create(ctx, "Films", "films")
	require.NoError(t, err)
	assert.Equal(t, "films", item.Slug)

	st.On("Insert", ctx, "Films", "films").Return(nil, storage.ErrConflict).Once()
	_, err = svc.Create(ctx, "Films", "films")
	var fieldErrs validator.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "category with this slug already exists", fieldErrs["slug"])
}

func TestList(t *testing.T) {
	ctx := context.Background()
	st := new(storageMock[models.Genre])
	svc := New[models.Genre](logger.Discard(), "genre", st)
	f := filters.Filters{Page: 1, PageSize: 10}
	genres := []models.Genre{{ID: 1, Name: "Drama", Slug: "drama"}}

	st.On("List", ctx, "dra", f).Return(genres, 1, nil)
	items, total, err := svc.List(ctx, "dra", f)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, genres, items)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st := new(storageMock[models.Genre])
	svc := New[models.Genre](logger.Discard(), "genre", st)

	st.On("DeleteBySlug", ctx, "drama").Return(nil).Once()
	assert.NoError(t, svc.Delete(ctx, "drama"))

	st.On("DeleteBySlug", ctx, "missing").Return(storage.ErrNotFound).Once()
	err := svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "genre not found", err.Error())

	boom := errors.New("boom")
	st.On("DeleteBySlug", ctx, "broken").Return(boom).Once()
	assert.ErrorIs(t, svc.Delete(ctx, "broken"), boom)
}
