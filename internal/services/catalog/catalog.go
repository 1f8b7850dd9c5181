package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

var ErrNotFound = errors.New("not found")

type Storage[T models.Category | models.Genre] interface {
	Insert(ctx context.Context, name, slug string) (*T, error)
	List(ctx context.Context, search string, f filters.Filters) ([]T, int, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

// Service manages a slug dictionary such as categories or genres.
type Service[T models.Category | models.Genre] struct {
	log     *slog.Logger
	entity  string
	storage Storage[T]
}

// New returns a service for one dictionary. entity names it in log lines and error messages.
func New[T models.Category | models.Genre](log *slog.Logger, entity string, storage Storage[T]) *Service[T] {
	return &Service[T]{
		log:     log,
		entity:  entity,
		storage: storage,
	}
}

func (s *Service[T]) notFound() error {
	return fmt.Errorf("%s %w", s.entity, ErrNotFound)
}

func (s *Service[T]) Create(ctx context.Context, name, slug string) (*T, error) {
	const op = "catalog.Service.Create"
	log := s.log.With("op", op, "entity", s.entity, "slug", slug)
	item, err := s.storage.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("slug already exists")
			return nil, validator.NewFieldError("slug", fmt.Sprintf("%s with this slug already exists", s.entity))
		}
		log.Error(err.Error())
		return nil, err
	}
	return item, nil
}

func (s *Service[T]) List(ctx context.Context, search string, f filters.Filters) ([]T, int, error) {
	const op = "catalog.Service.List"
	log := s.log.With("op", op, "entity", s.entity)
	items, total, err := s.storage.List(ctx, search, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service[T]) Delete(ctx context.Context, slug string) error {
	const op = "catalog.Service.Delete"
	log := s.log.With("op", op, "entity", s.entity, "slug", slug)
	if err := s.storage.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("not found")
			return s.notFound()
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
