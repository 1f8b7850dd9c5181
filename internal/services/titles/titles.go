package titles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

type TitleStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter filters.TitleFilter, f filters.Filters) ([]models.Title, int, error)
	Insert(ctx context.Context, title *models.Title) (int64, error)
	Update(ctx context.Context, title *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type CategoryLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type GenreLookup interface {
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
}

type TitleService struct {
	log        *slog.Logger
	storage    TitleStorage
	categories CategoryLookup
	genres     GenreLookup
	minYear    int32
	now        func() time.Time
}

func New(log *slog.Logger, storage TitleStorage, categories CategoryLookup, genres GenreLookup, minYear int32) *TitleService {
	return &TitleService{
		log:        log,
		storage:    storage,
		categories: categories,
		genres:     genres,
		minYear:    minYear,
		now:        time.Now,
	}
}

type CreateParams struct {
	Name        string
	Year        int32
	Description string
	Genres      []string
	Category    string
}

// UpdateParams holds a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Name        *string
	Year        *int32
	Description *string
	Genres      *[]string
	Category    *string
}

func (s *TitleService) validateYear(year int32) error {
	if year < s.minYear {
		return validator.NewFieldError("year", fmt.Sprintf("Year must not be less than %d", s.minYear))
	}
	if current := int32(s.now().Year()); year > current {
		return validator.NewFieldError("year", fmt.Sprintf("Year must not be greater than %d", current))
	}
	return nil
}

func (s *TitleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, validator.NewFieldError("category", fmt.Sprintf("Category with slug %q does not exist", slug))
		}
		return nil, err
	}
	return category, nil
}

func (s *TitleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return []models.Genre{}, nil
	}
	genres, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	var missing []string
	for _, slug := range slugs {
		if !found[slug] {
			missing = append(missing, slug)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, validator.NewFieldError("genre", fmt.Sprintf("Genres with slugs %s do not exist", strings.Join(missing, ", ")))
	}
	return genres, nil
}

func (s *TitleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	const op = "titles.TitleService.Get"
	log := s.log.With("op", op, "id", id)
	title, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *TitleService) List(ctx context.Context, filter filters.TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	const op = "titles.TitleService.List"
	log := s.log.With("op", op)
	titles, total, err := s.storage.List(ctx, filter, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *TitleService) Create(ctx context.Context, params CreateParams) (*models.Title, error) {
	const op = "titles.TitleService.Create"
	log := s.log.With("op", op, "name", params.Name, "year", params.Year, "category", params.Category, "genres", params.Genres)
	if err := s.validateYear(params.Year); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, params.Category)
	if err != nil {
		log.Info("category not resolved", "errMsg", err.Error())
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, params.Genres)
	if err != nil {
		log.Info("genres not resolved", "errMsg", err.Error())
		return nil, err
	}
	title := &models.Title{
		Name:        params.Name,
		Year:        params.Year,
		Description: params.Description,
		Genres:      genres,
		Category:    category,
	}
	id, err := s.storage.Insert(ctx, title)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("reference vanished while inserting title", "errMsg", err.Error())
			return nil, referenceError(err)
		}
		log.Error("Error inserting title: " + err.Error())
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TitleService) Update(ctx context.Context, id int64, params UpdateParams) (*models.Title, error) {
	const op = "titles.TitleService.Update"
	log := s.log.With("op", op, "id", id)
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		title.Name = *params.Name
	}
	if params.Year != nil {
		if err := s.validateYear(*params.Year); err != nil {
			return nil, err
		}
		title.Year = *params.Year
	}
	if params.Description != nil {
		title.Description = *params.Description
	}
	if params.Category != nil {
		category, err := s.resolveCategory(ctx, *params.Category)
		if err != nil {
			log.Info("category not resolved", "errMsg", err.Error())
			return nil, err
		}
		title.Category = category
	}
	if params.Genres != nil {
		genres, err := s.resolveGenres(ctx, *params.Genres)
		if err != nil {
			log.Info("genres not resolved", "errMsg", err.Error())
			return nil, err
		}
		title.Genres = genres
	}
	if err := s.storage.Update(ctx, title, params.Genres != nil); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title or reference not found", "errMsg", err.Error())
			return nil, referenceError(err)
		}
		log.Error("Error updating title: " + err.Error())
		return nil, err
	}
	return s.Get(ctx, id)
}

// referenceError turns a not found error raised by a title write into the field it
// concerns. The foreign key constraint name, when present, tells which row disappeared.
func referenceError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "title_id_fkey"):
		return ErrTitleNotFound
	case strings.Contains(msg, "category_id_fkey"):
		return validator.NewFieldError("category", "Category does not exist")
	case strings.Contains(msg, "genre_id_fkey"):
		return validator.NewFieldError("genre", "Some of the genres do not exist")
	}
	return ErrTitleNotFound
}

func (s *TitleService) Delete(ctx context.Context, id int64) error {
	const op = "titles.TitleService.Delete"
	log := s.log.With("op", op, "id", id)
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return ErrTitleNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
