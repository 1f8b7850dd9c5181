package main

import (
	"context"
	"log/slog"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"yamdb/proj/internal/config"
	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/services"
	"yamdb/proj/internal/services/titles"
	"yamdb/proj/internal/services/users"
)

type authService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	ObtainToken(ctx context.Context, username, code string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userService interface {
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, params users.CreateParams) (*models.User, error)
	Update(ctx context.Context, actor *models.User, username string, params users.UpdateParams) (*models.User, error)
	UpdateMe(ctx context.Context, me *models.User, params users.UpdateParams) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type catalogService[T models.Category | models.Genre] interface {
	Create(ctx context.Context, name, slug string) (*T, error)
	List(ctx context.Context, search string, f filters.Filters) ([]T, int, error)
	Delete(ctx context.Context, slug string) error
}

type titleService interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter filters.TitleFilter, f filters.Filters) ([]models.Title, int, error)
	Create(ctx context.Context, params titles.CreateParams) (*models.Title, error)
	Update(ctx context.Context, id int64, params titles.UpdateParams) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type reviewService interface {
	ListReviews(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error)
	GetReview(ctx context.Context, titleID, id int64) (*models.Review, error)
	CreateReview(ctx context.Context, titleID, authorID int64, text string, score int16) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review, text *string, score *int16) (*models.Review, error)
	DeleteReview(ctx context.Context, titleID, id int64) error

	ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error)
	GetComment(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error)
	CreateComment(ctx context.Context, titleID, reviewID, authorID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment, text *string) (*models.Comment, error)
	DeleteComment(ctx context.Context, reviewID, id int64) error
}

type backgroundTasks interface {
	Add(task func())
	Shutdown(ctx context.Context) error
}

type Application struct {
	cfg          *config.Config
	log          *slog.Logger
	Http         *Http
	validator    *govalidator.Validate
	queryDecoder *schema.Decoder
	auth         authService
	users        userService
	categories   catalogService[models.Category]
	genres       catalogService[models.Genre]
	titles       titleService
	reviews      reviewService
	bgTasks      backgroundTasks
}

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

func NewApplication(cfg *config.Config, log *slog.Logger, svc *services.Services, bgTasks backgroundTasks) *Application {
	return &Application{
		cfg:          cfg,
		log:          log,
		validator:    validator.New(),
		queryDecoder: newQueryDecoder(),
		auth:         svc.Auth,
		users:        svc.Users,
		categories:   svc.Categories,
		genres:       svc.Genres,
		titles:       svc.Titles,
		reviews:      svc.Reviews,
		bgTasks:      bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
