package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/proj/internal/config"
	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/logger"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/services/titles"
	"yamdb/proj/internal/services/users"
)

type authMock struct{ mock.Mock }

func (m *authMock) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *authMock) ObtainToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *authMock) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type usersMock struct{ mock.Mock }

func (m *usersMock) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	args := m.Called(ctx, search, f)
	items, _ := args.Get(0).([]models.User)
	return items, args.Int(1), args.Error(2)
}

func (m *usersMock) Get(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *usersMock) Create(ctx context.Context, params users.CreateParams) (*models.User, error) {
	args := m.Called(ctx, params)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *usersMock) Update(ctx context.Context, actor *models.User, username string, params users.UpdateParams) (*models.User, error) {
	args := m.Called(ctx, actor, username, params)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *usersMock) UpdateMe(ctx context.Context, me *models.User, params users.UpdateParams) (*models.User, error) {
	args := m.Called(ctx, me, params)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *usersMock) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

type catalogMock[T models.Category | models.Genre] struct{ mock.Mock }

func (m *catalogMock[T]) Create(ctx context.Context, name, slug string) (*T, error) {
	args := m.Called(ctx, name, slug)
	item, _ := args.Get(0).(*T)
	return item, args.Error(1)
}

func (m *catalogMock[T]) List(ctx context.Context, search string, f filters.Filters) ([]T, int, error) {
	args := m.Called(ctx, search, f)
	items, _ := args.Get(0).([]T)
	return items, args.Int(1), args.Error(2)
}

func (m *catalogMock[T]) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type titlesMock struct{ mock.Mock }

func (m *titlesMock) Get(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	title, _ := args.Get(0).(*models.Title)
	return title, args.Error(1)
}

func (m *titlesMock) List(ctx context.Context, filter filters.TitleFilter, f filters.Filters) ([]models.Title, int, error) {
	args := m.Called(ctx, filter, f)
	items, _ := args.Get(0).([]models.Title)
	return items, args.Int(1), args.Error(2)
}

func (m *titlesMock) Create(ctx context.Context, params titles.CreateParams) (*models.Title, error) {
	args := m.Called(ctx, params)
	title, _ := args.Get(0).(*models.Title)
	return title, args.Error(1)
}

func (m *titlesMock) Update(ctx context.Context, id int64, params titles.UpdateParams) (*models.Title, error) {
	args := m.Called(ctx, id, params)
	title, _ := args.Get(0).(*models.Title)
	return title, args.Error(1)
}

func (m *titlesMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type reviewsMock struct{ mock.Mock }

func (m *reviewsMock) ListReviews(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	args := m.Called(ctx, titleID, f)
	items, _ := args.Get(0).([]models.Review)
	return items, args.Int(1), args.Error(2)
}

func (m *reviewsMock) GetReview(ctx context.Context, titleID, id int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, id)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func (m *reviewsMock) CreateReview(ctx context.Context, titleID, authorID int64, text string, score int16) (*models.Review, error) {
	args := m.Called(ctx, titleID, authorID, text, score)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func (m *reviewsMock) UpdateReview(ctx context.Context, review *models.Review, text *string, score *int16) (*models.Review, error) {
	args := m.Called(ctx, review, text, score)
	updated, _ := args.Get(0).(*models.Review)
	return updated, args.Error(1)
}

func (m *reviewsMock) DeleteReview(ctx context.Context, titleID, id int64) error {
	return m.Called(ctx, titleID, id).Error(0)
}

func (m *reviewsMock) ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	args := m.Called(ctx, titleID, reviewID, f)
	items, _ := args.Get(0).([]models.Comment)
	return items, args.Int(1), args.Error(2)
}

func (m *reviewsMock) GetComment(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	args := m.Called(ctx, titleID, reviewID, id)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *reviewsMock) CreateComment(ctx context.Context, titleID, reviewID, authorID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, titleID, reviewID, authorID, text)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *reviewsMock) UpdateComment(ctx context.Context, comment *models.Comment, text *string) (*models.Comment, error) {
	args := m.Called(ctx, comment, text)
	updated, _ := args.Get(0).(*models.Comment)
	return updated, args.Error(1)
}

func (m *reviewsMock) DeleteComment(ctx context.Context, reviewID, id int64) error {
	return m.Called(ctx, reviewID, id).Error(0)
}

type testMocks struct {
	auth       *authMock
	users      *usersMock
	categories *catalogMock[models.Category]
	genres     *catalogMock[models.Genre]
	titles     *titlesMock
	reviews    *reviewsMock
}

func NewTestApplication(t *testing.T) (*Application, *testMocks) {
	t.Helper()
	cfg := &config.Config{
		Pagination: config.Pagination{DefaultPageSize: 10, MaxPageSize: 100},
	}
	log := logger.Discard()
	mocks := &testMocks{
		auth:       new(authMock),
		users:      new(usersMock),
		categories: new(catalogMock[models.Category]),
		genres:     new(catalogMock[models.Genre]),
		titles:     new(titlesMock),
		reviews:    new(reviewsMock),
	}
	app := &Application{
		cfg:          cfg,
		log:          log,
		validator:    validator.New(),
		queryDecoder: newQueryDecoder(),
		auth:         mocks.auth,
		users:        mocks.users,
		categories:   mocks.categories,
		genres:       mocks.genres,
		titles:       mocks.titles,
		reviews:      mocks.reviews,
		Http:         &Http{log: log, cfg: cfg},
	}
	return app, mocks
}

// Tokens accepted by the test auth mock. Each maps onto one of the fixture users below.
const (
	adminToken     = "admin-token"
	moderatorToken = "moderator-token"
	userToken      = "user-token"
	otherToken     = "other-token"
)

var (
	adminUser     = &models.User{ID: 1, Username: "admin", Email: "admin@x.com", Role: models.RoleAdmin, IsActive: true}
	moderatorUser = &models.User{ID: 2, Username: "moder", Email: "moder@x.com", Role: models.RoleModerator, IsActive: true}
	plainUser     = &models.User{ID: 3, Username: "bob", Email: "bob@x.com", Role: models.RoleUser, IsActive: true}
	otherUser     = &models.User{ID: 4, Username: "alice", Email: "alice@x.com", Role: models.RoleUser, IsActive: true}
)

func (m *testMocks) withUsers() *testMocks {
	m.auth.On("Authenticate", mock.Anything, adminToken).Return(adminUser, nil).Maybe()
	m.auth.On("Authenticate", mock.Anything, moderatorToken).Return(moderatorUser, nil).Maybe()
	m.auth.On("Authenticate", mock.Anything, userToken).Return(plainUser, nil).Maybe()
	m.auth.On("Authenticate", mock.Anything, otherToken).Return(otherUser, nil).Maybe()
	return m
}

type testResponse struct {
	Code int
	Body map[string]any
	Raw  string
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) testResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	resp := testResponse{Code: rec.Code, Raw: rec.Body.String()}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp.Body)
	}
	return resp
}
