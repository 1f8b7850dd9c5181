package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/domain/policy"
	"yamdb/proj/internal/services/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthorize(t *testing.T) {
	app, _ := NewTestApplication(t)
	inactive := &models.User{ID: 9, Username: "new", Role: models.RoleAdmin, IsActive: false}
	testCases := []struct {
		name     string
		policy   policy.Policy
		method   string
		user     *models.User
		expected int
	}{
		{"anonymous read allowed", policy.AdminOrReadOnly, http.MethodGet, models.AnonymousUser, http.StatusOK},
		{"anonymous write unauthorized", policy.AdminOrReadOnly, http.MethodPost, models.AnonymousUser, http.StatusUnauthorized},
		{"user write forbidden", policy.AdminOrReadOnly, http.MethodPost, plainUser, http.StatusForbidden},
		{"admin write allowed", policy.AdminOrReadOnly, http.MethodPost, adminUser, http.StatusOK},
		{"inactive admin treated as anonymous", policy.AdminOrReadOnly, http.MethodPost, inactive, http.StatusUnauthorized},
		{"moderator denied users admin", policy.AdminOnly, http.MethodGet, moderatorUser, http.StatusForbidden},
		{"user may create review", policy.OwnerOrPrivileged, http.MethodPost, plainUser, http.StatusOK},
		{"anonymous may not create review", policy.OwnerOrPrivileged, http.MethodPost, models.AnonymousUser, http.StatusUnauthorized},
		{"me requires authentication", policy.Authenticated, http.MethodGet, models.AnonymousUser, http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(tc.method, "/", nil)
			request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, tc.user))
			app.authorize(tc.policy)(okHandler).ServeHTTP(recorder, request)
			assert.Equal(t, tc.expected, recorder.Code)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	app, mocks := NewTestApplication(t)
	mocks.withUsers()
	mocks.auth.On("Authenticate", mock.Anything, "expired").Return(nil, auth.ErrInvalidToken)
	mocks.auth.On("Authenticate", mock.Anything, "db-down").Return(nil, errors.New("connection refused"))

	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextGetUser(r)
		w.WriteHeader(http.StatusOK)
	})
	testCases := []struct {
		name     string
		header   string
		expected int
		user     *models.User
	}{
		{name: "no header", expected: http.StatusOK, user: models.AnonymousUser},
		{name: "valid token", header: "Bearer " + userToken, expected: http.StatusOK, user: plainUser},
		{name: "wrong scheme", header: "Token " + userToken, expected: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", expected: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer expired", expected: http.StatusUnauthorized},
		{name: "storage failure", header: "Bearer db-down", expected: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				request.Header.Set("Authorization", tc.header)
			}
			app.Authenticate(next).ServeHTTP(recorder, request)
			assert.Equal(t, tc.expected, recorder.Code)
			if tc.user != nil {
				assert.Equal(t, tc.user, seen)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	app, _ := NewTestApplication(t)
	for _, value := range []any{errors.New("boom"), "boom"} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		app.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(value)
		})).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	app, _ := NewTestApplication(t)
	app.cfg.Limiter.Enabled = true
	app.cfg.Limiter.Rps = 1
	app.cfg.Limiter.Burst = 2
	handler := app.RateLimiter(okHandler)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
