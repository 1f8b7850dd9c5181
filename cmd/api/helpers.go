package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/services/auth"
	"yamdb/proj/internal/services/catalog"
	"yamdb/proj/internal/services/reviews"
	"yamdb/proj/internal/services/titles"
	"yamdb/proj/internal/services/users"
)

var notFoundErrors = []error{
	auth.ErrUserNotFound,
	users.ErrUserNotFound,
	catalog.ErrNotFound,
	titles.ErrTitleNotFound,
	reviews.ErrTitleNotFound,
	reviews.ErrReviewNotFound,
	reviews.ErrCommentNotFound,
}

// handleServiceError maps service errors onto responses.
func (app *Application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.FieldErrors
	if errors.As(err, &fieldErrs) {
		app.Http.ValidationError(w, r, fieldErrs)
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
	}
	if errors.Is(err, users.ErrRoleChangeForbidden) {
		app.Http.Forbidden(w, r, err.Error())
		return
	}
	app.Http.ServerError(w, r, err, "")
}

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request, param string) (id int64, extracted bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		app.Http.NotFound(w, r, "Not found.")
		return 0, false
	}
	return id, true
}

// readAndValidate decodes a JSON body into dst and runs struct validation on it.
// On failure the response has already been written.
func (app *Application) readAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.readJSON(w, r, dst); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	if errs := validator.ValidateStruct(app.validator, dst); errs != nil {
		app.Http.ValidationError(w, r, errs)
		return false
	}
	return true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

func schemaErrors(err error) validator.FieldErrors {
	fieldErrs := make(validator.FieldErrors)
	var multi schema.MultiError
	if errors.As(err, &multi) {
		for field := range multi {
			fieldErrs[field] = "Enter a valid value"
		}
		return fieldErrs
	}
	fieldErrs["non_field_errors"] = err.Error()
	return fieldErrs
}

// decodeQuery fills dst from the query string and validates it.
func (app *Application) decodeQuery(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		app.Http.ValidationError(w, r, schemaErrors(err))
		return false
	}
	if errs := validator.ValidateStruct(app.validator, dst); errs != nil {
		app.Http.ValidationError(w, r, errs)
		return false
	}
	return true
}

func (app *Application) readFilters(w http.ResponseWriter, r *http.Request) (filters.Filters, bool) {
	var f filters.Filters
	if !app.decodeQuery(w, r, &f) {
		return f, false
	}
	f.Normalize(app.cfg.Pagination.DefaultPageSize, app.cfg.Pagination.MaxPageSize)
	return f, true
}

// requestURL reconstructs the absolute URL of the request for pagination links.
func requestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}

func writePage[T any](app *Application, w http.ResponseWriter, r *http.Request, results []T, total int, f filters.Filters) {
	if f.PastEnd(len(results)) {
		app.Http.NotFound(w, r, "Invalid page.")
		return
	}
	app.Http.Ok(w, r, filters.NewPage(results, total, f, requestURL(r)))
}

type CtxKey string

const CtxKeyUser CtxKey = "user"

func contextGetUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(CtxKeyUser).(*models.User)
	if !ok || user == nil {
		return models.AnonymousUser
	}
	return user
}
