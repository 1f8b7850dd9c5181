package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"yamdb/proj/internal/domain/models"
)

type slugRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// Categories and genres share handlers; each constructor binds one catalog service.

func listCatalog[T models.Category | models.Genre](app *Application, svc catalogService[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := app.readFilters(w, r)
		if !ok {
			return
		}
		items, total, err := svc.List(r.Context(), r.URL.Query().Get("search"), f)
		if err != nil {
			app.handleServiceError(w, r, err)
			return
		}
		writePage(app, w, r, items, total, f)
	}
}

func createCatalog[T models.Category | models.Genre](app *Application, svc catalogService[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req slugRequest
		if !app.readAndValidate(w, r, &req) {
			return
		}
		item, err := svc.Create(r.Context(), req.Name, req.Slug)
		if err != nil {
			app.handleServiceError(w, r, err)
			return
		}
		app.Http.Created(w, r, item)
	}
}

func deleteCatalog[T models.Category | models.Genre](app *Application, svc catalogService[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
			app.handleServiceError(w, r, err)
			return
		}
		app.Http.NoContent(w, r)
	}
}
