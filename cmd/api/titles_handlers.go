package main

import (
	"net/http"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/services/titles"
)

type createTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        *int32   `json:"year" validate:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" validate:"required,dive,max=50"`
	Category    string   `json:"category" validate:"required,max=50"`
}

type updateTitleRequest struct {
	Name        *string   `json:"name" validate:"omitnil,min=1,max=256"`
	Year        *int32    `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category" validate:"omitnil,max=50"`
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	var filter filters.TitleFilter
	if !app.decodeQuery(w, r, &filter) {
		return
	}
	items, total, err := app.titles.List(r.Context(), filter, f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	writePage(app, w, r, items, total, f)
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	title, err := app.titles.Get(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, title)
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	var req createTitleRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	title, err := app.titles.Create(r.Context(), titles.CreateParams{
		Name:        req.Name,
		Year:        *req.Year,
		Description: req.Description,
		Genres:      req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, title)
}

func (app *Application) updateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	var req updateTitleRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	title, err := app.titles.Update(r.Context(), id, titles.UpdateParams{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, title)
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	if err := app.titles.Delete(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w, r)
}
