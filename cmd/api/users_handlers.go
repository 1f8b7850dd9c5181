package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/services/users"
)

type createUserRequest struct {
	Username  string      `json:"username" validate:"required,max=150,username,notme"`
	Email     string      `json:"email" validate:"required,email,max=254"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

type updateUserRequest struct {
	Username  *string      `json:"username" validate:"omitnil,min=1,max=150,username,notme"`
	Email     *string      `json:"email" validate:"omitnil,email,max=254"`
	FirstName *string      `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string      `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" validate:"omitnil,oneof=user moderator admin"`
}

// updateMeRequest has no role or email; both are silently dropped from the body.
type updateMeRequest struct {
	Username  *string `json:"username" validate:"omitnil,min=1,max=150,username,notme"`
	FirstName *string `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string `json:"bio"`
}

func (req *updateUserRequest) params() users.UpdateParams {
	return users.UpdateParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	items, total, err := app.users.List(r.Context(), r.URL.Query().Get("search"), f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	writePage(app, w, r, items, total, f)
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.users.Create(r.Context(), users.CreateParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, user)
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, user)
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.users.Update(r.Context(), contextGetUser(r), chi.URLParam(r, "username"), req.params())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, user)
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := app.users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w, r)
}

func (app *Application) getMe(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, contextGetUser(r))
}

func (app *Application) updateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.users.UpdateMe(r.Context(), contextGetUser(r), users.UpdateParams{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, user)
}
