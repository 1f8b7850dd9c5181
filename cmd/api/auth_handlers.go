package main

import (
	"net/http"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.auth.Signup(r.Context(), req.Username, req.Email)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, signupRequest{Username: user.Username, Email: user.Email})
}

type tokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

func (app *Application) obtainToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	token, err := app.auth.ObtainToken(r.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"token": token})
}
