package main

import (
	"net/http"

	"yamdb/proj/internal/domain/policy"
)

type createReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int16  `json:"score" validate:"required,min=1,max=10"`
}

type updateReviewRequest struct {
	Text  *string `json:"text" validate:"omitnil,min=1"`
	Score *int16  `json:"score" validate:"omitnil,min=1,max=10"`
}

type createCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type updateCommentRequest struct {
	Text *string `json:"text" validate:"omitnil,min=1"`
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	items, total, err := app.reviews.ListReviews(r.Context(), titleID, f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	writePage(app, w, r, items, total, f)
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	review, err := app.reviews.GetReview(r.Context(), titleID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, review)
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	var req createReviewRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user := contextGetUser(r)
	review, err := app.reviews.CreateReview(r.Context(), titleID, user.ID, req.Text, req.Score)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, review)
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	review, err := app.reviews.GetReview(r.Context(), titleID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if !app.allowObject(w, r, policy.OwnerOrPrivileged, review.AuthorID) {
		return
	}
	var req updateReviewRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	updated, err := app.reviews.UpdateReview(r.Context(), review, req.Text, req.Score)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, updated)
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	review, err := app.reviews.GetReview(r.Context(), titleID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if !app.allowObject(w, r, policy.OwnerOrPrivileged, review.AuthorID) {
		return
	}
	if err := app.reviews.DeleteReview(r.Context(), titleID, id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w, r)
}

func (app *Application) listComments(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	f, ok := app.readFilters(w, r)
	if !ok {
		return
	}
	items, total, err := app.reviews.ListComments(r.Context(), titleID, reviewID, f)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	writePage(app, w, r, items, total, f)
}

func (app *Application) getComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "comment_id")
	if !ok {
		return
	}
	comment, err := app.reviews.GetComment(r.Context(), titleID, reviewID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, comment)
}

func (app *Application) createComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	var req createCommentRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user := contextGetUser(r)
	comment, err := app.reviews.CreateComment(r.Context(), titleID, reviewID, user.ID, req.Text)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, comment)
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "comment_id")
	if !ok {
		return
	}
	comment, err := app.reviews.GetComment(r.Context(), titleID, reviewID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if !app.allowObject(w, r, policy.OwnerOrPrivileged, comment.AuthorID) {
		return
	}
	var req updateCommentRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	updated, err := app.reviews.UpdateComment(r.Context(), comment, req.Text)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, updated)
}

func (app *Application) deleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "title_id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "review_id")
	if !ok {
		return
	}
	id, ok := app.extractIDParam(w, r, "comment_id")
	if !ok {
		return
	}
	comment, err := app.reviews.GetComment(r.Context(), titleID, reviewID, id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if !app.allowObject(w, r, policy.OwnerOrPrivileged, comment.AuthorID) {
		return
	}
	if err := app.reviews.DeleteComment(r.Context(), reviewID, id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w, r)
}
