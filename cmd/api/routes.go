package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"yamdb/proj/internal/domain/policy"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", app.signup)
			r.Post("/token", app.obtainToken)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Use(app.authorize(policy.AdminOrReadOnly))
			r.Get("/", listCatalog(app, app.categories))
			r.Post("/", createCatalog(app, app.categories))
			r.Delete("/{slug}", deleteCatalog(app, app.categories))
		})
		r.Route("/genres", func(r chi.Router) {
			r.Use(app.authorize(policy.AdminOrReadOnly))
			r.Get("/", listCatalog(app, app.genres))
			r.Post("/", createCatalog(app, app.genres))
			r.Delete("/{slug}", deleteCatalog(app, app.genres))
		})
		r.Route("/titles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(app.authorize(policy.AdminOrReadOnly))
				r.Get("/", app.listTitles)
				r.Post("/", app.createTitle)
				r.Get("/{title_id}", app.getTitle)
				r.Patch("/{title_id}", app.updateTitle)
				r.Delete("/{title_id}", app.deleteTitle)
			})
			r.Route("/{title_id}/reviews", func(r chi.Router) {
				r.Use(app.authorize(policy.OwnerOrPrivileged))
				r.Get("/", app.listReviews)
				r.Post("/", app.createReview)
				r.Get("/{review_id}", app.getReview)
				r.Patch("/{review_id}", app.updateReview)
				r.Delete("/{review_id}", app.deleteReview)
				r.Route("/{review_id}/comments", func(r chi.Router) {
					r.Get("/", app.listComments)
					r.Post("/", app.createComment)
					r.Get("/{comment_id}", app.getComment)
					r.Patch("/{comment_id}", app.updateComment)
					r.Delete("/{comment_id}", app.deleteComment)
				})
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(app.authorize(policy.Authenticated))
				r.Get("/me", app.getMe)
				r.Patch("/me", app.updateMe)
			})
			r.Group(func(r chi.Router) {
				r.Use(app.authorize(policy.AdminOnly))
				r.Get("/", app.listUsers)
				r.Post("/", app.createUser)
				r.Get("/{username}", app.getUser)
				r.Patch("/{username}", app.updateUser)
				r.Delete("/{username}", app.deleteUser)
			})
		})
	})
	return router
}
