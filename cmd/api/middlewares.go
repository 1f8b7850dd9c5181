package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/domain/policy"
	"yamdb/proj/internal/services/auth"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	if !app.cfg.Limiter.Enabled {
		return next
	}
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{
				limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst),
			}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.Detail(w, r, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate resolves the bearer token, if any, into the request user.
// Requests without an Authorization header proceed as the anonymous user.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := models.AnonymousUser

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			log := app.Http.setupLogPerReq(r)
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				log.Warn("Invalid auth header")
				app.Http.Unauthorized(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
				return
			}
			var err error
			user, err = app.auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					log.Info("token rejected", "errMsg", err.Error())
					app.Http.Unauthorized(w, r, "Given token not valid for any token type")
					return
				}
				app.Http.ServerError(w, r, err, "")
				return
			}
		}
		r = r.WithContext(context.WithValue(r.Context(), CtxKeyUser, user))
		next.ServeHTTP(w, r)
	})
}

func (app *Application) writeDecision(w http.ResponseWriter, r *http.Request, decision policy.Decision) {
	switch decision {
	case policy.DenyUnauthenticated:
		app.Http.Unauthorized(w, r, "Authentication credentials were not provided.")
	default:
		app.Http.Forbidden(w, r, "You do not have permission to perform this action.")
	}
}

// authorize applies the collection level check of p before the handler runs.
func (app *Application) authorize(p policy.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := policy.ActorFrom(contextGetUser(r))
			decision := p.Collection(actor, policy.ActionFor(r.Method))
			if !decision.Allowed() {
				app.Http.setupLogPerReq(r).Info("access denied", "actor", actor.Kind.String(), "decision", decision.String())
				app.writeDecision(w, r, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allowObject applies the object level check of p for an object owned by ownerID.
// On denial the response has already been written.
func (app *Application) allowObject(w http.ResponseWriter, r *http.Request, p policy.Policy, ownerID int64) bool {
	actor := policy.ActorFrom(contextGetUser(r))
	decision := p.Object(actor, policy.ActionFor(r.Method), ownerID)
	if !decision.Allowed() {
		app.writeDecision(w, r, decision)
		return false
	}
	return true
}
