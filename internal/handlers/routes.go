package handlers

import (
	"context"
	"log"
	"net/http"

	"dicteeclash/internal/security"
)

// Routes bundles everything the HTTP API is served from. Limiters and
// Metrics may be nil.
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Lists      *ListHandler
	Imports    *ImportHandler
	Drills     *DrillHandler
	Sessions   *SessionHandler
	Students   *StudentHandler

	AuthLimiter   *security.RateLimiter
	ImportLimiter *security.RateLimiter

	Ping    func(ctx context.Context) error
	Metrics http.Handler
}

// Register adds every route to mux
func (rt *Routes) Register(mux *http.ServeMux) {
	mw := rt.Middleware

	mux.HandleFunc("GET /healthz", rt.health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Teacher accounts
	mux.Handle("POST /api/auth/register", limit(rt.AuthLimiter, rt.Auth.Register))
	mux.Handle("POST /api/auth/login", limit(rt.AuthLimiter, rt.Auth.Login))
	mux.HandleFunc("GET /api/auth/me", mw.RequireAuth(rt.Auth.Me))
	if rt.Auth.google != nil {
		mux.Handle("GET /auth/google/login", limit(rt.AuthLimiter, rt.Auth.StartOAuth))
		mux.Handle("GET /auth/google/callback", limit(rt.AuthLimiter, rt.Auth.OAuthCallback))
	}

	// Document import
	mux.Handle("POST /api/import", limit(rt.ImportLimiter, rt.Imports.Import))

	// Lists
	mux.HandleFunc("POST /api/lists", mw.OptionalAuth(rt.Lists.CreateList))
	mux.HandleFunc("GET /api/lists", mw.RequireAuth(rt.Lists.MyLists))
	mux.HandleFunc("GET /api/lists/{code}", rt.Lists.GetList)
	mux.HandleFunc("PUT /api/lists/{id}", mw.RequireAuth(rt.Lists.UpdateList))
	mux.HandleFunc("PUT /api/lists/{id}/words", mw.RequireAuth(rt.Lists.ReplaceWords))
	mux.HandleFunc("DELETE /api/lists/{id}", mw.RequireAuth(rt.Lists.DeleteList))
	mux.HandleFunc("POST /api/lists/{id}/share", mw.RequireAuth(rt.Lists.ShareList))

	// Drills
	mux.HandleFunc("GET /api/lists/{code}/dictation", rt.Drills.Dictation)
	mux.HandleFunc("GET /api/lists/{code}/choices", rt.Drills.Choices)
	mux.HandleFunc("GET /api/lists/{code}/audio", rt.Drills.Audio)
	mux.HandleFunc("POST /api/lists/{code}/check", rt.Drills.Check)

	// Sessions
	mux.HandleFunc("POST /api/sessions", rt.Sessions.RecordSession)
	mux.HandleFunc("GET /api/sessions", rt.Sessions.History)
	mux.HandleFunc("GET /api/sessions/{id}/attempts", rt.Sessions.Attempts)

	// Students
	mux.HandleFunc("POST /api/students", mw.OptionalAuth(rt.Students.CreateStudent))
	mux.HandleFunc("GET /api/students", mw.RequireAuth(rt.Students.MyStudents))
	mux.HandleFunc("GET /api/students/{code}", rt.Students.GetStudent)
}

func (rt *Routes) health(w http.ResponseWriter, r *http.Request) {
	if rt.Ping != nil {
		if err := rt.Ping(r.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func limit(rl *security.RateLimiter, h http.HandlerFunc) http.Handler {
	if rl == nil {
		return h
	}
	return rl.Limit(h)
}
