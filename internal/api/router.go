package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/timeledger/internal/timeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *timeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Ledger read path.
	r.Get("/ledger", h.GetLedger)
	r.Get("/ledger/{key}/calendar", h.GetCalendar)
	r.Get("/employees", h.ListEmployees)
	r.Get("/projects", h.ListProjects)

	// Mutations.
	r.Post("/entries", h.AddEntry)
	r.Put("/entries/{id}", h.UpdateEntry)
	r.Delete("/entries/{id}", h.DeleteEntry)
	r.Post("/entries/{id}/adjust", h.AdjustEntry)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
