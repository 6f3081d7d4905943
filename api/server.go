/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/contracts/*      Contract lifecycle, payments, incidents
  /api/indices/*        Published index rates
  /api/audit            Event history

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetContract)
				r.Get("/rent", h.GetRent)
				r.Get("/summary", h.GetSummary)
				r.Post("/schedule", h.RegenerateSchedule)
				r.Post("/payments", h.RegisterPayment)
				r.Post("/charges", h.AddServiceCharge)

				r.Post("/suspend", h.SuspendContract)
				r.Post("/resume", h.ResumeContract)
				r.Post("/terminate", h.TerminateContract)

				r.Route("/incidents", func(r chi.Router) {
					r.Get("/", h.ListIncidents)
					r.Post("/", h.CreateIncident)
					r.Post("/{iid}/comments", h.AddIncidentComment)
					r.Post("/{iid}/advance", h.AdvanceIncident)
				})
			})
		})

		// Index rate routes
		r.Route("/indices", func(r chi.Router) {
			r.Get("/", h.ListIndexRates)
			r.Put("/{year}/{month}", h.SetIndexRate)
		})

		// Audit routes
		r.Get("/audit", h.GetAuditLog)
	})

	return r
}
