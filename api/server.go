/*
server.go - HTTP router setup and middleware

PURPOSE:
  Configures the chi router with middleware and mounts all API routes.

MIDDLEWARE STACK (applied in order):
  1. RequestID: Tags each request for log correlation
  2. Logger: Request logging
  3. Recoverer: Panic recovery (500 instead of crash)
  4. CORS: Cross-origin access for the browser frontend

SEE ALSO:
  - handlers.go: The handler implementations behind each route
  - cmd/server/main.go: Server startup and shutdown
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the API router with all routes and middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", h.ListDrivers)
			r.Post("/", h.CreateDriver)
			r.Get("/{id}", h.GetDriver)
			r.Patch("/{id}", h.UpdateDriver)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", h.ListVehicles)
			r.Post("/", h.CreateVehicle)
			r.Get("/{id}", h.GetVehicle)
			r.Patch("/{id}", h.UpdateVehicle)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
		})

		r.Route("/selections", func(r chi.Router) {
			r.Get("/", h.ListSelections)
			r.Post("/", h.CreateSelection)
			r.Get("/{id}", h.GetSelection)
			r.Patch("/{id}", h.PatchSelection)
			r.Get("/{id}/rent-summary", h.GetRentSummary)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.ListStaff)
			r.Post("/", h.CreateStaff)
			r.Get("/{id}/salary", h.GetSalary)
			r.Put("/{id}/salary", h.PutSalary)
			r.Put("/{id}/attendance", h.PutAttendanceDay)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
