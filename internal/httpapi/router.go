package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter assembles the full route tree with the standard middleware stack.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/journeys", func(r chi.Router) {
		r.Post("/", h.CreateJourney)
		r.Get("/", h.ListJourneys)

		r.Route("/{journeyID}", func(r chi.Router) {
			r.Get("/", h.GetJourney)
			r.Put("/", h.UpdateJourney)
			r.Delete("/", h.DeleteJourney)
			r.Post("/duplicate", h.DuplicateJourney)
			r.Post("/save", h.SaveJourney)

			r.Get("/canvas", h.GetCanvas)
			r.Post("/canvas", h.SaveCanvas)
			r.Get("/goals", h.GetGoals)
			r.Post("/goals", h.SaveGoals)
			r.Get("/milestones", h.GetMilestones)
			r.Post("/milestones", h.SaveMilestones)
			r.Get("/stats", h.GetStats)
		})
	})

	return r
}
