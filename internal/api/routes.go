package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouteOptions holds the optional pieces of the dashboard router.
type RouteOptions struct {
	AllowedOrigins []string
	Health         *HealthChecker
	Metrics        http.Handler
}

// SetupRoutes configures all dashboard API routes.
func SetupRoutes(h *Handlers, opts RouteOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.HandleHealth)
		r.Get("/health/live", opts.Health.HandleLiveness)
		r.Get("/health/ready", opts.Health.HandleReadiness)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/vehicles", h.ListVehicles)
		r.Get("/locations", h.ListLocations)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.ListLeads)
			r.Get("/ask", h.AskLeads)
			r.Get("/{requestID}", h.GetLead)
			r.Patch("/{requestID}", h.UpdateLead)
			r.Post("/{requestID}/advice", h.LeadAdvice)
			r.Post("/{requestID}/email", h.SendLeadEmail)
		})
	})

	return r
}
