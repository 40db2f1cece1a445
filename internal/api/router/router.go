package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/complyward/kyc-review-platform/internal/assist"
	httpmiddleware "github.com/complyward/kyc-review-platform/internal/http/middleware"
	"github.com/complyward/kyc-review-platform/internal/review"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ReviewHandler      *review.Handler
	AssistHandler      *assist.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec per IP for the review endpoints; 0 disables limiting.
	ReviewRateLimit float64
	ReviewRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.ReviewHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/reviews", func(reviews chi.Router) {
		if cfg.ReviewRateLimit > 0 {
			reviews.Use(httpmiddleware.RateLimit(cfg.ReviewRateLimit, cfg.ReviewRateBurst))
		}
		reviews.Post("/run", cfg.ReviewHandler.Run)
		reviews.Post("/resume", cfg.ReviewHandler.Resume)
	})

	if cfg.AssistHandler != nil {
		r.Route("/assist", func(a chi.Router) {
			a.Post("/chat", cfg.AssistHandler.Chat)
			a.Post("/rewrite", cfg.AssistHandler.Rewrite)
		})
	}

	return r
}
