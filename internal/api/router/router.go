package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/familyplate/recipebox/internal/http/middleware"
	"github.com/familyplate/recipebox/internal/ingest"
	"github.com/familyplate/recipebox/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	MMSHandler     *ingest.Handler
	MetricsHandler http.Handler

	// Per-IP webhook rate limiting; zero values disable it.
	WebhookRatePerSec float64
	WebhookBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)

	// The webhook route is registered with HandleFunc rather than Post so the
	// handler owns the 405 response format for stray non-POST probes.
	r.Group(func(hook chi.Router) {
		if cfg.WebhookRatePerSec > 0 && cfg.WebhookBurst > 0 {
			hook.Use(httpmiddleware.RateLimit(cfg.WebhookRatePerSec, cfg.WebhookBurst))
		}
		hook.HandleFunc("/webhooks/twilio/mms", cfg.MMSHandler.HandleMMS)
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "recipebox"})
}
