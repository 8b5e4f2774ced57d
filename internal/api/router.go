package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iconidentify/tubegrab/internal/api/handler"
	mw "github.com/iconidentify/tubegrab/internal/api/middleware"
)

// RouterConfig holds HTTP surface settings.
type RouterConfig struct {
	Version     string
	APIKey      string
	CORSOrigins []string
	// DownloadRateLimit is the number of POST /download requests allowed per
	// client IP in DownloadRateWindow. Zero disables limiting.
	DownloadRateLimit  int
	DownloadRateWindow time.Duration
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	videoHandler *handler.VideoHandler,
	downloadHandler *handler.DownloadHandler,
	healthHandler *handler.HealthHandler,
	cfg RouterConfig,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(mw.CORS(cfg.CORSOrigins))

	// Probes and metrics (no auth)
	r.Get("/", handler.Root(cfg.Version))
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(mw.APIKeyAuth(cfg.APIKey))

		r.Get("/stats", healthHandler.Stats)
		r.Get("/video-info", videoHandler.Info)
		r.With(mw.RateLimit(cfg.DownloadRateLimit, cfg.DownloadRateWindow)).
			Post("/download", downloadHandler.Submit)
		r.Get("/download-status/{downloadID}", downloadHandler.Status)
		r.Get("/downloads", downloadHandler.List)
	})

	return r
}
