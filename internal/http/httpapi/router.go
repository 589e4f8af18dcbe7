package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"visualizer/internal/http/handlers"
	"visualizer/internal/infra"
	"visualizer/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/catalog", app.Catalog)
	r.With(middleware.RateLimit(cfg.GenerateRateLimit, time.Minute)).
		Post("/v1/generate", app.Generate)

	return r
}
