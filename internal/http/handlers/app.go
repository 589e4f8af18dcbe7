package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"visualizer/internal/imageproc"
	"visualizer/internal/infra"
	"visualizer/internal/pipeline"
)

// App holds the wired dependencies shared by all HTTP handlers.
type App struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Normalizer *imageproc.Normalizer
	Pipeline   *pipeline.Pipeline
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, normalizer *imageproc.Normalizer, pipe *pipeline.Pipeline) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Normalizer: normalizer,
		Pipeline:   pipe,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, map[string]string{"error": msg, "kind": kind})
}
