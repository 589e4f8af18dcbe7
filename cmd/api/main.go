package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"visualizer/internal/http/handlers"
	"visualizer/internal/http/httpapi"
	"visualizer/internal/imageproc"
	"visualizer/internal/infra"
	"visualizer/internal/pipeline"
	"visualizer/internal/provider/openai"
	"visualizer/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewObjectStore(storage.Options{
		Endpoint:      cfg.StorageEndpoint,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		PublicBaseURL: cfg.StoragePublicBaseURL,
		UseSSL:        cfg.StorageUseSSL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	editor, err := openai.NewClient(openai.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		AttemptTimeout: cfg.AttemptTimeout,
		FetchTimeout:   cfg.FetchTimeout,
		OutputSize:     cfg.OutputSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize upstream client")
	}

	pipe, err := pipeline.New(pipeline.Options{
		Editor:   editor,
		Store:    store,
		Deadline: cfg.GenerationDeadline,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize pipeline")
	}

	normalizer := imageproc.NewNormalizer(cfg.TargetImageSize, cfg.JPEGQuality)
	app := handlers.NewApp(cfg, logger, normalizer, pipe)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
