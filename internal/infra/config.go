package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	StorageEndpoint      string
	StorageAccessKey     string
	StorageSecretKey     string
	StorageBucket        string
	StoragePublicBaseURL string
	StorageUseSSL        bool

	AttemptTimeout     time.Duration
	GenerationDeadline time.Duration
	FetchTimeout       time.Duration

	TargetImageSize int
	OutputSize      string
	JPEGQuality     int
	MaxUploadBytes  int64

	HTTPReadTimeout time.Duration
	HTTPIdleTimeout time.Duration

	CORSAllowedOrigins []string
	GenerateRateLimit  int
}

// publishAllowance is the slack reserved for the storage write when
// validating that the overall deadline can fit a worst-case request.
const publishAllowance = 10 * time.Second

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		StorageEndpoint:      os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:        os.Getenv("STORAGE_BUCKET"),
		StoragePublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		StorageUseSSL:        getEnvBool("STORAGE_USE_SSL", true),
		AttemptTimeout:       time.Second * time.Duration(getEnvInt("ATTEMPT_TIMEOUT_SECONDS", 110)),
		GenerationDeadline:   time.Second * time.Duration(getEnvInt("GENERATION_DEADLINE_SECONDS", 270)),
		FetchTimeout:         time.Second * time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)),
		TargetImageSize:      getEnvInt("TARGET_IMAGE_SIZE", 512),
		OutputSize:           getEnv("OUTPUT_SIZE", "1024x1024"),
		JPEGQuality:          getEnvInt("JPEG_QUALITY", 70),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
		GenerateRateLimit:    getEnvInt("GENERATE_RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.StorageEndpoint == "" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT is required")
	}
	if cfg.StorageAccessKey == "" {
		return nil, fmt.Errorf("STORAGE_ACCESS_KEY is required")
	}
	if cfg.StorageSecretKey == "" {
		return nil, fmt.Errorf("STORAGE_SECRET_KEY is required")
	}
	if cfg.StorageBucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required")
	}
	if cfg.StoragePublicBaseURL == "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		cfg.StoragePublicBaseURL = scheme + "://" + cfg.StorageEndpoint
	}
	if cfg.TargetImageSize <= 0 {
		return nil, fmt.Errorf("TARGET_IMAGE_SIZE must be positive")
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be between 1 and 100")
	}

	// The deadline races the sequential attempt chain. If it cannot fit two
	// full attempts plus the remote fetch and the storage write, legitimate
	// completions would be reported as timeouts.
	minDeadline := 2*cfg.AttemptTimeout + cfg.FetchTimeout + publishAllowance
	if cfg.GenerationDeadline <= minDeadline {
		return nil, fmt.Errorf("GENERATION_DEADLINE_SECONDS (%s) must exceed two attempt timeouts plus fetch and publish time (%s)",
			cfg.GenerationDeadline, minDeadline)
	}

	return cfg, nil
}

func getEnvList(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
