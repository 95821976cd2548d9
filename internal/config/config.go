package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverS3       = "s3"
	DriverSupabase = "supabase"
)

type Config struct {
	// Application
	AppName    string
	AppVersion string
	Debug      bool

	// Server
	Port           string
	Environment    string
	BaseURL        string
	AllowedOrigins []string
	MaxUploadBytes int64

	// Database
	DatabaseURL string

	// Sepay webhook
	SepayAPIKey string

	// Admin endpoints; empty disables the JWT guard
	AdminJWTSecret string

	// Payment gate
	PaymentMinAmount int64
	ClaimTTL         time.Duration

	// Object store
	ObjectStoreDriver string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3UseSSL          bool

	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Deployment
	DeployDomain     string
	PreviewDir       string
	TemplateDir      string
	DeployTimeout    time.Duration
	DeployWorkers    int
	TranscodeWorkers int
}

func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "Ourxmas Backend"),
		AppVersion: getEnv("APP_VERSION", "0.1.0"),

		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SepayAPIKey:    getEnv("SEPAY_API_KEY", ""),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		ObjectStoreDriver: strings.ToLower(getEnv("OBJECT_STORE_DRIVER", DriverS3)),
		S3Endpoint:        getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "christmas-experience-bucket"),

		DeployDomain: getEnv("DEPLOY_DOMAIN", "ourxmas.site"),
		PreviewDir:   getEnv("PREVIEW_DIR", "./preview"),
		TemplateDir:  getEnv("TEMPLATE_DIR", ""),
	}

	var err error
	if cfg.Debug, err = getBool("DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.S3UseSSL, err = getBool("S3_USE_SSL", true); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getInt64("MAX_UPLOAD_BYTES", 100<<20); err != nil {
		return nil, err
	}
	if cfg.PaymentMinAmount, err = getInt64("PAYMENT_MIN_AMOUNT", 20000); err != nil {
		return nil, err
	}
	if cfg.ClaimTTL, err = getDuration("CLAIM_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DeployTimeout, err = getDuration("DEPLOY_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	deployWorkers, err := getInt64("DEPLOY_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.DeployWorkers = int(deployWorkers)
	transcodeWorkers, err := getInt64("TRANSCODE_WORKERS", int64(runtime.NumCPU()))
	if err != nil {
		return nil, err
	}
	cfg.TranscodeWorkers = int(transcodeWorkers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks shape only. Missing storage credentials are allowed and
// surface per request when an object-store deployment is asked for.
func (c *Config) Validate() error {
	switch c.ObjectStoreDriver {
	case DriverS3, DriverSupabase:
	default:
		return fmt.Errorf("OBJECT_STORE_DRIVER must be %q or %q, got %q", DriverS3, DriverSupabase, c.ObjectStoreDriver)
	}
	if c.DeployWorkers < 1 {
		return fmt.Errorf("DEPLOY_WORKERS must be at least 1")
	}
	if c.TranscodeWorkers < 1 {
		return fmt.Errorf("TRANSCODE_WORKERS must be at least 1")
	}
	if c.DeployTimeout <= 0 {
		return fmt.Errorf("DEPLOY_TIMEOUT must be positive")
	}
	if c.PaymentMinAmount < 0 {
		return fmt.Errorf("PAYMENT_MIN_AMOUNT must not be negative")
	}
	if c.DeployDomain == "" {
		return fmt.Errorf("DEPLOY_DOMAIN is required")
	}
	return nil
}

// ObjectStoreConfigured reports whether the selected driver has everything it
// needs to write objects.
func (c *Config) ObjectStoreConfigured() bool {
	switch c.ObjectStoreDriver {
	case DriverS3:
		return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
	case DriverSupabase:
		return c.SupabaseURL != "" && c.SupabaseServiceKey != "" && c.SupabaseStorageBucket != ""
	}
	return false
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getInt64(key string, defaultValue int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
