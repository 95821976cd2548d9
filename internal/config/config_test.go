package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ourxmas-backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OBJECT_STORE_DRIVER", "")
	t.Setenv("DEPLOY_DOMAIN", "")
	t.Setenv("PAYMENT_MIN_AMOUNT", "")
	t.Setenv("DEPLOY_WORKERS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverS3, cfg.ObjectStoreDriver)
	assert.Equal(t, "ourxmas.site", cfg.DeployDomain)
	assert.Equal(t, int64(20000), cfg.PaymentMinAmount)
	assert.Equal(t, 4, cfg.DeployWorkers)
	assert.Equal(t, 60*time.Second, cfg.DeployTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OBJECT_STORE_DRIVER", "SUPABASE")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DEPLOY_TIMEOUT", "15s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSupabase, cfg.ObjectStoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.DeployTimeout)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("PAYMENT_MIN_AMOUNT", "lots")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_MIN_AMOUNT")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &config.Config{
		ObjectStoreDriver: "gcs",
		DeployWorkers:     4,
		TranscodeWorkers:  1,
		DeployTimeout:     time.Second,
		DeployDomain:      "example.com",
	}
	assert.Error(t, cfg.Validate())
}

func TestObjectStoreConfigured(t *testing.T) {
	cfg := &config.Config{ObjectStoreDriver: config.DriverS3, S3Endpoint: "s3.amazonaws.com"}
	assert.False(t, cfg.ObjectStoreConfigured())

	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	cfg.S3Bucket = "bucket"
	assert.True(t, cfg.ObjectStoreConfigured())

	cfg = &config.Config{ObjectStoreDriver: config.DriverSupabase, SupabaseStorageBucket: "b"}
	assert.False(t, cfg.ObjectStoreConfigured())
}
