package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
database:
  driver: memory
jwt:
  secret: file-secret
  expiration: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		JWT:      JWTConfig{Secret: "s"},
		Upload:   UploadConfig{MaxBytes: 1},
	}
	assert.Error(t, cfg.Validate())
}

func TestRefreshSecretOrDefault(t *testing.T) {
	assert.Equal(t, "abc.refresh", JWTConfig{Secret: "abc"}.RefreshSecretOrDefault())
	assert.Equal(t, "r", JWTConfig{Secret: "abc", RefreshSecret: "r"}.RefreshSecretOrDefault())
}

func TestLoadConfigFromEnvOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "only-env")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("S3_BUCKET_NAME", "media")
	t.Setenv("ADMIN_EMAIL", "coach@test.io")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "only-env", cfg.JWT.Secret)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "media", cfg.S3.BucketName)
	assert.Equal(t, "coach@test.io", cfg.Admin.Email)
	assert.Equal(t, 20*time.Minute, cfg.JWT.Expiration)
}
