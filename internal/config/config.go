package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for database.driver.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Mode        string   `mapstructure:"mode"` // gin mode: debug, release, test
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	// PublicBaseURL prefixes object keys to form the durable URL stored on programs and movements.
	// Falls back to <endpoint>/<bucket> when empty.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	RefreshSecret     string        `mapstructure:"refresh_secret"`
	Expiration        time.Duration `mapstructure:"expiration"`
	RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// AdminConfig seeds an admin account at startup when both fields are set.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// LoadConfig reads configuration from an optional .env file, a config.yaml in path,
// and environment variables (server.address -> SERVER_ADDRESS).
func LoadConfig(path string) (config Config, err error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	// SERVER_CORS_ORIGINS arrives as one comma separated string.
	config.Server.CORSOrigins = splitList(strings.Join(config.Server.CORSOrigins, ","))

	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "boxing_app_default")
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.expiration", "20m")
	v.SetDefault("jwt.refresh_expiration", "168h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("upload.max_bytes", 50*1024*1024)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		return errors.New("database.driver must be one of: mongo, memory")
	}
	if c.Database.Driver == DriverMongo && c.Database.URI == "" {
		return errors.New("database.uri is required for the mongo driver")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	return nil
}

// RefreshSecretOrDefault returns the refresh signing secret, deriving one from the access secret when unset.
func (c JWTConfig) RefreshSecretOrDefault() string {
	if c.RefreshSecret != "" {
		return c.RefreshSecret
	}
	return c.Secret + ".refresh"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
