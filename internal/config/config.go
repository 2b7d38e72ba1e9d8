package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// insecureDefaultSecret is the fallback signing secret. Running with it
// is a security smell; the bootstrap logs a warning when it is in use.
const insecureDefaultSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App    AppConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Logger LoggerConfig
	Auth   AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document-store connection values. ConnectAttempts
// and ConnectRetryDelaySeconds drive the startup dial loop.
type MongoConfig struct {
	URI                      string
	Database                 string
	ConnectAttempts          int
	ConnectRetryDelaySeconds int
	SelectionTimeoutSeconds  int
}

// RedisConfig holds cache connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	CacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. Token lifetime is a
// fixed constant in the auth package, not configuration.
type AuthConfig struct {
	JWTSecret  string
	BcryptCost int
}

// IsInsecureSecret reports whether the process runs on the fallback
// signing secret.
func (a AuthConfig) IsInsecureSecret() bool {
	return a.JWTSecret == insecureDefaultSecret
}

// Load reads configuration from environment variables, applying
// defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "identity-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:                      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:                 getEnv("MONGO_DATABASE", "identity"),
			ConnectAttempts:          getEnvAsInt("MONGO_CONNECT_ATTEMPTS", 5),
			ConnectRetryDelaySeconds: getEnvAsInt("MONGO_CONNECT_RETRY_DELAY_SECONDS", 5),
			SelectionTimeoutSeconds:  getEnvAsInt("MONGO_SELECTION_TIMEOUT_SECONDS", 5),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			CacheTTLSeconds: getEnvAsInt("REDIS_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("AUTH_JWT_SECRET", insecureDefaultSecret),
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectRetryDelay returns the delay between startup dial attempts.
func (m MongoConfig) ConnectRetryDelay() time.Duration {
	return time.Duration(m.ConnectRetryDelaySeconds) * time.Second
}

// SelectionTimeout bounds server selection on each dial attempt.
func (m MongoConfig) SelectionTimeout() time.Duration {
	return time.Duration(m.SelectionTimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached user reads stay fresh.
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
