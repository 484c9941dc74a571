package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const devJWTSecret = "dev-secret-change-me"

// DefaultTokenTTL is the session token lifetime when TOKEN_TTL is unset.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Config holds all application configuration.
type Config struct {
	Store StoreConfig
	HTTP  HTTPConfig
	GRPC  GRPCConfig
	Auth  AuthConfig
	Log   LogConfig
}

// StoreConfig selects and locates the user/task store.
type StoreConfig struct {
	Backend string // memory | sqlite | postgres
	Path    string // SQLite database file path
	DSN     string // Postgres connection string
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address string // REST listen address (e.g., ":5001")
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., ":50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret  string        // JWT signing secret
	TokenTTL   time.Duration // session token validity window
	BcryptCost int
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// Load loads configuration from environment variables with sensible defaults.
// JWT_SECRET is mandatory.
func Load() (*Config, error) {
	cfg, err := load("")
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load(devJWTSecret)
}

func load(defaultSecret string) (*Config, error) {
	if os.Getenv("ENV") == "dev" {
		// .env is optional; a missing file is not an error in dev
		_ = godotenv.Load()
	}

	ttl, err := getEnvDuration("TOKEN_TTL", DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	cost, err := getEnvInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", BackendSQLite),
			Path:    getEnv("DB_PATH", "app.db"),
			DSN:     getEnv("DATABASE_DSN", ""),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":5001"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", defaultSecret),
			TokenTTL:   ttl,
			BcryptCost: cost,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Store: %s, HTTP: %s, gRPC: %s, Auth: *** (masked) ***, TTL: %s}",
		c.Store.describe(), c.HTTP.Address, c.GRPC.Address, c.Auth.TokenTTL)
}

func (s StoreConfig) describe() string {
	switch s.Backend {
	case BackendSQLite:
		return s.Backend + ":" + s.Path
	case BackendPostgres:
		u, err := url.Parse(s.DSN)
		if err != nil || u.User == nil {
			return s.Backend
		}
		return s.Backend + ":" + u.Redacted()
	default:
		return s.Backend
	}
}
