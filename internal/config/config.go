package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway and worker processes
type Config struct {
	// Platform backend the gateway proxies and caches
	API APIConfig

	// HTTP listener
	Server ServerConfig

	// Local snapshot cache
	Database DatabaseConfig

	// Redis (asynq)
	Redis RedisConfig

	// Logging
	Logging LoggingConfig

	// Path to the optional refresh plan file (YAML)
	RefreshPlanPath string
}

// APIConfig holds the backend API configuration
type APIConfig struct {
	BaseURL string
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	ListenAddr string

	// Session cookies carry the Secure attribute unless SECURE_COOKIES=false
	// (plain-HTTP development only)
	SecureCookies bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Backend API URL has no sensible default; everything depends on it
	apiURL := os.Getenv("UNILIST_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("UNILIST_API_URL is required")
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	secureCookies := os.Getenv("SECURE_COOKIES") != "false"

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "unilist.sqlite"
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	planPath := os.Getenv("REFRESH_PLAN")
	if planPath == "" {
		planPath = "refresh.yaml"
	}

	return &Config{
		API: APIConfig{
			BaseURL: apiURL,
		},
		Server: ServerConfig{
			ListenAddr:    listenAddr,
			SecureCookies: secureCookies,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		RefreshPlanPath: planPath,
	}, nil
}
