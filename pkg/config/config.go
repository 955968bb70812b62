package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Session  SessionConfig
	Stats    StatsConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// Token is used for server-side reads when the caller has no OAuth token.
	Token string
}

type SessionConfig struct {
	Secret   string
	TTLHours int
}

type StatsConfig struct {
	CacheTTLMinutes int
	Workers         int
	MaxAttempts     int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", getEnv("GITHUB_SYNC_DB_PATH", "./better-github.db")),
		},
		GitHub: GitHubConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
			Token:        getEnv("GITHUB_TOKEN", ""),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", "default-secret-key"),
			TTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Stats: StatsConfig{
			CacheTTLMinutes: getEnvAsInt("STATS_CACHE_TTL_MINUTES", 60),
			Workers:         getEnvAsInt("STATS_WORKERS", 1),
			MaxAttempts:     getEnvAsInt("STATS_MAX_ATTEMPTS", 5),
		},
	}

	return nil
}

// SessionTTL returns the session lifetime
func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// StatsCacheTTL returns how long a contributor snapshot is served without refetching
func (c *Config) StatsCacheTTL() time.Duration {
	if c.Stats.CacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Stats.CacheTTLMinutes) * time.Minute
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
