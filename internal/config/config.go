package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// DataFile is the JSON file holding the student collection.
	DataFile string
	// BackupDir receives timestamped snapshots of DataFile.
	BackupDir      string
	BackupInterval time.Duration
	// BackupKeep is how many snapshots survive rotation.
	BackupKeep int

	RedisURL      string
	StatsCacheTTL time.Duration

	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int
	AdminEmail string
	// AdminPassword is read from the environment and hashed at startup.
	AdminPassword string

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		DataFile:       getEnv("DATA_FILE", "./data/students.json"),
		BackupDir:      getEnv("BACKUP_DIR", "./data/backups"),
		BackupInterval: time.Duration(getEnvInt("BACKUP_INTERVAL_MINUTES", 15)) * time.Minute,
		BackupKeep:     getEnvInt("BACKUP_KEEP", 10),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StatsCacheTTL:  time.Duration(getEnvInt("STATS_CACHE_TTL_SECONDS", 30)) * time.Second,
		JWTSecret:      getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
