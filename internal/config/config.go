package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	StoreDriver string
	DatabaseURL string
	RedisURL    string
	SQLitePath  string
	LibSQLURL   string

	JWTSecret  string
	SessionTTL time.Duration

	GRPCPort string
	WebPort  string
	HTTPPort string

	NATSURL string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	LoginMaxAttempts int
	LoginLockout     time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		StoreDriver:      GetEnvAsString("STORE_DRIVER", "memory"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         GetEnvAsString("REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:       GetEnvAsString("SQLITE_PATH", "salon.db"),
		LibSQLURL:        os.Getenv("LIBSQL_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionTTL:       GetEnvAsDuration("SESSION_TTL", 24*time.Hour),
		GRPCPort:         GetEnvAsString("PORT", "50051"),
		WebPort:          GetEnvAsString("WEB_PORT", "8080"),
		HTTPPort:         GetEnvAsString("HTTP_PORT", "3000"),
		NATSURL:          os.Getenv("NATS_URL"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AdminName:        GetEnvAsString("ADMIN_NAME", "Administrateur"),
		LoginMaxAttempts: GetEnvAsInt("LOGIN_MAX_ATTEMPTS", 3),
		LoginLockout:     GetEnvAsDuration("LOGIN_LOCKOUT", 15*time.Minute),
	}
	if c.JWTSecret == "" {
		return c, errors.New("JWT_SECRET is required")
	}
	return c, nil
}

// GetEnvAsInt gets environment variable as int with default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration gets environment variable as duration with default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func GetEnvAsString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
