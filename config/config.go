package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds database settings. Driver is "sqlite" or "postgres".
type DBConfig struct {
	Driver string
	DSN    string
	Seed   bool
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret        string
	Issuer        string
	Audience      string
	AccessMinutes int
	RefreshDays   int
	// RetentionDays bounds how long inactive refresh tokens are kept
	// for revocation audit before pruning removes them.
	RetentionDays int
}

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Log    struct{ Level string }
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "food_delivery.db"),
			Seed:   getEnvAsBool("SEED_DB", false),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "food_delivery_super_secret_2024"),
			Issuer:        getEnv("JWT_ISSUER", "food-delivery-backend"),
			Audience:      getEnv("JWT_AUDIENCE", "food-delivery-clients"),
			AccessMinutes: getEnvAsInt("JWT_ACCESS_MINUTES", 15),
			RefreshDays:   getEnvAsInt("JWT_REFRESH_DAYS", 7),
			RetentionDays: getEnvAsInt("JWT_REFRESH_RETENTION_DAYS", 7),
		},
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
