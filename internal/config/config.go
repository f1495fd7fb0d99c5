package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Host       string
	ServerPort int

	// Database (optional; cookie jar and TMDB cache fall back to memory)
	DatabaseURL string

	// TMDB
	TMDBAPIKey    string
	TMDBLang      string
	TMDBImageBase string

	// Debug
	Debug bool
}

// Load reads configuration from environment variables with sensible
// defaults. An absent DATABASE_URL is valid and selects the in-memory
// cache backend.
func Load() *Config {
	return &Config{
		Host:       getEnv("HOST", "0.0.0.0"),
		ServerPort: getEnvInt("PORT", 8080),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TMDBAPIKey:    getEnv("TMDB_API_KEY", ""),
		TMDBLang:      getEnv("TMDB_LANG", "en-US"),
		TMDBImageBase: getEnv("TMDB_IMAGE_BASE", "https://image.tmdb.org/t/p"),

		Debug: getEnv("DEBUG", "") == "true",
	}
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
