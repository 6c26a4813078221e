package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Cohere    CohereConfig
	Gemini    GeminiConfig
	Places    PlacesConfig
	Hotels    HotelsConfig
	Weather   WeatherConfig
	Planner   PlannerConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// CohereConfig holds the embedding service configuration
type CohereConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// GeminiConfig holds the generation backend configuration
type GeminiConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// PlacesConfig holds the attractions/restaurants provider configuration
type PlacesConfig struct {
	Provider string
	APIKey   string
}

// HotelsConfig holds the hotel provider configuration
type HotelsConfig struct {
	Provider string
	BaseURL  string
}

// WeatherConfig holds the weather provider configuration
type WeatherConfig struct {
	Provider string
}

// PlannerConfig holds itinerary pipeline policy parameters.
// The similarity floor and top-K are policy knobs, not invariants.
type PlannerConfig struct {
	PersonalizationMinScore float64
	PersonalizationTopK     int
	MaxContextChars         int
	FallbackToBudget        bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "tripweaver"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Cohere: CohereConfig{
			APIKey:         getEnv("COHERE_API_KEY", ""),
			Model:          getEnv("COHERE_MODEL", "embed-english-v3.0"),
			RateLimitRPM:   getEnvAsInt("COHERE_RATE_LIMIT_RPM", 100),
			RateLimitBurst: getEnvAsInt("COHERE_RATE_LIMIT_BURST", 5),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite"),
			RateLimitRPM:   getEnvAsInt("GEMINI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("GEMINI_RATE_LIMIT_BURST", 5),
		},
		Places: PlacesConfig{
			Provider: getEnv("PLACES_PROVIDER", "mock"),
			APIKey:   getEnv("PLACES_API_KEY", ""),
		},
		Hotels: HotelsConfig{
			Provider: getEnv("HOTELS_PROVIDER", "mock"),
			BaseURL:  getEnv("HOTELS_BASE_URL", ""),
		},
		Weather: WeatherConfig{
			Provider: getEnv("WEATHER_PROVIDER", "mock"),
		},
		Planner: PlannerConfig{
			PersonalizationMinScore: getEnvAsFloat("PERSONALIZATION_MIN_SCORE", 0.6),
			PersonalizationTopK:     getEnvAsInt("PERSONALIZATION_TOP_K", 3),
			MaxContextChars:         getEnvAsInt("PERSONALIZATION_MAX_CONTEXT_CHARS", 1000),
			FallbackToBudget:        getEnvAsBool("PLANNER_FALLBACK_TO_BUDGET", false),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "tripweaver"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
