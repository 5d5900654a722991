// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Auth       AuthConfig
	Events     EventsConfig
	Commission CommissionConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	CORSOrigins  []string
}

// DatabaseConfig holds PostgreSQL connection settings.
// DSN, when set, wins over the individual fields.
type DatabaseConfig struct {
	DSNOverride string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Debug       bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env        string
	LogLevel   string
	Migrations bool
}

// AuthConfig configures bearer token verification. Tokens are issued elsewhere.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// EventsConfig selects where accepted negotiations are published.
type EventsConfig struct {
	Sink         string // log | redis | kafka
	RedisAddr    string
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

// CommissionConfig is the default applied when a create request carries none.
type CommissionConfig struct {
	Mode  string
	Value float64
}

// RateLimitConfig is the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			DSNOverride: getEnv("DATABASE_DSN", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "sourcing"),
			Password:    getEnv("DB_PASSWORD", "sourcing"),
			DBName:      getEnv("DB_NAME", "sourcing"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			Debug:       getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:        getEnv("APP_ENV", "development"),
			LogLevel:   getEnv("LOG_LEVEL", ""),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "devsecret"),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Events: EventsConfig{
			Sink:         getEnv("EVENT_SINK", "log"),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			RedisChannel: getEnv("REDIS_CHANNEL", "negotiation-events"),
			KafkaBrokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "negotiation-accepted"),
		},
		Commission: CommissionConfig{
			Mode:  getEnv("COMMISSION_MODE", "percentage"),
			Value: getEnvFloat("COMMISSION_VALUE", 0),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
