package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	DBType      string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	LogLevel    string
	JWTSecret   string
	JWTExpiry   time.Duration
	CORSOrigins string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBType:      getEnv("DB_TYPE", "mysql"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", ""),
		DBUser:      getEnv("DB_USER", ""),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "universal_crud"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	if cfg.DBType != "mysql" && cfg.DBType != "postgresql" {
		return nil, fmt.Errorf("DB_TYPE must be mysql or postgresql, got %q", cfg.DBType)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWTExpiry = expiry

	if cfg.DBPort == "" {
		if cfg.DBType == "mysql" {
			cfg.DBPort = "3306"
		} else {
			cfg.DBPort = "5432"
		}
	}
	if cfg.DBUser == "" {
		if cfg.DBType == "mysql" {
			cfg.DBUser = "root"
		} else {
			cfg.DBUser = "postgres"
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
