// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	DatabasePath    string
	JWTSecretKey    string
	JWTTTL          time.Duration
	EventBusBuffer  int
	EventBusTimeout time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     env,
		DatabasePath:    getEnv("DATABASE_PATH", "messenger.db"),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		JWTTTL:          getEnvAsDuration("JWT_TTL", 24*time.Hour),
		EventBusBuffer:  getEnvAsInt("EVENT_BUS_BUFFER", 256),
		EventBusTimeout: getEnvAsDuration("EVENT_BUS_TIMEOUT", 10*time.Second),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		if cfg.JWTSecretKey == "" {
			log.Fatalf("Missing required production environment variable: JWT_SECRET_KEY")
		}
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "dev-only-secret-change-me"
		log.Println("JWT_SECRET_KEY not set; using insecure development secret")
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an env var as a duration, with a fallback.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
