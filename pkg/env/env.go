package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds environment defaults for job files
type Config struct {
	// Sinks
	CouchDBURL  string
	PostgresDSN string
	MongoURI    string

	// ETL
	LogLevel  string
	UserAgent string
}

// Load reads workDir/.env, if present, into the process environment and
// returns the resulting Config. Variables already set are not overridden.
func Load(workDir string) (*Config, error) {
	envFile := filepath.Join(workDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnvironment(), nil
}

// FromEnvironment reads the Config from the process environment only.
func FromEnvironment() *Config {
	return &Config{
		CouchDBURL:  getEnvOrDefault("COUCHDB_URL", "http://localhost:5984"),
		PostgresDSN: getEnvOrDefault("POSTGRES_DSN", ""),
		MongoURI:    getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		LogLevel:    getEnvOrDefault("ETL_LOG_LEVEL", "info"),
		UserAgent:   getEnvOrDefault("ETL_USER_AGENT", ""),
	}
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
