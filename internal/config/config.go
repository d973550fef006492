package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/subosito/gotenv"
)

type Storage struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string
}

type Config struct {
	Storage         Storage
	WriteTimeout    time.Duration
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
	OTLPEndpoint    string
}

// Load reads an optional env file (missing is fine) and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	writeTimeout, err := time.ParseDuration(getEnv("CART_WRITE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CART_WRITE_TIMEOUT: %w", err)
	}

	return &Config{
		Storage: Storage{
			Driver:        getEnv("CART_STORAGE_DRIVER", "sqlite"),
			SQLitePath:    getEnv("CART_SQLITE_PATH", "cart.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDBName:   getEnv("MONGO_DB_NAME", "cartdb"),
		},
		WriteTimeout:    writeTimeout,
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
