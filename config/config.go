package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds all runtime configuration. It is built once at startup and
// passed to the components that need it; there is no package-level state.
type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	Environment string

	// Ingestion cadences.
	FastInterval time.Duration
	SlowInterval time.Duration

	// Symbol universe polled by the scheduler.
	Symbols []string

	// Startup gate: how long to wait for the database before giving up.
	DBConnectRetries int
	DBConnectDelay   time.Duration
}

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "stockpulse"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		FastInterval:     time.Duration(getEnvInt("FAST_INTERVAL_MINUTES", 5)) * time.Minute,
		SlowInterval:     time.Duration(getEnvInt("SLOW_INTERVAL_HOURS", 24)) * time.Hour,
		Symbols:          splitSymbols(getEnv("SYMBOLS", "AAPL,GOOGL,MSFT")),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 20),
		DBConnectDelay:   time.Duration(getEnvInt("DB_CONNECT_DELAY_SECONDS", 2)) * time.Second,
	}

	return cfg, nil
}

// ConnectDB opens the database connection pool, retrying a fixed number of
// times with a fixed delay. It either returns a verified pool or an error;
// the caller decides that exhaustion is fatal.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	log.Printf("Connecting to database: host=%s port=%s user=%s dbname=%s",
		maskHost(cfg.DBHost), cfg.DBPort, cfg.DBUser, cfg.DBName)

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.DBConnectRetries; attempt++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				err = dbErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				log.Println("Database connection verified")
				return db, nil
			}
		}

		lastErr = err
		log.Printf("Database not ready, retrying... (%d/%d): %v", attempt, cfg.DBConnectRetries, err)
		time.Sleep(cfg.DBConnectDelay)
	}

	return nil, fmt.Errorf("cannot connect to database after %d retries: %w", cfg.DBConnectRetries, lastErr)
}

// maskHost masks host for logging, preserving domain structure
func maskHost(host string) string {
	if len(host) <= 3 {
		return "***"
	}
	if len(host) <= 15 {
		return host[:3] + "***"
	}
	return host[:8] + "***" + host[len(host)-10:]
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
