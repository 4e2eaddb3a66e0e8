// Package config loads server settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config holds every server setting.
type Config struct {
	Port        int
	StoreDriver string
	DBPath      string

	LowStockThreshold int

	ClinicName     string
	CurrencySymbol string
	NotifyEnabled  bool

	LogLevel string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to load env file", "file", f, "error", err)
		}
	}

	return &Config{
		Port:              getEnvInt("PORT", 8080),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DBPath:            getEnv("DB_PATH", "./data/clinic.db"),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 100),
		ClinicName:        getEnv("CLINIC_NAME", "Pharmacy Bill"),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "₹"),
		NotifyEnabled:     getEnvBool("NOTIFY_ENABLED", true),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring non-numeric env var", "key", key, "value", value)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Ignoring non-boolean env var", "key", key, "value", value)
		return fallback
	}
	return b
}
