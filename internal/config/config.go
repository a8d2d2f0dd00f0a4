package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config holds application configuration values.
type Config struct {
	Secret      string
	DataDir     string
	HTTPPort    string
	LogLevel    string
	MedicineCSV string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		logrus.Warnf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Config{
		Secret:      secret,
		DataDir:     dataDir,
		HTTPPort:    port,
		LogLevel:    level,
		MedicineCSV: os.Getenv("MEDICINE_CSV"),
	}
}
