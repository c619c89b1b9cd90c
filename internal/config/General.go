package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by LoadConfig.
var (
	// DataFile is the path to a local CSV snapshot series.
	DataFile string
	// DataURL is an HTTP snapshot feed; used when DataFile is empty.
	DataURL string

	// Protocol names the preset supplying tick spacing and decimal defaults.
	Protocol string

	// Token0Symbol / Token1Symbol identify the pair legs (base, quote).
	Token0Symbol string
	Token1Symbol string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Exactly one snapshot source must be configured.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	DataFile = os.Getenv("CLB_DATA_FILE")
	DataURL = os.Getenv("CLB_DATA_URL")
	if DataFile == "" && DataURL == "" {
		return errors.New("one of CLB_DATA_FILE or CLB_DATA_URL must be set")
	}

	Protocol, err = getEnv("CLB_PROTOCOL")
	if err != nil {
		return err
	}

	Token0Symbol, err = getEnv("CLB_TOKEN0")
	if err != nil {
		return err
	}

	Token1Symbol, err = getEnv("CLB_TOKEN1")
	if err != nil {
		return err
	}

	log.Debug().
		Str("Protocol", Protocol).
		Str("Token0", Token0Symbol).
		Str("Token1", Token1Symbol).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsFloat64 retrieves an optional environment variable as a float64,
// falling back to the default when unset. Returns error when set but invalid.
func getEnvAsFloat64(key string, fallback float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt retrieves an optional environment variable as an int, falling
// back to the default when unset. Returns error when set but invalid.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
