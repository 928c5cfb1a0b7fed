package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven configuration for the client
type Config struct {
	// API server settings
	BaseURL string

	// Specification settings
	SpecPath string

	// Credential file locations, read by the transport provider
	BearerTokenFile string
	ClientCertPath  string
	ClientKeyPath   string
	CACertPath      string

	// Timeout settings
	APICallTimeout time.Duration

	// Logging settings
	Debug bool
}

// New creates a new configuration with defaults
func New() *Config {
	return &Config{
		BaseURL:         getEnv("KUBE_BASE_URL", "https://localhost:6443"),
		SpecPath:        getEnv("KUBE_SPEC_PATH", ""),
		BearerTokenFile: getEnv("KUBE_BEARER_TOKEN_FILE", ""),
		ClientCertPath:  getEnv("KUBE_CLIENT_CERT_PATH", ""),
		ClientKeyPath:   getEnv("KUBE_CLIENT_KEY_PATH", ""),
		CACertPath:      getEnv("KUBE_CA_CERT_PATH", ""),
		APICallTimeout:  getEnvDuration("KUBE_API_CALL_TIMEOUT", 10*time.Second),
		Debug:           getEnvBool("DEBUG_ENABLED", false),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
