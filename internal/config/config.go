// Package config handles loading and validation of engine configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Config holds all engine configuration.
// Environment determines whether credentials load from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Store-specific configuration (loaded from secrets)
	Store StoreConfig
}

// StoreConfig contains storefront-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type StoreConfig struct {
	APIBaseURL string `json:"api_base_url"`
	APIDomain  string `json:"api_domain"` // Derived from APIBaseURL if not set
	APIToken   string `json:"api_token"`
	StoreName  string `json:"store_name,omitempty"`

	// Path of the local snapshot database. Defaults to shopengine.db
	// in the working directory.
	StoragePath string `json:"storage_path,omitempty"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	// Otherwise, use ENV vars / Secret Manager approach
	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		StoreID:     os.Getenv("STORE_ID"),
	}

	// StoreID required in all environments
	if cfg.StoreID == "" {
		return nil, fmt.Errorf("STORE_ID environment variable required")
	}

	// Load store config based on environment
	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port        string      `json:"port"`
		Environment string      `json:"environment"`
		LogLevel    string      `json:"log_level"`
		StoreID     string      `json:"store_id"`
		Store       StoreConfig `json:"store"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:        withDefault(fileConfig.Port, "8080"),
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		StoreID:     fileConfig.StoreID,
		Store:       fileConfig.Store,
	}

	if cfg.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads store config from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Store = StoreConfig{
		APIBaseURL:  os.Getenv("STORE_API_BASE_URL"),
		APIDomain:   os.Getenv("STORE_API_DOMAIN"),
		APIToken:    os.Getenv("STORE_API_TOKEN"),
		StoreName:   os.Getenv("STORE_NAME"),
		StoragePath: os.Getenv("STORAGE_PATH"),
	}
	return nil
}

// applyDefaults fills derived and defaulted store fields.
func (c *Config) applyDefaults() {
	if c.Store.APIDomain == "" && c.Store.APIBaseURL != "" {
		c.Store.APIDomain = extractDomain(c.Store.APIBaseURL)
	}
	if c.Store.StoragePath == "" {
		c.Store.StoragePath = "shopengine.db"
	}
	c.Store.APIBaseURL = strings.TrimSuffix(c.Store.APIBaseURL, "/")
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if _, err := url.Parse(c.Store.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}

	// The mock storefront runs unauthenticated; real stores do not.
	if c.Environment == "production" && c.Store.APIToken == "" {
		return fmt.Errorf("api_token is required in production")
	}

	return nil
}

// extractDomain pulls the host out of a URL.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Fallback: strip protocol prefix manually
		domain := strings.TrimPrefix(rawURL, "https://")
		domain = strings.TrimPrefix(domain, "http://")
		return strings.Split(domain, "/")[0]
	}
	return u.Host
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
