package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"bolt"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"data/mentorship.db"`

	RemoteBackend string `env:"REMOTE_BACKEND" envDefault:"firebase"`

	FirebaseAPIKey            string `env:"FIREBASE_API_KEY"`
	FirebaseProjectID         string `env:"FIREBASE_PROJECT_ID"`
	FirebaseAppID             string `env:"FIREBASE_APP_ID"`
	FirebaseMessagingSenderID string `env:"FIREBASE_MESSAGING_SENDER_ID"`

	AirtableAPIKey     string `env:"AIRTABLE_API_KEY"`
	AirtableBaseID     string `env:"AIRTABLE_BASE_ID"`
	AirtableLeadsTable string `env:"AIRTABLE_LEADS_TABLE" envDefault:"Leads"`

	BrochurePath  string        `env:"BROCHURE_PATH" envDefault:"assets/brochure.pdf"`
	BrochureDelay time.Duration `env:"BROCHURE_DELAY" envDefault:"1200ms"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	// AdminToken guards the lead archive listing; empty disables it
	AdminToken string `env:"ADMIN_TOKEN"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// FirebaseEnabled reports whether every Firebase credential is present.
// A missing credential disables the remote path entirely.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseAPIKey != "" &&
		c.FirebaseProjectID != "" &&
		c.FirebaseAppID != "" &&
		c.FirebaseMessagingSenderID != ""
}

// AirtableEnabled reports whether the Airtable credentials are present.
func (c *Config) AirtableEnabled() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != "" && c.AirtableLeadsTable != ""
}

// RemoteEnabled reports whether the selected remote lead backend is configured.
func (c *Config) RemoteEnabled() bool {
	switch c.RemoteBackend {
	case "firebase":
		return c.FirebaseEnabled()
	case "airtable":
		return c.AirtableEnabled()
	default:
		return false
	}
}
