package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the research service.
// Environment variables are parsed from the RESEARCH_BACKEND_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Gemini API key used by all three collaborator roles.
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY" default:""`

	// Google Custom Search credentials. When either is empty the source
	// provider skips the live-search tier and starts at the generated tier.
	SearchAPIKey   string `envconfig:"SEARCH_API_KEY" default:""`
	SearchEngineID string `envconfig:"SEARCH_ENGINE_ID" default:""`
	SearchAPIURL   string `envconfig:"SEARCH_API_URL" default:"https://www.googleapis.com"`

	// Model selection per collaborator role.
	PlannerModel     string `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash-lite"`
	ResearcherModel  string `envconfig:"RESEARCHER_MODEL" default:"gemini-2.0-flash"`
	SynthesizerModel string `envconfig:"SYNTHESIZER_MODEL" default:"gemini-2.5-flash"`

	// Workflow knobs.
	DefaultNumSources          int `envconfig:"DEFAULT_NUM_SOURCES" default:"5"`
	CollaboratorTimeoutSeconds int `envconfig:"COLLABORATOR_TIMEOUT_SECONDS" default:"60"`

	// Upload limit for document analysis, in bytes.
	MaxDocumentBytes int64 `envconfig:"MAX_DOCUMENT_BYTES" default:"20971520"`
}

// ResolveDefaults validates derived settings and clamps out-of-range knobs.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}
	if c.DefaultNumSources < 1 {
		c.DefaultNumSources = 1
	}
	if c.DefaultNumSources > 10 {
		c.DefaultNumSources = 10
	}
	if c.CollaboratorTimeoutSeconds <= 0 {
		c.CollaboratorTimeoutSeconds = 60
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_BYTES must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with RESEARCH_BACKEND_, e.g.
// RESEARCH_BACKEND_HTTP_PORT, RESEARCH_BACKEND_GOOGLE_API_KEY.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RESEARCH_BACKEND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("planner_model", cfg.PlannerModel).
		Str("researcher_model", cfg.ResearcherModel).
		Str("synthesizer_model", cfg.SynthesizerModel).
		Bool("live_search", cfg.LiveSearchConfigured()).
		Int("default_num_sources", cfg.DefaultNumSources).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:                EnvTesting,
		HTTPPort:                   8080,
		SearchAPIURL:               "https://www.googleapis.com",
		PlannerModel:               "gemini-2.5-flash-lite",
		ResearcherModel:            "gemini-2.0-flash",
		SynthesizerModel:           "gemini-2.5-flash",
		DefaultNumSources:          5,
		CollaboratorTimeoutSeconds: 60,
		MaxDocumentBytes:           20 << 20,
	}
}

// LiveSearchConfigured reports whether Google Custom Search credentials are set.
func (c *Config) LiveSearchConfigured() bool {
	return c.SearchAPIKey != "" && c.SearchEngineID != ""
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
