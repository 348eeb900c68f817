package config

import (
	"os"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.DefaultNumSources != 5 {
		t.Errorf("DefaultNumSources = %d, want 5", cfg.DefaultNumSources)
	}
	if cfg.LiveSearchConfigured() {
		t.Error("live search should be unconfigured by default")
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Errorf("GetHTTPAddr() = %q", cfg.GetHTTPAddr())
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("RESEARCH_BACKEND_HTTP_PORT", "9191")
	os.Setenv("RESEARCH_BACKEND_SEARCH_API_KEY", "k")
	os.Setenv("RESEARCH_BACKEND_SEARCH_ENGINE_ID", "cx")
	defer func() {
		os.Unsetenv("RESEARCH_BACKEND_HTTP_PORT")
		os.Unsetenv("RESEARCH_BACKEND_SEARCH_API_KEY")
		os.Unsetenv("RESEARCH_BACKEND_SEARCH_ENGINE_ID")
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if cfg.HTTPPort != 9191 {
		t.Errorf("HTTPPort = %d, want 9191", cfg.HTTPPort)
	}
	if !cfg.LiveSearchConfigured() {
		t.Error("live search should be configured with both credentials set")
	}
}

func TestResolveDefaultsClamps(t *testing.T) {
	cfg := NewForTesting()
	cfg.DefaultNumSources = 99
	cfg.CollaboratorTimeoutSeconds = -1
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults() error: %v", err)
	}
	if cfg.DefaultNumSources != 10 {
		t.Errorf("DefaultNumSources = %d, want 10", cfg.DefaultNumSources)
	}
	if cfg.CollaboratorTimeoutSeconds != 60 {
		t.Errorf("CollaboratorTimeoutSeconds = %d, want 60", cfg.CollaboratorTimeoutSeconds)
	}
}

func TestResolveDefaultsRejectsBadEnvironment(t *testing.T) {
	cfg := NewForTesting()
	cfg.Environment = "staging"
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unsupported environment")
	}
}
