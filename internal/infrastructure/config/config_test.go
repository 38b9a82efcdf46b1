package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
map:
  subscription_key: "test-subscription-key"
backend:
  base_url: "https://maps.example.com/api"
  endpoints:
    sitemap: "/tree"
socket:
  url: "wss://maps.example.com/ws/booking"
database:
  path: "/tmp/favorites.db"
api:
  host: "0.0.0.0"
  port: 8090
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Map.SubscriptionKey != "test-subscription-key" {
		t.Errorf("Map.SubscriptionKey = %q, want %q", cfg.Map.SubscriptionKey, "test-subscription-key")
	}

	if cfg.Backend.Endpoints.Sitemap != "/tree" {
		t.Errorf("Endpoints.Sitemap = %q, want %q", cfg.Backend.Endpoints.Sitemap, "/tree")
	}

	// Unset endpoints keep their defaults
	if cfg.Backend.Endpoints.Warnings != "/faults/{locationPath}" {
		t.Errorf("Endpoints.Warnings = %q, want default", cfg.Backend.Endpoints.Warnings)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingSubscriptionKeyFails(t *testing.T) {
	content := `
backend:
  base_url: "https://maps.example.com/api"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error without subscription key, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACILITYMAP_MAP_SUBSCRIPTION_KEY", "env-key")
	t.Setenv("FACILITYMAP_BACKEND_BASE_URL", "https://env.example.com")
	t.Setenv("FACILITYMAP_WARNINGS_DATA_URL", "https://faults.example.com/{locationPath}")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Map.SubscriptionKey != "env-key" {
		t.Errorf("Map.SubscriptionKey = %q, want %q", cfg.Map.SubscriptionKey, "env-key")
	}
	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "https://env.example.com")
	}
	if cfg.Backend.Endpoints.Warnings != "https://faults.example.com/{locationPath}" {
		t.Errorf("Endpoints.Warnings = %q, want env override", cfg.Backend.Endpoints.Warnings)
	}
}

func TestResolveEndpoint(t *testing.T) {
	cfg := defaultConfig()
	cfg.Backend.BaseURL = "https://maps.example.com/api"

	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{"relative path", "/sitemap", "https://maps.example.com/api/sitemap"},
		{"full url", "https://other.example.com/sitemap", "https://other.example.com/sitemap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Backend.ResolveEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("ResolveEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}
