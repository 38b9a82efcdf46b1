package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("FACILITYMAP_CONFIG")
	defer os.Setenv("FACILITYMAP_CONFIG", originalEnv)

	os.Setenv("FACILITYMAP_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingSubscriptionKey verifies config validation is enforced.
func TestRun_MissingSubscriptionKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
backend:
  base_url: "http://localhost:3001"

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

logging:
  level: error
  format: text
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	originalEnv := os.Getenv("FACILITYMAP_CONFIG")
	defer os.Setenv("FACILITYMAP_CONFIG", originalEnv)
	os.Setenv("FACILITYMAP_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail without a map subscription key")
	}
}

func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("FACILITYMAP_CONFIG")
	defer os.Setenv("FACILITYMAP_CONFIG", originalEnv)

	os.Setenv("FACILITYMAP_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("default path: got %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("FACILITYMAP_CONFIG", "/etc/facilitymap/config.yaml")
	if got := getConfigPath(); got != "/etc/facilitymap/config.yaml" {
		t.Errorf("env path: got %q", got)
	}
}
