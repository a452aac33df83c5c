package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the default values are sane
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene.Size%2 != 0 {
		t.Errorf("Expected an even default size, got %d", cfg.Scene.Size)
	}
	if cfg.Scene.MaxR <= 0 || cfg.Scene.MaxR >= cfg.Scene.Size/2 {
		t.Errorf("Default cutoff %d does not fit size %d", cfg.Scene.MaxR, cfg.Scene.Size)
	}
	if cfg.Scene.Mode != "2d" {
		t.Errorf("Expected default mode 2d, got %s", cfg.Scene.Mode)
	}
	if len(cfg.Scene.Features) == 0 {
		t.Error("Expected default features, got none")
	}
	if cfg.Search.Metric != "diff2" {
		t.Errorf("Expected default metric diff2, got %s", cfg.Search.Metric)
	}
	if cfg.Search.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", cfg.Search.Workers)
	}
	if cfg.Search.Precision != "float64" {
		t.Errorf("Expected default precision float64, got %s", cfg.Search.Precision)
	}
	if cfg.Output.Dir == "" {
		t.Error("Expected a default output directory, got empty string")
	}
}

// TestLoadConfigMissingFile verifies that a missing file yields defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}

	want := DefaultConfig()
	if cfg.Scene.Size != want.Scene.Size || cfg.Search.Metric != want.Search.Metric {
		t.Error("Expected default configuration for a missing file")
	}
}

// TestSaveAndLoadConfig verifies the YAML round trip
func TestSaveAndLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := DefaultConfig()
	cfg.Scene.Size = 128
	cfg.Scene.Mode = "ref3d"
	cfg.Search.Metric = "cc"
	cfg.Search.Workers = 3
	cfg.Tuning.Vector = "off"
	cfg.Scene.Features = []FeatureSpec{{Amp: 2.5, Sigma: 4, Center: [3]float64{60, 70, 64}}}

	configPath := filepath.Join(tempDir, "nested", "config.yaml")
	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Scene.Size != 128 {
		t.Errorf("Expected size 128, got %d", loaded.Scene.Size)
	}
	if loaded.Scene.Mode != "ref3d" {
		t.Errorf("Expected mode ref3d, got %s", loaded.Scene.Mode)
	}
	if loaded.Search.Metric != "cc" {
		t.Errorf("Expected metric cc, got %s", loaded.Search.Metric)
	}
	if loaded.Search.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", loaded.Search.Workers)
	}
	if loaded.Tuning.Vector != "off" {
		t.Errorf("Expected vector off, got %s", loaded.Tuning.Vector)
	}
	if len(loaded.Scene.Features) != 1 || loaded.Scene.Features[0].Sigma != 4 {
		t.Errorf("Features did not survive the round trip: %+v", loaded.Scene.Features)
	}
}

// TestLoadConfigPartial verifies that unspecified fields keep defaults
func TestLoadConfigPartial(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config-partial-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.yaml")
	partial := []byte("search:\n  metric: cc\n")
	if err := os.WriteFile(configPath, partial, 0644); err != nil {
		t.Fatalf("Failed to write partial config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Search.Metric != "cc" {
		t.Errorf("Expected overridden metric cc, got %s", cfg.Search.Metric)
	}
	if cfg.Scene.Size != DefaultConfig().Scene.Size {
		t.Errorf("Expected default size to survive a partial config, got %d", cfg.Scene.Size)
	}
}

// TestLoadConfigInvalidYAML verifies malformed files are rejected
func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config-invalid-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene: [not, a, mapping"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}
