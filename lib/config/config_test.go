package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %q", cfg.Timezone)
	}
	if !cfg.SpatialGrid {
		t.Error("expected spatial_grid default true")
	}
	if cfg.ShellActionsEnabled {
		t.Error("expected shell_actions_enabled default false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	src := `
rules_file: rules.yaml
region_files:
  - sfo.kml
  - lax.kml
expiry_seconds: 120
shell_actions_enabled: true
webhooks:
  nats: nats://localhost:4222
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RulesFile != "rules.yaml" {
		t.Errorf("expected rules_file rules.yaml, got %q", cfg.RulesFile)
	}
	if len(cfg.RegionFiles) != 2 {
		t.Errorf("expected 2 region files, got %d", len(cfg.RegionFiles))
	}
	if cfg.ExpirySeconds != 120 {
		t.Errorf("expected expiry_seconds 120, got %v", cfg.ExpirySeconds)
	}
	if !cfg.ShellActionsEnabled {
		t.Error("expected shell_actions_enabled true")
	}
	if cfg.Webhooks["nats"] != "nats://localhost:4222" {
		t.Errorf("expected nats webhook target, got %q", cfg.Webhooks["nats"])
	}
}
