package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PREAPPLY_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RiskScoring.DataLoss.BaseWeight != 50 {
		t.Fatalf("expected default base_weight 50, got %v", cfg.RiskScoring.DataLoss.BaseWeight)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PREAPPLY_CONFIG", "")

	cfg := Default()
	cfg.RiskScoring.DataLoss.BaseWeight = 75
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.RiskScoring.DataLoss.BaseWeight != 75 {
		t.Fatalf("expected base_weight 75 after round trip, got %v", loaded.RiskScoring.DataLoss.BaseWeight)
	}
}

func TestFilePathPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PREAPPLY_CONFIG", "/env/path.yaml")

	p, err := FilePath("")
	if err != nil {
		t.Fatalf("FilePath error: %v", err)
	}
	if p != "/env/path.yaml" {
		t.Fatalf("expected env path to win over default, got %q", p)
	}

	p, err = FilePath("/flag/path.yaml")
	if err != nil {
		t.Fatalf("FilePath error: %v", err)
	}
	if p != "/flag/path.yaml" {
		t.Fatalf("expected flag path to win over env var, got %q", p)
	}
}

func TestValidateRejectsBadDecay(t *testing.T) {
	cfg := Default()
	cfg.RiskScoring.Security.DecayFactor = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for zero decay factor")
	}
}

func TestValidateRejectsUnsortedThresholds(t *testing.T) {
	cfg := Default()
	cfg.RiskScoring.Thresholds.High = cfg.RiskScoring.Thresholds.HighSevere + 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for unsorted thresholds")
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	legacy := []byte(`
blast_radius:
  weights:
    data: 0.9
    security: 0.1
    infrastructure: 0.5
    cost: 0.2
shared_resources:
  critical_types: ["aws_vpc"]
  sensitive_delete_types: ["aws_s3_bucket"]
`)
	if err := os.WriteFile(path, legacy, 0o600); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RiskScoring.BlastRadius.Weights.Data != 0.9 {
		t.Fatalf("expected migrated blast_radius.weights.data 0.9, got %v", cfg.RiskScoring.BlastRadius.Weights.Data)
	}
	if len(cfg.SharedResources.CriticalTypes) != 1 || cfg.SharedResources.CriticalTypes[0] != "aws_vpc" {
		t.Fatalf("expected migrated shared_resources.critical_types, got %v", cfg.SharedResources.CriticalTypes)
	}
}
