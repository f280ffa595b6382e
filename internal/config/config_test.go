package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tendhq/tend/internal/record"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinConfidence != 0.40 {
		t.Errorf("MinConfidence = %v, want 0.40", cfg.MinConfidence)
	}
	if cfg.PersonAutoCreate != 0.85 {
		t.Errorf("PersonAutoCreate = %v, want 0.85", cfg.PersonAutoCreate)
	}
	if cfg.TaskAutoCreate != 0.80 {
		t.Errorf("TaskAutoCreate = %v, want 0.80", cfg.TaskAutoCreate)
	}
	if got := cfg.ThresholdDays(record.CadenceWeekly); got != 10 {
		t.Errorf("ThresholdDays(weekly) = %d, want 10", got)
	}
	if got := cfg.ThresholdDays(record.CadenceQuarterly); got != 100 {
		t.Errorf("ThresholdDays(quarterly) = %d, want 100", got)
	}
}

func TestThresholdDays_UnknownCadence(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ThresholdDays(record.Cadence("sometimes")); got != 180 {
		t.Errorf("ThresholdDays(unknown) = %d, want as_needed fallback 180", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MinConfidence != 0.40 {
		t.Errorf("MinConfidence = %v, want default 0.40", cfg.MinConfidence)
	}
}

func TestLoad_Overrides(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"min_confidence": 0.5, "cadence_days": {"weekly": 7, "biweekly": 14, "monthly": 30, "quarterly": 90, "as_needed": 365}}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MinConfidence != 0.5 {
		t.Errorf("MinConfidence = %v, want 0.5", cfg.MinConfidence)
	}
	if got := cfg.ThresholdDays(record.CadenceWeekly); got != 7 {
		t.Errorf("ThresholdDays(weekly) = %d, want overridden 7", got)
	}
	// Untouched scalar keeps default
	if cfg.PersonAutoCreate != 0.85 {
		t.Errorf("PersonAutoCreate = %v, want 0.85", cfg.PersonAutoCreate)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge_MapsReplaceWholesale(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{PersonFieldThresholds: map[string]float64{"role": 0.9}}

	merged := Merge(base, overlay)
	if merged.PersonFieldThresholds["role"] != 0.9 {
		t.Errorf("role threshold = %v, want 0.9", merged.PersonFieldThresholds["role"])
	}
	if _, ok := merged.PersonFieldThresholds["importance"]; ok {
		t.Error("importance threshold should be gone after wholesale replace")
	}
}
