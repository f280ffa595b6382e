package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/tendhq/tend/internal/record"
)

// Config holds application configuration. The numeric thresholds are
// hand-tuned defaults carried over from field use, not derived values;
// they are kept configurable so they can be revised empirically without
// a code change.
type Config struct {
	// MinConfidence is the floor below which a candidate is discarded
	// without a detection-log entry being actionable.
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// PersonAutoCreate and TaskAutoCreate are the confidence levels at or
	// above which a new record is written without review.
	PersonAutoCreate float64 `json:"person_auto_create,omitempty"`
	TaskAutoCreate   float64 `json:"task_auto_create,omitempty"`

	// PersonReview and TaskReview are the floors for the review queue.
	// Candidates between review and auto-create go to needs_review.
	PersonReview float64 `json:"person_review,omitempty"`
	TaskReview   float64 `json:"task_review,omitempty"`

	// PersonFieldThresholds maps person fields to the per-field confidence
	// an observed signal needs before an update suggestion is queued.
	PersonFieldThresholds map[string]float64 `json:"person_field_thresholds,omitempty"`

	// TaskUpdateThreshold is the per-field threshold for task diffs.
	TaskUpdateThreshold float64 `json:"task_update_threshold,omitempty"`

	// CadenceDays maps a cadence to its overdue threshold in days. The
	// values include a buffer over the literal cadence.
	CadenceDays map[record.Cadence]int `json:"cadence_days,omitempty"`

	// RecommendationTTLDays is the expiry horizon for recommendations.
	RecommendationTTLDays int `json:"recommendation_ttl_days,omitempty"`

	// DedupeOverlap is the word-overlap similarity at or above which two
	// candidates from one scan are merged before scoring.
	DedupeOverlap float64 `json:"dedupe_overlap,omitempty"`

	// PersonWindow and TaskWindow are the context-window radii in
	// characters around each candidate occurrence.
	PersonWindow int `json:"person_window,omitempty"`
	TaskWindow   int `json:"task_window,omitempty"`

	// ScanWorkers bounds the worker pool for multi-document scans.
	ScanWorkers int `json:"scan_workers,omitempty"`

	// StorageTimeoutMS bounds every store access so no operation blocks
	// indefinitely.
	StorageTimeoutMS int `json:"storage_timeout_ms,omitempty"`

	// DBMaxOpenConns limits open database connections. 0 means the
	// sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MinConfidence:    0.40,
		PersonAutoCreate: 0.85,
		TaskAutoCreate:   0.80,
		PersonReview:     0.65,
		TaskReview:       0.60,
		PersonFieldThresholds: map[string]float64{
			"role":       0.70,
			"importance": 0.75,
			"channels":   0.65,
		},
		TaskUpdateThreshold: 0.75,
		CadenceDays: map[record.Cadence]int{
			record.CadenceWeekly:    10,
			record.CadenceBiweekly:  18,
			record.CadenceMonthly:   35,
			record.CadenceQuarterly: 100,
			record.CadenceAsNeeded:  180,
		},
		RecommendationTTLDays: 7,
		DedupeOverlap:         0.80,
		PersonWindow:          100,
		TaskWindow:            150,
		ScanWorkers:           4,
		StorageTimeoutMS:      5000,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tend.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-zero; maps replace wholesale when non-empty so a partial table
// never mixes tuning regimes.
func Merge(base, overlay *Config) *Config {
	result := *base

	if overlay.MinConfidence != 0 {
		result.MinConfidence = overlay.MinConfidence
	}
	if overlay.PersonAutoCreate != 0 {
		result.PersonAutoCreate = overlay.PersonAutoCreate
	}
	if overlay.TaskAutoCreate != 0 {
		result.TaskAutoCreate = overlay.TaskAutoCreate
	}
	if overlay.PersonReview != 0 {
		result.PersonReview = overlay.PersonReview
	}
	if overlay.TaskReview != 0 {
		result.TaskReview = overlay.TaskReview
	}
	if len(overlay.PersonFieldThresholds) > 0 {
		result.PersonFieldThresholds = overlay.PersonFieldThresholds
	}
	if overlay.TaskUpdateThreshold != 0 {
		result.TaskUpdateThreshold = overlay.TaskUpdateThreshold
	}
	if len(overlay.CadenceDays) > 0 {
		result.CadenceDays = overlay.CadenceDays
	}
	if overlay.RecommendationTTLDays != 0 {
		result.RecommendationTTLDays = overlay.RecommendationTTLDays
	}
	if overlay.DedupeOverlap != 0 {
		result.DedupeOverlap = overlay.DedupeOverlap
	}
	if overlay.PersonWindow != 0 {
		result.PersonWindow = overlay.PersonWindow
	}
	if overlay.TaskWindow != 0 {
		result.TaskWindow = overlay.TaskWindow
	}
	if overlay.ScanWorkers != 0 {
		result.ScanWorkers = overlay.ScanWorkers
	}
	if overlay.StorageTimeoutMS != 0 {
		result.StorageTimeoutMS = overlay.StorageTimeoutMS
	}
	if overlay.DBMaxOpenConns != 0 {
		result.DBMaxOpenConns = overlay.DBMaxOpenConns
	}
	if overlay.DBMaxIdleConns != 0 {
		result.DBMaxIdleConns = overlay.DBMaxIdleConns
	}
	if len(overlay.DisabledTools) > 0 {
		result.DisabledTools = overlay.DisabledTools
	}

	return &result
}

// ThresholdDays returns the overdue threshold for a cadence. Unknown
// cadences fall back to the as_needed horizon.
func (c *Config) ThresholdDays(cad record.Cadence) int {
	if d, ok := c.CadenceDays[cad]; ok {
		return d
	}
	return c.CadenceDays[record.CadenceAsNeeded]
}

// AutoCreateThreshold returns the auto-create threshold for a candidate kind.
func (c *Config) AutoCreateThreshold(kind string) float64 {
	if kind == "task" {
		return c.TaskAutoCreate
	}
	return c.PersonAutoCreate
}

// ReviewThreshold returns the review-queue floor for a candidate kind.
func (c *Config) ReviewThreshold(kind string) float64 {
	if kind == "task" {
		return c.TaskReview
	}
	return c.PersonReview
}
