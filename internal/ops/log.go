package ops

import (
	"context"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/record"
)

// ListDetectionLogInput contains parameters for the ListDetectionLog
// operation.
type ListDetectionLogInput struct {
	// Limit caps the entries returned; zero means the default.
	Limit int
}

// ListDetectionLogOutput contains the result of the ListDetectionLog
// operation.
type ListDetectionLogOutput struct {
	Entries []record.DetectionLogEntry `json:"entries"`
	Count   int                        `json:"count"`
}

// ListDetectionLog returns discarded-candidate log entries, newest first.
// The log is retrievable for analysis but never actionable.
func ListDetectionLog(ctx context.Context, store *db.Store, cfg *config.Config, input ListDetectionLogInput) (*ListDetectionLogOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	entries, err := store.ListDetectionLog(sctx, limit)
	if err != nil {
		return nil, err
	}
	return &ListDetectionLogOutput{Entries: entries, Count: len(entries)}, nil
}
