package ops

import (
	"context"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
	"github.com/tendhq/tend/internal/schedule"
)

// GenerateRecommendationsOutput contains the result of the
// GenerateRecommendations operation.
type GenerateRecommendationsOutput struct {
	Report          *schedule.Report        `json:"report"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// GenerateRecommendations rebuilds the pending recommendation set and
// returns it, most urgent first.
func GenerateRecommendations(ctx context.Context, store *db.Store, cfg *config.Config) (*GenerateRecommendationsOutput, error) {
	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()

	sched := schedule.New(store, cfg)
	report, err := sched.Generate(sctx)
	if err != nil {
		return nil, err
	}

	recs, err := store.ListRecommendations(sctx, record.RecPending)
	if err != nil {
		return nil, err
	}
	return &GenerateRecommendationsOutput{Report: report, Recommendations: recs}, nil
}

// ListRecommendationsInput contains parameters for the ListRecommendations
// operation.
type ListRecommendationsInput struct {
	// Status filters by lifecycle state; empty means all.
	Status string
}

// ListRecommendationsOutput contains the result of the ListRecommendations
// operation.
type ListRecommendationsOutput struct {
	Recommendations []record.Recommendation `json:"recommendations"`
	Count           int                     `json:"count"`
}

// ListRecommendations returns stored recommendations without regenerating.
func ListRecommendations(ctx context.Context, store *db.Store, cfg *config.Config, input ListRecommendationsInput) (*ListRecommendationsOutput, error) {
	status := record.RecommendationStatus(input.Status)
	switch status {
	case "", record.RecPending, record.RecCompleted, record.RecExpired:
	default:
		return nil, errors.NewInvalidRequest("unknown recommendation status: " + input.Status)
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()

	recs, err := store.ListRecommendations(sctx, status)
	if err != nil {
		return nil, err
	}
	return &ListRecommendationsOutput{Recommendations: recs, Count: len(recs)}, nil
}
