package ops

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
	"github.com/tendhq/tend/internal/triage"
)

// ListReviewsInput contains parameters for the ListReviews operation.
type ListReviewsInput struct {
	// Status filters by queue state; empty means all.
	Status string
}

// ListReviewsOutput contains the result of the ListReviews operation.
type ListReviewsOutput struct {
	Reviews []record.ReviewEntry `json:"reviews"`
	Count   int                  `json:"count"`
}

// ListReviews returns review-queue entries, oldest first.
func ListReviews(ctx context.Context, store *db.Store, cfg *config.Config, input ListReviewsInput) (*ListReviewsOutput, error) {
	status := record.QueueStatus(input.Status)
	switch status {
	case "", record.QueuePending, record.QueueCompleted:
	default:
		return nil, errors.NewInvalidRequest("unknown review status: " + input.Status)
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()
	reviews, err := store.ListReviews(sctx, status)
	if err != nil {
		return nil, err
	}
	return &ListReviewsOutput{Reviews: reviews, Count: len(reviews)}, nil
}

// ResolveReviewInput contains parameters for the ResolveReview operation.
type ResolveReviewInput struct {
	ID string

	// Action is "create" (materialize the held candidate as a record) or
	// "dismiss" (drop it).
	Action string
}

// ResolveReviewOutput contains the result of the ResolveReview operation.
type ResolveReviewOutput struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	Created string `json:"created,omitempty"` // stable key of the new record
}

// ResolveReview closes one review-queue entry. Creation reuses the exact
// candidate that was held, so a reviewed record matches what detection saw.
func ResolveReview(ctx context.Context, store *db.Store, cfg *config.Config, input ResolveReviewInput) (*ResolveReviewOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	action := strings.TrimSpace(input.Action)
	if action != "create" && action != "dismiss" {
		return nil, errors.NewInvalidRequest(`action must be "create" or "dismiss"`)
	}

	sctx, cancel := storageCtx(ctx, cfg)
	defer cancel()

	entry, err := store.GetReview(sctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != record.QueuePending {
		return nil, errors.NewInvalidRequest("review entry is already resolved")
	}

	out := &ResolveReviewOutput{ID: id, Action: action}
	now := time.Now().Unix()

	if action == "create" {
		var c detect.Candidate
		if err := json.Unmarshal([]byte(entry.CandidateJSON), &c); err != nil {
			return nil, errors.NewInternal(err)
		}
		if c.Kind == detect.KindPerson {
			err = store.InsertPerson(sctx, triage.BuildPerson(c, now))
		} else {
			err = store.InsertTask(sctx, triage.BuildTask(c, now))
		}
		// A record created since the entry was queued satisfies the intent.
		if err != nil && !errors.Is(err, errors.ErrAlreadyExists) {
			return nil, err
		}
		out.Created = c.Key
	}

	if err := store.ResolveReview(sctx, id, now); err != nil {
		return nil, err
	}
	return out, nil
}
