package ops

import (
	"context"
	"log"
	"strings"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/schedule"
	"github.com/tendhq/tend/internal/triage"
)

// TriageInput contains parameters for the Triage operation.
type TriageInput struct {
	Text string

	// Source context, all optional
	File        string
	Category    string
	MeetingType string
}

// ItemOutcome is the per-candidate result of a triage pass. Failures are
// captured here rather than aborting the batch: one entity's storage
// failure never blocks the rest.
type ItemOutcome struct {
	Text    string          `json:"text"`
	Key     string          `json:"key"`
	Outcome *triage.Outcome `json:"outcome,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TriageOutput contains the result of the Triage operation.
type TriageOutput struct {
	Items     []ItemOutcome `json:"items"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
}

// Triage detects candidates in one text and routes each through the
// dispositions. Each candidate is its own transactional unit.
func Triage(ctx context.Context, store *db.Store, cfg *config.Config, input TriageInput) (*TriageOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	detector := detect.New(cfg)
	cands := detector.Detect(input.Text, detect.SourceContext{
		File:        input.File,
		Category:    input.Category,
		MeetingType: input.MeetingType,
	})

	router := triage.NewRouter(store, cfg)
	out := routeAll(ctx, router, cfg, cands)
	regenerateIfPersonCreated(ctx, store, cfg, out.Items)
	return out, nil
}

// routeAll routes a candidate set and collects per-item outcomes.
func routeAll(ctx context.Context, router *triage.Router, cfg *config.Config, cands []detect.Candidate) *TriageOutput {
	out := &TriageOutput{Items: make([]ItemOutcome, 0, len(cands))}
	for _, c := range cands {
		item := ItemOutcome{Text: c.Text, Key: c.Key}

		sctx, cancel := storageCtx(ctx, cfg)
		outcome, err := router.Route(sctx, c)
		cancel()

		if err != nil {
			item.Error = err.Error()
			out.Failed++
		} else {
			item.Outcome = outcome
			out.Processed++
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// regenerateIfPersonCreated reruns the scheduler when a routing pass
// auto-created a person, so the new relationship gets its initial-contact
// recommendation immediately instead of waiting for the next manual
// generation. A regeneration failure is logged, never fatal: the records
// are already written.
func regenerateIfPersonCreated(ctx context.Context, store *db.Store, cfg *config.Config, items []ItemOutcome) {
	for _, item := range items {
		if item.Outcome == nil {
			continue
		}
		if item.Outcome.Disposition != triage.DispositionAutoCreate || item.Outcome.Kind != detect.KindPerson {
			continue
		}

		sctx, cancel := storageCtx(ctx, cfg)
		_, err := schedule.New(store, cfg).Generate(sctx)
		cancel()
		if err != nil {
			log.Printf("triage: recommendation regeneration failed: %v", err)
		}
		return
	}
}
