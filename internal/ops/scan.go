package ops

import (
	"context"
	"strings"
	"sync"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/triage"
)

// ScanDocument is one document in a multi-document scan.
type ScanDocument struct {
	Text        string
	File        string
	Category    string
	MeetingType string
}

// ScanInput contains parameters for the Scan operation.
type ScanInput struct {
	Documents []ScanDocument
}

// DocumentResult is the triage result for one scanned document, in input
// order.
type DocumentResult struct {
	File      string        `json:"file,omitempty"`
	Items     []ItemOutcome `json:"items"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Error     string        `json:"error,omitempty"`
}

// ScanOutput contains the result of the Scan operation.
type ScanOutput struct {
	Documents []DocumentResult `json:"documents"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
}

// Scan runs detection over every document concurrently, then routes the
// combined candidates serially. Detection is pure so it parallelizes
// freely; routing stays single-file because each candidate must observe
// the records the previous one created.
func Scan(ctx context.Context, store *db.Store, cfg *config.Config, input ScanInput) (*ScanOutput, error) {
	if len(input.Documents) == 0 {
		return nil, errors.NewInvalidRequest("at least one document is required")
	}

	workers := cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}

	detected := make([][]detect.Candidate, len(input.Documents))
	detectErrs := make([]error, len(input.Documents))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range input.Documents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc := input.Documents[i]
			if strings.TrimSpace(doc.Text) == "" {
				detectErrs[i] = errors.NewInvalidRequest("document text is empty")
				return
			}
			detector := detect.New(cfg)
			detected[i] = detector.Detect(doc.Text, detect.SourceContext{
				File:        doc.File,
				Category:    doc.Category,
				MeetingType: doc.MeetingType,
			})
		}(i)
	}
	wg.Wait()

	router := triage.NewRouter(store, cfg)
	out := &ScanOutput{Documents: make([]DocumentResult, len(input.Documents))}
	var routedItems []ItemOutcome
	for i, doc := range input.Documents {
		result := DocumentResult{File: doc.File}
		if detectErrs[i] != nil {
			result.Error = detectErrs[i].Error()
			out.Documents[i] = result
			out.Failed++
			continue
		}
		routed := routeAll(ctx, router, cfg, detected[i])
		result.Items = routed.Items
		result.Processed = routed.Processed
		result.Failed = routed.Failed
		out.Documents[i] = result
		out.Processed += routed.Processed
		out.Failed += routed.Failed
		routedItems = append(routedItems, routed.Items...)
	}
	regenerateIfPersonCreated(ctx, store, cfg, routedItems)
	return out, nil
}
