package ops

import (
	"context"
	"strings"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/errors"
)

// DetectInput contains parameters for the Detect operation.
type DetectInput struct {
	// Text is the raw text to scan, markdown allowed.
	Text string

	// Source context, all optional
	File        string
	Category    string
	MeetingType string
}

// DetectOutput contains the result of the Detect operation.
type DetectOutput struct {
	Candidates []detect.Candidate `json:"candidates"`
	People     int                `json:"people"`
	Tasks      int                `json:"tasks"`
}

// Detect scans one text and returns scored candidates without touching the
// store. It is the dry-run counterpart of Triage.
func Detect(ctx context.Context, cfg *config.Config, input DetectInput) (*DetectOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	detector := detect.New(cfg)
	cands := detector.Detect(input.Text, detect.SourceContext{
		File:        input.File,
		Category:    input.Category,
		MeetingType: input.MeetingType,
	})

	out := &DetectOutput{Candidates: cands}
	for _, c := range cands {
		if c.Kind == detect.KindPerson {
			out.People++
		} else {
			out.Tasks++
		}
	}
	return out, nil
}
