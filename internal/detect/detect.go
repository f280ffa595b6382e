// Package detect turns free-form note text into scored candidate entities:
// people worth managing a relationship with and action items worth
// tracking. Detection is deterministic pattern matching against static
// catalogs plus a fixed scoring formula; no model, no randomness, and
// every score traces back to the rules that produced it.
package detect

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tendhq/tend/internal/config"
)

// minTextChars is the floor below which a text is not worth scanning.
const minTextChars = 10

// EntityDetector is the detection capability consumed by the ops layer.
type EntityDetector interface {
	Detect(text string, src SourceContext) []Candidate
}

// Detector implements EntityDetector over the static pattern library.
type Detector struct {
	cfg *config.Config

	// Now is injected for reproducible due-date resolution in tests.
	Now func() time.Time
}

// New creates a Detector with the given configuration.
func New(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg, Now: time.Now}
}

// Detect scans text and returns the deduplicated, scored candidate set.
// Pure with respect to external state: no side effects, and identical
// (text, source) pairs yield identical results for a fixed reference time.
func (d *Detector) Detect(text string, src SourceContext) []Candidate {
	norm := Normalize(text)
	if utf8.RuneCountInString(norm) < minTextChars {
		return nil
	}

	now := d.Now()
	cands := extractPeople(norm, src, d.cfg.PersonWindow)
	cands = append(cands, extractTasks(norm, src, d.cfg.TaskWindow, now)...)
	cands = dedupe(cands, d.cfg.DedupeOverlap)

	for i := range cands {
		switch cands[i].Kind {
		case KindPerson:
			scorePerson(&cands[i])
		case KindTask:
			scoreTask(&cands[i])
		}
	}

	// Stable order: people before tasks, then by confidence descending,
	// then by key.
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Kind != cands[j].Kind {
			return cands[i].Kind == KindPerson
		}
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		return strings.Compare(cands[i].Key, cands[j].Key) < 0
	})

	return cands
}
