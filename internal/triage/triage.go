// Package triage routes scored candidates: auto-create a record, queue the
// candidate for human review, suggest an update against an existing record,
// or discard. The transition order is load-bearing: existing-record
// resolution always runs before the auto-create comparison, so an entity
// already tracked can never be duplicated.
package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// Disposition is the terminal state of one routed candidate.
type Disposition string

const (
	DispositionAutoCreate      Disposition = "auto_create"
	DispositionNeedsReview     Disposition = "needs_review"
	DispositionUpdateSuggested Disposition = "update_suggested"
	DispositionDiscarded       Disposition = "discarded"

	// DispositionUnchanged is the terminal no-op: the candidate matched
	// an existing record and no observed signal cleared its field
	// threshold.
	DispositionUnchanged Disposition = "unchanged"
)

// RecordStore is the storage capability the router needs. The concrete
// store is passed in explicitly; the router holds no global state.
type RecordStore interface {
	GetPerson(ctx context.Context, key string) (*record.Person, error)
	GetTask(ctx context.Context, key string) (*record.Task, error)
	InsertPerson(ctx context.Context, p *record.Person) error
	InsertTask(ctx context.Context, t *record.Task) error
	EnqueueReview(ctx context.Context, e *record.ReviewEntry) error
	EnqueueUpdateSuggestion(ctx context.Context, u *record.UpdateSuggestion) error
	LogDetection(ctx context.Context, e *record.DetectionLogEntry) error
}

// Outcome describes what routing did with one candidate.
type Outcome struct {
	Disposition Disposition `json:"disposition"`
	Key         string      `json:"key"`
	Kind        detect.Kind `json:"kind"`
	Confidence  float64     `json:"confidence"`
	Reason      string      `json:"reason"`

	// Questions accompany needs_review outcomes
	Questions []string `json:"questions,omitempty"`

	// Suggestions accompany update_suggested outcomes
	Suggestions []record.UpdateSuggestion `json:"suggestions,omitempty"`
}

// Router classifies scored candidates against the configured thresholds.
type Router struct {
	store RecordStore
	cfg   *config.Config

	// Now is injected for reproducible timestamps in tests.
	Now func() time.Time
}

// NewRouter creates a Router over the given store.
func NewRouter(store RecordStore, cfg *config.Config) *Router {
	return &Router{store: store, cfg: cfg, Now: time.Now}
}

// Route runs one candidate through the state machine. One call is one
// transactional unit: a storage failure abandons this candidate with a
// retryable error and never partially writes a record.
func (r *Router) Route(ctx context.Context, c detect.Candidate) (*Outcome, error) {
	if c.Key == "" {
		return nil, errors.NewInvalidRequest("candidate has no stable key")
	}

	// 1. Below minimum: discard, but keep the trail.
	if c.Confidence < r.cfg.MinConfidence {
		return r.discard(ctx, c, "below minimum confidence")
	}

	// 2. Existing-record resolution takes priority over auto-create.
	existing, err := r.lookupExisting(ctx, c)
	if err != nil {
		return nil, errors.NewStorageFailed(c.Key, "resolve", err)
	}
	if existing {
		return r.routeExisting(ctx, c)
	}

	// 3. New entity: compare against the kind's thresholds.
	conf := c.Confidence
	autoCreate := r.cfg.AutoCreateThreshold(string(c.Kind))
	review := r.cfg.ReviewThreshold(string(c.Kind))

	// An outgoing task without a resolvable assignee never auto-creates.
	if conf >= autoCreate && c.Kind == detect.KindTask &&
		c.Direction == record.DirectionOutgoing && c.Assignee == "" {
		conf = autoCreate - 0.01
	}

	switch {
	case conf >= autoCreate:
		return r.autoCreate(ctx, c)
	case conf >= review:
		return r.enqueueReview(ctx, c)
	default:
		return r.discard(ctx, c, "below review threshold")
	}
}

// lookupExisting reports whether a record already holds this stable key.
func (r *Router) lookupExisting(ctx context.Context, c detect.Candidate) (bool, error) {
	var err error
	if c.Kind == detect.KindPerson {
		_, err = r.store.GetPerson(ctx, c.Key)
	} else {
		_, err = r.store.GetTask(ctx, c.Key)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// routeExisting diffs newly observed signals against the stored record and
// queues the suggestions that clear their per-field thresholds. The record
// itself is never touched here.
func (r *Router) routeExisting(ctx context.Context, c detect.Candidate) (*Outcome, error) {
	var suggestions []record.UpdateSuggestion
	var err error

	if c.Kind == detect.KindPerson {
		suggestions, err = r.personDiff(ctx, c)
	} else {
		suggestions, err = r.taskDiff(ctx, c)
	}
	if err != nil {
		return nil, errors.NewStorageFailed(c.Key, string(DispositionUpdateSuggested), err)
	}

	if len(suggestions) == 0 {
		return &Outcome{
			Disposition: DispositionUnchanged,
			Key:         c.Key,
			Kind:        c.Kind,
			Confidence:  c.Confidence,
			Reason:      "matches existing record; no signal cleared its field threshold",
		}, nil
	}

	now := r.Now().Unix()
	for i := range suggestions {
		id, idErr := record.NewID()
		if idErr != nil {
			return nil, errors.NewInternal(idErr)
		}
		suggestions[i].ID = id
		suggestions[i].Status = record.QueuePending
		suggestions[i].CreatedAt = now
		if err := r.store.EnqueueUpdateSuggestion(ctx, &suggestions[i]); err != nil {
			return nil, errors.NewStorageFailed(c.Key, string(DispositionUpdateSuggested), err)
		}
	}

	return &Outcome{
		Disposition: DispositionUpdateSuggested,
		Key:         c.Key,
		Kind:        c.Kind,
		Confidence:  c.Confidence,
		Reason:      fmt.Sprintf("%d field signal(s) cleared the update threshold", len(suggestions)),
		Suggestions: suggestions,
	}, nil
}

// personDiff compares observed signals to the stored person.
func (r *Router) personDiff(ctx context.Context, c detect.Candidate) ([]record.UpdateSuggestion, error) {
	p, err := r.store.GetPerson(ctx, c.Key)
	if err != nil {
		return nil, err
	}

	var out []record.UpdateSuggestion

	if c.Role != "" && (p.Role == nil || *p.Role != c.Role) {
		if conf := c.Scores[detect.CategoryRole]; conf >= r.cfg.PersonFieldThresholds["role"] {
			current := ""
			if p.Role != nil {
				current = *p.Role
			}
			out = append(out, record.UpdateSuggestion{
				TargetKey: c.Key, Kind: "person", Field: "role",
				Current: current, Suggested: c.Role, Confidence: conf,
			})
		}
	}

	// Importance only ever escalates via suggestion; a quiet stretch of
	// notes is not evidence someone stopped mattering.
	observed := DeriveImportance(c)
	if record.ImportanceRank(observed) < record.ImportanceRank(p.Importance) {
		if conf := c.Scores[detect.CategoryImportance]; conf >= r.cfg.PersonFieldThresholds["importance"] {
			out = append(out, record.UpdateSuggestion{
				TargetKey: c.Key, Kind: "person", Field: "importance",
				Current: string(p.Importance), Suggested: string(observed), Confidence: conf,
			})
		}
	}

	if newCh := missingChannels(p.Channels, c.Channels); len(newCh) > 0 {
		if conf := c.Scores[detect.CategoryChannel]; conf >= r.cfg.PersonFieldThresholds["channels"] {
			out = append(out, record.UpdateSuggestion{
				TargetKey: c.Key, Kind: "person", Field: "channels",
				Current:   fmt.Sprintf("%v", p.Channels),
				Suggested: fmt.Sprintf("%v", newCh), Confidence: conf,
			})
		}
	}

	return out, nil
}

// taskDiff compares observed signals to the stored task.
func (r *Router) taskDiff(ctx context.Context, c detect.Candidate) ([]record.UpdateSuggestion, error) {
	t, err := r.store.GetTask(ctx, c.Key)
	if err != nil {
		return nil, err
	}

	var out []record.UpdateSuggestion

	// Explicit signals only: the candidate's defaults are not a diff.
	hasSignal := c.Scores[detect.CategoryPriority] > 0

	if hasSignal && c.Priority != record.PriorityMedium && c.Priority != t.Priority {
		if c.Confidence >= r.cfg.TaskUpdateThreshold {
			out = append(out, record.UpdateSuggestion{
				TargetKey: c.Key, Kind: "task", Field: "priority",
				Current: string(t.Priority), Suggested: string(c.Priority),
				Confidence: c.Confidence,
			})
		}
	}

	if c.DueAt != nil {
		due := c.DueAt.Unix()
		if (t.DueAt == nil || *t.DueAt != due) && c.Confidence >= r.cfg.TaskUpdateThreshold {
			current := ""
			if t.DueAt != nil {
				current = time.Unix(*t.DueAt, 0).UTC().Format("2006-01-02")
			}
			out = append(out, record.UpdateSuggestion{
				TargetKey: c.Key, Kind: "task", Field: "due_date",
				Current: current, Suggested: c.DueAt.UTC().Format("2006-01-02"),
				Confidence: c.Confidence,
			})
		}
	}

	return out, nil
}

// autoCreate writes the record immediately.
func (r *Router) autoCreate(ctx context.Context, c detect.Candidate) (*Outcome, error) {
	now := r.Now().Unix()
	var err error

	if c.Kind == detect.KindPerson {
		err = r.store.InsertPerson(ctx, BuildPerson(c, now))
	} else {
		err = r.store.InsertTask(ctx, BuildTask(c, now))
	}
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			// Lost a race with another write of the same key; the
			// existing record wins.
			return &Outcome{
				Disposition: DispositionUnchanged,
				Key:         c.Key,
				Kind:        c.Kind,
				Confidence:  c.Confidence,
				Reason:      "record appeared concurrently",
			}, nil
		}
		return nil, errors.NewStorageFailed(c.Key, string(DispositionAutoCreate), err)
	}

	return &Outcome{
		Disposition: DispositionAutoCreate,
		Key:         c.Key,
		Kind:        c.Kind,
		Confidence:  c.Confidence,
		Reason:      fmt.Sprintf("confidence %.2f cleared the auto-create threshold", c.Confidence),
	}, nil
}

// enqueueReview stores the candidate with clarifying questions.
func (r *Router) enqueueReview(ctx context.Context, c detect.Candidate) (*Outcome, error) {
	id, err := record.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	questions := ClarifyingQuestions(c)
	entry := &record.ReviewEntry{
		ID:            id,
		Kind:          string(c.Kind),
		CandidateJSON: string(payload),
		Questions:     questions,
		Status:        record.QueuePending,
		CreatedAt:     r.Now().Unix(),
	}
	if err := r.store.EnqueueReview(ctx, entry); err != nil {
		return nil, errors.NewStorageFailed(c.Key, string(DispositionNeedsReview), err)
	}

	return &Outcome{
		Disposition: DispositionNeedsReview,
		Key:         c.Key,
		Kind:        c.Kind,
		Confidence:  c.Confidence,
		Reason:      fmt.Sprintf("confidence %.2f needs human profiling", c.Confidence),
		Questions:   questions,
	}, nil
}

// discard logs the candidate and terminates. The log write is part of the
// disposition: a discard must stay retrievable for analysis.
func (r *Router) discard(ctx context.Context, c detect.Candidate, reason string) (*Outcome, error) {
	id, err := record.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	entry := &record.DetectionLogEntry{
		ID:          id,
		Key:         c.Key,
		Kind:        string(c.Kind),
		Confidence:  c.Confidence,
		Disposition: string(DispositionDiscarded),
		Reason:      reason,
		Source:      c.Source.File,
		CreatedAt:   r.Now().Unix(),
	}
	if err := r.store.LogDetection(ctx, entry); err != nil {
		return nil, errors.NewStorageFailed(c.Key, string(DispositionDiscarded), err)
	}

	return &Outcome{
		Disposition: DispositionDiscarded,
		Key:         c.Key,
		Kind:        c.Kind,
		Confidence:  c.Confidence,
		Reason:      reason,
	}, nil
}

// missingChannels returns observed channels absent from the stored set.
func missingChannels(existing, observed []string) []string {
	have := make(map[string]bool, len(existing))
	for _, ch := range existing {
		have[ch] = true
	}
	var out []string
	for _, ch := range observed {
		if !have[ch] {
			out = append(out, ch)
		}
	}
	return out
}
