// Package record defines the persistent domain types: people, tasks,
// interaction events, recommendations, and the review/update queues.
// Detection produces ephemeral candidates (internal/detect); only records
// and queue entries defined here are ever written to the store.
package record

import (
	"strings"
	"unicode"
)

// Importance is the declared importance of a relationship.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Cadence is the preferred interaction frequency for a person.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceAsNeeded  Cadence = "as_needed"
)

// Direction indicates who owes the work a task describes.
type Direction string

const (
	DirectionIncoming     Direction = "incoming"
	DirectionOutgoing     Direction = "outgoing"
	DirectionSelfAssigned Direction = "self_assigned"
)

// Priority is a task's declared priority.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskActive    TaskStatus = "active"
	TaskBlocked   TaskStatus = "blocked"
	TaskCompleted TaskStatus = "completed"
	TaskDeferred  TaskStatus = "deferred"
)

// Urgency is the coarse ranking attached to a recommendation.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// RecommendationType classifies why a recommendation was emitted.
type RecommendationType string

const (
	RecInitialContact RecommendationType = "initial_contact"
	RecOverdueCheckIn RecommendationType = "overdue_check_in"
	RecProjectUpdate  RecommendationType = "project_update"
)

// RecommendationStatus is the lifecycle state of a recommendation.
type RecommendationStatus string

const (
	RecPending   RecommendationStatus = "pending"
	RecCompleted RecommendationStatus = "completed"
	RecExpired   RecommendationStatus = "expired"
)

// QueueStatus is the lifecycle state of a review or update-suggestion entry.
type QueueStatus string

const (
	QueuePending   QueueStatus = "pending"
	QueueCompleted QueueStatus = "completed"
)

// Person is a relationship worth managing.
// The stable key is immutable once created; importance and cadence change
// only through the update-suggestion path or an explicit edit, never by
// re-detection.
type Person struct {
	// Key is the stable key (normalized lowercase, non-alphanumeric stripped)
	Key string `json:"key"`

	// Name is the display name as detected or entered
	Name string `json:"name"`

	// Role is an optional role title (e.g. "Engineering Manager")
	Role *string `json:"role,omitempty"`

	// Team is an optional organizational unit
	Team *string `json:"team,omitempty"`

	Importance Importance `json:"importance"`
	Cadence    Cadence    `json:"cadence"`

	// Channels is the set of preferred interaction channels
	Channels []string `json:"channels,omitempty"`

	// Style is an optional communication-style note (e.g. "direct")
	Style *string `json:"style,omitempty"`

	// Categories records the detection categories that have been most
	// effective for this person
	Categories []string `json:"categories,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Task is a tracked action item. Direction determines whether an assignee
// is mandatory: an outgoing task without a resolvable assignee must never
// reach auto-create.
type Task struct {
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Direction   Direction `json:"direction"`

	// Assignee is required for outgoing tasks
	Assignee *string `json:"assignee,omitempty"`

	Priority Priority `json:"priority"`

	// DueAt is an optional due date (Unix timestamp)
	DueAt *int64 `json:"due_at,omitempty"`

	FollowUp   bool   `json:"follow_up"`
	FollowUpAt *int64 `json:"follow_up_at,omitempty"`

	Category string     `json:"category,omitempty"`
	Status   TaskStatus `json:"status"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Interaction is an append-only event: never mutated after creation.
type Interaction struct {
	ID         string   `json:"id"`
	PersonKey  string   `json:"person_key"`
	OccurredAt int64    `json:"occurred_at"`
	Type       string   `json:"type"`              // meeting, chat, email, call, ad_hoc
	Quality    int      `json:"quality,omitempty"` // 1-5, 0 = unrated
	Topics     []string `json:"topics,omitempty"`
	CreatedAt  int64    `json:"created_at"`
}

// Recommendation is derived, disposable state: created by the scheduler,
// completed when a newer interaction supersedes it, expired otherwise.
type Recommendation struct {
	ID         string               `json:"id"`
	PersonKey  string               `json:"person_key"`
	Type       RecommendationType   `json:"type"`
	Urgency    Urgency              `json:"urgency"`
	Reason     string               `json:"reason"`
	Approach   string               `json:"approach"`
	Confidence float64              `json:"confidence"`
	Status     RecommendationStatus `json:"status"`
	CreatedAt  int64                `json:"created_at"`
	ExpiresAt  int64                `json:"expires_at"`
}

// InterestLink ties a person to an initiative they care about. Active links
// at critical/high level with a weekly or biweekly required cadence drive
// project-update recommendations.
type InterestLink struct {
	ID              string     `json:"id"`
	PersonKey       string     `json:"person_key"`
	Initiative      string     `json:"initiative"`
	Level           Importance `json:"level"`
	RequiredCadence Cadence    `json:"required_cadence"`
	Active          bool       `json:"active"`
	CreatedAt       int64      `json:"created_at"`
}

// ReviewEntry holds a not-yet-actioned candidate awaiting human profiling.
// It transitions to completed only via explicit human action.
type ReviewEntry struct {
	ID            string      `json:"id"`
	Kind          string      `json:"kind"` // person or task
	CandidateJSON string      `json:"candidate_json"`
	Questions     []string    `json:"questions,omitempty"`
	Status        QueueStatus `json:"status"`
	CreatedAt     int64       `json:"created_at"`
	ResolvedAt    *int64      `json:"resolved_at,omitempty"`
}

// UpdateSuggestion is a diff against an existing record. The record itself
// stays untouched until the suggestion is accepted.
type UpdateSuggestion struct {
	ID         string      `json:"id"`
	TargetKey  string      `json:"target_key"`
	Kind       string      `json:"kind"` // person or task
	Field      string      `json:"field"`
	Current    string      `json:"current"`
	Suggested  string      `json:"suggested"`
	Confidence float64     `json:"confidence"`
	Status     QueueStatus `json:"status"`
	CreatedAt  int64       `json:"created_at"`
	ResolvedAt *int64      `json:"resolved_at,omitempty"`
}

// DetectionLogEntry records a discarded candidate so discards stay
// retrievable for analysis without being actionable.
type DetectionLogEntry struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Kind        string  `json:"kind"`
	Confidence  float64 `json:"confidence"`
	Disposition string  `json:"disposition"`
	Reason      string  `json:"reason"`
	Source      string  `json:"source,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// StableKey derives the deterministic identifier used to match entities
// across scans: lowercase with every non-alphanumeric rune stripped.
func StableKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidImportance reports whether s is a recognized importance level.
func ValidImportance(s Importance) bool {
	switch s {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// ValidCadence reports whether s is a recognized cadence.
func ValidCadence(s Cadence) bool {
	switch s {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly, CadenceAsNeeded:
		return true
	}
	return false
}

// ValidDirection reports whether s is a recognized task direction.
func ValidDirection(s Direction) bool {
	switch s {
	case DirectionIncoming, DirectionOutgoing, DirectionSelfAssigned:
		return true
	}
	return false
}

// urgencyRank orders urgencies for sorting; lower sorts first.
var urgencyRank = map[Urgency]int{
	UrgencyUrgent: 0,
	UrgencyHigh:   1,
	UrgencyMedium: 2,
	UrgencyLow:    3,
}

// UrgencyRank returns a sortable rank for u (urgent first). Unknown
// urgencies sort last.
func UrgencyRank(u Urgency) int {
	if r, ok := urgencyRank[u]; ok {
		return r
	}
	return len(urgencyRank)
}

// importanceRank orders importance levels; lower ranks higher.
var importanceRank = map[Importance]int{
	ImportanceCritical: 0,
	ImportanceHigh:     1,
	ImportanceMedium:   2,
	ImportanceLow:      3,
}

// ImportanceRank returns a sortable rank for imp (critical first). Unknown
// levels sort last.
func ImportanceRank(imp Importance) int {
	if r, ok := importanceRank[imp]; ok {
		return r
	}
	return len(importanceRank)
}

// DefaultCadence maps a declared importance to the cadence used when a
// person is auto-created without an explicit preference.
func DefaultCadence(imp Importance) Cadence {
	switch imp {
	case ImportanceCritical:
		return CadenceWeekly
	case ImportanceHigh:
		return CadenceBiweekly
	case ImportanceMedium:
		return CadenceMonthly
	default:
		return CadenceQuarterly
	}
}
