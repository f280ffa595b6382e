package triage

import (
	"fmt"
	"strings"

	"github.com/tendhq/tend/internal/detect"
	"github.com/tendhq/tend/internal/record"
)

// DeriveImportance maps a person candidate's importance signal density to a
// declared level. The bands are deliberately conservative: auto-created
// people start no higher than the evidence in the surrounding text supports,
// and escalation happens later through the update-suggestion path.
func DeriveImportance(c detect.Candidate) record.Importance {
	score := c.Scores[detect.CategoryImportance]
	switch {
	case score >= 0.6:
		return record.ImportanceCritical
	case score >= 0.35:
		return record.ImportanceHigh
	case score >= 0.1:
		return record.ImportanceMedium
	default:
		return record.ImportanceLow
	}
}

// BuildPerson materializes a person record from an auto-create candidate.
func BuildPerson(c detect.Candidate, now int64) *record.Person {
	p := &record.Person{
		Key:       c.Key,
		Name:      c.Text,
		Channels:  c.Channels,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Role != "" {
		role := c.Role
		p.Role = &role
	}
	if c.Style != "" {
		style := c.Style
		p.Style = &style
	}
	p.Importance = DeriveImportance(c)
	p.Cadence = record.DefaultCadence(p.Importance)
	if c.Source.Category != "" {
		p.Categories = []string{c.Source.Category}
	}
	return p
}

// BuildTask materializes a task record from an auto-create candidate.
func BuildTask(c detect.Candidate, now int64) *record.Task {
	t := &record.Task{
		Key:         c.Key,
		Description: c.Text,
		Direction:   c.Direction,
		Priority:    c.Priority,
		FollowUp:    c.FollowUp,
		Category:    c.Source.Category,
		Status:      record.TaskActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Assignee != "" {
		a := c.Assignee
		t.Assignee = &a
	}
	if c.DueAt != nil {
		due := c.DueAt.Unix()
		t.DueAt = &due
	}
	if c.FollowUp && c.DueAt != nil {
		fu := c.DueAt.Unix()
		t.FollowUpAt = &fu
	}
	return t
}

// ClarifyingQuestions lists what a reviewer would need to resolve before the
// candidate becomes a record. The list is never empty.
func ClarifyingQuestions(c detect.Candidate) []string {
	var qs []string

	if c.Kind == detect.KindPerson {
		if c.Role == "" {
			qs = append(qs, fmt.Sprintf("What is %s's role?", c.Text))
		}
		if len(c.Channels) == 0 {
			qs = append(qs, fmt.Sprintf("What is the preferred channel for reaching %s?", c.Text))
		}
		qs = append(qs, fmt.Sprintf("How important is the relationship with %s?", c.Text))
		return qs
	}

	desc := c.Text
	if len(desc) > 60 {
		desc = strings.TrimSpace(desc[:57]) + "..."
	}
	if c.Direction == record.DirectionOutgoing && c.Assignee == "" {
		qs = append(qs, fmt.Sprintf("Who owns %q?", desc))
	}
	if c.DueAt == nil {
		qs = append(qs, fmt.Sprintf("When is %q due?", desc))
	}
	if c.Scores[detect.CategoryPriority] == 0 {
		qs = append(qs, fmt.Sprintf("What priority should %q carry?", desc))
	}
	if len(qs) == 0 {
		qs = append(qs, fmt.Sprintf("Should %q be tracked at all?", desc))
	}
	return qs
}
