package ops

// End-to-end pass through the full pipeline: scan a note, confirm the
// created records, generate recommendations, record an interaction, and
// watch the pending set get superseded.

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendhq/tend/internal/record"
)

func TestWorkflow_NoteToRecommendationToSupersession(t *testing.T) {
	store, cfg := setupTest(t)
	ctx := context.Background()

	// 1. Triage a meeting note. Sarah Chen and her roadmap task both
	// carry enough signal to auto-create.
	triaged, err := Triage(ctx, store, cfg, TriageInput{
		Text:        richNote,
		File:        "notes/2026-03-02-sarah.md",
		Category:    "one_on_one",
		MeetingType: "leadership",
	})
	require.NoError(t, err)
	require.Zero(t, triaged.Failed)

	p, err := store.GetPerson(ctx, "sarahchen")
	require.NoError(t, err)
	require.NotNil(t, p.Role)

	tasks, err := ListTasks(ctx, store, cfg, ListTasksInput{Status: "active"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, tasks.Count, 1)
	task := tasks.Tasks[0]
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "Sarah", *task.Assignee)
	assert.Equal(t, record.DirectionOutgoing, task.Direction)

	// 2. With no interaction history, generation proposes initial contact.
	gen, err := GenerateRecommendations(ctx, store, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(gen.Recommendations), 1)
	assert.Equal(t, record.RecInitialContact, gen.Recommendations[0].Type)

	// 3. Recording an interaction supersedes the pending set.
	rec, err := RecordInteraction(ctx, store, cfg, RecordInteractionInput{
		PersonKey:  "sarahchen",
		Type:       "meeting",
		Quality:    4,
		Topics:     []string{"roadmap"},
		OccurredAt: time.Now().Unix(),
	})
	require.NoError(t, err)
	assert.Equal(t, len(gen.Recommendations), rec.SupersededCount)

	pending, err := ListRecommendations(ctx, store, cfg, ListRecommendationsInput{Status: "pending"})
	require.NoError(t, err)
	assert.Zero(t, pending.Count)

	// 4. A fresh generation pass finds the relationship within cadence.
	gen2, err := GenerateRecommendations(ctx, store, cfg)
	require.NoError(t, err)
	for _, r := range gen2.Recommendations {
		assert.NotEqual(t, record.RecInitialContact, r.Type,
			"initial contact must not reappear after an interaction")
	}
}
