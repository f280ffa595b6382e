package detect

import (
	"testing"
	"time"

	"github.com/tendhq/tend/internal/record"
)

// ref is a fixed reference time for due-date resolution: Monday 2026-03-02.
var ref = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestExtractTasks_Outgoing(t *testing.T) {
	cands := extractTasks("Sarah will review the platform roadmap by Friday", SourceContext{}, 150, ref)

	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	c := cands[0]
	if c.Direction != record.DirectionOutgoing {
		t.Errorf("Direction = %q, want outgoing", c.Direction)
	}
	if c.Assignee != "Sarah" {
		t.Errorf("Assignee = %q, want 'Sarah'", c.Assignee)
	}
	if c.Priority != record.PriorityMedium {
		t.Errorf("Priority = %q, want medium (no explicit signal)", c.Priority)
	}
	if c.DueAt == nil {
		t.Fatal("DueAt = nil, want upcoming Friday")
	}
	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !c.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", c.DueAt, want)
	}
}

func TestExtractTasks_Incoming(t *testing.T) {
	cands := extractTasks("you need to send the budget summary tomorrow", SourceContext{}, 150, ref)

	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	if cands[0].Direction != record.DirectionIncoming {
		t.Errorf("Direction = %q, want incoming", cands[0].Direction)
	}
	want := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if cands[0].DueAt == nil || !cands[0].DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", cands[0].DueAt, want)
	}
}

func TestExtractTasks_SelfAssigned(t *testing.T) {
	cands := extractTasks("I'll draft the incident writeup next week", SourceContext{}, 150, ref)

	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	if cands[0].Direction != record.DirectionSelfAssigned {
		t.Errorf("Direction = %q, want self_assigned", cands[0].Direction)
	}
}

func TestExtractTasks_YouIsNotAnAssignee(t *testing.T) {
	cands := extractTasks("You will review the deck", SourceContext{}, 150, ref)

	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	if cands[0].Direction != record.DirectionIncoming {
		t.Errorf("Direction = %q, want incoming (pronoun subject)", cands[0].Direction)
	}
}

func TestExtractTasks_OrgNounSubjectHasNoAssignee(t *testing.T) {
	cands := extractTasks("The team will review the launch checklist", SourceContext{}, 150, ref)

	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	if cands[0].Direction != record.DirectionOutgoing {
		t.Errorf("Direction = %q, want outgoing", cands[0].Direction)
	}
	if cands[0].Assignee != "" {
		t.Errorf("Assignee = %q, want empty for organizational subject", cands[0].Assignee)
	}
}

func TestExtractTasks_RejectsHedging(t *testing.T) {
	texts := []string{
		"should we review the design doc",
		"maybe we should schedule a sync",
		"you should check whether maybe we could revisit this",
	}
	for _, text := range texts {
		if cands := extractTasks(text, SourceContext{}, 150, ref); len(cands) != 0 {
			t.Errorf("extractTasks(%q) = %v, want none (hedged)", text, cands)
		}
	}
}

func TestExtractTasks_RejectsQuestions(t *testing.T) {
	if cands := extractTasks("Sarah will review the doc?", SourceContext{}, 150, ref); len(cands) != 0 {
		t.Errorf("question should be rejected, got %v", cands)
	}
}

func TestExtractTasks_RequiresActionVerb(t *testing.T) {
	if cands := extractTasks("Sarah will be happy about the outcome", SourceContext{}, 150, ref); len(cands) != 0 {
		t.Errorf("phrase without action verb should be rejected, got %v", cands)
	}
}

func TestExtractTasks_PriorityFromSignalWords(t *testing.T) {
	tests := []struct {
		text string
		want record.Priority
	}{
		{"Sarah will fix the outage asap", record.PriorityCritical},
		{"you should review the p1 incident report", record.PriorityHigh},
		{"I'll update the wiki when you get a chance", record.PriorityLow},
	}
	for _, tt := range tests {
		cands := extractTasks(tt.text, SourceContext{}, 150, ref)
		if len(cands) != 1 {
			t.Fatalf("extractTasks(%q): len = %d, want 1", tt.text, len(cands))
		}
		if cands[0].Priority != tt.want {
			t.Errorf("Priority(%q) = %q, want %q", tt.text, cands[0].Priority, tt.want)
		}
	}
}

func TestResolveDueDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		phrase string
		want   *time.Time
	}{
		{"finish it today", ptr(day(2026, 3, 2))},
		{"send by eod", ptr(day(2026, 3, 2))},
		{"review tomorrow", ptr(day(2026, 3, 3))},
		{"draft it by monday", ptr(day(2026, 3, 9))}, // ref is Monday: next week
		{"ship by end of week", ptr(day(2026, 3, 6))},
		{"follow up next week", ptr(day(2026, 3, 9))},
		{"review in 3 days", ptr(day(2026, 3, 5))},
		{"no deadline here", nil},
	}
	for _, tt := range tests {
		got := resolveDueDate(tt.phrase, ref)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("resolveDueDate(%q) = %v, want nil", tt.phrase, got)
		case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
			t.Errorf("resolveDueDate(%q) = %v, want %v", tt.phrase, got, tt.want)
		}
	}
}

func TestExtractTasks_FollowUpFlag(t *testing.T) {
	cands := extractTasks("I need to follow up with the vendor on Thursday", SourceContext{}, 150, ref)
	if len(cands) != 1 {
		t.Fatalf("len(cands) = %d, want 1", len(cands))
	}
	if !cands[0].FollowUp {
		t.Error("FollowUp = false, want true")
	}
}

func ptr[T any](v T) *T { return &v }
