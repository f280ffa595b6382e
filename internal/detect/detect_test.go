package detect

import (
	"reflect"
	"testing"
	"time"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/record"
)

func newTestDetector() *Detector {
	d := New(config.DefaultConfig())
	d.Now = func() time.Time { return ref } // Monday 2026-03-02
	return d
}

// An outgoing task with an assignee and a resolvable deadline, detected
// from strategic meeting prep.
func TestDetect_OutgoingTaskScenario(t *testing.T) {
	d := newTestDetector()
	src := SourceContext{Category: "meeting_prep", MeetingType: "strategic_planning"}

	cands := d.Detect("Sarah will review the platform roadmap by Friday", src)

	var tasks []Candidate
	for _, c := range cands {
		if c.Kind == KindTask {
			tasks = append(tasks, c)
		}
	}
	if len(tasks) != 1 {
		t.Fatalf("task candidates = %d, want 1", len(tasks))
	}

	c := tasks[0]
	if c.Direction != record.DirectionOutgoing {
		t.Errorf("Direction = %q, want outgoing", c.Direction)
	}
	if c.Assignee != "Sarah" {
		t.Errorf("Assignee = %q, want 'Sarah'", c.Assignee)
	}
	if c.Priority != record.PriorityMedium {
		t.Errorf("Priority = %q, want medium", c.Priority)
	}
	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if c.DueAt == nil || !c.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want upcoming Friday %v", c.DueAt, want)
	}
	if c.Confidence < 0.6 {
		t.Errorf("Confidence = %v, want >= 0.6", c.Confidence)
	}
}

func TestDetect_ShortTextProducesNothing(t *testing.T) {
	d := newTestDetector()
	if cands := d.Detect("hi", SourceContext{}); cands != nil {
		t.Errorf("Detect on short text = %v, want nil", cands)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := newTestDetector()
	text := `# 1:1 prep

Sarah Chen (engineering manager) owns the platform budget.
- Sarah will review the roadmap by Friday
- I need to follow up on the hiring plan
- you should send Marcus Webb the escalation summary`
	src := SourceContext{Category: "meeting_prep"}

	a := d.Detect(text, src)
	b := d.Detect(text, src)

	if !reflect.DeepEqual(a, b) {
		t.Error("identical (text, source) produced different candidate sets")
	}
	if len(a) == 0 {
		t.Fatal("expected candidates from a signal-rich note")
	}
}

func TestDetect_MergesNearDuplicates(t *testing.T) {
	d := newTestDetector()
	// The same commitment stated twice; word overlap is >= 0.8 so only
	// one candidate may be scored.
	text := "Sarah will review the migration plan\nLater: Sarah will review the migration plan again"

	cands := d.Detect(text, SourceContext{})

	tasks := 0
	for _, c := range cands {
		if c.Kind == KindTask {
			tasks++
		}
	}
	if tasks != 1 {
		t.Errorf("task candidates = %d, want 1 after dedupe", tasks)
	}
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"review the plan", "review the plan", 1.0},
		{"review the plan", "review the plan carefully", 1.0},
		{"review the plan", "ship the feature", 1.0 / 3.0},
		{"", "anything", 0},
	}
	for _, tt := range tests {
		if got := wordOverlap(tt.a, tt.b); got != tt.want {
			t.Errorf("wordOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDedupe_KeepsLongerText(t *testing.T) {
	cands := []Candidate{
		{Text: "review the plan", Key: record.StableKey("review the plan"), Kind: KindTask},
		{Text: "review the plan by Friday", Key: record.StableKey("review the plan by Friday"), Kind: KindTask},
	}
	got := dedupe(cands, 0.8)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Text != "review the plan by Friday" {
		t.Errorf("kept %q, want the longer candidate", got[0].Text)
	}
}
