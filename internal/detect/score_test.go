package detect

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/tendhq/tend/internal/record"
)

func personWith(context string, src SourceContext) *Candidate {
	c := &Candidate{
		Text:    "Sarah Chen",
		Key:     "sarahchen",
		Kind:    KindPerson,
		Context: context,
		Source:  src,
	}
	scorePerson(c)
	return c
}

func TestScorePerson_RichContext(t *testing.T) {
	c := personWith(
		"Sarah Chen, engineering manager, owns the budget and will sign off on headcount. Prefers slack.",
		SourceContext{Category: "meeting_prep", MeetingType: "leadership"},
	)

	if c.Confidence < 0.7 {
		t.Errorf("Confidence = %v, want >= 0.7 for a rich context", c.Confidence)
	}
	if c.Role != "Engineering Manager" {
		t.Errorf("Role = %q, want 'Engineering Manager'", c.Role)
	}
	if len(c.Channels) == 0 {
		t.Error("Channels should include the slack preference")
	}
	if c.Scores[CategoryRole] == 0 {
		t.Error("role score missing from the score bag")
	}
}

func TestScorePerson_BareContext(t *testing.T) {
	c := personWith("ran into Sarah Chen at lunch", SourceContext{})
	if c.Confidence >= 0.4 {
		t.Errorf("Confidence = %v, want < 0.4 with no signals", c.Confidence)
	}
}

func TestScorePerson_ScoreBagTracesConfidence(t *testing.T) {
	c := personWith(
		"Sarah Chen the director drives strategy",
		SourceContext{Category: "meeting_prep"},
	)

	sum := personRoleWeight*c.Scores[CategoryRole] +
		personImportanceWeight*c.Scores[CategoryImportance] +
		personCommsWeight*c.Scores[CategoryChannel] +
		personSourceWeight*c.Scores[CategorySource]
	if diff := c.Confidence - sum; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence %v does not trace to score bag sum %v", c.Confidence, sum)
	}
}

func TestScoreTask_DirectionOrdering(t *testing.T) {
	score := func(dir record.Direction, assignee string) float64 {
		c := &Candidate{
			Text:      "review the platform migration plan",
			Kind:      KindTask,
			Direction: dir,
			Assignee:  assignee,
		}
		scoreTask(c)
		return c.Confidence
	}

	outgoing := score(record.DirectionOutgoing, "Sarah")
	unassigned := score(record.DirectionOutgoing, "")
	incoming := score(record.DirectionIncoming, "")
	self := score(record.DirectionSelfAssigned, "")

	if !(outgoing > incoming && incoming > unassigned && unassigned > self) {
		t.Errorf("direction ordering broken: outgoing=%v incoming=%v unassigned=%v self=%v",
			outgoing, incoming, unassigned, self)
	}
}

// Raising importance or role signal strength must never decrease a person
// candidate's confidence.
func TestScorePerson_Monotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.StringMatching(`[a-z ]{0,40}`).Draw(t, "base")

		terms := make([]string, 0, 4)
		for i := 0; i < rapid.IntRange(0, 4).Draw(t, "n"); i++ {
			idx := rapid.IntRange(0, len(importanceIndicators.Terms)-1).Draw(t, "term")
			terms = append(terms, importanceIndicators.Terms[idx].Term)
		}

		weaker := personWith(base+" "+strings.Join(terms, " "), SourceContext{})
		stronger := personWith(base+" "+strings.Join(terms, " ")+" budget decision maker", SourceContext{})

		if stronger.Confidence < weaker.Confidence {
			t.Fatalf("adding importance signals decreased confidence: %v -> %v",
				weaker.Confidence, stronger.Confidence)
		}
	})
}

// The scorer is a pure function: identical candidates always reproduce
// identical scores.
func TestScorePerson_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		context := rapid.StringMatching(`[a-zA-Z :,.]{0,80}`).Draw(t, "context")
		src := SourceContext{
			Category:    rapid.SampledFrom([]string{"", "meeting_prep", "journal", "one_on_one"}).Draw(t, "cat"),
			MeetingType: rapid.SampledFrom([]string{"", "strategic_planning", "standup"}).Draw(t, "mt"),
		}

		a := personWith(context, src)
		b := personWith(context, src)

		if a.Confidence != b.Confidence {
			t.Fatalf("confidence not reproducible: %v vs %v", a.Confidence, b.Confidence)
		}
		for cat, v := range a.Scores {
			if b.Scores[cat] != v {
				t.Fatalf("score bag not reproducible for %s: %v vs %v", cat, v, b.Scores[cat])
			}
		}
	})
}

func TestSourceRelevance(t *testing.T) {
	tests := []struct {
		src  SourceContext
		want float64
	}{
		{SourceContext{MeetingType: "strategic_planning"}, 1.0},
		{SourceContext{Category: "meeting_prep"}, 0.8},
		{SourceContext{Category: "journal"}, 0.4},
		{SourceContext{}, 0.2},
	}
	for _, tt := range tests {
		if got := sourceRelevance(tt.src); got != tt.want {
			t.Errorf("sourceRelevance(%+v) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
