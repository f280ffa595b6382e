package detect

import (
	"strings"
	"time"

	"github.com/tendhq/tend/internal/record"
)

// Kind distinguishes the two candidate variants.
type Kind string

const (
	KindPerson Kind = "person"
	KindTask   Kind = "task"
)

// SourceContext describes where the scanned text came from. It feeds the
// source-relevance term of both scorers.
type SourceContext struct {
	// File is the originating document, if any
	File string `json:"file,omitempty"`

	// Category is the situational category (meeting_prep, one_on_one,
	// planning, journal, ...)
	Category string `json:"category,omitempty"`

	// MeetingType refines meeting sources (strategic_planning,
	// leadership, standup, ...)
	MeetingType string `json:"meeting_type,omitempty"`
}

// Candidate is an unconfirmed entity extracted from one text scan. It is
// ephemeral: only its disposition is persisted.
type Candidate struct {
	// Text is the candidate's display text: a name or an action phrase
	Text string `json:"text"`

	// Key is the stable key derived from Text
	Key string `json:"key"`

	Kind Kind `json:"kind"`

	// Scores holds the normalized [0,1] per-category contributions so
	// every confidence value traces back to the rules that produced it
	Scores map[Category]float64 `json:"scores,omitempty"`

	// Context is the concatenated text windows around every occurrence
	Context string `json:"context,omitempty"`

	// Confidence is the final weighted score in [0,1]
	Confidence float64 `json:"confidence"`

	Source SourceContext `json:"source"`

	// Person signals observed in context (person candidates only)
	Role     string   `json:"role,omitempty"`
	Channels []string `json:"channels,omitempty"`
	Style    string   `json:"style,omitempty"`

	// Task fields (task candidates only)
	Direction record.Direction `json:"direction,omitempty"`
	Assignee  string           `json:"assignee,omitempty"`
	Priority  record.Priority  `json:"priority,omitempty"`
	DueAt     *time.Time       `json:"due_at,omitempty"`
	FollowUp  bool             `json:"follow_up,omitempty"`
}

// contextWindow locates every occurrence of anchor in text and concatenates
// a ±radius rune window around each, joined by " ... ".
func contextWindow(text, anchor string, radius int) string {
	if anchor == "" {
		return ""
	}
	runes := []rune(text)
	var windows []string

	offset := 0
	for {
		idx := strings.Index(text[offset:], anchor)
		if idx < 0 {
			break
		}
		byteStart := offset + idx
		runeStart := len([]rune(text[:byteStart]))
		runeEnd := runeStart + len([]rune(anchor))

		lo := max(runeStart-radius, 0)
		hi := min(runeEnd+radius, len(runes))
		windows = append(windows, string(runes[lo:hi]))

		offset = byteStart + len(anchor)
	}

	return strings.Join(windows, " ... ")
}

// wordOverlap returns the fraction of the smaller candidate's words also
// present in the other, in [0,1]. Comparison is case-insensitive with
// punctuation trimmed per token.
func wordOverlap(a, b string) float64 {
	wa := tokenSet(a)
	wb := tokenSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	small, large := wa, wb
	if len(wb) < len(wa) {
		small, large = wb, wa
	}

	shared := 0
	for w := range small {
		if large[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// dedupe merges near-duplicate candidates of the same kind before scoring
// so no phrase is scored twice. When two candidates overlap at or above
// the threshold, the longer (more specific) text wins; ties keep the
// earlier one, so the result is deterministic.
func dedupe(cands []Candidate, threshold float64) []Candidate {
	var kept []Candidate
	for _, c := range cands {
		merged := false
		for i := range kept {
			if kept[i].Kind != c.Kind {
				continue
			}
			if kept[i].Key == c.Key || wordOverlap(kept[i].Text, c.Text) >= threshold {
				if len(c.Text) > len(kept[i].Text) {
					kept[i] = c
				}
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, c)
		}
	}
	return kept
}
