package detect

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tendhq/tend/internal/record"
)

// Task phrase length band in runes.
const (
	minTaskChars = 5
	maxTaskChars = 200
)

var (
	// incoming: the note's author is being asked.
	incomingRE = regexp.MustCompile(`(?i)\byou (?:will|should|need to|must|have to) ([^.!?\n]+)`)

	// outgoing: a named party owes the work. The assignee capture is a
	// one- or two-token proper noun.
	outgoingRE = regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)?) (?:will|should|needs to|is going to) ([^.!?\n]+)`)

	// self-assigned: the author committed themselves.
	selfRE = regexp.MustCompile(`(?i)\bI(?:'ll| will| need to| should| must| have to) ([^.!?\n]+)`)

	inDaysRE = regexp.MustCompile(`in (\d{1,2}) days?`)
)

// pronouns are outgoing-assignee captures that are not names; those
// matches are left for the incoming/self patterns.
var pronouns = map[string]bool{
	"you": true, "i": true, "we": true, "they": true,
	"he": true, "she": true, "it": true, "everyone": true,
	"someone": true, "anybody": true, "nobody": true,
}

// extractTasks scans normalized text for task candidates using the three
// direction-specific phrase patterns.
func extractTasks(text string, src SourceContext, window int, now time.Time) []Candidate {
	var out []Candidate

	for _, m := range outgoingRE.FindAllStringSubmatchIndex(text, -1) {
		full := text[m[0]:m[1]]
		assignee := text[m[2]:m[3]]
		if pronouns[strings.ToLower(assignee)] {
			continue
		}
		if stoplisted(assignee) {
			// Subject is an organizational noun ("The team will ..."):
			// still an outgoing obligation, but with no resolvable
			// assignee it can never reach auto-create.
			assignee = ""
		}
		if c, ok := taskCandidate(full, text, src, window, now, record.DirectionOutgoing, assignee); ok {
			out = append(out, c)
		}
	}

	for _, m := range incomingRE.FindAllStringIndex(text, -1) {
		full := text[m[0]:m[1]]
		if c, ok := taskCandidate(full, text, src, window, now, record.DirectionIncoming, ""); ok {
			out = append(out, c)
		}
	}

	for _, m := range selfRE.FindAllStringIndex(text, -1) {
		full := text[m[0]:m[1]]
		if c, ok := taskCandidate(full, text, src, window, now, record.DirectionSelfAssigned, ""); ok {
			out = append(out, c)
		}
	}

	return out
}

// taskCandidate validates and builds one task candidate. Hedged phrasings,
// questions, phrases outside the length band, and phrases without an
// action-verb cue are rejected.
func taskCandidate(phrase, text string, src SourceContext, window int, now time.Time, dir record.Direction, assignee string) (Candidate, bool) {
	phrase = strings.TrimRight(strings.TrimSpace(phrase), ",;: ")
	lower := strings.ToLower(phrase)

	n := utf8.RuneCountInString(phrase)
	if n < minTaskChars || n > maxTaskChars {
		return Candidate{}, false
	}
	if isQuestion(phrase, text) {
		return Candidate{}, false
	}
	for _, excl := range exclusionPhrases {
		if strings.Contains(lower, excl) {
			return Candidate{}, false
		}
	}
	if !containsAnyTerm(lower, actionVerbs) {
		return Candidate{}, false
	}

	return Candidate{
		Text:      phrase,
		Key:       record.StableKey(phrase),
		Kind:      KindTask,
		Context:   contextWindow(text, phrase, window),
		Source:    src,
		Direction: dir,
		Assignee:  assignee,
		Priority:  resolvePriority(lower),
		DueAt:     resolveDueDate(lower, now),
		FollowUp:  strings.Contains(lower, "follow up") || strings.Contains(lower, "circle back"),
	}, true
}

// isQuestion reports whether the phrase is immediately followed by a
// question mark in the source text. The phrase patterns stop before
// sentence punctuation, so the terminator has to be looked up.
func isQuestion(phrase, text string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		end := idx + len(phrase)
		if end < len(text) && text[end] == '?' {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return false
}

func containsAnyTerm(lower string, set PatternSet) bool {
	for _, t := range set.Terms {
		if strings.Contains(lower, t.Term) {
			return true
		}
	}
	return false
}

// resolvePriority maps explicit priority words to a level. Strong words
// (weight 1.0) mean critical, moderate (0.8) high, soft deferrals (0.3)
// low; no signal defaults to medium.
func resolvePriority(lower string) record.Priority {
	best := 0.0
	for _, t := range priorityWords.Terms {
		if strings.Contains(lower, t.Term) && t.Weight > best {
			best = t.Weight
		}
	}
	switch {
	case best >= 1.0:
		return record.PriorityCritical
	case best >= 0.8:
		return record.PriorityHigh
	case best > 0:
		return record.PriorityLow
	default:
		return record.PriorityMedium
	}
}

// weekdays is ordered so phrases naming several days resolve the same way
// every scan.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday}, {"tuesday", time.Tuesday}, {"wednesday", time.Wednesday},
	{"thursday", time.Thursday}, {"friday", time.Friday}, {"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// resolveDueDate resolves timeline phrases against a reference time. The
// reference is injected so detection stays reproducible under test.
func resolveDueDate(lower string, ref time.Time) *time.Time {
	day := func(t time.Time) *time.Time {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return &d
	}

	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "eod"), strings.Contains(lower, "end of day"):
		return day(ref)
	case strings.Contains(lower, "tomorrow"):
		return day(ref.AddDate(0, 0, 1))
	case strings.Contains(lower, "next week"):
		return day(ref.AddDate(0, 0, 7))
	case strings.Contains(lower, "eow"), strings.Contains(lower, "end of week"), strings.Contains(lower, "this week"):
		delta := (int(time.Friday) - int(ref.Weekday()) + 7) % 7
		return day(ref.AddDate(0, 0, delta))
	}

	if m := inDaysRE.FindStringSubmatch(lower); m != nil {
		n := 0
		for _, r := range m[1] {
			n = n*10 + int(r-'0')
		}
		return day(ref.AddDate(0, 0, n))
	}

	for _, w := range weekdays {
		if strings.Contains(lower, w.name) {
			// Upcoming occurrence; a bare weekday on that same weekday
			// means next week.
			delta := (int(w.day) - int(ref.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			d := day(ref.AddDate(0, 0, delta))
			return d
		}
	}

	return nil
}
