package detect

import (
	"strings"
	"unicode/utf8"
)

// Scoring weights. Each term is normalized to [0,1] before weighting, so
// the weighted sum stays in [0,1] and every factor's contribution is
// readable from the candidate's score bag.
const (
	personRoleWeight       = 0.40
	personImportanceWeight = 0.30
	personCommsWeight      = 0.20
	personSourceWeight     = 0.10

	taskClarityWeight   = 0.40
	taskDirectionWeight = 0.25
	taskSourceWeight    = 0.20
	taskSignalWeight    = 0.15

	// importanceCeiling caps the indicator-density sum; ten points of
	// indicators saturate the term.
	importanceCeiling = 10.0
)

// scorePerson computes a person candidate's confidence from its context.
// Pure function of (candidate, source context): identical inputs always
// reproduce identical scores.
func scorePerson(c *Candidate) {
	lower := strings.ToLower(c.Context)

	roleScore, roleTerm := bestTerm(lower, roleTitles)
	density := termDensity(lower, importanceIndicators)
	importanceScore := min(density/importanceCeiling, 1.0)

	channels := matchedTerms(lower, channelKeywords)
	_, styleTerm := bestTerm(lower, styleKeywords)
	commsScore := 0.0
	if len(channels) > 0 || styleTerm != "" {
		commsScore = 1.0
	}

	sourceScore := sourceRelevance(c.Source)

	c.Role = titleCase(roleTerm)
	c.Channels = channels
	c.Style = styleTerm
	c.Scores = map[Category]float64{
		CategoryRole:       roleScore,
		CategoryImportance: importanceScore,
		CategoryChannel:    commsScore,
		CategorySource:     sourceScore,
	}
	c.Confidence = clamp(personRoleWeight*roleScore +
		personImportanceWeight*importanceScore +
		personCommsWeight*commsScore +
		personSourceWeight*sourceScore)
}

// scoreTask computes a task candidate's confidence. Same purity contract
// as scorePerson.
func scoreTask(c *Candidate) {
	lower := strings.ToLower(c.Text)

	clarity := 0.6*lengthBonus(c.Text) + 0.4*verbSignal(lower)
	direction := directionClarity(c)
	sourceScore := sourceRelevance(c.Source)

	signals := 0.0
	if containsAnyTerm(lower, priorityWords) {
		signals += 0.5
	}
	if containsAnyTerm(lower, timelineCues) || c.DueAt != nil {
		signals += 0.5
	}

	c.Scores = map[Category]float64{
		CategoryClarity:   clarity,
		CategoryDirection: direction,
		CategorySource:    sourceScore,
		CategoryPriority:  signals,
	}
	c.Confidence = clamp(taskClarityWeight*clarity +
		taskDirectionWeight*direction +
		taskSourceWeight*sourceScore +
		taskSignalWeight*signals)
}

// lengthBonus rewards phrases long enough to be actionable and short
// enough to be one commitment. The extractor already enforced the outer
// [5,200] band.
func lengthBonus(phrase string) float64 {
	n := utf8.RuneCountInString(phrase)
	if n >= 20 && n <= 120 {
		return 1.0
	}
	return 0.6
}

// verbSignal scales with action-verb density: one cue qualifies the
// phrase, a second confirms it.
func verbSignal(lower string) float64 {
	count := 0
	for _, t := range actionVerbs.Terms {
		if strings.Contains(lower, t.Term) {
			count++
		}
	}
	if count >= 2 {
		return 1.0
	}
	if count == 1 {
		return 0.7
	}
	return 0
}

// directionClarity ranks how unambiguous the obligation is. Outgoing with
// a resolved assignee is clearest; self-assigned commitments are the
// weakest signal.
func directionClarity(c *Candidate) float64 {
	switch c.Direction {
	case "outgoing":
		if c.Assignee != "" {
			return 1.0
		}
		return 0.5
	case "incoming":
		return 0.8
	default:
		return 0.4
	}
}

// sourceRelevance maps the source context to [0,1]. Strategic meeting
// types dominate; otherwise the category table applies with a floor for
// unknown sources.
func sourceRelevance(src SourceContext) float64 {
	if strategicMeetingTypes[src.MeetingType] {
		return 1.0
	}
	if v, ok := relevantSourceCategories[src.Category]; ok {
		return v
	}
	return 0.2
}

// bestTerm returns the highest-weight matching term and its weight.
func bestTerm(lower string, set PatternSet) (float64, string) {
	best, term := 0.0, ""
	for _, t := range set.Terms {
		if strings.Contains(lower, t.Term) && t.Weight > best {
			best = t.Weight
			term = t.Term
		}
	}
	return best, term
}

// termDensity sums the weights of every matching term, each counted once.
func termDensity(lower string, set PatternSet) float64 {
	sum := 0.0
	for _, t := range set.Terms {
		if strings.Contains(lower, t.Term) {
			sum += t.Weight
		}
	}
	return sum
}

// matchedTerms returns every matching term, in catalog order.
func matchedTerms(lower string, set PatternSet) []string {
	var out []string
	for _, t := range set.Terms {
		if strings.Contains(lower, t.Term) {
			out = append(out, t.Term)
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
