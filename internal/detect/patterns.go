package detect

// Category labels a group of lexical cues in the pattern library.
type Category string

const (
	CategoryRole       Category = "role"
	CategoryImportance Category = "importance"
	CategoryChannel    Category = "channel"
	CategoryStyle      Category = "style"
	CategoryAction     Category = "action"
	CategoryTimeline   Category = "timeline"
	CategoryPriority   Category = "priority"
	CategorySource     Category = "source"
	CategoryDirection  Category = "direction"
	CategoryClarity    Category = "clarity"
)

// WeightedTerm is a lexical cue with its hand-tuned weight in [0,1].
type WeightedTerm struct {
	Term   string
	Weight float64
}

// PatternSet groups cues of one category. Pure data, no behavior: scoring
// decisions stay in score.go so the catalogs can be tested and revised in
// isolation.
type PatternSet struct {
	Category Category
	Terms    []WeightedTerm
}

// roleTitles lists role cues with weights reflecting how strongly the
// title suggests a relationship worth managing.
var roleTitles = PatternSet{
	Category: CategoryRole,
	Terms: []WeightedTerm{
		{"chief executive", 1.0},
		{"ceo", 1.0},
		{"cto", 1.0},
		{"vp", 0.95},
		{"vice president", 0.95},
		{"director", 0.9},
		{"head of", 0.9},
		{"engineering manager", 0.85},
		{"product manager", 0.8},
		{"program manager", 0.8},
		{"tech lead", 0.8},
		{"team lead", 0.75},
		{"staff engineer", 0.75},
		{"principal engineer", 0.75},
		{"architect", 0.7},
		{"designer", 0.65},
		{"engineer", 0.6},
		{"analyst", 0.6},
		{"recruiter", 0.6},
		{"manager", 0.6},
	},
}

// importanceIndicators are context cues that mark a person as worth
// tracking: budget, decisions, escalations, cross-team reach.
var importanceIndicators = PatternSet{
	Category: CategoryImportance,
	Terms: []WeightedTerm{
		{"budget", 2.0},
		{"headcount", 2.0},
		{"decision maker", 2.0},
		{"sign off", 1.5},
		{"approve", 1.5},
		{"escalat", 1.5},
		{"cross-team", 1.5},
		{"cross team", 1.5},
		{"stakeholder", 1.5},
		{"exec", 1.5},
		{"leadership", 1.0},
		{"reorg", 1.0},
		{"strategy", 1.0},
		{"roadmap", 1.0},
		{"priorit", 1.0},
		{"deadline", 1.0},
		{"hiring", 1.0},
		{"promo", 1.0},
	},
}

// channelKeywords mark a stated interaction-channel preference.
var channelKeywords = PatternSet{
	Category: CategoryChannel,
	Terms: []WeightedTerm{
		{"slack", 1.0},
		{"email", 1.0},
		{"zoom", 1.0},
		{"1:1", 1.0},
		{"one-on-one", 1.0},
		{"dm", 1.0},
		{"call", 1.0},
		{"in person", 1.0},
		{"meeting", 0.5},
	},
}

// styleKeywords mark a stated communication-style preference.
var styleKeywords = PatternSet{
	Category: CategoryStyle,
	Terms: []WeightedTerm{
		{"direct", 1.0},
		{"concise", 1.0},
		{"detailed", 1.0},
		{"data-driven", 1.0},
		{"async", 1.0},
		{"prefers", 0.8},
		{"hates long", 0.8},
	},
}

// actionVerbs qualify a phrase as an action item. A task candidate must
// contain at least one.
var actionVerbs = PatternSet{
	Category: CategoryAction,
	Terms: []WeightedTerm{
		{"review", 1.0},
		{"send", 1.0},
		{"schedule", 1.0},
		{"prepare", 1.0},
		{"write", 1.0},
		{"draft", 1.0},
		{"update", 1.0},
		{"follow up", 1.0},
		{"finish", 1.0},
		{"complete", 1.0},
		{"fix", 1.0},
		{"share", 1.0},
		{"investigate", 1.0},
		{"ship", 1.0},
		{"present", 1.0},
		{"set up", 1.0},
		{"sync", 0.8},
		{"check", 0.8},
		{"confirm", 0.8},
		{"respond", 0.8},
	},
}

// timelineCues mark an explicit deadline or timeframe.
var timelineCues = PatternSet{
	Category: CategoryTimeline,
	Terms: []WeightedTerm{
		{"today", 1.0},
		{"tomorrow", 1.0},
		{"eod", 1.0},
		{"eow", 1.0},
		{"end of week", 1.0},
		{"end of day", 1.0},
		{"next week", 1.0},
		{"this week", 1.0},
		{"by monday", 1.0},
		{"by tuesday", 1.0},
		{"by wednesday", 1.0},
		{"by thursday", 1.0},
		{"by friday", 1.0},
		{"before the", 0.8},
		{"due", 0.8},
	},
}

// priorityWords mark an explicit priority signal.
var priorityWords = PatternSet{
	Category: CategoryPriority,
	Terms: []WeightedTerm{
		{"urgent", 1.0},
		{"asap", 1.0},
		{"critical", 1.0},
		{"blocker", 1.0},
		{"p0", 1.0},
		{"p1", 0.8},
		{"important", 0.8},
		{"high priority", 0.8},
		{"when you get a chance", 0.3},
		{"sometime", 0.3},
		{"eventually", 0.3},
	},
}

// exclusionPhrases reject hedged, non-committal phrasings from the task
// extractor. Questions are rejected separately.
var exclusionPhrases = []string{
	"should we",
	"could we",
	"would we",
	"shall we",
	"can we",
	"we could",
	"we might",
	"maybe we",
	"what if",
	"wondering if",
}

// nameStoplist rejects organizational nouns that pattern-match as proper
// names but never denote a person.
var nameStoplist = map[string]bool{
	"platform": true, "roadmap": true, "sprint": true, "project": true,
	"team": true, "product": true, "engineering": true, "design": true,
	"meeting": true, "review": true, "standup": true, "planning": true,
	"retro": true, "quarterly": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true,
	"sunday": true, "january": true, "february": true, "march": true,
	"april": true, "may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"action": true, "items": true, "next": true, "steps": true,
	"follow": true, "status": true, "update": true, "notes": true,
	"agenda": true, "launch": true, "release": true, "company": true,
	"the": true, "new": true,
}

// strategicMeetingTypes are source meeting types that raise candidate
// relevance for both scorers.
var strategicMeetingTypes = map[string]bool{
	"strategic_planning": true,
	"leadership":         true,
	"exec_review":        true,
	"quarterly_planning": true,
}

// relevantSourceCategories maps source categories to relevance in [0,1].
var relevantSourceCategories = map[string]float64{
	"meeting_prep": 0.8,
	"meeting":      0.7,
	"one_on_one":   0.7,
	"planning":     0.6,
	"journal":      0.4,
}
