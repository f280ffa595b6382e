package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tendhq/tend/internal/record"
)

// Structural name length band in runes.
const (
	minNameChars = 3
	maxNameChars = 50
)

var (
	// Two-token proper-noun sequence: "Sarah Chen".
	properPairRE = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)

	// Honorific form: "Dr. Chen".
	honorificRE = regexp.MustCompile(`(Mr|Ms|Mrs|Dr|Prof)\. ([A-Z][a-z]+)`)

	// Email address; the local part is used for name inference.
	emailRE = regexp.MustCompile(`(?i)([a-z0-9][a-z0-9._%+-]*)@[a-z0-9.-]+\.[a-z]{2,}`)
)

// extractPeople scans normalized text for person candidates. Matches are
// rejected against the organizational-noun stoplist and a structural band
// (internal uppercase, [3,50] runes); failures are simply not produced.
func extractPeople(text string, src SourceContext, window int) []Candidate {
	var out []Candidate

	for _, m := range properPairRE.FindAllString(text, -1) {
		if stoplisted(m) {
			continue
		}
		if c, ok := personCandidate(m, m, text, src, window); ok {
			out = append(out, c)
		}
	}

	for _, m := range honorificRE.FindAllStringSubmatch(text, -1) {
		full, last := m[0], m[2]
		if stoplisted(last) {
			continue
		}
		if c, ok := personCandidate(full, full, text, src, window); ok {
			out = append(out, c)
		}
	}

	for _, m := range emailRE.FindAllStringSubmatch(text, -1) {
		name := nameFromEmailLocal(m[1])
		if name == "" || stoplisted(name) {
			continue
		}
		// Window anchors on the email occurrence, not the inferred name.
		if c, ok := personCandidate(name, m[0], text, src, window); ok {
			out = append(out, c)
		}
	}

	return out
}

// personCandidate applies structural validation and builds the candidate.
func personCandidate(name, anchor, text string, src SourceContext, window int) (Candidate, bool) {
	n := utf8.RuneCountInString(name)
	if n < minNameChars || n > maxNameChars {
		return Candidate{}, false
	}
	if !hasUppercase(name) {
		return Candidate{}, false
	}

	return Candidate{
		Text:    name,
		Key:     record.StableKey(name),
		Kind:    KindPerson,
		Context: contextWindow(text, anchor, window),
		Source:  src,
	}, true
}

// stoplisted reports whether any token of s is a non-name organizational
// noun.
func stoplisted(s string) bool {
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if nameStoplist[tok] {
			return true
		}
	}
	return false
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// nameFromEmailLocal infers a display name from an email local part:
// "sarah.chen" becomes "Sarah Chen". Single short tokens and numeric
// fragments produce nothing.
func nameFromEmailLocal(local string) string {
	parts := strings.FieldsFunc(strings.ToLower(local), func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	var words []string
	for _, p := range parts {
		if len(p) < 2 || !isAlpha(p) {
			continue
		}
		words = append(words, strings.ToUpper(p[:1])+p[1:])
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
