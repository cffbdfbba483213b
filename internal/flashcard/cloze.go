package flashcard

import (
	"regexp"
	"strings"
)

var clozeMarkerRe = regexp.MustCompile(`\{\{([^{}:]+)::([^{}]*)\}\}`)

type ClozeMarker struct {
	Label  string
	Answer string
}

// ParseClozeMarkers returns the {{label::answer}} markers in text, in order of
// appearance. Labels are trimmed; a repeated label keeps its first answer.
func ParseClozeMarkers(text string) []ClozeMarker {
	matches := clozeMarkerRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	markers := make([]ClozeMarker, 0, len(matches))
	for _, m := range matches {
		label := strings.TrimSpace(m[1])
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		markers = append(markers, ClozeMarker{Label: label, Answer: m[2]})
	}
	return markers
}

// ClozeAnswers builds the label to answer map from the markers in text.
func ClozeAnswers(text string) map[string]string {
	markers := ParseClozeMarkers(text)
	answers := make(map[string]string, len(markers))
	for _, m := range markers {
		answers[m.Label] = m.Answer
	}
	return answers
}

// MaskCloze replaces every marker with a bracketed label so the prompt can be
// shown without its answers.
func MaskCloze(text string) string {
	return clozeMarkerRe.ReplaceAllStringFunc(text, func(s string) string {
		m := clozeMarkerRe.FindStringSubmatch(s)
		return "[" + strings.TrimSpace(m[1]) + "]"
	})
}
