package triage

import (
	"strings"

	"github.com/ternarybob/sanitas/internal/models"
)

const urgencyMarker = "URGENCY:"

// Classify extracts the urgency level from a model response. It first
// looks for the "URGENCY:" marker the prompt asks for and reads the
// level that follows it; if the marker is absent or unreadable, it
// falls back to scanning the whole text for the first urgency token.
// When the marker or a token appears more than once, the first
// occurrence wins. A response carrying no recognizable level
// classifies as MEDIUM with Defaulted=true, which is distinguishable
// from a genuine MEDIUM.
func Classify(answer string) models.Classification {
	upper := strings.ToUpper(answer)

	if idx := strings.Index(upper, urgencyMarker); idx >= 0 {
		tail := upper[idx+len(urgencyMarker):]
		if level, ok := firstToken(tail); ok {
			return models.Classification{Level: level}
		}
	}

	if level, ok := firstToken(upper); ok {
		return models.Classification{Level: level}
	}

	return models.Classification{Level: models.UrgencyMedium, Defaulted: true}
}

// firstToken returns the first urgency level appearing as a whole word
// in the uppercased text. Matching whole words only keeps "FOLLOW"
// from reading as LOW.
func firstToken(upper string) (models.Urgency, bool) {
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !('A' <= r && r <= 'Z')
	})
	for _, word := range words {
		if level := models.Urgency(word); level.Valid() {
			return level, true
		}
	}
	return "", false
}
