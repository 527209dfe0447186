package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/sanitas/internal/models"
)

func TestClassifyMarkerLine(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		level  models.Urgency
	}{
		{"high", "Give paracetamol and refer immediately.\nURGENCY: HIGH", models.UrgencyHigh},
		{"medium", "Monitor temperature twice daily.\nURGENCY: MEDIUM", models.UrgencyMedium},
		{"low", "Rest and fluids are sufficient.\nURGENCY: LOW", models.UrgencyLow},
		{"lowercase marker", "Rest and fluids.\nurgency: low", models.UrgencyLow},
		{"marker with trailing prose", "Advice here.\nURGENCY: HIGH. Seek care now.", models.UrgencyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.answer)
			assert.Equal(t, tt.level, c.Level)
			assert.False(t, c.Defaulted)
		})
	}
}

func TestClassifyFallsBackToBodyScan(t *testing.T) {
	c := Classify("This is a HIGH priority case, refer to the district hospital today.")
	assert.Equal(t, models.UrgencyHigh, c.Level)
	assert.False(t, c.Defaulted)
}

func TestClassifyFirstTokenWins(t *testing.T) {
	c := Classify("Urgency is LOW, though it could become HIGH if fever persists.")
	assert.Equal(t, models.UrgencyLow, c.Level)
	assert.False(t, c.Defaulted)
}

func TestClassifyFirstMarkerWins(t *testing.T) {
	c := Classify("URGENCY: HIGH\nRevised after review.\nURGENCY: LOW")
	assert.Equal(t, models.UrgencyHigh, c.Level)
	assert.False(t, c.Defaulted)
}

func TestClassifyWholeWordsOnly(t *testing.T) {
	// "FOLLOW" must not read as LOW
	c := Classify("Follow up in two days.")
	assert.Equal(t, models.UrgencyMedium, c.Level)
	assert.True(t, c.Defaulted)
}

func TestClassifyDefaultsToMedium(t *testing.T) {
	c := Classify("Drink fluids and rest.")
	assert.Equal(t, models.UrgencyMedium, c.Level)
	assert.True(t, c.Defaulted)
}

func TestClassifyDefaultedDistinguishableFromGenuineMedium(t *testing.T) {
	genuine := Classify("URGENCY: MEDIUM")
	defaulted := Classify("No level stated here.")

	assert.Equal(t, genuine.Level, defaulted.Level)
	assert.False(t, genuine.Defaulted)
	assert.True(t, defaulted.Defaulted)
}

func TestClassifyEmptyAnswer(t *testing.T) {
	c := Classify("")
	assert.Equal(t, models.UrgencyMedium, c.Level)
	assert.True(t, c.Defaulted)
}
