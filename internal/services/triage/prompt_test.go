package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sanitas/internal/models"
)

func sampleRetrieval() *models.RetrievalResult {
	return &models.RetrievalResult{
		Grounded: true,
		Chunks: []models.RetrievedChunk{
			{Chunk: models.Chunk{ID: "doc_1:0", Source: "fever.pdf", Text: "Fever above 39C in infants requires same-day referral."}, Score: 0.91},
			{Chunk: models.Chunk{ID: "doc_1:1", Source: "fever.pdf", Text: "Paracetamol dosing is weight-based."}, Score: 0.74},
		},
	}
}

func TestComposePromptGrounded(t *testing.T) {
	messages := ComposePrompt("fever for 4 days", sampleRetrieval())

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)

	// Retrieved chunk text appears verbatim, in retrieval order
	user := messages[1].Content
	first := "Fever above 39C in infants requires same-day referral."
	second := "Paracetamol dosing is weight-based."
	assert.Contains(t, user, first)
	assert.Contains(t, user, second)
	assert.Less(t, strings.Index(user, first), strings.Index(user, second))

	assert.Contains(t, user, "fever for 4 days")
	assert.Contains(t, messages[0].Content, "URGENCY:")
	assert.Contains(t, messages[0].Content, "not a doctor")
}

func TestComposePromptUngrounded(t *testing.T) {
	for _, retrieval := range []*models.RetrievalResult{
		nil,
		{Grounded: false},
	} {
		messages := ComposePrompt("mild headache", retrieval)

		require.Len(t, messages, 2)
		user := messages[1].Content
		assert.Contains(t, user, "No matching guideline excerpts")
		assert.Contains(t, user, "mild headache")
		assert.NotContains(t, user, "Relevant guideline excerpts")
	}
}

func TestComposePromptDeterministic(t *testing.T) {
	a := ComposePrompt("fever for 4 days", sampleRetrieval())
	b := ComposePrompt("fever for 4 days", sampleRetrieval())

	assert.Equal(t, a, b)
}
