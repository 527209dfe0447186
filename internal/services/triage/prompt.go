// -----------------------------------------------------------------------
// Triage Prompts - deterministic prompt composition for the triage LLM
// -----------------------------------------------------------------------

package triage

import (
	"fmt"
	"strings"

	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

const systemPrompt = `You are a medical triage assistant for rural healthcare workers.
Your role is to assess reported symptoms and give practical first-line guidance.

Rules:
- Base your answer on the provided guideline excerpts when they are present.
- If no guideline excerpts are provided, say so and give only general advice.
- Keep the answer short and actionable for a non-specialist health worker.
- End your answer with a single line of the exact form "URGENCY: LOW", "URGENCY: MEDIUM", or "URGENCY: HIGH".
- You are not a doctor. Always advise consulting a qualified medical professional for diagnosis and treatment.`

// ComposePrompt builds the message sequence for the triage model.
// Identical symptoms and identical retrieved chunks produce an
// identical prompt. Retrieved chunk text is included verbatim, in
// retrieval order.
func ComposePrompt(symptoms string, retrieval *models.RetrievalResult) []interfaces.Message {
	var user strings.Builder

	if retrieval != nil && retrieval.Grounded {
		user.WriteString("Relevant guideline excerpts:\n\n")
		for i, retrieved := range retrieval.Chunks {
			fmt.Fprintf(&user, "[%d] (source: %s)\n%s\n\n", i+1, retrieved.Chunk.Source, retrieved.Chunk.Text)
		}
	} else {
		user.WriteString("No matching guideline excerpts were found for these symptoms. State that your advice is general and not based on the local guidelines.\n\n")
	}

	fmt.Fprintf(&user, "Reported symptoms: %s\n\nAssess the symptoms and respond per the rules.", symptoms)

	return []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user.String()},
	}
}
