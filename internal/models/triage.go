package models

import (
	"fmt"
	"time"
)

// Urgency is the referral urgency level derived from generated guidance.
// It is a closed enumeration; every pipeline run produces exactly one value.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Valid reports whether u is one of the three defined levels
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// ParseUrgency converts a string to an Urgency, rejecting unknown values
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown urgency level: %q", s)
	}
	return u, nil
}

// Classification is the result of parsing an LLM answer for an urgency level.
// Defaulted is true when no level token was found and the conservative
// MEDIUM default was applied; a genuine MEDIUM has Defaulted == false.
type Classification struct {
	Level     Urgency `json:"level"`
	Defaulted bool    `json:"defaulted"`
}

// RetrievedChunk pairs a chunk with its similarity score
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"` // cosine similarity in [-1, 1]
}

// RetrievalResult is an ordered sequence of retrieved chunks, descending
// by score. Grounded is false when nothing cleared the similarity floor
// (or the index was empty) and the pipeline must use the ungrounded path.
type RetrievalResult struct {
	Chunks   []RetrievedChunk `json:"chunks"`
	Grounded bool             `json:"grounded"`
}

// PipelineResult is the outcome of one diagnose run. Created once per
// query and not mutated afterwards.
type PipelineResult struct {
	Symptoms       string         `json:"symptoms"`
	Answer         string         `json:"answer"`
	Classification Classification `json:"classification"`
	ContextChunks  []string       `json:"context_chunks"` // chunk IDs used as grounding, for auditability
	Grounded       bool           `json:"grounded"`
	Duration       time.Duration  `json:"duration"`
}

// QueryRecord is the append-only log entry persisted per diagnose call.
// Write failures are logged, never fatal to the request.
type QueryRecord struct {
	ID            string    `json:"id" badgerhold:"key"` // qry_<uuid>
	Symptoms      string    `json:"symptoms"`
	Answer        string    `json:"answer"`
	Urgency       Urgency   `json:"urgency"`
	Defaulted     bool      `json:"defaulted"`
	ContextChunks []string  `json:"context_chunks"`
	CreatedAt     time.Time `json:"created_at"`
}
