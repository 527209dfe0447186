package models

import "time"

// Document represents a single ingested guideline source file.
// Documents are immutable once ingested; re-ingesting the same source
// replaces the prior document and its chunks.
type Document struct {
	ID         string    `json:"id"`     // doc_<uuid>
	Source     string    `json:"source"` // source file path, the replace-by identifier
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a bounded span of text from one document, the unit of
// embedding and retrieval. StartOffset/EndOffset are byte offsets into
// the document text for traceability.
type Chunk struct {
	ID          string `json:"id"` // <doc_id>:<seq>
	DocumentID  string `json:"document_id"`
	Source      string `json:"source"`
	Seq         int    `json:"seq"` // sequence index within the document
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// IngestFailure records a source file that could not be ingested.
// Failures are non-fatal; ingestion of the remaining files continues.
type IngestFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// IngestResult summarizes a full ingestion pass over the guidelines directory
type IngestResult struct {
	Documents []*Document     `json:"documents"`
	Chunks    []Chunk         `json:"chunks"`
	Failures  []IngestFailure `json:"failures"`
	Duration  time.Duration   `json:"duration"`
}
