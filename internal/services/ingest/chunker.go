package ingest

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/sanitas/internal/models"
)

// Chunker splits document text into bounded, overlapping chunks.
// Chunks are exact substrings of the document text: chunk i covers
// [StartOffset, EndOffset) and consecutive chunks from the same document
// overlap so a concept split across a boundary is still retrievable
// from at least one chunk.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// NewChunker creates a chunker. maxChars bounds chunk length in bytes,
// overlapChars is the target overlap between consecutive chunks.
func NewChunker(maxChars, overlapChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = 800
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 4
	}
	return &Chunker{
		maxChars:     maxChars,
		overlapChars: overlapChars,
	}
}

// Chunk splits text into chunks owned by the document docID. Split
// points prefer paragraph and sentence boundaries, falling back to a
// fixed-size window when no boundary is in range.
func (c *Chunker) Chunk(docID, source, text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	seq := 0

	for start < len(text) {
		end := start + c.maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.splitPoint(text, start, end)
		}

		chunks = append(chunks, models.Chunk{
			ID:          chunkID(docID, seq),
			DocumentID:  docID,
			Source:      source,
			Seq:         seq,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})
		seq++

		if end == len(text) {
			break
		}

		next := end - c.overlapChars
		// Overlap must not stall progress on short chunks
		if next <= start {
			next = end
		}
		// Never start mid-rune
		for next > 0 && next < len(text) && !utf8.RuneStart(text[next]) {
			next--
		}
		start = next
	}

	return chunks
}

// splitPoint finds the best break position in (start, limit]. Paragraph
// breaks beat sentence ends; either must land in the second half of the
// window to avoid degenerate tiny chunks.
func (c *Chunker) splitPoint(text string, start, limit int) int {
	// Back off a mid-rune limit first
	for limit > start && !utf8.RuneStart(text[limit]) {
		limit--
	}

	window := text[start:limit]
	floor := len(window) / 2

	if idx := strings.LastIndex(window, "\n\n"); idx > floor {
		return start + idx + 2
	}

	best := -1
	for _, boundary := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if idx := strings.LastIndex(window, boundary); idx > best {
			best = idx
		}
	}
	if best > floor {
		return start + best + 2
	}

	if idx := strings.LastIndexByte(window, ' '); idx > floor {
		return start + idx + 1
	}

	// No boundary in range: fixed-size window
	return limit
}

func chunkID(docID string, seq int) string {
	return docID + ":" + strconv.Itoa(seq)
}
