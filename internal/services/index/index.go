// -----------------------------------------------------------------------
// Vector Index - in-memory nearest-neighbor search over chunk embeddings
// -----------------------------------------------------------------------

package index

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ternarybob/sanitas/internal/models"
)

// Entry pairs a chunk with its embedding vector
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
}

// Snapshot is an immutable vector index over chunk embeddings. Queries
// never mutate a snapshot, so any number of queries may run against it
// concurrently; rebuilds produce a fresh snapshot that the Holder swaps
// in atomically.
type Snapshot struct {
	entries []Entry
	norms   []float64
	dim     int
	model   string // embedding model version; vectors are only comparable within one
	builtAt time.Time
}

// NewSnapshot returns an empty snapshot for the given embedding model.
// Querying it returns zero results, never an error.
func NewSnapshot(model string, dim int) *Snapshot {
	return &Snapshot{
		dim:     dim,
		model:   model,
		builtAt: time.Now(),
	}
}

// Build creates a snapshot from chunk embeddings. Entry order is
// preserved and defines the deterministic tie-break for equal scores.
func Build(model string, dim int, entries []Entry) (*Snapshot, error) {
	s := &Snapshot{
		entries: make([]Entry, 0, len(entries)),
		norms:   make([]float64, 0, len(entries)),
		dim:     dim,
		model:   model,
		builtAt: time.Now(),
	}
	for i, entry := range entries {
		if len(entry.Vector) != dim {
			return nil, fmt.Errorf("entry %d (%s): vector dimension %d, index dimension %d", i, entry.Chunk.ID, len(entry.Vector), dim)
		}
		s.entries = append(s.entries, entry)
		s.norms = append(s.norms, norm(entry.Vector))
	}
	return s, nil
}

// Add returns a new snapshot with entries appended. The receiver is
// unchanged; in-flight queries against it are unaffected.
func (s *Snapshot) Add(entries []Entry) (*Snapshot, error) {
	next := &Snapshot{
		entries: make([]Entry, 0, len(s.entries)+len(entries)),
		norms:   make([]float64, 0, len(s.entries)+len(entries)),
		dim:     s.dim,
		model:   s.model,
		builtAt: time.Now(),
	}
	next.entries = append(next.entries, s.entries...)
	next.norms = append(next.norms, s.norms...)
	for i, entry := range entries {
		if len(entry.Vector) != s.dim {
			return nil, fmt.Errorf("entry %d (%s): vector dimension %d, index dimension %d", i, entry.Chunk.ID, len(entry.Vector), s.dim)
		}
		next.entries = append(next.entries, entry)
		next.norms = append(next.norms, norm(entry.Vector))
	}
	return next, nil
}

// Query returns the k nearest chunks by cosine similarity, descending
// by score with ties broken by insertion order. An empty index returns
// an empty result for any vector and any k. A vector whose length does
// not match the index dimension is an error rather than an empty
// result, so an embedding-model mismatch cannot pass for "nothing
// relevant".
func (s *Snapshot) Query(vector []float32, k int) ([]models.RetrievedChunk, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("query vector dimension %d, index dimension %d", len(vector), s.dim)
	}
	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}

	queryNorm := norm(vector)
	if queryNorm == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, len(s.entries))
	for i := range s.entries {
		score := 0.0
		if s.norms[i] > 0 {
			score = dot(s.entries[i].Vector, vector) / (s.norms[i] * queryNorm)
		}
		candidates[i] = scored{idx: i, score: score}
	}

	// Stable sort keeps insertion order for equal scores
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]models.RetrievedChunk, 0, k)
	for _, candidate := range candidates[:k] {
		results = append(results, models.RetrievedChunk{
			Chunk: s.entries[candidate.idx].Chunk,
			Score: candidate.score,
		})
	}
	return results, nil
}

// Len returns the number of indexed chunks
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Dimension returns the vector dimensionality
func (s *Snapshot) Dimension() int {
	return s.dim
}

// Model returns the embedding model version this index was built with
func (s *Snapshot) Model() string {
	return s.model
}

// BuiltAt returns when the snapshot was created
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
