package interfaces

import (
	"context"

	"github.com/ternarybob/sanitas/internal/models"
)

// EmbeddingService generates vector embeddings
type EmbeddingService interface {
	// Generate embedding for raw text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate embeddings for a batch of chunks, preserving order.
	// Chunks whose embedding fails after retries are skipped and
	// reported, not fatal to the batch.
	EmbedChunks(ctx context.Context, chunks []models.Chunk) ([]EmbeddedChunk, []models.IngestFailure, error)

	// Generate query embedding (may have different handling than document embedding)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if service is available
	IsAvailable(ctx context.Context) bool
}

// EmbeddedChunk pairs a chunk with its embedding vector
type EmbeddedChunk struct {
	Chunk  models.Chunk
	Vector []float32
}
