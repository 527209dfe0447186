// -----------------------------------------------------------------------
// Embedding Service - batched chunk embedding over the LLM provider
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
	"github.com/ternarybob/sanitas/internal/services/llm"
)

// embedBatchSize bounds the number of texts sent per provider call
const embedBatchSize = 64

type embeddingService struct {
	llmService interfaces.LLMService
	retryCfg   *llm.RetryConfig
	logger     arbor.ILogger
}

// NewEmbeddingService creates an embedding service backed by the given
// LLM provider. Provider calls are retried on transient failures per
// the configured retry budget.
func NewEmbeddingService(llmService interfaces.LLMService, cfg *common.LLMConfig, logger arbor.ILogger) interfaces.EmbeddingService {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &embeddingService{
		llmService: llmService,
		retryCfg:   llm.NewRetryConfig(cfg),
		logger:     logger,
	}
}

// Compile-time interface check
var _ interfaces.EmbeddingService = (*embeddingService)(nil)

func (s *embeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	return llm.Retry(ctx, s.retryCfg, s.logger, "embed", func(ctx context.Context) ([]float32, error) {
		return s.llmService.Embed(ctx, text)
	})
}

// EmbedChunks embeds chunks in batches, preserving input order. A batch
// that still fails after retries is skipped and its chunks reported as
// failures; remaining batches continue. Only context cancellation
// aborts the whole run.
func (s *embeddingService) EmbedChunks(ctx context.Context, chunks []models.Chunk) ([]interfaces.EmbeddedChunk, []models.IngestFailure, error) {
	embedded := make([]interfaces.EmbeddedChunk, 0, len(chunks))
	var failures []models.IngestFailure

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := llm.Retry(ctx, s.retryCfg, s.logger, "embed_batch", func(ctx context.Context) ([][]float32, error) {
			return s.llmService.EmbedBatch(ctx, texts)
		})
		if err != nil {
			if ctx.Err() != nil {
				return embedded, failures, ctx.Err()
			}
			s.logger.Warn().
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Err(err).
				Msg("Embedding batch failed, skipping")
			for _, chunk := range batch {
				failures = append(failures, models.IngestFailure{
					Source: chunk.Source,
					Reason: fmt.Sprintf("embedding failed for chunk %s: %v", chunk.ID, err),
				})
			}
			continue
		}
		if len(vectors) != len(batch) {
			return embedded, failures, fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		for i, chunk := range batch {
			embedded = append(embedded, interfaces.EmbeddedChunk{
				Chunk:  chunk,
				Vector: vectors[i],
			})
		}
	}

	s.logger.Debug().
		Int("chunks", len(chunks)).
		Int("embedded", len(embedded)).
		Int("failed", len(failures)).
		Msg("Chunk embedding complete")

	return embedded, failures, nil
}

// GenerateQueryEmbedding embeds a retrieval query with the same model
// as document chunks so the vectors are comparable.
func (s *embeddingService) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, fmt.Errorf("cannot embed empty query")
	}
	return llm.Retry(ctx, s.retryCfg, s.logger, "embed_query", func(ctx context.Context) ([]float32, error) {
		return s.llmService.Embed(ctx, query)
	})
}

func (s *embeddingService) ModelName() string {
	return s.llmService.EmbedModel()
}

func (s *embeddingService) Dimension() int {
	return s.llmService.Dimension()
}

func (s *embeddingService) IsAvailable(ctx context.Context) bool {
	return s.llmService.HealthCheck(ctx) == nil
}
