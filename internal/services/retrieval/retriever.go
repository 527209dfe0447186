// -----------------------------------------------------------------------
// Retrieval Service - semantic search over the guideline index
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
	"github.com/ternarybob/sanitas/internal/services/index"
)

// Retriever embeds a query and finds the most relevant guideline
// chunks in the live index snapshot.
type Retriever struct {
	embeddingService interfaces.EmbeddingService
	holder           *index.Holder
	topK             int
	minScore         float64
	logger           arbor.ILogger
}

// NewRetriever creates a retriever over the live index holder
func NewRetriever(
	embeddingService interfaces.EmbeddingService,
	holder *index.Holder,
	cfg *common.RetrievalConfig,
	logger arbor.ILogger,
) *Retriever {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Retriever{
		embeddingService: embeddingService,
		holder:           holder,
		topK:             cfg.TopK,
		minScore:         cfg.MinScore,
		logger:           logger,
	}
}

// Retrieve returns the top-k chunks for the query, dropping results
// below the minimum relevance score. An empty index or a fully
// filtered result set yields Grounded=false, which is not an error:
// the caller proceeds without guideline context.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*models.RetrievalResult, error) {
	snapshot := r.holder.Load()
	if snapshot.Len() == 0 {
		r.logger.Debug().Msg("Index is empty, retrieval returns no context")
		return &models.RetrievalResult{Grounded: false}, nil
	}

	vector, err := r.embeddingService.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	candidates, err := snapshot.Query(vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}

	kept := make([]models.RetrievedChunk, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score >= r.minScore {
			kept = append(kept, candidate)
		}
	}

	r.logger.Debug().
		Int("candidates", len(candidates)).
		Int("kept", len(kept)).
		Float64("min_score", r.minScore).
		Msg("Retrieval complete")

	return &models.RetrievalResult{
		Chunks:   kept,
		Grounded: len(kept) > 0,
	}, nil
}
