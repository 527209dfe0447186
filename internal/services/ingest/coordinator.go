package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
	"github.com/ternarybob/sanitas/internal/services/index"
)

// Coordinator drives the ingest-embed-index pipeline and swaps the
// completed snapshot into the live index holder. Queries keep serving
// from the previous snapshot while a rebuild is in flight.
type Coordinator struct {
	ingestor         *Service
	embeddingService interfaces.EmbeddingService
	holder           *index.Holder
	logger           arbor.ILogger

	mu         sync.Mutex
	rebuilding bool
	lastResult *models.IngestResult
	lastRun    time.Time
}

// NewCoordinator creates a pipeline coordinator
func NewCoordinator(
	ingestor *Service,
	embeddingService interfaces.EmbeddingService,
	holder *index.Holder,
	logger arbor.ILogger,
) *Coordinator {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Coordinator{
		ingestor:         ingestor,
		embeddingService: embeddingService,
		holder:           holder,
		logger:           logger,
	}
}

// Rebuild runs the full pipeline: ingest the guidelines directory,
// embed the resulting chunks, build a fresh snapshot, and swap it in.
// Only one rebuild runs at a time; concurrent calls fail fast.
func (c *Coordinator) Rebuild(ctx context.Context) (*models.IngestResult, error) {
	c.mu.Lock()
	if c.rebuilding {
		c.mu.Unlock()
		return nil, fmt.Errorf("rebuild already in progress")
	}
	c.rebuilding = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.rebuilding = false
		c.mu.Unlock()
	}()

	start := time.Now()
	c.logger.Info().Msg("Starting knowledge base rebuild")

	result, err := c.ingestor.IngestDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}

	embedded, embedFailures, err := c.embeddingService.EmbedChunks(ctx, result.Chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	result.Failures = append(result.Failures, embedFailures...)

	// A provider outage can fail every batch without EmbedChunks
	// returning an error. Swapping in the resulting empty snapshot
	// would discard a healthy live index, so keep serving the old one.
	if len(result.Chunks) > 0 && len(embedded) == 0 {
		c.logger.Warn().
			Int("chunks", len(result.Chunks)).
			Int("failures", len(result.Failures)).
			Msg("No chunks embedded, keeping previous index")
		return nil, fmt.Errorf("embedding produced no vectors for %d chunks", len(result.Chunks))
	}

	entries := make([]index.Entry, len(embedded))
	for i, e := range embedded {
		entries[i] = index.Entry{Chunk: e.Chunk, Vector: e.Vector}
	}

	snapshot, err := index.Build(c.embeddingService.ModelName(), c.embeddingService.Dimension(), entries)
	if err != nil {
		return nil, fmt.Errorf("index build failed: %w", err)
	}

	c.holder.Swap(snapshot)

	result.Duration = time.Since(start)

	c.mu.Lock()
	c.lastResult = result
	c.lastRun = time.Now()
	c.mu.Unlock()

	c.logger.Info().
		Int("documents", len(result.Documents)).
		Int("chunks_indexed", snapshot.Len()).
		Int("failures", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("Knowledge base rebuild complete")

	return result, nil
}

// Rebuilding reports whether a rebuild is currently in flight
func (c *Coordinator) Rebuilding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilding
}

// LastRun returns the completion time and result of the most recent
// successful rebuild. The result is nil if no rebuild has completed.
func (c *Coordinator) LastRun() (time.Time, *models.IngestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun, c.lastResult
}
