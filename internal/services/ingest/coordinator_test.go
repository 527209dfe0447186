package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
	"github.com/ternarybob/sanitas/internal/services/index"
)

// mockEmbedder implements interfaces.EmbeddingService for testing
type mockEmbedder struct {
	block   chan struct{} // when set, EmbedChunks waits until closed
	failAll bool          // when set, every chunk fails to embed
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) EmbedChunks(ctx context.Context, chunks []models.Chunk) ([]interfaces.EmbeddedChunk, []models.IngestFailure, error) {
	if m.block != nil {
		<-m.block
	}
	if m.failAll {
		failures := make([]models.IngestFailure, len(chunks))
		for i, chunk := range chunks {
			failures[i] = models.IngestFailure{Source: chunk.ID, Reason: "provider unavailable"}
		}
		return nil, failures, nil
	}
	embedded := make([]interfaces.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = interfaces.EmbeddedChunk{Chunk: chunk, Vector: []float32{1, float32(i)}}
	}
	return embedded, nil, nil
}

func (m *mockEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) ModelName() string                    { return "test-model" }
func (m *mockEmbedder) Dimension() int                       { return 2 }
func (m *mockEmbedder) IsAvailable(ctx context.Context) bool { return true }

func TestCoordinatorRebuildSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fever.txt", "Fever above 39C in infants requires same-day referral.")
	writeFile(t, dir, "burns.txt", "Minor burns should be cooled under running water.")

	ingestor := NewService(testIngestConfig(dir), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())
	holder := index.NewHolder("test-model", 2)
	coordinator := NewCoordinator(ingestor, &mockEmbedder{}, holder, common.GetLogger())

	assert.Equal(t, 0, holder.Load().Len())

	result, err := coordinator.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Documents, 2)
	assert.Equal(t, len(result.Chunks), holder.Load().Len())
	assert.Greater(t, holder.Load().Len(), 0)

	lastRun, lastResult := coordinator.LastRun()
	assert.False(t, lastRun.IsZero())
	assert.Equal(t, result, lastResult)
}

func TestCoordinatorRejectsConcurrentRebuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fever.txt", "Fever guidance for the clinic staff.")

	block := make(chan struct{})
	ingestor := NewService(testIngestConfig(dir), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())
	holder := index.NewHolder("test-model", 2)
	coordinator := NewCoordinator(ingestor, &mockEmbedder{block: block}, holder, common.GetLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := coordinator.Rebuild(context.Background())
		assert.NoError(t, err)
	}()

	// Wait for the first rebuild to reach the blocking embed call
	require.Eventually(t, coordinator.Rebuilding, time.Second, 5*time.Millisecond)

	_, err := coordinator.Rebuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")

	close(block)
	wg.Wait()
	assert.False(t, coordinator.Rebuilding())
}

func TestCoordinatorFailedEmbeddingKeepsPreviousIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fever.txt", "Fever above 39C in infants requires same-day referral.")

	ingestor := NewService(testIngestConfig(dir), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())
	holder := index.NewHolder("test-model", 2)
	coordinator := NewCoordinator(ingestor, &mockEmbedder{}, holder, common.GetLogger())

	// Establish a healthy live index first
	_, err := coordinator.Rebuild(context.Background())
	require.NoError(t, err)
	liveLen := holder.Load().Len()
	require.Greater(t, liveLen, 0)

	// A provider outage fails every chunk; the rebuild must error out
	// instead of swapping in an empty snapshot
	coordinator.embeddingService = &mockEmbedder{failAll: true}

	_, err = coordinator.Rebuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vectors")
	assert.Equal(t, liveLen, holder.Load().Len())
	assert.False(t, coordinator.Rebuilding())
}

func TestCoordinatorRebuildIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fever.txt", "Fever above 39C in infants requires same-day referral.")
	writeFile(t, dir, "burns.txt", "Minor burns should be cooled under running water.")

	ingestor := NewService(testIngestConfig(dir), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())
	holder := index.NewHolder("test-model", 2)
	coordinator := NewCoordinator(ingestor, &mockEmbedder{}, holder, common.GetLogger())

	first, err := coordinator.Rebuild(context.Background())
	require.NoError(t, err)
	firstLen := holder.Load().Len()

	second, err := coordinator.Rebuild(context.Background())
	require.NoError(t, err)

	// Unchanged sources produce the same chunks and the same index
	require.Equal(t, len(first.Chunks), len(second.Chunks))
	assert.Equal(t, firstLen, holder.Load().Len())
	for i := range first.Chunks {
		assert.Equal(t, first.Chunks[i].Text, second.Chunks[i].Text)
		assert.Equal(t, first.Chunks[i].StartOffset, second.Chunks[i].StartOffset)
	}

	before, err := holder.Load().Query([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, before, 1)
}

func TestCoordinatorEmptyDirectoryYieldsEmptyIndex(t *testing.T) {
	ingestor := NewService(testIngestConfig(t.TempDir()), &mockPDFExtractor{}, &mockDocStorage{}, common.GetLogger())
	holder := index.NewHolder("test-model", 2)
	coordinator := NewCoordinator(ingestor, &mockEmbedder{}, holder, common.GetLogger())

	result, err := coordinator.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Documents)
	assert.Equal(t, 0, holder.Load().Len())
}
