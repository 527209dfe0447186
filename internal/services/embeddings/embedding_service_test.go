package embeddings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

// mockLLMService implements interfaces.LLMService for testing
type mockLLMService struct {
	embedFunc      func(ctx context.Context, text string) ([]float32, error)
	embedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *mockLLMService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedBatchFunc != nil {
		return m.embedBatchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

func (m *mockLLMService) Complete(ctx context.Context, messages []interfaces.Message, opts interfaces.CompletionOptions) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockLLMService) EmbedModel() string                    { return "test-model" }
func (m *mockLLMService) Dimension() int                        { return 2 }
func (m *mockLLMService) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLMService) GetProvider() interfaces.Provider      { return interfaces.ProviderGemini }
func (m *mockLLMService) Close() error                          { return nil }

func testConfig() *common.LLMConfig {
	return &common.LLMConfig{
		Timeout:        "5s",
		MaxRetries:     1,
		InitialBackoff: "1ms",
		MaxBackoff:     "5ms",
	}
}

func makeChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{
			ID:     fmt.Sprintf("doc_1:%d", i),
			Source: "guide.pdf",
			Text:   fmt.Sprintf("chunk text %d", i),
		}
	}
	return chunks
}

func TestEmbedChunksPreservesOrder(t *testing.T) {
	service := NewEmbeddingService(&mockLLMService{}, testConfig(), nil)

	embedded, failures, err := service.EmbedChunks(context.Background(), makeChunks(5))
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, embedded, 5)

	for i, e := range embedded {
		assert.Equal(t, fmt.Sprintf("doc_1:%d", i), e.Chunk.ID)
		assert.Equal(t, []float32{float32(i), 1}, e.Vector)
	}
}

func TestEmbedChunksBatches(t *testing.T) {
	var batchSizes []int
	mock := &mockLLMService{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{0, 1}
			}
			return vectors, nil
		},
	}
	service := NewEmbeddingService(mock, testConfig(), nil)

	embedded, failures, err := service.EmbedChunks(context.Background(), makeChunks(150))
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Len(t, embedded, 150)
	assert.Equal(t, []int{64, 64, 22}, batchSizes)
}

func TestEmbedChunksSkipsFailedBatch(t *testing.T) {
	call := 0
	mock := &mockLLMService{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			call++
			if call == 1 {
				// Permanent failure, not retried
				return nil, errors.New("invalid input")
			}
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{0, 1}
			}
			return vectors, nil
		},
	}
	service := NewEmbeddingService(mock, testConfig(), nil)

	embedded, failures, err := service.EmbedChunks(context.Background(), makeChunks(100))
	require.NoError(t, err)

	// First batch of 64 failed and was skipped; the remaining 36 embedded
	assert.Len(t, embedded, 36)
	assert.Len(t, failures, 64)
	assert.Contains(t, failures[0].Reason, "embedding failed")
	assert.Equal(t, "doc_1:64", embedded[0].Chunk.ID)
}

func TestEmbedChunksEmptyInput(t *testing.T) {
	service := NewEmbeddingService(&mockLLMService{}, testConfig(), nil)

	embedded, failures, err := service.EmbedChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embedded)
	assert.Empty(t, failures)
}

func TestGenerateQueryEmbeddingRejectsEmpty(t *testing.T) {
	service := NewEmbeddingService(&mockLLMService{}, testConfig(), nil)

	_, err := service.GenerateQueryEmbedding(context.Background(), "")
	require.Error(t, err)
}

func TestGenerateEmbeddingRetriesTransientErrors(t *testing.T) {
	calls := 0
	mock := &mockLLMService{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("429 rate limit")
			}
			return []float32{1, 0}, nil
		},
	}
	service := NewEmbeddingService(mock, testConfig(), nil)

	vector, err := service.GenerateEmbedding(context.Background(), "fever")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vector)
	assert.Equal(t, 2, calls)
}
