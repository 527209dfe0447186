package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface using the Google
// genai SDK. It provides both embeddings and chat completions.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	gate    *Gate
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*GeminiService)(nil)

// convertMessagesToGemini converts []interfaces.Message to Gemini Content
// format. System messages are extracted separately for use as the
// SystemInstruction; the first system message wins.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a new Gemini LLM service instance
func NewGeminiService(cfg *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY, SANITAS_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	geminiConfig := cfg.Gemini
	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-2.0-flash"
	}
	if geminiConfig.EmbedModel == "" {
		geminiConfig.EmbedModel = "gemini-embedding-001"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  &geminiConfig,
		logger:  logger,
		client:  client,
		gate:    NewGate(cfg.LLM.MaxConcurrent, cfg.LLM.RequestsPerMinute),
		timeout: cfg.LLMTimeout(),
	}

	logger.Info().
		Str("model", geminiConfig.Model).
		Str("embed_model", geminiConfig.EmbedModel).
		Int("embed_dimension", geminiConfig.EmbedDimension).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// Embed generates an embedding vector for the given text
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single API
// call, preserving input order.
func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text %d cannot be empty for embedding generation", i)
		}
	}

	if err := s.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.Release()

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	startTime := time.Now()
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel, contents, embeddingConfig)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: requested %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if len(embedding.Values) != s.config.EmbedDimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.config.EmbedDimension, len(embedding.Values))
		}
		vectors[i] = embedding.Values
	}

	s.logger.Debug().
		Int("texts", len(texts)).
		Int("embedding_dim", s.config.EmbedDimension).
		Dur("duration", time.Since(startTime)).
		Msg("Generated embeddings")

	return vectors, nil
}

// Complete generates a completion for the given conversation history
func (s *GeminiService) Complete(ctx context.Context, messages []interfaces.Message, opts interfaces.CompletionOptions) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	if err := s.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.Release()

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, geminiContents, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Chat completion completed")

	return response.String(), nil
}

// EmbedModel returns the embedding model identifier
func (s *GeminiService) EmbedModel() string {
	return s.config.EmbedModel
}

// Dimension returns the embedding vector dimensionality
func (s *GeminiService) Dimension() int {
	return s.config.EmbedDimension
}

// HealthCheck verifies the service can handle requests
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.Embed(healthCtx, "health check"); err != nil {
		return fmt.Errorf("Gemini health check failed: %w", err)
	}
	return nil
}

// GetProvider returns the backing provider
func (s *GeminiService) GetProvider() interfaces.Provider {
	return interfaces.ProviderGemini
}

// Close releases resources
func (s *GeminiService) Close() error {
	return nil
}
