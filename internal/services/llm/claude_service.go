package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
)

// ClaudeService implements the completion side of the LLMService
// interface using the Anthropic Claude API. Claude has no embedding
// endpoint; Embed and EmbedBatch return an error, and the factory pairs
// this service with Gemini for the embedding path.
type ClaudeService struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	gate    *Gate
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*ClaudeService)(nil)

// convertMessagesToClaude converts []interfaces.Message to Claude
// MessageParam format. System messages are extracted separately for the
// System parameter; the first system message wins.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
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

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude LLM service instance
func NewClaudeService(cfg *common.Config, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.Claude.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY, SANITAS_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	claudeConfig := cfg.Claude
	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	service := &ClaudeService{
		config:  &claudeConfig,
		logger:  logger,
		client:  anthropic.NewClient(option.WithAPIKey(claudeConfig.APIKey)),
		gate:    NewGate(cfg.LLM.MaxConcurrent, cfg.LLM.RequestsPerMinute),
		timeout: cfg.LLMTimeout(),
	}

	logger.Info().
		Str("model", claudeConfig.Model).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Embed is not supported by the Claude API
func (s *ClaudeService) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("claude provider does not support embeddings")
}

// EmbedBatch is not supported by the Claude API
func (s *ClaudeService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("claude provider does not support embeddings")
}

// Complete generates a completion for the given conversation history
func (s *ClaudeService) Complete(ctx context.Context, messages []interfaces.Message, opts interfaces.CompletionOptions) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	if err := s.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.Release()

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(opts.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	startTime := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed")

	return response.String(), nil
}

// EmbedModel returns the embedding model identifier; empty for Claude
func (s *ClaudeService) EmbedModel() string {
	return ""
}

// Dimension returns 0: Claude has no embedding endpoint
func (s *ClaudeService) Dimension() int {
	return 0
}

// HealthCheck verifies the Claude client is initialized and reachable
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	messages := []interfaces.Message{{Role: "user", Content: "ping"}}
	response, err := s.Complete(healthCtx, messages, interfaces.CompletionOptions{MaxTokens: 8})
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}
	return nil
}

// GetProvider returns the backing provider
func (s *ClaudeService) GetProvider() interfaces.Provider {
	return interfaces.ProviderClaude
}

// Close releases resources
func (s *ClaudeService) Close() error {
	return nil
}
