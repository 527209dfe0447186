package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
)

// Services bundles the provider-specific clients the pipeline needs.
// Embedder always speaks to Gemini (the only configured provider with
// an embedding endpoint); Completer follows llm.default_provider.
type Services struct {
	Embedder  interfaces.LLMService
	Completer interfaces.LLMService
}

// NewServices creates the LLM services from configuration
func NewServices(cfg *common.Config, logger arbor.ILogger) (*Services, error) {
	gemini, err := NewGeminiService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}

	services := &Services{
		Embedder:  gemini,
		Completer: gemini,
	}

	switch cfg.LLM.DefaultProvider {
	case "gemini", "":
		// Completions share the Gemini client
	case "claude":
		claude, err := NewClaudeService(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		services.Completer = claude
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.DefaultProvider)
	}

	logger.Info().
		Str("completion_provider", string(services.Completer.GetProvider())).
		Str("embedding_provider", string(services.Embedder.GetProvider())).
		Msg("LLM services initialized")

	return services, nil
}

// Close releases the underlying clients
func (s *Services) Close() error {
	if err := s.Embedder.Close(); err != nil {
		return err
	}
	if s.Completer != s.Embedder {
		return s.Completer.Close()
	}
	return nil
}
