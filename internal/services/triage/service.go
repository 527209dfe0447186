// -----------------------------------------------------------------------
// Triage Service - orchestrates retrieve, compose, generate, classify
// -----------------------------------------------------------------------

package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
	"github.com/ternarybob/sanitas/internal/services/llm"
	"github.com/ternarybob/sanitas/internal/services/retrieval"
)

// state tracks a single diagnose run through the pipeline. Each run
// moves forward only; errored is terminal and done is only reached
// after classification.
type state string

const (
	stateIdle               state = "idle"
	stateRetrieving         state = "retrieving"
	stateComposing          state = "composing"
	stateAwaitingGeneration state = "awaiting_generation"
	stateClassifying        state = "classifying"
	stateDone               state = "done"
	stateErrored            state = "errored"
)

// Service runs the triage pipeline for one symptom description at a
// time per call: retrieve guideline context, compose the prompt,
// generate guidance, classify its urgency, and log the query.
type Service struct {
	retriever   *retrieval.Retriever
	completer   interfaces.LLMService
	queryLog    interfaces.QueryLogStorage
	retryCfg    *llm.RetryConfig
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      arbor.ILogger
}

// NewService creates the triage pipeline service
func NewService(
	retriever *retrieval.Retriever,
	completer interfaces.LLMService,
	queryLog interfaces.QueryLogStorage,
	cfg *common.LLMConfig,
	logger arbor.ILogger,
) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		retriever:   retriever,
		completer:   completer,
		queryLog:    queryLog,
		retryCfg:    llm.NewRetryConfig(cfg),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.LLMTimeout(),
		logger:      logger,
	}
}

// Compile-time interface check
var _ interfaces.TriageService = (*Service)(nil)

// Diagnose runs the full pipeline for a symptom description. A failed
// query-log write is logged and does not fail the request; retrieval
// finding nothing is the ungrounded path, not an error.
func (s *Service) Diagnose(ctx context.Context, symptoms string) (*models.PipelineResult, error) {
	start := time.Now()
	run := stateIdle

	advance := func(next state) {
		s.logger.Debug().
			Str("from", string(run)).
			Str("to", string(next)).
			Msg("Pipeline transition")
		run = next
	}

	fail := func(stage string, err error) (*models.PipelineResult, error) {
		advance(stateErrored)
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	advance(stateRetrieving)
	retrieved, err := s.retriever.Retrieve(ctx, symptoms)
	if err != nil {
		return fail("retrieval", err)
	}

	advance(stateComposing)
	messages := ComposePrompt(symptoms, retrieved)

	advance(stateAwaitingGeneration)
	answer, err := llm.Retry(ctx, s.retryCfg, s.logger, "generate", func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.completer.Complete(callCtx, messages, interfaces.CompletionOptions{
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		})
	})
	if err != nil {
		return fail("generation", err)
	}

	advance(stateClassifying)
	classification := Classify(answer)
	if classification.Defaulted {
		s.logger.Warn().
			Str("answer_prefix", truncate(answer, 120)).
			Msg("No urgency level found in response, defaulting to MEDIUM")
	}

	chunkIDs := make([]string, 0, len(retrieved.Chunks))
	for _, r := range retrieved.Chunks {
		chunkIDs = append(chunkIDs, r.Chunk.ID)
	}

	result := &models.PipelineResult{
		Symptoms:       symptoms,
		Answer:         answer,
		Classification: classification,
		ContextChunks:  chunkIDs,
		Grounded:       retrieved.Grounded,
		Duration:       time.Since(start),
	}

	s.appendQueryLog(result)
	advance(stateDone)

	s.logger.Info().
		Str("urgency", string(classification.Level)).
		Bool("defaulted", classification.Defaulted).
		Bool("grounded", result.Grounded).
		Int("context_chunks", len(chunkIDs)).
		Dur("duration", result.Duration).
		Msg("Diagnose complete")

	return result, nil
}

func (s *Service) appendQueryLog(result *models.PipelineResult) {
	if s.queryLog == nil {
		return
	}
	record := &models.QueryRecord{
		ID:            common.NewQueryID(),
		Symptoms:      result.Symptoms,
		Answer:        result.Answer,
		Urgency:       result.Classification.Level,
		Defaulted:     result.Classification.Defaulted,
		ContextChunks: result.ContextChunks,
		CreatedAt:     time.Now(),
	}
	if err := s.queryLog.AppendQuery(record); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist query record")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
