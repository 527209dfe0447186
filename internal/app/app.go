// -----------------------------------------------------------------------
// Application wiring - builds the triage pipeline from configuration
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/handlers"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/services/embeddings"
	"github.com/ternarybob/sanitas/internal/services/index"
	"github.com/ternarybob/sanitas/internal/services/ingest"
	"github.com/ternarybob/sanitas/internal/services/llm"
	"github.com/ternarybob/sanitas/internal/services/pdf"
	"github.com/ternarybob/sanitas/internal/services/retrieval"
	"github.com/ternarybob/sanitas/internal/services/triage"
	"github.com/ternarybob/sanitas/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Pipeline services
	LLMServices      *llm.Services
	EmbeddingService interfaces.EmbeddingService
	IndexHolder      *index.Holder
	Ingestor         *ingest.Service
	Coordinator      *ingest.Coordinator
	Scheduler        *ingest.Scheduler
	Retriever        *retrieval.Retriever
	TriageService    interfaces.TriageService

	// HTTP handlers
	DiagnoseHandler *handlers.DiagnoseHandler
	StatusHandler   *handlers.StatusHandler
	HistoryHandler  *handlers.HistoryHandler
	ReingestHandler *handlers.ReingestHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	llmServices, err := llm.NewServices(cfg, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM services: %w", err)
	}
	app.LLMServices = llmServices

	app.EmbeddingService = embeddings.NewEmbeddingService(llmServices.Embedder, &cfg.LLM, logger)
	app.IndexHolder = index.NewHolder(app.EmbeddingService.ModelName(), app.EmbeddingService.Dimension())

	pdfExtractor := pdf.NewExtractor(logger)
	app.Ingestor = ingest.NewService(cfg, pdfExtractor, storageManager.DocumentStorage(), logger)
	app.Coordinator = ingest.NewCoordinator(app.Ingestor, app.EmbeddingService, app.IndexHolder, logger)
	app.Scheduler = ingest.NewScheduler(app.Coordinator, logger)

	app.Retriever = retrieval.NewRetriever(app.EmbeddingService, app.IndexHolder, &cfg.Retrieval, logger)
	app.TriageService = triage.NewService(app.Retriever, llmServices.Completer, storageManager.QueryLogStorage(), &cfg.LLM, logger)

	app.DiagnoseHandler = handlers.NewDiagnoseHandler(app.TriageService, logger)
	app.StatusHandler = handlers.NewStatusHandler(app.Coordinator, app.IndexHolder, storageManager, llmServices.Completer, logger)
	app.HistoryHandler = handlers.NewHistoryHandler(storageManager.QueryLogStorage(), logger)
	app.ReingestHandler = handlers.NewReingestHandler(app.Coordinator, app.Scheduler, logger)

	logger.Info().
		Str("provider", string(llmServices.Completer.GetProvider())).
		Str("embed_model", app.EmbeddingService.ModelName()).
		Msg("Application initialized")

	return app, nil
}

// Start runs the initial knowledge base build and starts the
// re-ingestion scheduler. The initial build runs in the background so
// the HTTP server can start serving immediately; until it completes,
// diagnose requests take the ungrounded path.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if _, err := a.Coordinator.Rebuild(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Initial knowledge base build failed")
		}
	}()

	if err := a.Scheduler.Start(a.Config.Guidelines.ReingestSchedule); err != nil {
		return fmt.Errorf("failed to start re-ingestion scheduler: %w", err)
	}

	return nil
}

// Close shuts down all application components
func (a *App) Close() error {
	a.Scheduler.Stop()

	if err := a.LLMServices.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close LLM services")
	}

	if err := a.StorageManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close storage")
		return err
	}

	a.Logger.Info().Msg("Application stopped")
	return nil
}
