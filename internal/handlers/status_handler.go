package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/services/index"
	"github.com/ternarybob/sanitas/internal/services/ingest"
)

// StatusResponse is the GET /api/status response body
type StatusResponse struct {
	Version         string `json:"version"`
	Provider        string `json:"provider"`
	EmbedModel      string `json:"embed_model"`
	Documents       int    `json:"documents"`
	IndexedChunks   int    `json:"indexed_chunks"`
	LoggedQueries   int    `json:"logged_queries"`
	Rebuilding      bool   `json:"rebuilding"`
	LastRebuild     string `json:"last_rebuild,omitempty"`
	IndexedFailures int    `json:"last_rebuild_failures"`
}

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	coordinator *ingest.Coordinator
	holder      *index.Holder
	storage     interfaces.StorageManager
	completer   interfaces.LLMService
	logger      arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(
	coordinator *ingest.Coordinator,
	holder *index.Holder,
	storage interfaces.StorageManager,
	completer interfaces.LLMService,
	logger arbor.ILogger,
) *StatusHandler {
	return &StatusHandler{
		coordinator: coordinator,
		holder:      holder,
		storage:     storage,
		completer:   completer,
		logger:      logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot := h.holder.Load()

	docs, err := h.storage.DocumentStorage().CountDocuments()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count documents")
	}
	queries, err := h.storage.QueryLogStorage().CountQueries()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count query records")
	}

	resp := StatusResponse{
		Version:       common.Version,
		Provider:      string(h.completer.GetProvider()),
		EmbedModel:    snapshot.Model(),
		Documents:     docs,
		IndexedChunks: snapshot.Len(),
		LoggedQueries: queries,
		Rebuilding:    h.coordinator.Rebuilding(),
	}
	if lastRun, result := h.coordinator.LastRun(); result != nil {
		resp.LastRebuild = lastRun.Format(time.RFC3339)
		resp.IndexedFailures = len(result.Failures)
	}

	WriteJSON(w, http.StatusOK, resp)
}

// HealthHandler handles GET /health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": common.Version,
	})
}
