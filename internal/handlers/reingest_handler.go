package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/services/ingest"
)

// ReingestHandler triggers knowledge base rebuilds on demand
type ReingestHandler struct {
	coordinator *ingest.Coordinator
	scheduler   *ingest.Scheduler
	logger      arbor.ILogger
}

// NewReingestHandler creates a new reingest handler with dependencies
func NewReingestHandler(coordinator *ingest.Coordinator, scheduler *ingest.Scheduler, logger arbor.ILogger) *ReingestHandler {
	return &ReingestHandler{
		coordinator: coordinator,
		scheduler:   scheduler,
		logger:      logger,
	}
}

// ReingestHandler handles POST /api/reingest requests. The rebuild runs
// in the background; queries keep serving from the current index until
// the new snapshot swaps in.
func (h *ReingestHandler) ReingestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.coordinator.Rebuilding() {
		WriteError(w, http.StatusConflict, "A rebuild is already in progress")
		return
	}

	h.scheduler.RunNow()
	WriteStarted(w, "Knowledge base rebuild started")
}
