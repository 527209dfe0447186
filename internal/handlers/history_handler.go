package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/models"
)

// HistoryHandler serves the persisted query log
type HistoryHandler struct {
	queryLog interfaces.QueryLogStorage
	logger   arbor.ILogger
}

// NewHistoryHandler creates a new history handler with dependencies
func NewHistoryHandler(queryLog interfaces.QueryLogStorage, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		queryLog: queryLog,
		logger:   logger,
	}
}

// GetHistoryHandler handles GET /api/history?limit=N requests
func (h *HistoryHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}

	records, err := h.queryLog.RecentQueries(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load query history")
		WriteError(w, http.StatusInternalServerError, "Failed to load query history")
		return
	}
	if records == nil {
		records = []*models.QueryRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"queries": records,
	})
}
