package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/interfaces"
	"github.com/ternarybob/sanitas/internal/services/llm"
)

var validate = validator.New()

// DiagnoseRequest is the POST /api/diagnose request body
type DiagnoseRequest struct {
	Symptoms string `json:"symptoms" validate:"required,min=1,max=500"`
}

// DiagnoseResponse is the POST /api/diagnose response body
type DiagnoseResponse struct {
	Answer        string   `json:"answer"`
	Urgency       string   `json:"urgency"`
	Defaulted     bool     `json:"urgency_defaulted"`
	Grounded      bool     `json:"grounded"`
	ContextChunks []string `json:"context_chunks"`
	DurationMS    int64    `json:"duration_ms"`
}

// DiagnoseHandler handles symptom triage requests
type DiagnoseHandler struct {
	triageService interfaces.TriageService
	logger        arbor.ILogger
}

// NewDiagnoseHandler creates a new diagnose handler with dependencies
func NewDiagnoseHandler(triageService interfaces.TriageService, logger arbor.ILogger) *DiagnoseHandler {
	return &DiagnoseHandler{
		triageService: triageService,
		logger:        logger,
	}
}

// DiagnoseHandler handles POST /api/diagnose requests
func (h *DiagnoseHandler) DiagnoseHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "symptoms is required and must be at most 500 characters")
		return
	}

	result, err := h.triageService.Diagnose(r.Context(), req.Symptoms)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			h.logger.Warn().Err(err).Msg("Diagnose failed: provider unavailable")
			WriteError(w, http.StatusServiceUnavailable, "Triage service is temporarily unavailable, please retry")
			return
		}
		h.logger.Error().Err(err).Msg("Diagnose failed")
		WriteError(w, http.StatusInternalServerError, "Failed to process symptoms")
		return
	}

	WriteJSON(w, http.StatusOK, DiagnoseResponse{
		Answer:        result.Answer,
		Urgency:       string(result.Classification.Level),
		Defaulted:     result.Classification.Defaulted,
		Grounded:      result.Grounded,
		ContextChunks: result.ContextChunks,
		DurationMS:    result.Duration.Milliseconds(),
	})
}
