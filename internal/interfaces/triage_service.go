package interfaces

import (
	"context"

	"github.com/ternarybob/sanitas/internal/models"
)

// TriageService is the pipeline contract exposed to the HTTP layer.
// Diagnose is synchronous from the caller's perspective regardless of
// internal concurrency.
type TriageService interface {
	Diagnose(ctx context.Context, symptoms string) (*models.PipelineResult, error)
}
