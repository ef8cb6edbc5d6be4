package driving

import (
	"context"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// AnalysisService runs the detection pipeline over a text pair.
type AnalysisService interface {
	// Analyze segments, aligns and classifies a source/target pair.
	// The run is all-or-nothing: no partial state is committed on error.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}
