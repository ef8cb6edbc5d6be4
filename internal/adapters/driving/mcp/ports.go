package mcp

import (
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis runs the strategy detection pipeline.
	Analysis driving.AnalysisService

	// Annotation manages the annotation review lifecycle.
	Annotation driving.AnnotationService

	// Config supplies runtime tunables such as the alignment
	// threshold. Optional; built-in defaults apply when nil.
	Config driven.ConfigStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Annotation == nil {
		return ErrMissingAnnotationService
	}
	return nil
}
