// Package mcp provides an MCP (Model Context Protocol) server adapter for Clarita.
// It lets AI assistants run strategy analysis and drive the annotation
// review lifecycle over local sessions.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

// ErrMissingAnnotationService is returned when the annotation service is not provided.
var ErrMissingAnnotationService = errors.New("mcp: annotation service is required")
