package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Clarita resources.
	uriScheme = "clarita://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for session info.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session",
		Description: "An annotation session with its source and target texts",
		MIMEType:    "application/json",
	}, s.handleSessionResource)

	// Template for a session's active annotations.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/annotations",
		Name:        "session-annotations",
		Description: "Active annotations within an annotation session",
		MIMEType:    "application/json",
	}, s.handleAnnotationsResource)
}

// handleSessionResource returns one session with its texts.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := s.ports.Annotation.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	type sessionInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name,omitempty"`
		SourceText string `json:"source_text"`
		TargetText string `json:"target_text"`
		CreatedAt  string `json:"created_at"`
	}

	data, err := json.MarshalIndent(sessionInfo{
		ID:         session.ID,
		Name:       session.Name,
		SourceText: session.SourceText,
		TargetText: session.TargetText,
		CreatedAt:  session.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling session: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleAnnotationsResource returns the active annotations of a session.
func (s *Server) handleAnnotationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessionID := extractAnnotationsSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	annotations, err := s.ports.Annotation.Search(ctx, sessionID, domain.AnnotationFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}

	infos := make([]AnnotationOutput, len(annotations))
	for i := range annotations {
		infos[i] = toAnnotationOutput(&annotations[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling annotations: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like clarita://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractAnnotationsSessionID extracts the session ID from a URI like
// clarita://sessions/{sessionId}/annotations.
func extractAnnotationsSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/annotations"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
