package mcp

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
)

// AnalyzeInput is the input schema for the analyze tool.
type AnalyzeInput struct {
	SourceText      string  `json:"source_text" jsonschema:"the complex original text"`
	TargetText      string  `json:"target_text" jsonschema:"the simplified text"`
	Threshold       float64 `json:"threshold,omitempty" jsonschema:"alignment similarity threshold in (0,1], 0 uses the default"`
	Paragraphs      bool    `json:"paragraphs,omitempty" jsonschema:"segment on blank lines instead of sentences"`
	DetectOmissions bool    `json:"detect_omissions,omitempty" jsonschema:"report unaligned source segments as omission candidates"`
	SessionID       string  `json:"session_id,omitempty" jsonschema:"commit the detected strategies to this annotation session"`
}

// StrategyOutput represents one detected strategy.
type StrategyOutput struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code"`
	Description        string  `json:"description"`
	Confidence         float64 `json:"confidence"`
	SourceStart        *int    `json:"source_start,omitempty"`
	SourceEnd          *int    `json:"source_end,omitempty"`
	TargetStart        int     `json:"target_start"`
	TargetEnd          int     `json:"target_end"`
	ApproximateOffsets bool    `json:"approximate_offsets,omitempty"`
	Evidence           string  `json:"evidence,omitempty"`
}

// OmissionOutput represents one omission candidate.
type OmissionOutput struct {
	SourceIndex int    `json:"source_index"`
	Text        string `json:"text"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// AnalyzeOutput is the output schema for the analyze tool.
type AnalyzeOutput struct {
	Strategies         []StrategyOutput `json:"strategies"`
	SourceSegments     int              `json:"source_segments"`
	TargetSegments     int              `json:"target_segments"`
	AlignedPairs       int              `json:"aligned_pairs"`
	Degraded           bool             `json:"degraded"`
	EmbeddingModel     string           `json:"embedding_model,omitempty"`
	OmissionCandidates []OmissionOutput `json:"omission_candidates,omitempty"`
	Committed          int              `json:"committed,omitempty"`
}

// SessionCreateInput is the input schema for the session_create tool.
type SessionCreateInput struct {
	Name       string `json:"name,omitempty" jsonschema:"human-readable session label"`
	SourceText string `json:"source_text" jsonschema:"the complex original text"`
	TargetText string `json:"target_text" jsonschema:"the simplified text"`
}

// SessionCreateOutput is the output schema for the session_create tool.
type SessionCreateOutput struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
}

// AnnotationCreateInput is the input schema for the annotation_create tool.
type AnnotationCreateInput struct {
	SessionID   string `json:"session_id" jsonschema:"the annotation session"`
	Code        string `json:"code" jsonschema:"strategy code, e.g. SL+ or OM+"`
	TargetStart int    `json:"target_start" jsonschema:"target span start (byte offset)"`
	TargetEnd   int    `json:"target_end" jsonschema:"target span end (byte offset)"`
	SourceStart *int   `json:"source_start,omitempty" jsonschema:"source span start (optional)"`
	SourceEnd   *int   `json:"source_end,omitempty" jsonschema:"source span end (optional)"`
	Comment     string `json:"comment,omitempty" jsonschema:"reviewer note"`
}

// AnnotationOutput represents one annotation.
type AnnotationOutput struct {
	ID           string  `json:"id"`
	SessionID    string  `json:"session_id"`
	Code         string  `json:"code"`
	OriginalCode string  `json:"original_code,omitempty"`
	Status       string  `json:"status"`
	Origin       string  `json:"origin"`
	Confidence   float64 `json:"confidence,omitempty"`
	SourceStart  *int    `json:"source_start,omitempty"`
	SourceEnd    *int    `json:"source_end,omitempty"`
	TargetStart  int     `json:"target_start"`
	TargetEnd    int     `json:"target_end"`
	Comment      string  `json:"comment,omitempty"`
	Validated    bool    `json:"validated"`
}

// AnnotationPatchInput is the input schema for the annotation_patch tool.
type AnnotationPatchInput struct {
	AnnotationID string `json:"annotation_id" jsonschema:"the annotation to mutate"`
	Action       string `json:"action" jsonschema:"one of accept, reject, modify, modify_span"`
	NewCode      string `json:"new_code,omitempty" jsonschema:"replacement strategy code (modify only)"`
	NewStart     *int   `json:"new_start,omitempty" jsonschema:"replacement target span start"`
	NewEnd       *int   `json:"new_end,omitempty" jsonschema:"replacement target span end"`
	Comment      string `json:"comment,omitempty" jsonschema:"reviewer note"`
}

// AnnotationPatchOutput is the output schema for the annotation_patch tool.
type AnnotationPatchOutput struct {
	Annotation *AnnotationOutput `json:"annotation,omitempty"`
	Rejected   bool              `json:"rejected,omitempty"`
}

// AnnotationSearchInput is the input schema for the annotation_search tool.
type AnnotationSearchInput struct {
	SessionID       string `json:"session_id" jsonschema:"the annotation session"`
	Status          string `json:"status,omitempty" jsonschema:"filter by lifecycle status"`
	Code            string `json:"code,omitempty" jsonschema:"filter by strategy code"`
	Origin          string `json:"origin,omitempty" jsonschema:"filter by machine or human origin"`
	Gold            bool   `json:"gold,omitempty" jsonschema:"only validated annotations"`
	IncludeRejected bool   `json:"include_rejected,omitempty" jsonschema:"include rejected annotations"`
}

// AnnotationSearchOutput is the output schema for the annotation_search tool.
type AnnotationSearchOutput struct {
	Annotations []AnnotationOutput `json:"annotations"`
	Count       int                `json:"count"`
}

// AnnotationExportInput is the input schema for the annotation_export tool.
type AnnotationExportInput struct {
	SessionID       string `json:"session_id" jsonschema:"the annotation session"`
	Format          string `json:"format,omitempty" jsonschema:"jsonl (default) or csv"`
	IncludeRejected bool   `json:"include_rejected,omitempty" jsonschema:"include rejected annotations for lossless backup"`
}

// AnnotationExportOutput is the output schema for the annotation_export tool.
type AnnotationExportOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// AnnotationAuditInput is the input schema for the annotation_audit tool.
type AnnotationAuditInput struct {
	SessionID    string `json:"session_id" jsonschema:"the annotation session"`
	AnnotationID string `json:"annotation_id,omitempty" jsonschema:"restrict to one annotation"`
}

// AuditEventOutput represents one audit trail entry.
type AuditEventOutput struct {
	ID           string `json:"id"`
	AnnotationID string `json:"annotation_id"`
	Action       string `json:"action"`
	FromStatus   string `json:"from_status,omitempty"`
	ToStatus     string `json:"to_status"`
	Actor        string `json:"actor"`
	Timestamp    string `json:"timestamp"`
}

// AnnotationAuditOutput is the output schema for the annotation_audit tool.
type AnnotationAuditOutput struct {
	Events []AuditEventOutput `json:"events"`
	Count  int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze",
		Description: "Detect simplification strategies in a source/target text pair",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_create",
		Description: "Create an annotation session over a text pair",
	}, s.handleSessionCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotation_create",
		Description: "Add a human annotation to a session",
	}, s.handleAnnotationCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotation_patch",
		Description: "Accept, reject or modify an annotation",
	}, s.handleAnnotationPatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotation_search",
		Description: "List annotations in a session matching a filter",
	}, s.handleAnnotationSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotation_export",
		Description: "Export a session's annotations as JSONL or CSV",
	}, s.handleAnnotationExport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotation_audit",
		Description: "Read the append-only audit trail for a session or annotation",
	}, s.handleAnnotationAudit)
}

// handleAnalyze handles the analyze tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	threshold := input.Threshold
	if threshold == 0 && s.ports.Config != nil {
		threshold = s.ports.Config.GetFloat("alignment.threshold")
	}

	req := domain.AnalysisRequest{
		SourceText: input.SourceText,
		TargetText: input.TargetText,
		Options: domain.AnalysisOptions{
			Threshold:               threshold,
			EnableOmissionDetection: input.DetectOmissions,
			SegmentParagraphs:       input.Paragraphs,
		},
	}

	result, err := s.ports.Analysis.Analyze(ctx, req)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	output := AnalyzeOutput{
		Strategies:     make([]StrategyOutput, len(result.Strategies)),
		SourceSegments: result.Metadata.SourceSegments,
		TargetSegments: result.Metadata.TargetSegments,
		AlignedPairs:   result.Metadata.AlignedPairs,
		Degraded:       result.Metadata.Degraded,
		EmbeddingModel: result.Metadata.EmbeddingModel,
	}

	for i := range result.Strategies {
		output.Strategies[i] = toStrategyOutput(&result.Strategies[i])
	}

	for _, c := range result.Metadata.OmissionCandidates {
		output.OmissionCandidates = append(output.OmissionCandidates, OmissionOutput{
			SourceIndex: c.SourceIndex,
			Text:        c.Text,
			Start:       c.Offsets.Start,
			End:         c.Offsets.End,
		})
	}

	if input.SessionID != "" {
		committed, err := s.ports.Annotation.CommitPredictions(ctx, input.SessionID, result.Strategies)
		if err != nil {
			return nil, AnalyzeOutput{}, fmt.Errorf("committing predictions: %w", err)
		}
		output.Committed = len(committed)
	}

	return nil, output, nil
}

// handleSessionCreate handles the session_create tool invocation.
func (s *Server) handleSessionCreate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionCreateInput,
) (*mcp.CallToolResult, SessionCreateOutput, error) {
	session, err := s.ports.Annotation.CreateSession(ctx, input.Name, input.SourceText, input.TargetText)
	if err != nil {
		return nil, SessionCreateOutput{}, err
	}

	return nil, SessionCreateOutput{SessionID: session.ID, Name: session.Name}, nil
}

// handleAnnotationCreate handles the annotation_create tool invocation.
func (s *Server) handleAnnotationCreate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotationCreateInput,
) (*mcp.CallToolResult, AnnotationOutput, error) {
	req := driving.CreateRequest{
		Code:          domain.StrategyCode(input.Code),
		TargetOffsets: domain.Offset{Start: input.TargetStart, End: input.TargetEnd},
		Comment:       input.Comment,
	}
	if input.SourceStart != nil && input.SourceEnd != nil {
		req.SourceOffsets = &domain.Offset{Start: *input.SourceStart, End: *input.SourceEnd}
	}

	annotation, err := s.ports.Annotation.Create(ctx, input.SessionID, req)
	if err != nil {
		return nil, AnnotationOutput{}, err
	}

	return nil, toAnnotationOutput(annotation), nil
}

// handleAnnotationPatch handles the annotation_patch tool invocation.
func (s *Server) handleAnnotationPatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotationPatchInput,
) (*mcp.CallToolResult, AnnotationPatchOutput, error) {
	action := driving.PatchAction(input.Action)

	// Reject has no result annotation.
	if action == driving.PatchReject {
		if err := s.ports.Annotation.Reject(ctx, input.AnnotationID); err != nil {
			return nil, AnnotationPatchOutput{}, err
		}
		return nil, AnnotationPatchOutput{Rejected: true}, nil
	}

	req := driving.PatchRequest{
		Action:  action,
		NewCode: domain.StrategyCode(input.NewCode),
		Comment: input.Comment,
	}
	if input.NewStart != nil && input.NewEnd != nil {
		req.NewOffsets = &domain.Offset{Start: *input.NewStart, End: *input.NewEnd}
	}

	annotation, err := s.ports.Annotation.Patch(ctx, input.AnnotationID, req)
	if err != nil {
		return nil, AnnotationPatchOutput{}, err
	}

	out := toAnnotationOutput(annotation)
	return nil, AnnotationPatchOutput{Annotation: &out}, nil
}

// handleAnnotationSearch handles the annotation_search tool invocation.
func (s *Server) handleAnnotationSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotationSearchInput,
) (*mcp.CallToolResult, AnnotationSearchOutput, error) {
	filter := domain.AnnotationFilter{
		Status:          domain.AnnotationStatus(input.Status),
		Code:            domain.StrategyCode(input.Code),
		Origin:          domain.AnnotationOrigin(input.Origin),
		Validated:       input.Gold,
		IncludeRejected: input.IncludeRejected,
	}

	annotations, err := s.ports.Annotation.Search(ctx, input.SessionID, filter)
	if err != nil {
		return nil, AnnotationSearchOutput{}, err
	}

	output := AnnotationSearchOutput{
		Annotations: make([]AnnotationOutput, len(annotations)),
		Count:       len(annotations),
	}
	for i := range annotations {
		output.Annotations[i] = toAnnotationOutput(&annotations[i])
	}

	return nil, output, nil
}

// handleAnnotationExport handles the annotation_export tool invocation.
func (s *Server) handleAnnotationExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotationExportInput,
) (*mcp.CallToolResult, AnnotationExportOutput, error) {
	format := driving.ExportFormat(input.Format)
	if input.Format == "" {
		format = driving.ExportJSONL
	}
	if !format.IsValid() {
		return nil, AnnotationExportOutput{}, fmt.Errorf("unknown export format %q", input.Format)
	}

	opts := driving.ExportOptions{IncludeRejected: input.IncludeRejected}
	var buf bytes.Buffer
	if err := s.ports.Annotation.Export(ctx, input.SessionID, format, opts, &buf); err != nil {
		return nil, AnnotationExportOutput{}, err
	}

	return nil, AnnotationExportOutput{Format: string(format), Content: buf.String()}, nil
}

// handleAnnotationAudit handles the annotation_audit tool invocation.
func (s *Server) handleAnnotationAudit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotationAuditInput,
) (*mcp.CallToolResult, AnnotationAuditOutput, error) {
	events, err := s.ports.Annotation.Audit(ctx, input.SessionID, input.AnnotationID)
	if err != nil {
		return nil, AnnotationAuditOutput{}, err
	}

	output := AnnotationAuditOutput{
		Events: make([]AuditEventOutput, len(events)),
		Count:  len(events),
	}
	for i, e := range events {
		output.Events[i] = AuditEventOutput{
			ID:           e.ID,
			AnnotationID: e.AnnotationID,
			Action:       string(e.Action),
			FromStatus:   string(e.FromStatus),
			ToStatus:     string(e.ToStatus),
			Actor:        e.Actor,
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

func toStrategyOutput(s *domain.Strategy) StrategyOutput {
	out := StrategyOutput{
		ID:                 s.ID,
		Code:               string(s.Code),
		Description:        s.Code.Description(),
		Confidence:         s.Confidence,
		TargetStart:        s.TargetOffsets.Start,
		TargetEnd:          s.TargetOffsets.End,
		ApproximateOffsets: s.ApproximateOffsets,
		Evidence:           s.EvidenceSummary,
	}
	if s.SourceOffsets != nil {
		start, end := s.SourceOffsets.Start, s.SourceOffsets.End
		out.SourceStart, out.SourceEnd = &start, &end
	}
	return out
}

func toAnnotationOutput(a *domain.Annotation) AnnotationOutput {
	out := AnnotationOutput{
		ID:          a.ID,
		SessionID:   a.SessionID,
		Code:        string(a.Code),
		Status:      string(a.Status),
		Origin:      string(a.Origin),
		Confidence:  a.Confidence,
		TargetStart: a.TargetOffsets.Start,
		TargetEnd:   a.TargetOffsets.End,
		Comment:     a.Comment,
		Validated:   a.Validated,
	}
	if a.OriginalCode != "" {
		out.OriginalCode = string(a.OriginalCode)
	}
	if a.SourceOffsets != nil {
		start, end := a.SourceOffsets.Start, a.SourceOffsets.End
		out.SourceStart, out.SourceEnd = &start, &end
	}
	return out
}
