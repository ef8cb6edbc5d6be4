package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

func newTestServer(t *testing.T, analysis *mockAnalysisService, annotation *mockAnnotationService) *Server {
	t.Helper()
	if analysis == nil {
		analysis = &mockAnalysisService{}
	}
	if annotation == nil {
		annotation = &mockAnnotationService{}
	}
	server, err := NewServer(&Ports{Analysis: analysis, Annotation: annotation})
	require.NoError(t, err)
	return server
}

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("returns detected strategies", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{
			result: &domain.AnalysisResult{
				Strategies: []domain.Strategy{
					{
						ID:              "st-abc123",
						Code:            domain.CodeLexicalSimplification,
						Confidence:      0.92,
						SourceOffsets:   &domain.Offset{Start: 0, End: 40},
						TargetOffsets:   domain.Offset{Start: 0, End: 25},
						EvidenceSummary: "rule sl-substitution",
					},
				},
				Metadata: domain.AnalysisMetadata{
					SourceSegments: 2,
					TargetSegments: 2,
					AlignedPairs:   2,
					EmbeddingModel: "feature-hashing",
				},
			},
		}

		server := newTestServer(t, mockAnalysis, nil)

		input := AnalyzeInput{SourceText: "complex", TargetText: "simple"}
		_, output, err := server.handleAnalyze(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Strategies, 1)
		assert.Equal(t, "SL+", output.Strategies[0].Code)
		assert.Equal(t, 0.92, output.Strategies[0].Confidence)
		require.NotNil(t, output.Strategies[0].SourceStart)
		assert.Equal(t, 0, *output.Strategies[0].SourceStart)
		assert.Equal(t, 40, *output.Strategies[0].SourceEnd)
		assert.Equal(t, 2, output.AlignedPairs)
		assert.False(t, output.Degraded)
		assert.Zero(t, output.Committed)
	})

	t.Run("commits predictions when session given", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{
			result: &domain.AnalysisResult{
				Strategies: []domain.Strategy{{ID: "st-1", Code: domain.CodeCompression}},
			},
		}
		mockAnnotation := &mockAnnotationService{
			committed: []domain.Annotation{{ID: "ann-1"}},
		}

		server := newTestServer(t, mockAnalysis, mockAnnotation)

		input := AnalyzeInput{SourceText: "a", TargetText: "b", SessionID: "ses-1"}
		_, output, err := server.handleAnalyze(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Committed)
	})

	t.Run("returns error on analysis failure", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{err: errors.New("segmentation failed")}
		server := newTestServer(t, mockAnalysis, nil)

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "segmentation failed")
	})

	t.Run("falls back to configured threshold", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{}
		cfg := &mockConfigStore{values: map[string]any{"alignment.threshold": 0.55}}

		server, err := NewServer(&Ports{
			Analysis:   mockAnalysis,
			Annotation: &mockAnnotationService{},
			Config:     cfg,
		})
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{SourceText: "a", TargetText: "b"})
		require.NoError(t, err)
		assert.Equal(t, 0.55, mockAnalysis.lastRequest.Options.Threshold)

		// An explicit threshold wins over the configured one.
		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{SourceText: "a", TargetText: "b", Threshold: 0.8})
		require.NoError(t, err)
		assert.Equal(t, 0.8, mockAnalysis.lastRequest.Options.Threshold)

		// A reloaded value takes effect on the next call.
		require.NoError(t, cfg.Set("alignment.threshold", 0.4))
		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{SourceText: "a", TargetText: "b"})
		require.NoError(t, err)
		assert.Equal(t, 0.4, mockAnalysis.lastRequest.Options.Threshold)
	})

	t.Run("surfaces omission candidates", func(t *testing.T) {
		mockAnalysis := &mockAnalysisService{
			result: &domain.AnalysisResult{
				Metadata: domain.AnalysisMetadata{
					OmissionCandidates: []domain.OmissionCandidate{
						{SourceIndex: 3, Text: "dropped sentence", Offsets: domain.Offset{Start: 80, End: 96}},
					},
				},
			},
		}

		server := newTestServer(t, mockAnalysis, nil)

		_, output, err := server.handleAnalyze(ctx, nil, AnalyzeInput{DetectOmissions: true})

		require.NoError(t, err)
		require.Len(t, output.OmissionCandidates, 1)
		assert.Equal(t, 3, output.OmissionCandidates[0].SourceIndex)
		assert.Equal(t, "dropped sentence", output.OmissionCandidates[0].Text)
	})
}

func TestServer_handleSessionCreate(t *testing.T) {
	ctx := context.Background()

	server := newTestServer(t, nil, &mockAnnotationService{})

	input := SessionCreateInput{Name: "demo", SourceText: "complex", TargetText: "simple"}
	_, output, err := server.handleSessionCreate(ctx, nil, input)

	require.NoError(t, err)
	assert.Equal(t, "ses-1", output.SessionID)
	assert.Equal(t, "demo", output.Name)
}

func TestServer_handleAnnotationCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates human annotation", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{
			annotation: &domain.Annotation{
				ID:            "ann-1",
				SessionID:     "ses-1",
				Code:          domain.CodeSelectiveOmission,
				Status:        domain.StatusCreated,
				Origin:        domain.OriginHuman,
				TargetOffsets: domain.Offset{Start: 5, End: 10},
			},
		}

		server := newTestServer(t, nil, mockAnnotation)

		input := AnnotationCreateInput{
			SessionID:   "ses-1",
			Code:        "OM+",
			TargetStart: 5,
			TargetEnd:   10,
		}
		_, output, err := server.handleAnnotationCreate(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "ann-1", output.ID)
		assert.Equal(t, "OM+", output.Code)
		assert.Equal(t, "created", output.Status)
		assert.Equal(t, "human", output.Origin)
	})

	t.Run("returns error on invalid code", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{err: domain.ErrInvalidInput}
		server := newTestServer(t, nil, mockAnnotation)

		_, _, err := server.handleAnnotationCreate(ctx, nil, AnnotationCreateInput{Code: "??"})

		require.Error(t, err)
	})
}

func TestServer_handleAnnotationPatch(t *testing.T) {
	ctx := context.Background()

	t.Run("accept returns updated annotation", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{
			annotation: &domain.Annotation{
				ID:        "ann-1",
				Status:    domain.StatusAccepted,
				Validated: true,
			},
		}

		server := newTestServer(t, nil, mockAnnotation)

		input := AnnotationPatchInput{AnnotationID: "ann-1", Action: "accept"}
		_, output, err := server.handleAnnotationPatch(ctx, nil, input)

		require.NoError(t, err)
		require.NotNil(t, output.Annotation)
		assert.Equal(t, "accepted", output.Annotation.Status)
		assert.True(t, output.Annotation.Validated)
	})

	t.Run("reject has no result annotation", func(t *testing.T) {
		server := newTestServer(t, nil, &mockAnnotationService{})

		input := AnnotationPatchInput{AnnotationID: "ann-1", Action: "reject"}
		_, output, err := server.handleAnnotationPatch(ctx, nil, input)

		require.NoError(t, err)
		assert.Nil(t, output.Annotation)
		assert.True(t, output.Rejected)
	})

	t.Run("modify passes new code and offsets", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{
			annotation: &domain.Annotation{
				ID:           "ann-1",
				Code:         domain.CodeSentenceMerging,
				OriginalCode: domain.CodeCompression,
				Status:       domain.StatusModified,
			},
		}

		server := newTestServer(t, nil, mockAnnotation)

		start, end := 2, 8
		input := AnnotationPatchInput{
			AnnotationID: "ann-1",
			Action:       "modify",
			NewCode:      "MG+",
			NewStart:     &start,
			NewEnd:       &end,
		}
		_, output, err := server.handleAnnotationPatch(ctx, nil, input)

		require.NoError(t, err)
		require.NotNil(t, output.Annotation)
		assert.Equal(t, "MG+", output.Annotation.Code)
		assert.Equal(t, "CP+", output.Annotation.OriginalCode)
		assert.Equal(t, "modified", output.Annotation.Status)
	})
}

func TestServer_handleAnnotationSearch(t *testing.T) {
	ctx := context.Background()

	mockAnnotation := &mockAnnotationService{
		annotations: []domain.Annotation{
			{ID: "ann-1", Code: domain.CodeLexicalSimplification, Status: domain.StatusPending},
			{ID: "ann-2", Code: domain.CodeSentenceSplitting, Status: domain.StatusAccepted, Validated: true},
		},
	}

	server := newTestServer(t, nil, mockAnnotation)

	input := AnnotationSearchInput{SessionID: "ses-1"}
	_, output, err := server.handleAnnotationSearch(ctx, nil, input)

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "ann-1", output.Annotations[0].ID)
	assert.True(t, output.Annotations[1].Validated)
}

func TestServer_handleAnnotationExport(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to jsonl", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{exported: `{"id":"ann-1"}` + "\n"}
		server := newTestServer(t, nil, mockAnnotation)

		input := AnnotationExportInput{SessionID: "ses-1"}
		_, output, err := server.handleAnnotationExport(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "jsonl", output.Format)
		assert.Contains(t, output.Content, "ann-1")
		assert.False(t, mockAnnotation.exportOpts.IncludeRejected)
	})

	t.Run("passes include_rejected through", func(t *testing.T) {
		mockAnnotation := &mockAnnotationService{}
		server := newTestServer(t, nil, mockAnnotation)

		input := AnnotationExportInput{SessionID: "ses-1", IncludeRejected: true}
		_, _, err := server.handleAnnotationExport(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, mockAnnotation.exportOpts.IncludeRejected)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		server := newTestServer(t, nil, &mockAnnotationService{})

		input := AnnotationExportInput{SessionID: "ses-1", Format: "xml"}
		_, _, err := server.handleAnnotationExport(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown export format")
	})
}

func TestServer_handleAnnotationAudit(t *testing.T) {
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mockAnnotation := &mockAnnotationService{
		events: []domain.AuditEvent{
			{
				ID:           "evt-1",
				AnnotationID: "ann-1",
				Action:       domain.ActionCreate,
				ToStatus:     domain.StatusPending,
				Actor:        "pipeline",
				Timestamp:    ts,
			},
			{
				ID:           "evt-2",
				AnnotationID: "ann-1",
				Action:       domain.ActionAccept,
				FromStatus:   domain.StatusPending,
				ToStatus:     domain.StatusAccepted,
				Actor:        "reviewer",
				Timestamp:    ts.Add(time.Minute),
			},
		},
	}

	server := newTestServer(t, nil, mockAnnotation)

	input := AnnotationAuditInput{SessionID: "ses-1", AnnotationID: "ann-1"}
	_, output, err := server.handleAnnotationAudit(ctx, nil, input)

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "create", output.Events[0].Action)
	assert.Empty(t, output.Events[0].FromStatus)
	assert.Equal(t, "2025-06-01T12:00:00Z", output.Events[0].Timestamp)
	assert.Equal(t, "accept", output.Events[1].Action)
	assert.Equal(t, "pending", output.Events[1].FromStatus)
}
