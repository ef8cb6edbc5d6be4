package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

const (
	complexSentence    = "O gato preto pulou sobre o muro alto."
	simplifiedSentence = "O felino escuro saltou sobre a parede elevada."
)

// pairedEmbedding aligns the spec scenario texts with high similarity.
func pairedEmbedding() *stubEmbedding {
	return &stubEmbedding{vectors: map[string][]float32{
		complexSentence:    {0.95, 0.3, 0},
		simplifiedSentence: {1, 0.25, 0},
	}}
}

func TestAnalysis_DetectsLexicalSimplification(t *testing.T) {
	pipeline := NewAnalysisPipeline(pairedEmbedding(), nil)

	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: complexSentence,
		TargetText: simplifiedSentence,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Strategies)
	found := false
	for _, s := range result.Strategies {
		if s.Code == domain.CodeLexicalSimplification {
			found = true
			assert.Greater(t, s.Confidence, 0.6)
			assert.LessOrEqual(t, s.Confidence, 1.0)
			assert.False(t, s.ApproximateOffsets)
			require.NotNil(t, s.SourceOffsets)
			assert.Equal(t, complexSentence, complexSentence[s.SourceOffsets.Start:s.SourceOffsets.End])
		}
	}
	assert.True(t, found, "expected SL+ for near-synonymous low-overlap pair")

	assert.False(t, result.Metadata.Degraded)
	assert.Equal(t, "stub", result.Metadata.EmbeddingModel)
	assert.Equal(t, 1, result.Metadata.SourceSegments)
	assert.Equal(t, 1, result.Metadata.AlignedPairs)
}

func TestAnalysis_EmptyTextRejected(t *testing.T) {
	pipeline := NewAnalysisPipeline(nil, nil)
	ctx := context.Background()

	_, err := pipeline.Analyze(ctx, domain.AnalysisRequest{SourceText: "", TargetText: "alvo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = pipeline.Analyze(ctx, domain.AnalysisRequest{SourceText: "fonte", TargetText: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalysis_DegradedModeScalesConfidence(t *testing.T) {
	failing := &stubEmbedding{err: errors.New("connection refused")}
	pipeline := NewAnalysisPipeline(failing, nil)

	// High lexical overlap keeps the pair aligned without embeddings.
	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: "o gato preto pulou o muro alto hoje cedo",
		TargetText: "o gato preto pulou o muro",
	})
	require.NoError(t, err)

	assert.True(t, result.Metadata.Degraded)
	assert.Empty(t, result.Metadata.EmbeddingModel)
	for _, s := range result.Strategies {
		assert.LessOrEqual(t, s.Confidence, degradedConfidenceFactor,
			"degraded confidences stay under the scaling factor")
	}
}

func TestAnalysis_NeverEmitsRestrictedCodes(t *testing.T) {
	pipeline := NewAnalysisPipeline(nil, nil)

	// Aggressive shortening would trigger omission evidence in the cascade.
	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: "o governo anunciou ontem um extenso pacote de medidas fiscais e tributárias",
		TargetText: "o governo anunciou medidas",
	})
	require.NoError(t, err)

	for _, s := range result.Strategies {
		assert.NotEqual(t, domain.CodeSelectiveOmission, s.Code)
		assert.NotEqual(t, domain.CodeSemanticDeviation, s.Code)
	}
}

func TestAnalysis_OmissionCandidatesInMetadataOnly(t *testing.T) {
	embedding := &stubEmbedding{vectors: map[string][]float32{
		"A primeira frase fala de gatos.":   {1, 0, 0},
		"A segunda frase fala de economia.": {0, 1, 0},
		"Os gatos dormem muito.":            {0.95, 0.05, 0},
	}}
	pipeline := NewAnalysisPipeline(embedding, nil)

	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: "A primeira frase fala de gatos. A segunda frase fala de economia.",
		TargetText: "Os gatos dormem muito.",
		Options:    domain.AnalysisOptions{EnableOmissionDetection: true},
	})
	require.NoError(t, err)

	require.Len(t, result.Metadata.OmissionCandidates, 1)
	candidate := result.Metadata.OmissionCandidates[0]
	assert.Equal(t, 1, candidate.SourceIndex)
	assert.Equal(t, "A segunda frase fala de economia.", candidate.Text)

	for _, s := range result.Strategies {
		assert.NotEqual(t, domain.CodeSelectiveOmission, s.Code)
	}
}

func TestAnalysis_OmissionCandidatesOffByDefault(t *testing.T) {
	pipeline := NewAnalysisPipeline(nil, nil)

	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: "frase alinhada aqui. frase totalmente sem par nenhum.",
		TargetText: "frase alinhada aqui.",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Metadata.OmissionCandidates)
}

func TestAnalysis_ParagraphSegmentation(t *testing.T) {
	pipeline := NewAnalysisPipeline(nil, nil)

	result, err := pipeline.Analyze(context.Background(), domain.AnalysisRequest{
		SourceText: "Primeira frase. Segunda frase.\n\nOutro parágrafo inteiro.",
		TargetText: "Primeira frase. Segunda frase.",
		Options:    domain.AnalysisOptions{SegmentParagraphs: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metadata.SourceSegments)
	assert.Equal(t, 1, result.Metadata.TargetSegments)
}

func TestAnalysis_StableStrategyIDsAcrossRuns(t *testing.T) {
	req := domain.AnalysisRequest{
		SourceText: complexSentence,
		TargetText: simplifiedSentence,
	}

	first, err := NewAnalysisPipeline(pairedEmbedding(), nil).Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := NewAnalysisPipeline(pairedEmbedding(), nil).Analyze(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, len(first.Strategies), len(second.Strategies))
	for i := range first.Strategies {
		assert.Equal(t, first.Strategies[i].ID, second.Strategies[i].ID)
	}
}
