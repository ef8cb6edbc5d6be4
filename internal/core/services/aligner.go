package services

import (
	"context"
	"fmt"
	"math"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// DefaultAlignmentThreshold is the minimum similarity for committing a pair.
const DefaultAlignmentThreshold = 0.5

// Aligner matches source segments to target segments by semantic similarity.
// Assignment is greedy in source order with unique targets; ties break to
// the lowest target index, so results are deterministic for fixed embeddings.
type Aligner struct {
	embedding driven.EmbeddingService
}

// NewAligner creates an aligner. The embedding service is optional; when nil
// or unreachable the aligner falls back to lexical similarity and reports
// the alignment as degraded.
func NewAligner(embedding driven.EmbeddingService) *Aligner {
	return &Aligner{embedding: embedding}
}

// Align builds the similarity matrix and commits greedy unique pairs at or
// above the threshold. The returned bool is true when the aligner ran in
// degraded (lexical-only) mode.
func (a *Aligner) Align(
	ctx context.Context, source, target []domain.Segment, threshold float64,
) (*domain.Alignment, bool, error) {
	if len(source) == 0 {
		return nil, false, fmt.Errorf("%w: source %s", domain.ErrInvalidInput, domain.ErrEmptyText)
	}
	if len(target) == 0 {
		return nil, false, fmt.Errorf("%w: target %s", domain.ErrInvalidInput, domain.ErrEmptyText)
	}
	if threshold <= 0 {
		threshold = DefaultAlignmentThreshold
	}

	logger.Section("Segment Alignment")
	logger.Debug("Source segments: %d, target segments: %d, threshold: %.2f",
		len(source), len(target), threshold)

	matrix, degraded := a.similarityMatrix(ctx, source, target)
	if degraded {
		logger.Warn("Embedding unavailable, alignment degraded to lexical similarity")
	}

	alignment := greedyAssign(matrix, threshold)
	alignment.Threshold = threshold

	logger.Info("Alignment: %d pairs, %d unaligned source segments",
		len(alignment.Pairs), len(alignment.UnalignedSource))

	return alignment, degraded, nil
}

// similarityMatrix computes pairwise similarity, preferring embeddings and
// falling back to lexical similarity when the provider fails.
func (a *Aligner) similarityMatrix(
	ctx context.Context, source, target []domain.Segment,
) ([][]float64, bool) {
	if a.embedding == nil {
		return lexicalMatrix(source, target), true
	}

	texts := make([]string, 0, len(source)+len(target))
	for _, s := range source {
		texts = append(texts, s.Text)
	}
	for _, t := range target {
		texts = append(texts, t.Text)
	}

	vectors, err := a.embedding.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		logger.Warn("Embedding batch failed: %v", err)
		return lexicalMatrix(source, target), true
	}

	sourceVecs := vectors[:len(source)]
	targetVecs := vectors[len(source):]

	matrix := make([][]float64, len(source))
	for i := range sourceVecs {
		matrix[i] = make([]float64, len(target))
		for j := range targetVecs {
			matrix[i][j] = cosineSimilarity01(sourceVecs[i], targetVecs[j])
		}
	}
	return matrix, false
}

// lexicalMatrix builds a similarity matrix from token overlap only.
func lexicalMatrix(source, target []domain.Segment) [][]float64 {
	targetSets := make([]map[string]struct{}, len(target))
	for j, t := range target {
		targetSets[j] = tokenSet(t.Text)
	}

	matrix := make([][]float64, len(source))
	for i, s := range source {
		sourceSet := tokenSet(s.Text)
		matrix[i] = make([]float64, len(target))
		for j := range target {
			matrix[i][j] = dice(sourceSet, targetSets[j])
		}
	}
	return matrix
}

// greedyAssign commits, for each source segment in order, the unused target
// with the highest similarity, provided it reaches the threshold.
func greedyAssign(matrix [][]float64, threshold float64) *domain.Alignment {
	alignment := &domain.Alignment{Matrix: matrix}
	used := make([]bool, 0)
	if len(matrix) > 0 {
		used = make([]bool, len(matrix[0]))
	}

	for i := range matrix {
		best := -1
		bestScore := 0.0
		for j := range matrix[i] {
			if used[j] {
				continue
			}
			// Strict > keeps the lowest target index on ties.
			if best == -1 || matrix[i][j] > bestScore {
				best = j
				bestScore = matrix[i][j]
			}
		}

		if best >= 0 && bestScore >= threshold {
			used[best] = true
			alignment.Pairs = append(alignment.Pairs, domain.AlignedPair{
				SourceIndex: i,
				TargetIndex: best,
				Similarity:  bestScore,
			})
		} else {
			alignment.UnalignedSource = append(alignment.UnalignedSource, i)
		}
	}

	return alignment
}

// cosineSimilarity01 maps cosine similarity from [-1,1] into [0,1].
func cosineSimilarity01(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	scaled := (1 + cos) / 2
	return math.Max(0, math.Min(1, scaled))
}
