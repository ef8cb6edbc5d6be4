package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// FeatureExtractor computes a fixed feature vector per aligned pair.
// All features are pure functions of the two segment texts; nothing is
// retained across pairs.
type FeatureExtractor struct{}

// NewFeatureExtractor creates a feature extractor.
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// Extract computes the feature vector for one aligned pair. The similarity
// is reused from the aligner's matrix rather than recomputed.
func (e *FeatureExtractor) Extract(source, target domain.Segment, similarity float64) domain.FeatureVector {
	sourceTokens := tokenize(source.Text)
	targetTokens := tokenize(target.Text)
	sourceSet := tokenSet(source.Text)
	targetSet := tokenSet(target.Text)

	features := domain.FeatureVector{
		domain.FeatureSemanticSimilarity:      similarity,
		domain.FeatureVocabularyOverlap:       jaccard(sourceSet, targetSet),
		domain.FeatureWordComplexityReduction: complexityReduction(sourceTokens, targetTokens),
		domain.FeatureSentenceCountRatio:      sentenceCountRatio(source.Text, target.Text),
		domain.FeatureCompressionRatio:        lengthRatio(len(target.Text), len(source.Text)),
		domain.FeatureLengthRatio:             lengthRatio(len(targetTokens), len(sourceTokens)),
		domain.FeatureWordOrderDivergence:     orderDivergence(sourceTokens, targetTokens),
	}

	return features
}

// complexityReduction is the normalized drop in mean word complexity from
// source to target. Positive values mean the target vocabulary is simpler.
func complexityReduction(sourceTokens, targetTokens []string) float64 {
	src := meanComplexity(sourceTokens)
	tgt := meanComplexity(targetTokens)
	if src <= 0 {
		return 0
	}
	return (src - tgt) / src
}

// meanComplexity averages a per-word complexity proxy: word length in runes
// plus a penalty for long words, which correlates with frequency rank in
// the absence of a frequency table.
func meanComplexity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0.0
	for _, tok := range tokens {
		runes := utf8.RuneCountInString(tok)
		complexity := float64(runes)
		if runes > 7 {
			complexity += float64(runes-7) * 0.5
		}
		total += complexity
	}
	return total / float64(len(tokens))
}

// sentenceCountRatio is target sentence count over source sentence count.
func sentenceCountRatio(sourceText, targetText string) float64 {
	src := countSentences(sourceText)
	tgt := countSentences(targetText)
	if src == 0 {
		return 0
	}
	return float64(tgt) / float64(src)
}

func countSentences(text string) int {
	count := 0
	terminated := true
	for _, r := range text {
		if isSentenceTerminator(r) {
			if !terminated {
				count++
			}
			terminated = true
		} else if !strings.ContainsRune(" \t", r) {
			terminated = false
		}
	}
	if !terminated {
		count++
	}
	return count
}

// lengthRatio is a/b with a zero denominator guarded.
func lengthRatio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// orderDivergence measures how far shared tokens moved between the two
// segments, normalized to [0,1]. Tokens are matched by first occurrence.
func orderDivergence(sourceTokens, targetTokens []string) float64 {
	if len(sourceTokens) == 0 || len(targetTokens) == 0 {
		return 0
	}

	targetPos := make(map[string]int, len(targetTokens))
	for i := len(targetTokens) - 1; i >= 0; i-- {
		targetPos[targetTokens[i]] = i
	}

	shared := 0
	totalShift := 0.0
	for i, tok := range sourceTokens {
		j, ok := targetPos[tok]
		if !ok {
			continue
		}
		shared++
		srcRel := float64(i) / float64(len(sourceTokens))
		tgtRel := float64(j) / float64(len(targetTokens))
		totalShift += math.Abs(srcRel - tgtRel)
	}

	if shared == 0 {
		return 0
	}
	// Mean relative displacement, already in [0,1).
	return totalShift / float64(shared)
}
