package domain

// Named features computed per aligned pair.
// All features are pure functions of the two segment texts.
const (
	// FeatureSemanticSimilarity is the aligner's similarity for the pair, [0,1].
	FeatureSemanticSimilarity = "semantic_similarity"

	// FeatureVocabularyOverlap is the Jaccard overlap of lowercased tokens, [0,1].
	FeatureVocabularyOverlap = "vocabulary_overlap"

	// FeatureWordComplexityReduction is the normalized drop in mean word
	// complexity from source to target. Positive when the target is simpler.
	FeatureWordComplexityReduction = "word_complexity_reduction"

	// FeatureSentenceCountRatio is target sentence count over source sentence count.
	FeatureSentenceCountRatio = "sentence_count_ratio"

	// FeatureCompressionRatio is len(target)/len(source) in characters.
	FeatureCompressionRatio = "compression_ratio"

	// FeatureLengthRatio is target token count over source token count.
	FeatureLengthRatio = "length_ratio"

	// FeatureWordOrderDivergence is the normalized displacement of shared
	// tokens between the two segments, [0,1].
	FeatureWordOrderDivergence = "word_order_divergence"
)

// FeatureVector maps feature names to values for one aligned pair.
type FeatureVector map[string]float64

// Get returns the named feature, or 0 if absent.
func (v FeatureVector) Get(name string) float64 {
	return v[name]
}

// Clone returns an independent copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
