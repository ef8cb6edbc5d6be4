package driven

import "context"

// ExtractionResult is one salience extraction over a text span.
type ExtractionResult struct {
	// Units are the salient units extracted, most salient first.
	Units []string

	// Scores are per-unit salience scores aligned with Units.
	Scores []float64

	// Quality is the provider's self-reported quality estimate in [0,1].
	Quality float64
}

// Comparison relates a base extraction to an enhanced one.
type Comparison struct {
	// QualityImprovement is enhanced quality minus base quality.
	QualityImprovement float64

	// Overlap is the fraction of base units present in the enhanced set.
	Overlap float64
}

// EnhancementProvider is an optional third-party salience service used to
// refine confidence scores. The engine must function correctly with this
// provider absent; failures degrade silently to the base score.
type EnhancementProvider interface {
	// Extract returns a base extraction and, when the provider supports it,
	// an enhanced extraction over the same text. The enhanced result may be
	// nil when enhancement is unavailable for the input.
	Extract(ctx context.Context, text string, maxUnits int, contextHint string) (base *ExtractionResult, enhanced *ExtractionResult, err error)

	// Compare relates a base extraction to an enhanced one.
	Compare(base, enhanced *ExtractionResult) Comparison

	// Name identifies the provider for logging and metadata.
	Name() string
}
