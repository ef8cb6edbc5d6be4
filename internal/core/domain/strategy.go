package domain

// StrategyCode identifies a category of simplification technique.
type StrategyCode string

// Simplification strategy taxonomy.
const (
	// CodeLexicalSimplification marks substitution of complex vocabulary.
	CodeLexicalSimplification StrategyCode = "SL+"

	// CodeSentenceSplitting marks one source sentence split into several.
	CodeSentenceSplitting StrategyCode = "SP+"

	// CodeSentenceMerging marks several source sentences merged into one.
	CodeSentenceMerging StrategyCode = "MG+"

	// CodeCompression marks substantial content reduction without omission.
	CodeCompression StrategyCode = "CP+"

	// CodeExplicitation marks added explanatory material.
	CodeExplicitation StrategyCode = "EX+"

	// CodeReordering marks rearranged constituents with preserved vocabulary.
	CodeReordering StrategyCode = "RO+"

	// CodeSelectiveOmission marks deliberately dropped content.
	// Human-only: never emitted by the automatic pipeline.
	CodeSelectiveOmission StrategyCode = "OM+"

	// CodeSemanticDeviation marks a meaning shift in the target.
	// Human-only: never emitted by the automatic pipeline.
	CodeSemanticDeviation StrategyCode = "SD-"
)

// AllCodes lists every recognised strategy code.
var AllCodes = []StrategyCode{
	CodeLexicalSimplification,
	CodeSentenceSplitting,
	CodeSentenceMerging,
	CodeCompression,
	CodeExplicitation,
	CodeReordering,
	CodeSelectiveOmission,
	CodeSemanticDeviation,
}

// IsValid returns true if the code belongs to the taxonomy.
func (c StrategyCode) IsValid() bool {
	for _, code := range AllCodes {
		if c == code {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c StrategyCode) String() string {
	return string(c)
}

// Description returns a human-readable description of the strategy.
func (c StrategyCode) Description() string {
	switch c {
	case CodeLexicalSimplification:
		return "Lexical simplification (vocabulary substitution)"
	case CodeSentenceSplitting:
		return "Sentence splitting"
	case CodeSentenceMerging:
		return "Sentence merging"
	case CodeCompression:
		return "Compression (content reduction)"
	case CodeExplicitation:
		return "Explicitation (added material)"
	case CodeReordering:
		return "Reordering"
	case CodeSelectiveOmission:
		return "Selective omission"
	case CodeSemanticDeviation:
		return "Semantic deviation"
	default:
		return "Unknown"
	}
}

// StrategyEvidence is a feature-based justification that a strategy code
// applies to one aligned pair. Ephemeral: consumed by the confidence engine
// and never persisted standalone.
type StrategyEvidence struct {
	// Code is the strategy the evidence supports.
	Code StrategyCode

	// RuleID identifies the cascade rule that matched.
	RuleID string

	// Pair is the aligned pair the evidence refers to.
	Pair AlignedPair

	// Features is the feature vector the rule was evaluated against.
	Features FeatureVector
}

// Strategy is a machine prediction emitted by the analysis pipeline.
type Strategy struct {
	// ID is derived deterministically from (code, pair, rule) so the same
	// prediction is recognisable across repeated runs on identical input.
	ID string

	// Code is the detected strategy.
	Code StrategyCode

	// Confidence is the calibrated score in [0,1].
	Confidence float64

	// SourceOffsets locates the evidence in the source text.
	SourceOffsets *Offset

	// TargetOffsets locates the evidence in the target text.
	TargetOffsets Offset

	// ApproximateOffsets is true when offsets were reconstructed from
	// segment indices rather than taken from precise boundaries.
	ApproximateOffsets bool

	// EvidenceSummary names the matched rule and the driving features.
	EvidenceSummary string
}
