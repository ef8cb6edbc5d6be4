package domain

// AnalysisOptions configures one pipeline run.
type AnalysisOptions struct {
	// Threshold overrides the alignment similarity threshold when > 0.
	Threshold float64

	// EnableOmissionDetection surfaces unaligned source segments as
	// omission candidates in the response metadata. Candidates are
	// review hints only; omission is never machine-annotated.
	EnableOmissionDetection bool

	// SegmentParagraphs splits on blank lines instead of sentences.
	SegmentParagraphs bool
}

// AnalysisRequest is one source/target text pair to analyse.
type AnalysisRequest struct {
	// SourceText is the complex original.
	SourceText string

	// TargetText is the simplified version.
	TargetText string

	// Options tune the pipeline for this request.
	Options AnalysisOptions
}

// OmissionCandidate is an unaligned source segment reported for human review.
type OmissionCandidate struct {
	// SourceIndex is the unaligned source segment.
	SourceIndex int

	// Text is the segment content.
	Text string

	// Offsets locates the segment in the source text.
	Offsets Offset
}

// AnalysisMetadata describes how a result was produced.
type AnalysisMetadata struct {
	// SourceSegments is the number of source segments.
	SourceSegments int

	// TargetSegments is the number of target segments.
	TargetSegments int

	// AlignedPairs is the number of committed alignments.
	AlignedPairs int

	// Degraded is true when the embedding provider was unavailable and
	// the pipeline fell back to lexical-only similarity.
	Degraded bool

	// EmbeddingModel names the embedding model used, if any.
	EmbeddingModel string

	// OmissionCandidates lists unaligned source segments, only when
	// omission detection was requested.
	OmissionCandidates []OmissionCandidate
}

// AnalysisResult is the pipeline output for one request.
type AnalysisResult struct {
	// Strategies are the detected simplification strategies.
	Strategies []Strategy

	// Alignment is the segment alignment the strategies were derived from.
	Alignment Alignment

	// SourceSegments are the segmented source sentences.
	SourceSegments []Segment

	// TargetSegments are the segmented target sentences.
	TargetSegments []Segment

	// Metadata describes the run.
	Metadata AnalysisMetadata
}
