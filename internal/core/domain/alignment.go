package domain

// AlignedPair is a correspondence between one source and one target segment.
// At most one target is assigned per source (greedy, unique assignment).
type AlignedPair struct {
	// SourceIndex is the index of the source segment.
	SourceIndex int

	// TargetIndex is the index of the matched target segment.
	TargetIndex int

	// Similarity is the semantic similarity score in [0,1].
	Similarity float64
}

// Alignment is the full result of aligning a source/target segment list pair.
type Alignment struct {
	// Pairs are the committed source→target matches, in source order.
	Pairs []AlignedPair

	// UnalignedSource lists source segment indices with no match above
	// the threshold. Candidates for omission review.
	UnalignedSource []int

	// Matrix is the full similarity matrix, Matrix[i][j] being the
	// similarity between source segment i and target segment j.
	// Kept for diagnostics; not persisted.
	Matrix [][]float64

	// Threshold is the minimum similarity used for this alignment.
	Threshold float64
}
