package domain

import "fmt"

// Offset is the canonical character span [Start, End) within a text.
// All offset shapes are normalized to this record at the ingestion boundary.
type Offset struct {
	// Start is the inclusive start position.
	Start int `json:"start"`

	// End is the exclusive end position.
	End int `json:"end"`
}

// Validate checks the span against a text of the given length.
// The invariant is 0 <= Start < End <= textLen.
func (o Offset) Validate(textLen int) error {
	if o.Start < 0 || o.End <= o.Start || o.End > textLen {
		return fmt.Errorf("%w: [%d,%d) in text of length %d",
			ErrOffsetOutOfBounds, o.Start, o.End, textLen)
	}
	return nil
}

// Len returns the span length.
func (o Offset) Len() int {
	return o.End - o.Start
}
