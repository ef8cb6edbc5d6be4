package domain

// SegmentRole identifies which side of the text pair a segment belongs to.
type SegmentRole string

// Available segment roles.
const (
	// RoleSource is the complex original text.
	RoleSource SegmentRole = "source"

	// RoleTarget is the simplified text.
	RoleTarget SegmentRole = "target"
)

// IsValid returns true if the role is recognised.
func (r SegmentRole) IsValid() bool {
	return r == RoleSource || r == RoleTarget
}

// Segment is an ordered sentence or paragraph within one side of a text pair.
// Segments are created once per analysis request and never mutated.
type Segment struct {
	// Role marks the segment as source or target.
	Role SegmentRole

	// Index is the stable ordinal position within its role.
	Index int

	// Text is the segment content with surrounding whitespace trimmed.
	Text string

	// CharStart is the byte offset of the segment within the original text.
	CharStart int

	// CharEnd is the byte offset one past the segment end.
	CharEnd int
}

// HasPreciseOffsets returns true if the segment carries character-accurate
// boundaries into the original text.
func (s Segment) HasPreciseOffsets() bool {
	return s.CharStart >= 0 && s.CharEnd > s.CharStart
}
