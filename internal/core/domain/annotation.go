package domain

import "time"

// AnnotationStatus is the lifecycle state of an annotation.
type AnnotationStatus string

// Annotation lifecycle states.
const (
	// StatusPending is a machine prediction awaiting review.
	StatusPending AnnotationStatus = "pending"

	// StatusAccepted is a reviewed and validated annotation. Terminal.
	StatusAccepted AnnotationStatus = "accepted"

	// StatusRejected excludes the annotation from the active set. Terminal.
	StatusRejected AnnotationStatus = "rejected"

	// StatusModified is a machine prediction whose code or offsets were
	// changed by a reviewer.
	StatusModified AnnotationStatus = "modified"

	// StatusCreated is a human-authored annotation.
	StatusCreated AnnotationStatus = "created"
)

// IsValid returns true if the status is recognised.
func (s AnnotationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusModified, StatusCreated:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are expected.
func (s AnnotationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// AnnotationOrigin records who produced an annotation.
type AnnotationOrigin string

// Annotation origins.
const (
	// OriginMachine marks a pipeline prediction.
	OriginMachine AnnotationOrigin = "machine"

	// OriginHuman marks a reviewer-authored annotation.
	OriginHuman AnnotationOrigin = "human"
)

// IsValid returns true if the origin is recognised.
func (o AnnotationOrigin) IsValid() bool {
	return o == OriginMachine || o == OriginHuman
}

// Annotation is the durable record reconciling a machine prediction with
// human review actions.
type Annotation struct {
	// ID is the unique identifier.
	ID string

	// SessionID links to the annotation session this record belongs to.
	SessionID string

	// StrategyID is the stable pipeline identity for machine predictions.
	// Empty for human-created annotations.
	StrategyID string

	// Code is the current strategy code.
	Code StrategyCode

	// OriginalCode is the code before the first modification.
	// Set once, never overwritten by later modifications.
	OriginalCode StrategyCode

	// SourceOffsets locates the annotation in the source text, if known.
	SourceOffsets *Offset

	// TargetOffsets locates the annotation in the target text.
	TargetOffsets Offset

	// Status is the lifecycle state.
	Status AnnotationStatus

	// Origin records machine or human provenance.
	Origin AnnotationOrigin

	// Confidence is the pipeline confidence for machine predictions.
	Confidence float64

	// Comment is an optional reviewer note.
	Comment string

	// Validated is true once the annotation has been accepted.
	Validated bool

	// CreatedAt is when the annotation was first recorded.
	CreatedAt time.Time

	// UpdatedAt is when the annotation was last mutated.
	UpdatedAt time.Time
}

// Active returns true if the annotation belongs to the active set
// (everything not rejected).
func (a Annotation) Active() bool {
	return a.Status != StatusRejected
}

// Gold returns true for human-validated annotations suitable for
// downstream training use.
func (a Annotation) Gold() bool {
	return a.Validated
}
