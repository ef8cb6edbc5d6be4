package domain

import "time"

// Session is one annotation working set over a source/target text pair.
// Machine predictions and human annotations are reconciled within a session.
type Session struct {
	// ID is the unique identifier.
	ID string

	// Name is an optional human-readable label.
	Name string

	// SourceText is the complex original text.
	SourceText string

	// TargetText is the simplified text.
	TargetText string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// UpdatedAt is when the session was last touched.
	UpdatedAt time.Time
}

// AnnotationFilter selects annotations within a session.
// Zero-valued fields match everything.
type AnnotationFilter struct {
	// Status restricts to one lifecycle state.
	Status AnnotationStatus

	// Code restricts to one strategy code.
	Code StrategyCode

	// Origin restricts to machine or human provenance.
	Origin AnnotationOrigin

	// Validated restricts to gold annotations when true.
	Validated bool

	// IncludeRejected adds rejected annotations to the result.
	IncludeRejected bool
}
