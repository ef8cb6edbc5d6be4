package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	// Validation failures are rejected before mutating any state.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownStrategyCode indicates a strategy code outside the taxonomy.
	ErrUnknownStrategyCode = errors.New("unknown strategy code")

	// ErrOffsetOutOfBounds indicates a character span outside the text.
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")

	// ErrEmptyText indicates an analysis input yielded zero segments.
	ErrEmptyText = errors.New("text produced no segments")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or not reachable. The pipeline degrades to lexical-only features.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEnhancementUnavailable indicates the enhancement provider is not
	// configured. Confidence falls back to the base score; never fatal.
	ErrEnhancementUnavailable = errors.New("enhancement provider unavailable")

	// ErrStoreUnavailable indicates the annotation store is not configured.
	ErrStoreUnavailable = errors.New("annotation store unavailable")
)
