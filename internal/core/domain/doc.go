// Package domain defines the core business entities for Clarita.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Segment: An ordered sentence/paragraph within one side of a text pair
//   - AlignedPair / Alignment: Source→target correspondence from semantic similarity
//   - FeatureVector: Named per-pair numeric features
//   - StrategyEvidence / Strategy: Detected simplification strategies
//   - Annotation / AuditEvent: The reconciled review record and its trail
//   - Session: One annotation working set over a text pair
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
