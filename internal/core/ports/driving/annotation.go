package driving

import (
	"context"
	"io"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// CreateRequest is a human-authored annotation.
type CreateRequest struct {
	// Code is the strategy code being annotated.
	Code domain.StrategyCode

	// TargetOffsets locates the annotation in the target text.
	TargetOffsets domain.Offset

	// SourceOffsets optionally locates the annotation in the source text.
	SourceOffsets *domain.Offset

	// Comment is an optional reviewer note.
	Comment string
}

// PatchAction selects a mutation applied through Patch.
type PatchAction string

// Patch actions.
const (
	PatchAccept     PatchAction = "accept"
	PatchReject     PatchAction = "reject"
	PatchModify     PatchAction = "modify"
	PatchModifySpan PatchAction = "modify_span"
)

// PatchRequest mutates an existing annotation.
type PatchRequest struct {
	// Action selects the mutation.
	Action PatchAction

	// NewCode replaces the strategy code (modify only).
	NewCode domain.StrategyCode

	// NewOffsets replaces the target offsets (modify and modify_span).
	NewOffsets *domain.Offset

	// Comment is an optional reviewer note attached to the mutation.
	Comment string
}

// ExportFormat selects the export encoding.
type ExportFormat string

// Export formats.
const (
	ExportJSONL ExportFormat = "jsonl"
	ExportCSV   ExportFormat = "csv"
)

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	return f == ExportJSONL || f == ExportCSV
}

// ExportOptions scopes what an export covers.
type ExportOptions struct {
	// IncludeRejected adds rejected annotations to the export for
	// lossless backup. By default only the active set is exported.
	IncludeRejected bool
}

// AnnotationService reconciles machine predictions with human review actions.
type AnnotationService interface {
	// CreateSession starts a new annotation session over a text pair.
	CreateSession(ctx context.Context, name, sourceText, targetText string) (*domain.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// CommitPredictions records pipeline strategies as pending machine
	// annotations. Previously committed predictions with the same stable
	// strategy identity keep their annotation ID.
	CommitPredictions(ctx context.Context, sessionID string, strategies []domain.Strategy) ([]domain.Annotation, error)

	// Create adds a human-authored annotation with status created.
	Create(ctx context.Context, sessionID string, req CreateRequest) (*domain.Annotation, error)

	// Accept marks an annotation accepted and validated.
	Accept(ctx context.Context, id string) (*domain.Annotation, error)

	// Reject excludes an annotation from the active set. The audit entry
	// is retained.
	Reject(ctx context.Context, id string) error

	// Patch applies an accept/reject/modify/modify_span action.
	Patch(ctx context.Context, id string, req PatchRequest) (*domain.Annotation, error)

	// Search returns annotations for a session matching the filter.
	Search(ctx context.Context, sessionID string, filter domain.AnnotationFilter) ([]domain.Annotation, error)

	// Export writes the session's active annotations in the given
	// format. Rejected annotations are excluded unless opts says
	// otherwise; their audit entries are retained either way.
	Export(ctx context.Context, sessionID string, format ExportFormat, opts ExportOptions, w io.Writer) error

	// Import restores annotations from an export stream, preserving
	// id, status and original_code.
	Import(ctx context.Context, sessionID string, format ExportFormat, r io.Reader) (int, error)

	// Audit returns the audit trail for one annotation, or for the whole
	// session when annotationID is empty.
	Audit(ctx context.Context, sessionID, annotationID string) ([]domain.AuditEvent, error)
}
