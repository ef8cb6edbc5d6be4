package driven

import (
	"context"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// SessionStore persists annotation sessions.
type SessionStore interface {
	// Save stores or updates a session.
	Save(ctx context.Context, session domain.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes a session, its annotations and audit trail.
	Delete(ctx context.Context, id string) error
}

// AnnotationStore persists annotations and their append-only audit trail.
// Backed by SQLite for durable storage.
type AnnotationStore interface {
	// Save stores or updates an annotation.
	Save(ctx context.Context, annotation domain.Annotation) error

	// Get retrieves an annotation by ID.
	Get(ctx context.Context, id string) (*domain.Annotation, error)

	// List returns annotations for a session matching the filter.
	List(ctx context.Context, sessionID string, filter domain.AnnotationFilter) ([]domain.Annotation, error)

	// AppendAudit appends an audit event. Events are never updated or deleted.
	AppendAudit(ctx context.Context, event domain.AuditEvent) error

	// ListAudit returns audit events for an annotation in timestamp order.
	// An empty annotationID returns the full trail for the session.
	ListAudit(ctx context.Context, sessionID, annotationID string) ([]domain.AuditEvent, error)
}
