package domain

import "time"

// AuditAction is the operation recorded by an audit event.
type AuditAction string

// Audit actions. Every successful annotation mutation appends exactly one event.
const (
	// ActionCreate records an annotation coming into existence.
	ActionCreate AuditAction = "create"

	// ActionAccept records acceptance of an annotation.
	ActionAccept AuditAction = "accept"

	// ActionReject records rejection of an annotation.
	ActionReject AuditAction = "reject"

	// ActionModify records a code or offset change.
	ActionModify AuditAction = "modify"

	// ActionModifySpan records an offsets-only change.
	ActionModifySpan AuditAction = "modify_span"

	// ActionImport records an annotation restored from an export file.
	ActionImport AuditAction = "import"
)

// IsValid returns true if the action is recognised.
func (a AuditAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionAccept, ActionReject, ActionModify, ActionModifySpan, ActionImport:
		return true
	default:
		return false
	}
}

// AuditEvent is one entry in the append-only audit trail.
// Events are never mutated or deleted.
type AuditEvent struct {
	// ID is the unique identifier for the event.
	ID string

	// SessionID links to the session the annotation belongs to.
	SessionID string

	// AnnotationID links to the annotation the event concerns.
	AnnotationID string

	// Action is the operation performed.
	Action AuditAction

	// FromStatus is the lifecycle state before the action.
	// Empty for create and import.
	FromStatus AnnotationStatus

	// ToStatus is the lifecycle state after the action.
	ToStatus AnnotationStatus

	// Actor identifies who performed the action.
	Actor string

	// Timestamp orders events within one annotation's history.
	Timestamp time.Time
}
