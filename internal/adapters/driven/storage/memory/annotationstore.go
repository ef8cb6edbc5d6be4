package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
)

// Ensure AnnotationStore implements the interface.
var _ driven.AnnotationStore = (*AnnotationStore)(nil)

// AnnotationStore is an in-memory implementation of driven.AnnotationStore.
// The audit trail is append-only: events are only ever added.
type AnnotationStore struct {
	mu          sync.RWMutex
	annotations map[string]domain.Annotation
	audit       []domain.AuditEvent
}

// NewAnnotationStore creates a new in-memory annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{
		annotations: make(map[string]domain.Annotation),
	}
}

// Save stores or updates an annotation.
func (s *AnnotationStore) Save(_ context.Context, annotation domain.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[annotation.ID] = annotation
	return nil
}

// Get retrieves an annotation by ID.
func (s *AnnotationStore) Get(_ context.Context, id string) (*domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	annotation, ok := s.annotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &annotation, nil
}

// List returns annotations for a session matching the filter, ordered by
// creation time.
func (s *AnnotationStore) List(_ context.Context, sessionID string, filter domain.AnnotationFilter) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Annotation
	for _, a := range s.annotations {
		if a.SessionID != sessionID {
			continue
		}
		if !matches(a, filter) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// AppendAudit appends an audit event.
func (s *AnnotationStore) AppendAudit(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, event)
	return nil
}

// ListAudit returns audit events in timestamp order. An empty annotationID
// returns the session's full trail.
func (s *AnnotationStore) ListAudit(_ context.Context, sessionID, annotationID string) ([]domain.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.AuditEvent
	for _, e := range s.audit {
		if e.SessionID != sessionID {
			continue
		}
		if annotationID != "" && e.AnnotationID != annotationID {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// matches applies the filter semantics shared with the SQLite store.
func matches(a domain.Annotation, filter domain.AnnotationFilter) bool {
	if a.Status == domain.StatusRejected && !filter.IncludeRejected && filter.Status != domain.StatusRejected {
		return false
	}
	if filter.Status != "" && a.Status != filter.Status {
		return false
	}
	if filter.Code != "" && a.Code != filter.Code {
		return false
	}
	if filter.Origin != "" && a.Origin != filter.Origin {
		return false
	}
	if filter.Validated && !a.Validated {
		return false
	}
	return true
}
