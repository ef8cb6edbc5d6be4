package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

// machineActor tags audit events produced by the pipeline.
const machineActor = "pipeline"

// AnnotationReconciler manages annotation lifecycles within sessions and
// keeps the append-only audit trail. Concurrent mutations resolve
// last-write-wins; the audit trail retains every action regardless.
type AnnotationReconciler struct {
	sessions    driven.SessionStore
	annotations driven.AnnotationStore
	guardrail   *GuardrailPolicy
	actor       string
	now         func() time.Time
}

var _ driving.AnnotationService = (*AnnotationReconciler)(nil)

// ReconcilerOption configures the reconciler.
type ReconcilerOption func(*AnnotationReconciler)

// WithActor sets the actor recorded on human-initiated audit events.
func WithActor(actor string) ReconcilerOption {
	return func(r *AnnotationReconciler) {
		if actor != "" {
			r.actor = actor
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *AnnotationReconciler) {
		r.now = now
	}
}

// NewAnnotationReconciler creates a reconciler over the given stores.
func NewAnnotationReconciler(sessions driven.SessionStore, annotations driven.AnnotationStore, opts ...ReconcilerOption) *AnnotationReconciler {
	r := &AnnotationReconciler{
		sessions:    sessions,
		annotations: annotations,
		guardrail:   NewGuardrailPolicy(),
		actor:       "reviewer",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateSession implements driving.AnnotationService.
func (r *AnnotationReconciler) CreateSession(ctx context.Context, name, sourceText, targetText string) (*domain.Session, error) {
	if strings.TrimSpace(sourceText) == "" || strings.TrimSpace(targetText) == "" {
		return nil, fmt.Errorf("%w: session texts must be non-empty", domain.ErrInvalidInput)
	}

	now := r.now()
	session := domain.Session{
		ID:         uuid.NewString(),
		Name:       name,
		SourceText: sourceText,
		TargetText: targetText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("Created session %s (%q)", session.ID, session.Name)
	return &session, nil
}

// GetSession implements driving.AnnotationService.
func (r *AnnotationReconciler) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return r.sessions.Get(ctx, id)
}

// CommitPredictions implements driving.AnnotationService. Strategies whose
// stable identity matches an existing machine annotation reuse that
// annotation's ID instead of creating a duplicate.
func (r *AnnotationReconciler) CommitPredictions(ctx context.Context, sessionID string, strategies []domain.Strategy) ([]domain.Annotation, error) {
	if _, err := r.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	existing, err := r.annotations.List(ctx, sessionID, domain.AnnotationFilter{
		Origin:          domain.OriginMachine,
		IncludeRejected: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list existing predictions: %w", err)
	}
	byStrategy := make(map[string]domain.Annotation, len(existing))
	for _, a := range existing {
		if a.StrategyID != "" {
			byStrategy[a.StrategyID] = a
		}
	}

	committed := make([]domain.Annotation, 0, len(strategies))
	for _, s := range strategies {
		if r.guardrail.Restricted(s.Code) {
			logger.Debug("Skipping restricted prediction %s (%s)", s.ID, s.Code)
			continue
		}

		if prev, ok := byStrategy[s.ID]; ok {
			// Reviewed annotations keep their state; only refresh
			// still-pending ones.
			if prev.Status != domain.StatusPending {
				committed = append(committed, prev)
				continue
			}
			prev.Confidence = s.Confidence
			prev.UpdatedAt = r.now()
			if err := r.annotations.Save(ctx, prev); err != nil {
				return nil, fmt.Errorf("failed to refresh prediction: %w", err)
			}
			committed = append(committed, prev)
			continue
		}

		ann, err := r.commitOne(ctx, sessionID, s)
		if err != nil {
			return nil, err
		}
		committed = append(committed, *ann)
	}

	logger.Info("Committed %d predictions to session %s", len(committed), sessionID)
	return committed, nil
}

func (r *AnnotationReconciler) commitOne(ctx context.Context, sessionID string, s domain.Strategy) (*domain.Annotation, error) {
	now := r.now()
	ann := domain.Annotation{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		StrategyID:    s.ID,
		Code:          s.Code,
		SourceOffsets: s.SourceOffsets,
		TargetOffsets: s.TargetOffsets,
		Status:        domain.StatusPending,
		Origin:        domain.OriginMachine,
		Confidence:    s.Confidence,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.annotations.Save(ctx, ann); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}
	if err := r.audit(ctx, ann, domain.ActionCreate, "", domain.StatusPending, machineActor); err != nil {
		return nil, err
	}
	return &ann, nil
}

// Create implements driving.AnnotationService.
func (r *AnnotationReconciler) Create(ctx context.Context, sessionID string, req driving.CreateRequest) (*domain.Annotation, error) {
	session, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !req.Code.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategyCode, req.Code)
	}
	if err := req.TargetOffsets.Validate(len(session.TargetText)); err != nil {
		return nil, err
	}
	if req.SourceOffsets != nil {
		if err := req.SourceOffsets.Validate(len(session.SourceText)); err != nil {
			return nil, err
		}
	}

	now := r.now()
	ann := domain.Annotation{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Code:          req.Code,
		SourceOffsets: req.SourceOffsets,
		TargetOffsets: req.TargetOffsets,
		Status:        domain.StatusCreated,
		Origin:        domain.OriginHuman,
		Comment:       req.Comment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.annotations.Save(ctx, ann); err != nil {
		return nil, fmt.Errorf("failed to save annotation: %w", err)
	}
	if err := r.audit(ctx, ann, domain.ActionCreate, "", domain.StatusCreated, r.actor); err != nil {
		return nil, err
	}

	logger.Info("Created %s annotation %s in session %s", ann.Code, ann.ID, sessionID)
	return &ann, nil
}

// Accept implements driving.AnnotationService.
func (r *AnnotationReconciler) Accept(ctx context.Context, id string) (*domain.Annotation, error) {
	return r.Patch(ctx, id, driving.PatchRequest{Action: driving.PatchAccept})
}

// Reject implements driving.AnnotationService.
func (r *AnnotationReconciler) Reject(ctx context.Context, id string) error {
	_, err := r.Patch(ctx, id, driving.PatchRequest{Action: driving.PatchReject})
	return err
}

// Patch implements driving.AnnotationService. Exactly one audit event is
// appended per successful mutation.
func (r *AnnotationReconciler) Patch(ctx context.Context, id string, req driving.PatchRequest) (*domain.Annotation, error) {
	ann, err := r.annotations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := ann.Status

	var action domain.AuditAction
	switch req.Action {
	case driving.PatchAccept:
		action = domain.ActionAccept
		ann.Status = domain.StatusAccepted
		ann.Validated = true

	case driving.PatchReject:
		action = domain.ActionReject
		ann.Status = domain.StatusRejected
		ann.Validated = false

	case driving.PatchModify:
		if !req.NewCode.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategyCode, req.NewCode)
		}
		action = domain.ActionModify
		if ann.OriginalCode == "" && req.NewCode != ann.Code {
			ann.OriginalCode = ann.Code
		}
		ann.Code = req.NewCode
		if req.NewOffsets != nil {
			if err := r.validateTargetOffsets(ctx, ann.SessionID, *req.NewOffsets); err != nil {
				return nil, err
			}
			ann.TargetOffsets = *req.NewOffsets
		}
		ann.Status = domain.StatusModified
		ann.Validated = true

	case driving.PatchModifySpan:
		if req.NewOffsets == nil {
			return nil, fmt.Errorf("%w: modify_span requires offsets", domain.ErrInvalidInput)
		}
		if err := r.validateTargetOffsets(ctx, ann.SessionID, *req.NewOffsets); err != nil {
			return nil, err
		}
		action = domain.ActionModifySpan
		ann.TargetOffsets = *req.NewOffsets
		ann.Status = domain.StatusModified
		ann.Validated = true

	default:
		return nil, fmt.Errorf("%w: unknown patch action %q", domain.ErrInvalidInput, req.Action)
	}

	if req.Comment != "" {
		ann.Comment = req.Comment
	}
	ann.UpdatedAt = r.now()

	if err := r.annotations.Save(ctx, *ann); err != nil {
		return nil, fmt.Errorf("failed to save annotation: %w", err)
	}
	if err := r.audit(ctx, *ann, action, from, ann.Status, r.actor); err != nil {
		return nil, err
	}

	logger.Debug("Annotation %s: %s -> %s (%s)", ann.ID, from, ann.Status, action)
	return ann, nil
}

func (r *AnnotationReconciler) validateTargetOffsets(ctx context.Context, sessionID string, off domain.Offset) error {
	session, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return off.Validate(len(session.TargetText))
}

// Search implements driving.AnnotationService.
func (r *AnnotationReconciler) Search(ctx context.Context, sessionID string, filter domain.AnnotationFilter) ([]domain.Annotation, error) {
	if _, err := r.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return r.annotations.List(ctx, sessionID, filter)
}

// Export implements driving.AnnotationService. Rejected annotations stay
// out of the export unless opts asks for them; rejection remains visible
// in the audit trail regardless.
func (r *AnnotationReconciler) Export(ctx context.Context, sessionID string, format driving.ExportFormat, opts driving.ExportOptions, w io.Writer) error {
	annotations, err := r.Search(ctx, sessionID, domain.AnnotationFilter{IncludeRejected: opts.IncludeRejected})
	if err != nil {
		return err
	}

	switch format {
	case driving.ExportJSONL:
		return writeJSONL(w, annotations)
	case driving.ExportCSV:
		return writeCSV(w, annotations)
	default:
		return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

// Import implements driving.AnnotationService. The whole stream is decoded
// and validated before anything is committed.
func (r *AnnotationReconciler) Import(ctx context.Context, sessionID string, format driving.ExportFormat, reader io.Reader) (int, error) {
	session, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	var records []exportRecord
	switch format {
	case driving.ExportJSONL:
		records, err = readJSONL(reader)
	case driving.ExportCSV:
		records, err = readCSV(reader)
	default:
		return 0, fmt.Errorf("%w: unknown import format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return 0, err
	}

	annotations := make([]domain.Annotation, 0, len(records))
	for i, rec := range records {
		ann, err := rec.toAnnotation(sessionID, session)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		annotations = append(annotations, ann)
	}

	for _, ann := range annotations {
		if err := r.annotations.Save(ctx, ann); err != nil {
			return 0, fmt.Errorf("failed to save imported annotation %s: %w", ann.ID, err)
		}
		if err := r.audit(ctx, ann, domain.ActionImport, "", ann.Status, r.actor); err != nil {
			return 0, err
		}
	}

	logger.Info("Imported %d annotations into session %s", len(annotations), sessionID)
	return len(annotations), nil
}

// Audit implements driving.AnnotationService.
func (r *AnnotationReconciler) Audit(ctx context.Context, sessionID, annotationID string) ([]domain.AuditEvent, error) {
	if _, err := r.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return r.annotations.ListAudit(ctx, sessionID, annotationID)
}

func (r *AnnotationReconciler) audit(ctx context.Context, ann domain.Annotation, action domain.AuditAction, from, to domain.AnnotationStatus, actor string) error {
	event := domain.AuditEvent{
		ID:           uuid.NewString(),
		SessionID:    ann.SessionID,
		AnnotationID: ann.ID,
		Action:       action,
		FromStatus:   from,
		ToStatus:     to,
		Actor:        actor,
		Timestamp:    r.now(),
	}
	if err := r.annotations.AppendAudit(ctx, event); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
