package mcp

import (
	"context"
	"io"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result      *domain.AnalysisResult
	lastRequest domain.AnalysisRequest
	err         error
}

func (m *mockAnalysisService) Analyze(
	_ context.Context,
	req domain.AnalysisRequest,
) (*domain.AnalysisResult, error) {
	m.lastRequest = req
	if m.result == nil && m.err == nil {
		return &domain.AnalysisResult{}, nil
	}
	return m.result, m.err
}

// mockAnnotationService is a mock implementation of driving.AnnotationService.
type mockAnnotationService struct {
	session     *domain.Session
	annotation  *domain.Annotation
	annotations []domain.Annotation
	committed   []domain.Annotation
	events      []domain.AuditEvent
	exported    string
	exportOpts  driving.ExportOptions
	imported    int
	err         error
}

func (m *mockAnnotationService) CreateSession(
	_ context.Context,
	name, sourceText, targetText string,
) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.session != nil {
		return m.session, nil
	}
	return &domain.Session{ID: "ses-1", Name: name, SourceText: sourceText, TargetText: targetText}, nil
}

func (m *mockAnnotationService) GetSession(_ context.Context, _ string) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockAnnotationService) CommitPredictions(
	_ context.Context,
	_ string,
	_ []domain.Strategy,
) ([]domain.Annotation, error) {
	return m.committed, m.err
}

func (m *mockAnnotationService) Create(
	_ context.Context,
	_ string,
	_ driving.CreateRequest,
) (*domain.Annotation, error) {
	return m.annotation, m.err
}

func (m *mockAnnotationService) Accept(_ context.Context, _ string) (*domain.Annotation, error) {
	return m.annotation, m.err
}

func (m *mockAnnotationService) Reject(_ context.Context, _ string) error {
	return m.err
}

func (m *mockAnnotationService) Patch(
	_ context.Context,
	_ string,
	_ driving.PatchRequest,
) (*domain.Annotation, error) {
	return m.annotation, m.err
}

func (m *mockAnnotationService) Search(
	_ context.Context,
	_ string,
	_ domain.AnnotationFilter,
) ([]domain.Annotation, error) {
	return m.annotations, m.err
}

func (m *mockAnnotationService) Export(
	_ context.Context,
	_ string,
	_ driving.ExportFormat,
	opts driving.ExportOptions,
	w io.Writer,
) error {
	m.exportOpts = opts
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.exported)
	return err
}

func (m *mockAnnotationService) Import(
	_ context.Context,
	_ string,
	_ driving.ExportFormat,
	_ io.Reader,
) (int, error) {
	return m.imported, m.err
}

func (m *mockAnnotationService) Audit(
	_ context.Context,
	_, _ string,
) ([]domain.AuditEvent, error) {
	return m.events, m.err
}

// mockConfigStore is an in-memory implementation of driven.ConfigStore.
type mockConfigStore struct {
	values map[string]any
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if v, ok := m.values[key].(float64); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if v, ok := m.values[key].([]string); ok {
		return v
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return ""
}
