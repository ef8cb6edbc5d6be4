package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// session and annotation store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.clarita/data/annotations.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clarita", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "annotations.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// AnnotationStore returns an AnnotationStore interface backed by this store.
func (s *Store) AnnotationStore() driven.AnnotationStore {
	return &annotationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Save stores or updates a session.
func (s *sessionStore) Save(ctx context.Context, session domain.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, source_text, target_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source_text = excluded.source_text,
			target_text = excluded.target_text,
			updated_at = excluded.updated_at
	`, session.ID, session.Name, session.SourceText, session.TargetText,
		session.CreatedAt, session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, source_text, target_text, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var session domain.Session
	if err := row.Scan(&session.ID, &session.Name, &session.SourceText,
		&session.TargetText, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return &session, nil
}

// List returns all sessions ordered by creation time.
func (s *sessionStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, source_text, target_text, created_at, updated_at
		FROM sessions ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(&session.ID, &session.Name, &session.SourceText,
			&session.TargetText, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// Delete removes a session; annotations and audit events cascade.
func (s *sessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ==================== Annotation Store ====================

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

const annotationColumns = `id, session_id, strategy_id, code, original_code,
	source_start, source_end, target_start, target_end,
	status, origin, confidence, comment, validated, created_at, updated_at`

// Save stores or updates an annotation.
func (s *annotationStore) Save(ctx context.Context, annotation domain.Annotation) error {
	var sourceStart, sourceEnd sql.NullInt64
	if annotation.SourceOffsets != nil {
		sourceStart = sql.NullInt64{Int64: int64(annotation.SourceOffsets.Start), Valid: true}
		sourceEnd = sql.NullInt64{Int64: int64(annotation.SourceOffsets.End), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO annotations (id, session_id, strategy_id, code, original_code,
			source_start, source_end, target_start, target_end,
			status, origin, confidence, comment, validated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			original_code = excluded.original_code,
			source_start = excluded.source_start,
			source_end = excluded.source_end,
			target_start = excluded.target_start,
			target_end = excluded.target_end,
			status = excluded.status,
			confidence = excluded.confidence,
			comment = excluded.comment,
			validated = excluded.validated,
			updated_at = excluded.updated_at
	`, annotation.ID, annotation.SessionID, annotation.StrategyID,
		string(annotation.Code), string(annotation.OriginalCode),
		sourceStart, sourceEnd, annotation.TargetOffsets.Start, annotation.TargetOffsets.End,
		string(annotation.Status), string(annotation.Origin),
		annotation.Confidence, annotation.Comment, annotation.Validated,
		annotation.CreatedAt, annotation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	return nil
}

// Get retrieves an annotation by ID.
func (s *annotationStore) Get(ctx context.Context, id string) (*domain.Annotation, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations WHERE id = ?", id)

	annotation, err := scanAnnotation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return annotation, err
}

// List returns annotations for a session matching the filter, ordered by
// creation time.
func (s *annotationStore) List(ctx context.Context, sessionID string, filter domain.AnnotationFilter) ([]domain.Annotation, error) {
	query := "SELECT " + annotationColumns + " FROM annotations WHERE session_id = ?"
	args := []any{sessionID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	} else if !filter.IncludeRejected {
		query += " AND status != ?"
		args = append(args, string(domain.StatusRejected))
	}
	if filter.Code != "" {
		query += " AND code = ?"
		args = append(args, string(filter.Code))
	}
	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}
	if filter.Validated {
		query += " AND validated = 1"
	}
	query += " ORDER BY created_at, id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var annotations []domain.Annotation //nolint:prealloc // size unknown from query
	for rows.Next() {
		annotation, err := scanAnnotation(rows.Scan)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, *annotation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}

	return annotations, nil
}

// AppendAudit appends an audit event. There is no update or delete path.
func (s *annotationStore) AppendAudit(ctx context.Context, event domain.AuditEvent) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, session_id, annotation_id, action,
			from_status, to_status, actor, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.SessionID, event.AnnotationID, string(event.Action),
		string(event.FromStatus), string(event.ToStatus), event.Actor, event.Timestamp)

	if err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// ListAudit returns audit events in timestamp order. An empty annotationID
// returns the session's full trail.
func (s *annotationStore) ListAudit(ctx context.Context, sessionID, annotationID string) ([]domain.AuditEvent, error) {
	query := `
		SELECT id, session_id, annotation_id, action, from_status, to_status, actor, timestamp
		FROM audit_events WHERE session_id = ?`
	args := []any{sessionID}
	if annotationID != "" {
		query += " AND annotation_id = ?"
		args = append(args, annotationID)
	}
	query += " ORDER BY timestamp, id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		var event domain.AuditEvent
		var action, fromStatus, toStatus string
		if err := rows.Scan(&event.ID, &event.SessionID, &event.AnnotationID,
			&action, &fromStatus, &toStatus, &event.Actor, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		event.Action = domain.AuditAction(action)
		event.FromStatus = domain.AnnotationStatus(fromStatus)
		event.ToStatus = domain.AnnotationStatus(toStatus)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit events: %w", err)
	}

	return events, nil
}

// scanAnnotation scans one annotation row through the given scan function.
func scanAnnotation(scan func(...any) error) (*domain.Annotation, error) {
	var annotation domain.Annotation
	var code, originalCode, status, origin string
	var sourceStart, sourceEnd sql.NullInt64

	err := scan(&annotation.ID, &annotation.SessionID, &annotation.StrategyID,
		&code, &originalCode, &sourceStart, &sourceEnd,
		&annotation.TargetOffsets.Start, &annotation.TargetOffsets.End,
		&status, &origin, &annotation.Confidence, &annotation.Comment,
		&annotation.Validated, &annotation.CreatedAt, &annotation.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning annotation: %w", err)
	}

	annotation.Code = domain.StrategyCode(code)
	annotation.OriginalCode = domain.StrategyCode(originalCode)
	annotation.Status = domain.AnnotationStatus(status)
	annotation.Origin = domain.AnnotationOrigin(origin)
	if sourceStart.Valid && sourceEnd.Valid {
		annotation.SourceOffsets = &domain.Offset{
			Start: int(sourceStart.Int64),
			End:   int(sourceEnd.Int64),
		}
	}

	return &annotation, nil
}
