package services

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// exportRecord is the stable on-disk shape for one annotation. Both the
// JSONL and CSV encodings round-trip through it.
type exportRecord struct {
	ID           string  `json:"id"`
	StrategyID   string  `json:"strategy_id,omitempty"`
	Code         string  `json:"code"`
	OriginalCode string  `json:"original_code,omitempty"`
	SourceStart  *int    `json:"source_start,omitempty"`
	SourceEnd    *int    `json:"source_end,omitempty"`
	TargetStart  int     `json:"target_start"`
	TargetEnd    int     `json:"target_end"`
	Status       string  `json:"status"`
	Origin       string  `json:"origin"`
	Confidence   float64 `json:"confidence"`
	Comment      string  `json:"comment,omitempty"`
	Validated    bool    `json:"validated"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

var csvHeader = []string{
	"id", "strategy_id", "code", "original_code",
	"source_start", "source_end", "target_start", "target_end",
	"status", "origin", "confidence", "comment", "validated",
	"created_at", "updated_at",
}

func toRecord(a domain.Annotation) exportRecord {
	rec := exportRecord{
		ID:           a.ID,
		StrategyID:   a.StrategyID,
		Code:         string(a.Code),
		OriginalCode: string(a.OriginalCode),
		TargetStart:  a.TargetOffsets.Start,
		TargetEnd:    a.TargetOffsets.End,
		Status:       string(a.Status),
		Origin:       string(a.Origin),
		Confidence:   a.Confidence,
		Comment:      a.Comment,
		Validated:    a.Validated,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if a.SourceOffsets != nil {
		start, end := a.SourceOffsets.Start, a.SourceOffsets.End
		rec.SourceStart, rec.SourceEnd = &start, &end
	}
	return rec
}

// toAnnotation validates the record against the session texts and rebuilds
// the annotation. ID, status and original_code survive the round trip.
func (rec exportRecord) toAnnotation(sessionID string, session *domain.Session) (domain.Annotation, error) {
	code := domain.StrategyCode(rec.Code)
	if !code.IsValid() {
		return domain.Annotation{}, fmt.Errorf("%w: %q", domain.ErrUnknownStrategyCode, rec.Code)
	}
	if rec.OriginalCode != "" && !domain.StrategyCode(rec.OriginalCode).IsValid() {
		return domain.Annotation{}, fmt.Errorf("%w: original_code %q", domain.ErrUnknownStrategyCode, rec.OriginalCode)
	}

	status := domain.AnnotationStatus(rec.Status)
	if !status.IsValid() {
		return domain.Annotation{}, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, rec.Status)
	}
	origin := domain.AnnotationOrigin(rec.Origin)
	if !origin.IsValid() {
		return domain.Annotation{}, fmt.Errorf("%w: origin %q", domain.ErrInvalidInput, rec.Origin)
	}

	target := domain.Offset{Start: rec.TargetStart, End: rec.TargetEnd}
	if err := target.Validate(len(session.TargetText)); err != nil {
		return domain.Annotation{}, err
	}

	var source *domain.Offset
	if rec.SourceStart != nil && rec.SourceEnd != nil {
		source = &domain.Offset{Start: *rec.SourceStart, End: *rec.SourceEnd}
		if err := source.Validate(len(session.SourceText)); err != nil {
			return domain.Annotation{}, err
		}
	}

	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return domain.Annotation{}, fmt.Errorf("%w: created_at %q", domain.ErrInvalidInput, rec.CreatedAt)
	}
	updatedAt, err := time.Parse(time.RFC3339, rec.UpdatedAt)
	if err != nil {
		return domain.Annotation{}, fmt.Errorf("%w: updated_at %q", domain.ErrInvalidInput, rec.UpdatedAt)
	}

	return domain.Annotation{
		ID:            rec.ID,
		SessionID:     sessionID,
		StrategyID:    rec.StrategyID,
		Code:          code,
		OriginalCode:  domain.StrategyCode(rec.OriginalCode),
		SourceOffsets: source,
		TargetOffsets: target,
		Status:        status,
		Origin:        origin,
		Confidence:    rec.Confidence,
		Comment:       rec.Comment,
		Validated:     rec.Validated,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func writeJSONL(w io.Writer, annotations []domain.Annotation) error {
	enc := json.NewEncoder(w)
	for _, a := range annotations {
		if err := enc.Encode(toRecord(a)); err != nil {
			return fmt.Errorf("failed to encode annotation %s: %w", a.ID, err)
		}
	}
	return nil
}

func readJSONL(r io.Reader) ([]exportRecord, error) {
	var records []exportRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec exportRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidInput, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export stream: %w", err)
	}
	return records, nil
}

func writeCSV(w io.Writer, annotations []domain.Annotation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, a := range annotations {
		rec := toRecord(a)
		row := []string{
			rec.ID, rec.StrategyID, rec.Code, rec.OriginalCode,
			optInt(rec.SourceStart), optInt(rec.SourceEnd),
			strconv.Itoa(rec.TargetStart), strconv.Itoa(rec.TargetEnd),
			rec.Status, rec.Origin,
			strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
			rec.Comment, strconv.FormatBool(rec.Validated),
			rec.CreatedAt, rec.UpdatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write annotation %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(r io.Reader) ([]exportRecord, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) != len(csvHeader) || rows[0][0] != "id" {
		return nil, fmt.Errorf("%w: unexpected CSV header", domain.ErrInvalidInput)
	}

	records := make([]exportRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrInvalidInput, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowToRecord(row []string) (exportRecord, error) {
	targetStart, err := strconv.Atoi(row[6])
	if err != nil {
		return exportRecord{}, fmt.Errorf("target_start: %v", err)
	}
	targetEnd, err := strconv.Atoi(row[7])
	if err != nil {
		return exportRecord{}, fmt.Errorf("target_end: %v", err)
	}
	confidence, err := strconv.ParseFloat(row[10], 64)
	if err != nil {
		return exportRecord{}, fmt.Errorf("confidence: %v", err)
	}
	validated, err := strconv.ParseBool(row[12])
	if err != nil {
		return exportRecord{}, fmt.Errorf("validated: %v", err)
	}

	rec := exportRecord{
		ID:           row[0],
		StrategyID:   row[1],
		Code:         row[2],
		OriginalCode: row[3],
		TargetStart:  targetStart,
		TargetEnd:    targetEnd,
		Status:       row[8],
		Origin:       row[9],
		Confidence:   confidence,
		Comment:      row[11],
		Validated:    validated,
		CreatedAt:    row[13],
		UpdatedAt:    row[14],
	}
	if rec.SourceStart, err = parseOptInt(row[4], "source_start"); err != nil {
		return exportRecord{}, err
	}
	if rec.SourceEnd, err = parseOptInt(row[5], "source_end"); err != nil {
		return exportRecord{}, err
	}
	return rec, nil
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseOptInt(s, field string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", field, err)
	}
	return &v, nil
}
