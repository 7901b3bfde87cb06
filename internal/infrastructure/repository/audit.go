package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/spreadsheet"
)

var auditColumns = []string{
	"Action",
	"Date",
	"InTime",
	"Place",
	"OutTime",
	"PreviousPlace",
	"PreviousTime",
	"PreviousDate",
}

// auditRepository keeps one workbook per document under dir.
type auditRepository struct {
	dir string
	mu  *sync.Mutex
}

func NewAuditRepository(dir string) domain.AuditRepository {
	return &auditRepository{dir: dir, mu: &sync.Mutex{}}
}

func (r *auditRepository) Append(ctx context.Context, documentID string, entry domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.logPath(documentID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := spreadsheet.Append(path, auditColumns, encodeEntry(entry)); err != nil {
		return fmt.Errorf("append audit entry for %s: %w", documentID, err)
	}
	return nil
}

func (r *auditRepository) History(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.logPath(documentID)
	if err != nil {
		return []domain.AuditEntry{}, nil
	}

	r.mu.Lock()
	t, err := spreadsheet.Read(path)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read audit log for %s: %w", documentID, err)
	}

	entries := make([]domain.AuditEntry, 0, len(t.Rows))
	for _, row := range t.Rows {
		entries = append(entries, decodeEntry(row))
	}
	return entries, nil
}

// logPath refuses ids that would escape dir.
func (r *auditRepository) logPath(documentID string) (string, error) {
	if documentID == "" ||
		documentID != filepath.Base(documentID) ||
		strings.ContainsAny(documentID, `/\`) ||
		documentID == "." || documentID == ".." {
		return "", fmt.Errorf("%w: bad document id %q", domain.ErrInvalidInput, documentID)
	}
	return filepath.Join(r.dir, documentID+".xlsx"), nil
}

func encodeEntry(e domain.AuditEntry) spreadsheet.Row {
	return spreadsheet.Row{
		"Action":        string(e.Action),
		"Date":          e.Date,
		"InTime":        e.InTime,
		"Place":         e.Place,
		"OutTime":       e.OutTime,
		"PreviousPlace": e.PreviousPlace,
		"PreviousTime":  e.PreviousTime,
		"PreviousDate":  e.PreviousDate,
	}
}

func decodeEntry(row spreadsheet.Row) domain.AuditEntry {
	return domain.AuditEntry{
		Action:        domain.AuditAction(row["Action"]),
		Date:          row["Date"],
		InTime:        row["InTime"],
		Place:         row["Place"],
		OutTime:       row["OutTime"],
		PreviousPlace: row["PreviousPlace"],
		PreviousTime:  row["PreviousTime"],
		PreviousDate:  row["PreviousDate"],
	}
}
