package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/spreadsheet"
)

const (
	colID          = "ID"
	colRecentPlace = "RecentPlace"
	colRecentTime  = "RecentTime"
	colRecentDate  = "RecentDate"
	colNewPlace    = "NewPlace"
	colNewTime     = "NewTime"
	colNewDate     = "NewDate"
	colCreatedAt   = "CreatedAt"
)

var documentColumns = []string{
	colID,
	colRecentPlace,
	colRecentTime,
	colRecentDate,
	colNewPlace,
	colNewTime,
	colNewDate,
	colCreatedAt,
}

type documentRepository struct {
	store *tableStore
}

// NewDocumentRepository stores documents as rows of the workbook at path.
func NewDocumentRepository(path string) domain.DocumentRepository {
	return &documentRepository{store: newTableStore(path)}
}

func (r *documentRepository) List(ctx context.Context) ([]domain.Document, error) {
	t, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(t.Rows))
	for _, row := range t.Rows {
		docs = append(docs, decodeDocument(row))
	}
	return docs, nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	docs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document, fn func(doc *domain.Document) error) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	return r.store.Update(ctx, func(t *spreadsheet.Table) error {
		docs := make([]domain.Document, 0, len(t.Rows)+1)
		for _, row := range t.Rows {
			existing := decodeDocument(row)
			if existing.ID == doc.ID {
				return fmt.Errorf("%w: %s", domain.ErrDocumentExists, doc.ID)
			}
			docs = append(docs, existing)
		}
		if fn != nil {
			if err := fn(doc); err != nil {
				return err
			}
		}
		docs = append(docs, doc.Clone())

		encodeDocuments(t, docs)
		return nil
	})
}

func (r *documentRepository) Update(ctx context.Context, id string, fn func(doc *domain.Document) error) (*domain.Document, error) {
	var updated domain.Document

	err := r.store.Update(ctx, func(t *spreadsheet.Table) error {
		docs := make([]domain.Document, 0, len(t.Rows))
		idx := -1
		for _, row := range t.Rows {
			d := decodeDocument(row)
			if d.ID == id {
				idx = len(docs)
			}
			docs = append(docs, d)
		}
		if idx == -1 {
			return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}

		working := docs[idx].Clone()
		if err := fn(&working); err != nil {
			return err
		}
		// the id is the row key and never changes
		working.ID = id
		docs[idx] = working
		updated = working.Clone()

		encodeDocuments(t, docs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func decodeDocument(row spreadsheet.Row) domain.Document {
	doc := domain.Document{
		ID:          row[colID],
		RecentPlace: row[colRecentPlace],
		RecentTime:  row[colRecentTime],
		RecentDate:  row[colRecentDate],
		NewPlace:    row[colNewPlace],
		NewTime:     row[colNewTime],
		NewDate:     row[colNewDate],
		Fields:      make(map[string]string),
	}
	if raw := row[colCreatedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			doc.CreatedAt = ts
		}
	}

	for key, value := range row {
		if domain.IsReservedField(key) || value == "" {
			continue
		}
		doc.Fields[key] = value
	}
	return doc
}

// encodeDocuments rewrites every row of t. Fixed columns come first, then
// the union of submitted fields in name order.
func encodeDocuments(t *spreadsheet.Table, docs []domain.Document) {
	extra := make(map[string]struct{})
	for _, d := range docs {
		for key := range d.Fields {
			if !domain.IsReservedField(key) {
				extra[key] = struct{}{}
			}
		}
	}
	extraCols := make([]string, 0, len(extra))
	for key := range extra {
		extraCols = append(extraCols, key)
	}
	sort.Strings(extraCols)

	t.Header = append(slices.Clone(documentColumns), extraCols...)
	t.Rows = make([]spreadsheet.Row, 0, len(docs))
	for _, d := range docs {
		row := spreadsheet.Row{
			colID:          d.ID,
			colRecentPlace: d.RecentPlace,
			colRecentTime:  d.RecentTime,
			colRecentDate:  d.RecentDate,
			colNewPlace:    d.NewPlace,
			colNewTime:     d.NewTime,
			colNewDate:     d.NewDate,
		}
		if !d.CreatedAt.IsZero() {
			row[colCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339)
		}
		for _, key := range extraCols {
			row[key] = d.Fields[key]
		}
		t.Rows = append(t.Rows, row)
	}
}
