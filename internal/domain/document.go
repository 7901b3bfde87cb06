package domain

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	documentIDPrefix = "DOC-"

	// UnknownPlace stands in for a location that was never recorded.
	UnknownPlace = "Unknown"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Location is where a document is (or was) at a given time.
type Location struct {
	Place string
	Time  string
	Date  string
}

type Document struct {
	ID string `json:"id"`

	// Fields holds the arbitrary submitted form values, keyed verbatim.
	Fields map[string]string `json:"fields"`

	RecentPlace string `json:"recentPlace"`
	RecentTime  string `json:"recentTime"`
	RecentDate  string `json:"recentDate"`

	// New* are only populated while a forward is in flight.
	NewPlace string `json:"newPlace"`
	NewTime  string `json:"newTime"`
	NewDate  string `json:"newDate"`

	CreatedAt time.Time `json:"createdAt"`
}

type DocumentRepository interface {
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	// Create stores a new document. fn, when set, runs before the row is
	// written; returning an error from it aborts the save.
	Create(ctx context.Context, doc *Document, fn func(doc *Document) error) error
	// Update runs fn against the stored document and persists the result in
	// one read-modify-write cycle. Returning an error from fn aborts the save.
	Update(ctx context.Context, id string, fn func(doc *Document) error) (*Document, error)
}

// CodeGenerator renders the scannable code for a document.
type CodeGenerator interface {
	Generate(ctx context.Context, documentID, payload string) error
	// URL returns the public path of the image, or ErrCodeNotFound.
	URL(documentID string) (string, error)
}

// NewDocumentID is timestamp ordered (UUIDv7) and unique across processes.
func NewDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate document id: %w", err)
	}
	return documentIDPrefix + id.String(), nil
}

// NewDocument builds a freshly submitted document placed at fields["place"].
func NewDocument(fields map[string]string, now time.Time) (*Document, error) {
	id, err := NewDocumentID()
	if err != nil {
		return nil, err
	}

	cleaned := make(map[string]string, len(fields))
	for k, v := range fields {
		k = strings.TrimSpace(k)
		if k == "" || IsReservedField(k) {
			continue
		}
		cleaned[k] = strings.TrimSpace(v)
	}

	doc := &Document{
		ID:        id,
		Fields:    cleaned,
		CreatedAt: now.UTC(),
	}

	if place := cleaned["place"]; place != "" {
		doc.RecentPlace = place
		doc.RecentTime = now.Format(TimeLayout)
		doc.RecentDate = now.Format(DateLayout)
	}

	return doc, nil
}

// SubmitEntry is the first audit entry of a document.
func (d *Document) SubmitEntry(now time.Time) AuditEntry {
	place := d.Fields["place"]
	if place == "" {
		place = UnknownPlace
	}
	return AuditEntry{
		Action: ActionSubmit,
		Date:   now.Format(DateLayout),
		InTime: now.Format(TimeLayout),
		Place:  place,
	}
}

// Recent is the document's current location.
func (d *Document) Recent() Location {
	return Location{Place: d.RecentPlace, Time: d.RecentTime, Date: d.RecentDate}
}

// previous is Recent with blanks reported as Unknown, the way history
// rows record them.
func (d *Document) previous() Location {
	prev := d.Recent()
	if prev.Place == "" {
		prev.Place = UnknownPlace
	}
	if prev.Time == "" {
		prev.Time = UnknownPlace
	}
	if prev.Date == "" {
		prev.Date = UnknownPlace
	}
	return prev
}

// Receive records arrival at `at`. A blank place keeps the document where
// it is; blank time and date fall back to now.
func (d *Document) Receive(action AuditAction, at Location, now time.Time) AuditEntry {
	prev := d.previous()

	d.RecentPlace = firstNonEmpty(at.Place, prev.Place)
	d.RecentTime = firstNonEmpty(at.Time, now.Format(TimeLayout))
	d.RecentDate = firstNonEmpty(at.Date, now.Format(DateLayout))

	return d.entry(action, prev)
}

// Forward sends the document to `to`, which becomes its current location.
func (d *Document) Forward(to Location, now time.Time) (AuditEntry, error) {
	if strings.TrimSpace(to.Place) == "" {
		return AuditEntry{}, fmt.Errorf("%w: destination place is required", ErrInvalidInput)
	}

	prev := d.previous()

	d.NewPlace = to.Place
	d.NewTime = firstNonEmpty(to.Time, now.Format(TimeLayout))
	d.NewDate = firstNonEmpty(to.Date, now.Format(DateLayout))

	d.RecentPlace = d.NewPlace
	d.RecentTime = d.NewTime
	d.RecentDate = d.NewDate

	return d.entry(ActionForward, prev), nil
}

func (d *Document) entry(action AuditAction, prev Location) AuditEntry {
	return AuditEntry{
		Action:        action,
		Date:          d.RecentDate,
		InTime:        d.RecentTime,
		Place:         d.RecentPlace,
		PreviousPlace: prev.Place,
		PreviousTime:  prev.Time,
		PreviousDate:  prev.Date,
	}
}

// Clone returns a deep copy so callers can't mutate repository state.
func (d *Document) Clone() Document {
	c := *d
	c.Fields = maps.Clone(d.Fields)
	if c.Fields == nil {
		c.Fields = map[string]string{}
	}
	return c
}

var reservedFields = map[string]bool{
	"ID":          true,
	"id":          true,
	"RecentPlace": true,
	"RecentTime":  true,
	"RecentDate":  true,
	"NewPlace":    true,
	"NewTime":     true,
	"NewDate":     true,
	"CreatedAt":   true,
}

// IsReservedField reports whether key collides with a stored column.
func IsReservedField(key string) bool {
	return reservedFields[key]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
