package domain

import "context"

type AuditAction string

const (
	ActionSubmit  AuditAction = "Submit"
	ActionReceive AuditAction = "Receive"
	ActionForward AuditAction = "Forward"
	ActionUpdate  AuditAction = "Update"
)

// AuditEntry is one row of a document's movement history. Entries are
// append-only and kept in insertion order.
type AuditEntry struct {
	Action        AuditAction `json:"action" bson:"action"`
	Date          string      `json:"date" bson:"date"`
	InTime        string      `json:"inTime" bson:"in_time"`
	Place         string      `json:"place" bson:"place"`
	OutTime       string      `json:"outTime" bson:"out_time"`
	PreviousPlace string      `json:"previousPlace" bson:"previous_place"`
	PreviousTime  string      `json:"previousTime" bson:"previous_time"`
	PreviousDate  string      `json:"previousDate" bson:"previous_date"`
}

type AuditRepository interface {
	Append(ctx context.Context, documentID string, entry AuditEntry) error
	// History returns entries oldest first; an unknown document has an
	// empty history.
	History(ctx context.Context, documentID string) ([]AuditEntry, error)
}
