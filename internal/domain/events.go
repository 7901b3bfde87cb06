package domain

import (
	"context"
	"time"
)

type DocumentEventType string

const (
	EventDocumentSubmitted DocumentEventType = "document.submitted"
	EventDocumentReceived  DocumentEventType = "document.received"
	EventDocumentForwarded DocumentEventType = "document.forwarded"
	EventDocumentUpdated   DocumentEventType = "document.updated"
)

type DocumentEvent struct {
	Type       DocumentEventType `json:"type"`
	DocumentID string            `json:"documentId"`
	Entry      AuditEntry        `json:"entry"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type DocumentEventPublisher interface {
	Publish(ctx context.Context, event DocumentEvent) error
}

// EventTypeFor maps an audit action to the event announcing it.
func EventTypeFor(action AuditAction) DocumentEventType {
	switch action {
	case ActionSubmit:
		return EventDocumentSubmitted
	case ActionReceive:
		return EventDocumentReceived
	case ActionForward:
		return EventDocumentForwarded
	default:
		return EventDocumentUpdated
	}
}
