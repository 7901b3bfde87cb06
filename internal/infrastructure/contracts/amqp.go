package contracts

import "encoding/json"

// AmqpMessage is the envelope published on the documents exchange.
type AmqpMessage struct {
	DocumentID string          `json:"documentId"`
	Data       json.RawMessage `json:"data"`
}

// Routing keys, one per document event type.
const (
	EventDocumentSubmitted = "document.submitted"
	EventDocumentReceived  = "document.received"
	EventDocumentForwarded = "document.forwarded"
	EventDocumentUpdated   = "document.updated"

	// AllDocumentEvents binds a queue to every document routing key.
	AllDocumentEvents = "document.*"
)
