package ws

import "github.com/hilthontt/doctrack/internal/domain"

// HistoryEvent is sent once to each subscriber before any live event.
const HistoryEvent = "document.history"

type Message struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	Data       any    `json:"data"`
}

func NewHistoryMessage(documentID string, entries []domain.AuditEntry) *Message {
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return &Message{Type: HistoryEvent, DocumentID: documentID, Data: entries}
}

func NewEventMessage(event domain.DocumentEvent) *Message {
	return &Message{Type: string(event.Type), DocumentID: event.DocumentID, Data: event}
}
