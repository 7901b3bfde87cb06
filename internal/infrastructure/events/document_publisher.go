package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/contracts"
)

type messagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

// DocumentPublisher forwards document events to the message broker, using
// the event type as routing key.
type DocumentPublisher struct {
	rabbitmq messagePublisher
}

func NewDocumentPublisher(rabbitmq messagePublisher) *DocumentPublisher {
	return &DocumentPublisher{rabbitmq: rabbitmq}
}

var _ domain.DocumentEventPublisher = (*DocumentPublisher)(nil)

func (p *DocumentPublisher) Publish(ctx context.Context, event domain.DocumentEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, string(event.Type), contracts.AmqpMessage{
		DocumentID: event.DocumentID,
		Data:       eventJSON,
	})
}
