package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	key string
	msg contracts.AmqpMessage
}

func (b *fakeBroker) PublishMessage(_ context.Context, key string, msg contracts.AmqpMessage) error {
	b.key, b.msg = key, msg
	return nil
}

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context, domain.DocumentEvent) error {
	p.calls++
	return p.err
}

func TestDocumentPublisher_RoutesByEventType(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewDocumentPublisher(broker)

	event := domain.DocumentEvent{
		Type:       domain.EventDocumentReceived,
		DocumentID: "DOC-7",
		Entry:      domain.AuditEntry{Action: domain.ActionReceive, Place: "academics"},
	}
	require.NoError(t, pub.Publish(context.Background(), event))

	assert.Equal(t, contracts.EventDocumentReceived, broker.key)
	assert.Equal(t, "DOC-7", broker.msg.DocumentID)

	var decoded domain.DocumentEvent
	require.NoError(t, json.Unmarshal(broker.msg.Data, &decoded))
	assert.Equal(t, "academics", decoded.Entry.Place)
}

func TestFanOut_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("broker down")
	failing := &countingPublisher{err: boom}
	ok := &countingPublisher{}

	f := NewFanOut(failing, nil, ok)
	err := f.Publish(context.Background(), domain.DocumentEvent{DocumentID: "DOC-1"})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestFanOut_Empty(t *testing.T) {
	require.NoError(t, NewFanOut().Publish(context.Background(), domain.DocumentEvent{}))
}
