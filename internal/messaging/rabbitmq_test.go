package messaging

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp.Publishing
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishWaitsForItsOwnConfirm(t *testing.T) {
	acks := make(chan amqp.Confirmation, 4)
	ch := &fakeChannel{}
	client := &Client{ch: ch, acks: acks}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Publish(ctx, "cafe.events", "ticket.kot.placed", "application/json", []byte(`{}`))
	require.ErrorIs(t, err, context.Canceled)

	// the first message is acked late, the second is rejected
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: true}
	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: false}

	ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = client.Publish(ctx, "cafe.events", "ticket.kot.placed", "application/json", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NACK")

	acks <- amqp.Confirmation{DeliveryTag: 3, Ack: true}
	require.NoError(t, client.Publish(ctx, "cafe.events", "stock.alert", "application/json", []byte(`{}`)))

	require.Len(t, ch.published, 3)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Empty(t, acks)
}

func TestClientHealth(t *testing.T) {
	assert.Error(t, (&Client{}).Health(context.Background()))
	assert.Error(t, (&Client{ch: &fakeChannel{}}).Health(context.Background()))
}
