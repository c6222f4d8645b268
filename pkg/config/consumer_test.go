package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDelivery struct {
	acked    bool
	nacked   bool
	requeued bool
	at       time.Time
}

func (d *fakeDelivery) Ack(multiple bool) error {
	d.acked = true
	d.at = time.Now()
	return nil
}

func (d *fakeDelivery) Nack(multiple, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	d.at = time.Now()
	return nil
}

func TestConsumerAcksHandledMessage(t *testing.T) {
	c := &Consumer{requeueDelay: time.Hour}
	msg := &fakeDelivery{}

	c.handle(context.Background(), msg, []byte(`{}`), func(context.Context, []byte) error { return nil })

	assert.True(t, msg.acked)
	assert.False(t, msg.nacked)
}

func TestConsumerDelaysRequeue(t *testing.T) {
	c := &Consumer{requeueDelay: 50 * time.Millisecond}
	msg := &fakeDelivery{}

	start := time.Now()
	c.handle(context.Background(), msg, nil, func(context.Context, []byte) error { return errors.New("db down") })

	assert.True(t, msg.nacked)
	assert.True(t, msg.requeued)
	assert.GreaterOrEqual(t, msg.at.Sub(start), 50*time.Millisecond)
}

func TestConsumerRequeuesOnShutdown(t *testing.T) {
	c := &Consumer{requeueDelay: time.Hour}
	msg := &fakeDelivery{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.handle(ctx, msg, nil, func(context.Context, []byte) error { return errors.New("db down") })

	assert.True(t, msg.nacked)
	assert.True(t, msg.requeued)
}
