package config

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Consumer struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queue        string
	requeueDelay time.Duration
}

// acknowledger is the part of amqp.Delivery the consumer settles messages with
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// NewConsumer declares queueName and returns a consumer on it. A message whose
// handler fails is held for requeueDelay before it is requeued.
func NewConsumer(queueName string, requeueDelay time.Duration) (*Consumer, error) {
	if RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}

	ch, err := RabbitMQ.Channel()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return nil, err
	}

	// one unacked run request at a time
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, err
	}

	return &Consumer{
		conn:         RabbitMQ,
		channel:      ch,
		queue:        q.Name,
		requeueDelay: requeueDelay,
	}, nil
}

// Consume delivers messages to handler until ctx is done or the channel closes.
// A handler error requeues the message.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	logrus.Infof("Consumer is running on queue: %s", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			c.handle(ctx, msg, msg.Body, handler)
		}
	}
}

// handle acks on success. On failure it waits out the requeue delay first, so a
// persistent error such as a database outage does not spin on one message.
func (c *Consumer) handle(ctx context.Context, msg acknowledger, body []byte, handler func(context.Context, []byte) error) {
	err := handler(ctx, body)
	if err == nil {
		msg.Ack(false)
		return
	}

	logrus.Errorf("Handle msg failed, requeueing in %v: %v", c.requeueDelay, err)
	if c.requeueDelay > 0 {
		timer := time.NewTimer(c.requeueDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	msg.Nack(false, true)
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
