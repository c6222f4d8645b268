package events

import (
	"context"

	"rentpayout/internal/models"
	"rentpayout/internal/payout"
)

// Publisher sends a JSON message to a queue
type Publisher interface {
	Publish(ctx context.Context, queueName string, message interface{}) error
}

// QueueNotifier publishes payout events to message queues
type QueueNotifier struct {
	publisher        Publisher
	creditedQueue    string
	runFinishedQueue string
}

// NewQueueNotifier creates a notifier publishing credited payouts and run summaries to the given queues
func NewQueueNotifier(publisher Publisher, creditedQueue, runFinishedQueue string) *QueueNotifier {
	return &QueueNotifier{
		publisher:        publisher,
		creditedQueue:    creditedQueue,
		runFinishedQueue: runFinishedQueue,
	}
}

func (n *QueueNotifier) PayoutCredited(ctx context.Context, event payout.PayoutCredited) error {
	return n.publisher.Publish(ctx, n.creditedQueue, event)
}

func (n *QueueNotifier) RunFinished(ctx context.Context, run *models.PayoutRun) error {
	return n.publisher.Publish(ctx, n.runFinishedQueue, run)
}
