// Package queue abstracts the message queue the pipeline drains.
//
// The pipeline needs three operations: list queue URLs (availability probe),
// receive a batch with a bounded wait, and delete a message by its ack
// token. SQSQueue talks to Amazon SQS (or a compatible endpoint such as
// LocalStack); MemoryQueue is an in-process implementation with the same
// delivery semantics.
package queue

import (
	"context"
	"time"

	"github.com/dmitrijs2005/loginetl/internal/models"
)

// Queue is the narrow queue-service surface used by the pipeline.
type Queue interface {
	// ListQueues returns the URLs of all queues visible to the caller.
	ListQueues(ctx context.Context) ([]string, error)

	// Receive returns up to maxMessages messages, waiting up to wait for at
	// least one to arrive. Received messages stay invisible to other
	// receivers until deleted or until the service makes them visible again.
	Receive(ctx context.Context, queueURL string, maxMessages int, wait time.Duration) ([]models.RawMessage, error)

	// Delete removes the message identified by ackToken.
	Delete(ctx context.Context, queueURL string, ackToken string) error
}
