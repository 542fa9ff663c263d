package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/loginetl/internal/models"
)

// ErrUnknownAckToken is returned by MemoryQueue.Delete for a token that is
// not in flight.
var ErrUnknownAckToken = errors.New("unknown ack token")

type memoryMessage struct {
	id   string
	body string
}

// MemoryQueue is an in-process queue with SQS-like delivery: a received
// message is hidden until it is deleted or Requeue makes it visible again.
// It never waits for arrivals; Receive returns immediately.
type MemoryQueue struct {
	mu       sync.Mutex
	url      string
	visible  []memoryMessage
	inFlight map[string]memoryMessage // ack token -> message
	deleted  []string

	listErr    error
	receiveErr error
	deleteErr  error
}

func NewMemoryQueue(url string) *MemoryQueue {
	return &MemoryQueue{url: url, inFlight: map[string]memoryMessage{}}
}

// Send enqueues body and returns the message id.
func (q *MemoryQueue) Send(body string) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.NewString()
	q.visible = append(q.visible, memoryMessage{id: id, body: body})
	return id
}

func (q *MemoryQueue) ListQueues(ctx context.Context) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.listErr != nil {
		return nil, q.listErr
	}
	return []string{q.url}, nil
}

func (q *MemoryQueue) Receive(ctx context.Context, queueURL string, maxMessages int, wait time.Duration) ([]models.RawMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.receiveErr != nil {
		return nil, q.receiveErr
	}
	if queueURL != q.url {
		return nil, fmt.Errorf("queue %q does not exist", queueURL)
	}

	n := min(maxMessages, len(q.visible))
	out := make([]models.RawMessage, 0, n)
	for _, m := range q.visible[:n] {
		token := uuid.NewString()
		q.inFlight[token] = m
		out = append(out, models.RawMessage{ID: m.id, Body: m.body, AckToken: token})
	}
	q.visible = q.visible[n:]
	return out, nil
}

func (q *MemoryQueue) Delete(ctx context.Context, queueURL string, ackToken string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.deleteErr != nil {
		return q.deleteErr
	}
	m, ok := q.inFlight[ackToken]
	if !ok {
		return ErrUnknownAckToken
	}
	delete(q.inFlight, ackToken)
	q.deleted = append(q.deleted, m.id)
	return nil
}

// Requeue makes every in-flight message visible again, as an expired
// visibility timeout would.
func (q *MemoryQueue) Requeue() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for token, m := range q.inFlight {
		q.visible = append(q.visible, m)
		delete(q.inFlight, token)
	}
}

// Deleted returns the ids of deleted messages in deletion order.
func (q *MemoryQueue) Deleted() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.deleted...)
}

// Pending returns the number of messages not yet deleted, visible or not.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.visible) + len(q.inFlight)
}

func (q *MemoryQueue) FailList(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listErr = err
}

func (q *MemoryQueue) FailReceive(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receiveErr = err
}

func (q *MemoryQueue) FailDelete(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleteErr = err
}
