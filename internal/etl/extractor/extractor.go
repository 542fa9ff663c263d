// Package extractor receives batches from the queue and keeps the messages
// whose bodies parse and validate.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/loginetl/internal/archive"
	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/logging"
	"github.com/dmitrijs2005/loginetl/internal/models"
	"github.com/dmitrijs2005/loginetl/internal/queue"
	"github.com/dmitrijs2005/loginetl/internal/validator"
)

type Options struct {
	QueueURL    string
	MaxMessages int
	WaitTime    time.Duration
}

type Extractor struct {
	queue     queue.Queue
	validator *validator.Validator
	archive   archive.Archive
	logger    logging.Logger
	opts      Options
	now       func() time.Time
}

// New returns an Extractor. A nil archive disables reject archiving.
func New(q queue.Queue, v *validator.Validator, arc archive.Archive, logger logging.Logger, opts Options) *Extractor {
	if arc == nil {
		arc = archive.Nop{}
	}
	return &Extractor{
		queue:     q,
		validator: v,
		archive:   arc,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Poll receives one batch. received counts every message in the batch,
// including the ones dropped as unparsable or invalid, so that zero means the
// queue had nothing to deliver. Dropped messages are not deleted.
func (e *Extractor) Poll(ctx context.Context) (received int, valid []models.ValidatedMessage, err error) {
	batch, err := e.queue.Receive(ctx, e.opts.QueueURL, e.opts.MaxMessages, e.opts.WaitTime)
	if err != nil {
		return 0, nil, fmt.Errorf("receive from %s: %w", e.opts.QueueURL, err)
	}

	valid = make([]models.ValidatedMessage, 0, len(batch))
	for _, m := range batch {
		ev, err := e.decode(m.Body)
		if err != nil {
			e.reject(ctx, m, err)
			continue
		}
		valid = append(valid, models.ValidatedMessage{
			MessageID: m.ID,
			AckToken:  m.AckToken,
			Body:      m.Body,
			Event:     ev,
		})
	}

	e.logger.Debug(ctx, "batch received", "received", len(batch), "valid", len(valid))
	return len(batch), valid, nil
}

func (e *Extractor) decode(body string) (models.LoginEvent, error) {
	var ev models.LoginEvent

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return ev, fmt.Errorf("%w: %v", common.ErrUnparsableMessage, err)
	}
	if err := e.validator.Validate(doc); err != nil {
		return ev, err
	}
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", common.ErrInvalidMessage, err)
	}
	return ev, nil
}

func (e *Extractor) reject(ctx context.Context, m models.RawMessage, reason error) {
	if errors.Is(reason, common.ErrUnparsableMessage) {
		e.logger.Error(ctx, "error decoding message", "message_id", m.ID, "body", m.Body, "error", reason)
	} else {
		e.logger.Warn(ctx, "message validation failed", "message_id", m.ID, "body", m.Body, "error", reason)
	}

	key, err := e.archive.Put(ctx, archive.Rejected{
		MessageID:  m.ID,
		Body:       m.Body,
		Reason:     reason.Error(),
		ReceivedAt: e.now(),
	})
	if err != nil {
		e.logger.Warn(ctx, "failed to archive rejected message", "message_id", m.ID, "error", err)
		return
	}
	if key != "" {
		e.logger.Debug(ctx, "rejected message archived",
			"message_id", m.ID, "key", key, "size", humanize.Bytes(uint64(len(m.Body))))
	}
}

// DeleteMessage acknowledges a processed message. Failures are logged and
// swallowed; the message will simply be delivered again.
func (e *Extractor) DeleteMessage(ctx context.Context, ackToken string) bool {
	if err := e.queue.Delete(ctx, e.opts.QueueURL, ackToken); err != nil {
		e.logger.Error(ctx, "error deleting message from queue", "queue", e.opts.QueueURL, "error", err)
		return false
	}
	return true
}
