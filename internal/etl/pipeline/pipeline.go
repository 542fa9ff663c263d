// Package pipeline drives a run: probe the queue, then poll, mask, load and
// acknowledge until a poll comes back empty.
//
// A message is deleted only after its row has been committed. Anything that
// fails along the way stays on the queue and is redelivered by the queue
// service once its visibility timeout expires; there is no retry loop here.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/logging"
	"github.com/dmitrijs2005/loginetl/internal/models"
	"github.com/dmitrijs2005/loginetl/internal/queue"
	"github.com/dmitrijs2005/loginetl/internal/stats"
)

type State string

const (
	StateProbing     State = "probing"
	StateRunning     State = "running"
	StateDrained     State = "drained"
	StateUnavailable State = "unavailable"
	StateCanceled    State = "canceled"
)

type Extractor interface {
	Poll(ctx context.Context) (received int, valid []models.ValidatedMessage, err error)
	DeleteMessage(ctx context.Context, ackToken string) bool
}

type Transformer interface {
	Mask(ctx context.Context, msg models.ValidatedMessage) models.MaskedRecord
}

type Loader interface {
	Load(ctx context.Context, rec *models.MaskedRecord) bool
}

type Options struct {
	QueueURL      string
	ProbeAttempts int
	ProbeDelay    time.Duration
}

type Pipeline struct {
	queue       queue.Queue
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      logging.Logger
	out         io.Writer
	opts        Options

	stats *stats.Stats
	state State
	start time.Time
}

// New wires the stages together. out receives the operator-facing summary.
func New(q queue.Queue, e Extractor, t Transformer, l Loader, logger logging.Logger, out io.Writer, opts Options) *Pipeline {
	if opts.ProbeAttempts < 1 {
		opts.ProbeAttempts = 1
	}
	if opts.ProbeDelay <= 0 {
		opts.ProbeDelay = time.Millisecond
	}
	return &Pipeline{
		queue:       q,
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger.With("queue", opts.QueueURL),
		out:         out,
		opts:        opts,
		stats:       stats.New(),
		state:       StateProbing,
	}
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) Stats() stats.Snapshot { return p.stats.Snapshot() }

// Probe checks that the queue is listed by the service, retrying with a
// constant delay. Call failures count as failed attempts. It returns an
// error wrapping common.ErrQueueUnavailable once all attempts are used.
func (p *Pipeline) Probe(ctx context.Context) error {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(p.opts.ProbeAttempts-1), retry.NewConstant(p.opts.ProbeDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		urls, err := p.queue.ListQueues(ctx)
		if err == nil && !slices.Contains(urls, p.opts.QueueURL) {
			err = common.ErrQueueNotListed
		}
		if err != nil {
			p.logger.Warn(ctx, "queue probe failed",
				"attempt", attempt, "max_attempts", p.opts.ProbeAttempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w after %d attempts: %w", common.ErrQueueUnavailable, attempt, err)
	}

	p.logger.Info(ctx, "queue is available", "attempts", attempt)
	return nil
}

// Run executes one full run and returns its terminal state. The returned
// error is non-nil for StateUnavailable and StateCanceled.
func (p *Pipeline) Run(ctx context.Context) (State, error) {
	p.start = time.Now()
	p.state = StateProbing
	if err := p.Probe(ctx); err != nil {
		if errors.Is(err, common.ErrQueueUnavailable) {
			p.state = StateUnavailable
			p.logger.Error(ctx, "queue unavailable, nothing processed", "error", err)
			fmt.Fprintln(p.out, stats.UnavailableNotice)
			return p.state, err
		}
		return p.cancel(ctx, err)
	}

	p.state = StateRunning
	for {
		if err := ctx.Err(); err != nil {
			return p.cancel(ctx, err)
		}

		received, valid, err := p.extractor.Poll(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.cancel(ctx, ctxErr)
			}
			p.logger.Error(ctx, "error fetching messages, ending run", "error", err)
			break
		}
		if received == 0 {
			break
		}

		p.stats.AddExtracted(received)
		p.stats.AddRejected(received - len(valid))

		for _, msg := range valid {
			if err := ctx.Err(); err != nil {
				return p.cancel(ctx, err)
			}
			p.process(ctx, msg)
		}
	}

	p.state = StateDrained
	p.stats.ProcessingTime = time.Since(p.start)
	p.stats.DisplaySummary(ctx, p.out, p.logger, stats.CompletedNotice)
	return p.state, nil
}

func (p *Pipeline) process(ctx context.Context, msg models.ValidatedMessage) {
	rec := p.transformer.Mask(ctx, msg)
	p.stats.IncTransformed()

	if !p.loader.Load(ctx, &rec) {
		return
	}
	p.stats.IncLoaded()

	if !p.extractor.DeleteMessage(ctx, msg.AckToken) {
		p.stats.IncDeleteFailures()
	}
}

func (p *Pipeline) cancel(ctx context.Context, err error) (State, error) {
	p.state = StateCanceled
	p.logger.Warn(ctx, "run canceled", "error", err)
	p.stats.ProcessingTime = time.Since(p.start)
	p.stats.DisplaySummary(ctx, p.out, p.logger, stats.CanceledNotice)
	return p.state, err
}
