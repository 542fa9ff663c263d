// Package stats tracks run counters with thread-safe access methods and
// renders the end-of-run summary.
package stats

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/loginetl/internal/logging"
)

const (
	CompletedNotice   = "Application run completed. Please check the log files for more information."
	UnavailableNotice = "Unable to access the queue service after retries or the queue is not visible. Please check logs for more details."
	CanceledNotice    = "Application run interrupted before the queue was drained. Please check the log files for more information."
)

type Stats struct {
	// Extracted counts every received message, valid or not.
	Extracted   atomic.Int64
	Transformed atomic.Int64
	Loaded      atomic.Int64

	// Rejected counts messages dropped by parsing or validation.
	Rejected       atomic.Int64
	DeleteFailures atomic.Int64

	ProcessingTime time.Duration
}

func New() *Stats {
	return &Stats{}
}

func (s *Stats) AddExtracted(n int) { s.Extracted.Add(int64(n)) }

func (s *Stats) AddRejected(n int) { s.Rejected.Add(int64(n)) }

func (s *Stats) IncTransformed() { s.Transformed.Add(1) }

func (s *Stats) IncLoaded() { s.Loaded.Add(1) }

func (s *Stats) IncDeleteFailures() { s.DeleteFailures.Add(1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Extracted      int64
	Transformed    int64
	Loaded         int64
	Rejected       int64
	DeleteFailures int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Extracted:      s.Extracted.Load(),
		Transformed:    s.Transformed.Load(),
		Loaded:         s.Loaded.Load(),
		Rejected:       s.Rejected.Load(),
		DeleteFailures: s.DeleteFailures.Load(),
	}
}

// DisplaySummary writes the three run counters to w and logs the full
// snapshot. notice is printed last when non-empty.
func (s *Stats) DisplaySummary(ctx context.Context, w io.Writer, logger logging.Logger, notice string) {
	snap := s.Snapshot()

	fmt.Fprintf(w, "Total messages extracted: %s\n", humanize.Comma(snap.Extracted))
	fmt.Fprintf(w, "Total messages transformed: %s\n", humanize.Comma(snap.Transformed))
	fmt.Fprintf(w, "Total messages loaded: %s\n", humanize.Comma(snap.Loaded))
	if notice != "" {
		fmt.Fprintln(w, notice)
	}

	logger.Info(ctx, "run summary",
		"extracted", snap.Extracted,
		"transformed", snap.Transformed,
		"loaded", snap.Loaded,
		"rejected", snap.Rejected,
		"delete_failures", snap.DeleteFailures,
		"processing_time", s.ProcessingTime.String(),
	)
}
