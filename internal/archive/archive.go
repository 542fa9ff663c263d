// Package archive keeps a copy of messages rejected by validation so they can
// be inspected after the run. Archiving never affects queue state.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

// Rejected is one message that failed parsing or validation.
type Rejected struct {
	MessageID  string
	Body       string
	Reason     string
	ReceivedAt time.Time
}

type Archive interface {
	Put(ctx context.Context, r Rejected) (key string, err error)
}

// Nop discards everything. It is used when no reject bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, Rejected) (string, error) { return "", nil }

// ObjectKey returns a date-partitioned, collision-free key for a reject
// received at t.
func ObjectKey(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("rejected/%04d/%02d/%02d/%s.json.br", t.Year(), t.Month(), t.Day(), id)
}

// Compress brotli-encodes body.
func Compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("brotli write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(brotli.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("brotli read: %w", err)
	}
	return b, nil
}
