package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// ErrExhausted terminates the document stream once consecutive batch failures
// exceed the retry budget. The loop is not restartable; the caller must build
// a new one.
var ErrExhausted = errors.New("feed: retry budget exhausted")

// defaultBackoffUnit is the linear backoff step between retries: the loop
// waits unit*retryCount, not an exponential schedule.
const defaultBackoffUnit = 5 * time.Second

// LoopConfig parameterizes one retrieval loop instance.
type LoopConfig struct {
	StreamID   string
	BatchSize  int
	MaxRetries int
	// BackoffUnit overrides the 5s linear backoff step; used by tests.
	BackoffUnit time.Duration
}

// Loop bridges the provider's batch-pull API into a continuous, ordered
// document stream. It owns the client handle exclusively and releases it via
// Close on every exit path.
type Loop struct {
	client Client
	cfg    LoopConfig
	log    *slog.Logger

	buf     []models.Document
	retries int

	closeOnce sync.Once
	closeErr  error
}

// NewLoop wires a loop over an open feed client.
func NewLoop(client Client, cfg LoopConfig, log *slog.Logger) *Loop {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = defaultBackoffUnit
	}
	return &Loop{client: client, cfg: cfg, log: log}
}

// Next blocks until the next document is available. Documents are returned in
// provider batch order. Failed batch pulls are retried with linear backoff;
// after MaxRetries consecutive failures the stream ends with ErrExhausted.
// Cancellation is honored between batches and during backoff.
func (l *Loop) Next(ctx context.Context) (models.Document, error) {
	for {
		if len(l.buf) > 0 {
			doc := l.buf[0]
			l.buf = l.buf[1:]
			return doc, nil
		}

		if err := ctx.Err(); err != nil {
			return models.Document{}, err
		}

		raws, err := l.client.FetchBatch(ctx, l.cfg.StreamID, l.cfg.BatchSize)
		if err != nil {
			l.retries++
			if l.retries > l.cfg.MaxRetries {
				return models.Document{}, fmt.Errorf("%w after %d attempts: %v", ErrExhausted, l.retries, err)
			}

			wait := time.Duration(l.retries) * l.cfg.BackoffUnit
			l.log.Warn("batch pull failed, retrying",
				slog.Any("err", err),
				slog.Int("retry", l.retries),
				slog.Int("max_retries", l.cfg.MaxRetries),
				slog.Duration("backoff", wait),
			)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return models.Document{}, ctx.Err()
			}
			continue
		}

		l.retries = 0
		for _, raw := range raws {
			l.buf = append(l.buf, Normalize(raw))
		}
		// an empty batch is not an error; keep polling
	}
}

// Run pulls documents until fn returns an error, the stream is exhausted, or
// ctx is canceled. The feed client is closed before Run returns, on every
// path. Cancellation is reported as nil.
func (l *Loop) Run(ctx context.Context, fn func(models.Document) error) error {
	defer l.Close()

	for {
		doc, err := l.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}

// Close releases the feed connection. Safe to call more than once; only the
// first call reaches the client.
func (l *Loop) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.client.Close()
	})
	return l.closeErr
}
