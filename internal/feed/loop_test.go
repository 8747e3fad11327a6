package feed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/takeru0219/factiva-fetcher/internal/feed"
	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// scriptedClient replays a fixed sequence of batch results.
type scriptedClient struct {
	batches    [][]map[string]any
	errs       []error
	calls      int
	closeCalls int
}

func (c *scriptedClient) FetchBatch(_ context.Context, _ string, _ int) ([]map[string]any, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i < len(c.batches) {
		return c.batches[i], nil
	}
	return nil, errors.New("script ended")
}

func (c *scriptedClient) Close() error {
	c.closeCalls++
	return nil
}

func testLoop(client feed.Client, maxRetries int) *feed.Loop {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return feed.NewLoop(client, feed.LoopConfig{
		StreamID:    "stream-1",
		BatchSize:   2,
		MaxRetries:  maxRetries,
		BackoffUnit: time.Millisecond,
	}, log)
}

func TestLoopYieldsBatchInOrder(t *testing.T) {
	client := &scriptedClient{
		batches: [][]map[string]any{
			{
				{"documentId": "a", "headline": "first"},
				{"id": "b", "title": "second"},
			},
		},
	}
	loop := testLoop(client, 0)
	defer loop.Close()

	ctx := context.Background()

	first, err := loop.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", first.ID)
	require.Equal(t, "first", first.Title)

	second, err := loop.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", second.ID)
	require.Equal(t, "second", second.Title)
}

func TestLoopExhaustsAfterMaxRetries(t *testing.T) {
	boom := errors.New("boom")
	client := &scriptedClient{
		errs: []error{boom, boom, boom, boom},
	}
	loop := testLoop(client, 2)
	defer loop.Close()

	_, err := loop.Next(context.Background())
	require.ErrorIs(t, err, feed.ErrExhausted)
	// max_retries=2 means exactly 3 attempts
	require.Equal(t, 3, client.calls)
}

func TestLoopSuccessResetsRetryCounter(t *testing.T) {
	boom := errors.New("boom")
	client := &scriptedClient{
		errs: []error{boom, boom, nil, boom, boom, nil},
		batches: [][]map[string]any{
			nil, nil,
			{{"id": "x"}},
			nil, nil,
			{{"id": "y"}},
		},
	}
	loop := testLoop(client, 2)
	defer loop.Close()

	ctx := context.Background()

	doc, err := loop.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "x", doc.ID)

	// two more consecutive failures must be tolerated again after the success
	doc, err = loop.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "y", doc.ID)
}

func TestLoopEmptyBatchIsNotAnError(t *testing.T) {
	client := &scriptedClient{
		batches: [][]map[string]any{
			{},
			{},
			{{"id": "later"}},
		},
	}
	loop := testLoop(client, 0)
	defer loop.Close()

	doc, err := loop.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "later", doc.ID)
	require.Equal(t, 3, client.calls)
}

func TestLoopCancellationBetweenBatches(t *testing.T) {
	client := &scriptedClient{
		batches: [][]map[string]any{
			{{"id": "only"}},
		},
	}
	loop := testLoop(client, 0)
	defer loop.Close()

	ctx, cancel := context.WithCancel(context.Background())

	doc, err := loop.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "only", doc.ID)

	cancel()
	_, err = loop.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopCloseIsIdempotent(t *testing.T) {
	client := &scriptedClient{}
	loop := testLoop(client, 0)

	require.NoError(t, loop.Close())
	require.NoError(t, loop.Close())
	require.Equal(t, 1, client.closeCalls)
}

func TestLoopRunClosesClientOnEveryPath(t *testing.T) {
	boom := errors.New("boom")
	client := &scriptedClient{errs: []error{boom}}
	loop := testLoop(client, 0)

	err := loop.Run(context.Background(), func(models.Document) error { return nil })
	require.ErrorIs(t, err, feed.ErrExhausted)
	require.Equal(t, 1, client.closeCalls)
}

func TestLoopRunStopsOnConsumerError(t *testing.T) {
	client := &scriptedClient{
		batches: [][]map[string]any{
			{{"id": "a"}, {"id": "b"}},
		},
	}
	loop := testLoop(client, 0)

	stop := errors.New("stop")
	var seen []string
	err := loop.Run(context.Background(), func(doc models.Document) error {
		seen = append(seen, doc.ID)
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, []string{"a"}, seen)
	require.Equal(t, 1, client.closeCalls)
}

func TestLoopRunTreatsCancellationAsCleanShutdown(t *testing.T) {
	client := &scriptedClient{
		batches: [][]map[string]any{
			{{"id": "a"}},
		},
	}
	loop := testLoop(client, 0)

	ctx, cancel := context.WithCancel(context.Background())
	err := loop.Run(ctx, func(models.Document) error {
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, client.closeCalls)
}
