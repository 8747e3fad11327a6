package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takeru0219/factiva-fetcher/internal/analysis"
	"github.com/takeru0219/factiva-fetcher/internal/models"
	"github.com/takeru0219/factiva-fetcher/internal/pipeline"
)

type stubAnalyzer struct {
	result models.Analysis
	calls  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ models.Document) models.Analysis {
	s.calls++
	return s.result
}

type stubNotifier struct {
	ok    bool
	calls int
	last  models.Analysis
}

func (s *stubNotifier) Notify(_ context.Context, _ models.Document, a models.Analysis) bool {
	s.calls++
	s.last = a
	return s.ok
}

type stubStore struct {
	ok    bool
	calls int
	last  models.Analysis
}

func (s *stubStore) Persist(_ context.Context, _ models.Document, a models.Analysis) bool {
	s.calls++
	s.last = a
	return s.ok
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessFallbackPathReachesBothSinks(t *testing.T) {
	// no model credential: the real analyzer takes the fallback path
	analyzer := analysis.NewAnalyzer(nil, "gpt-3.5-turbo", discard())
	notifier := &stubNotifier{ok: true}
	store := &stubStore{ok: true}
	pl := pipeline.New(analyzer, notifier, store, discard())

	out := pl.Process(context.Background(), models.Document{ID: "doc-1", Title: "Headline"})

	require.Equal(t, "doc-1", out.DocumentID)
	require.True(t, out.AnalysisOK)
	require.Equal(t, 1, notifier.calls)
	require.Equal(t, 1, store.calls)
	require.True(t, notifier.last.IsFallback)
	require.True(t, store.last.IsFallback)
}

func TestProcessNotifyFailureDoesNotBlockStore(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.Analysis{Sentiment: models.SentimentNeutral}}
	notifier := &stubNotifier{ok: false}
	store := &stubStore{ok: true}
	pl := pipeline.New(analyzer, notifier, store, discard())

	out := pl.Process(context.Background(), models.Document{ID: "doc-2"})

	require.True(t, out.AnalysisOK)
	require.False(t, out.NotifyOK)
	require.True(t, out.StoreOK)
	require.Equal(t, 1, store.calls)
}

func TestProcessDegradedAnalysisStillDelivered(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.Analysis{
		Sentiment: models.SentimentNeutral,
		Error:     "model unavailable",
	}}
	notifier := &stubNotifier{ok: true}
	store := &stubStore{ok: true}
	pl := pipeline.New(analyzer, notifier, store, discard())

	out := pl.Process(context.Background(), models.Document{ID: "doc-3"})

	require.False(t, out.AnalysisOK)
	require.True(t, out.NotifyOK)
	require.True(t, out.StoreOK)
	require.Equal(t, "model unavailable", notifier.last.Error)
}

func TestProcessToleratesMissingDocumentID(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.Analysis{Sentiment: models.SentimentNeutral}}
	notifier := &stubNotifier{ok: true}
	store := &stubStore{ok: true}
	pl := pipeline.New(analyzer, notifier, store, discard())

	out := pl.Process(context.Background(), models.Document{Title: "no id"})

	require.Equal(t, "", out.DocumentID)
	require.Equal(t, 1, notifier.calls)
	require.Equal(t, 1, store.calls)
}

func TestProcessBothSinksFail(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.Analysis{Sentiment: models.SentimentNeutral}}
	notifier := &stubNotifier{ok: false}
	store := &stubStore{ok: false}
	pl := pipeline.New(analyzer, notifier, store, discard())

	out := pl.Process(context.Background(), models.Document{ID: "doc-4"})

	require.True(t, out.AnalysisOK)
	require.False(t, out.NotifyOK)
	require.False(t, out.StoreOK)
}
