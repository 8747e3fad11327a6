package analysis_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takeru0219/factiva-fetcher/internal/analysis"
	"github.com/takeru0219/factiva-fetcher/internal/models"
)

type stubModel struct {
	response string
	err      error
	prompt   string
	model    string
}

func (s *stubModel) Complete(_ context.Context, prompt, model string) (string, error) {
	s.prompt = prompt
	s.model = model
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzeWithoutClientUsesFallback(t *testing.T) {
	a := analysis.NewAnalyzer(nil, "gpt-3.5-turbo", discard())

	doc := models.Document{ID: "doc-1", Title: "Some headline"}
	result := a.Analyze(context.Background(), doc)

	require.True(t, result.IsFallback)
	require.Empty(t, result.Error)
	require.Equal(t, models.SentimentNeutral, result.Sentiment)
	require.NotEmpty(t, result.Topics)
	require.Contains(t, result.Summary, "Some headline")
}

func TestAnalyzeModelErrorIsAbsorbed(t *testing.T) {
	model := &stubModel{err: errors.New("rate limited")}
	a := analysis.NewAnalyzer(model, "gpt-3.5-turbo", discard())

	doc := models.Document{ID: "doc-2", Title: "Broken article"}
	result := a.Analyze(context.Background(), doc)

	require.Equal(t, "rate limited", result.Error)
	require.Equal(t, models.SentimentNeutral, result.Sentiment)
	require.Empty(t, result.Topics)
	require.False(t, result.IsFallback)
	require.Contains(t, result.Summary, "Broken article")
}

func TestAnalyzeExtractsModelOutput(t *testing.T) {
	model := &stubModel{response: "Main topics:\n- energy\nSentiment: positive\n"}
	a := analysis.NewAnalyzer(model, "gpt-4o-mini", discard())

	doc := models.Document{
		ID:              "doc-3",
		Title:           "Grid upgrade announced",
		Source:          "Energy Daily",
		PublicationDate: "2024-05-01",
		Body:            "The operator announced a major grid upgrade.",
	}
	result := a.Analyze(context.Background(), doc)

	require.Equal(t, []string{"energy"}, result.Topics)
	require.Equal(t, models.SentimentPositive, result.Sentiment)
	require.Equal(t, "gpt-4o-mini", model.model)
	require.Contains(t, model.prompt, "Grid upgrade announced")
	require.Contains(t, model.prompt, "Energy Daily")
	require.Contains(t, model.prompt, "The operator announced a major grid upgrade.")
}
