package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// ModelClient is the narrow language-model surface the analyzer depends on.
type ModelClient interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// Analyzer turns a document into an Analysis. With a nil client it produces a
// deterministic fallback without contacting any model, so the pipeline stays
// runnable without live credentials.
type Analyzer struct {
	client ModelClient
	model  string
	log    *slog.Logger
}

// NewAnalyzer builds an analyzer. client may be nil to select the fallback path.
func NewAnalyzer(client ModelClient, model string, log *slog.Logger) *Analyzer {
	return &Analyzer{client: client, model: model, log: log}
}

// Analyze never fails. A model-call error is absorbed into Analysis.Error with
// otherwise empty fields; the caller keeps going with the degraded result.
func (a *Analyzer) Analyze(ctx context.Context, doc models.Document) models.Analysis {
	if a.client == nil {
		a.log.Debug("no model credential configured, using fallback analysis",
			slog.String("id", doc.ID))
		return fallbackAnalysis(doc)
	}

	text, err := a.client.Complete(ctx, BuildPrompt(doc), a.model)
	if err != nil {
		a.log.Error("model call failed", slog.Any("err", err), slog.String("id", doc.ID))
		return models.Analysis{
			Sentiment: models.SentimentNeutral,
			Summary:   fmt.Sprintf("analysis error: %s", doc.Title),
			Error:     err.Error(),
		}
	}

	return Extract(text)
}

func fallbackAnalysis(doc models.Document) models.Analysis {
	return models.Analysis{
		Topics:    []string{"business", "technology", "economy"},
		Sentiment: models.SentimentNeutral,
		Facts: []string{
			"this is a fallback analysis result",
			"configure a model API key to enable live analysis",
		},
		RelatedEntities: []string{"sample company", "sample industry"},
		Summary:         fmt.Sprintf("Fallback summary for %q. Configure a model API key to enable live analysis.", doc.Title),
		IsFallback:      true,
	}
}
