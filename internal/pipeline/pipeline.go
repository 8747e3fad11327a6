package pipeline

import (
	"context"
	"log/slog"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// Analyzer produces an Analysis for a document. Implementations never fail;
// degraded results carry their own error field.
type Analyzer interface {
	Analyze(ctx context.Context, doc models.Document) models.Analysis
}

// Notifier delivers an analyzed document to the notification sink.
// Failure is a boolean, never an error.
type Notifier interface {
	Notify(ctx context.Context, doc models.Document, a models.Analysis) bool
}

// Store persists an analyzed document. Same contract as Notifier.
type Store interface {
	Persist(ctx context.Context, doc models.Document, a models.Analysis) bool
}

// Pipeline orchestrates per-document processing: analyze, then attempt both
// sinks independently. A failing sink never blocks its sibling and nothing is
// rolled back on partial failure.
type Pipeline struct {
	analyzer Analyzer
	notifier Notifier
	store    Store
	log      *slog.Logger
}

func New(analyzer Analyzer, notifier Notifier, store Store, log *slog.Logger) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		notifier: notifier,
		store:    store,
		log:      log,
	}
}

// Process runs one document through analysis and both sinks and reports the
// independent outcomes. It does not fail: enrichment errors degrade the
// analysis and sink errors are captured as booleans.
func (p *Pipeline) Process(ctx context.Context, doc models.Document) models.Outcome {
	out := models.Outcome{DocumentID: doc.ID}

	a := p.analyzer.Analyze(ctx, doc)
	out.AnalysisOK = a.Error == ""
	if !out.AnalysisOK {
		p.log.Warn("analysis degraded", slog.String("id", doc.ID), slog.String("err", a.Error))
	}

	out.NotifyOK = p.notifier.Notify(ctx, doc, a)
	out.StoreOK = p.store.Persist(ctx, doc, a)

	p.log.Info("document processed",
		slog.String("id", doc.ID),
		slog.Bool("analysis_ok", out.AnalysisOK),
		slog.Bool("notify_ok", out.NotifyOK),
		slog.Bool("store_ok", out.StoreOK),
		slog.Bool("fallback", a.IsFallback),
	)

	return out
}
