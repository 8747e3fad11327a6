package notify

import (
	"context"
	"log/slog"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// Notifier delivers one analyzed document to a notification channel. It never
// errors; internal failures are reported as false.
type Notifier interface {
	Notify(ctx context.Context, doc models.Document, a models.Analysis) bool
}

// LogNotifier is the no-op variant used when no webhook is configured. It
// records the delivery in the log and always succeeds.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, doc models.Document, a models.Analysis) bool {
	n.log.Info("notification (log only)",
		slog.String("id", doc.ID),
		slog.String("title", doc.Title),
		slog.String("sentiment", a.Sentiment),
	)
	return true
}
