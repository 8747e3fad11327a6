package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/takeru0219/factiva-fetcher/internal/analysis"
	"github.com/takeru0219/factiva-fetcher/internal/bus"
	"github.com/takeru0219/factiva-fetcher/internal/config"
	"github.com/takeru0219/factiva-fetcher/internal/dedupe"
	"github.com/takeru0219/factiva-fetcher/internal/logger"
	"github.com/takeru0219/factiva-fetcher/internal/metrics"
	"github.com/takeru0219/factiva-fetcher/internal/notify"
	"github.com/takeru0219/factiva-fetcher/internal/pipeline"
	"github.com/takeru0219/factiva-fetcher/internal/storage"
)

func main() {
	godotenv.Load()

	log := logger.New("processor")
	cfg, err := config.LoadProcessor()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store, err := storage.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	var modelClient analysis.ModelClient
	if cfg.OpenAIKey != "" {
		modelClient = analysis.NewOpenAIClient(cfg.OpenAIKey)
	} else {
		log.Warn("no model API key configured, analyses will use the fallback path")
	}
	analyzer := analysis.NewAnalyzer(modelClient, cfg.Model, log)

	var notifier pipeline.Notifier
	if cfg.DiscordWebhookURL != "" {
		notifier = notify.NewDiscordNotifier(cfg.DiscordWebhookURL, log)
	} else {
		log.Warn("no webhook configured, notifications will only be logged")
		notifier = notify.NewLogNotifier(log)
	}

	pl := pipeline.New(analyzer, notifier, store, log)
	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", slog.Any("err", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	pool, err := ants.NewPool(cfg.Concurrency)
	if err != nil {
		log.Error("init worker pool", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Release()

	log.Info("processor started",
		slog.String("topic", cfg.Topic),
		slog.String("group", cfg.ConsumerGroup),
		slog.Int("concurrency", cfg.Concurrency),
		slog.Int("batch_size", cfg.BatchSize),
		slog.String("metrics_addr", cfg.MetricsAddr),
	)

	for {
		window, err := fetchWindow(ctx, reader, cfg.BatchSize, windowFillWait)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				shutdownMetrics(metricsServer, log)
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		processWindow(ctx, log, pool, reader, dlqWriter, pl, cache, m, window)
	}
}

// windowFillWait bounds how long fetchWindow waits for a window to fill once
// the first message has arrived.
const windowFillWait = 250 * time.Millisecond

type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
}

type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type dlqSink interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// fetchWindow blocks for the first message, then collects up to size messages,
// giving up on the rest of the window after wait.
func fetchWindow(ctx context.Context, r fetcher, size int, wait time.Duration) ([]kafka.Message, error) {
	first, err := r.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	window := make([]kafka.Message, 0, size)
	window = append(window, first)
	for len(window) < size {
		fillCtx, cancel := context.WithTimeout(ctx, wait)
		msg, err := r.FetchMessage(fillCtx)
		cancel()
		if err != nil {
			break
		}
		window = append(window, msg)
	}
	return window, nil
}

// processWindow runs one fetched window through the pool, waits for every
// message to finish, and only then commits. Documents are independent, so
// they are processed concurrently; commits are held back to the window
// boundary because group offsets are a per-partition watermark and committing
// past an unfinished message would drop it on restart.
func processWindow(
	ctx context.Context,
	log *slog.Logger,
	pool *ants.Pool,
	reader committer,
	dlq dlqSink,
	pl *pipeline.Pipeline,
	cache *dedupe.Cache,
	m *metrics.Metrics,
	window []kafka.Message,
) {
	done := make([]bool, len(window))

	var wg sync.WaitGroup
	for i := range window {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			done[i] = handleMessage(ctx, log, dlq, pl, cache, m, window[i])
		}
		if err := pool.Submit(task); err != nil {
			log.Error("submit to pool", slog.Any("err", err))
			task()
		}
	}
	wg.Wait()

	commitCompleted(ctx, log, reader, window, done)
}

// commitCompleted commits, per partition, the last message of the contiguous
// prefix of completed messages. Stopping at the first gap means a restart can
// only replay work, never skip it; the dedupe window absorbs the replays.
func commitCompleted(ctx context.Context, log *slog.Logger, reader committer, window []kafka.Message, done []bool) {
	latest := make(map[int]kafka.Message)
	blocked := make(map[int]bool)
	for i, msg := range window {
		if blocked[msg.Partition] {
			continue
		}
		if !done[i] {
			blocked[msg.Partition] = true
			continue
		}
		latest[msg.Partition] = msg
	}
	if len(latest) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(latest))
	for _, msg := range latest {
		msgs = append(msgs, msg)
	}
	if err := reader.CommitMessages(ctx, msgs...); err != nil {
		log.Error("commit window", slog.Any("err", err))
	}
}

// handleMessage reports whether the message's offset may be committed. A bad
// payload is still committable once it is parked on the DLQ; only a failed
// DLQ write holds the offset back so the message is reprocessed on restart.
func handleMessage(
	ctx context.Context,
	log *slog.Logger,
	dlq dlqSink,
	pl *pipeline.Pipeline,
	cache *dedupe.Cache,
	m *metrics.Metrics,
	msg kafka.Message,
) bool {
	if err := processMessage(ctx, log, pl, cache, m, msg); err != nil {
		log.Warn("message payload rejected, sending to DLQ",
			slog.Any("err", err),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		dlqMsg := kafka.Message{
			Value: msg.Value,
			Headers: append(msg.Headers,
				kafka.Header{Key: "error", Value: []byte(err.Error())},
				kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
			),
		}
		if dlqErr := dlq.WriteMessages(ctx, dlqMsg); dlqErr != nil {
			log.Error("DLQ write failed, message will be reprocessed on restart",
				slog.Any("err", dlqErr),
				slog.Int64("offset", msg.Offset),
			)
			return false
		}
	}

	return true
}

// processMessage decodes and runs one document through the pipeline. Only an
// undecodable payload is an error; processing itself always completes with an
// outcome.
func processMessage(
	ctx context.Context,
	log *slog.Logger,
	pl *pipeline.Pipeline,
	cache *dedupe.Cache,
	m *metrics.Metrics,
	msg kafka.Message,
) error {
	doc, err := bus.DecodeDocument(msg.Value)
	if err != nil {
		m.DecodeFailures.Inc()
		return err
	}

	m.DocumentsConsumed.Inc()

	if cache.Observe(doc.ID) {
		m.Duplicates.Inc()
		log.Debug("duplicate document skipped", slog.String("id", doc.ID))
		return nil
	}

	start := time.Now()
	out := pl.Process(ctx, doc)
	m.ProcessDuration.Observe(time.Since(start).Seconds())

	if !out.AnalysisOK {
		m.AnalysisFailures.Inc()
	}
	if !out.NotifyOK {
		m.NotifyFailures.Inc()
	}
	if !out.StoreOK {
		m.StoreFailures.Inc()
	}

	return nil
}

func shutdownMetrics(srv *http.Server, log *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown", slog.Any("err", err))
	}
}
