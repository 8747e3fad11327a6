package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/takeru0219/factiva-fetcher/internal/bus"
	"github.com/takeru0219/factiva-fetcher/internal/config"
	"github.com/takeru0219/factiva-fetcher/internal/feed"
	"github.com/takeru0219/factiva-fetcher/internal/logger"
	"github.com/takeru0219/factiva-fetcher/internal/models"
)

func main() {
	godotenv.Load()

	log := logger.New("ingester")
	cfg, err := config.LoadIngester()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	client, err := feed.NewHTTPClient(cfg.FeedBaseURL, feed.Credentials{
		UserID:       cfg.FeedUserID,
		Password:     cfg.FeedPassword,
		ClientID:     cfg.FeedClientID,
		ClientSecret: cfg.FeedClientSecret,
	})
	if err != nil {
		log.Error("init feed client", slog.Any("err", err))
		os.Exit(1)
	}

	publisher := bus.NewPublisher(cfg.Brokers, cfg.Topic, log)
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	loop := feed.NewLoop(client, feed.LoopConfig{
		StreamID:   cfg.FeedStreamID,
		BatchSize:  cfg.BatchSize,
		MaxRetries: cfg.MaxRetries,
	}, log)

	log.Info("ingester started",
		slog.String("stream_id", cfg.FeedStreamID),
		slog.String("topic", cfg.Topic),
		slog.Int("batch_size", cfg.BatchSize),
	)

	err = loop.Run(ctx, func(doc models.Document) error {
		messageID, err := publisher.Publish(ctx, doc)
		if err != nil {
			return err
		}
		log.Info("published document",
			slog.String("id", doc.ID),
			slog.String("message_id", messageID),
		)
		return nil
	})
	if err != nil {
		if errors.Is(err, feed.ErrExhausted) {
			log.Error("feed retries exhausted, shutting down", slog.Any("err", err))
		} else {
			log.Error("ingest loop stopped", slog.Any("err", err))
		}
		os.Exit(1)
	}

	log.Info("shutdown signal received")
}
