package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Kafka bundles broker/topic parameters shared by the ingester and processor.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Ingester configures the feed-to-Kafka service. All feed credentials are
// required; missing any of them is a configuration error.
type Ingester struct {
	Kafka
	FeedBaseURL      string
	FeedUserID       string
	FeedPassword     string
	FeedClientID     string
	FeedClientSecret string
	FeedStreamID     string
	BatchSize        int
	MaxRetries       int
}

// Processor configures the Kafka-to-sinks worker.
type Processor struct {
	Kafka
	ConsumerGroup      string
	ElasticsearchAddr  string
	ElasticsearchIndex string
	OpenAIKey          string
	Model              string
	DiscordWebhookURL  string
	DedupeCapacity     int
	DedupeTTL          time.Duration
	Concurrency        int
	BatchSize          int
	MetricsAddr        string
}

// API describes HTTP-layer configuration for the query service.
type API struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
	BindAddr           string
	DefaultPage        int
	MaxPage            int
}

// LoadIngester builds an Ingester config from environment variables.
func LoadIngester() (*Ingester, error) {
	c := &Ingester{
		Kafka: Kafka{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "factiva-data"),
		},
		FeedBaseURL: getEnv("FACTIVA_BASE_URL", "https://api.dowjones.com"),
		BatchSize:   getInt("INGEST_BATCH_SIZE", 10),
		MaxRetries:  getInt("INGEST_MAX_RETRIES", 3),
	}

	var err error
	if c.FeedUserID, err = requireEnv("FACTIVA_USER_ID"); err != nil {
		return nil, err
	}
	if c.FeedPassword, err = requireEnv("FACTIVA_PASSWORD"); err != nil {
		return nil, err
	}
	if c.FeedClientID, err = requireEnv("FACTIVA_CLIENT_ID"); err != nil {
		return nil, err
	}
	if c.FeedClientSecret, err = requireEnv("FACTIVA_CLIENT_SECRET"); err != nil {
		return nil, err
	}
	if c.FeedStreamID, err = requireEnv("FACTIVA_STREAM_ID"); err != nil {
		return nil, err
	}

	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("INGEST_BATCH_SIZE must be positive")
	}
	if c.MaxRetries < 0 {
		return nil, fmt.Errorf("INGEST_MAX_RETRIES cannot be negative")
	}

	return c, nil
}

// LoadProcessor builds a Processor config from environment variables.
// OPENAI_API_KEY and DISCORD_WEBHOOK_URL are optional; when absent the worker
// runs with the fallback analyzer and the log-only notifier.
func LoadProcessor() (*Processor, error) {
	c := &Processor{
		Kafka: Kafka{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "factiva-data"),
		},
		ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "factiva-processor"),
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		Model:              getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		DiscordWebhookURL:  os.Getenv("DISCORD_WEBHOOK_URL"),
		DedupeCapacity:     getInt("PROCESSOR_DEDUPE_CAPACITY", 20000),
		DedupeTTL:          getDuration("PROCESSOR_DEDUPE_TTL", "24h"),
		Concurrency:        getInt("PROCESSOR_CONCURRENCY", 4),
		BatchSize:          getInt("PROCESSOR_BATCH_SIZE", 10),
		MetricsAddr:        getEnv("PROCESSOR_METRICS_ADDR", ":9102"),
	}

	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("PROCESSOR_DEDUPE_CAPACITY must be positive")
	}
	if c.Concurrency <= 0 {
		return nil, fmt.Errorf("PROCESSOR_CONCURRENCY must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("PROCESSOR_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
		BindAddr:           getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage:        getInt("API_PAGE_SIZE", 20),
		MaxPage:            getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
