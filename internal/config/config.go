package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common holds the event and search-mirror settings shared by both binaries.
type Common struct {
	KafkaBrokers       []string
	KafkaTopic         string
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr       string
	DefaultUserID  string
	DefaultAuthor  string
	SummaryMaxLen  int
	SeedFile       string
	SeedSample     bool
	RequestTimeout time.Duration
}

// EventsEnabled reports whether accepted writes are published to Kafka.
func (c *API) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// SearchEnabled reports whether the Elasticsearch mirror is wired in.
func (c *API) SearchEnabled() bool { return c.ElasticsearchAddr != "" }

// Worker holds configuration for the Kafka -> Elasticsearch indexer.
type Worker struct {
	Common
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// LoadAPI builds an API config from environment variables. Kafka and
// Elasticsearch stay disabled unless their addresses are set.
func LoadAPI() (*API, error) {
	c := &API{
		Common: Common{
			KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
			KafkaTopic:         getEnv("KAFKA_TOPIC", "article_events"),
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", ""),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
		},
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultUserID:  getEnv("API_DEFAULT_USER_ID", "user-123"),
		DefaultAuthor:  getEnv("API_DEFAULT_AUTHOR", "Anonymous"),
		SummaryMaxLen:  getInt("API_SUMMARY_MAX_LEN", 200),
		SeedFile:       getEnv("API_SEED_FILE", ""),
		SeedSample:     getBool("API_SEED_SAMPLE", true),
		RequestTimeout: getDuration("API_REQUEST_TIMEOUT", "5s"),
	}

	if c.SummaryMaxLen <= 0 {
		return nil, fmt.Errorf("API_SUMMARY_MAX_LEN must be positive")
	}
	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common: Common{
			KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
			KafkaTopic:         getEnv("KAFKA_TOPIC", "article_events"),
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
		},
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "article-indexer"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
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

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
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
