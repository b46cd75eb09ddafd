package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/article-votes/backend/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	for _, key := range []string{"KAFKA_BROKERS", "KAFKA_TOPIC", "ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX",
		"API_BIND_ADDR", "API_DEFAULT_USER_ID", "API_DEFAULT_AUTHOR", "API_SUMMARY_MAX_LEN",
		"API_SEED_FILE", "API_SEED_SAMPLE", "API_REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, "user-123", cfg.DefaultUserID)
	require.Equal(t, "Anonymous", cfg.DefaultAuthor)
	require.Equal(t, 200, cfg.SummaryMaxLen)
	require.True(t, cfg.SeedSample)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "article_events", cfg.KafkaTopic)
	require.Equal(t, "articles", cfg.ElasticsearchIndex)
	require.False(t, cfg.EventsEnabled())
	require.False(t, cfg.SearchEnabled())
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_DEFAULT_USER_ID", "tester")
	t.Setenv("API_SUMMARY_MAX_LEN", "120")
	t.Setenv("API_SEED_FILE", "/etc/articles.yaml")
	t.Setenv("API_SEED_SAMPLE", "false")
	t.Setenv("API_REQUEST_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "tester", cfg.DefaultUserID)
	require.Equal(t, 120, cfg.SummaryMaxLen)
	require.Equal(t, "/etc/articles.yaml", cfg.SeedFile)
	require.False(t, cfg.SeedSample)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
	require.True(t, cfg.SearchEnabled())
}

func TestLoadAPIRejectsNonPositiveSummaryLimit(t *testing.T) {
	t.Setenv("API_SUMMARY_MAX_LEN", "0")
	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	for _, key := range []string{"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_CONSUMER_GROUP",
		"ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX", "WORKER_DEDUPE_CAPACITY",
		"WORKER_DEDUPE_TTL", "WORKER_BATCH_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "article_events", cfg.KafkaTopic)
	require.Equal(t, "article-indexer", cfg.KafkaConsumer)
	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, 20000, cfg.DedupeCapacity)
	require.Equal(t, 24*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 10, cfg.BatchSize)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "not-a-number")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 10, cfg.BatchSize)
}

func TestLoadWorkerRejectsBadValues(t *testing.T) {
	t.Setenv("WORKER_DEDUPE_CAPACITY", "-1")
	_, err := config.LoadWorker()
	require.Error(t, err)
}
