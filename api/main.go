package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/article-votes/backend/internal/config"
	"github.com/DeafMist/article-votes/backend/internal/elasticsearch"
	"github.com/DeafMist/article-votes/backend/internal/events"
	"github.com/DeafMist/article-votes/backend/internal/ledger"
	"github.com/DeafMist/article-votes/backend/internal/logger"
	"github.com/DeafMist/article-votes/backend/internal/models"
	"github.com/DeafMist/article-votes/backend/internal/seed"
	"github.com/DeafMist/article-votes/backend/internal/store"
	"github.com/DeafMist/article-votes/backend/internal/submission"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	initial, err := loadSeed(cfg)
	if err != nil {
		log.Error("load seed", slog.Any("err", err))
		os.Exit(1)
	}
	articles, err := store.New(initial)
	if err != nil {
		log.Error("init store", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("article store ready", slog.Int("articles", articles.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := &server{
		log:       log,
		cfg:       cfg,
		articles:  articles,
		votes:     ledger.New(articles, log),
		builder:   submission.NewBuilder(cfg.DefaultAuthor, cfg.SummaryMaxLen),
		publisher: events.Nop{},
		now:       func() time.Time { return time.Now().UTC() },
	}

	if cfg.EventsEnabled() {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error("close kafka publisher", slog.Any("err", err))
			}
		}()
		srv.publisher = kp
		log.Info("event publishing enabled", slog.String("topic", cfg.KafkaTopic))
	}

	if cfg.SearchEnabled() {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
		srv.search = esClient
	}

	if cfg.EventsEnabled() {
		srv.publishSnapshot(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// loadSeed picks the starting catalogue: a YAML file wins over the built-in
// sample, and the sample can be switched off for an empty store.
func loadSeed(cfg *config.API) ([]models.Article, error) {
	if cfg.SeedFile != "" {
		return seed.LoadFile(cfg.SeedFile)
	}
	if cfg.SeedSample {
		return seed.Sample(), nil
	}
	return nil, nil
}
