package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/article-votes/backend/internal/config"
	"github.com/DeafMist/article-votes/backend/internal/elasticsearch"
	"github.com/DeafMist/article-votes/backend/internal/events"
	"github.com/DeafMist/article-votes/backend/internal/ledger"
	"github.com/DeafMist/article-votes/backend/internal/models"
	"github.com/DeafMist/article-votes/backend/internal/ranking"
	"github.com/DeafMist/article-votes/backend/internal/store"
	"github.com/DeafMist/article-votes/backend/internal/submission"
)

const (
	userHeader   = "X-User-ID"
	maxBodyBytes = 1 << 20
)

type searcher interface {
	SearchArticles(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
	Health(ctx context.Context) error
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	articles  *store.Store
	votes     *ledger.Ledger
	builder   *submission.Builder
	publisher events.Publisher
	search    searcher
	now       func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	Total int              `json:"total"`
	Items []models.Article `json:"items"`
}

type detailResponse struct {
	Article models.Article    `json:"article"`
	Vote    models.VoteStatus `json:"vote"`
}

type voteRequest struct {
	Category models.VoteCategory `json:"category"`
}

type voteResponse struct {
	Accepted bool              `json:"accepted"`
	Status   models.VoteStatus `json:"status"`
	Votes    models.VoteTally  `json:"votes"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/vote", s.handleVoteStatus)
		r.Post("/{id}/vote", s.handleVote)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.search != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.search.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	mode := ranking.ParseSortMode(r.URL.Query().Get("sort"))
	filter := strings.TrimSpace(r.URL.Query().Get("q"))

	items := ranking.Rank(s.articles.ListAll(), mode, filter)
	writeJSON(w, http.StatusOK, listResponse{Total: len(items), Items: items})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, ok := s.articles.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: models.ErrArticleNotFound.Error()})
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{
		Article: article,
		Vote:    s.votes.StatusOf(s.userID(r), id),
	})
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft submission.Draft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	article, err := s.builder.Build(draft)
	if err == nil {
		err = s.articles.Append(article)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	s.log.Info("article submitted",
		slog.String("article_id", article.ID),
		slog.String("title", article.Title),
		slog.Int("tags", len(article.Tags)),
	)
	s.publish(r.Context(), events.ArticleCreated(article, s.now()))

	writeJSON(w, http.StatusCreated, article)
}

func (s *server) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, ok := s.articles.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: models.ErrArticleNotFound.Error()})
		return
	}

	status := s.votes.StatusOf(s.userID(r), id)
	writeJSON(w, http.StatusOK, voteResponse{Accepted: false, Status: status, Votes: article.Votes})
}

func (s *server) handleVote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := s.userID(r)

	var req voteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	updated, err := s.votes.CastVote(userID, id, req.Category)
	switch {
	case err == nil:
		s.publish(r.Context(), events.VoteCast(updated, userID, req.Category, s.now()))
		writeJSON(w, http.StatusOK, voteResponse{
			Accepted: true,
			Status:   s.votes.StatusOf(userID, id),
			Votes:    updated.Votes,
		})
	case errors.Is(err, models.ErrAlreadyVoted):
		// Redundant clicks are benign: echo the recorded state.
		article, _ := s.articles.GetByID(id)
		writeJSON(w, http.StatusOK, voteResponse{
			Accepted: false,
			Status:   s.votes.StatusOf(userID, id),
			Votes:    article.Votes,
		})
	default:
		writeError(w, err)
	}
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "search mirror is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	params := elasticsearch.SearchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Tags:  parseCSV(r.URL.Query().Get("tags")),
		From:  clampInt(r.URL.Query().Get("from"), 0, 10_000),
		Size:  clampInt(r.URL.Query().Get("size"), 20, 200),
		Sort:  string(ranking.ParseSortMode(r.URL.Query().Get("sort"))),
	}

	result, err := s.search.SearchArticles(ctx, params)
	if err != nil {
		s.log.Error("search failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// publish mirrors an accepted write. The in-memory store is authoritative, so
// a broker failure is logged and the request still succeeds.
func (s *server) publish(ctx context.Context, ev events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RequestTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed",
			slog.Any("err", err),
			slog.String("event_id", ev.ID),
			slog.String("event_type", string(ev.Type)),
			slog.String("article_id", ev.Article.ID),
		)
	}
}

// publishSnapshot announces every stored article so the search mirror matches
// the catalogue the process started with.
func (s *server) publishSnapshot(ctx context.Context) {
	for _, article := range s.articles.ListAll() {
		s.publish(ctx, events.ArticleCreated(article, s.now()))
	}
}

func (s *server) userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(userHeader)); id != "" {
		return id
	}
	return s.cfg.DefaultUserID
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrArticleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArticle), errors.Is(err, models.ErrInvalidVote):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
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

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
