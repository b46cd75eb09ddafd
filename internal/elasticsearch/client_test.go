package elasticsearch_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/article-votes/backend/internal/elasticsearch"
	"github.com/DeafMist/article-votes/backend/internal/models"
)

type fakeCluster struct {
	conflict bool

	mu     sync.Mutex
	paths  []string
	bodies []string
	search string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case f.conflict && strings.Contains(r.URL.Path, "/_doc/"):
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":{"type":"version_conflict_engine_exception"}}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, f.search)
	case r.Method == http.MethodPut && strings.Count(r.URL.Path, "/") == 1:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"}}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func newClient(t *testing.T, cluster *fakeCluster) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	c, err := elasticsearch.New(srv.URL, "articles", nil)
	require.NoError(t, err)
	return c
}

func TestIndexArticleSendsFlattenedDocument(t *testing.T) {
	cluster := &fakeCluster{}
	c := newClient(t, cluster)

	article := models.Article{
		ID:    "7",
		Title: "Hello",
		Date:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []string{"go"},
		Votes: models.VoteTally{Approve: 2, Neutral: 1},
	}
	require.NoError(t, c.IndexArticle(context.Background(), article))

	pos := -1
	for i, p := range cluster.paths {
		if p == "PUT /articles/_doc/7" {
			pos = i
		}
	}
	require.NotEqual(t, -1, pos, "paths: %v", cluster.paths)

	var doc elasticsearch.Document
	require.NoError(t, json.Unmarshal([]byte(cluster.bodies[pos]), &doc))
	require.Equal(t, 3, doc.TotalVotes)
	require.Equal(t, 2, doc.Approve)
}

func TestIndexArticleReportsStaleSnapshot(t *testing.T) {
	c := newClient(t, &fakeCluster{conflict: true})

	err := c.IndexArticle(context.Background(), models.Article{ID: "7", Votes: models.VoteTally{Approve: 1}})
	require.ErrorIs(t, err, elasticsearch.ErrStaleSnapshot)
}

func TestEnsureIndexToleratesExistingIndex(t *testing.T) {
	c := newClient(t, &fakeCluster{})
	require.NoError(t, c.EnsureIndex(context.Background()))
}

func TestSearchArticlesDecodesHits(t *testing.T) {
	cluster := &fakeCluster{search: `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"3","title":"Wasm","tags":["Rust"],"approve":10,"neutral":8,"disapprove":5,"total_votes":23}}]}}`}
	c := newClient(t, cluster)

	res, err := c.SearchArticles(context.Background(), elasticsearch.SearchParams{Query: "rust"})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, models.VoteTally{Approve: 10, Neutral: 8, Disapprove: 5}, res.Items[0].Votes)
}

func TestBuildSearchBody(t *testing.T) {
	body := elasticsearch.BuildSearchBody(elasticsearch.SearchParams{Size: 500, From: -3, Sort: "totalVotes", Tags: []string{"Go"}})
	require.Equal(t, 200, body["size"])
	require.Equal(t, 0, body["from"])

	sort := body["sort"].([]map[string]any)
	require.Contains(t, sort[0], "total_votes")

	query := body["query"].(map[string]any)["bool"].(map[string]any)
	require.Contains(t, query, "filter")
	must := query["must"].([]map[string]any)
	require.Contains(t, must[0], "match_all")

	withQuery := elasticsearch.BuildSearchBody(elasticsearch.SearchParams{Query: "react"})
	require.Equal(t, 20, withQuery["size"])
	require.Contains(t, withQuery["sort"].([]map[string]any)[0], "date")
	must = withQuery["query"].(map[string]any)["bool"].(map[string]any)["must"].([]map[string]any)
	require.Contains(t, must[0], "multi_match")
}
