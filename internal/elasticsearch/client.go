package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// ErrStaleSnapshot means the index already holds a newer tally for the
// article than the one offered.
var ErrStaleSnapshot = errors.New("stale article snapshot")

// Client mirrors articles into an Elasticsearch index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// SearchParams narrow the search endpoint query.
type SearchParams struct {
	Query string
	Tags  []string
	From  int
	Size  int
	// Sort is one of date, totalVotes, approveCount.
	Sort string
}

// SearchResult bundles hits and total count.
type SearchResult struct {
	Total int64            `json:"total"`
	Items []models.Article `json:"items"`
}

// Document is the indexed shape of an article. Tallies are flattened so they
// can be sorted on.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Date       time.Time `json:"date"`
	Tags       []string  `json:"tags"`
	Approve    int       `json:"approve"`
	Neutral    int       `json:"neutral"`
	Disapprove int       `json:"disapprove"`
	TotalVotes int       `json:"total_votes"`
}

// ToDocument flattens an article for indexing.
func ToDocument(a models.Article) Document {
	return Document{
		ID:         a.ID,
		Title:      a.Title,
		Summary:    a.Summary,
		Content:    a.Content,
		Author:     a.Author,
		Date:       a.Date,
		Tags:       a.Tags,
		Approve:    a.Votes.Approve,
		Neutral:    a.Votes.Neutral,
		Disapprove: a.Votes.Disapprove,
		TotalVotes: a.Votes.Total(),
	}
}

// Article restores the article view of a document.
func (d Document) Article() models.Article {
	return models.Article{
		ID:      d.ID,
		Title:   d.Title,
		Summary: d.Summary,
		Content: d.Content,
		Author:  d.Author,
		Date:    d.Date,
		Tags:    d.Tags,
		Votes: models.VoteTally{
			Approve:    d.Approve,
			Neutral:    d.Neutral,
			Disapprove: d.Disapprove,
		},
	}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "summary":     {"type": "text"},
      "content":     {"type": "text"},
      "author":      {"type": "keyword"},
      "date":        {"type": "date"},
      "tags":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "approve":     {"type": "integer"},
      "neutral":     {"type": "integer"},
      "disapprove":  {"type": "integer"},
      "total_votes": {"type": "integer"}
    }
  }
}`

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the article index with its mapping. An index that
// already exists is left as is.
func (c *Client) EnsureIndex(ctx context.Context) error {
	req := esapi.IndicesCreateRequest{
		Index: c.index,
		Body:  strings.NewReader(indexMapping),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if res.StatusCode == http.StatusBadRequest && bytes.Contains(body, []byte("resource_already_exists_exception")) {
			c.log.Debug("index already exists", slog.String("index", c.index))
			return nil
		}
		return fmt.Errorf("create index failed: %s", strings.TrimSpace(string(body)))
	}

	c.log.Info("index created", slog.String("index", c.index))
	return nil
}

// IndexArticle upserts the article snapshot under its id. Tallies only grow,
// so the vote total is the external version; an older snapshot arriving late
// yields ErrStaleSnapshot and leaves the document alone.
func (c *Client) IndexArticle(ctx context.Context, article models.Article) error {
	payload, err := json.Marshal(ToDocument(article))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	version := article.Votes.Total()
	req := esapi.IndexRequest{
		Index:       c.index,
		DocumentID:  article.ID,
		Body:        bytes.NewReader(payload),
		Refresh:     "false",
		Version:     &version,
		VersionType: "external_gte",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: article %s at version %d", ErrStaleSnapshot, article.ID, version)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}

	return nil
}

// SearchArticles runs a relevance query over title, summary and tags.
func (c *Client) SearchArticles(ctx context.Context, params SearchParams) (*SearchResult, error) {
	payload, err := json.Marshal(BuildSearchBody(params))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Article, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source.Article())
	}

	return &SearchResult{
		Total: parsed.Hits.Total.Value,
		Items: items,
	}, nil
}

// BuildSearchBody renders params as a bool query. Paging is clamped to
// 1..200 hits.
func BuildSearchBody(params SearchParams) map[string]any {
	if params.Size <= 0 {
		params.Size = 20
	}
	if params.Size > 200 {
		params.Size = 200
	}
	if params.From < 0 {
		params.From = 0
	}

	boolQuery := map[string]any{}
	if q := strings.TrimSpace(params.Query); q != "" {
		boolQuery["must"] = []map[string]any{{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "summary", "tags"},
			},
		}}
	} else {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}
	if len(params.Tags) > 0 {
		boolQuery["filter"] = []map[string]any{{
			"terms": map[string]any{"tags.raw": params.Tags},
		}}
	}

	field := "date"
	switch params.Sort {
	case "totalVotes":
		field = "total_votes"
	case "approveCount":
		field = "approve"
	}

	return map[string]any{
		"from":             params.From,
		"size":             params.Size,
		"track_total_hits": true,
		"query":            map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{field: map[string]any{"order": "desc"}},
		},
	}
}

// Health reports cluster health.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
