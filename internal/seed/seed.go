package seed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

type record struct {
	ID      string           `yaml:"id"`
	Title   string           `yaml:"title"`
	Summary string           `yaml:"summary"`
	Content string           `yaml:"content"`
	Author  string           `yaml:"author"`
	Date    string           `yaml:"date"`
	Tags    []string         `yaml:"tags"`
	Votes   models.VoteTally `yaml:"votes"`
}

type catalogue struct {
	Articles []record `yaml:"articles"`
}

// LoadFile reads a YAML catalogue of the form `articles: [...]`. Dates are
// RFC 3339 strings.
func LoadFile(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalogue.
func Parse(data []byte) ([]models.Article, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	out := make([]models.Article, 0, len(c.Articles))
	for i, r := range c.Articles {
		article, err := r.toArticle()
		if err != nil {
			return nil, fmt.Errorf("seed article %d: %w", i, err)
		}
		out = append(out, article)
	}
	return out, nil
}

func (r record) toArticle() (models.Article, error) {
	if strings.TrimSpace(r.ID) == "" {
		return models.Article{}, fmt.Errorf("%w: id is empty", models.ErrInvalidArticle)
	}
	if r.Votes.Approve < 0 || r.Votes.Neutral < 0 || r.Votes.Disapprove < 0 {
		return models.Article{}, fmt.Errorf("%w: negative vote count", models.ErrInvalidArticle)
	}

	var date time.Time
	if raw := strings.TrimSpace(r.Date); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Article{}, fmt.Errorf("%w: date %q: %v", models.ErrInvalidArticle, raw, err)
		}
		date = ts.UTC()
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Article{
		ID:      r.ID,
		Title:   r.Title,
		Summary: r.Summary,
		Content: r.Content,
		Author:  r.Author,
		Date:    date,
		Tags:    tags,
		Votes:   r.Votes,
	}, nil
}
