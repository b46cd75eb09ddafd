package submission

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// DefaultSummaryMaxLen bounds the summary length in runes.
const DefaultSummaryMaxLen = 200

// Draft is the raw form input of a new article.
type Draft struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Tags    string `json:"tags"`
}

// Builder turns drafts into storable articles.
type Builder struct {
	DefaultAuthor string
	SummaryMaxLen int

	Now   func() time.Time
	NewID func() string
}

// NewBuilder returns a Builder with UUID ids and a UTC wall clock.
func NewBuilder(defaultAuthor string, summaryMaxLen int) *Builder {
	if summaryMaxLen <= 0 {
		summaryMaxLen = DefaultSummaryMaxLen
	}
	return &Builder{
		DefaultAuthor: defaultAuthor,
		SummaryMaxLen: summaryMaxLen,
		Now:           func() time.Time { return time.Now().UTC() },
		NewID:         uuid.NewString,
	}
}

// Build validates d and returns a fresh article with a new id and a zero
// tally. Validation failures wrap models.ErrInvalidArticle.
func (b *Builder) Build(d Draft) (models.Article, error) {
	title := strings.TrimSpace(d.Title)
	summary := strings.TrimSpace(d.Summary)
	content := strings.TrimSpace(d.Content)

	switch {
	case title == "":
		return models.Article{}, fmt.Errorf("%w: title is required", models.ErrInvalidArticle)
	case summary == "":
		return models.Article{}, fmt.Errorf("%w: summary is required", models.ErrInvalidArticle)
	case content == "":
		return models.Article{}, fmt.Errorf("%w: content is required", models.ErrInvalidArticle)
	}
	if n := utf8.RuneCountInString(summary); n > b.SummaryMaxLen {
		return models.Article{}, fmt.Errorf("%w: summary has %d characters, limit is %d",
			models.ErrInvalidArticle, n, b.SummaryMaxLen)
	}

	author := strings.TrimSpace(d.Author)
	if author == "" {
		author = b.DefaultAuthor
	}

	return models.Article{
		ID:      b.NewID(),
		Title:   title,
		Summary: summary,
		Content: content,
		Author:  author,
		Date:    b.Now(),
		Tags:    ParseTags(d.Tags),
		Votes:   models.VoteTally{},
	}, nil
}

// ParseTags splits comma-separated input, trims each entry and drops empty
// ones. Order is preserved; duplicates are kept as entered.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
