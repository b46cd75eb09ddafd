package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// Store is the in-memory article collection. It keeps insertion order and
// hands out copies, so callers never alias stored records.
type Store struct {
	mu       sync.RWMutex
	articles []models.Article
	index    map[string]int
}

// New builds a store preloaded with seed. Seed records go through the same
// checks as Append.
func New(seed []models.Article) (*Store, error) {
	s := &Store{
		articles: make([]models.Article, 0, len(seed)),
		index:    make(map[string]int, len(seed)),
	}
	for _, article := range seed {
		if err := s.Append(article); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ListAll returns every article in insertion order.
func (s *Store) ListAll() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Article, len(s.articles))
	for i, article := range s.articles {
		out[i] = article.Clone()
	}
	return out
}

// GetByID looks up an article by exact id. The boolean is false when no
// article matches.
func (s *Store) GetByID(id string) (models.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return models.Article{}, false
	}
	return s.articles[pos].Clone(), true
}

// Append adds article to the end of the collection. Empty and duplicate ids
// are rejected with models.ErrInvalidArticle.
func (s *Store) Append(article models.Article) error {
	if strings.TrimSpace(article.ID) == "" {
		return fmt.Errorf("%w: id is empty", models.ErrInvalidArticle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[article.ID]; exists {
		return fmt.Errorf("%w: id %q already exists", models.ErrInvalidArticle, article.ID)
	}
	s.index[article.ID] = len(s.articles)
	s.articles = append(s.articles, article.Clone())
	return nil
}

// Increment bumps one tally counter of the article by exactly one and returns
// the updated article.
func (s *Store) Increment(id string, category models.VoteCategory) (models.Article, error) {
	if !category.Valid() {
		return models.Article{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidVote, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return models.Article{}, fmt.Errorf("%w: %s", models.ErrArticleNotFound, id)
	}

	votes := &s.articles[pos].Votes
	switch category {
	case models.VoteApprove:
		votes.Approve++
	case models.VoteNeutral:
		votes.Neutral++
	case models.VoteDisapprove:
		votes.Disapprove++
	}
	return s.articles[pos].Clone(), nil
}

// Len reports how many articles are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}
