package ledger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// TallyStore is the part of the article store the ledger mutates.
type TallyStore interface {
	Increment(id string, category models.VoteCategory) (models.Article, error)
}

type voteKey struct {
	userID    string
	articleID string
}

// Ledger enforces one vote per user per article. A single mutex covers the
// check and the tally increment, so concurrent casts for the same pair yield
// exactly one accepted vote.
type Ledger struct {
	mu      sync.Mutex
	records map[voteKey]models.VoteCategory
	tallies TallyStore
	log     *slog.Logger
}

// New creates an empty ledger writing tallies through tallies.
func New(tallies TallyStore, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{
		records: make(map[voteKey]models.VoteCategory),
		tallies: tallies,
		log:     logger,
	}
}

// CastVote records category for the pair and increments the matching counter.
// A pair that already voted gets models.ErrAlreadyVoted and nothing changes;
// an unknown article gets models.ErrArticleNotFound and no record is created.
func (l *Ledger) CastVote(userID, articleID string, category models.VoteCategory) (models.Article, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Article{}, fmt.Errorf("%w: user id is empty", models.ErrInvalidVote)
	}
	if !category.Valid() {
		return models.Article{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidVote, category)
	}

	key := voteKey{userID: userID, articleID: articleID}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.records[key]; ok {
		l.log.Debug("duplicate vote ignored",
			slog.String("user_id", userID),
			slog.String("article_id", articleID),
			slog.String("recorded", string(existing)),
			slog.String("attempted", string(category)),
		)
		return models.Article{}, fmt.Errorf("%w: recorded %s", models.ErrAlreadyVoted, existing)
	}

	updated, err := l.tallies.Increment(articleID, category)
	if err != nil {
		return models.Article{}, err
	}
	l.records[key] = category

	l.log.Info("vote recorded",
		slog.String("user_id", userID),
		slog.String("article_id", articleID),
		slog.String("category", string(category)),
	)
	return updated, nil
}

// StatusOf reports whether userID has voted on articleID and with which
// category.
func (l *Ledger) StatusOf(userID, articleID string) models.VoteStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	category, ok := l.records[voteKey{userID: userID, articleID: articleID}]
	if !ok {
		return models.VoteStatus{}
	}
	return models.VoteStatus{Voted: true, Category: category}
}

// Voters counts the distinct users with a recorded vote on articleID.
func (l *Ledger) Voters(articleID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key := range l.records {
		if key.articleID == articleID {
			n++
		}
	}
	return n
}
