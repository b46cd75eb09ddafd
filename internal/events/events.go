package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// Type names an article lifecycle event.
type Type string

const (
	TypeArticleCreated Type = "article.created"
	TypeVoteCast       Type = "vote.cast"
)

// Vote describes the ballot behind a vote.cast event.
type Vote struct {
	UserID   string              `json:"user_id"`
	Category models.VoteCategory `json:"category"`
}

// Event carries a full article snapshot so consumers can upsert without
// reading back from the API.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Article    models.Article `json:"article"`
	Vote       *Vote          `json:"vote,omitempty"`
}

// Publisher sends events to whatever mirrors the article store.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// ArticleCreated builds the event for a fresh submission.
func ArticleCreated(article models.Article, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeArticleCreated,
		OccurredAt: now.UTC(),
		Article:    article,
	}
}

// VoteCast builds the event for an accepted vote; article holds the tally
// after the increment.
func VoteCast(article models.Article, userID string, category models.VoteCategory, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeVoteCast,
		OccurredAt: now.UTC(),
		Article:    article,
		Vote:       &Vote{UserID: userID, Category: category},
	}
}

// Decode parses and validates a wire payload.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if strings.TrimSpace(ev.ID) == "" {
		return Event{}, errors.New("event id is empty")
	}
	switch ev.Type {
	case TypeArticleCreated, TypeVoteCast:
	default:
		return Event{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if strings.TrimSpace(ev.Article.ID) == "" {
		return Event{}, errors.New("event article id is empty")
	}
	return ev, nil
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
