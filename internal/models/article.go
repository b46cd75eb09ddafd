package models

import "time"

// VoteCategory is one of the three ways a reader can judge an article.
type VoteCategory string

const (
	VoteApprove    VoteCategory = "approve"
	VoteNeutral    VoteCategory = "neutral"
	VoteDisapprove VoteCategory = "disapprove"
)

// Valid reports whether c names a known category.
func (c VoteCategory) Valid() bool {
	switch c {
	case VoteApprove, VoteNeutral, VoteDisapprove:
		return true
	default:
		return false
	}
}

// VoteTally holds the per-category counters of an article.
type VoteTally struct {
	Approve    int `json:"approve" yaml:"approve"`
	Neutral    int `json:"neutral" yaml:"neutral"`
	Disapprove int `json:"disapprove" yaml:"disapprove"`
}

// Total is the sum of all three counters.
func (t VoteTally) Total() int {
	return t.Approve + t.Neutral + t.Disapprove
}

// Article is a submitted piece of content together with its vote tally.
type Article struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	Summary string    `json:"summary" yaml:"summary"`
	Content string    `json:"content" yaml:"content"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
	Tags    []string  `json:"tags" yaml:"tags"`
	Votes   VoteTally `json:"votes" yaml:"votes"`
}

// Clone returns a copy that shares no mutable state with a.
func (a Article) Clone() Article {
	if a.Tags != nil {
		a.Tags = append([]string(nil), a.Tags...)
	}
	return a
}

// VoteStatus describes whether a user has voted on an article, and how.
type VoteStatus struct {
	Voted    bool         `json:"voted"`
	Category VoteCategory `json:"category,omitempty"`
}
