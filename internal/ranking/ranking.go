package ranking

import (
	"sort"
	"strings"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

// SortMode selects the display order of a listing.
type SortMode string

const (
	SortByDate         SortMode = "date"
	SortByTotalVotes   SortMode = "totalVotes"
	SortByApproveCount SortMode = "approveCount"
)

// ParseSortMode maps raw query input to a mode. Anything unrecognised,
// including the empty string, falls back to SortByDate.
func ParseSortMode(raw string) SortMode {
	switch SortMode(strings.TrimSpace(raw)) {
	case SortByTotalVotes:
		return SortByTotalVotes
	case SortByApproveCount:
		return SortByApproveCount
	default:
		return SortByDate
	}
}

// Rank filters articles by filterText and orders the survivors by mode. The
// input slice and its elements are left untouched; ties keep input order.
func Rank(articles []models.Article, mode SortMode, filterText string) []models.Article {
	needle := strings.ToLower(filterText)

	out := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if Matches(article, needle) {
			out = append(out, article.Clone())
		}
	}

	less := lessFunc(mode)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// Matches reports whether article contains needle in its title, summary or
// any tag. needle must already be lower-cased; empty matches everything.
func Matches(article models.Article, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(article.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(article.Summary), needle) {
		return true
	}
	for _, tag := range article.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func lessFunc(mode SortMode) func(a, b models.Article) bool {
	switch mode {
	case SortByTotalVotes:
		return func(a, b models.Article) bool {
			return a.Votes.Total() > b.Votes.Total()
		}
	case SortByApproveCount:
		return func(a, b models.Article) bool {
			return a.Votes.Approve > b.Votes.Approve
		}
	default:
		return func(a, b models.Article) bool {
			return a.Date.After(b.Date)
		}
	}
}
