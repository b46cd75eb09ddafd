package ranking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/article-votes/backend/internal/models"
	"github.com/DeafMist/article-votes/backend/internal/ranking"
)

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func ids(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestRankByDateMostRecentFirst(t *testing.T) {
	in := []models.Article{
		{ID: "jan", Date: day("2025-01-01")},
		{ID: "mar", Date: day("2025-03-01")},
		{ID: "feb", Date: day("2025-02-01")},
	}

	got := ranking.Rank(in, ranking.SortByDate, "")
	require.Equal(t, []string{"mar", "feb", "jan"}, ids(got))
	require.Equal(t, []string{"jan", "mar", "feb"}, ids(in))
}

func TestRankByTotalVotesIsStable(t *testing.T) {
	in := []models.Article{
		{ID: "a", Votes: models.VoteTally{Approve: 2, Neutral: 1}},
		{ID: "b", Votes: models.VoteTally{Approve: 5}},
		{ID: "c", Votes: models.VoteTally{Approve: 1, Neutral: 1, Disapprove: 1}},
	}

	got := ranking.Rank(in, ranking.SortByTotalVotes, "")
	require.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestRankByApproveCount(t *testing.T) {
	in := []models.Article{
		{ID: "a", Votes: models.VoteTally{Approve: 1, Disapprove: 10}},
		{ID: "b", Votes: models.VoteTally{Approve: 3}},
		{ID: "c", Votes: models.VoteTally{Approve: 1}},
	}

	got := ranking.Rank(in, ranking.SortByApproveCount, "")
	require.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestRankFilter(t *testing.T) {
	in := []models.Article{
		{ID: "tagged", Title: "Data fetching", Tags: []string{"Next.js", "React"}},
		{ID: "title", Title: "Why REACTIVE streams"},
		{ID: "summary", Title: "Wasm", Summary: "Moving off react-dom"},
		{ID: "none", Title: "Rust", Summary: "Systems", Tags: []string{"wasm"}},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "empty keeps all", filter: "", want: []string{"tagged", "title", "summary", "none"}},
		{name: "case insensitive", filter: "react", want: []string{"tagged", "title", "summary"}},
		{name: "upper input", filter: "RUST", want: []string{"none"}},
		{name: "tag substring", filter: "next", want: []string{"tagged"}},
		{name: "no match", filter: "kotlin", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranking.Rank(in, ranking.SortByTotalVotes, tt.filter)
			require.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRankDoesNotAliasInput(t *testing.T) {
	in := []models.Article{{ID: "a", Tags: []string{"go"}}}

	got := ranking.Rank(in, ranking.SortByDate, "")
	got[0].Tags[0] = "changed"
	got[0].Votes.Approve = 7

	require.Equal(t, "go", in[0].Tags[0])
	require.Zero(t, in[0].Votes.Approve)
}

func TestParseSortMode(t *testing.T) {
	require.Equal(t, ranking.SortByTotalVotes, ranking.ParseSortMode("totalVotes"))
	require.Equal(t, ranking.SortByApproveCount, ranking.ParseSortMode(" approveCount "))
	require.Equal(t, ranking.SortByDate, ranking.ParseSortMode("date"))
	require.Equal(t, ranking.SortByDate, ranking.ParseSortMode(""))
	require.Equal(t, ranking.SortByDate, ranking.ParseSortMode("popularity"))
}
