// Package search provides client-side ranking and quick filtering over
// catalog lists. Server search returns unordered hits; RankMedia reorders
// them for display. Filter backs the in-list quick filter with match
// positions for highlighting.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/pmeridian/charta/internal/domain"
)

// RankMedia orders server search hits by how well their titles match the
// query. Exact and prefix matches rise above substring and typo matches.
// The input slice is not modified.
func RankMedia(items []*domain.MediaItem, query string) []*domain.MediaItem {
	if len(items) == 0 {
		return items
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]*domain.MediaItem, len(items))
		copy(out, items)
		return out
	}

	type rankedItem struct {
		item  *domain.MediaItem
		score int
	}

	ranked := make([]rankedItem, len(items))
	for i, item := range items {
		ranked[i] = rankedItem{item: item, score: matchScore(strings.ToLower(item.Title), query)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]*domain.MediaItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}

// matchScore rates how well title matches query. Lower is better.
func matchScore(title, query string) int {
	if title == query {
		return 0
	}
	if strings.HasPrefix(title, query) {
		return 10
	}
	if strings.Contains(title, query) {
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}

// RankTitles filters and orders a plain title list against a query,
// case-folded. Non-matching titles are dropped.
func RankTitles(query string, titles []string) []string {
	matches := fuzzy.RankFindFold(query, titles)
	sort.Sort(matches)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Target
	}
	return out
}

// Match is one quick-filter hit with the character positions that matched,
// used by list components to highlight the matched runes.
type Match struct {
	Index          int
	Score          int
	MatchedIndexes []int
}

// Filter is a reusable quick-filter index over a list of titles. Lowercase
// titles are precomputed at Set time so repeated keystrokes do not
// re-allocate.
type Filter struct {
	lowerTitles []string
}

// String and Len implement sahilm/fuzzy.Source.
func (f *Filter) String(i int) string { return f.lowerTitles[i] }
func (f *Filter) Len() int            { return len(f.lowerTitles) }

// Set replaces the indexed titles.
func (f *Filter) Set(titles []string) {
	f.lowerTitles = make([]string, len(titles))
	for i, t := range titles {
		f.lowerTitles[i] = strings.ToLower(t)
	}
}

// Match returns the indexed titles matching query, best first. An empty
// query matches nothing; callers show the unfiltered list instead.
func (f *Filter) Match(query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || f.Len() == 0 {
		return nil
	}

	hits := sahilm.FindFrom(query, f)
	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = Match{Index: h.Index, Score: h.Score, MatchedIndexes: h.MatchedIndexes}
	}
	return out
}
