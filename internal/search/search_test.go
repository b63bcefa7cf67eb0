package search

import (
	"reflect"
	"testing"

	"github.com/pmeridian/charta/internal/domain"
)

func mediaTitled(titles ...string) []*domain.MediaItem {
	items := make([]*domain.MediaItem, len(titles))
	for i, title := range titles {
		items[i] = &domain.MediaItem{ID: title, Title: title}
	}
	return items
}

func titlesOf(items []*domain.MediaItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestRankMediaOrdering(t *testing.T) {
	items := mediaTitled(
		"The Dune Encyclopedia", // substring match
		"Duel",                  // typo-distance match
		"Dune",                  // exact
		"Dune Messiah",          // prefix
	)

	got := titlesOf(RankMedia(items, "dune"))
	want := []string{"Dune", "Dune Messiah", "The Dune Encyclopedia", "Duel"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankMedia order = %v, want %v", got, want)
	}
}

func TestRankMediaCaseFolds(t *testing.T) {
	items := mediaTitled("DUNE", "other")
	got := titlesOf(RankMedia(items, "dune"))
	if got[0] != "DUNE" {
		t.Errorf("case-folded exact match not first: %v", got)
	}
}

func TestRankMediaStableAmongEqualScores(t *testing.T) {
	items := mediaTitled("Dune One", "Dune Two", "Dune Three")
	got := titlesOf(RankMedia(items, "dune"))
	want := []string{"Dune One", "Dune Two", "Dune Three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("equal-score order not preserved: %v", got)
	}
}

func TestRankMediaDoesNotMutateInput(t *testing.T) {
	items := mediaTitled("Zebra", "Dune")
	RankMedia(items, "dune")
	if items[0].Title != "Zebra" {
		t.Error("input slice was reordered")
	}
}

func TestRankMediaEmptyQuery(t *testing.T) {
	items := mediaTitled("b", "a")
	got := titlesOf(RankMedia(items, "  "))
	if !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("empty query changed order: %v", got)
	}
}

func TestRankTitlesDropsNonMatches(t *testing.T) {
	got := RankTitles("hist", []string{"Hardcore History", "99% Invisible", "History Extra"})
	for _, title := range got {
		if title == "99% Invisible" {
			t.Errorf("non-match kept: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("RankTitles = %v, want the two history shows", got)
	}
}

func TestFilterMatch(t *testing.T) {
	var f Filter
	f.Set([]string{"Dune", "Arrival", "Dune Messiah"})

	matches := f.Match("dn")
	if len(matches) == 0 {
		t.Fatal("no matches for subsequence query")
	}
	for _, m := range matches {
		if m.Index < 0 || m.Index > 2 {
			t.Errorf("match index out of range: %#v", m)
		}
		if len(m.MatchedIndexes) == 0 {
			t.Errorf("match without highlight positions: %#v", m)
		}
	}
}

func TestFilterEmptyQueryMatchesNothing(t *testing.T) {
	var f Filter
	f.Set([]string{"Dune"})
	if got := f.Match(""); got != nil {
		t.Errorf("Match(\"\") = %v, want nil", got)
	}
}
