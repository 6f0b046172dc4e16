package models

import (
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// SpecialMarker labels specials, which do not consume an episode number.
const SpecialMarker = "★"

// DisplayableEpisode pairs an episode with the label it is rendered with.
type DisplayableEpisode struct {
	Episode
	Marker string
}

// DisplayMarkers labels each episode of a season: specials get [SpecialMarker]
// and regular episodes are numbered consecutively from 1.
func DisplayMarkers(season Season) []DisplayableEpisode {
	out := make([]DisplayableEpisode, 0, len(season))
	next := 1
	for _, ep := range season {
		marker := SpecialMarker
		if ep.Kind != KindSpecial {
			marker = strconv.Itoa(next)
			next++
		}
		out = append(out, DisplayableEpisode{Episode: ep, Marker: marker})
	}
	return out
}

var articles = []string{"a ", "an ", "the "}

// SortTitle is the key shows are ordered by: lowercased, without a leading article.
func SortTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, a := range articles {
		if rest, ok := strings.CutPrefix(t, a); ok && strings.TrimSpace(rest) != "" {
			return strings.TrimSpace(rest)
		}
	}
	return t
}

// SortShows returns a copy of shows ordered by [SortTitle], ties broken by title then id.
func SortShows(shows []Show) []Show {
	out := slices.Clone(shows)
	slices.SortStableFunc(out, func(a, b Show) int {
		if c := strings.Compare(SortTitle(a.Title), SortTitle(b.Title)); c != 0 {
			return c
		}
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

type showTitles []Show

func (s showTitles) String(i int) string { return s[i].Title }
func (s showTitles) Len() int            { return len(s) }

// FilterShows fuzzy-matches pattern against show titles, best matches first.
//
// A blank pattern returns shows unchanged.
func FilterShows(shows []Show, pattern string) []Show {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return shows
	}

	matches := fuzzy.FindFrom(pattern, showTitles(shows))
	out := make([]Show, 0, len(matches))
	for _, m := range matches {
		out = append(out, shows[m.Index])
	}
	return out
}
