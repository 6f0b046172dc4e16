package models

import (
	"fmt"
	"net/url"

	"github.com/desertthunder/tvx/internal/shared"
)

// EpisodeKind distinguishes regular episodes from specials.
type EpisodeKind string

const (
	KindEpisode EpisodeKind = "episode"
	KindSpecial EpisodeKind = "special"
)

// Valid reports whether k is one of the known kinds.
func (k EpisodeKind) Valid() bool {
	return k == KindEpisode || k == KindSpecial
}

// Episode is a single entry of a season.
type Episode struct {
	Kind    EpisodeKind `json:"type"`
	Watched bool        `json:"watched"`
}

// Season is an ordered list of episodes.
type Season []Episode

// Show is a show tracked by the signed-in user.
type Show struct {
	ID            string   `json:"id"`
	TVMazeID      int      `json:"tvmaze_id"`
	Title         string   `json:"title"`
	Source        string   `json:"source"`
	Duration      int      `json:"duration"`
	ImageSmallURL *string  `json:"image_sm_url,omitempty"`
	ImageLargeURL *string  `json:"image_lg_url,omitempty"`
	IMDbID        *string  `json:"imdb_id,omitempty"`
	TheTVDBID     *int     `json:"thetvdb_id,omitempty"`
	Seasons       []Season `json:"seasons"`
}

// Validate returns a list of problems with s, prefixed by path. An empty list means s is valid.
func (s Show) Validate(path string) []string {
	var issues []string
	if !shared.IsUUID(s.ID) {
		issues = append(issues, fmt.Sprintf("%s.id: %q is not a UUID", path, s.ID))
	}
	if s.ImageSmallURL != nil && !IsAbsoluteURL(*s.ImageSmallURL) {
		issues = append(issues, fmt.Sprintf("%s.image_sm_url: %q is not a URL", path, *s.ImageSmallURL))
	}
	if s.ImageLargeURL != nil && !IsAbsoluteURL(*s.ImageLargeURL) {
		issues = append(issues, fmt.Sprintf("%s.image_lg_url: %q is not a URL", path, *s.ImageLargeURL))
	}
	if s.Seasons == nil {
		issues = append(issues, fmt.Sprintf("%s.seasons: missing", path))
	}
	for i, season := range s.Seasons {
		if season == nil {
			issues = append(issues, fmt.Sprintf("%s.seasons[%d]: not a list", path, i))
			continue
		}
		for j, ep := range season {
			if !ep.Kind.Valid() {
				issues = append(issues, fmt.Sprintf("%s.seasons[%d][%d].type: %q is not episode or special", path, i, j, ep.Kind))
			}
		}
	}
	return issues
}

// EpisodeCount returns the number of regular episodes and specials across all seasons.
func (s Show) EpisodeCount() (episodes, specials int) {
	for _, season := range s.Seasons {
		for _, ep := range season {
			if ep.Kind == KindSpecial {
				specials++
			} else {
				episodes++
			}
		}
	}
	return episodes, specials
}

// WatchedCount returns how many entries across all seasons are watched.
func (s Show) WatchedCount() int {
	n := 0
	for _, season := range s.Seasons {
		for _, ep := range season {
			if ep.Watched {
				n++
			}
		}
	}
	return n
}

// Subtitle renders the "source, N min." line shown under a title.
func (s Show) Subtitle() string {
	return fmt.Sprintf("%s, %d min.", s.Source, s.Duration)
}

// TVMazeURL is the public TVmaze page for the show.
func (s Show) TVMazeURL() string {
	return TVMazeURL(s.TVMazeID)
}

// TVMazeURL is the public TVmaze page for a TVmaze id.
func TVMazeURL(id int) string {
	return fmt.Sprintf("https://www.tvmaze.com/shows/%d", id)
}

// IsAbsoluteURL reports whether raw is an absolute URL with a scheme and host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
