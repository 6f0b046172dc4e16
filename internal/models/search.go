package models

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// ShowSearchResult is a catalog entry returned by show search.
type ShowSearchResult struct {
	TVMazeID                int      `json:"tvmaze_id"`
	Name                    string   `json:"name"`
	Genres                  []string `json:"genres,omitempty"`
	StartYear               *int     `json:"start_year,omitempty"`
	EndYear                 *int     `json:"end_year,omitempty"`
	Network                 *string  `json:"network,omitempty"`
	NetworkCountry          *string  `json:"network_country,omitempty"`
	StreamingService        *string  `json:"streaming_service,omitempty"`
	StreamingServiceCountry *string  `json:"streaming_service_country,omitempty"`
	SummaryHTML             *string  `json:"summary_html,omitempty"`
	ImageSmallURL           *string  `json:"image_sm_url,omitempty"`
}

// SearchResults is the search response envelope.
type SearchResults struct {
	Results []ShowSearchResult `json:"results"`
}

// Validate returns a list of problems with r, prefixed by path.
func (r ShowSearchResult) Validate(path string) []string {
	var issues []string
	if r.ImageSmallURL != nil && !IsAbsoluteURL(*r.ImageSmallURL) {
		issues = append(issues, fmt.Sprintf("%s.image_sm_url: %q is not a URL", path, *r.ImageSmallURL))
	}
	return issues
}

// Years renders the run of the show, e.g. "2008–2013", "2019–" or "".
func (r ShowSearchResult) Years() string {
	switch {
	case r.StartYear == nil:
		return ""
	case r.EndYear == nil:
		return fmt.Sprintf("%d–", *r.StartYear)
	case *r.EndYear == *r.StartYear:
		return fmt.Sprintf("%d", *r.StartYear)
	default:
		return fmt.Sprintf("%d–%d", *r.StartYear, *r.EndYear)
	}
}

// Where names the network or streaming service with its country, if known.
func (r ShowSearchResult) Where() string {
	name, country := r.Network, r.NetworkCountry
	if name == nil {
		name, country = r.StreamingService, r.StreamingServiceCountry
	}
	if name == nil {
		return ""
	}
	if country == nil || *country == "" {
		return *name
	}
	return fmt.Sprintf("%s (%s)", *name, *country)
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// SummaryText strips the sanitized summary HTML down to plain text.
func (r ShowSearchResult) SummaryText() string {
	if r.SummaryHTML == nil {
		return ""
	}
	text := tagPattern.ReplaceAllString(*r.SummaryHTML, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
