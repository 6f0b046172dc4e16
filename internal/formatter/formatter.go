// package formatter renders show listings and search results as text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
)

// Format is an output format for show listings.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat maps a flag value onto a [Format]. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: format %q (want one of %s)", shared.ErrInvalidFlag, s, formatNames())
	}
}

func formatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// WatchedMark follows the marker of a watched episode.
const WatchedMark = "✓"

// SeasonLine renders a season as its episode markers, watched ones suffixed with [WatchedMark].
func SeasonLine(season models.Season) string {
	parts := make([]string, 0, len(season))
	for _, ep := range models.DisplayMarkers(season) {
		if ep.Watched {
			parts = append(parts, ep.Marker+WatchedMark)
		} else {
			parts = append(parts, ep.Marker)
		}
	}
	return strings.Join(parts, " ")
}

// Progress renders "watched/total" across every season of a show.
func Progress(show models.Show) string {
	episodes, specials := show.EpisodeCount()
	return fmt.Sprintf("%d/%d", show.WatchedCount(), episodes+specials)
}

// Shows renders shows in the given format. Shows are sorted by title first.
func Shows(shows []models.Show, format Format) ([]byte, error) {
	sorted := models.SortShows(shows)
	switch format {
	case FormatText:
		return ShowsToText(sorted)
	case FormatMarkdown:
		return ShowsToMarkdown(sorted)
	case FormatCSV:
		return ShowsToCSV(sorted)
	case FormatJSON:
		return ShowsToJSON(sorted)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}

// ShowsToText converts shows to plain text, one block per show with a line per season.
func ShowsToText(shows []models.Show) ([]byte, error) {
	var buf bytes.Buffer

	if len(shows) == 0 {
		buf.WriteString("No shows tracked yet.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString(fmt.Sprintf("Shows: %d\n\n", len(shows)))
	for i, show := range shows {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) [%s]\n", i+1, show.Title, show.Subtitle(), Progress(show)))
		for n, season := range show.Seasons {
			buf.WriteString(fmt.Sprintf("   S%d: %s\n", n+1, SeasonLine(season)))
		}
	}

	return buf.Bytes(), nil
}

// ShowsToMarkdown converts shows to Markdown with a section per show.
func ShowsToMarkdown(shows []models.Show) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Shows\n\n")
	buf.WriteString(fmt.Sprintf("**Tracked**: %d\n\n", len(shows)))

	for _, show := range shows {
		buf.WriteString(fmt.Sprintf("## [%s](%s)\n\n", show.Title, show.TVMazeURL()))
		if show.ImageSmallURL != nil {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", show.Title, *show.ImageSmallURL))
		}
		buf.WriteString(fmt.Sprintf("*%s* · %s watched\n\n", show.Subtitle(), Progress(show)))
		for n, season := range show.Seasons {
			buf.WriteString(fmt.Sprintf("- Season %d: `%s`\n", n+1, SeasonLine(season)))
		}
		if len(show.Seasons) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ShowsToCSV converts shows to CSV with columns: ID, TVmaze ID, Title, Source, Duration, Seasons, Episodes, Specials, Watched
func ShowsToCSV(shows []models.Show) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "TVmaze ID", "Title", "Source", "Duration", "Seasons", "Episodes", "Specials", "Watched"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, show := range shows {
		episodes, specials := show.EpisodeCount()
		record := []string{
			show.ID,
			strconv.Itoa(show.TVMazeID),
			show.Title,
			show.Source,
			strconv.Itoa(show.Duration),
			strconv.Itoa(len(show.Seasons)),
			strconv.Itoa(episodes),
			strconv.Itoa(specials),
			strconv.Itoa(show.WatchedCount()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ShowsToJSON converts shows to indented JSON in the backend's wire shape.
func ShowsToJSON(shows []models.Show) ([]byte, error) {
	if shows == nil {
		shows = []models.Show{}
	}
	return shared.MarshalJSON(shows)
}

// SearchResultsToText renders catalog search results. tracked marks results
// already in the collection; it may be nil.
func SearchResultsToText(results []models.ShowSearchResult, tracked func(int) bool) ([]byte, error) {
	var buf bytes.Buffer

	if len(results) == 0 {
		buf.WriteString("No results.\n")
		return buf.Bytes(), nil
	}

	for _, r := range results {
		mark := " "
		if tracked != nil && tracked(r.TVMazeID) {
			mark = WatchedMark
		}

		details := make([]string, 0, 3)
		for _, d := range []string{r.Years(), r.Where(), strings.Join(r.Genres, ", ")} {
			if d != "" {
				details = append(details, d)
			}
		}

		buf.WriteString(fmt.Sprintf("%s %7d  %s", mark, r.TVMazeID, r.Name))
		if len(details) > 0 {
			buf.WriteString(fmt.Sprintf(" (%s)", strings.Join(details, "; ")))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// SearchResultsToJSON renders search results in the backend's envelope shape.
func SearchResultsToJSON(results []models.ShowSearchResult) ([]byte, error) {
	if results == nil {
		results = []models.ShowSearchResult{}
	}
	return shared.MarshalJSON(models.SearchResults{Results: results})
}

// Write renders shows to w.
func Write(w io.Writer, shows []models.Show, format Format) error {
	data, err := Shows(shows, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile exports shows to path, defaulting to shows.{ext}.
func WriteFile(path string, shows []models.Show, format Format) (string, error) {
	if path == "" {
		path = "shows." + Extension(format)
	}

	data, err := Shows(shows, format)
	if err != nil {
		return "", fmt.Errorf("failed to render shows: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

// Extension is the file extension for a format.
func Extension(format Format) string {
	switch format {
	case FormatMarkdown:
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}
