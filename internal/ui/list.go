package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tvx/internal/formatter"
	"github.com/desertthunder/tvx/internal/models"
)

var (
	_ list.Item = showItem{}
)

// showItem wraps [models.Show] to implement [list.Item].
type showItem struct {
	show models.Show
}

func (i showItem) FilterValue() string { return i.show.Title }
func (i showItem) Title() string       { return i.show.Title }
func (i showItem) Description() string {
	return fmt.Sprintf("%s • %s watched", i.show.Subtitle(), formatter.Progress(i.show))
}

func showItems(shows []models.Show) []list.Item {
	sorted := models.SortShows(shows)
	items := make([]list.Item, len(sorted))
	for i, s := range sorted {
		items[i] = showItem{show: s}
	}
	return items
}

// seasonsView renders one line per season with episode markers.
func seasonsView(show models.Show) string {
	if len(show.Seasons) == 0 {
		return styles.muted.Render("No episodes yet")
	}
	lines := make([]string, len(show.Seasons))
	for i, season := range show.Seasons {
		lines[i] = fmt.Sprintf("S%-2d %s", i+1, formatter.SeasonLine(season))
	}
	return strings.Join(lines, "\n")
}

// resultLine renders a search result. Tracked results are rendered muted and
// cannot be selected; the result being added carries an "adding…" marker.
func resultLine(r models.ShowSearchResult, cursor, tracked, adding bool) string {
	prefix := "  "
	if cursor {
		prefix = "> "
	}

	details := make([]string, 0, 2)
	for _, d := range []string{r.Years(), r.Where()} {
		if d != "" {
			details = append(details, d)
		}
	}
	line := r.Name
	if len(details) > 0 {
		line = fmt.Sprintf("%s (%s)", line, strings.Join(details, ", "))
	}

	switch {
	case adding:
		return prefix + styles.warn.Render(line+"  adding…")
	case tracked:
		return prefix + styles.muted.Render(line+"  "+formatter.WatchedMark+" tracked")
	case cursor:
		return prefix + styles.selected.Render(line)
	default:
		return prefix + line
	}
}
