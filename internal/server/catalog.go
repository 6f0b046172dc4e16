package server

import "github.com/desertthunder/tvx/internal/models"

// CatalogEntry is a show the stub backend can search for and start tracking.
type CatalogEntry struct {
	models.ShowSearchResult
	Source   string
	Duration int
	Seasons  []models.Season
}

func ptr[T any](v T) *T { return &v }

func season(episodes int, specialsAt ...int) models.Season {
	s := models.Season{}
	specials := map[int]bool{}
	for _, i := range specialsAt {
		specials[i] = true
	}
	for i := 0; len(s) < episodes+len(specialsAt); i++ {
		kind := models.KindEpisode
		if specials[i] {
			kind = models.KindSpecial
		}
		s = append(s, models.Episode{Kind: kind})
	}
	return s
}

// DefaultCatalog returns a small fixed catalog.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ShowSearchResult: models.ShowSearchResult{
				TVMazeID:       169,
				Name:           "Breaking Bad",
				Genres:         []string{"Drama", "Crime", "Thriller"},
				StartYear:      ptr(2008),
				EndYear:        ptr(2013),
				Network:        ptr("AMC"),
				NetworkCountry: ptr("US"),
				SummaryHTML:    ptr("<p><b>Breaking Bad</b> follows a chemistry teacher turned manufacturer.</p>"),
				ImageSmallURL:  ptr("https://static.tvmaze.com/uploads/images/medium_portrait/0/2400.jpg"),
			},
			Source:   "AMC",
			Duration: 60,
			Seasons:  []models.Season{season(7), season(13, 0)},
		},
		{
			ShowSearchResult: models.ShowSearchResult{
				TVMazeID:                618,
				Name:                    "Better Call Saul",
				Genres:                  []string{"Drama", "Crime"},
				StartYear:               ptr(2015),
				EndYear:                 ptr(2022),
				Network:                 ptr("AMC"),
				NetworkCountry:          ptr("US"),
				StreamingService:        ptr("Netflix"),
				StreamingServiceCountry: ptr(""),
				SummaryHTML:             ptr("<p>The trials of a small-time lawyer.</p>"),
			},
			Source:   "AMC",
			Duration: 60,
			Seasons:  []models.Season{season(10), season(10)},
		},
		{
			ShowSearchResult: models.ShowSearchResult{
				TVMazeID:       179,
				Name:           "The Wire",
				Genres:         []string{"Drama", "Crime"},
				StartYear:      ptr(2002),
				EndYear:        ptr(2008),
				Network:        ptr("HBO"),
				NetworkCountry: ptr("US"),
			},
			Source:   "HBO",
			Duration: 60,
			Seasons:  []models.Season{season(13), season(12), season(12), season(13), season(10)},
		},
		{
			ShowSearchResult: models.ShowSearchResult{
				TVMazeID:         49,
				Name:             "Doctor Who",
				Genres:           []string{"Adventure", "Science-Fiction"},
				StartYear:        ptr(2005),
				Network:          ptr("BBC One"),
				NetworkCountry:   ptr("GB"),
				SummaryHTML:      ptr("<p>Adventures in time &amp; space.</p>"),
				StreamingService: ptr("BBC iPlayer"),
			},
			Source:   "BBC One",
			Duration: 45,
			Seasons:  []models.Season{season(13, 0, 14), season(13, 13)},
		},
		{
			ShowSearchResult: models.ShowSearchResult{
				TVMazeID:         68,
				Name:             "The Bear",
				Genres:           []string{"Drama", "Comedy"},
				StartYear:        ptr(2022),
				StreamingService: ptr("Hulu"),
			},
			Source:   "FX on Hulu",
			Duration: 30,
			Seasons:  []models.Season{season(8), season(10)},
		},
	}
}
