package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
)

// Wire DTOs use pointers so that missing required fields can be told apart
// from zero values.

type userDTO struct {
	ID    json.RawMessage `json:"id"`
	Email *string         `json:"email"`
}

type episodeDTO struct {
	Type    *models.EpisodeKind `json:"type"`
	Watched *bool               `json:"watched"`
}

type showDTO struct {
	ID            *string         `json:"id"`
	TVMazeID      *int            `json:"tvmaze_id"`
	Title         *string         `json:"title"`
	Source        *string         `json:"source"`
	Duration      *int            `json:"duration"`
	ImageSmallURL *string         `json:"image_sm_url"`
	ImageLargeURL *string         `json:"image_lg_url"`
	IMDbID        *string         `json:"imdb_id"`
	TheTVDBID     *int            `json:"thetvdb_id"`
	Seasons       [][]*episodeDTO `json:"seasons"`
}

type searchResultDTO struct {
	TVMazeID                *int     `json:"tvmaze_id"`
	Name                    *string  `json:"name"`
	Genres                  []string `json:"genres"`
	StartYear               *int     `json:"start_year"`
	EndYear                 *int     `json:"end_year"`
	Network                 *string  `json:"network"`
	NetworkCountry          *string  `json:"network_country"`
	StreamingService        *string  `json:"streaming_service"`
	StreamingServiceCountry *string  `json:"streaming_service_country"`
	SummaryHTML             *string  `json:"summary_html"`
	ImageSmallURL           *string  `json:"image_sm_url"`
}

type searchResultsDTO struct {
	Results []*searchResultDTO `json:"results"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addShowRequest struct {
	TVMazeID int `json:"tvmaze_id"`
}

type issues []string

func (is *issues) missing(path, field string) {
	*is = append(*is, fmt.Sprintf("%s.%s: missing", path, field))
}

func (is issues) err(op string) error {
	if len(is) == 0 {
		return nil
	}
	return &shared.ValidationError{Op: op, Issues: is}
}

// toUser accepts string or numeric ids.
func (d *userDTO) toUser(op string) (*models.User, error) {
	var is issues
	var id string
	switch {
	case len(d.ID) == 0 || string(d.ID) == "null":
		is.missing("user", "id")
	default:
		var s string
		var n json.Number
		if err := json.Unmarshal(d.ID, &s); err == nil {
			id = s
		} else if err := json.Unmarshal(d.ID, &n); err == nil {
			id = n.String()
		} else {
			is = append(is, "user.id: not a string or number")
		}
	}
	if d.Email == nil {
		is.missing("user", "email")
	}
	if err := is.err(op); err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: *d.Email}, nil
}

func (d *showDTO) toShow(path string, is *issues) models.Show {
	if d == nil {
		*is = append(*is, path+": null")
		return models.Show{}
	}

	required := []struct {
		name    string
		present bool
	}{
		{"id", d.ID != nil},
		{"tvmaze_id", d.TVMazeID != nil},
		{"title", d.Title != nil},
		{"source", d.Source != nil},
		{"duration", d.Duration != nil},
		{"seasons", d.Seasons != nil},
	}
	for _, r := range required {
		if !r.present {
			is.missing(path, r.name)
		}
	}

	show := models.Show{
		ID:            shared.Deref(d.ID),
		TVMazeID:      shared.Deref(d.TVMazeID),
		Title:         shared.Deref(d.Title),
		Source:        shared.Deref(d.Source),
		Duration:      shared.Deref(d.Duration),
		ImageSmallURL: d.ImageSmallURL,
		ImageLargeURL: d.ImageLargeURL,
		IMDbID:        d.IMDbID,
		TheTVDBID:     d.TheTVDBID,
	}
	if d.Seasons != nil {
		show.Seasons = make([]models.Season, len(d.Seasons))
	}
	for i, season := range d.Seasons {
		if season == nil {
			continue
		}
		show.Seasons[i] = make(models.Season, 0, len(season))
		for j, ep := range season {
			epPath := path + ".seasons[" + strconv.Itoa(i) + "][" + strconv.Itoa(j) + "]"
			if ep == nil {
				*is = append(*is, epPath+": null")
				continue
			}
			if ep.Type == nil {
				is.missing(epPath, "type")
			}
			if ep.Watched == nil {
				is.missing(epPath, "watched")
			}
			show.Seasons[i] = append(show.Seasons[i], models.Episode{
				Kind:    shared.Deref(ep.Type),
				Watched: shared.Deref(ep.Watched),
			})
		}
	}

	for _, issue := range show.Validate(path) {
		if d.ID == nil && strings.HasPrefix(issue, path+".id:") {
			continue
		}
		if d.Seasons == nil && strings.HasPrefix(issue, path+".seasons:") {
			continue
		}
		*is = append(*is, issue)
	}
	return show
}

func (d *searchResultDTO) toResult(path string, is *issues) models.ShowSearchResult {
	if d == nil {
		*is = append(*is, path+": null")
		return models.ShowSearchResult{}
	}
	if d.TVMazeID == nil {
		is.missing(path, "tvmaze_id")
	}
	if d.Name == nil {
		is.missing(path, "name")
	}

	r := models.ShowSearchResult{
		TVMazeID:                shared.Deref(d.TVMazeID),
		Name:                    shared.Deref(d.Name),
		Genres:                  d.Genres,
		StartYear:               d.StartYear,
		EndYear:                 d.EndYear,
		Network:                 d.Network,
		NetworkCountry:          d.NetworkCountry,
		StreamingService:        d.StreamingService,
		StreamingServiceCountry: d.StreamingServiceCountry,
		SummaryHTML:             d.SummaryHTML,
		ImageSmallURL:           d.ImageSmallURL,
	}
	*is = append(*is, r.Validate(path)...)
	return r
}
