package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
)

// Shows lists the signed-in user's tracked shows.
func (c *Client) Shows(ctx context.Context) ([]models.Show, error) {
	const op = "fetch shows"
	data, err := c.do(ctx, op, http.MethodGet, "/shows", nil, nil)
	if err != nil {
		return nil, err
	}

	dtos, err := decode[[]*showDTO](op, data)
	if err != nil {
		return nil, err
	}
	if dtos == nil {
		return nil, &shared.ValidationError{Op: op, Issues: []string{"shows: expected a list"}}
	}

	var is issues
	shows := make([]models.Show, 0, len(dtos))
	for i, d := range dtos {
		shows = append(shows, d.toShow(fmt.Sprintf("shows[%d]", i), &is))
	}
	if err := is.err(op); err != nil {
		return nil, err
	}
	return shows, nil
}

// SearchShows searches the catalog. The term is sent as-is; callers skip blank terms.
func (c *Client) SearchShows(ctx context.Context, term string) ([]models.ShowSearchResult, error) {
	const op = "search shows"
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is empty", shared.ErrInvalidArgument)
	}

	data, err := c.do(ctx, op, http.MethodGet, "/shows/search", url.Values{"q": {term}}, nil)
	if err != nil {
		return nil, err
	}

	dto, err := decode[searchResultsDTO](op, data)
	if err != nil {
		return nil, err
	}
	if dto.Results == nil {
		return nil, &shared.ValidationError{Op: op, Issues: []string{"results: missing"}}
	}

	var is issues
	results := make([]models.ShowSearchResult, 0, len(dto.Results))
	for i, d := range dto.Results {
		results = append(results, d.toResult(fmt.Sprintf("results[%d]", i), &is))
	}
	if err := is.err(op); err != nil {
		return nil, err
	}
	return results, nil
}

// AddShow starts tracking a catalog entry and returns the created show.
//
// A 409 response matches [shared.ErrAlreadyTracked].
func (c *Client) AddShow(ctx context.Context, tvmazeID int) (*models.Show, error) {
	const op = "add show"
	data, err := c.do(ctx, op, http.MethodPost, "/shows", nil, addShowRequest{TVMazeID: tvmazeID})
	if err != nil {
		return nil, err
	}

	dto, err := decode[*showDTO](op, data)
	if err != nil {
		return nil, err
	}

	var is issues
	show := dto.toShow("show", &is)
	if err := is.err(op); err != nil {
		return nil, err
	}
	return &show, nil
}
