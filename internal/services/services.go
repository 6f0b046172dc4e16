// package services defines the ShowTracker interface for the show tracker REST API
package services

import (
	"context"

	"github.com/desertthunder/tvx/internal/models"
)

// ShowTracker is the full backend surface used by the CLI and terminal UI.
//
// [Client] implements it; tests substitute fakes.
type ShowTracker interface {
	// Env fetches the server environment identifier and, as a side effect, the CSRF cookie.
	Env(ctx context.Context) (string, error)

	// CurrentUser returns the signed-in user or a [shared.UnauthorizedError].
	CurrentUser(ctx context.Context) (*models.User, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, email, password string) (*models.User, error)

	// Logout ends the session and returns the backend's acknowledgement text.
	Logout(ctx context.Context) (string, error)

	// Shows lists the shows tracked by the signed-in user.
	Shows(ctx context.Context) ([]models.Show, error)

	// SearchShows searches the catalog by title.
	SearchShows(ctx context.Context, term string) ([]models.ShowSearchResult, error)

	// AddShow starts tracking the catalog entry with the given TVmaze id.
	AddShow(ctx context.Context, tvmazeID int) (*models.Show, error)
}

var _ ShowTracker = (*Client)(nil)
