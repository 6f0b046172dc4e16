package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/shared"
)

// AuthAPI is the part of the backend the session flows use.
type AuthAPI interface {
	Env(ctx context.Context) (string, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) (string, error)
}

// Clearer forgets cached per-user data.
type Clearer interface {
	Clear()
}

// AuthFlow performs session I/O and advances the session machine only after
// a request has succeeded.
type AuthFlow struct {
	api      AuthAPI
	session  *session.Machine
	shows    Clearer
	notifier Notifier
	logger   *log.Logger
}

// NewAuthFlow wires the flow to its collaborators. shows may be nil.
func NewAuthFlow(api AuthAPI, machine *session.Machine, shows Clearer, notifier Notifier, logger *log.Logger) *AuthFlow {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AuthFlow{
		api:      api,
		session:  machine,
		shows:    shows,
		notifier: notifier,
		logger:   logger.With("flow", "auth"),
	}
}

// Bootstrap fetches the environment identifier, which also sets up CSRF,
// and then runs the startup session check.
//
// A bootstrap failure is logged and the check still runs, so the status can
// settle even if the environment call alone failed.
func (a *AuthFlow) Bootstrap(ctx context.Context) (string, session.State, error) {
	env, envErr := a.api.Env(ctx)
	if envErr != nil {
		a.logger.Warn("environment bootstrap failed", "err", envErr)
	}

	state, err := a.session.Check(ctx)
	if err != nil {
		return env, state, err
	}
	if envErr != nil {
		return env, state, fmt.Errorf("environment bootstrap: %w", envErr)
	}
	return env, state, nil
}

// Login authenticates and marks the session authenticated on success.
//
// On failure the session is left as it was.
func (a *AuthFlow) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingCredentials)
	}

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		msg := "Login couldn't be completed due to a network problem; try again later"
		if shared.IsUnauthorized(err) {
			msg = "Incorrect email or password"
			err = fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
		a.logger.Warn("login failed", "email", email, "err", err)
		notify(a.notifier, loginFailedNotice(msg, err))
		return nil, err
	}

	if a.shows != nil {
		a.shows.Clear()
	}
	a.session.MarkAuthenticated(*user)
	a.logger.Info("logged in", "email", user.Email)
	notify(a.notifier, loggedInNotice(user))
	return user, nil
}

// Logout ends the session, clears cached shows and marks the session
// unauthenticated. On failure nothing changes.
func (a *AuthFlow) Logout(ctx context.Context) error {
	if _, err := a.api.Logout(ctx); err != nil {
		a.logger.Error("logout failed", "err", err)
		notify(a.notifier, logoutFailedNotice(err))
		return err
	}

	if a.shows != nil {
		a.shows.Clear()
	}
	a.session.MarkUnauthenticated()
	a.logger.Info("logged out")
	notify(a.notifier, loggedOutNotice())
	return nil
}

// Expire handles an [shared.UnauthorizedError] seen outside the session flows:
// cached shows are cleared and the session is marked unauthenticated.
// It reports whether err was an unauthorized error.
func (a *AuthFlow) Expire(err error) bool {
	if !shared.IsUnauthorized(err) {
		return false
	}
	if a.session.State().Status == models.StatusUnauthenticated {
		return true
	}

	a.logger.Warn("session expired", "err", err)
	if a.shows != nil {
		a.shows.Clear()
	}
	a.session.MarkUnauthenticated()
	return true
}

// Session returns the machine the flow drives.
func (a *AuthFlow) Session() *session.Machine {
	return a.session
}
