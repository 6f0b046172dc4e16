package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Env fetches the environment identifier, which also sets up the CSRF cookie.
func (r *Runner) Env(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}

	env, err := s.client.Env(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch environment: %w", err)
	}
	return r.writePlain("%s\n", env)
}

// AuthLogin logs in with flag, config or prompted credentials.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}

	if _, err := s.client.Env(ctx); err != nil {
		r.logger.Warn("environment bootstrap failed", "err", err)
	}

	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Logged in as %s\n", user.Email)
}

type statusOutput struct {
	Status string       `json:"status"`
	User   *models.User `json:"user"`
	Error  string       `json:"error,omitempty"`
}

// AuthStatus runs the startup session check and prints the resulting status.
//
// A transient failure is reported as "unknown" with the cause, not as an error.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}

	_, state, err := s.auth.Bootstrap(ctx)
	out := statusOutput{Status: state.Status.String(), User: state.User}
	if err != nil && session.IsTransient(err) {
		out.Error = err.Error()
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	line := session.Match(state,
		func() string { return "? Session status unknown" },
		func() string { return "✗ Not logged in" },
		func(u models.User) string { return fmt.Sprintf("✓ Logged in as %s", u.Email) },
	)
	if out.Error != "" {
		line = fmt.Sprintf("%s (%s)", line, out.Error)
	}
	return r.writePlain("%s\n", line)
}
