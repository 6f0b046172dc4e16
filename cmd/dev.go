package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tvx/internal/server"
	"github.com/desertthunder/tvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// newDevBackend builds the in-memory backend with the configured demo account.
func (r *Runner) newDevBackend(track []string) (*server.Backend, error) {
	backend := server.NewBackend(shared.WithLogger(r.logger, "component", "backend"))
	user := backend.AddUser(r.config.Server.Email, r.config.Server.Password)

	for _, raw := range track {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: --track %q", shared.ErrInvalidFlag, raw)
		}
		if _, ok := backend.Track(user.ID, id); !ok {
			return nil, fmt.Errorf("%w: TVmaze id %d is not in the demo catalog", shared.ErrShowNotFound, id)
		}
	}
	return backend, nil
}

// DevServe runs the in-memory backend until interrupted.
func (r *Runner) DevServe(ctx context.Context, cmd *cli.Command) error {
	backend, err := r.newDevBackend(cmd.StringSlice("track"))
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	r.writePlain("Demo account: %s / %s\n", r.config.Server.Email, r.config.Server.Password)
	return server.ListenAndServe(ctx, addr, backend, r.logger)
}
