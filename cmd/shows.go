package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tvx/internal/formatter"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
	"github.com/desertthunder/tvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ShowsList prints the tracked shows in the requested format.
func (r *Runner) ShowsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd, s); err != nil {
		return err
	}

	shows, err := s.shows.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch shows: %w", err)
	}
	shows = models.FilterShows(shows, cmd.String("filter"))
	r.logger.Debug("listing shows", "count", len(shows), "format", format)

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteFile(path, shows, format)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s to %s\n", shared.Pluralize(len(shows), "show"), written)
	}

	data, err := formatter.Shows(shows, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// ShowsSearch searches the catalog and marks results that are already tracked.
func (r *Runner) ShowsSearch(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}

	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd, s); err != nil {
		return err
	}
	if _, err := s.shows.Fetch(ctx); err != nil {
		r.logger.Warn("could not load tracked shows; results are not marked", "err", err)
	}

	s.flow.Open()
	defer s.flow.Close()

	results, err := s.flow.Search(ctx, term)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		data, err := formatter.SearchResultsToJSON(results)
		if err != nil {
			return err
		}
		return r.writeBytes(append(data, '\n'))
	}

	data, err := formatter.SearchResultsToText(results, s.flow.Tracked)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// ShowsAdd starts tracking a show and prints the refreshed collection.
func (r *Runner) ShowsAdd(ctx context.Context, cmd *cli.Command) error {
	raw := strings.TrimSpace(cmd.StringArg("tvmaze-id"))
	if raw == "" {
		return fmt.Errorf("%w: tvmaze-id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: tvmaze-id %q is not a positive integer", shared.ErrInvalidArgument, raw)
	}

	s, err := r.connect(ctx, tasks.LogNotifier{Logger: r.logger})
	if err != nil {
		return err
	}
	if err := r.authenticate(ctx, cmd, s); err != nil {
		return err
	}
	if _, err := s.shows.Fetch(ctx); err != nil {
		return fmt.Errorf("failed to fetch shows: %w", err)
	}

	show, err := s.flow.Select(ctx, id)
	switch {
	case errors.Is(err, shared.ErrAlreadyTracked):
		r.writePlain("Already tracking TVmaze show %d\n", id)
		return nil
	case errors.Is(err, shared.ErrShowNotFound):
		return fmt.Errorf("%w: no TVmaze show with id %d", shared.ErrShowNotFound, id)
	case err != nil:
		return fmt.Errorf("failed to add show: %w", err)
	}

	if err := s.shows.Wait(ctx); err != nil {
		return err
	}
	r.writePlain("✓ Added %s\n\n", show.Title)

	snap := s.shows.Snapshot()
	if snap.Err != nil {
		r.logger.Warn("refresh after add failed", "err", snap.Err)
	}
	data, err := formatter.Shows(snap.Shows, formatter.FormatText)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}
