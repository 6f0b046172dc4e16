package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tvx/internal/shared"
	"github.com/desertthunder/tvx/internal/tasks"
	"github.com/desertthunder/tvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Logging.Level))
	r.SetLogger(fileLogger)

	notices := tasks.NewChannelNotifier(16)
	s, err := r.connect(ctx, tasks.Notifiers{notices, tasks.LogNotifier{Logger: fileLogger}})
	if err != nil {
		return err
	}

	return ui.Run(ctx, ui.Options{
		Auth:           s.auth,
		Shows:          s.shows,
		Flow:           s.flow,
		Notices:        notices,
		Logger:         fileLogger,
		RefetchOnFocus: r.config.UI.RefetchOnFocus,
	})
}
