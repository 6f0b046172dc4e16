package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a configuration file from the embedded example and validates it.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file already exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	r.config = config
	r.configPath = configPath
	r.logger.Info("setup complete", "path", configPath, "base_url", config.API.BaseURL)

	r.writePlain("✓ Configuration ready at %s\n", configPath)
	r.writePlain("Backend: %s\n", config.API.BaseURL)
	return nil
}
