// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email (defaults to credentials.email or TVX_EMAIL)",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "Account password (defaults to credentials.password or TVX_PASSWORD; prompted when empty)",
		},
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml from the bundled example",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// envCommand prints the backend environment identifier.
func envCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "env",
		Usage:  "Print the backend environment identifier",
		Action: r.Env,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and print the signed-in user",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Run the startup session check and print the status",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// showsCommand handles show collection operations
func showsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shows",
		Usage: "List, search and add tracked shows",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tracked shows sorted by title",
				Flags: append(credentialFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Fuzzy filter on show titles",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				),
				Action: r.ShowsList,
			},
			{
				Name:  "search",
				Usage: "Search the TVmaze catalog; tracked results are marked",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "term",
					},
				},
				Flags: append(credentialFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.ShowsSearch,
			},
			{
				Name:  "add",
				Usage: "Start tracking a show by TVmaze id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "tvmaze-id",
					},
				},
				Flags:  credentialFlags(),
				Action: r.ShowsAdd,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal client",
		Action:  r.TUI,
	}
}

// devCommand handles local development helpers
func devCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Development helpers",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run an in-memory backend with a demo account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to server.host:server.port)",
					},
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "TVmaze ids to pre-track for the demo account",
					},
				},
				Action: r.DevServe,
			},
		},
	}
}
