package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/cache"
	"github.com/desertthunder/tvx/internal/services"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/shared"
	"github.com/desertthunder/tvx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
	input        *bufio.Reader
	readPassword func() (string, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config       *shared.Config
	ConfigPath   string
	HTTPClient   *http.Client
	Logger       *log.Logger
	Output       io.Writer
	Input        io.Reader
	ReadPassword func() (string, error) // defaults to a no-echo terminal prompt
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        bufio.NewReader(opts.Input),
		readPassword: opts.ReadPassword,
	}
	if r.readPassword == nil {
		r.readPassword = r.readTerminalPassword
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, envCommand, authCommand, showsCommand, tuiCommand, devCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// stack is the client-side object graph shared by the show commands and the TUI.
type stack struct {
	client *services.Client
	auth   *tasks.AuthFlow
	shows  *cache.ShowCache
	flow   *tasks.AddShowFlow
}

// connect wires a fresh client, session machine, show cache and flows.
func (r *Runner) connect(ctx context.Context, notifier tasks.Notifier) (*stack, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	client, err := services.NewClient(r.config.API.BaseURL,
		services.WithHTTPClient(r.httpClient),
		services.WithTimeout(r.config.API.Timeout()),
		services.WithRateLimit(r.config.API.RateLimit),
		services.WithLogger(shared.WithLogger(r.logger, "component", "client")),
	)
	if err != nil {
		return nil, err
	}

	machine := session.New(client, shared.WithLogger(r.logger, "component", "session"))
	shows := cache.New(ctx, client, r.logger)
	return &stack{
		client: client,
		auth:   tasks.NewAuthFlow(client, machine, shows, notifier, r.logger),
		shows:  shows,
		flow:   tasks.NewAddShowFlow(client, shows, notifier, r.logger),
	}, nil
}

// authenticate bootstraps the session and logs in when the backend does not
// already recognize one.
func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command, s *stack) error {
	_, state, err := s.auth.Bootstrap(ctx)
	if state.Authenticated() {
		return nil
	}
	if err != nil && session.IsTransient(err) {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}
	if _, err := s.auth.Login(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// credentials resolves login credentials from flags, then config (including
// TVX_EMAIL and TVX_PASSWORD), then an interactive prompt.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	email := cmd.String("email")
	if email == "" {
		email = r.config.Credentials.Email
	}
	password := cmd.String("password")
	if password == "" {
		password = r.config.Credentials.Password
	}

	if email == "" {
		r.writePlain("Email: ")
		line, err := r.input.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("%w: email", shared.ErrMissingCredentials)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		r.writePlain("Password: ")
		p, err := r.readPassword()
		r.writePlain("\n")
		if err != nil {
			return "", "", fmt.Errorf("%w: password: %v", shared.ErrMissingCredentials, err)
		}
		password = p
	}

	if email == "" || password == "" {
		return "", "", fmt.Errorf("%w: email and password are required", shared.ErrMissingCredentials)
	}
	return email, password, nil
}

func (r *Runner) readTerminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := r.input.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	data, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
