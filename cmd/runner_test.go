package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tvx/internal/shared"
	tu "github.com/desertthunder/tvx/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestRunner(t *testing.T, baseURL string) (*Runner, *bytes.Buffer) {
	t.Helper()
	config := shared.DefaultConfig()
	config.API.BaseURL = baseURL
	config.Credentials.Email = tu.DemoEmail
	config.Credentials.Password = tu.DemoPassword

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Input:  strings.NewReader(""),
		ReadPassword: func() (string, error) {
			return "", errors.New("no terminal")
		},
	})
	return runner, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "tvx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"tvx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil password reader uses terminal prompt", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.readPassword == nil {
				t.Error("expected a password reader")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		expected := []string{"setup", "env", "auth", "shows", "tui", "dev"}
		if len(commands) != len(expected) {
			t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
		}
		for i, name := range expected {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %q, got %q", i, name, commands[i].Name)
			}
			if commands[i].Usage == "" {
				t.Errorf("command %q has no usage", name)
			}
		}
	})

	t.Run("credentials", func(t *testing.T) {
		t.Run("falls back to config", func(t *testing.T) {
			runner, _ := newTestRunner(t, "http://127.0.0.1:1")
			email, password, err := runner.credentials(&cli.Command{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if email != tu.DemoEmail || password != tu.DemoPassword {
				t.Errorf("unexpected credentials %q/%q", email, password)
			}
		})

		t.Run("prompts when config is empty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{
				Output:       output,
				Input:        strings.NewReader("someone@example.com\n"),
				ReadPassword: func() (string, error) { return "secret", nil },
			})

			email, password, err := runner.credentials(&cli.Command{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if email != "someone@example.com" || password != "secret" {
				t.Errorf("unexpected credentials %q/%q", email, password)
			}
			if !strings.Contains(output.String(), "Email: ") || !strings.Contains(output.String(), "Password: ") {
				t.Errorf("expected prompts, got %q", output.String())
			}
		})

		t.Run("missing input", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output:       &bytes.Buffer{},
				Input:        strings.NewReader(""),
				ReadPassword: func() (string, error) { return "", errors.New("no terminal") },
			})

			_, _, err := runner.credentials(&cli.Command{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})
}

func TestCommands(t *testing.T) {
	t.Run("env prints the environment", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "env"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(output.String()) != "development" {
			t.Errorf("expected development, got %q", output.String())
		}
	})

	t.Run("invalid base URL", func(t *testing.T) {
		runner, _ := newTestRunner(t, "not a url")

		if err := run(runner, "env"); err == nil {
			t.Fatal("expected an error for an invalid base URL")
		}
	})

	t.Run("auth status without a session", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("auth status as JSON when the backend is down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		runner, output := newTestRunner(t, srv.URL)

		if err := run(runner, "auth", "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var status statusOutput
		if err := json.Unmarshal(output.Bytes(), &status); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if status.Status != "unknown" {
			t.Errorf("expected unknown, got %q", status.Status)
		}
		if status.Error == "" {
			t.Error("expected the failure cause")
		}
	})

	t.Run("auth login", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "auth", "login"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Logged in as "+tu.DemoEmail) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("auth login with a wrong password", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, _ := newTestRunner(t, backend.URL())

		err := run(runner, "auth", "login", "--password", "nope")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("shows list when nothing is tracked", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No shows tracked yet.") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("shows list sorted as CSV", func(t *testing.T) {
		backend := tu.NewBackend(t)
		backend.Track(backend.User.ID, 179)
		backend.Track(backend.User.ID, 169)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "list", "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %q", output.String())
		}
		if !strings.Contains(lines[1], "Breaking Bad") || !strings.Contains(lines[2], "The Wire") {
			t.Errorf("expected rows sorted by title, got %v", lines[1:])
		}
	})

	t.Run("shows list to a file", func(t *testing.T) {
		backend := tu.NewBackend(t)
		backend.Track(backend.User.ID, 169)
		runner, output := newTestRunner(t, backend.URL())
		path := filepath.Join(t.TempDir(), "shows.md")

		if err := run(runner, "shows", "list", "-f", "markdown", "-o", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "Breaking Bad") {
			t.Error("expected the show in the file")
		}
		if !strings.Contains(output.String(), "Wrote 1 show") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("shows list rejects an unknown format", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, _ := newTestRunner(t, backend.URL())

		err := run(runner, "shows", "list", "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if backend.Calls(http.MethodGet, "/api/shows") != 0 {
			t.Error("expected no requests for an invalid format")
		}
	})

	t.Run("shows search marks tracked results", func(t *testing.T) {
		backend := tu.NewBackend(t)
		backend.Track(backend.User.ID, 169)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "search", "b"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var tracked, untracked string
		for _, line := range strings.Split(output.String(), "\n") {
			switch {
			case strings.Contains(line, "Breaking Bad"):
				tracked = line
			case strings.Contains(line, "Better Call Saul"):
				untracked = line
			}
		}
		if !strings.HasPrefix(tracked, "✓") {
			t.Errorf("expected tracked marker, got %q", tracked)
		}
		if untracked == "" || strings.HasPrefix(untracked, "✓") {
			t.Errorf("expected unmarked result, got %q", untracked)
		}
	})

	t.Run("shows search as JSON", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "search", "--json", "wire"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var envelope struct {
			Results []struct {
				TVMazeID int `json:"tvmaze_id"`
			} `json:"results"`
		}
		if err := json.Unmarshal(output.Bytes(), &envelope); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if len(envelope.Results) != 1 || envelope.Results[0].TVMazeID != 179 {
			t.Errorf("unexpected results %+v", envelope.Results)
		}
	})

	t.Run("shows search without a term", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, _ := newTestRunner(t, backend.URL())

		err := run(runner, "shows", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("shows add tracks and lists the collection", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "add", "169"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(backend.Tracked(backend.User.ID)) != 1 {
			t.Fatal("expected the show to be tracked")
		}
		out := output.String()
		if !strings.Contains(out, "Added Breaking Bad") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(out, "Shows: 1") {
			t.Errorf("expected refreshed collection, got %q", out)
		}
		if backend.Calls(http.MethodGet, "/api/shows") < 2 {
			t.Error("expected the collection to be refetched after the add")
		}
	})

	t.Run("shows add an already tracked show", func(t *testing.T) {
		backend := tu.NewBackend(t)
		backend.Track(backend.User.ID, 169)
		runner, output := newTestRunner(t, backend.URL())

		if err := run(runner, "shows", "add", "169"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Already tracking") {
			t.Errorf("unexpected output %q", output.String())
		}
		if backend.Calls(http.MethodPost, "/api/shows") != 0 {
			t.Error("expected no add request for a tracked show")
		}
	})

	t.Run("shows add an unknown id", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, _ := newTestRunner(t, backend.URL())

		err := run(runner, "shows", "add", "424242")
		if !errors.Is(err, shared.ErrShowNotFound) {
			t.Errorf("expected ErrShowNotFound, got %v", err)
		}
	})

	t.Run("shows add rejects a malformed id", func(t *testing.T) {
		backend := tu.NewBackend(t)
		runner, _ := newTestRunner(t, backend.URL())

		for _, arg := range []string{"abc", "0"} {
			err := run(runner, "shows", "add", arg)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", arg, err)
			}
		}
	})

	t.Run("shows list when the backend is down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		runner, _ := newTestRunner(t, srv.URL)

		err := run(runner, "shows", "list")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	runner, output := newTestRunner(t, "http://127.0.0.1:8000")

	if err := run(runner, "setup", "--config", path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, path)
	if runner.configPath != path {
		t.Errorf("expected configPath %q, got %q", path, runner.configPath)
	}
	if !strings.Contains(output.String(), "Configuration ready") {
		t.Errorf("unexpected output %q", output.String())
	}
}

func TestDevBackend(t *testing.T) {
	runner, _ := newTestRunner(t, "http://127.0.0.1:8000")

	t.Run("pre-tracks shows", func(t *testing.T) {
		backend, err := runner.newDevBackend([]string{"169", " 179"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		srv := httptest.NewServer(backend)
		defer srv.Close()

		other, output := newTestRunner(t, srv.URL)
		other.config.Credentials.Email = runner.config.Server.Email
		other.config.Credentials.Password = runner.config.Server.Password

		if err := run(other, "shows", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Shows: 2") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		_, err := runner.newDevBackend([]string{"abc"})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects an id outside the catalog", func(t *testing.T) {
		_, err := runner.newDevBackend([]string{"1"})
		if !errors.Is(err, shared.ErrShowNotFound) {
			t.Errorf("expected ErrShowNotFound, got %v", err)
		}
	})
}
