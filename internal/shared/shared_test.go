package shared

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  log.Level
	}{
		{name: "empty defaults to info", input: "", want: log.InfoLevel},
		{name: "debug", input: "debug", want: log.DebugLevel},
		{name: "mixed case and spaces", input: "  WARN ", want: log.WarnLevel},
		{name: "unknown defaults to info", input: "chatty", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "component=test") {
			t.Errorf("unexpected log output: %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger appends to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tvx.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Warn("written")
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("log file missing entry: %q", data)
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID is a UUID", func(t *testing.T) {
		id := GenerateID()
		if !IsUUID(id) {
			t.Errorf("GenerateID() = %q is not a UUID", id)
		}
		if IsUUID("not-a-uuid") {
			t.Error("IsUUID accepted garbage")
		}
	})

	t.Run("Pluralize", func(t *testing.T) {
		if got := Pluralize(1, "show"); got != "1 show" {
			t.Errorf("got %q", got)
		}
		if got := Pluralize(3, "show"); got != "3 shows" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("Deref", func(t *testing.T) {
		n := 7
		if Deref(&n) != 7 || Deref[int](nil) != 0 {
			t.Error("Deref returned unexpected values")
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("UnauthorizedError matches sentinel", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &UnauthorizedError{Op: "current user"})
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Error("expected errors.Is ErrNotAuthenticated")
		}
		if !IsUnauthorized(err) {
			t.Error("expected IsUnauthorized")
		}
		if errors.Is(err, ErrAPIRequest) {
			t.Error("unauthorized must not match ErrAPIRequest")
		}
	})

	t.Run("RequestError message", func(t *testing.T) {
		err := &RequestError{Op: "add show", StatusCode: 500, Status: "Internal Server Error", Body: "boom\n"}
		if got := err.Error(); got != "add show: 500 Internal Server Error - boom" {
			t.Errorf("Error() = %q", got)
		}
		if err.Transport() {
			t.Error("status error is not a transport error")
		}
	})

	t.Run("RequestError status sentinels", func(t *testing.T) {
		conflict := &RequestError{Op: "add show", StatusCode: 409, Status: "Conflict"}
		if !errors.Is(conflict, ErrAlreadyTracked) || !errors.Is(conflict, ErrAPIRequest) {
			t.Error("409 should match ErrAlreadyTracked and ErrAPIRequest")
		}
		missing := &RequestError{Op: "add show", StatusCode: 404, Status: "Not Found"}
		if !errors.Is(missing, ErrShowNotFound) || errors.Is(missing, ErrAlreadyTracked) {
			t.Error("404 should match only ErrShowNotFound")
		}
	})

	t.Run("RequestError transport unwraps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &RequestError{Op: "shows", Err: cause}
		if !err.Transport() || !errors.Is(err, cause) {
			t.Error("transport error should unwrap to its cause")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := &ValidationError{Op: "shows", Issues: []string{"shows[0].id: missing"}}
		if !errors.Is(err, ErrInvalidResponse) {
			t.Error("expected ErrInvalidResponse")
		}
		if !strings.Contains(err.Error(), "shows[0].id: missing") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
