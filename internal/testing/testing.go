// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/server"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "hunter2"
)

// Backend is a running stub backend with one registered account.
type Backend struct {
	*server.Backend
	Server *httptest.Server
	User   models.User
}

// URL is the base URL to point a client at.
func (b *Backend) URL() string {
	return b.Server.URL
}

// NewBackend starts a [server.Backend] behind an httptest server, registers
// [DemoEmail] and closes the server when the test ends.
func NewBackend(t *testing.T, opts ...server.BackendOption) *Backend {
	t.Helper()
	stub := server.NewBackend(nil, opts...)
	user := stub.AddUser(DemoEmail, DemoPassword)
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return &Backend{Backend: stub, Server: srv, User: user}
}

// SampleShow builds a valid show.
func SampleShow(id string, tvmazeID int, title string) models.Show {
	return models.Show{
		ID:       id,
		TVMazeID: tvmazeID,
		Title:    title,
		Source:   "HBO",
		Duration: 60,
		Seasons: []models.Season{
			{{Kind: models.KindEpisode, Watched: true}, {Kind: models.KindSpecial}, {Kind: models.KindEpisode}},
		},
	}
}

// Eventually polls cond until it holds or timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
