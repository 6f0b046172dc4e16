package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tvx/internal/cache"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/services"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/tasks"
	tu "github.com/desertthunder/tvx/internal/testing"
)

type harness struct {
	m       *Model
	backend *tu.Backend
	opened  []string
}

func newHarness(t *testing.T, refetchOnFocus bool) *harness {
	t.Helper()
	ctx := context.Background()
	backend := tu.NewBackend(t)

	client, err := services.NewClient(backend.URL())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	notices := tasks.NewChannelNotifier(16)
	shows := cache.New(ctx, client, nil)
	auth := tasks.NewAuthFlow(client, session.New(client, nil), shows, notices, nil)
	flow := tasks.NewAddShowFlow(client, shows, notices, nil)

	h := &harness{backend: backend}
	h.m = NewModel(ctx, Options{
		Auth:           auth,
		Shows:          shows,
		Flow:           flow,
		Notices:        notices,
		RefetchOnFocus: refetchOnFocus,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

// send feeds msg to the model and returns the follow-up command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

// exec runs cmd and feeds its message back into the model.
func (h *harness) exec(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	return h.send(msg)
}

func (h *harness) loggedIn(t *testing.T) {
	t.Helper()
	h.exec(t, h.m.bootstrap())
	if h.m.ViewState() != LoginView {
		t.Fatalf("view = %v, want login", h.m.ViewState())
	}

	h.m.email.SetValue(tu.DemoEmail)
	h.m.password.SetValue(tu.DemoPassword)
	fetch := h.exec(t, h.m.submitLogin())
	if h.m.ViewState() != ShowsView {
		t.Fatalf("view = %v, want shows", h.m.ViewState())
	}
	if fetch != nil {
		fetch()
	}
	h.send(showsUpdatedMsg())
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCheckingView(t *testing.T) {
	t.Run("transient failure never redirects", func(t *testing.T) {
		h := newHarness(t, false)
		h.send(bootstrappedMsg("", session.State{}, errors.New("connection refused")))

		if h.m.ViewState() != CheckingView {
			t.Fatalf("view = %v, want checking", h.m.ViewState())
		}
		if !strings.Contains(h.m.View(), "couldn't be reached") {
			t.Errorf("View() missing error:\n%s", h.m.View())
		}

		h.send(keyRunes("l"))
		if h.m.ViewState() != LoginView {
			t.Errorf("view = %v after l, want login", h.m.ViewState())
		}
	})

	t.Run("login key needs a failed check", func(t *testing.T) {
		h := newHarness(t, false)
		h.send(keyRunes("l"))
		if h.m.ViewState() != CheckingView {
			t.Errorf("view = %v, want checking", h.m.ViewState())
		}
	})

	t.Run("unauthenticated shows the login form", func(t *testing.T) {
		h := newHarness(t, false)
		h.exec(t, h.m.bootstrap())
		if h.m.ViewState() != LoginView {
			t.Fatalf("view = %v, want login", h.m.ViewState())
		}
		if h.m.env != "development" {
			t.Errorf("env = %q", h.m.env)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("success loads shows", func(t *testing.T) {
		h := newHarness(t, false)
		h.backend.Track(h.backend.User.ID, 169)
		h.loggedIn(t)

		view := h.m.View()
		if !strings.Contains(view, "Breaking Bad") || !strings.Contains(view, tu.DemoEmail) {
			t.Errorf("View() =\n%s", view)
		}
	})

	t.Run("bad credentials stay on the form", func(t *testing.T) {
		h := newHarness(t, false)
		h.exec(t, h.m.bootstrap())
		h.m.email.SetValue(tu.DemoEmail)
		h.m.password.SetValue("wrong")
		h.exec(t, h.m.submitLogin())

		if h.m.ViewState() != LoginView {
			t.Errorf("view = %v, want login", h.m.ViewState())
		}
		if !strings.Contains(h.m.View(), "Incorrect email or password") {
			t.Errorf("View() =\n%s", h.m.View())
		}
		if h.m.password.Value() != "" {
			t.Error("password should be cleared")
		}
	})

	t.Run("blank fields do not submit", func(t *testing.T) {
		h := newHarness(t, false)
		h.exec(t, h.m.bootstrap())
		if cmd := h.m.submitLogin(); cmd != nil {
			t.Error("expected no command")
		}
		if h.backend.Calls("POST", "/api/auth/login") != 0 {
			t.Error("expected no login request")
		}
	})

	t.Run("enter moves from email to password", func(t *testing.T) {
		h := newHarness(t, false)
		h.exec(t, h.m.bootstrap())
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
		if !h.m.password.Focused() || h.m.email.Focused() {
			t.Error("expected password to be focused")
		}
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t, false)
	h.loggedIn(t)

	h.exec(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlL}))
	if h.m.ViewState() != LoginView {
		t.Errorf("view = %v, want login", h.m.ViewState())
	}
	if snap := h.m.shows.Snapshot(); snap.HasData {
		t.Error("cache should be cleared after logout")
	}
}

func TestSearchAndAdd(t *testing.T) {
	t.Run("add closes the overlay", func(t *testing.T) {
		h := newHarness(t, false)
		h.loggedIn(t)

		h.send(keyRunes("a"))
		if h.m.ViewState() != SearchView {
			t.Fatalf("view = %v, want search", h.m.ViewState())
		}

		h.m.searchInput.SetValue("breaking")
		h.exec(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
		if len(h.m.results) == 0 || !h.m.resultsFocus {
			t.Fatalf("results = %+v", h.m.results)
		}

		h.exec(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
		if h.m.ViewState() != ShowsView {
			t.Errorf("view = %v, want shows", h.m.ViewState())
		}
		if got := h.backend.Tracked(h.backend.User.ID); len(got) != 1 || got[0].TVMazeID != 169 {
			t.Errorf("tracked = %+v", got)
		}

		if err := h.m.shows.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		if !h.m.shows.Contains(169) {
			t.Error("collection should be refreshed after add")
		}
	})

	t.Run("blank search is a no-op", func(t *testing.T) {
		h := newHarness(t, false)
		h.loggedIn(t)
		h.send(keyRunes("a"))

		if cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			t.Error("expected no command for a blank term")
		}
	})

	t.Run("results for a closed surface are dropped", func(t *testing.T) {
		h := newHarness(t, false)
		h.loggedIn(t)

		h.send(keyRunes("a"))
		stale := h.m.searchSeq
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
		if h.m.ViewState() != ShowsView {
			t.Fatalf("view = %v, want shows", h.m.ViewState())
		}
		h.send(keyRunes("a"))

		h.send(searchDoneMsg(stale, "bad", []models.ShowSearchResult{{TVMazeID: 169, Name: "Breaking Bad"}}, nil))
		if len(h.m.results) != 0 {
			t.Errorf("stale results applied: %+v", h.m.results)
		}
	})

	t.Run("tracked results are not actionable", func(t *testing.T) {
		h := newHarness(t, false)
		h.backend.Track(h.backend.User.ID, 169)
		h.loggedIn(t)

		h.send(keyRunes("a"))
		h.m.results = []models.ShowSearchResult{{TVMazeID: 169, Name: "Breaking Bad"}}
		h.m.resultsFocus = true

		if cmd := h.m.selectResult(); cmd != nil {
			t.Error("expected no command for a tracked result")
		}
		if !strings.Contains(h.m.View(), "tracked") {
			t.Errorf("View() should mark the result tracked:\n%s", h.m.View())
		}
	})
}

func TestShowsKeys(t *testing.T) {
	t.Run("open on TVmaze", func(t *testing.T) {
		h := newHarness(t, false)
		h.backend.Track(h.backend.User.ID, 179)
		h.loggedIn(t)

		h.send(keyRunes("o"))
		if len(h.opened) != 1 || h.opened[0] != "https://www.tvmaze.com/shows/179" {
			t.Errorf("opened = %v", h.opened)
		}
	})

	t.Run("refetch on focus", func(t *testing.T) {
		h := newHarness(t, true)
		h.loggedIn(t)
		before := h.backend.Calls("GET", "/api/shows")

		h.exec(t, h.send(tea.FocusMsg{}))
		if got := h.backend.Calls("GET", "/api/shows"); got != before+1 {
			t.Errorf("shows calls = %d, want %d", got, before+1)
		}
	})

	t.Run("focus refetch disabled", func(t *testing.T) {
		h := newHarness(t, false)
		h.loggedIn(t)
		if cmd := h.send(tea.FocusMsg{}); cmd != nil {
			t.Error("expected no command")
		}
	})

	t.Run("fetch failure shows retry hint", func(t *testing.T) {
		h := newHarness(t, false)
		h.backend.FailNext("GET", "/api/shows", 500, "boom")
		h.loggedIn(t)

		if view := h.m.View(); !strings.Contains(view, "Press r to retry") {
			t.Errorf("View() =\n%s", view)
		}

		h.exec(t, h.send(keyRunes("r")))
		h.send(showsUpdatedMsg())
		if !h.m.snapshot.HasData {
			t.Error("retry should load the collection")
		}
	})
}

func TestNotices(t *testing.T) {
	h := newHarness(t, false)
	h.send(noticeMsg(tasks.Notice{Level: tasks.LevelInfo, Message: "Logged out"}))
	if !strings.Contains(h.m.View(), "Logged out") {
		t.Errorf("View() =\n%s", h.m.View())
	}

	h.m.notices.Notify(tasks.Notice{Message: "queued"})
	cmd := h.m.waitForNotice()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if m, ok := msg.(Msg); !ok || m.Kind() != MsgNotice {
			t.Errorf("msg = %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("notice not delivered")
	}
}

func TestViewStateString(t *testing.T) {
	for v, want := range map[ViewState]string{CheckingView: "checking", LoginView: "login", ShowsView: "shows", SearchView: "search"} {
		if v.String() != want {
			t.Errorf("%d.String() = %q, want %q", v, v.String(), want)
		}
	}
}
