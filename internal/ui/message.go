package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgBootstrapped MsgKind = iota
	MsgSessionChanged
	MsgLoginDone
	MsgLogoutDone
	MsgShowsUpdated
	MsgSearchDone
	MsgAddDone
	MsgNotice
)

func (k MsgKind) String() string {
	switch k {
	case MsgBootstrapped:
		return "bootstrapped"
	case MsgSessionChanged:
		return "session_changed"
	case MsgLoginDone:
		return "login_done"
	case MsgLogoutDone:
		return "logout_done"
	case MsgShowsUpdated:
		return "shows_updated"
	case MsgSearchDone:
		return "search_done"
	case MsgAddDone:
		return "add_done"
	case MsgNotice:
		return "notice"
	default:
		return ""
	}
}

// Kind reports which variant m is.
func (m Msg) Kind() MsgKind { return m.kind }

type bootstrapped struct {
	env   string
	state session.State
	err   error
}

// bootstrappedMsg is the constructor for [MsgBootstrapped]
func bootstrappedMsg(env string, state session.State, err error) Msg {
	return Msg{kind: MsgBootstrapped, data: bootstrapped{env, state, err}}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(state session.State) Msg {
	return Msg{kind: MsgSessionChanged, data: state}
}

// loginDoneMsg is the constructor for [MsgLoginDone]
func loginDoneMsg(user *models.User, err error) Msg {
	return Msg{
		kind: MsgLoginDone,
		data: struct {
			user *models.User
			err  error
		}{user, err},
	}
}

// logoutDoneMsg is the constructor for [MsgLogoutDone]
func logoutDoneMsg(err error) Msg {
	return Msg{kind: MsgLogoutDone, data: err}
}

// showsUpdatedMsg is the constructor for [MsgShowsUpdated]
func showsUpdatedMsg() Msg {
	return Msg{kind: MsgShowsUpdated}
}

type searchDone struct {
	seq     uint64
	term    string
	results []models.ShowSearchResult
	err     error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(seq uint64, term string, results []models.ShowSearchResult, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchDone{seq, term, results, err}}
}

type addDone struct {
	seq  uint64
	show *models.Show
	err  error
}

// addDoneMsg is the constructor for [MsgAddDone]
func addDoneMsg(seq uint64, show *models.Show, err error) Msg {
	return Msg{kind: MsgAddDone, data: addDone{seq, show, err}}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(n tasks.Notice) Msg {
	return Msg{kind: MsgNotice, data: n}
}
