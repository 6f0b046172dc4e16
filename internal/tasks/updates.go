package tasks

import (
	"fmt"

	"github.com/desertthunder/tvx/internal/models"
)

// Notice is a user-facing message produced by a flow.
//
// Surfaces decide how to show it (status line, stderr, log).
type Notice struct {
	Kind    Kind   // What happened
	Level   Level  // Severity for rendering
	Message string // Human-readable message for display
	Err     error  // Underlying error, if any
	Data    any    // Optional kind-specific data
}

// Level is the severity of a [Notice].
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Kind enumerates notice sources.
type Kind int

const (
	ShowAdded Kind = iota
	AddFailed
	AlreadyTracked
	AddInFlight
	SearchFailed
	FetchFailed
	LoggedIn
	LoginFailed
	LoggedOut
	LogoutFailed
)

func (k Kind) String() string {
	switch k {
	case ShowAdded:
		return "show_added"
	case AddFailed:
		return "add_failed"
	case AlreadyTracked:
		return "already_tracked"
	case AddInFlight:
		return "add_in_flight"
	case SearchFailed:
		return "search_failed"
	case FetchFailed:
		return "fetch_failed"
	case LoggedIn:
		return "logged_in"
	case LoginFailed:
		return "login_failed"
	case LoggedOut:
		return "logged_out"
	case LogoutFailed:
		return "logout_failed"
	default:
		return ""
	}
}

const (
	logoutFailedMessage = "Logout couldn't be completed due to a network problem; try again later"
	addFailedMessage    = "The show couldn't be added; try again"
	searchFailedMessage = "Search failed; try again"
	fetchFailedMessage  = "Your shows couldn't be loaded; press r to retry"
)

func showAddedNotice(show *models.Show) Notice {
	return Notice{
		Kind:    ShowAdded,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Added %s", show.Title),
		Data:    show,
	}
}

func addFailedNotice(tvmazeID int, err error) Notice {
	return Notice{
		Kind:    AddFailed,
		Level:   LevelError,
		Message: addFailedMessage,
		Err:     err,
		Data:    tvmazeID,
	}
}

func alreadyTrackedNotice(tvmazeID int) Notice {
	return Notice{
		Kind:    AlreadyTracked,
		Level:   LevelInfo,
		Message: "You're already tracking that show",
		Data:    tvmazeID,
	}
}

func addInFlightNotice(tvmazeID int) Notice {
	return Notice{
		Kind:    AddInFlight,
		Level:   LevelWarning,
		Message: "Still adding the previous show",
		Data:    tvmazeID,
	}
}

func searchFailedNotice(term string, err error) Notice {
	return Notice{
		Kind:    SearchFailed,
		Level:   LevelError,
		Message: searchFailedMessage,
		Err:     err,
		Data:    term,
	}
}

// FetchFailedNotice reports a failed show collection load.
func FetchFailedNotice(err error) Notice {
	return Notice{
		Kind:    FetchFailed,
		Level:   LevelError,
		Message: fetchFailedMessage,
		Err:     err,
	}
}

func loggedInNotice(user *models.User) Notice {
	return Notice{
		Kind:    LoggedIn,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Logged in as %s", user.Email),
		Data:    user,
	}
}

func loginFailedNotice(message string, err error) Notice {
	return Notice{
		Kind:    LoginFailed,
		Level:   LevelError,
		Message: message,
		Err:     err,
	}
}

func loggedOutNotice() Notice {
	return Notice{
		Kind:    LoggedOut,
		Level:   LevelInfo,
		Message: "Logged out",
	}
}

func logoutFailedNotice(err error) Notice {
	return Notice{
		Kind:    LogoutFailed,
		Level:   LevelError,
		Message: logoutFailedMessage,
		Err:     err,
	}
}
