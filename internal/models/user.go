package models

// User is the account returned by the current-user and login endpoints.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthStatus is the authentication status of the client session.
//
// The zero value is [StatusUnknown].
type AuthStatus int

const (
	StatusUnknown AuthStatus = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}
