package server

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/shared"
)

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	body   string
}

// Backend is an in-memory implementation of the show tracker REST API.
//
// It issues CSRF and session cookies the way the real backend does, keeps
// tracked shows per user and serves search from a fixed catalog. Tests can
// inject failures with [Backend.FailNext] and count requests with [Backend.Calls].
type Backend struct {
	env    string
	logger *log.Logger
	router *BasicRouter

	mu       sync.Mutex
	accounts map[string]account // by email
	sessions map[string]string  // session token -> user id
	tracked  map[string][]models.Show
	catalog  []CatalogEntry
	failures map[string][]failure
	calls    map[string]int
}

// BackendOption configures a [Backend].
type BackendOption func(*Backend)

// WithEnv sets the identifier served by /api/env.
func WithEnv(env string) BackendOption {
	return func(b *Backend) { b.env = env }
}

// WithCatalog replaces [DefaultCatalog].
func WithCatalog(entries []CatalogEntry) BackendOption {
	return func(b *Backend) { b.catalog = entries }
}

// NewBackend creates a backend with no accounts.
func NewBackend(logger *log.Logger, opts ...BackendOption) *Backend {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	b := &Backend{
		env:      "development",
		logger:   logger,
		accounts: map[string]account{},
		sessions: map[string]string{},
		tracked:  map[string][]models.Show{},
		catalog:  DefaultCatalog(),
		failures: map[string][]failure{},
		calls:    map[string]int{},
	}
	for _, opt := range opts {
		opt(b)
	}

	r := NewBasicRouter()
	r.Use(Logging(logger), b.counting, b.injectFailures, RequireCSRF)
	r.HandleFunc(http.MethodGet, "/api/env", b.handleEnv)
	r.HandleFunc(http.MethodGet, "/api/auth/users/me", b.authenticated(b.handleMe))
	r.HandleFunc(http.MethodPost, "/api/auth/login", b.handleLogin)
	r.HandleFunc(http.MethodGet, "/api/auth/logout", b.authenticated(b.handleLogout))
	r.HandleFunc(http.MethodGet, "/api/shows", b.authenticated(b.handleListShows))
	r.HandleFunc(http.MethodPost, "/api/shows", b.authenticated(b.handleAddShow))
	r.HandleFunc(http.MethodGet, "/api/shows/search", b.authenticated(b.handleSearch))
	b.router = r

	return b
}

// ServeHTTP implements [http.Handler].
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// AddUser registers an account and returns its user.
func (b *Backend) AddUser(email, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := models.User{ID: shared.GenerateID(), Email: email}
	b.accounts[strings.ToLower(email)] = account{user: u, password: password}
	return u
}

// Track starts tracking a catalog entry for a user without going through HTTP.
func (b *Backend) Track(userID string, tvmazeID int) (models.Show, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.track(userID, tvmazeID)
}

// Tracked returns the shows tracked by a user.
func (b *Backend) Tracked(userID string) []models.Show {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tracked[userID])
}

// FailNext makes the next request matching method and path answer with status and body.
// Calls queue up.
func (b *Backend) FailNext(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, body: body})
}

// Calls returns how many requests were received for method and path.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *Backend) counting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		queue := b.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			b.failures[key] = queue[1:]
		}
		b.mu.Unlock()

		if f != nil {
			http.Error(w, f.body, f.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, user models.User)

func (b *Backend) authenticated(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		b.mu.Lock()
		userID, ok := b.sessions[cookie.Value]
		var user models.User
		for _, a := range b.accounts {
			if a.user.ID == userID {
				user = a.user
			}
		}
		b.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid session.")
			return
		}
		next(w, r, user)
	}
}

func (b *Backend) handleEnv(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(csrfCookie); err != nil || c.Value == "" {
		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookie,
			Value:    strings.ReplaceAll(shared.GenerateID(), "-", ""),
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, b.env)
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, user models.User) {
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed login request.")
		return
	}

	b.mu.Lock()
	a, ok := b.accounts[strings.ToLower(creds.Email)]
	if !ok || a.password != creds.Password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}
	token := shared.GenerateID()
	b.sessions[token] = a.user.ID
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, a.user)
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request, _ models.User) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, cookie.Value)
		b.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Logged out")
}

func (b *Backend) handleListShows(w http.ResponseWriter, _ *http.Request, user models.User) {
	b.mu.Lock()
	shows := slices.Clone(b.tracked[user.ID])
	b.mu.Unlock()

	if shows == nil {
		shows = []models.Show{}
	}
	writeJSON(w, http.StatusOK, shows)
}

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request, _ models.User) {
	term := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if term == "" {
		writeError(w, http.StatusBadRequest, "Missing search term.")
		return
	}

	b.mu.Lock()
	results := []models.ShowSearchResult{}
	for _, e := range b.catalog {
		if strings.Contains(strings.ToLower(e.Name), term) {
			results = append(results, e.ShowSearchResult)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.SearchResults{Results: results})
}

func (b *Backend) handleAddShow(w http.ResponseWriter, r *http.Request, user models.User) {
	var req struct {
		TVMazeID int `json:"tvmaze_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TVMazeID == 0 {
		writeError(w, http.StatusBadRequest, "Malformed add request.")
		return
	}

	b.mu.Lock()
	for _, s := range b.tracked[user.ID] {
		if s.TVMazeID == req.TVMazeID {
			b.mu.Unlock()
			writeError(w, http.StatusConflict, "Show is already tracked.")
			return
		}
	}
	show, ok := b.track(user.ID, req.TVMazeID)
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "No such show.")
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

// track must be called with mu held.
func (b *Backend) track(userID string, tvmazeID int) (models.Show, bool) {
	for _, e := range b.catalog {
		if e.TVMazeID != tvmazeID {
			continue
		}
		seasons := make([]models.Season, len(e.Seasons))
		for i, s := range e.Seasons {
			seasons[i] = slices.Clone(s)
		}
		show := models.Show{
			ID:            shared.GenerateID(),
			TVMazeID:      e.TVMazeID,
			Title:         e.Name,
			Source:        e.Source,
			Duration:      e.Duration,
			ImageSmallURL: e.ImageSmallURL,
			ImageLargeURL: e.ImageSmallURL,
			Seasons:       seasons,
		}
		b.tracked[userID] = append(b.tracked[userID], show)
		return show, true
	}
	return models.Show{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
