package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	csrfCookie    = "csrftoken"
	csrfHeader    = "X-CSRFToken"
	sessionCookie = "sessionid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs method, path, status and latency of every request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
		})
	}
}

// RequireCSRF rejects unsafe requests whose CSRF header does not match the CSRF cookie.
func RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(csrfCookie)
		if err != nil || cookie.Value == "" {
			http.Error(w, "CSRF verification failed: cookie not set", http.StatusForbidden)
			return
		}
		if r.Header.Get(csrfHeader) != cookie.Value {
			http.Error(w, "CSRF verification failed: token mismatch", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
