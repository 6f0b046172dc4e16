// Package server provides HTTP routing, middleware and an in-memory
// implementation of the show tracker backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and dispatches by method,
// so one path can serve GET and POST.
//
// # Backend Stub
//
// [Backend] speaks the same REST API as the real backend under /api: it issues
// the csrftoken cookie from /api/env, enforces the X-CSRFToken header on unsafe
// methods ([RequireCSRF]), keeps sessions in a sessionid cookie, tracks shows per
// user and answers search from [DefaultCatalog].
//
// # Current Usage
//
// `tvx dev serve` runs the stub with [ListenAndServe] so the CLI and TUI can be
// tried without the real backend, and internal/testing wraps it in an httptest
// server for client tests.
package server
