// Package services implements the HTTP client for the show tracker backend.
//
// # Client
//
// [Client] issues exactly one request per operation against the REST API
// mounted under [APIBase]. It owns a cookie jar: the session cookie set by
// login and the CSRF cookie set by [Client.Env] ride along on later requests.
// Non-GET requests carry the CSRF token in the [CSRFHeader] header.
//
// # Error Handling
//
// Every operation reports exactly one of:
//   - success, with a body that was decoded and validated
//   - [shared.UnauthorizedError] : the backend answered 401
//   - [shared.RequestError] : any other non-2xx status, or a transport failure (StatusCode 0)
//   - [shared.ValidationError] : a 2xx body that does not match the expected shape
//
// Callers switch on these with errors.As / errors.Is; raw transport errors are
// never returned unwrapped.
//
// # API Mappings
//
// Wire DTOs keep pointer fields so that missing required fields are reported
// instead of silently becoming zero values. They map onto [models.User],
// [models.Show] and [models.ShowSearchResult].
package services
