// Package models defines the domain entities shared by the tvx client, the
// development backend stub and the terminal UI.
//
// The package contains:
//
//   - [User] : the signed-in account
//   - [AuthStatus] : the closed authentication status enum
//   - [Show] : a tracked show with its seasons of [Episode] values
//   - [ShowSearchResult] : a catalog entry returned by search
//
// JSON tags match the backend wire format. Presentation helpers
// ([DisplayMarkers], [SortShows], [FilterShows]) live next to the types they
// operate on so every surface renders shows the same way.
package models
