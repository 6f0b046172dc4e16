// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is gated by the session status:
//  1. [CheckingView] : shown while the status is unknown; a failed startup check never redirects
//  2. [LoginView] : email and password form
//  3. [ShowsView] : the tracked shows with per-season episode markers
//  4. [SearchView] : catalog search overlay for adding a show
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session transitions, cache updates and notices arrive through channels and are turned into messages,
// so background refetches triggered by an add show up without the view polling.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a, r, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
