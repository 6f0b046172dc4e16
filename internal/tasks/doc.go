// Package tasks orchestrates the user-driven flows of the show tracker client.
//
// # Core Operations
//
//  1. [AddShowFlow] : search the catalog and add one result at a time
//     - blank search terms are ignored
//     - a second selection while an add is in flight is rejected before any request
//     - shows already in the collection are rejected locally
//     - success invalidates the collection and resets the flow
//     - failure keeps the search results for a retry
//
//  2. [AuthFlow] : environment bootstrap, startup check, login and logout
//     - the session machine only moves after a request succeeded
//     - logout clears the cached collection
//
// # Notices
//
// Flows report user-facing outcomes as [Notice] values through a [Notifier].
// [ChannelNotifier] never blocks: when its buffer is full the notice is dropped,
// so flows are never held up by a slow reader.
package tasks
