package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/query"
	"github.com/desertthunder/tvx/internal/shared"
)

// ShowCatalog searches the catalog and starts tracking entries from it.
type ShowCatalog interface {
	SearchShows(ctx context.Context, term string) ([]models.ShowSearchResult, error)
	AddShow(ctx context.Context, tvmazeID int) (*models.Show, error)
}

// Collection is the cached show collection the flow checks and refreshes.
type Collection interface {
	Contains(tvmazeID int) bool
	Invalidate()
}

// FlowState is the phase of an [AddShowFlow].
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowSearching
	FlowAdding
	FlowAddFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowSearching:
		return "searching"
	case FlowAdding:
		return "adding"
	case FlowAddFailed:
		return "add_failed"
	default:
		return ""
	}
}

// FlowSnapshot is a read-only view of an [AddShowFlow].
type FlowSnapshot struct {
	Open     bool
	State    FlowState
	Term     string
	Adding   int // TVmaze id being added; valid when State is FlowAdding
	Err      error
	Search   query.State[[]models.ShowSearchResult]
	Sequence uint64
}

// Results returns the search results, or nil.
func (s FlowSnapshot) Results() []models.ShowSearchResult {
	if s.Search.Data == nil {
		return nil
	}
	return *s.Search.Data
}

// AddShowFlow coordinates searching the catalog and adding one result at a time.
//
// At most one add is outstanding: [AddShowFlow.Select] rejects a second
// selection synchronously, before any request, while the first is in flight.
// A successful add invalidates the show collection and resets the flow; a
// failed add keeps the search results so the user can retry.
type AddShowFlow struct {
	catalog  ShowCatalog
	shows    Collection
	notifier Notifier
	logger   *log.Logger
	search   *query.Runner[string, []models.ShowSearchResult]

	mu     sync.Mutex
	open   bool
	state  FlowState
	term   string
	adding *int
	err    error
	seq    uint64
}

// NewAddShowFlow creates a closed flow.
func NewAddShowFlow(catalog ShowCatalog, shows Collection, notifier Notifier, logger *log.Logger) *AddShowFlow {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AddShowFlow{
		catalog:  catalog,
		shows:    shows,
		notifier: notifier,
		logger:   logger.With("flow", "add_show"),
		search:   query.New(catalog.SearchShows),
	}
}

// Open shows the search surface and returns its sequence number.
func (f *AddShowFlow) Open() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		f.open = true
		f.seq++
	}
	return f.seq
}

// Close hides the search surface and discards search state.
//
// An add that is still in flight completes, but its result no longer reopens
// or resets anything.
func (f *AddShowFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *AddShowFlow) closeLocked() {
	if !f.open {
		return
	}
	f.open = false
	f.seq++
	f.term = ""
	f.err = nil
	if f.adding == nil {
		f.state = FlowIdle
	}
	f.search.Reset()
}

// Search runs a catalog search. A blank term is a no-op.
func (f *AddShowFlow) Search(ctx context.Context, term string) ([]models.ShowSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return nil, shared.ErrFlowClosed
	}
	seq := f.seq
	f.term = term
	if f.adding == nil {
		f.state = FlowSearching
	}
	f.mu.Unlock()

	results, err := f.search.Execute(ctx, term)

	f.mu.Lock()
	current := f.seq == seq && f.term == term
	if current && f.state == FlowSearching {
		f.state = FlowIdle
	}
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("search failed", "term", term, "err", err)
		if current {
			notify(f.notifier, searchFailedNotice(term, err))
		}
		return nil, err
	}
	f.logger.Debug("search", "term", term, "results", len(results), "current", current)
	return results, nil
}

// Tracked reports whether a search result is already in the collection.
func (f *AddShowFlow) Tracked(tvmazeID int) bool {
	return f.shows.Contains(tvmazeID)
}

// Select adds the catalog entry with the given TVmaze id.
//
// It returns [shared.ErrAddInFlight] while another add is outstanding and
// [shared.ErrAlreadyTracked] when the id is already in the collection; in both
// cases no request is made.
func (f *AddShowFlow) Select(ctx context.Context, tvmazeID int) (*models.Show, error) {
	f.mu.Lock()
	if f.adding != nil {
		f.mu.Unlock()
		notify(f.notifier, addInFlightNotice(tvmazeID))
		return nil, fmt.Errorf("%w: %d", shared.ErrAddInFlight, tvmazeID)
	}
	if f.shows.Contains(tvmazeID) {
		f.mu.Unlock()
		notify(f.notifier, alreadyTrackedNotice(tvmazeID))
		return nil, fmt.Errorf("%w: %d", shared.ErrAlreadyTracked, tvmazeID)
	}
	f.adding = &tvmazeID
	f.state = FlowAdding
	f.err = nil
	seq := f.seq
	f.mu.Unlock()

	f.logger.Info("adding show", "tvmaze_id", tvmazeID)
	show, err := f.catalog.AddShow(ctx, tvmazeID)

	f.mu.Lock()
	f.adding = nil
	current := f.seq == seq
	if err != nil {
		if current {
			f.state = FlowAddFailed
			f.err = err
		} else {
			f.state = FlowIdle
		}
		f.mu.Unlock()

		if errors.Is(err, shared.ErrAlreadyTracked) {
			f.logger.Info("backend reports show already tracked", "tvmaze_id", tvmazeID)
			f.shows.Invalidate()
			notify(f.notifier, alreadyTrackedNotice(tvmazeID))
			return nil, err
		}

		f.logger.Error("add show failed", "tvmaze_id", tvmazeID, "err", err)
		notify(f.notifier, addFailedNotice(tvmazeID, err))
		return nil, err
	}

	f.state = FlowIdle
	f.mu.Unlock()

	f.shows.Invalidate()

	f.mu.Lock()
	if f.seq == seq {
		f.closeLocked()
	}
	f.mu.Unlock()

	f.logger.Info("show added", "tvmaze_id", tvmazeID, "title", show.Title)
	notify(f.notifier, showAddedNotice(show))
	return show, nil
}

// Snapshot returns the current state.
func (f *AddShowFlow) Snapshot() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := FlowSnapshot{
		Open:     f.open,
		State:    f.state,
		Term:     f.term,
		Err:      f.err,
		Search:   f.search.State(),
		Sequence: f.seq,
	}
	if f.adding != nil {
		s.Adding = *f.adding
	}
	return s
}
