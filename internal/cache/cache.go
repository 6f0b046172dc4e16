// Package cache holds the client-side copy of the user's tracked shows.
//
// [ShowCache] is the single owner of the "shows" collection. Reads return
// snapshots; writes only happen when a fetch settles. Invalidation is
// asynchronous and coalesced: any number of invalidations while a refetch is
// running produce at most one follow-up refetch.
package cache

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/models"
)

// Key identifies the show collection.
const Key = "shows"

// ShowLister fetches the tracked shows.
type ShowLister interface {
	Shows(ctx context.Context) ([]models.Show, error)
}

// Snapshot is a read-only view of the cache.
type Snapshot struct {
	Shows     []models.Show
	HasData   bool
	Err       error
	Stale     bool
	Fetching  bool
	FetchedAt time.Time
}

// ShowCache caches the show collection under [Key].
type ShowCache struct {
	ctx    context.Context
	lister ShowLister
	logger *log.Logger

	mu        sync.Mutex
	shows     []models.Show
	hasData   bool
	err       error
	stale     bool
	fetchedAt time.Time
	epoch     uint64 // bumped by Clear

	running  int  // fetches currently in flight
	inflight bool // background refetch running
	pending  bool // another background refetch requested
	idle     *sync.Cond

	updates chan struct{}
}

// New creates an empty cache. Background refetches run under ctx.
func New(ctx context.Context, lister ShowLister, logger *log.Logger) *ShowCache {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &ShowCache{
		ctx:     ctx,
		lister:  lister,
		logger:  logger.With("cache", Key),
		updates: make(chan struct{}, 1),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Fetch retrieves the collection and stores it. It is the initial load and
// behaves exactly like [ShowCache.Refetch].
func (c *ShowCache) Fetch(ctx context.Context) ([]models.Show, error) {
	return c.Refetch(ctx)
}

// Refetch retrieves the collection and replaces the stored value.
//
// On failure the previous value is kept and the error is recorded. When
// fetches overlap, whichever settles last wins.
func (c *ShowCache) Refetch(ctx context.Context) ([]models.Show, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.running++
	c.mu.Unlock()
	c.notify()

	shows, err := c.lister.Shows(ctx)

	c.mu.Lock()
	c.running--
	applied := c.epoch == epoch
	if applied {
		if err != nil {
			c.err = err
		} else {
			c.shows = slices.Clone(shows)
			c.hasData = true
			c.err = nil
			c.stale = false
			c.fetchedAt = time.Now()
		}
	}
	c.idle.Broadcast()
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Warn("show collection fetch failed", "err", err, "applied", applied)
		return nil, err
	}
	c.logger.Debug("show collection fetched", "count", len(shows), "applied", applied)
	return shows, nil
}

// Invalidate marks the collection stale and refreshes it in the background.
//
// If a background refetch is already running, one more is scheduled after it
// instead of starting a concurrent one.
func (c *ShowCache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	if c.inflight {
		c.pending = true
		c.mu.Unlock()
		c.notify()
		return
	}
	c.inflight = true
	c.mu.Unlock()
	c.notify()

	go c.refetchLoop()
}

func (c *ShowCache) refetchLoop() {
	for {
		if _, err := c.Refetch(c.ctx); err != nil && c.ctx.Err() != nil {
			c.logger.Debug("background refetch stopped", "err", c.ctx.Err())
		}

		c.mu.Lock()
		if !c.pending || c.ctx.Err() != nil {
			c.inflight = false
			c.pending = false
			c.idle.Broadcast()
			c.mu.Unlock()
			c.notify()
			return
		}
		c.pending = false
		c.mu.Unlock()
	}
}

// Clear empties the collection. Fetches started before the call are not applied.
func (c *ShowCache) Clear() {
	c.mu.Lock()
	c.epoch++
	c.shows = nil
	c.hasData = false
	c.err = nil
	c.stale = false
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns the current state.
func (c *ShowCache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Shows:     slices.Clone(c.shows),
		HasData:   c.hasData,
		Err:       c.err,
		Stale:     c.stale,
		Fetching:  c.running > 0 || c.inflight,
		FetchedAt: c.fetchedAt,
	}
}

// Contains reports whether a show with the given TVmaze id is in the collection.
func (c *ShowCache) Contains(tvmazeID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.shows {
		if s.TVMazeID == tvmazeID {
			return true
		}
	}
	return false
}

// Updates signals that the snapshot may have changed. Signals coalesce.
func (c *ShowCache) Updates() <-chan struct{} {
	return c.updates
}

func (c *ShowCache) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Wait blocks until no fetch is running or scheduled, or ctx is done.
func (c *ShowCache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.mu.Lock()
		for (c.running > 0 || c.inflight) && ctx.Err() == nil {
			c.idle.Wait()
		}
		c.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		c.idle.Broadcast()
		c.mu.Unlock()
		return ctx.Err()
	}
}
