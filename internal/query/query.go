// Package query provides a generic runner for one-shot, caller-triggered queries.
package query

import (
	"context"
	"sync"
)

// Func is the query a [Runner] executes.
type Func[A, T any] func(ctx context.Context, arg A) (T, error)

// State is a snapshot of a runner. At most one of Data and Err is set once a run settles.
type State[T any] struct {
	Data    *T
	Err     error
	Loading bool
}

// Runner executes a [Func] on demand and keeps the outcome of the latest run.
//
// Every run is tagged with a generation. A run that settles after a newer run
// started, or after [Runner.Reset], does not touch the state.
type Runner[A, T any] struct {
	fn Func[A, T]

	mu    sync.Mutex
	state State[T]
	gen   uint64
}

// New creates a runner for fn.
func New[A, T any](fn func(ctx context.Context, arg A) (T, error)) *Runner[A, T] {
	return &Runner[A, T]{fn: fn}
}

// Execute clears previous results, marks the runner loading and runs the query.
//
// The outcome is returned to the caller regardless of staleness; only the
// stored state is guarded. Loading is cleared on every exit path, panics included.
func (r *Runner[A, T]) Execute(ctx context.Context, arg A) (T, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state = State[T]{Loading: true}
	r.mu.Unlock()

	var (
		data T
		err  error
		done bool
	)
	defer func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen != gen {
			return
		}
		r.state.Loading = false
		if !done {
			return
		}
		if err != nil {
			r.state.Err = err
		} else {
			r.state.Data = &data
		}
	}()

	data, err = r.fn(ctx, arg)
	done = true
	return data, err
}

// Reset clears data, error and loading. In-flight runs become stale.
func (r *Runner[A, T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = State[T]{}
}

// State returns the current snapshot.
func (r *Runner[A, T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Generation identifies the latest run or reset. Callers can compare it to
// decide whether a result they hold is still current.
func (r *Runner[A, T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
