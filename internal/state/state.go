package state

import (
	"context"
	"errors"
	"sync"
)

// RequestStatus tracks the lifecycle of the latest request for a resource.
type RequestStatus int

const (
	Idle RequestStatus = iota
	Loading
	Succeeded
	Failed
)

func (s RequestStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrSuperseded is returned when a newer request for the same resource was started
// before this one completed. Its result is discarded.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Ticket identifies one request issued against a Resource.
type Ticket struct {
	seq uint64
}

// Snapshot is a consistent copy of a resource's state.
type Snapshot[T any] struct {
	Status RequestStatus
	Data   T
	Err    error
}

// Resource holds cached backend data for one domain area together with the
// status of the request that produced it. Only the most recently issued request
// may complete; starting a new one cancels the previous request's context.
type Resource[T any] struct {
	mu     sync.Mutex
	status RequestStatus
	data   T
	err    error
	seq    uint64
	cancel context.CancelFunc
}

// NewResource creates an idle resource holding initial.
func NewResource[T any](initial T) *Resource[T] {
	return &Resource[T]{data: initial}
}

// Begin marks the resource as loading and returns a context for the new request.
func (r *Resource[T]) Begin(ctx context.Context) (context.Context, Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	r.seq++
	r.cancel = cancel
	r.status = Loading
	r.err = nil
	return reqCtx, Ticket{seq: r.seq}
}

// Complete records the outcome of the request identified by t. It reports false,
// leaving state untouched, when a newer request has been issued since.
// Data is only replaced on success.
func (r *Resource[T]) Complete(t Ticket, data T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.seq != r.seq {
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if err != nil {
		r.status = Failed
		r.err = err
		return true
	}
	r.status = Succeeded
	r.data = data
	r.err = nil
	return true
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot[T]{Status: r.status, Data: r.data, Err: r.err}
}

// Status returns the current request status.
func (r *Resource[T]) Status() RequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Update applies a local edit to the cached data, e.g. toggling a list item.
func (r *Resource[T]) Update(fn func(data *T) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&r.data)
}

// Read calls fn with the cached data while holding the lock. fn must not retain
// references into data after it returns.
func (r *Resource[T]) Read(fn func(data T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.data)
}

// Reset cancels any in-flight request and returns the resource to idle with initial data.
func (r *Resource[T]) Reset(initial T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
	r.status = Idle
	r.data = initial
	r.err = nil
}

// Load runs fetch as a new request against r and records its result.
// A superseded request returns ErrSuperseded.
func Load[T any](ctx context.Context, r *Resource[T], fetch func(ctx context.Context) (T, error)) (T, error) {
	reqCtx, ticket := r.Begin(ctx)
	data, err := fetch(reqCtx)
	if !r.Complete(ticket, data, err) {
		var zero T
		return zero, ErrSuperseded
	}
	return data, err
}
