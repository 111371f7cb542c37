// Package registry keeps the ordered set of registered handlers and
// finds the first one whose predicate accepts a request.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/yshengliao/mockwire/handler"
	"github.com/yshengliao/mockwire/request"
)

// ErrNoMatchingHandler is returned by Match when no registered handler
// accepts the request. It is recoverable: the transport decides whether
// to perform the request unmodified or raise an unhandled-request
// condition.
var ErrNoMatchingHandler = errors.New("registry: no matching handler")

// Registry is an ordered, mutable-by-registration sequence of handlers.
// Mutations publish a fresh slice, so a match in flight always iterates a
// consistent snapshot even while another goroutine registers or resets.
type Registry struct {
	mu       sync.RWMutex
	baseline []handler.Handler
	handlers []handler.Handler
}

// New creates a registry seeded with base handlers. The base set is also
// the baseline that Reset restores.
func New(base ...handler.Handler) *Registry {
	r := &Registry{}
	r.baseline = append([]handler.Handler(nil), base...)
	r.handlers = append([]handler.Handler(nil), base...)
	return r
}

// Use appends handlers after the existing ones.
func (r *Registry) Use(hs ...handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]handler.Handler, 0, len(r.handlers)+len(hs))
	next = append(next, r.handlers...)
	next = append(next, hs...)
	r.handlers = next
}

// Prepend inserts handlers before the existing ones. Because matching is
// first-match-wins in registration order, prepended handlers override
// earlier registrations for any request both would match.
func (r *Registry) Prepend(hs ...handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]handler.Handler, 0, len(r.handlers)+len(hs))
	next = append(next, hs...)
	next = append(next, r.handlers...)
	r.handlers = next
}

// Reset restores the baseline set. With arguments it instead replaces the
// current handlers with exactly the given set, leaving the baseline
// untouched.
func (r *Registry) Reset(hs ...handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(hs) > 0 {
		r.handlers = append([]handler.Handler(nil), hs...)
		return
	}
	r.handlers = append([]handler.Handler(nil), r.baseline...)
}

// Handlers returns the current snapshot in registration order.
func (r *Registry) Handlers() []handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers
}

// Match returns the first handler whose predicate accepts the request,
// in registration order, or ErrNoMatchingHandler. Given identical
// registry state and an identical request the result is deterministic.
func (r *Registry) Match(ctx context.Context, req *request.Request) (handler.Handler, error) {
	for _, h := range r.Handlers() {
		if h.Test(ctx, req) {
			return h, nil
		}
	}
	return nil, ErrNoMatchingHandler
}
