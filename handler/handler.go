// Package handler defines request handlers: a matching predicate paired
// with a user-supplied resolver that decides the outcome of one
// intercepted request.
package handler

import (
	"context"

	"github.com/yshengliao/mockwire/request"
)

// Handler is a bound (predicate, resolver) pair. Handlers are created at
// registration time and immutable afterwards.
type Handler interface {
	// Test reports whether this handler's predicate accepts the request.
	// It must be deterministic and side-effect free apart from lazily
	// buffering the request body.
	Test(ctx context.Context, req *request.Request) bool

	// Extract derives the per-request context for a request this handler
	// accepted. Re-extraction from the same request yields identical
	// results.
	Extract(ctx context.Context, req *request.Request, requestID string) (*RequestContext, error)

	// Resolver returns the user resolver bound to this handler.
	Resolver() Resolver

	// String describes the predicate, for logs and tooling.
	String() string
}
