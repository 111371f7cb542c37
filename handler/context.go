package handler

import (
	"github.com/yshengliao/mockwire/request"
)

// Params maps path-segment names to their captured values. A `:name`
// segment captures exactly one value; a `*` wildcard captures the ordered
// sequence of segments it consumed.
type Params map[string][]string

// Get returns the first captured value for name, or "".
func (p Params) Get(name string) string {
	if vs := p[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// All returns every captured value for name in order.
func (p Params) All(name string) []string { return p[name] }

// Has reports whether name captured anything.
func (p Params) Has(name string) bool { return len(p[name]) > 0 }

// RequestContext is the per-interception view handed to a resolver. Each
// invocation gets its own isolated instance.
type RequestContext struct {
	// Request is the intercepted request descriptor.
	Request *request.Request

	// RequestID uniquely identifies this interception within the process.
	RequestID string

	// Params holds the path captures produced by the matching predicate.
	Params Params

	// Cookies maps cookie names to values, last-value-wins on duplicates.
	Cookies map[string]string

	// Query, Variables and OperationName are populated only when the
	// matched handler is a GraphQL handler.
	Query         string
	Variables     map[string]any
	OperationName string
}
