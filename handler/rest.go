package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/yshengliao/mockwire/request"
)

// RestHandler matches requests by HTTP method and path pattern.
type RestHandler struct {
	method   string
	pattern  *pattern
	resolver Resolver
}

// NewRest builds a REST handler for an arbitrary method. The path
// pattern supports `:name` captures and a trailing `*` wildcard.
func NewRest(method, path string, r Resolver) (*RestHandler, error) {
	p, err := compilePattern(path)
	if err != nil {
		return nil, err
	}
	return &RestHandler{
		method:   strings.ToUpper(method),
		pattern:  p,
		resolver: r,
	}, nil
}

// Handle is like NewRest but panics on a malformed pattern. Registration
// in code is setup work, so a bad pattern is a programming error — the
// same stance routing trees take on conflicting routes.
func Handle(method, path string, r Resolver) *RestHandler {
	h, err := NewRest(method, path, r)
	if err != nil {
		panic(err)
	}
	return h
}

// Get registers a GET handler.
func Get(path string, r Resolver) *RestHandler { return Handle(http.MethodGet, path, r) }

// Post registers a POST handler.
func Post(path string, r Resolver) *RestHandler { return Handle(http.MethodPost, path, r) }

// Put registers a PUT handler.
func Put(path string, r Resolver) *RestHandler { return Handle(http.MethodPut, path, r) }

// Delete registers a DELETE handler.
func Delete(path string, r Resolver) *RestHandler { return Handle(http.MethodDelete, path, r) }

// Patch registers a PATCH handler.
func Patch(path string, r Resolver) *RestHandler { return Handle(http.MethodPatch, path, r) }

// Head registers a HEAD handler.
func Head(path string, r Resolver) *RestHandler { return Handle(http.MethodHead, path, r) }

// Options registers an OPTIONS handler.
func Options(path string, r Resolver) *RestHandler { return Handle(http.MethodOptions, path, r) }

// Test matches the method case-insensitively and the pattern against the
// request path with the query string stripped.
func (h *RestHandler) Test(_ context.Context, req *request.Request) bool {
	if !strings.EqualFold(h.method, req.Method()) {
		return false
	}
	_, ok := h.pattern.match(req.URL().Path)
	return ok
}

// Extract re-derives the path captures with the same algorithm Test uses
// and parses cookies from the request headers.
func (h *RestHandler) Extract(_ context.Context, req *request.Request, requestID string) (*RequestContext, error) {
	params, _ := h.pattern.match(req.URL().Path)
	if params == nil {
		params = Params{}
	}
	return &RequestContext{
		Request:   req,
		RequestID: requestID,
		Params:    params,
		Cookies:   req.Cookies(),
	}, nil
}

// Resolver returns the bound resolver.
func (h *RestHandler) Resolver() Resolver { return h.resolver }

func (h *RestHandler) String() string {
	return h.method + " " + h.pattern.String()
}
