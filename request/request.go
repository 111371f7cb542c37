// Package request defines the immutable descriptor for an intercepted
// HTTP request. The engine only ever reads it; ownership stays with the
// transport that captured the request.
package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/yshengliao/mockwire/graphql"
)

// Request describes one intercepted request. The body is read lazily and
// buffered on first read, so any number of later reads observe the same
// bytes. Construct with New or FromHTTP; the zero value is not usable.
type Request struct {
	method string
	url    *url.URL
	header http.Header

	mu       sync.Mutex
	source   io.Reader
	pending  chan bodyResult
	buffered bool
	body     []byte
	bodyErr  error

	gqlOnce sync.Once
	gql     *graphql.Payload
	gqlErr  error
}

// New builds a Request from its parts. body may be nil for bodyless
// requests. The header is used as-is and must not be mutated afterwards.
func New(method, rawURL string, header http.Header, body io.Reader) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("request: parse URL: %w", err)
	}
	if header == nil {
		header = http.Header{}
	}
	return &Request{method: method, url: u, header: header, source: body}, nil
}

// FromHTTP wraps a standard *http.Request. The request body is consumed
// lazily; after the first Body call the original r.Body has been drained
// and BodyReader should be used to re-send it.
func FromHTTP(r *http.Request) *Request {
	var src io.Reader
	if r.Body != nil && r.Body != http.NoBody {
		src = r.Body
	}
	return &Request{method: r.Method, url: r.URL, header: r.Header, source: src}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns the request URL. Callers must not mutate it.
func (r *Request) URL() *url.URL { return r.url }

// Header returns the request headers. Callers must not mutate them.
func (r *Request) Header() http.Header { return r.header }

// Cookies parses the Cookie header into a name-to-value map. Duplicate
// names resolve last-value-wins. Parsing is repeatable and side-effect
// free.
func (r *Request) Cookies() map[string]string {
	out := make(map[string]string)
	shim := http.Request{Header: r.header}
	for _, c := range shim.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

type bodyResult struct {
	data []byte
	err  error
}

// Body returns the request body, buffering it on first call. Subsequent
// calls return the same bytes. If ctx is cancelled while the underlying
// stream is still being read, Body returns the context's error; the read
// keeps running and a later call picks up its result, so the stream is
// never read twice.
func (r *Request) Body(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buffered {
		return r.body, r.bodyErr
	}
	if r.source == nil {
		r.buffered = true
		return nil, nil
	}

	if r.pending == nil {
		done := make(chan bodyResult, 1)
		src := r.source
		go func() {
			data, err := io.ReadAll(src)
			done <- bodyResult{data, err}
		}()
		r.pending = done
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("request: body read aborted: %w", ctx.Err())
	case res := <-r.pending:
		r.pending = nil
		r.buffered = true
		r.body = res.data
		r.bodyErr = res.err
		if res.err != nil {
			r.bodyErr = fmt.Errorf("request: read body: %w", res.err)
		}
		return r.body, r.bodyErr
	}
}

// BodyReader returns a reader over the request body suitable for
// re-sending the request. If the body was already buffered the reader
// replays the buffer; otherwise it hands back the original stream.
func (r *Request) BodyReader() io.ReadCloser {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buffered {
		if len(r.body) == 0 {
			return http.NoBody
		}
		return io.NopCloser(bytes.NewReader(r.body))
	}
	if r.source == nil {
		return http.NoBody
	}
	if rc, ok := r.source.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r.source)
}

// GraphQL parses the request as a GraphQL payload, once. The result is
// cached on the request so predicates, extraction, and the resolver's own
// reads all observe the same parse.
func (r *Request) GraphQL(ctx context.Context) (*graphql.Payload, error) {
	var body []byte
	if r.method != http.MethodGet {
		var err error
		body, err = r.Body(ctx)
		if err != nil {
			return nil, err
		}
	}
	r.gqlOnce.Do(func() {
		r.gql, r.gqlErr = graphql.Parse(r.method, r.url, body)
	})
	return r.gql, r.gqlErr
}
