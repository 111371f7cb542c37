// Package httpmock adapts the resolution engine to net/http clients. Its
// Transport is an http.RoundTripper that intercepts requests the caller
// already initiated, resolves them through the engine, and either
// delivers the mock, forwards to the real transport, or fails the
// request. It never originates requests on its own.
package httpmock

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yshengliao/mockwire/engine"
	"github.com/yshengliao/mockwire/handler"
	"github.com/yshengliao/mockwire/registry"
	"github.com/yshengliao/mockwire/request"
)

// UnhandledPolicy decides what happens to requests no handler matched.
type UnhandledPolicy int

const (
	// Bypass forwards unmatched requests to the real transport.
	Bypass UnhandledPolicy = iota

	// Warn forwards unmatched requests and logs them.
	Warn

	// Reject fails unmatched requests instead of performing them.
	Reject
)

// ErrUnhandledRequest is returned under the Reject policy for requests
// no handler matched.
var ErrUnhandledRequest = errors.New("httpmock: unhandled request")

// Transport is the interception RoundTripper. Install it on an
// *http.Client to route that client's requests through the engine.
type Transport struct {
	engine    *engine.Engine
	inner     http.RoundTripper
	unhandled UnhandledPolicy
	log       *zap.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithInner sets the transport used for passthrough and bypassed
// requests. Defaults to http.DefaultTransport.
func WithInner(rt http.RoundTripper) Option {
	return func(t *Transport) { t.inner = rt }
}

// WithUnhandledPolicy sets the policy for unmatched requests. Defaults
// to Bypass.
func WithUnhandledPolicy(p UnhandledPolicy) Option {
	return func(t *Transport) { t.unhandled = p }
}

// WithLogger sets the transport logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New creates a Transport over the given engine.
func New(e *engine.Engine, opts ...Option) *Transport {
	t := &Transport{engine: e, inner: http.DefaultTransport, unhandled: Bypass, log: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	req := request.FromHTTP(r)

	disp, err := t.engine.Resolve(r.Context(), req)
	if err != nil {
		if !errors.Is(err, registry.ErrNoMatchingHandler) {
			return nil, err
		}
		switch t.unhandled {
		case Reject:
			return nil, fmt.Errorf("%w: %s %s", ErrUnhandledRequest, r.Method, r.URL)
		case Warn:
			t.log.Warn("unhandled request, performing as-is",
				zap.String("method", r.Method),
				zap.String("url", r.URL.String()))
		}
		return t.forward(r, req)
	}

	switch disp.Kind {
	case engine.Mocked:
		return buildResponse(r, disp.Response), nil
	case engine.PassedThrough:
		return t.forward(r, req)
	default:
		return nil, disp.Err
	}
}

// forward performs the original request on the inner transport. If the
// engine already buffered the body (a resolver read it), the buffered
// bytes are replayed so the origin still sees the full body.
func (t *Transport) forward(r *http.Request, req *request.Request) (*http.Response, error) {
	fwd := r.Clone(r.Context())
	fwd.Body = req.BodyReader()
	return t.inner.RoundTrip(fwd)
}

// buildResponse materializes a mock response in the shape net/http
// clients expect.
func buildResponse(r *http.Request, mock *handler.Response) *http.Response {
	header := mock.Header
	if header == nil {
		header = http.Header{}
	}
	status := mock.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(mock.Body)),
		ContentLength: int64(len(mock.Body)),
		Request:       r,
	}
}
