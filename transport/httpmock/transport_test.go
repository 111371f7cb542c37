package httpmock

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/mockwire/engine"
	"github.com/yshengliao/mockwire/handler"
	"github.com/yshengliao/mockwire/registry"
)

func newBackend(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Origin", "backend")
		w.WriteHeader(http.StatusOK)
		if len(body) > 0 {
			w.Write(body)
		} else {
			io.WriteString(w, "from backend")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(reg *registry.Registry, opts ...Option) *http.Client {
	return &http.Client{Transport: New(engine.New(reg), opts...)}
}

func TestRoundTripMocked(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	reg := registry.New(handler.Get("/user/:id", func(_ context.Context, rc *handler.RequestContext) (*handler.Instruction, error) {
		return handler.JSON(200, map[string]string{"id": rc.Params.Get("id")}), nil
	}))
	client := newClient(reg)

	resp, err := client.Get(srv.URL + "/user/abc-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id": "abc-123"}`, string(body))
	assert.Zero(t, hits.Load(), "mocked requests never reach the origin")
}

func TestRoundTripPassthrough(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	reg := registry.New(handler.Get("/live", func(_ context.Context, _ *handler.RequestContext) (*handler.Instruction, error) {
		return handler.Passthrough(), nil
	}))
	client := newClient(reg)

	resp, err := client.Get(srv.URL + "/live")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "backend", resp.Header.Get("X-Origin"))
	assert.Equal(t, "from backend", string(body))
	assert.Equal(t, int64(1), hits.Load())
}

func TestRoundTripPassthroughReplaysConsumedBody(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	// The resolver reads the body before deciding to pass through.
	reg := registry.New(handler.Post("/echo", func(ctx context.Context, rc *handler.RequestContext) (*handler.Instruction, error) {
		if _, err := rc.Request.Body(ctx); err != nil {
			return nil, err
		}
		return handler.Passthrough(), nil
	}))
	client := newClient(reg)

	resp, err := client.Post(srv.URL+"/echo", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "payload", string(body), "origin sees the full body after the resolver consumed it")
}

func TestRoundTripFailed(t *testing.T) {
	cause := errors.New("simulated network failure")
	reg := registry.New(handler.Get("/flaky", func(_ context.Context, _ *handler.RequestContext) (*handler.Instruction, error) {
		return handler.Error(cause), nil
	}))
	client := newClient(reg)

	_, err := client.Get("https://api.example.com/flaky")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause, "the client surfaces the resolver's failure")
}

func TestRoundTripUnhandledBypass(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	client := newClient(registry.New())

	resp, err := client.Get(srv.URL + "/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int64(1), hits.Load())
}

func TestRoundTripUnhandledWarn(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	client := newClient(registry.New(), WithUnhandledPolicy(Warn))

	resp, err := client.Get(srv.URL + "/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int64(1), hits.Load(), "warn still forwards")
}

func TestRoundTripUnhandledReject(t *testing.T) {
	var hits atomic.Int64
	srv := newBackend(t, &hits)

	client := newClient(registry.New(), WithUnhandledPolicy(Reject))

	_, err := client.Get(srv.URL + "/anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnhandledRequest)
	assert.Zero(t, hits.Load())
}

func TestRoundTripDefaultStatus(t *testing.T) {
	reg := registry.New(handler.Get("/x", func(_ context.Context, _ *handler.RequestContext) (*handler.Instruction, error) {
		return handler.RespondWith(0, nil, []byte("ok")), nil
	}))
	client := newClient(reg)

	resp, err := client.Get("https://api.example.com/x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type innerFunc func(*http.Request) (*http.Response, error)

func (f innerFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithInner(t *testing.T) {
	var sawInner bool
	inner := innerFunc(func(r *http.Request) (*http.Response, error) {
		sawInner = true
		return &http.Response{
			StatusCode: 204,
			Body:       http.NoBody,
			Header:     http.Header{},
			Request:    r,
		}, nil
	})

	client := newClient(registry.New(), WithInner(inner))

	resp, err := client.Get("https://api.example.com/anything")
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, sawInner)
	assert.Equal(t, 204, resp.StatusCode)
}
