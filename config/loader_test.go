package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/mockwire/handler"
	"github.com/yshengliao/mockwire/request"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handlers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `
handlers:
  - method: GET
    path: /user/:id
    response:
      status: 200
      json:
        id: abc-123
        name: John
  - graphql:
      operation: query
      name: GetUser
    response:
      status: 200
      body: '{"data": null}'
      headers:
        Content-Type: application/json
  - method: GET
    path: /health
    passthrough: true
`

func TestLoad(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Len(t, f.Handlers, 3)

	assert.Equal(t, "GET", f.Handlers[0].Method)
	assert.Equal(t, "/user/:id", f.Handlers[0].Path)
	require.NotNil(t, f.Handlers[1].GraphQL)
	assert.Equal(t, "GetUser", f.Handlers[1].GraphQL.Name)
	assert.True(t, f.Handlers[2].Passthrough)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "handlers: [not: closed"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no handlers", `handlers: []`},
		{"bad method", `
handlers:
  - method: FETCH
    path: /x
    passthrough: true
`},
		{"path without leading slash", `
handlers:
  - method: GET
    path: user
    passthrough: true
`},
		{"both predicates", `
handlers:
  - method: GET
    path: /x
    graphql:
      operation: query
      name: Q
    passthrough: true
`},
		{"no predicate", `
handlers:
  - passthrough: true
`},
		{"no outcome", `
handlers:
  - method: GET
    path: /x
`},
		{"both outcomes", `
handlers:
  - method: GET
    path: /x
    passthrough: true
    response:
      status: 200
`},
		{"body and json", `
handlers:
  - method: GET
    path: /x
    response:
      status: 200
      body: hi
      json: {a: 1}
`},
		{"bad status", `
handlers:
  - method: GET
    path: /x
    response:
      status: 99
`},
		{"bad graphql operation", `
handlers:
  - graphql:
      operation: subscription
      name: Q
    passthrough: true
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestCompile(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	hs, err := Compile(f)
	require.NoError(t, err)
	require.Len(t, hs, 3)

	// Document order is preserved.
	assert.Equal(t, "GET /user/:id", hs[0].String())
	assert.Equal(t, "query GetUser", hs[1].String())
	assert.Equal(t, "GET /health", hs[2].String())
}

func TestCompiledResolverServesJSON(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	hs, err := Compile(f)
	require.NoError(t, err)

	req, err := request.New("GET", "https://x/user/abc-123", nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, hs[0].Test(ctx, req))

	rc, err := hs[0].Extract(ctx, req, "rid")
	require.NoError(t, err)

	instr, err := hs[0].Resolver()(ctx, rc)
	require.NoError(t, err)
	require.Equal(t, handler.KindMock, instr.Kind())

	resp := instr.Response()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id": "abc-123", "name": "John"}`, string(resp.Body))
}

func TestCompiledResolverPassthrough(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	hs, err := Compile(f)
	require.NoError(t, err)

	instr, err := hs[2].Resolver()(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, handler.KindPassthrough, instr.Kind())
}

func TestCompiledResolverDelayHonorsCancellation(t *testing.T) {
	f, err := Load(writeConfig(t, `
handlers:
  - method: GET
    path: /slow
    delayMs: 60000
    response:
      status: 200
`))
	require.NoError(t, err)
	hs, err := Compile(f)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = hs[0].Resolver()(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileBadPattern(t *testing.T) {
	f := &File{Handlers: []HandlerSpec{{
		Method:      "GET",
		Path:        "/x/:",
		Passthrough: true,
	}}}
	_, err := Compile(f)
	assert.Error(t, err)
}
