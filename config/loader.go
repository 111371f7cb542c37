package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yshengliao/mockwire/handler"
)

// Load reads and validates a handler definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Compile turns the definitions into handlers, preserving file order so
// first-match-wins semantics follow the document.
func Compile(f *File) ([]handler.Handler, error) {
	out := make([]handler.Handler, 0, len(f.Handlers))
	for i := range f.Handlers {
		h, err := compileHandler(&f.Handlers[i])
		if err != nil {
			return nil, fmt.Errorf("config: handler %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func compileHandler(spec *HandlerSpec) (handler.Handler, error) {
	resolver, err := compileResolver(spec)
	if err != nil {
		return nil, err
	}
	if spec.GraphQL != nil {
		switch spec.GraphQL.Operation {
		case "mutation":
			return handler.Mutation(spec.GraphQL.Name, resolver), nil
		default:
			return handler.Query(spec.GraphQL.Name, resolver), nil
		}
	}
	return handler.NewRest(spec.Method, spec.Path, resolver)
}

// compileResolver builds a static resolver for the spec. The response is
// materialized once at compile time; each invocation only applies the
// optional delay.
func compileResolver(spec *HandlerSpec) (handler.Resolver, error) {
	delay := time.Duration(spec.DelayMS) * time.Millisecond

	var instr *handler.Instruction
	switch {
	case spec.Passthrough:
		instr = handler.Passthrough()
	default:
		resp, err := compileResponse(spec.Response)
		if err != nil {
			return nil, err
		}
		instr = resp
	}

	return func(ctx context.Context, _ *handler.RequestContext) (*handler.Instruction, error) {
		if delay > 0 {
			if err := handler.Delay(ctx, delay); err != nil {
				return nil, err
			}
		}
		return instr, nil
	}, nil
}

func compileResponse(spec *ResponseSpec) (*handler.Instruction, error) {
	header := http.Header{}
	for k, v := range spec.Headers {
		header.Set(k, v)
	}

	body := []byte(spec.Body)
	if spec.JSON != nil {
		data, err := json.Marshal(spec.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal json body: %w", err)
		}
		body = data
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	}
	return handler.RespondWith(spec.Status, header, body), nil
}
