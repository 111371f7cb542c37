// Package config loads declarative handler definitions from YAML and
// compiles them into registrable handlers. A definition file describes
// static REST and GraphQL mocks: what to match and what to answer.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// File is the root of a handler definition file.
type File struct {
	Handlers []HandlerSpec `yaml:"handlers" validate:"required,min=1,dive"`
}

// HandlerSpec describes one handler. Exactly one predicate (method+path
// or graphql) and exactly one outcome (response or passthrough) must be
// set.
type HandlerSpec struct {
	// Method and Path form a REST predicate.
	Method string `yaml:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Path   string `yaml:"path" validate:"required_with=Method,omitempty,startswith=/"`

	// GraphQL forms a GraphQL predicate.
	GraphQL *GraphQLSpec `yaml:"graphql"`

	// Response answers the request with a synthesized response.
	Response *ResponseSpec `yaml:"response"`

	// Passthrough performs the original request unmodified.
	Passthrough bool `yaml:"passthrough"`

	// DelayMS simulates latency before answering.
	DelayMS int `yaml:"delayMs" validate:"gte=0"`
}

// GraphQLSpec is a GraphQL operation predicate. Name "*" matches any
// operation of the given kind.
type GraphQLSpec struct {
	Operation string `yaml:"operation" validate:"required,oneof=query mutation"`
	Name      string `yaml:"name" validate:"required"`
}

// ResponseSpec is a static mock response. Body and JSON are mutually
// exclusive; JSON is marshaled and served with an application/json
// Content-Type unless Headers overrides it.
type ResponseSpec struct {
	Status  int               `yaml:"status" validate:"required,gte=100,lte=599"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
	JSON    any               `yaml:"json"`
}

var validate = validator.New()

// Validate checks structural tags and the cross-field rules the tags
// cannot express.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i := range f.Handlers {
		if err := f.Handlers[i].validate(); err != nil {
			return fmt.Errorf("config: handler %d: %w", i, err)
		}
	}
	return nil
}

func (h *HandlerSpec) validate() error {
	rest := h.Method != "" || h.Path != ""
	if rest == (h.GraphQL != nil) {
		return fmt.Errorf("exactly one of method/path or graphql must be set")
	}
	if rest && h.Method == "" {
		return fmt.Errorf("method is required with path")
	}
	if (h.Response != nil) == h.Passthrough {
		return fmt.Errorf("exactly one of response or passthrough must be set")
	}
	if h.Response != nil && h.Response.Body != "" && h.Response.JSON != nil {
		return fmt.Errorf("body and json are mutually exclusive")
	}
	return nil
}
