package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Resolver decides the disposition of one intercepted request. It may
// block for arbitrary asynchronous work (delays, body reads, nested
// calls); the engine waits for it to return. A resolver communicates its
// decision through the Instruction constructors: RespondWith, JSON,
// Passthrough, or Error. Returning (nil, nil) is a programming error
// surfaced by the engine.
type Resolver func(ctx context.Context, rc *RequestContext) (*Instruction, error)

// InstructionKind tags the Instruction variant.
type InstructionKind int

const (
	// KindMock delivers a synthesized response to the caller,
	// short-circuiting the real request.
	KindMock InstructionKind = iota + 1

	// KindPassthrough performs the original request unmodified.
	KindPassthrough

	// KindError fails the request with the resolver's error.
	KindError
)

func (k InstructionKind) String() string {
	switch k {
	case KindMock:
		return "mock"
	case KindPassthrough:
		return "passthrough"
	case KindError:
		return "error"
	default:
		return "invalid"
	}
}

// Response is a fully materialized mock response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Instruction is the normalized outcome of a resolver invocation. It is
// produced exactly once per interception and never mutated; build one
// only through the constructors below.
type Instruction struct {
	kind     InstructionKind
	response *Response
	cause    error
}

// RespondWith builds a mock-response instruction. header may be nil.
func RespondWith(status int, header http.Header, body []byte) *Instruction {
	if header == nil {
		header = http.Header{}
	}
	return &Instruction{
		kind:     KindMock,
		response: &Response{StatusCode: status, Header: header, Body: body},
	}
}

// JSON builds a mock-response instruction with a JSON-encoded body and
// Content-Type set. A marshal failure degrades to an error instruction.
func JSON(status int, v any) *Instruction {
	data, err := json.Marshal(v)
	if err != nil {
		return Error(fmt.Errorf("handler: marshal JSON response: %w", err))
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return RespondWith(status, header, data)
}

// Passthrough builds the instruction to perform the original request
// unmodified.
func Passthrough() *Instruction {
	return &Instruction{kind: KindPassthrough}
}

// Error builds the instruction to fail the request, preserving cause for
// diagnostics.
func Error(cause error) *Instruction {
	return &Instruction{kind: KindError, cause: cause}
}

// Kind returns the variant tag.
func (in *Instruction) Kind() InstructionKind { return in.kind }

// Response returns the mock response for KindMock instructions, nil
// otherwise.
func (in *Instruction) Response() *Response { return in.response }

// Cause returns the wrapped error for KindError instructions, nil
// otherwise.
func (in *Instruction) Cause() error { return in.cause }

// Delay blocks for d or until ctx is cancelled, whichever comes first.
// Resolvers use it to simulate latency without hanging an aborted
// request.
func Delay(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
