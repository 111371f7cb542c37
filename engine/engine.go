// Package engine resolves intercepted requests: it matches them against
// the handler registry, invokes the matched resolver, and interprets the
// resulting instruction into a terminal disposition for the transport.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yshengliao/mockwire/handler"
	"github.com/yshengliao/mockwire/observability"
	"github.com/yshengliao/mockwire/registry"
	"github.com/yshengliao/mockwire/request"
)

// DispositionKind is the terminal state of one resolution. A resolution
// starts Pending and ends in exactly one of Mocked, PassedThrough, or
// Failed; there are no retries at this layer.
type DispositionKind int

const (
	Pending DispositionKind = iota
	Mocked
	PassedThrough
	Failed
)

func (k DispositionKind) String() string {
	switch k {
	case Mocked:
		return "mocked"
	case PassedThrough:
		return "passed_through"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Disposition is the resolved outcome handed to the transport. For
// Mocked, Response carries the synthesized response to deliver in place
// of the real one. For PassedThrough, the transport performs the
// original request unmodified. For Failed, Err carries the resolver
// fault to surface as a network-error-shaped outcome.
type Disposition struct {
	Kind     DispositionKind
	Response *handler.Response
	Err      error
}

// Engine drives the resolution pipeline. Each intercepted request is
// resolved independently; concurrent resolutions share only the registry
// snapshot they match against.
type Engine struct {
	registry *registry.Registry
	log      *zap.Logger
	metrics  *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics attaches prometheus metrics to the engine.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine over the given registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{registry: reg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the handler registry the engine matches against.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Resolve runs one intercepted request through the pipeline. It returns
// registry.ErrNoMatchingHandler when no handler accepts the request;
// that outcome is recoverable and the transport applies its own policy.
// Every other outcome is a terminal Disposition: resolver faults and
// invalid returns come back as Kind Failed with the cause in Err, never
// as a function error.
func (e *Engine) Resolve(ctx context.Context, req *request.Request) (Disposition, error) {
	e.metrics.ObserveIntercepted()

	h, err := e.registry.Match(ctx, req)
	if err != nil {
		e.metrics.ObserveUnmatched()
		e.log.Debug("no matching handler",
			zap.String("method", req.Method()),
			zap.String("url", req.URL().String()))
		return Disposition{}, err
	}

	requestID := uuid.NewString()
	log := e.log.With(
		zap.String("requestID", requestID),
		zap.String("handler", h.String()),
		zap.String("method", req.Method()),
		zap.String("url", req.URL().String()))
	log.Debug("request matched")

	instr := e.invoke(ctx, h, req, requestID)
	disp := e.apply(instr)

	e.metrics.ObserveDisposition(disp.Kind.String())
	if disp.Kind == Failed {
		log.Warn("resolution failed", zap.Error(disp.Err))
	} else {
		log.Debug("request resolved", zap.Stringer("result", disp.Kind))
	}
	return disp, nil
}

// invoke extracts the request context and runs the resolver, normalizing
// whatever comes back into exactly one instruction. The resolver runs in
// its own goroutine so a cancelled request never hangs resolution: on
// ctx cancellation the invocation resolves to an error instruction and
// any in-flight body read fails with the context's error.
func (e *Engine) invoke(ctx context.Context, h handler.Handler, req *request.Request, requestID string) *handler.Instruction {
	rc, err := h.Extract(ctx, req, requestID)
	if err != nil {
		return handler.Error(&ResolverFault{Handler: h.String(), Cause: err})
	}

	start := time.Now()
	type outcome struct {
		instr *handler.Instruction
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("resolver panic: %v", r)}
			}
		}()
		instr, err := h.Resolver()(ctx, rc)
		done <- outcome{instr: instr, err: err}
	}()

	var o outcome
	select {
	case <-ctx.Done():
		o = outcome{err: ctx.Err()}
	case o = <-done:
	}
	e.metrics.ObserveResolverDuration(time.Since(start).Seconds())

	switch {
	case o.err != nil:
		return handler.Error(&ResolverFault{Handler: h.String(), Cause: o.err})
	case o.instr == nil:
		return handler.Error(&ResolverFault{Handler: h.String(), Cause: ErrInvalidResolverReturn})
	default:
		return o.instr
	}
}

// apply interprets an instruction into its terminal disposition.
func (e *Engine) apply(instr *handler.Instruction) Disposition {
	switch instr.Kind() {
	case handler.KindMock:
		return Disposition{Kind: Mocked, Response: instr.Response()}
	case handler.KindPassthrough:
		return Disposition{Kind: PassedThrough}
	default:
		return Disposition{Kind: Failed, Err: instr.Cause()}
	}
}
