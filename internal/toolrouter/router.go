// Package toolrouter dispatches named tool calls (prefix.method) to one of
// three kinds of backends: deterministic mocks, in-process adapters, or a
// remote HTTP gateway. Every call emits exactly one trace event. The router
// never retries; retry policy belongs to its callers.
package toolrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tripsmith/tripsmith/pkg/config"
)

var (
	// ErrUnknownPrefix means no backend is registered for the tool's prefix.
	ErrUnknownPrefix = errors.New("unknown tool prefix")
	// ErrBackendUnavailable means the selected backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ExecutionError wraps a failure raised by a backend, carrying the tool name
// so failures crossing the component boundary stay attributable.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Backend handles the methods behind one tool prefix.
type Backend interface {
	// Handle executes one method with its payload and returns the result.
	Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error)
	// Tools lists the dotted tool names this backend serves.
	Tools() []string
}

// Registry maps tool prefixes to backends.
type Registry map[string]Backend

// Catalog returns every registered dotted tool name, grouped by prefix.
func (r Registry) Catalog() map[string][]string {
	out := make(map[string][]string, len(r))
	for prefix, b := range r {
		out[prefix] = b.Tools()
	}
	return out
}

// GatewayCaller forwards a tool call to a remote gateway process.
type GatewayCaller interface {
	Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error)
}

// Router routes tool calls by prefix. The mode is fixed at construction:
// mock and local both resolve through the registry (they differ only in
// which backends were registered), gateway forwards every call over HTTP.
type Router struct {
	mode     config.RouterMode
	registry Registry
	gateway  GatewayCaller
	onTrace  func(TraceEvent)
}

// New builds a Router. gateway may be nil unless mode is ModeGateway.
// onTrace may be nil; when set it receives exactly one event per call.
func New(mode config.RouterMode, registry Registry, gateway GatewayCaller, onTrace func(TraceEvent)) *Router {
	return &Router{
		mode:     mode,
		registry: registry,
		gateway:  gateway,
		onTrace:  onTrace,
	}
}

// Registry exposes the registered backends, for catalog listings.
func (r *Router) Registry() Registry { return r.registry }

// Call routes one tool call and returns its result. The tool name has the
// form "prefix.method". Errors are ErrUnknownPrefix, ErrBackendUnavailable,
// or an *ExecutionError wrapping whatever the backend raised.
func (r *Router) Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error) {
	start := time.Now()
	trace := TraceEvent{
		Tool:        tool,
		Status:      StatusPending,
		PayloadHash: Fingerprint(payload),
		Timestamp:   start,
	}

	var result map[string]any
	var err error
	if r.mode == config.ModeGateway {
		result, err = r.callGateway(ctx, tool, payload)
	} else {
		result, err = r.callLocal(ctx, tool, payload)
	}

	trace.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		trace.Status = StatusError
		trace.Error = err.Error()
	} else {
		trace.Status = StatusOK
	}
	if r.onTrace != nil {
		r.onTrace(trace)
	}
	return result, err
}

func (r *Router) callLocal(ctx context.Context, tool string, payload map[string]any) (map[string]any, error) {
	prefix, method := SplitName(tool)
	backend, ok := r.registry[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrefix, prefix)
	}
	result, err := backend.Handle(ctx, method, payload)
	if err != nil {
		return nil, &ExecutionError{Tool: tool, Err: err}
	}
	return result, nil
}

func (r *Router) callGateway(ctx context.Context, tool string, payload map[string]any) (map[string]any, error) {
	if r.gateway == nil {
		return nil, fmt.Errorf("%w: no gateway configured", ErrBackendUnavailable)
	}
	return r.gateway.Call(ctx, tool, payload)
}

// SplitName splits a dotted tool name into prefix and method. A name with
// no dot routes as its own prefix with itself as the method.
func SplitName(tool string) (prefix, method string) {
	if i := strings.Index(tool, "."); i >= 0 {
		return tool[:i], tool[i+1:]
	}
	return tool, tool
}
