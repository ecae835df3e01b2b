// Package engine defines the interface between the harness and the
// inference engines that load and run the built models.
//
// An engine serves one or more backends, the hint a test names in its
// "backend" field. Engines are collected in a Registry, which resolves a
// backend hint to the engine serving it:
//
//	registry, err := engine.NewRegistry(ortEngine, bornEngine)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	eng, err := registry.Lookup("cpu")
//	session, err := eng.NewSession(ctx, modelBytes, engine.SessionOptions{...})
package engine

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

var (
	// ErrUnknownBackend is returned when no registered engine serves a backend.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrUnsupportedShape is returned for tensor shapes an engine cannot
	// represent, such as zero-sized dimensions.
	ErrUnsupportedShape = errors.New("unsupported tensor shape")
)

// Engine loads serialized ONNX models into sessions.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	// Backends lists the backend hints the engine serves.
	Backends() []string

	// NewSession loads a serialized model.
	NewSession(ctx context.Context, model []byte, opts SessionOptions) (Session, error)
}

// SessionOptions configures a session.
type SessionOptions struct {
	// Backend is one of the engine's Backends.
	Backend string

	// InputNames and OutputNames are the graph inputs and outputs, in order.
	InputNames  []string
	OutputNames []string
}

// Fetch names an output to return along with the element type and
// dimensions it is expected to have. Engines that allocate output buffers
// before a run size them from DType and Dims.
type Fetch struct {
	Name  string
	DType tensor.DataType
	Dims  []int64
}

// FetchNames returns the names of fetches, in order.
func FetchNames(fetches []Fetch) []string {
	names := make([]string, len(fetches))
	for i, f := range fetches {
		names[i] = f.Name
	}
	return names
}

// Session is a loaded, runnable model.
type Session interface {
	// Run executes the model. feeds maps input names to values; fetches
	// lists the outputs to return. The result holds exactly the fetched
	// names.
	Run(ctx context.Context, feeds map[string]*tensor.Tensor, fetches []Fetch) (map[string]*tensor.Tensor, error)

	// InputNames returns the names of the model inputs.
	InputNames() []string

	// OutputNames returns the names of the model outputs.
	OutputNames() []string

	// Close releases the session.
	Close() error
}

// Registry maps backend hints to engines.
type Registry struct {
	engines  map[string]Engine
	distinct []Engine
}

// NewRegistry creates a registry. Two engines serving the same backend is an
// error.
func NewRegistry(engines ...Engine) (*Registry, error) {
	r := &Registry{engines: make(map[string]Engine)}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an engine.
func (r *Registry) Register(e Engine) error {
	for _, b := range e.Backends() {
		if prev, ok := r.engines[b]; ok {
			return errors.Errorf("backend %q is served by both %s and %s", b, prev.Name(), e.Name())
		}
	}
	for _, b := range e.Backends() {
		r.engines[b] = e
	}
	r.distinct = append(r.distinct, e)
	return nil
}

// Lookup returns the engine serving backend.
func (r *Registry) Lookup(backend string) (Engine, error) {
	e, ok := r.engines[backend]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (available: %v)", backend, r.Backends())
	}
	return e, nil
}

// Backends returns all served backends, sorted.
func (r *Registry) Backends() []string {
	backends := make([]string, 0, len(r.engines))
	for b := range r.engines {
		backends = append(backends, b)
	}
	sort.Strings(backends)
	return backends
}

// Close closes every registered engine that implements io.Closer and
// returns the first error.
func (r *Registry) Close() error {
	var first error
	for _, e := range r.distinct {
		if c, ok := e.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = errors.Wrapf(err, "closing %s", e.Name())
			}
		}
	}
	return first
}
