// Package enginetest provides a recording engine for tests.
package enginetest

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/tensor"
)

// Verify that Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// RunFunc computes the fetched outputs of a run.
type RunFunc func(feeds map[string]*tensor.Tensor, fetches []string) (map[string]*tensor.Tensor, error)

// Engine is a fake engine that records the models it loads and the runs made
// on them. Its sessions compute outputs with Compute, which defaults to
// Identity.
type Engine struct {
	EngineName string
	Served     []string
	Compute    RunFunc
	// SessionErr, when set, fails every NewSession call.
	SessionErr error

	mu       sync.Mutex
	sessions []*Session
}

// New creates a fake engine serving the given backends.
func New(backends ...string) *Engine {
	return &Engine{EngineName: "fake", Served: backends}
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return e.EngineName
}

// Backends returns the served backends.
func (e *Engine) Backends() []string {
	return e.Served
}

// NewSession records the model and returns a fake session.
func (e *Engine) NewSession(ctx context.Context, model []byte, opts engine.SessionOptions) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.SessionErr != nil {
		return nil, e.SessionErr
	}
	s := &Session{engine: e, Model: model, Options: opts}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

// Sessions returns the sessions created so far.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Session(nil), e.sessions...)
}

// Call is one recorded Run.
type Call struct {
	Feeds   map[string]*tensor.Tensor
	Fetches []string
	Layouts []engine.Fetch
}

// Session is a fake session.
type Session struct {
	engine  *Engine
	Model   []byte
	Options engine.SessionOptions
	Calls   []Call
	Closed  bool
}

// Run records the call and computes the outputs.
func (s *Session) Run(ctx context.Context, feeds map[string]*tensor.Tensor, fetches []engine.Fetch) (map[string]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Closed {
		return nil, errors.New("session is closed")
	}
	names := engine.FetchNames(fetches)
	s.Calls = append(s.Calls, Call{Feeds: feeds, Fetches: names, Layouts: fetches})
	compute := s.engine.Compute
	if compute == nil {
		compute = Identity
	}
	return compute(feeds, names)
}

// InputNames returns the declared inputs.
func (s *Session) InputNames() []string {
	return s.Options.InputNames
}

// OutputNames returns the declared outputs.
func (s *Session) OutputNames() []string {
	return s.Options.OutputNames
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.Closed = true
	return nil
}

// Identity returns feed input_i as output_i.
func Identity(feeds map[string]*tensor.Tensor, fetches []string) (map[string]*tensor.Tensor, error) {
	out := make(map[string]*tensor.Tensor, len(fetches))
	for _, name := range fetches {
		in := "input_" + strings.TrimPrefix(name, "output_")
		t, ok := feeds[in]
		if !ok {
			return nil, errors.Errorf("identity: no feed %s for %s", in, name)
		}
		out[name] = t
	}
	return out, nil
}

// Const returns a RunFunc that always yields outputs.
func Const(outputs map[string]*tensor.Tensor) RunFunc {
	return func(_ map[string]*tensor.Tensor, fetches []string) (map[string]*tensor.Tensor, error) {
		out := make(map[string]*tensor.Tensor, len(fetches))
		for _, name := range fetches {
			if t, ok := outputs[name]; ok {
				out[name] = t
			}
		}
		return out, nil
	}
}
