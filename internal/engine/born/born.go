// Package born runs models on the pure Go born inference engine.
//
// Two backends are served: born-cpu everywhere and born-webgpu where a
// WebGPU adapter is available. born computes in float32, float64, int32,
// int64, uint8 and bool; tensors of other types are rejected.
package born

import (
	"context"
	"log/slog"
	"sync"

	borncpu "github.com/born-ml/born/backend/cpu"
	bornonnx "github.com/born-ml/born/onnx"
	borntensor "github.com/born-ml/born/tensor"
	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/tensor"
)

// Backends served by the engine.
const (
	BackendCPU    = "born-cpu"
	BackendWebGPU = "born-webgpu"
)

// Verify that Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// Engine loads models on born backends. Compute backends are created on
// first use and shared by all sessions.
type Engine struct {
	logger *slog.Logger

	mu       sync.Mutex
	backends map[string]borntensor.Backend
	release  []func()
}

// New creates an engine. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, backends: make(map[string]borntensor.Backend)}
}

// Name returns "born".
func (e *Engine) Name() string {
	return "born"
}

// Backends returns born-cpu, plus born-webgpu when available.
func (e *Engine) Backends() []string {
	if webgpuAvailable() {
		return []string{BackendCPU, BackendWebGPU}
	}
	return []string{BackendCPU}
}

// NewSession loads the model on the requested backend.
func (e *Engine) NewSession(ctx context.Context, model []byte, opts engine.SessionOptions) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	backend, err := e.backend(opts.Backend)
	if err != nil {
		return nil, err
	}
	m, err := bornonnx.LoadFromBytes(model, backend)
	if err != nil {
		return nil, errors.Wrap(err, "born: loading model")
	}
	e.logger.Debug("born model loaded", "backend", opts.Backend, "inputs", m.InputNames(), "outputs", m.OutputNames())
	return &Session{model: m}, nil
}

func (e *Engine) backend(name string) (borntensor.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.backends[name]; ok {
		return b, nil
	}

	var b borntensor.Backend
	switch name {
	case BackendCPU:
		b = borncpu.New()
	case BackendWebGPU:
		gpu, release, err := newWebGPU()
		if err != nil {
			return nil, errors.Wrap(err, "born: creating WebGPU backend")
		}
		b = gpu
		e.release = append(e.release, release)
	default:
		return nil, errors.Wrapf(engine.ErrUnknownBackend, "born: %q", name)
	}
	e.backends[name] = b
	return b, nil
}

// Close releases GPU resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, release := range e.release {
		release()
	}
	e.release = nil
	e.backends = make(map[string]borntensor.Backend)
	return nil
}

// Session runs a loaded born model.
type Session struct {
	model bornonnx.Model
}

// InputNames returns the model inputs.
func (s *Session) InputNames() []string {
	return s.model.InputNames()
}

// OutputNames returns the model outputs.
func (s *Session) OutputNames() []string {
	return s.model.OutputNames()
}

// Run executes the model. born computes every output; only fetches are
// returned.
func (s *Session) Run(ctx context.Context, feeds map[string]*tensor.Tensor, fetches []engine.Fetch) (map[string]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.model == nil {
		return nil, errors.New("born: session is closed")
	}

	inputs := make(map[string]*borntensor.RawTensor, len(feeds))
	for name, t := range feeds {
		raw, err := toRaw(t)
		if err != nil {
			return nil, errors.WithMessagef(err, "born: input %s", name)
		}
		inputs[name] = raw
	}

	outputs, err := s.model.ForwardNamed(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "born: forward")
	}

	results := make(map[string]*tensor.Tensor, len(fetches))
	for _, f := range fetches {
		name := f.Name
		raw, ok := outputs[name]
		if !ok {
			return nil, errors.Errorf("born: model produced no output %s", name)
		}
		t, err := fromRaw(raw)
		if err != nil {
			return nil, errors.WithMessagef(err, "born: output %s", name)
		}
		results[name] = t
	}
	return results, nil
}

// Close drops the model.
func (s *Session) Close() error {
	s.model = nil
	return nil
}
