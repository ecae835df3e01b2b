// Package ort runs models on ONNX Runtime through its C API.
//
// The runtime is loaded from a shared library whose path is given in Config
// or, when empty, in the ONNXRUNTIME_SHARED_LIBRARY_PATH environment
// variable. Only one ONNX Runtime environment exists per process: the first
// Engine initializes it and closing that Engine destroys it.
package ort

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
	onnxruntime "github.com/yalue/onnxruntime_go"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/onnx"
)

// LibraryPathEnv names the environment variable holding the shared library
// path.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// Backends served by the engine, named after the execution providers.
const (
	BackendCPU    = "cpu"
	BackendCUDA   = "cuda"
	BackendCoreML = "coreml"
)

// Verify that Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// Config configures the engine.
type Config struct {
	// LibraryPath is the onnxruntime shared library. Defaults to
	// $ONNXRUNTIME_SHARED_LIBRARY_PATH.
	LibraryPath string

	// Logger receives session lifecycle records. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine creates ONNX Runtime sessions.
type Engine struct {
	logger *slog.Logger

	mu     sync.Mutex
	owner  bool
	closed bool
}

// New initializes the ONNX Runtime environment.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := cfg.LibraryPath
	if path == "" {
		path = os.Getenv(LibraryPathEnv)
	}

	e := &Engine{logger: logger}
	if onnxruntime.IsInitialized() {
		return e, nil
	}
	if path == "" {
		return nil, errors.Errorf("onnxruntime shared library path not set (use --ort-lib or $%s)", LibraryPathEnv)
	}
	onnxruntime.SetSharedLibraryPath(path)
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return nil, errors.Wrapf(err, "initializing onnxruntime from %s", path)
	}
	e.owner = true
	logger.Debug("onnxruntime initialized", "library", path, "version", onnxruntime.GetVersion())
	return e, nil
}

// Name returns "ort".
func (e *Engine) Name() string {
	return "ort"
}

// Backends returns the execution providers the engine can select.
func (e *Engine) Backends() []string {
	return []string{BackendCPU, BackendCUDA, BackendCoreML}
}

// NewSession prepares a model for execution on opts.Backend. The runtime
// session itself is created on the first Run, once the fed inputs are known.
func (e *Engine) NewSession(ctx context.Context, model []byte, opts engine.SessionOptions) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, errors.New("ort: engine is closed")
	}

	switch opts.Backend {
	case BackendCPU, BackendCUDA, BackendCoreML:
	default:
		return nil, errors.Wrapf(engine.ErrUnknownBackend, "ort: %q", opts.Backend)
	}

	proto, err := onnx.Parse(model)
	if err != nil {
		return nil, errors.WithMessage(err, "ort: reading model")
	}
	outputTypes := make(map[string]int32, len(proto.Graph.Outputs))
	for _, out := range proto.Graph.Outputs {
		if out.Type != nil && out.Type.TensorType != nil {
			outputTypes[out.Name] = out.Type.TensorType.ElemType
		}
	}

	// Check that the execution provider is usable before any case runs.
	options, err := sessionOptions(opts.Backend)
	if err != nil {
		return nil, err
	}
	if options != nil {
		_ = options.Destroy()
	}

	e.logger.Debug("ort session prepared", "backend", opts.Backend, "graph", proto.Graph.Name)
	return &Session{
		model:       model,
		backend:     opts.Backend,
		inputNames:  opts.InputNames,
		outputNames: opts.OutputNames,
		outputTypes: outputTypes,
		logger:      e.logger,
		sessions:    make(map[string]*onnxruntime.DynamicAdvancedSession),
	}, nil
}

// Close destroys the ONNX Runtime environment if this engine created it.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.owner {
		return nil
	}
	return errors.Wrap(onnxruntime.DestroyEnvironment(), "destroying onnxruntime environment")
}

// sessionOptions returns the options selecting the execution provider of a
// backend, or nil for the default CPU provider. The caller owns the result.
func sessionOptions(backend string) (*onnxruntime.SessionOptions, error) {
	switch backend {
	case BackendCUDA:
		cuda, err := onnxruntime.NewCUDAProviderOptions()
		if err != nil {
			return nil, errors.Wrap(err, "ort: CUDA is not available")
		}
		defer cuda.Destroy()
		options, err := onnxruntime.NewSessionOptions()
		if err != nil {
			return nil, errors.Wrap(err, "ort: creating session options")
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			_ = options.Destroy()
			return nil, errors.Wrap(err, "ort: enabling CUDA")
		}
		return options, nil
	case BackendCoreML:
		options, err := onnxruntime.NewSessionOptions()
		if err != nil {
			return nil, errors.Wrap(err, "ort: creating session options")
		}
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			_ = options.Destroy()
			return nil, errors.Wrap(err, "ort: enabling CoreML")
		}
		return options, nil
	default:
		return nil, nil
	}
}
