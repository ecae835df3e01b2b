package builder

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// CreateSession builds and encodes the model for a test and loads it on the
// engine serving the test's backend.
func CreateSession(ctx context.Context, t *testcase.Test, registry *engine.Registry, logger *slog.Logger) (engine.Session, error) {
	data, err := Marshal(t)
	if err != nil {
		return nil, err
	}
	return OpenSession(ctx, t, data, registry, logger)
}

// OpenSession loads an already encoded model for a test.
func OpenSession(ctx context.Context, t *testcase.Test, model []byte, registry *engine.Registry, logger *slog.Logger) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(t.Cases) == 0 {
		return nil, errors.WithMessagef(ErrNoCases, "test %s", t)
	}

	backend := t.BackendOrDefault()
	eng, err := registry.Lookup(backend)
	if err != nil {
		return nil, errors.WithMessagef(err, "test %s", t)
	}

	opts := engine.SessionOptions{
		Backend:     backend,
		InputNames:  make([]string, len(t.Cases[0].Inputs)),
		OutputNames: make([]string, len(t.Cases[0].Outputs)),
	}
	for i := range opts.InputNames {
		opts.InputNames[i] = InputName(i)
	}
	for i := range opts.OutputNames {
		opts.OutputNames[i] = OutputName(i)
	}

	if logger != nil {
		logger.Debug("creating session",
			"test", t.Name,
			"operator", t.Operator,
			"engine", eng.Name(),
			"backend", backend,
			"model_bytes", len(model))
	}
	sess, err := eng.NewSession(ctx, model, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "test %s: %s session on %s", t, eng.Name(), backend)
	}
	return sess, nil
}
