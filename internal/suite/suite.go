// Package suite runs test files end to end: it builds the model of each test,
// loads it on the engine serving the test's backend and verifies every case.
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/builder"
	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/runner"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// Options configures Run.
type Options struct {
	// Logger receives a debug record per case and an info record per test.
	// A nil Logger discards them.
	Logger *slog.Logger

	// EmitDir, when set, receives each built model as <test>.onnx. Tests
	// whose file names collide get a -2, -3, ... suffix.
	EmitDir string

	// Tolerance applies to floating point outputs.
	Tolerance runner.Tolerance

	// Backend, when set, overrides the backend of every test.
	Backend string
}

// DefaultOptions returns options using runner.DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: runner.DefaultTolerance}
}

// Run executes tests sequentially. Failures are recorded in the report; the
// returned error is only set when ctx is done.
func Run(ctx context.Context, tests []*testcase.Test, registry *engine.Registry, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var em *emitter
	if opts.EmitDir != "" {
		em = &emitter{dir: opts.EmitDir, used: make(map[string]bool)}
	}

	report := &Report{}
	for _, t := range tests {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if opts.Backend != "" {
			clone := *t
			clone.Backend = opts.Backend
			t = &clone
		}

		result := runTest(ctx, t, registry, em, opts, logger)
		report.Tests = append(report.Tests, result)

		attrs := []any{
			"test", t.Name,
			"operator", t.Operator,
			"backend", t.BackendOrDefault(),
			"passed", result.Passed(),
			"failed", result.Failed(),
		}
		if result.Err != nil {
			logger.Error("test failed", append(attrs, "error", result.Err)...)
		} else {
			logger.Info("test finished", attrs...)
		}
	}
	return report, ctx.Err()
}

func runTest(ctx context.Context, t *testcase.Test, registry *engine.Registry, em *emitter, opts Options, logger *slog.Logger) TestResult {
	result := TestResult{Name: t.Name, Operator: t.Operator, Backend: t.BackendOrDefault()}
	fail := func(err error) TestResult {
		result.Err = err
		for _, c := range t.Cases {
			result.Cases = append(result.Cases, CaseResult{Name: c.Name, Err: err})
		}
		return result
	}

	model, err := builder.Marshal(t)
	if err != nil {
		return fail(err)
	}
	if em != nil {
		path, err := em.write(t.Name, model)
		if err != nil {
			return fail(err)
		}
		logger.Debug("model written", "test", t.Name, "path", path)
	}

	sess, err := builder.OpenSession(ctx, t, model, registry, logger)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("closing session", "test", t.Name, "error", err)
		}
	}()

	for i := range t.Cases {
		c := &t.Cases[i]
		start := time.Now()
		err := runner.Verify(ctx, sess, c, opts.Tolerance)
		cr := CaseResult{Name: c.Name, Err: err, Duration: time.Since(start)}
		result.Cases = append(result.Cases, cr)

		if err != nil {
			logger.Debug("case failed", "test", t.Name, "case", c.Name, "duration", cr.Duration, "error", err)
		} else {
			logger.Debug("case passed", "test", t.Name, "case", c.Name, "duration", cr.Duration)
		}
	}
	return result
}

// emitter writes the models of one run, one file per test.
type emitter struct {
	dir  string
	used map[string]bool
}

// write stores a model as dir/<name>.onnx and returns the path.
func (e *emitter) write(testName string, model []byte) (string, error) {
	if len(e.used) == 0 {
		if err := os.MkdirAll(e.dir, 0o755); err != nil {
			return "", errors.Wrap(err, "creating emit directory")
		}
	}
	file := FileName(testName)
	stem := strings.TrimSuffix(file, ".onnx")
	for n := 2; e.used[file]; n++ {
		file = fmt.Sprintf("%s-%d.onnx", stem, n)
	}
	e.used[file] = true

	path := filepath.Join(e.dir, file)
	if err := os.WriteFile(path, model, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

// FileName returns the file name a test's model is emitted under. Characters
// outside [A-Za-z0-9._-] are replaced by '_'.
func FileName(testName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, testName)
	if name == "" {
		name = "model"
	}
	return name + ".onnx"
}
