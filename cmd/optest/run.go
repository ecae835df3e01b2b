package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/engine/born"
	"github.com/born-ml/onnx-optest/internal/engine/ort"
	"github.com/born-ml/onnx-optest/internal/suite"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

func runCommand(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	cfg, err := parseRunConfig(args, getenv, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "optest run: %v\n", err)
		return 2
	}
	logger := newLogger(stderr, cfg.LogLevel)

	var tests []*testcase.Test
	for _, path := range cfg.Files {
		loaded, err := testcase.LoadFile(path)
		if err != nil {
			logger.Error("loading test file", "path", path, "error", err)
			return 1
		}
		logger.Debug("loaded test file", "path", path, "tests", len(loaded))
		tests = append(tests, loaded...)
	}

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		logger.Error("creating engines", "error", err)
		return 1
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn("closing engines", "error", err)
		}
	}()

	report, err := suite.Run(ctx, tests, registry, suite.Options{
		Logger:    logger,
		EmitDir:   cfg.EmitDir,
		Tolerance: cfg.Tolerance,
		Backend:   cfg.Backend,
	})
	if werr := report.Write(stdout); werr != nil {
		logger.Error("writing report", "error", werr)
	}
	if err != nil {
		logger.Error("run interrupted", "error", err)
		return 1
	}
	if !report.OK() {
		return 1
	}
	return 0
}

// newRegistry registers born and, when its library is configured, ONNX
// Runtime.
func newRegistry(cfg runConfig, logger *slog.Logger) (*engine.Registry, error) {
	engines := []engine.Engine{born.New(logger)}
	if cfg.ORTLibrary != "" {
		e, err := ort.New(ort.Config{LibraryPath: cfg.ORTLibrary, Logger: logger})
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	} else {
		logger.Warn("onnxruntime library not configured, only born backends are available",
			"env", ort.LibraryPathEnv)
	}

	registry, err := engine.NewRegistry(engines...)
	if err != nil {
		return nil, err
	}
	logger.Debug("engines ready", "backends", registry.Backends())
	return registry, nil
}
