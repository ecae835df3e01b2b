package main

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/born-ml/onnx-optest/internal/engine/ort"
	"github.com/born-ml/onnx-optest/internal/runner"
)

// LogLevelEnv names the environment variable holding the default log level.
const LogLevelEnv = "OPTEST_LOG_LEVEL"

// runConfig holds the options of "optest run".
type runConfig struct {
	Backend    string
	ORTLibrary string
	LogLevel   slog.Level
	EmitDir    string
	Tolerance  runner.Tolerance
	Files      []string
}

// parseRunConfig reads flags, falling back to environment variables for the
// runtime library and the log level.
func parseRunConfig(args []string, getenv func(string) string, stderr io.Writer) (runConfig, error) {
	var (
		cfg      runConfig
		logLevel string
	)
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, "Usage: optest run [flags] FILE...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Backend, "backend", "", "run every test on this backend instead of the one it names")
	fs.StringVar(&cfg.ORTLibrary, "ort-lib", getenv(ort.LibraryPathEnv), "onnxruntime shared library (default $"+ort.LibraryPathEnv+")")
	fs.StringVar(&logLevel, "log-level", envOr(getenv, LogLevelEnv, "info"), "log level: debug, info, warn or error")
	fs.StringVar(&cfg.EmitDir, "emit-dir", "", "write each built model to this directory")
	fs.Float64Var(&cfg.Tolerance.Abs, "abs-tol", runner.DefaultTolerance.Abs, "absolute tolerance for floating point outputs")
	fs.Float64Var(&cfg.Tolerance.Rel, "rel-tol", runner.DefaultTolerance.Rel, "relative tolerance for floating point outputs")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return cfg, errors.Wrapf(err, "invalid log level %q", logLevel)
	}
	if cfg.Tolerance.Abs < 0 || cfg.Tolerance.Rel < 0 {
		return cfg, errors.New("tolerances must not be negative")
	}
	cfg.Files = fs.Args()
	if len(cfg.Files) == 0 {
		fs.Usage()
		return cfg, errors.New("no test files given")
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
