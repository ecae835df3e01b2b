// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optest builds single-operator ONNX models from declarative test
// descriptions and runs them on an inference engine.
//
// A test names an operator, its opset and attributes, and a list of cases
// giving input tensors and the outputs expected from them. The test is
// turned into a model with one node whose inputs are input_0..input_{n-1}
// and outputs output_0..output_{m-1}.
//
// # Example Usage
//
//	tests, err := optest.Load("add.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engines := []optest.Engine{optest.NewBornEngine(nil)}
//	if ort, err := optest.NewORTEngine(optest.ORTConfig{LibraryPath: libPath}); err == nil {
//	    engines = append(engines, ort)
//	}
//	registry, err := optest.NewRegistry(engines...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	for _, test := range tests {
//	    session, err := optest.CreateSession(ctx, test, registry)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for i := range test.Cases {
//	        results, err := optest.RunCase(ctx, session, &test.Cases[i])
//	        ...
//	    }
//	    session.Close()
//	}
package optest

import (
	"context"
	"log/slog"

	"github.com/born-ml/onnx-optest/internal/builder"
	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/engine/born"
	"github.com/born-ml/onnx-optest/internal/engine/ort"
	"github.com/born-ml/onnx-optest/internal/runner"
	"github.com/born-ml/onnx-optest/internal/suite"
	"github.com/born-ml/onnx-optest/internal/tensor"
	"github.com/born-ml/onnx-optest/internal/testcase"
	"github.com/born-ml/onnx-optest/onnx"
)

// Test descriptor types.
type (
	Test             = testcase.Test
	Opset            = testcase.Opset
	Attribute        = testcase.Attribute
	Case             = testcase.Case
	TensorSpec       = testcase.TensorSpec
	ShapeDefinitions = testcase.ShapeDefinitions
	ShapeMode        = testcase.ShapeMode
	Dim              = testcase.Dim
)

// Shape modes.
const (
	ShapeNone     = testcase.ShapeNone
	ShapeRankOnly = testcase.ShapeRankOnly
	ShapeStatic   = testcase.ShapeStatic
	ShapeExplicit = testcase.ShapeExplicit
)

// Tensor is the engine-neutral tensor exchanged with sessions.
type Tensor = tensor.Tensor

// DataType is a tensor element type.
type DataType = tensor.DataType

// Element types.
const (
	Int8    = tensor.Int8
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
	Int16   = tensor.Int16
	Uint16  = tensor.Uint16
	Int32   = tensor.Int32
	Uint32  = tensor.Uint32
	Float16 = tensor.Float16
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	String  = tensor.String
	Int64   = tensor.Int64
	Uint64  = tensor.Uint64
)

// NewTensor creates a tensor from a typed slice such as []float32, checking
// that dims match its length.
func NewTensor(dtype DataType, dims []int64, data any) (*Tensor, error) {
	return tensor.New(dtype, dims, data)
}

// TensorFromLiteral converts literal values, as found in test files, into a
// tensor. A nil dims makes the tensor 1-D.
func TensorFromLiteral(dtype DataType, dims []int64, values []any) (*Tensor, error) {
	return tensor.FromLiteral(dtype, dims, values)
}

// ParseDataType returns the element type named by a tag such as "float32".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}

// Engine, Session and Registry connect the harness to inference engines.
type (
	Engine         = engine.Engine
	Session        = engine.Session
	SessionOptions = engine.SessionOptions
	Registry       = engine.Registry
	Fetch          = engine.Fetch
)

// Engines shipped with the harness.
type (
	BornEngine = born.Engine
	ORTEngine  = ort.Engine
	ORTConfig  = ort.Config
)

// Backends served by the shipped engines.
const (
	BackendORTCPU     = ort.BackendCPU
	BackendORTCUDA    = ort.BackendCUDA
	BackendORTCoreML  = ort.BackendCoreML
	BackendBornCPU    = born.BackendCPU
	BackendBornWebGPU = born.BackendWebGPU
)

// ORTLibraryPathEnv names the environment variable NewORTEngine reads when
// ORTConfig.LibraryPath is empty.
const ORTLibraryPathEnv = ort.LibraryPathEnv

// NewBornEngine returns an engine running models on the pure Go born
// runtime. A nil logger uses slog.Default().
func NewBornEngine(logger *slog.Logger) *BornEngine {
	return born.New(logger)
}

// NewORTEngine loads the ONNX Runtime shared library and returns an engine
// running models on it.
func NewORTEngine(cfg ORTConfig) (*ORTEngine, error) {
	return ort.New(cfg)
}

// Tolerance bounds the drift accepted for floating point outputs.
type Tolerance = runner.Tolerance

// DefaultTolerance is used by the command line unless overridden.
var DefaultTolerance = runner.DefaultTolerance

// Report and Options of RunSuite.
type (
	Report     = suite.Report
	TestResult = suite.TestResult
	CaseResult = suite.CaseResult
	Options    = suite.Options
)

// Errors returned while building models. Match them with errors.Is.
var (
	ErrUnsupportedAttributeType = builder.ErrUnsupportedAttributeType
	ErrNoCases                  = builder.ErrNoCases
	ErrCaseCountMismatch        = builder.ErrCaseCountMismatch
	ErrMissingData              = builder.ErrMissingData
	ErrRankMismatch             = builder.ErrRankMismatch
	ErrShapeMismatch            = builder.ErrShapeMismatch
	ErrShapeDefinitionCount     = builder.ErrShapeDefinitionCount
	ErrUnsupportedDataType      = builder.ErrUnsupportedDataType
	ErrUnknownBackend           = engine.ErrUnknownBackend
	ErrUnsupportedShape         = engine.ErrUnsupportedShape
	ErrMismatch                 = runner.ErrMismatch
)

// Load reads the tests of a JSON or YAML file holding one test or a list.
func Load(path string) ([]*Test, error) {
	return testcase.LoadFile(path)
}

// Parse decodes tests from JSON or YAML.
func Parse(data []byte) ([]*Test, error) {
	return testcase.Parse(data)
}

// BuildModel builds the single-node model of a test.
func BuildModel(t *Test) (*onnx.ModelProto, error) {
	return builder.BuildModel(t)
}

// Marshal builds and encodes the model of a test.
func Marshal(t *Test) ([]byte, error) {
	return builder.Marshal(t)
}

// NewRegistry collects engines by the backends they serve.
func NewRegistry(engines ...Engine) (*Registry, error) {
	return engine.NewRegistry(engines...)
}

// CreateSession builds the model of a test and loads it on the engine
// serving the test's backend.
func CreateSession(ctx context.Context, t *Test, registry *Registry) (Session, error) {
	return builder.CreateSession(ctx, t, registry, nil)
}

// RunCase runs a case and returns the raw results by output name.
func RunCase(ctx context.Context, session Session, c *Case) (map[string]*Tensor, error) {
	return runner.RunCase(ctx, session, c)
}

// Expected returns the expected outputs of a case by output name.
func Expected(c *Case) (map[string]*Tensor, error) {
	expected, _, err := runner.Expected(c)
	return expected, err
}

// Check compares results against expected outputs.
func Check(actual, expected map[string]*Tensor, tol Tolerance) error {
	return runner.Check(actual, expected, tol)
}

// RunSuite runs tests sequentially and reports every case.
func RunSuite(ctx context.Context, tests []*Test, registry *Registry, opts Options) (*Report, error) {
	return suite.Run(ctx, tests, registry, opts)
}
