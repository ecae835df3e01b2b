// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optest_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnx-optest/internal/engine/enginetest"
	"github.com/born-ml/onnx-optest/optest"
)

const reluYAML = `
- name: relu
  operator: Relu
  opset: {version: 14}
  inputShapeDefinitions: rankOnly
  cases:
    - name: mixed
      inputs:
        - {type: float32, dims: [3], data: [-1, 0, 2]}
      outputs:
        - {type: float32, dims: [3], data: [-1, 0, 2]}
`

func TestEndToEnd(t *testing.T) {
	tests, err := optest.Parse([]byte(reluYAML))
	require.NoError(t, err)
	require.Len(t, tests, 1)

	model, err := optest.BuildModel(tests[0])
	require.NoError(t, err)
	assert.Equal(t, "_input_0_d0", model.Graph.Inputs[0].Type.TensorType.Shape.Dims[0].DimParam)

	registry, err := optest.NewRegistry(enginetest.New("cpu"))
	require.NoError(t, err)
	defer registry.Close()

	session, err := optest.CreateSession(context.Background(), tests[0], registry)
	require.NoError(t, err)
	defer session.Close()

	c := &tests[0].Cases[0]
	results, err := optest.RunCase(context.Background(), session, c)
	require.NoError(t, err)
	expected, err := optest.Expected(c)
	require.NoError(t, err)
	require.NoError(t, optest.Check(results, expected, optest.DefaultTolerance))

	report, err := optest.RunSuite(context.Background(), tests, registry, optest.Options{Tolerance: optest.DefaultTolerance})
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestErrors(t *testing.T) {
	_, err := optest.BuildModel(&optest.Test{Name: "empty", Operator: "Abs"})
	assert.ErrorIs(t, err, optest.ErrNoCases)

	registry, err := optest.NewRegistry()
	require.NoError(t, err)
	_, err = optest.CreateSession(context.Background(), &optest.Test{
		Name:     "abs",
		Operator: "Abs",
		Cases:    []optest.Case{{Inputs: []optest.TensorSpec{{Type: "int32"}}, Outputs: []optest.TensorSpec{{Type: "int32"}}}},
	}, registry)
	assert.ErrorIs(t, err, optest.ErrUnknownBackend)
}

func TestShippedEngines(t *testing.T) {
	born := optest.NewBornEngine(nil)
	registry, err := optest.NewRegistry(born)
	require.NoError(t, err)
	defer registry.Close()
	assert.Contains(t, registry.Backends(), optest.BackendBornCPU)

	test := &optest.Test{
		Name:     "add",
		Operator: "Add",
		Opset:    &optest.Opset{Version: 14},
		Backend:  optest.BackendBornCPU,
		Cases: []optest.Case{{
			Inputs: []optest.TensorSpec{
				{Type: "float32", Dims: []int64{2}, Data: []any{1.0, 2.0}},
				{Type: "float32", Dims: []int64{2}, Data: []any{3.0, 4.0}},
			},
			Outputs: []optest.TensorSpec{{Type: "float32", Dims: []int64{2}, Data: []any{4.0, 6.0}}},
		}},
	}
	report, err := optest.RunSuite(context.Background(), []*optest.Test{test}, registry, optest.Options{Tolerance: optest.DefaultTolerance})
	require.NoError(t, err)
	assert.True(t, report.OK())

	ort, err := optest.NewORTEngine(optest.ORTConfig{})
	if os.Getenv(optest.ORTLibraryPathEnv) == "" {
		assert.Error(t, err)
	} else {
		require.NoError(t, err)
		assert.NoError(t, ort.Close())
	}
}

func TestTensorConstructors(t *testing.T) {
	dt, err := optest.ParseDataType("int64")
	require.NoError(t, err)
	assert.Equal(t, optest.Int64, dt)

	x, err := optest.TensorFromLiteral(dt, []int64{}, []any{json.Number("9007199254740993")})
	require.NoError(t, err)
	assert.Equal(t, []int64{9007199254740993}, x.Data)

	_, err = optest.NewTensor(optest.Float32, []int64{3}, []float32{1, 2})
	assert.Error(t, err)
}
