package testcase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

const addTests = `[
  {
    "name": "Add with no attributes",
    "operator": "Add",
    "opset": {"domain": "", "version": 7},
    "inputShapeDefinitions": "rankOnly",
    "cases": [
      {
        "name": "T[0]",
        "inputs": [
          {"data": [1, 2, 3, 4], "dims": [2, 2], "type": "float32"},
          {"data": [9007199254740993], "dims": [1], "type": "int64"}
        ],
        "outputs": [{"data": [2, 3, 4, 5], "dims": [2, 2], "type": "float32"}]
      }
    ]
  },
  {
    "name": "Transpose",
    "operator": "Transpose",
    "attributes": [{"name": "perm", "data": [1, 0], "type": "ints"}],
    "inputShapeDefinitions": [[2, "N"], null, []],
    "cases": []
  }
]`

func TestParseJSONList(t *testing.T) {
	tests, err := Parse([]byte(addTests))
	require.NoError(t, err)
	require.Len(t, tests, 2)

	add := tests[0]
	assert.Equal(t, "Add with no attributes [Add]", add.String())
	assert.Equal(t, &Opset{Version: 7}, add.Opset)
	require.NotNil(t, add.InputShapeDefinitions)
	assert.Equal(t, ShapeRankOnly, add.InputShapeDefinitions.Mode)
	assert.Equal(t, DefaultBackend, add.BackendOrDefault())
	require.Len(t, add.Cases, 1)
	require.Len(t, add.Cases[0].Inputs, 2)

	big, err := add.Cases[0].Inputs[1].Tensor()
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, big.DType)
	assert.Equal(t, []int64{9007199254740993}, big.Data)

	transpose := tests[1]
	require.Len(t, transpose.Attributes, 1)
	assert.Equal(t, "ints", transpose.Attributes[0].Type)
	assert.Equal(t, []any{json.Number("1"), json.Number("0")}, transpose.Attributes[0].Data)
	assert.Empty(t, transpose.Cases)

	defs := transpose.InputShapeDefinitions
	require.NotNil(t, defs)
	assert.Equal(t, ShapeExplicit, defs.Mode)
	require.Len(t, defs.Inputs, 3)
	assert.Equal(t, []Dim{{Value: 2}, {Param: "N"}}, defs.Inputs[0])
	assert.Nil(t, defs.Inputs[1])
	assert.NotNil(t, defs.Inputs[2])
	assert.Empty(t, defs.Inputs[2])
}

func TestParseYAMLSingle(t *testing.T) {
	src := `
name: Cast
operator: Cast
backend: born-cpu
opset: {version: 13}
attributes:
  - {name: to, type: int, data: 7}
cases:
  - name: big
    inputs:
      - {type: uint64, dims: [2], data: [18446744073709551615, 1]}
    outputs:
      - {type: int64, dims: [2]}
`
	tests, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, tests, 1)
	cast := tests[0]
	assert.Equal(t, "born-cpu", cast.BackendOrDefault())
	assert.Nil(t, cast.InputShapeDefinitions)

	in, err := cast.Cases[0].Inputs[0].Tensor()
	require.NoError(t, err)
	assert.Equal(t, []uint64{18446744073709551615, 1}, in.Data)

	out := cast.Cases[0].Outputs[0]
	assert.False(t, out.HasData())
	assert.True(t, out.HasDims())
	_, err = out.Tensor()
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":         "",
		"null entry":    "[null]",
		"bad mode":      `{"name": "x", "inputShapeDefinitions": "dynamic"}`,
		"bad dim":       `{"name": "x", "inputShapeDefinitions": [[1.5]]}`,
		"negative dim":  `{"name": "x", "inputShapeDefinitions": [[-1]]}`,
		"bad dim value": `{"name": "x", "inputShapeDefinitions": [[true]]}`,
		"not yaml":      "a: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestShapeDefinitionsJSON(t *testing.T) {
	for _, src := range []string{`"none"`, `"static"`, `"rankOnly"`, `[[1,"a"],null]`} {
		var defs ShapeDefinitions
		require.NoError(t, json.Unmarshal([]byte(src), &defs), src)
		out, err := json.Marshal(defs)
		require.NoError(t, err)
		assert.JSONEq(t, src, string(out))
	}
}

func TestShapeDefinitionsEmptyMeansNone(t *testing.T) {
	for _, src := range []string{`""`, `false`, `0`} {
		var defs ShapeDefinitions
		require.NoError(t, json.Unmarshal([]byte(src), &defs), src)
		assert.Equal(t, ShapeNone, defs.Mode, src)
	}

	tests, err := Parse([]byte("name: x\ninputShapeDefinitions: \"\"\n"))
	require.NoError(t, err)
	require.NotNil(t, tests[0].InputShapeDefinitions)
	assert.Equal(t, ShapeNone, tests[0].InputShapeDefinitions.Mode)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.json")
	require.NoError(t, os.WriteFile(path, []byte(addTests), 0o600))

	tests, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tests, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
