package onnx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// buildSimpleAddModel creates a minimal Z = X + Y model directly on the wire,
// without going through Marshal.
func buildSimpleAddModel() []byte {
	var node []byte
	node = appendTestString(node, 1, "X")
	node = appendTestString(node, 1, "Y")
	node = appendTestString(node, 2, "Z")
	node = appendTestString(node, 4, "Add")

	var graph []byte
	graph = appendTestMessage(graph, 1, node)
	graph = appendTestString(graph, 2, "add_graph")
	graph = appendTestMessage(graph, 11, buildValueInfo("X", TensorProtoFloat, []int64{2, 3}))
	graph = appendTestMessage(graph, 11, buildValueInfo("Y", TensorProtoFloat, []int64{2, 3}))
	graph = appendTestMessage(graph, 12, buildValueInfo("Z", TensorProtoFloat, []int64{2, 3}))

	var opset []byte
	opset = protowire.AppendTag(opset, 2, protowire.VarintType)
	opset = protowire.AppendVarint(opset, 13)

	var model []byte
	model = protowire.AppendTag(model, 1, protowire.VarintType)
	model = protowire.AppendVarint(model, 7)
	model = appendTestString(model, 2, "pytorch")
	model = appendTestMessage(model, 8, opset)
	model = appendTestMessage(model, 7, graph)
	return model
}

// buildValueInfo creates ValueInfoProto.
func buildValueInfo(name string, dtype int32, shape []int64) []byte {
	var dims []byte
	for _, d := range shape {
		var dim []byte
		dim = protowire.AppendTag(dim, 1, protowire.VarintType)
		dim = protowire.AppendVarint(dim, uint64(d))
		dims = appendTestMessage(dims, 1, dim)
	}
	var tensorType []byte
	tensorType = protowire.AppendTag(tensorType, 1, protowire.VarintType)
	tensorType = protowire.AppendVarint(tensorType, uint64(dtype))
	tensorType = appendTestMessage(tensorType, 2, dims)

	var vi []byte
	vi = appendTestString(vi, 1, name)
	vi = appendTestMessage(vi, 2, appendTestMessage(nil, 1, tensorType))
	return vi
}

func appendTestString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTestMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// TestParseSimpleAdd tests parsing a simple Add operation.
func TestParseSimpleAdd(t *testing.T) {
	model, err := Parse(buildSimpleAddModel())
	require.NoError(t, err)

	assert.Equal(t, int64(7), model.IRVersion)
	assert.Equal(t, "pytorch", model.ProducerName)
	require.Len(t, model.OpsetImport, 1)
	assert.Equal(t, int64(13), model.OpsetImport[0].Version)

	require.NotNil(t, model.Graph)
	assert.Equal(t, "add_graph", model.Graph.Name)
	require.Len(t, model.Graph.Nodes, 1)
	node := model.Graph.Nodes[0]
	assert.Equal(t, "Add", node.OpType)
	assert.Equal(t, []string{"X", "Y"}, node.Inputs)
	assert.Equal(t, []string{"Z"}, node.Outputs)

	require.Len(t, model.Graph.Inputs, 2)
	input := model.Graph.Inputs[0]
	assert.Equal(t, "X", input.Name)
	require.NotNil(t, input.Type)
	require.NotNil(t, input.Type.TensorType)
	assert.Equal(t, int32(TensorProtoFloat), input.Type.TensorType.ElemType)
	require.NotNil(t, input.Type.TensorType.Shape)
	assert.Equal(t, []DimensionProto{{DimValue: 2}, {DimValue: 3}}, input.Type.TensorType.Shape.Dims)
}

// TestParseUnpackedRepeated checks that non-packed repeated scalars, as
// written by older exporters, are accepted.
func TestParseUnpackedRepeated(t *testing.T) {
	var attr []byte
	attr = appendTestString(attr, 1, "pads")
	attr = protowire.AppendTag(attr, 20, protowire.VarintType)
	attr = protowire.AppendVarint(attr, AttributeProtoInts)
	for _, v := range []int64{1, -2, 3} {
		attr = protowire.AppendTag(attr, 8, protowire.VarintType)
		attr = protowire.AppendVarint(attr, uint64(v))
	}
	attr = protowire.AppendTag(attr, 7, protowire.Fixed32Type)
	attr = protowire.AppendFixed32(attr, math.Float32bits(0.5))

	var got AttributeProto
	require.NoError(t, readAttribute(attr, &got))
	assert.Equal(t, "pads", got.Name)
	assert.Equal(t, int32(AttributeProtoInts), got.Type)
	assert.Equal(t, []int64{1, -2, 3}, got.Ints)
	assert.Equal(t, []float32{0.5}, got.Floats)
}

func TestParseSkipsUnknownFields(t *testing.T) {
	data := buildSimpleAddModel()
	// training_info (20) and an unknown fixed64 field.
	data = appendTestMessage(data, 20, []byte("ignored"))
	data = protowire.AppendTag(data, 99, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 42)

	model, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "add_graph", model.Graph.Name)
}

func TestParseInitializer(t *testing.T) {
	var tensorMsg []byte
	tensorMsg = appendTestMessage(tensorMsg, 1, protowire.AppendVarint(protowire.AppendVarint(nil, 4), 4))
	tensorMsg = protowire.AppendTag(tensorMsg, 2, protowire.VarintType)
	tensorMsg = protowire.AppendVarint(tensorMsg, TensorProtoFloat)
	tensorMsg = appendTestString(tensorMsg, 8, "W")
	tensorMsg = appendTestMessage(tensorMsg, 9, make([]byte, 64))

	var graph []byte
	graph = appendTestMessage(graph, 5, tensorMsg)
	graph = appendTestMessage(graph, 11, buildValueInfo("W", TensorProtoFloat, []int64{4, 4}))
	graph = appendTestMessage(graph, 11, buildValueInfo("X", TensorProtoFloat, []int64{1, 4}))

	model, err := Parse(appendTestMessage(nil, 7, graph))
	require.NoError(t, err)
	require.Len(t, model.Graph.Initializers, 1)
	w := model.Graph.Initializers[0]
	assert.Equal(t, "W", w.Name)
	assert.Equal(t, int32(TensorProtoFloat), w.DataType)
	assert.Equal(t, []int64{4, 4}, w.Dims)
	assert.Len(t, w.RawData, 64)

	info, err := Describe(model)
	require.NoError(t, err)
	assert.Equal(t, 1, info.WeightCount)
	require.Len(t, info.Inputs, 1)
	assert.Equal(t, "X", info.Inputs[0].Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated tag", []byte{0x80}},
		{"truncated graph", appendTestMessage(nil, 7, []byte{0x0a, 0x10, 0x01})},
		{"wrong wire type for name", protowire.AppendVarint(protowire.AppendTag(nil, 2, protowire.VarintType), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.onnx")
	require.NoError(t, os.WriteFile(path, buildSimpleAddModel(), 0o600))

	info, err := GetModelInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(13), info.OpsetVersion)
	assert.Equal(t, []string{"Add"}, info.Operators)
	require.Len(t, info.Inputs, 2)
	assert.Equal(t, "X:float32[2,3]", info.Inputs[0].String())

	_, err = GetModelInfo(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)
}
