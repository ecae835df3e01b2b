package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *ModelProto {
	return &ModelProto{
		IRVersion:    IRVersion,
		ProducerName: "onnx-optest",
		OpsetImport:  []OperatorSetID{{Version: 17}, {Domain: "com.microsoft", Version: 1}},
		Graph: &GraphProto{
			Name: "conv",
			Nodes: []NodeProto{{
				Name:    "Conv",
				OpType:  "Conv",
				Domain:  "com.microsoft",
				Inputs:  []string{"input_0", "", "input_2"},
				Outputs: []string{"output_0"},
				Attributes: []AttributeProto{
					{Name: "alpha", Type: AttributeProtoFloat, F: 0},
					{Name: "axis", Type: AttributeProtoInt, I: -1},
					{Name: "mode", Type: AttributeProtoString, S: []byte("constant")},
					{Name: "scales", Type: AttributeProtoFloats, Floats: []float32{1.5, -2}},
					{Name: "pads", Type: AttributeProtoInts, Ints: []int64{0, -1, 1 << 40}},
					{Name: "directions", Type: AttributeProtoStrings, Strings: [][]byte{[]byte("forward"), []byte(""), []byte("réverse")}},
				},
			}},
			Inputs: []ValueInfoProto{
				{Name: "input_0", Type: &TypeProto{TensorType: &TensorTypeProto{
					ElemType: TensorProtoFloat,
					Shape:    &TensorShapeProto{Dims: []DimensionProto{{DimParam: "_input_0_d0"}, {DimValue: 0}, {DimValue: 3}}},
				}}},
				{Name: "input_2", Type: &TypeProto{TensorType: &TensorTypeProto{
					ElemType: TensorProtoInt64,
					Shape:    &TensorShapeProto{},
				}}},
			},
			Outputs: []ValueInfoProto{
				{Name: "output_0", Type: &TypeProto{TensorType: &TensorTypeProto{ElemType: TensorProtoFloat}}},
			},
		},
		MetadataProps: []StringStringEntry{{Key: "test", Value: "conv"}},
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	want := testModel()
	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMarshalInitializers(t *testing.T) {
	want := testModel()
	want.Graph.Initializers = []TensorProto{
		{Name: "weight", DataType: TensorProtoFloat, Dims: []int64{2, 2}, FloatData: []float32{1, -2.5, 0, 3}},
		{Name: "bias", DataType: TensorProtoInt32, Dims: []int64{2}, Int32Data: []int32{-7, 1 << 30}},
		{Name: "ids", DataType: TensorProtoInt64, Dims: []int64{1}, Int64Data: []int64{-1}},
		{Name: "scale", DataType: TensorProtoDouble, DoubleData: []float64{0.125}},
		{Name: "mask", DataType: TensorProtoUint64, Dims: []int64{2}, Uint64Data: []uint64{1 << 63, 0}},
		{Name: "labels", DataType: TensorProtoString, Dims: []int64{2}, StringData: [][]byte{[]byte("cat"), []byte("")}},
		{Name: "raw", DataType: TensorProtoUint8, Dims: []int64{3}, RawData: []byte{1, 2, 3}, DocString: "bytes"},
	}
	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want.Graph.Initializers, got.Graph.Initializers)
	assert.Equal(t, want, got)
}

func TestMarshalShapePresence(t *testing.T) {
	data, err := Marshal(testModel())
	require.NoError(t, err)
	got, err := Parse(data)
	require.NoError(t, err)

	// Scalar: shape present with no dims.
	scalar := got.Graph.Inputs[1].Type.TensorType.Shape
	require.NotNil(t, scalar)
	assert.Empty(t, scalar.Dims)

	// Unknown rank: no shape at all.
	assert.Nil(t, got.Graph.Outputs[0].Type.TensorType.Shape)

	// Fixed zero dimension survives the oneof encoding.
	dims := got.Graph.Inputs[0].Type.TensorType.Shape.Dims
	assert.False(t, dims[1].IsSymbolic())
	assert.Equal(t, int64(0), dims[1].DimValue)
}

func TestMarshalStringsIndependently(t *testing.T) {
	strs := [][]byte{[]byte("a"), []byte("bc"), []byte("")}
	encoded := encodeAttribute(&AttributeProto{Name: "s", Type: AttributeProtoStrings, Strings: strs})

	var got AttributeProto
	require.NoError(t, readAttribute(encoded, &got))
	require.Len(t, got.Strings, 3)
	for i := range strs {
		assert.Equal(t, string(strs[i]), string(got.Strings[i]))
	}
}

func TestMarshalErrors(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)
	_, err = Marshal(&ModelProto{IRVersion: IRVersion})
	assert.Error(t, err)
}
