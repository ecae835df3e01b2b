package onnx

// ONNX protobuf data structures (hand-written), restricted to the fields the
// harness writes or inspects.

// IRVersion is the ONNX IR version stamped on built models.
const IRVersion = 8

// ModelProto represents an ONNX model.
type ModelProto struct {
	IRVersion       int64               // IR version (e.g., 7, 8, 9)
	OpsetImport     []OperatorSetID     // Opset version(s)
	ProducerName    string              // Tool that built the model
	ProducerVersion string              // Tool version
	Domain          string              // Model domain
	ModelVersion    int64               // Model version number
	DocString       string              // Model description
	Graph           *GraphProto         // Computation graph
	MetadataProps   []StringStringEntry // Key-value metadata
}

// GraphProto represents the computation graph.
type GraphProto struct {
	Name         string           // Graph name
	Nodes        []NodeProto      // Operation nodes
	Inputs       []ValueInfoProto // Graph inputs
	Outputs      []ValueInfoProto // Graph outputs
	Initializers []TensorProto    // Weight tensors
	DocString    string           // Graph description
	ValueInfo    []ValueInfoProto // Intermediate tensor info
}

// NodeProto represents a single operation.
type NodeProto struct {
	Name       string           // Node name (optional)
	OpType     string           // Operation type (e.g., "Conv", "MatMul", "Relu")
	Inputs     []string         // Input tensor names
	Outputs    []string         // Output tensor names
	Attributes []AttributeProto // Operation attributes
	Domain     string           // Custom domain (empty for default)
	DocString  string           // Node description
}

// TensorProto represents a tensor (weights/initializers). Built models carry
// none, but parsed models keep theirs through Marshal.
type TensorProto struct {
	Name       string    // Tensor name
	DataType   int32     // Element data type
	Dims       []int64   // Tensor shape
	RawData    []byte    // Raw binary data (most common)
	FloatData  []float32 // Float32 data
	Int32Data  []int32   // Int32 data, also used for narrower integer types
	Int64Data  []int64   // Int64 data
	DoubleData []float64 // Float64 data
	Uint64Data []uint64  // Uint32 and uint64 data
	StringData [][]byte  // String data
	DocString  string    // Tensor description
}

// ValueInfoProto describes input/output tensor specifications.
type ValueInfoProto struct {
	Name      string     // Tensor name
	Type      *TypeProto // Tensor type information
	DocString string     // Description
}

// TypeProto describes a value type. Only tensor types are supported.
type TypeProto struct {
	TensorType *TensorTypeProto
}

// TensorTypeProto describes tensor shape and element type.
//
// A nil Shape means the rank is unknown; a non-nil Shape without Dims is a
// scalar.
type TensorTypeProto struct {
	ElemType int32             // Element data type
	Shape    *TensorShapeProto // Tensor shape
}

// TensorShapeProto describes tensor dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto
}

// DimensionProto describes a single dimension: symbolic when DimParam is
// set, fixed to DimValue otherwise.
type DimensionProto struct {
	DimValue int64  // Static dimension value (e.g., 224 for image size)
	DimParam string // Dynamic dimension name (e.g., "batch_size")
}

// IsSymbolic reports whether the dimension is a named parameter.
func (d DimensionProto) IsSymbolic() bool {
	return d.DimParam != ""
}

// AttributeProto represents node attributes.
type AttributeProto struct {
	Name      string    // Attribute name
	Type      int32     // Attribute type
	F         float32   // FLOAT value
	I         int64     // INT value
	S         []byte    // STRING value
	Floats    []float32 // FLOATS array
	Ints      []int64   // INTS array
	Strings   [][]byte  // STRINGS array
	DocString string    // Description
}

// OperatorSetID identifies opset version.
type OperatorSetID struct {
	Domain  string // Operator domain (empty for default)
	Version int64  // Opset version number
}

// StringStringEntry represents key-value metadata.
type StringStringEntry struct {
	Key   string
	Value string
}

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined  = 0
	TensorProtoFloat      = 1  // float32
	TensorProtoUint8      = 2  // uint8
	TensorProtoInt8       = 3  // int8
	TensorProtoUint16     = 4  // uint16
	TensorProtoInt16      = 5  // int16
	TensorProtoInt32      = 6  // int32
	TensorProtoInt64      = 7  // int64
	TensorProtoString     = 8  // string
	TensorProtoBool       = 9  // bool
	TensorProtoFloat16    = 10 // float16
	TensorProtoDouble     = 11 // float64
	TensorProtoUint32     = 12 // uint32
	TensorProtoUint64     = 13 // uint64
	TensorProtoComplex64  = 14 // complex64
	TensorProtoComplex128 = 15 // complex128
	TensorProtoBfloat16   = 16 // bfloat16
)

// ONNX attribute types (AttributeProto.Type).
const (
	AttributeProtoUndefined = 0
	AttributeProtoFloat     = 1  // FLOAT
	AttributeProtoInt       = 2  // INT
	AttributeProtoString    = 3  // STRING
	AttributeProtoTensor    = 4  // TENSOR
	AttributeProtoGraph     = 5  // GRAPH
	AttributeProtoFloats    = 6  // FLOATS
	AttributeProtoInts      = 7  // INTS
	AttributeProtoStrings   = 8  // STRINGS
	AttributeProtoTensors   = 9  // TENSORS
	AttributeProtoGraphs    = 10 // GRAPHS
)

// Protobuf field numbers from onnx.proto.
const (
	fieldModelIRVersion       = 1
	fieldModelProducerName    = 2
	fieldModelProducerVersion = 3
	fieldModelDomain          = 4
	fieldModelVersion         = 5
	fieldModelDocString       = 6
	fieldModelGraph           = 7
	fieldModelOpsetImport     = 8
	fieldModelMetadataProps   = 14

	fieldOpsetDomain  = 1
	fieldOpsetVersion = 2

	fieldGraphNode        = 1
	fieldGraphName        = 2
	fieldGraphInitializer = 5
	fieldGraphDocString   = 10
	fieldGraphInput       = 11
	fieldGraphOutput      = 12
	fieldGraphValueInfo   = 13

	fieldNodeInput     = 1
	fieldNodeOutput    = 2
	fieldNodeName      = 3
	fieldNodeOpType    = 4
	fieldNodeAttribute = 5
	fieldNodeDocString = 6
	fieldNodeDomain    = 7

	fieldAttrName      = 1
	fieldAttrF         = 2
	fieldAttrI         = 3
	fieldAttrS         = 4
	fieldAttrFloats    = 7
	fieldAttrInts      = 8
	fieldAttrStrings   = 9
	fieldAttrDocString = 13
	fieldAttrType      = 20

	fieldValueInfoName      = 1
	fieldValueInfoType      = 2
	fieldValueInfoDocString = 3

	fieldTypeTensorType = 1

	fieldTensorTypeElemType = 1
	fieldTensorTypeShape    = 2

	fieldShapeDim = 1

	fieldDimValue = 1
	fieldDimParam = 2

	fieldTensorDims       = 1
	fieldTensorDataType   = 2
	fieldTensorFloatData  = 4
	fieldTensorInt32Data  = 5
	fieldTensorStringData = 6
	fieldTensorInt64Data  = 7
	fieldTensorName       = 8
	fieldTensorRawData    = 9
	fieldTensorDoubleData = 10
	fieldTensorUint64Data = 11
	fieldTensorDocString  = 12

	fieldEntryKey   = 1
	fieldEntryValue = 2
)
