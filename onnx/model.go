package onnx

import internalonnx "github.com/born-ml/onnx-optest/internal/onnx"

// Protobuf message types.
type (
	ModelProto        = internalonnx.ModelProto
	GraphProto        = internalonnx.GraphProto
	NodeProto         = internalonnx.NodeProto
	AttributeProto    = internalonnx.AttributeProto
	ValueInfoProto    = internalonnx.ValueInfoProto
	TypeProto         = internalonnx.TypeProto
	TensorTypeProto   = internalonnx.TensorTypeProto
	TensorShapeProto  = internalonnx.TensorShapeProto
	DimensionProto    = internalonnx.DimensionProto
	TensorProto       = internalonnx.TensorProto
	OperatorSetID     = internalonnx.OperatorSetID
	StringStringEntry = internalonnx.StringStringEntry
)

// Attribute types (AttributeProto.Type).
const (
	AttributeFloat   = internalonnx.AttributeProtoFloat
	AttributeInt     = internalonnx.AttributeProtoInt
	AttributeString  = internalonnx.AttributeProtoString
	AttributeFloats  = internalonnx.AttributeProtoFloats
	AttributeInts    = internalonnx.AttributeProtoInts
	AttributeStrings = internalonnx.AttributeProtoStrings
)

// ElemTypeOf maps a tensor type tag such as "float32" to its ONNX element
// type.
func ElemTypeOf(name string) (int32, error) {
	return internalonnx.ElemTypeOf(name)
}

// ElemTypeName is the inverse of ElemTypeOf.
func ElemTypeName(elemType int32) (string, error) {
	dt, err := internalonnx.DataTypeOf(elemType)
	if err != nil {
		return "", err
	}
	return dt.String(), nil
}
