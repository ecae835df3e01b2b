package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

var elemTypes = map[tensor.DataType]int32{
	tensor.Int8:    TensorProtoInt8,
	tensor.Uint8:   TensorProtoUint8,
	tensor.Bool:    TensorProtoBool,
	tensor.Int16:   TensorProtoInt16,
	tensor.Uint16:  TensorProtoUint16,
	tensor.Int32:   TensorProtoInt32,
	tensor.Uint32:  TensorProtoUint32,
	tensor.Float16: TensorProtoFloat16,
	tensor.Float32: TensorProtoFloat,
	tensor.Float64: TensorProtoDouble,
	tensor.String:  TensorProtoString,
	tensor.Int64:   TensorProtoInt64,
	tensor.Uint64:  TensorProtoUint64,
}

// ElemType returns the TensorProto data type for a tensor data type.
func ElemType(dt tensor.DataType) (int32, error) {
	if e, ok := elemTypes[dt]; ok {
		return e, nil
	}
	return TensorProtoUndefined, errors.Wrapf(tensor.ErrUnsupportedDataType, "%s", dt)
}

// ElemTypeOf maps a tensor type tag such as "float32" to its TensorProto
// data type.
func ElemTypeOf(name string) (int32, error) {
	dt, err := tensor.ParseDataType(name)
	if err != nil {
		return TensorProtoUndefined, err
	}
	return ElemType(dt)
}

// DataTypeOf is the inverse of ElemType.
func DataTypeOf(elemType int32) (tensor.DataType, error) {
	for dt, e := range elemTypes {
		if e == elemType {
			return dt, nil
		}
	}
	return tensor.Invalid, errors.Wrapf(tensor.ErrUnsupportedDataType, "ONNX data type %d", elemType)
}

var attributeTypeNames = map[int32]string{
	AttributeProtoUndefined: "undefined",
	AttributeProtoFloat:     "float",
	AttributeProtoInt:       "int",
	AttributeProtoString:    "string",
	AttributeProtoTensor:    "tensor",
	AttributeProtoGraph:     "graph",
	AttributeProtoFloats:    "floats",
	AttributeProtoInts:      "ints",
	AttributeProtoStrings:   "strings",
	AttributeProtoTensors:   "tensors",
	AttributeProtoGraphs:    "graphs",
}

// AttributeTypeName returns the lower-case name of an attribute type, as
// used in test files.
func AttributeTypeName(t int32) string {
	if n, ok := attributeTypeNames[t]; ok {
		return n
	}
	return "unknown"
}
