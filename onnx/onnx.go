// Package onnx reads and writes ONNX models in the protobuf wire format.
//
// It covers the subset of onnx.proto needed to describe single-node test
// models: models, graphs, nodes, attributes, value infos with tensor types
// and shapes, and initializers.
//
// # Example Usage
//
//	import "github.com/born-ml/onnx-optest/onnx"
//
//	model, err := onnx.ParseFile("add.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model.ProducerName = "my-tool"
//
//	data, err := onnx.Marshal(model)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Element types map to tensor type tags as follows: int8→3, uint8→2,
// bool→9, int16→5, uint16→4, int32→6, uint32→12, float16→10, float32→1,
// float64→11, string→8, int64→7, uint64→13.
package onnx

import (
	internalonnx "github.com/born-ml/onnx-optest/internal/onnx"
)

// IRVersion is the IR version stamped on built models.
const IRVersion = internalonnx.IRVersion

// Marshal encodes a model in the protobuf wire format.
//
// Zero-valued scalar fields are omitted, except attribute values and fixed
// dimensions, which are always written. A tensor type with a non-nil shape
// without dimensions is written as a scalar.
func Marshal(model *ModelProto) ([]byte, error) {
	return internalonnx.Marshal(model)
}

// Parse decodes a model. Unknown fields are skipped; repeated scalar fields
// are accepted both packed and unpacked.
func Parse(data []byte) (*ModelProto, error) {
	return internalonnx.Parse(data)
}

// ParseFile reads and decodes a model file.
func ParseFile(path string) (*ModelProto, error) {
	return internalonnx.ParseFile(path)
}

// ModelInfo summarizes a model without running it.
type ModelInfo = internalonnx.ModelInfo

// ValueSummary describes a graph input or output.
type ValueSummary = internalonnx.ValueSummary

// GetModelInfo extracts metadata from an ONNX file.
//
// Example:
//
//	info, err := onnx.GetModelInfo("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	fmt.Printf("Inputs: %v\n", info.Inputs)
//	fmt.Printf("Operators: %v\n", info.Operators)
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// Describe summarizes a parsed model.
func Describe(model *ModelProto) (*ModelInfo, error) {
	return internalonnx.Describe(model)
}
