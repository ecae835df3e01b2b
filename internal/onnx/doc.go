// Package onnx implements the subset of the ONNX model format needed to
// build single-operator test models and to inspect models on disk.
//
// Key components:
//   - ModelProto: Top-level ONNX model structure with metadata and graph
//   - GraphProto: Computation graph with nodes, inputs and outputs
//   - NodeProto: Single operation in the graph (e.g., Conv, MatMul, Relu)
//   - AttributeProto: Typed node attribute
//   - ValueInfoProto: Input/output tensor type and shape
//
// Models are written with Marshal and read back with Parse; both work on
// the protobuf wire format directly through protowire, so no generated
// code is involved.
//
// Example usage:
//
//	data, err := onnx.Marshal(model)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	parsed, err := onnx.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Graph: %s with %d nodes\n", parsed.Graph.Name, len(parsed.Graph.Nodes))
package onnx
