package onnx

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ModelInfo contains basic information about an ONNX model without running it.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	OpsetDomains    []string
	ProducerName    string
	ProducerVersion string
	GraphName       string
	Inputs          []ValueSummary
	Outputs         []ValueSummary
	Operators       []string
	WeightCount     int
}

// ValueSummary describes a graph input or output.
type ValueSummary struct {
	Name string
	// Type is the tensor type tag ("float32", ...) or "unknown".
	Type string
	// Shape is nil when the rank is unknown. Symbolic dims are kept by name.
	Shape []string
}

// String formats the value as name:type[d0,d1,...].
func (v ValueSummary) String() string {
	if v.Shape == nil {
		return fmt.Sprintf("%s:%s", v.Name, v.Type)
	}
	return fmt.Sprintf("%s:%s[%s]", v.Name, v.Type, strings.Join(v.Shape, ","))
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Describe(proto)
}

// Describe summarizes a parsed model.
func Describe(proto *ModelProto) (*ModelInfo, error) {
	if proto == nil {
		return nil, errors.New("nil model")
	}
	info := &ModelInfo{
		IRVersion:       proto.IRVersion,
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
	}

	for _, opset := range proto.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			info.OpsetVersion = opset.Version
			continue
		}
		info.OpsetDomains = append(info.OpsetDomains, fmt.Sprintf("%s:%d", opset.Domain, opset.Version))
	}

	if proto.Graph == nil {
		return info, nil
	}
	info.GraphName = proto.Graph.Name

	// Inputs backed by an initializer are weights, not feeds.
	initNames := make(map[string]bool)
	for i := range proto.Graph.Initializers {
		initNames[proto.Graph.Initializers[i].Name] = true
	}
	for i := range proto.Graph.Inputs {
		if !initNames[proto.Graph.Inputs[i].Name] {
			info.Inputs = append(info.Inputs, summarize(&proto.Graph.Inputs[i]))
		}
	}
	for i := range proto.Graph.Outputs {
		info.Outputs = append(info.Outputs, summarize(&proto.Graph.Outputs[i]))
	}
	for i := range proto.Graph.Nodes {
		info.Operators = append(info.Operators, proto.Graph.Nodes[i].OpType)
	}
	info.WeightCount = len(proto.Graph.Initializers)
	return info, nil
}

func summarize(vi *ValueInfoProto) ValueSummary {
	s := ValueSummary{Name: vi.Name, Type: "unknown"}
	if vi.Type == nil || vi.Type.TensorType == nil {
		return s
	}
	if dt, err := DataTypeOf(vi.Type.TensorType.ElemType); err == nil {
		s.Type = dt.String()
	}
	if shape := vi.Type.TensorType.Shape; shape != nil {
		s.Shape = make([]string, len(shape.Dims))
		for i, d := range shape.Dims {
			if d.IsSymbolic() {
				s.Shape[i] = d.DimParam
			} else {
				s.Shape[i] = fmt.Sprint(d.DimValue)
			}
		}
	}
	return s
}
