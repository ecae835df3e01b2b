// Package builder turns a single-operator test descriptor into an ONNX model
// holding one node, and loads it into an engine session.
//
// The model graph has inputs input_0..input_{n-1} and outputs
// output_0..output_{m-1}, where n and m are the input and output counts of
// the test's cases. Input shapes are declared according to the test's
// inputShapeDefinitions.
package builder

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/onnx"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// Producer is stamped on built models unless overridden with WithProducer.
const Producer = "onnx-optest"

// Option configures BuildModel.
type Option func(*options)

type options struct {
	irVersion       int64
	producerName    string
	producerVersion string
}

// WithIRVersion sets the model IR version. The default is onnx.IRVersion.
func WithIRVersion(v int64) Option {
	return func(o *options) {
		o.irVersion = v
	}
}

// WithProducer sets the producer name and version of the model.
func WithProducer(name, version string) Option {
	return func(o *options) {
		o.producerName = name
		o.producerVersion = version
	}
}

// InputName returns the graph name of input i.
func InputName(i int) string {
	return fmt.Sprintf("input_%d", i)
}

// OutputName returns the graph name of output i.
func OutputName(i int) string {
	return fmt.Sprintf("output_%d", i)
}

// BuildModel builds the single-node model for a test. Errors name the test
// and its operator and wrap one of the package sentinels.
func BuildModel(t *testcase.Test, opts ...Option) (*onnx.ModelProto, error) {
	o := &options{irVersion: onnx.IRVersion, producerName: Producer}
	for _, opt := range opts {
		opt(o)
	}

	model, err := buildModel(t, o)
	if err != nil {
		return nil, errors.WithMessagef(err, "test %s", t)
	}
	return model, nil
}

func buildModel(t *testcase.Test, o *options) (*onnx.ModelProto, error) {
	var attributes []onnx.AttributeProto
	for _, a := range t.Attributes {
		p, err := EncodeAttribute(a)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, p)
	}

	if len(t.Cases) == 0 {
		return nil, ErrNoCases
	}
	first := t.Cases[0]
	inputCount, outputCount := len(first.Inputs), len(first.Outputs)
	for _, c := range t.Cases[1:] {
		if len(c.Inputs) != inputCount || len(c.Outputs) != outputCount {
			return nil, errors.Wrapf(ErrCaseCountMismatch, "case %q has %d inputs and %d outputs, case %q has %d and %d",
				first.Name, inputCount, outputCount, c.Name, len(c.Inputs), len(c.Outputs))
		}
	}

	var opset onnx.OperatorSetID
	if t.Opset != nil {
		opset = onnx.OperatorSetID{Domain: t.Opset.Domain, Version: t.Opset.Version}
	}

	node := onnx.NodeProto{
		Name:       t.Operator,
		OpType:     t.Operator,
		Domain:     opset.Domain,
		Inputs:     make([]string, inputCount),
		Outputs:    make([]string, outputCount),
		Attributes: attributes,
	}
	for i := range node.Inputs {
		node.Inputs[i] = InputName(i)
	}
	for i := range node.Outputs {
		node.Outputs[i] = OutputName(i)
	}

	shapes, err := inputShapes(t, inputCount)
	if err != nil {
		return nil, err
	}

	graph := &onnx.GraphProto{
		Name:    t.Name,
		Nodes:   []onnx.NodeProto{node},
		Inputs:  make([]onnx.ValueInfoProto, inputCount),
		Outputs: make([]onnx.ValueInfoProto, outputCount),
	}
	for i, in := range first.Inputs {
		elem, err := onnx.ElemTypeOf(in.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "input %d", i)
		}
		graph.Inputs[i] = onnx.ValueInfoProto{
			Name: InputName(i),
			Type: &onnx.TypeProto{TensorType: &onnx.TensorTypeProto{ElemType: elem, Shape: shapes[i]}},
		}
	}
	for i, out := range first.Outputs {
		elem, err := onnx.ElemTypeOf(out.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "output %d", i)
		}
		graph.Outputs[i] = onnx.ValueInfoProto{
			Name: OutputName(i),
			Type: &onnx.TypeProto{TensorType: &onnx.TensorTypeProto{ElemType: elem}},
		}
	}

	return &onnx.ModelProto{
		IRVersion:       o.irVersion,
		OpsetImport:     []onnx.OperatorSetID{opset},
		ProducerName:    o.producerName,
		ProducerVersion: o.producerVersion,
		Graph:           graph,
	}, nil
}

// Marshal builds the model for a test and encodes it.
func Marshal(t *testcase.Test, opts ...Option) ([]byte, error) {
	model, err := BuildModel(t, opts...)
	if err != nil {
		return nil, err
	}
	data, err := onnx.Marshal(model)
	if err != nil {
		return nil, errors.WithMessagef(err, "test %s", t)
	}
	return data, nil
}
