// Package testcase defines single-operator test descriptors and loads them
// from JSON or YAML files.
package testcase

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

// DefaultBackend is used when a test doesn't name one.
const DefaultBackend = "cpu"

// Test describes one operator configuration and the cases to run on it.
type Test struct {
	Name       string      `json:"name"`
	Operator   string      `json:"operator"`
	Opset      *Opset      `json:"opset,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Cases      []Case      `json:"cases"`
	// InputShapeDefinitions is nil when the file doesn't set it, which
	// behaves as ShapeNone.
	InputShapeDefinitions *ShapeDefinitions `json:"inputShapeDefinitions,omitempty"`
	// Backend is the engine backend hint, e.g. "cpu" or "born-cpu".
	Backend string `json:"backend,omitempty"`
}

// String returns "name [operator]", the form used in error messages.
func (t *Test) String() string {
	return fmt.Sprintf("%s [%s]", t.Name, t.Operator)
}

// BackendOrDefault returns the backend hint, falling back to DefaultBackend.
func (t *Test) BackendOrDefault() string {
	if t.Backend == "" {
		return DefaultBackend
	}
	return t.Backend
}

// Opset is the operator set the model declares.
type Opset struct {
	Domain  string `json:"domain,omitempty"`
	Version int64  `json:"version"`
}

// Attribute is a node attribute. Type is one of float, int, string, floats,
// ints or strings; Data holds a literal of that type as decoded from the
// test file.
type Attribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Case is one set of inputs and the outputs expected from them.
type Case struct {
	Name    string       `json:"name"`
	Inputs  []TensorSpec `json:"inputs"`
	Outputs []TensorSpec `json:"outputs"`
}

// TensorSpec is a typed tensor with optional dims and data.
type TensorSpec struct {
	Type string  `json:"type"`
	Dims []int64 `json:"dims,omitempty"`
	Data []any   `json:"data,omitempty"`
}

// HasData reports whether the spec carries literal values. An explicit
// empty list counts as data.
func (s *TensorSpec) HasData() bool {
	return s.Data != nil
}

// HasDims reports whether the spec declares its dimensions. An explicit
// empty list declares a scalar.
func (s *TensorSpec) HasDims() bool {
	return s.Dims != nil
}

// DataType parses the spec's type tag.
func (s *TensorSpec) DataType() (tensor.DataType, error) {
	return tensor.ParseDataType(s.Type)
}

// Tensor converts the literal data to a tensor.
func (s *TensorSpec) Tensor() (*tensor.Tensor, error) {
	if !s.HasData() {
		return nil, errors.New("tensor has no data")
	}
	dt, err := s.DataType()
	if err != nil {
		return nil, err
	}
	return tensor.FromLiteral(dt, s.Dims, s.Data)
}
