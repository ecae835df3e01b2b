package builder

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/onnx"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// inputShapes resolves the shape of each graph input. A nil entry declares
// no shape.
func inputShapes(t *testcase.Test, inputCount int) ([]*onnx.TensorShapeProto, error) {
	defs := t.InputShapeDefinitions
	if defs == nil {
		defs = &testcase.ShapeDefinitions{Mode: testcase.ShapeNone}
	}

	switch defs.Mode {
	case testcase.ShapeNone:
		return make([]*onnx.TensorShapeProto, inputCount), nil
	case testcase.ShapeRankOnly:
		return rankOnlyShapes(t, defs.Mode)
	case testcase.ShapeStatic:
		return staticShapes(t, defs.Mode)
	case testcase.ShapeExplicit:
		if len(defs.Inputs) != inputCount {
			return nil, errors.Wrapf(ErrShapeDefinitionCount, "got %d definitions for %d inputs", len(defs.Inputs), inputCount)
		}
		shapes := make([]*onnx.TensorShapeProto, inputCount)
		for i, dims := range defs.Inputs {
			if dims == nil {
				continue
			}
			shape := &onnx.TensorShapeProto{Dims: make([]onnx.DimensionProto, len(dims))}
			for j, d := range dims {
				shape.Dims[j] = onnx.DimensionProto{DimValue: d.Value, DimParam: d.Param}
			}
			shapes[i] = shape
		}
		return shapes, nil
	default:
		return nil, errors.Errorf("unknown input shape definition mode %d", defs.Mode)
	}
}

// requireInputData checks that every input of every case carries data and
// dims, which the rankOnly and static modes derive shapes from.
func requireInputData(t *testcase.Test, mode testcase.ShapeMode) error {
	for c := range t.Cases {
		for i := range t.Cases[c].Inputs {
			in := &t.Cases[c].Inputs[i]
			if !in.HasData() || !in.HasDims() {
				return errors.Wrapf(ErrMissingData, "input %d of case %q when inputShapeDefinitions is %q",
					i, t.Cases[c].Name, mode)
			}
		}
	}
	return nil
}

func rankOnlyShapes(t *testcase.Test, mode testcase.ShapeMode) ([]*onnx.TensorShapeProto, error) {
	if err := requireInputData(t, mode); err != nil {
		return nil, err
	}
	first := t.Cases[0].Inputs
	for _, c := range t.Cases[1:] {
		for i, in := range c.Inputs {
			if len(in.Dims) != len(first[i].Dims) {
				return nil, errors.Wrapf(ErrRankMismatch, "input %d has rank %d in case %q and %d in case %q",
					i, len(first[i].Dims), t.Cases[0].Name, len(in.Dims), c.Name)
			}
		}
	}

	shapes := make([]*onnx.TensorShapeProto, len(first))
	for i, in := range first {
		shape := &onnx.TensorShapeProto{Dims: make([]onnx.DimensionProto, len(in.Dims))}
		for j := range in.Dims {
			shape.Dims[j] = onnx.DimensionProto{DimParam: fmt.Sprintf("_input_%d_d%d", i, j)}
		}
		shapes[i] = shape
	}
	return shapes, nil
}

func staticShapes(t *testcase.Test, mode testcase.ShapeMode) ([]*onnx.TensorShapeProto, error) {
	if err := requireInputData(t, mode); err != nil {
		return nil, err
	}
	first := t.Cases[0].Inputs
	for _, c := range t.Cases[1:] {
		for i, in := range c.Inputs {
			if !slices.Equal(in.Dims, first[i].Dims) {
				return nil, errors.Wrapf(ErrShapeMismatch, "input %d has shape %v in case %q and %v in case %q",
					i, first[i].Dims, t.Cases[0].Name, in.Dims, c.Name)
			}
		}
	}

	shapes := make([]*onnx.TensorShapeProto, len(first))
	for i, in := range first {
		shape := &onnx.TensorShapeProto{Dims: make([]onnx.DimensionProto, len(in.Dims))}
		for j, d := range in.Dims {
			shape.Dims[j] = onnx.DimensionProto{DimValue: d}
		}
		shapes[i] = shape
	}
	return shapes, nil
}
