package born

import (
	borntensor "github.com/born-ml/born/tensor"
	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/tensor"
)

var bornTypes = map[tensor.DataType]borntensor.DataType{
	tensor.Float32: borntensor.Float32,
	tensor.Float64: borntensor.Float64,
	tensor.Int32:   borntensor.Int32,
	tensor.Int64:   borntensor.Int64,
	tensor.Uint8:   borntensor.Uint8,
	tensor.Bool:    borntensor.Bool,
}

// toRaw copies a tensor into a born CPU tensor.
func toRaw(t *tensor.Tensor) (*borntensor.RawTensor, error) {
	dt, ok := bornTypes[t.DType]
	if !ok {
		return nil, errors.Wrapf(tensor.ErrUnsupportedDataType, "born: %s tensors", t.DType)
	}
	shape := make(borntensor.Shape, len(t.Dims))
	for i, d := range t.Dims {
		if d == 0 {
			return nil, errors.Wrapf(engine.ErrUnsupportedShape, "born: zero-sized tensor %v", t.Dims)
		}
		shape[i] = int(d)
	}
	raw, err := borntensor.NewRaw(shape, dt, borntensor.CPU)
	if err != nil {
		return nil, errors.Wrapf(err, "born: allocating %s", t)
	}

	switch data := t.Data.(type) {
	case []float32:
		copy(raw.AsFloat32(), data)
	case []float64:
		copy(raw.AsFloat64(), data)
	case []int32:
		copy(raw.AsInt32(), data)
	case []int64:
		copy(raw.AsInt64(), data)
	case []uint8:
		copy(raw.AsUint8(), data)
	case []bool:
		copy(raw.AsBool(), data)
	}
	return raw, nil
}

// fromRaw copies a born tensor.
func fromRaw(raw *borntensor.RawTensor) (*tensor.Tensor, error) {
	shape := raw.Shape()
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}
	n := raw.NumElements()

	switch raw.DType() {
	case borntensor.Float32:
		return tensor.New(tensor.Float32, dims, copyView(n, raw.AsFloat32))
	case borntensor.Float64:
		return tensor.New(tensor.Float64, dims, copyView(n, raw.AsFloat64))
	case borntensor.Int32:
		return tensor.New(tensor.Int32, dims, copyView(n, raw.AsInt32))
	case borntensor.Int64:
		return tensor.New(tensor.Int64, dims, copyView(n, raw.AsInt64))
	case borntensor.Uint8:
		return tensor.New(tensor.Uint8, dims, copyView(n, raw.AsUint8))
	case borntensor.Bool:
		return tensor.New(tensor.Bool, dims, copyView(n, raw.AsBool))
	default:
		return nil, errors.Wrapf(tensor.ErrUnsupportedDataType, "born: %s output", raw.DType())
	}
}

func copyView[T any](n int, view func() []T) []T {
	out := make([]T, n)
	if n > 0 {
		copy(out, view())
	}
	return out
}
