package ort

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"
	onnxruntime "github.com/yalue/onnxruntime_go"
	"github.com/x448/float16"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/onnx"
	"github.com/born-ml/onnx-optest/internal/tensor"
)

// numeric is the element types both packages hold natively.
type numeric interface {
	onnxruntime.TensorData
	tensor.DType
}

// toValue converts a tensor to a runtime value. Bool and float16 tensors use
// custom-data tensors; strings are not supported.
func toValue(t *tensor.Tensor) (onnxruntime.Value, error) {
	if err := checkLayout(t.DType, t.Dims); err != nil {
		return nil, err
	}
	shape := onnxruntime.NewShape(t.Dims...)
	switch data := t.Data.(type) {
	case []float32:
		return newNumeric(shape, data)
	case []float64:
		return newNumeric(shape, data)
	case []int8:
		return newNumeric(shape, data)
	case []uint8:
		return newNumeric(shape, data)
	case []int16:
		return newNumeric(shape, data)
	case []uint16:
		return newNumeric(shape, data)
	case []int32:
		return newNumeric(shape, data)
	case []uint32:
		return newNumeric(shape, data)
	case []int64:
		return newNumeric(shape, data)
	case []uint64:
		return newNumeric(shape, data)
	case []bool:
		raw := make([]byte, len(data))
		for i, b := range data {
			if b {
				raw[i] = 1
			}
		}
		return newCustom(shape, raw, onnxruntime.TensorElementDataTypeBool)
	case []float16.Float16:
		raw := make([]byte, 2*len(data))
		for i, h := range data {
			binary.LittleEndian.PutUint16(raw[2*i:], h.Bits())
		}
		return newCustom(shape, raw, onnxruntime.TensorElementDataTypeFloat16)
	default:
		return nil, errors.Wrapf(tensor.ErrUnsupportedDataType, "ort: %s tensors", t.DType)
	}
}

func newNumeric[T numeric](shape onnxruntime.Shape, data []T) (onnxruntime.Value, error) {
	if len(shape) == 0 {
		return onnxruntime.NewScalar(data[0])
	}
	return onnxruntime.NewTensor(shape, data)
}

func newCustom(shape onnxruntime.Shape, raw []byte, dt onnxruntime.TensorElementDataType) (onnxruntime.Value, error) {
	return onnxruntime.NewCustomDataTensor(shape, raw, dt)
}

// checkLayout rejects tensors the runtime binding cannot hold: zero-sized
// dimensions, and 0-d tensors of types stored as custom data.
func checkLayout(dt tensor.DataType, dims []int64) error {
	for _, d := range dims {
		if d <= 0 {
			return errors.Wrapf(engine.ErrUnsupportedShape, "ort: zero-sized tensor %v", dims)
		}
	}
	switch dt {
	case tensor.String:
		return errors.Wrapf(tensor.ErrUnsupportedDataType, "ort: %s tensors", dt)
	case tensor.Bool, tensor.Float16:
		if len(dims) == 0 {
			return errors.Wrapf(tensor.ErrUnsupportedDataType, "ort: 0-d %s tensors", dt)
		}
	}
	return nil
}

// newOutput allocates the value an output is written to, or returns nil to
// let the runtime allocate it. Scalars and custom-data types are always
// allocated here: the runtime cannot describe a 0-d result and copies only
// one byte per element of custom data.
func newOutput(f engine.Fetch) (onnxruntime.Value, error) {
	if err := checkLayout(f.DType, f.Dims); err != nil {
		return nil, err
	}
	shape := onnxruntime.NewShape(f.Dims...)
	switch f.DType {
	case tensor.Bool:
		return newCustom(shape, make([]byte, shape.FlattenedSize()), onnxruntime.TensorElementDataTypeBool)
	case tensor.Float16:
		return newCustom(shape, make([]byte, 2*shape.FlattenedSize()), onnxruntime.TensorElementDataTypeFloat16)
	}
	if len(shape) > 0 {
		// A runtime-allocated tensor keeps the shape the model produced, so
		// a wrong shape is reported by the result check.
		return nil, nil
	}

	switch f.DType {
	case tensor.Float32:
		return onnxruntime.NewEmptyScalar[float32]()
	case tensor.Float64:
		return onnxruntime.NewEmptyScalar[float64]()
	case tensor.Int8:
		return onnxruntime.NewEmptyScalar[int8]()
	case tensor.Uint8:
		return onnxruntime.NewEmptyScalar[uint8]()
	case tensor.Int16:
		return onnxruntime.NewEmptyScalar[int16]()
	case tensor.Uint16:
		return onnxruntime.NewEmptyScalar[uint16]()
	case tensor.Int32:
		return onnxruntime.NewEmptyScalar[int32]()
	case tensor.Uint32:
		return onnxruntime.NewEmptyScalar[uint32]()
	case tensor.Int64:
		return onnxruntime.NewEmptyScalar[int64]()
	case tensor.Uint64:
		return onnxruntime.NewEmptyScalar[uint64]()
	default:
		return nil, errors.Wrapf(tensor.ErrUnsupportedDataType, "ort: %s outputs", f.DType)
	}
}

// fromValue copies a runtime value into a tensor. elemType is the declared
// ONNX type of the output, used to decode custom-data tensors.
func fromValue(v onnxruntime.Value, elemType int32) (*tensor.Tensor, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.New("no value returned")
	case *onnxruntime.Tensor[float32]:
		return fromTensor(x)
	case *onnxruntime.Tensor[float64]:
		return fromTensor(x)
	case *onnxruntime.Tensor[int8]:
		return fromTensor(x)
	case *onnxruntime.Tensor[uint8]:
		return fromTensor(x)
	case *onnxruntime.Tensor[int16]:
		return fromTensor(x)
	case *onnxruntime.Tensor[uint16]:
		return fromTensor(x)
	case *onnxruntime.Tensor[int32]:
		return fromTensor(x)
	case *onnxruntime.Tensor[uint32]:
		return fromTensor(x)
	case *onnxruntime.Tensor[int64]:
		return fromTensor(x)
	case *onnxruntime.Tensor[uint64]:
		return fromTensor(x)
	case *onnxruntime.Scalar[float32]:
		return fromScalar(x)
	case *onnxruntime.Scalar[float64]:
		return fromScalar(x)
	case *onnxruntime.Scalar[int8]:
		return fromScalar(x)
	case *onnxruntime.Scalar[uint8]:
		return fromScalar(x)
	case *onnxruntime.Scalar[int16]:
		return fromScalar(x)
	case *onnxruntime.Scalar[uint16]:
		return fromScalar(x)
	case *onnxruntime.Scalar[int32]:
		return fromScalar(x)
	case *onnxruntime.Scalar[uint32]:
		return fromScalar(x)
	case *onnxruntime.Scalar[int64]:
		return fromScalar(x)
	case *onnxruntime.Scalar[uint64]:
		return fromScalar(x)
	case *onnxruntime.CustomDataTensor:
		return fromCustom(x.GetShape(), x.GetData(), elemType)
	default:
		return nil, errors.Errorf("unsupported runtime value %T", v)
	}
}

func fromTensor[T numeric](t *onnxruntime.Tensor[T]) (*tensor.Tensor, error) {
	return tensor.FromSlice(slices.Clone(t.GetData()), slices.Clone([]int64(t.GetShape()))...)
}

func fromScalar[T numeric](s *onnxruntime.Scalar[T]) (*tensor.Tensor, error) {
	return tensor.FromSlice([]T{s.GetData()})
}

func fromCustom(shape onnxruntime.Shape, raw []byte, elemType int32) (*tensor.Tensor, error) {
	dims := slices.Clone([]int64(shape))
	n := int(shape.FlattenedSize())
	switch elemType {
	case onnx.TensorProtoBool:
		if len(raw) < n {
			return nil, errors.Errorf("bool tensor shaped %v has %d bytes", dims, len(raw))
		}
		data := make([]bool, n)
		for i := range data {
			data[i] = raw[i] != 0
		}
		return tensor.New(tensor.Bool, dims, data)
	case onnx.TensorProtoFloat16:
		if len(raw) < 2*n {
			return nil, errors.Errorf("float16 tensor shaped %v has %d bytes", dims, len(raw))
		}
		data := make([]float16.Float16, n)
		for i := range data {
			data[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		return tensor.New(tensor.Float16, dims, data)
	default:
		dt, err := onnx.DataTypeOf(elemType)
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(tensor.ErrUnsupportedDataType, "ort: %s outputs", dt)
	}
}
