package tensor

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Tensor is a typed, shaped array.
//
// Data always holds a flat, row-major Go slice whose element type matches
// DType: []float32 for Float32, []int64 for Int64, []float16.Float16 for
// Float16, and so on.
type Tensor struct {
	DType DataType
	Dims  []int64
	Data  any
}

// New creates a tensor after checking that data matches dtype and that its
// length matches the number of elements implied by dims.
func New(dtype DataType, dims []int64, data any) (*Tensor, error) {
	if got := dataTypeOf(data); got != dtype {
		return nil, errors.Errorf("tensor of type %s can't hold %T", dtype, data)
	}
	for axis, dim := range dims {
		if dim < 0 {
			return nil, errors.Errorf("negative dimension %d at axis %d", dim, axis)
		}
	}
	t := &Tensor{DType: dtype, Dims: dims, Data: data}
	if n := reflect.ValueOf(data).Len(); n != t.NumElements() {
		return nil, errors.Errorf("tensor shaped %v has %d elements, but %d values were given",
			dims, t.NumElements(), n)
	}
	return t, nil
}

// FromSlice creates a tensor from a typed slice, inferring the DataType.
func FromSlice[T DType](data []T, dims ...int64) (*Tensor, error) {
	dt := dataTypeOf(data)
	if dt == Invalid {
		return nil, errors.Wrapf(ErrUnsupportedDataType, "%T", data)
	}
	return New(dt, dims, data)
}

// Values returns the tensor data as []T, or false when T doesn't match.
func Values[T DType](t *Tensor) ([]T, bool) {
	v, ok := t.Data.([]T)
	return v, ok
}

// NumElements returns the product of the dimensions; 1 for scalars.
func (t *Tensor) NumElements() int {
	n := 1
	for _, d := range t.Dims {
		n *= int(d)
	}
	return n
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.Dims)
}

// Len returns the number of values held in Data.
func (t *Tensor) Len() int {
	if t.Data == nil {
		return 0
	}
	return reflect.ValueOf(t.Data).Len()
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("(%s)%v", t.DType, t.Dims)
}
