// Package tensor provides the engine-neutral tensor used to carry test-case
// data between descriptors, engines and result checks.
package tensor

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// ErrUnsupportedDataType is returned for tensor type tags outside DataType.
var ErrUnsupportedDataType = errors.New("unsupported data type")

// DType is a constraint for the Go element types a Tensor can hold.
type DType interface {
	int8 | uint8 | bool | int16 | uint16 | int32 | uint32 |
		float32 | float64 | string | int64 | uint64 | float16.Float16
}

// DataType represents the element type of a tensor.
type DataType int

// Supported data types, named after the tags used in test files.
const (
	Invalid DataType = iota
	Int8
	Uint8
	Bool
	Int16
	Uint16
	Int32
	Uint32
	Float16
	Float32
	Float64
	String
	Int64
	Uint64
)

var dataTypeNames = map[DataType]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Bool:    "bool",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Float16: "float16",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
	Int64:   "int64",
	Uint64:  "uint64",
}

// ParseDataType returns the DataType for a tensor type tag such as "float32".
func ParseDataType(name string) (DataType, error) {
	for dt, n := range dataTypeNames {
		if n == name {
			return dt, nil
		}
	}
	return Invalid, errors.Wrapf(ErrUnsupportedDataType, "%q", name)
}

// String returns the type tag of the data type.
func (dt DataType) String() string {
	if n, ok := dataTypeNames[dt]; ok {
		return n
	}
	return "invalid"
}

// Size returns the byte size of one element, or 0 for strings.
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16, Float16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether dt is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	if _, ok := dataTypeNames[dt]; !ok {
		return nil, errors.Wrapf(ErrUnsupportedDataType, "%d", int(dt))
	}
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// dataTypeOf infers the DataType of a typed slice.
func dataTypeOf(data any) DataType {
	switch data.(type) {
	case []int8:
		return Int8
	case []uint8:
		return Uint8
	case []bool:
		return Bool
	case []int16:
		return Int16
	case []uint16:
		return Uint16
	case []int32:
		return Int32
	case []uint32:
		return Uint32
	case []float16.Float16:
		return Float16
	case []float32:
		return Float32
	case []float64:
		return Float64
	case []string:
		return String
	case []int64:
		return Int64
	case []uint64:
		return Uint64
	default:
		return Invalid
	}
}
