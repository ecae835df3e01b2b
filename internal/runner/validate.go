package runner

import (
	"math"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

// ErrMismatch is wrapped by every Check failure.
var ErrMismatch = errors.New("result mismatch")

// Tolerance defines the accepted numeric drift of floating point outputs: a
// value passes when |actual-expected| <= Abs + Rel*|expected|.
type Tolerance struct {
	Abs float64
	Rel float64
}

// DefaultTolerance is used when none is configured.
var DefaultTolerance = Tolerance{Abs: 1e-4, Rel: 1e-5}

// Exact accepts no drift.
var Exact = Tolerance{}

// Check compares results against expected outputs. The result names must be
// exactly the expected names; each tensor must match in type, dims and
// values. Floats compare within tol with NaN matching NaN; every other type
// compares exactly.
func Check(actual, expected map[string]*tensor.Tensor, tol Tolerance) error {
	got, want := sortedKeys(actual), sortedKeys(expected)
	if !slices.Equal(got, want) {
		return errors.Wrapf(ErrMismatch, "got outputs %v, want %v", got, want)
	}
	for _, name := range want {
		if err := checkTensor(actual[name], expected[name], tol); err != nil {
			return errors.WithMessagef(err, "output %s", name)
		}
	}
	return nil
}

func checkTensor(actual, expected *tensor.Tensor, tol Tolerance) error {
	if actual == nil {
		return errors.Wrap(ErrMismatch, "missing tensor")
	}
	if actual.DType != expected.DType {
		return errors.Wrapf(ErrMismatch, "got type %s, want %s", actual.DType, expected.DType)
	}
	if !slices.Equal(actual.Dims, expected.Dims) {
		return errors.Wrapf(ErrMismatch, "got dims %v, want %v", actual.Dims, expected.Dims)
	}
	if actual.Len() != expected.Len() {
		return errors.Wrapf(ErrMismatch, "got %d values, want %d", actual.Len(), expected.Len())
	}

	switch want := expected.Data.(type) {
	case []float32:
		return compareFloats(actual.Data.([]float32), want, tol)
	case []float64:
		return compareFloats(actual.Data.([]float64), want, tol)
	case []float16.Float16:
		got := actual.Data.([]float16.Float16)
		g, w := make([]float32, len(got)), make([]float32, len(want))
		for i := range got {
			g[i], w[i] = got[i].Float32(), want[i].Float32()
		}
		return compareFloats(g, w, tol)
	case []int8:
		return compareExact(actual.Data.([]int8), want)
	case []uint8:
		return compareExact(actual.Data.([]uint8), want)
	case []int16:
		return compareExact(actual.Data.([]int16), want)
	case []uint16:
		return compareExact(actual.Data.([]uint16), want)
	case []int32:
		return compareExact(actual.Data.([]int32), want)
	case []uint32:
		return compareExact(actual.Data.([]uint32), want)
	case []int64:
		return compareExact(actual.Data.([]int64), want)
	case []uint64:
		return compareExact(actual.Data.([]uint64), want)
	case []bool:
		return compareExact(actual.Data.([]bool), want)
	case []string:
		return compareExact(actual.Data.([]string), want)
	default:
		return errors.Wrapf(tensor.ErrUnsupportedDataType, "%T", expected.Data)
	}
}

// Close reports whether actual is within tol of expected.
func Close(actual, expected float64, tol Tolerance) bool {
	switch {
	case math.IsNaN(expected):
		return math.IsNaN(actual)
	case actual == expected:
		return true
	case math.IsInf(expected, 0) || math.IsNaN(actual):
		return false
	}
	return math.Abs(actual-expected) <= tol.Abs+tol.Rel*math.Abs(expected)
}

func compareFloats[T float32 | float64](actual, expected []T, tol Tolerance) error {
	for i := range expected {
		if !Close(float64(actual[i]), float64(expected[i]), tol) {
			return errors.Wrapf(ErrMismatch, "element #%d: got %v, want %v (tolerance %+v)", i, actual[i], expected[i], tol)
		}
	}
	return nil
}

func compareExact[T comparable](actual, expected []T) error {
	for i := range expected {
		if actual[i] != expected[i] {
			return errors.Wrapf(ErrMismatch, "element #%d: got %v, want %v", i, actual[i], expected[i])
		}
	}
	return nil
}

func sortedKeys(m map[string]*tensor.Tensor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
