package runner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

func TestClose(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name     string
		actual   float64
		expected float64
		tol      Tolerance
		want     bool
	}{
		{"equal", 1, 1, Exact, true},
		{"within abs", 1.00005, 1, DefaultTolerance, true},
		{"outside abs", 1.001, 1, DefaultTolerance, false},
		{"within rel", 1000.5, 1000, Tolerance{Rel: 1e-3}, true},
		{"outside rel", 1002, 1000, Tolerance{Rel: 1e-3}, false},
		{"nan matches nan", nan, nan, Exact, true},
		{"nan vs number", nan, 1, DefaultTolerance, false},
		{"number vs nan", 1, nan, DefaultTolerance, false},
		{"inf matches inf", inf, inf, Exact, true},
		{"inf sign", -inf, inf, DefaultTolerance, false},
		{"finite vs inf", math.MaxFloat64, inf, Tolerance{Rel: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Close(tt.actual, tt.expected, tt.tol))
		})
	}
}

func TestCheck(t *testing.T) {
	f32 := mustTensor(t, []float32{1, float32(math.NaN())}, 2)
	i64 := mustTensor(t, []int64{math.MaxInt64, math.MinInt64}, 2)
	bools := mustTensor(t, []bool{true, false}, 1, 2)
	strs := mustTensor(t, []string{"a", "b"}, 2)
	half := mustTensor(t, []float16.Float16{float16.Fromfloat32(1.5)}, 1)

	expected := map[string]*tensor.Tensor{
		"output_0": f32,
		"output_1": i64,
		"output_2": bools,
		"output_3": strs,
		"output_4": half,
	}
	actual := map[string]*tensor.Tensor{
		"output_0": mustTensor(t, []float32{1.00001, float32(math.NaN())}, 2),
		"output_1": mustTensor(t, []int64{math.MaxInt64, math.MinInt64}, 2),
		"output_2": mustTensor(t, []bool{true, false}, 1, 2),
		"output_3": mustTensor(t, []string{"a", "b"}, 2),
		"output_4": mustTensor(t, []float16.Float16{float16.Fromfloat32(1.5)}, 1),
	}
	require.NoError(t, Check(actual, expected, DefaultTolerance))
}

func TestCheckMismatches(t *testing.T) {
	expected := map[string]*tensor.Tensor{"output_0": mustTensor(t, []int64{1, 2}, 2)}

	tests := []struct {
		name   string
		actual map[string]*tensor.Tensor
		msg    string
	}{
		{
			name:   "missing output",
			actual: map[string]*tensor.Tensor{},
			msg:    "got outputs []",
		},
		{
			name: "extra output",
			actual: map[string]*tensor.Tensor{
				"output_0": mustTensor(t, []int64{1, 2}, 2),
				"output_1": mustTensor(t, []int64{1, 2}, 2),
			},
			msg: "output_1",
		},
		{
			name:   "nil tensor",
			actual: map[string]*tensor.Tensor{"output_0": nil},
			msg:    "missing tensor",
		},
		{
			name:   "dtype",
			actual: map[string]*tensor.Tensor{"output_0": mustTensor(t, []int32{1, 2}, 2)},
			msg:    "got type int32, want int64",
		},
		{
			name:   "dims",
			actual: map[string]*tensor.Tensor{"output_0": mustTensor(t, []int64{1, 2}, 1, 2)},
			msg:    "got dims [1 2], want [2]",
		},
		{
			name:   "value",
			actual: map[string]*tensor.Tensor{"output_0": mustTensor(t, []int64{1, 3}, 2)},
			msg:    "element #1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actual, expected, DefaultTolerance)
			require.ErrorIs(t, err, ErrMismatch)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCheckIntegersIgnoreTolerance(t *testing.T) {
	expected := map[string]*tensor.Tensor{"output_0": mustTensor(t, []uint64{math.MaxUint64}, 1)}
	actual := map[string]*tensor.Tensor{"output_0": mustTensor(t, []uint64{math.MaxUint64 - 1}, 1)}
	assert.ErrorIs(t, Check(actual, expected, Tolerance{Abs: 10, Rel: 1}), ErrMismatch)
}
