package tensor

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func numbers(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = json.Number(v)
	}
	return out
}

// Values above 2^53 can't be represented by float64; they must come through
// unchanged.
func TestFromLiteral64BitIntegers(t *testing.T) {
	i64, err := FromLiteral(Int64, []int64{3}, numbers("9007199254740993", "-9223372036854775808", "9223372036854775807"))
	require.NoError(t, err)
	assert.Equal(t, []int64{9007199254740993, math.MinInt64, math.MaxInt64}, i64.Data)

	u64, err := FromLiteral(Uint64, []int64{2}, []any{json.Number("18446744073709551615"), "9007199254740993"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{math.MaxUint64, 9007199254740993}, u64.Data)

	_, err = FromLiteral(Uint64, nil, numbers("-1"))
	assert.Error(t, err)
	_, err = FromLiteral(Int64, nil, numbers("9223372036854775808"))
	assert.Error(t, err)
}

func TestFromLiteralIntegers(t *testing.T) {
	tests := []struct {
		name   string
		dtype  DataType
		values []any
		want   any
	}{
		{"int8", Int8, numbers("-128", "127"), []int8{-128, 127}},
		{"uint8", Uint8, numbers("0", "255"), []uint8{0, 255}},
		{"int16", Int16, numbers("-3", "3.0"), []int16{-3, 3}},
		{"uint16", Uint16, []any{1, uint16(2)}, []uint16{1, 2}},
		{"int32", Int32, []any{float64(4), json.Number("1e3")}, []int32{4, 1000}},
		{"uint32", Uint32, numbers("4294967295"), []uint32{math.MaxUint32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLiteral(tt.dtype, nil, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Data)
			assert.Equal(t, []int64{int64(len(tt.values))}, got.Dims)
		})
	}

	overflows := []struct {
		dtype  DataType
		values []any
	}{
		{Int8, numbers("128")},
		{Uint8, numbers("256")},
		{Uint16, numbers("-1")},
		{Int32, []any{2.5}},
		{Int32, []any{"abc"}},
	}
	for _, tt := range overflows {
		_, err := FromLiteral(tt.dtype, nil, tt.values)
		assert.Error(t, err, "%s %v", tt.dtype, tt.values)
	}
}

func TestFromLiteralFloats(t *testing.T) {
	f32, err := FromLiteral(Float32, []int64{2, 2}, []any{json.Number("1.5"), 2, "NaN", "-Infinity"})
	require.NoError(t, err)
	data := f32.Data.([]float32)
	assert.Equal(t, float32(1.5), data[0])
	assert.Equal(t, float32(2), data[1])
	assert.True(t, math.IsNaN(float64(data[2])))
	assert.True(t, math.IsInf(float64(data[3]), -1))

	f64, err := FromLiteral(Float64, nil, numbers("0.1"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1}, f64.Data)

	f16, err := FromLiteral(Float16, nil, numbers("0.5", "65504"))
	require.NoError(t, err)
	assert.Equal(t, []float16.Float16{float16.Fromfloat32(0.5), float16.Fromfloat32(65504)}, f16.Data)

	_, err = FromLiteral(Float32, nil, []any{true, []any{}})
	assert.Error(t, err)
}

func TestHalfFromFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want uint16
	}{
		{"just above tie", 1 + math.Ldexp(1, -11) + math.Ldexp(1, -40), 0x3c01},
		{"tie to even down", 1 + math.Ldexp(1, -11), 0x3c00},
		{"tie to even up", 1 + 3*math.Ldexp(1, -11), 0x3c02},
		{"max", 65504, 0x7bff},
		{"overflow", 65520, 0x7c00},
		{"negative", -2, 0xc000},
		{"infinity", math.Inf(1), 0x7c00},
		{"underflow", 1e-10, 0x0000},
		{"subnormal above tie", math.Ldexp(1, -25) + math.Ldexp(1, -50), 0x0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, halfFromFloat64(tt.in).Bits())
		})
	}
	assert.True(t, halfFromFloat64(math.NaN()).IsNaN())

	f16, err := FromLiteral(Float16, nil, []any{1 + math.Ldexp(1, -11) + math.Ldexp(1, -40)})
	require.NoError(t, err)
	assert.Equal(t, []float16.Float16{float16.Frombits(0x3c01)}, f16.Data)
}

func TestFromLiteralBoolAndString(t *testing.T) {
	b, err := FromLiteral(Bool, nil, []any{true, false, json.Number("1"), "false"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, b.Data)

	s, err := FromLiteral(String, []int64{2}, []any{"a", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, s.Data)

	_, err = FromLiteral(String, nil, numbers("1"))
	assert.Error(t, err)
}

func TestFromLiteralShapeMismatch(t *testing.T) {
	_, err := FromLiteral(Float32, []int64{2, 2}, numbers("1", "2", "3"))
	assert.Error(t, err)

	_, err = FromLiteral(Invalid, nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}
