package tensor

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// maxExactFloat is the largest integer magnitude a float64 holds exactly.
const maxExactFloat = 1 << 53

// FromLiteral converts literal values, as decoded from a test file, into a
// tensor of the given type. When dims is nil the tensor is 1-D.
//
// Literals may be json.Number, numeric strings, bool, string or any Go
// numeric value. 64-bit integers are parsed from their literal text and
// never go through float64, so values above 2^53 are preserved.
func FromLiteral(dtype DataType, dims []int64, values []any) (*Tensor, error) {
	if dims == nil {
		dims = []int64{int64(len(values))}
	}
	var (
		data any
		err  error
	)
	switch dtype {
	case Int8:
		data, err = convertLiteral(values, signedParser[int8](8))
	case Uint8:
		data, err = convertLiteral(values, unsignedParser[uint8](8))
	case Int16:
		data, err = convertLiteral(values, signedParser[int16](16))
	case Uint16:
		data, err = convertLiteral(values, unsignedParser[uint16](16))
	case Int32:
		data, err = convertLiteral(values, signedParser[int32](32))
	case Uint32:
		data, err = convertLiteral(values, unsignedParser[uint32](32))
	case Int64:
		data, err = convertLiteral(values, signedParser[int64](64))
	case Uint64:
		data, err = convertLiteral(values, unsignedParser[uint64](64))
	case Float16:
		data, err = convertLiteral(values, func(v any) (float16.Float16, error) {
			f, err := parseFloat(v, 64)
			return halfFromFloat64(f), err
		})
	case Float32:
		data, err = convertLiteral(values, func(v any) (float32, error) {
			f, err := parseFloat(v, 32)
			return float32(f), err
		})
	case Float64:
		data, err = convertLiteral(values, func(v any) (float64, error) {
			return parseFloat(v, 64)
		})
	case Bool:
		data, err = convertLiteral(values, parseBool)
	case String:
		data, err = convertLiteral(values, func(v any) (string, error) {
			s, ok := v.(string)
			if !ok {
				return "", errors.Errorf("%v (%T) is not a string", v, v)
			}
			return s, nil
		})
	default:
		return nil, errors.Wrapf(ErrUnsupportedDataType, "%s", dtype)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "while converting %s literal", dtype)
	}
	return New(dtype, dims, data)
}

// halfFromFloat64 rounds f to the nearest half precision value, ties to
// even. The float32 step rounds to odd so that the final rounding never sees
// a tie the float64 value doesn't have.
func halfFromFloat64(f float64) float16.Float16 {
	f32 := float32(f)
	if d := float64(f32); d != f && !math.IsNaN(f) && !math.IsInf(d, 0) {
		if bits := math.Float32bits(f32); bits&1 == 0 {
			if math.Abs(d) > math.Abs(f) {
				bits--
			} else {
				bits++
			}
			f32 = math.Float32frombits(bits)
		}
	}
	return float16.Fromfloat32(f32)
}

func convertLiteral[T any](values []any, parse func(any) (T, error)) ([]T, error) {
	out := make([]T, len(values))
	for i, v := range values {
		x, err := parse(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "element #%d", i)
		}
		out[i] = x
	}
	return out, nil
}

// literalText returns the textual form of an integer literal, if it has one.
func literalText(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return string(x), true
	case string:
		return x, true
	case int:
		return strconv.FormatInt(int64(x), 10), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	default:
		return "", false
	}
}

// integralFloat accepts literals like 3.0 or 1e3 for integer tensors, as
// long as they are whole numbers in the exactly representable range.
func integralFloat(v any) (float64, error) {
	f, err := parseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, errors.Errorf("%v is not an exact integer", v)
	}
	return f, nil
}

func signedParser[T ~int8 | ~int16 | ~int32 | ~int64](bits int) func(any) (T, error) {
	return func(v any) (T, error) {
		if text, ok := literalText(v); ok {
			if i, err := strconv.ParseInt(text, 10, bits); err == nil {
				return T(i), nil
			} else if errors.Is(err, strconv.ErrRange) {
				return 0, errors.Errorf("%s overflows int%d", text, bits)
			}
		}
		f, err := integralFloat(v)
		if err != nil {
			return 0, err
		}
		if f < -math.Ldexp(1, bits-1) || f >= math.Ldexp(1, bits-1) {
			return 0, errors.Errorf("%v overflows int%d", v, bits)
		}
		return T(f), nil
	}
}

func unsignedParser[T ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(any) (T, error) {
	return func(v any) (T, error) {
		if text, ok := literalText(v); ok {
			if u, err := strconv.ParseUint(text, 10, bits); err == nil {
				return T(u), nil
			} else if errors.Is(err, strconv.ErrRange) {
				return 0, errors.Errorf("%s overflows uint%d", text, bits)
			}
		}
		f, err := integralFloat(v)
		if err != nil {
			return 0, err
		}
		if f < 0 || f >= math.Ldexp(1, bits) {
			return 0, errors.Errorf("%v overflows uint%d", v, bits)
		}
		return T(f), nil
	}
}

func parseFloat(v any, bits int) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		return strconv.ParseFloat(string(x), bits)
	case string:
		// Accepts "NaN", "Inf" and "-Infinity", which JSON numbers can't express.
		return strconv.ParseFloat(x, bits)
	}
	if text, ok := literalText(v); ok {
		return strconv.ParseFloat(text, bits)
	}
	return 0, errors.Errorf("%v (%T) is not a number", v, v)
}

func parseBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	}
	f, err := parseFloat(v, 64)
	if err != nil {
		return false, errors.Errorf("%v (%T) is not a bool", v, v)
	}
	return f != 0, nil
}
