package builder

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/onnx"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// EncodeAttribute converts a test attribute to its ONNX form.
func EncodeAttribute(a testcase.Attribute) (onnx.AttributeProto, error) {
	p := onnx.AttributeProto{Name: a.Name}
	var err error
	switch a.Type {
	case "float":
		p.Type = onnx.AttributeProtoFloat
		p.F, err = decodeData[float32](a.Data)
	case "int":
		p.Type = onnx.AttributeProtoInt
		p.I, err = decodeData[int64](a.Data)
	case "string":
		p.Type = onnx.AttributeProtoString
		var s string
		s, err = decodeData[string](a.Data)
		p.S = []byte(s)
	case "floats":
		p.Type = onnx.AttributeProtoFloats
		p.Floats, err = decodeData[[]float32](a.Data)
	case "ints":
		p.Type = onnx.AttributeProtoInts
		p.Ints, err = decodeData[[]int64](a.Data)
	case "strings":
		p.Type = onnx.AttributeProtoStrings
		var ss []string
		ss, err = decodeData[[]string](a.Data)
		p.Strings = make([][]byte, len(ss))
		for i, s := range ss {
			p.Strings[i] = []byte(s)
		}
	default:
		return p, errors.Wrapf(ErrUnsupportedAttributeType, "attribute %q has type %q", a.Name, a.Type)
	}
	if err != nil {
		return p, errors.WithMessagef(err, "attribute %q of type %s", a.Name, a.Type)
	}
	return p, nil
}

// DecodeAttribute converts an ONNX attribute back to its test form. Data
// holds float32, int64, string, []float32, []int64 or []string.
func DecodeAttribute(p onnx.AttributeProto) (testcase.Attribute, error) {
	a := testcase.Attribute{Name: p.Name, Type: onnx.AttributeTypeName(p.Type)}
	switch p.Type {
	case onnx.AttributeProtoFloat:
		a.Data = p.F
	case onnx.AttributeProtoInt:
		a.Data = p.I
	case onnx.AttributeProtoString:
		a.Data = string(p.S)
	case onnx.AttributeProtoFloats:
		a.Data = p.Floats
	case onnx.AttributeProtoInts:
		a.Data = p.Ints
	case onnx.AttributeProtoStrings:
		ss := make([]string, len(p.Strings))
		for i, s := range p.Strings {
			ss[i] = string(s)
		}
		a.Data = ss
	default:
		return a, errors.Wrapf(ErrUnsupportedAttributeType, "attribute %q has type %q", p.Name, a.Type)
	}
	return a, nil
}

// decodeData converts a literal from a test file (json.Number, string,
// []any, ...) to T.
func decodeData[T any](data any) (T, error) {
	var out T
	if data == nil {
		return out, errors.New("missing data")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(data); err != nil {
		return out, errors.Wrapf(err, "can't use %v as %T", data, out)
	}
	return out, nil
}
