package onnx

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes. Unknown fields are skipped.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := readModel(data, model); err != nil {
		return nil, errors.WithMessage(err, "failed to parse model")
	}
	return model, nil
}

// fieldReader walks the fields of one protobuf message.
type fieldReader struct {
	buf []byte
	num protowire.Number
	typ protowire.Type
}

// next advances to the next field tag; it returns false at the end of the
// message.
func (r *fieldReader) next() (bool, error) {
	if len(r.buf) == 0 {
		return false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return false, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	r.num, r.typ = num, typ
	return true, nil
}

func (r *fieldReader) expect(typ protowire.Type) error {
	if r.typ != typ {
		return errors.Errorf("field %d: wire type %d, expected %d", r.num, r.typ, typ)
	}
	return nil
}

func (r *fieldReader) bytes() ([]byte, error) {
	if err := r.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) string() (string, error) {
	b, err := r.bytes()
	return string(b), err
}

func (r *fieldReader) varint() (uint64, error) {
	if err := r.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) int64() (int64, error) {
	v, err := r.varint()
	return int64(v), err //nolint:gosec // G115: two's complement is the wire form.
}

func (r *fieldReader) int32() (int32, error) {
	v, err := r.varint()
	return int32(v), err //nolint:gosec // G115: int32 fields are sign-extended varints.
}

func (r *fieldReader) float32() (float32, error) {
	if err := r.expect(protowire.Fixed32Type); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed32(r.buf)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return math.Float32frombits(v), nil
}

// varints reads a repeated varint field, packed or not.
func (r *fieldReader) varints() ([]uint64, error) {
	if r.typ != protowire.BytesType {
		v, err := r.varint()
		return []uint64{v}, err
	}
	packed, err := r.bytes()
	if err != nil {
		return nil, err
	}
	var out []uint64
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, v)
		packed = packed[n:]
	}
	return out, nil
}

func (r *fieldReader) int64s() ([]int64, error) {
	vs, err := r.varints()
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v) //nolint:gosec // G115: two's complement is the wire form.
	}
	return out, err
}

// fixed32s reads a repeated float field, packed or not.
func (r *fieldReader) fixed32s() ([]float32, error) {
	if r.typ != protowire.BytesType {
		v, err := r.float32()
		return []float32{v}, err
	}
	packed, err := r.bytes()
	if err != nil {
		return nil, err
	}
	if len(packed)%4 != 0 {
		return nil, errors.Errorf("field %d: packed floats of %d bytes", r.num, len(packed))
	}
	out := make([]float32, 0, len(packed)/4)
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed32(packed)
		out = append(out, math.Float32frombits(v))
		packed = packed[n:]
	}
	return out, nil
}

// fixed64s reads a repeated double field, packed or not.
func (r *fieldReader) fixed64s() ([]float64, error) {
	if r.typ == protowire.Fixed64Type {
		v, n := protowire.ConsumeFixed64(r.buf)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		r.buf = r.buf[n:]
		return []float64{math.Float64frombits(v)}, nil
	}
	packed, err := r.bytes()
	if err != nil {
		return nil, err
	}
	if len(packed)%8 != 0 {
		return nil, errors.Errorf("field %d: packed doubles of %d bytes", r.num, len(packed))
	}
	out := make([]float64, 0, len(packed)/8)
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed64(packed)
		out = append(out, math.Float64frombits(v))
		packed = packed[n:]
	}
	return out, nil
}

func (r *fieldReader) skip() error {
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.buf)
	if n < 0 {
		return protowire.ParseError(n)
	}
	r.buf = r.buf[n:]
	return nil
}

// message reads an embedded message with the given reader function.
func message[T any](r *fieldReader, read func([]byte, *T) error) (T, error) {
	var msg T
	data, err := r.bytes()
	if err != nil {
		return msg, err
	}
	err = read(data, &msg)
	return msg, err
}

// readFields runs handle for every field of data. handle reports whether it
// consumed the field; unconsumed fields are skipped.
func readFields(data []byte, handle func(r *fieldReader) (bool, error)) error {
	r := &fieldReader{buf: data}
	for {
		ok, err := r.next()
		if err != nil || !ok {
			return err
		}
		consumed, err := handle(r)
		if err != nil {
			return errors.WithMessagef(err, "field %d", r.num)
		}
		if !consumed {
			if err := r.skip(); err != nil {
				return err
			}
		}
	}
}

//nolint:gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func readModel(data []byte, m *ModelProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldModelIRVersion:
			m.IRVersion, err = r.int64()
		case fieldModelOpsetImport:
			var opset OperatorSetID
			opset, err = message(r, readOpset)
			m.OpsetImport = append(m.OpsetImport, opset)
		case fieldModelProducerName:
			m.ProducerName, err = r.string()
		case fieldModelProducerVersion:
			m.ProducerVersion, err = r.string()
		case fieldModelDomain:
			m.Domain, err = r.string()
		case fieldModelVersion:
			m.ModelVersion, err = r.int64()
		case fieldModelDocString:
			m.DocString, err = r.string()
		case fieldModelGraph:
			var g GraphProto
			g, err = message(r, readGraph)
			m.Graph = &g
		case fieldModelMetadataProps:
			var entry StringStringEntry
			entry, err = message(r, readEntry)
			m.MetadataProps = append(m.MetadataProps, entry)
		default:
			return false, nil
		}
		return true, err
	})
}

func readOpset(data []byte, m *OperatorSetID) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldOpsetDomain:
			m.Domain, err = r.string()
		case fieldOpsetVersion:
			m.Version, err = r.int64()
		default:
			return false, nil
		}
		return true, err
	})
}

func readEntry(data []byte, m *StringStringEntry) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldEntryKey:
			m.Key, err = r.string()
		case fieldEntryValue:
			m.Value, err = r.string()
		default:
			return false, nil
		}
		return true, err
	})
}

//nolint:gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func readGraph(data []byte, m *GraphProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldGraphNode:
			var node NodeProto
			node, err = message(r, readNode)
			m.Nodes = append(m.Nodes, node)
		case fieldGraphName:
			m.Name, err = r.string()
		case fieldGraphInitializer:
			var t TensorProto
			t, err = message(r, readTensor)
			m.Initializers = append(m.Initializers, t)
		case fieldGraphDocString:
			m.DocString, err = r.string()
		case fieldGraphInput:
			var vi ValueInfoProto
			vi, err = message(r, readValueInfo)
			m.Inputs = append(m.Inputs, vi)
		case fieldGraphOutput:
			var vi ValueInfoProto
			vi, err = message(r, readValueInfo)
			m.Outputs = append(m.Outputs, vi)
		case fieldGraphValueInfo:
			var vi ValueInfoProto
			vi, err = message(r, readValueInfo)
			m.ValueInfo = append(m.ValueInfo, vi)
		default:
			return false, nil
		}
		return true, err
	})
}

func readNode(data []byte, m *NodeProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var (
			s   string
			err error
		)
		switch r.num {
		case fieldNodeInput:
			s, err = r.string()
			m.Inputs = append(m.Inputs, s)
		case fieldNodeOutput:
			s, err = r.string()
			m.Outputs = append(m.Outputs, s)
		case fieldNodeName:
			m.Name, err = r.string()
		case fieldNodeOpType:
			m.OpType, err = r.string()
		case fieldNodeAttribute:
			var attr AttributeProto
			attr, err = message(r, readAttribute)
			m.Attributes = append(m.Attributes, attr)
		case fieldNodeDocString:
			m.DocString, err = r.string()
		case fieldNodeDomain:
			m.Domain, err = r.string()
		default:
			return false, nil
		}
		return true, err
	})
}

//nolint:gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func readAttribute(data []byte, m *AttributeProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldAttrName:
			m.Name, err = r.string()
		case fieldAttrF:
			m.F, err = r.float32()
		case fieldAttrI:
			m.I, err = r.int64()
		case fieldAttrS:
			m.S, err = r.bytes()
		case fieldAttrFloats:
			var fs []float32
			fs, err = r.fixed32s()
			m.Floats = append(m.Floats, fs...)
		case fieldAttrInts:
			var is []int64
			is, err = r.int64s()
			m.Ints = append(m.Ints, is...)
		case fieldAttrStrings:
			var s []byte
			s, err = r.bytes()
			m.Strings = append(m.Strings, s)
		case fieldAttrDocString:
			m.DocString, err = r.string()
		case fieldAttrType:
			m.Type, err = r.int32()
		default:
			return false, nil
		}
		return true, err
	})
}

func readValueInfo(data []byte, m *ValueInfoProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldValueInfoName:
			m.Name, err = r.string()
		case fieldValueInfoType:
			var t TypeProto
			t, err = message(r, readType)
			m.Type = &t
		case fieldValueInfoDocString:
			m.DocString, err = r.string()
		default:
			return false, nil
		}
		return true, err
	})
}

func readType(data []byte, m *TypeProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		if r.num != fieldTypeTensorType {
			return false, nil
		}
		tt, err := message(r, readTensorType)
		m.TensorType = &tt
		return true, err
	})
}

func readTensorType(data []byte, m *TensorTypeProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldTensorTypeElemType:
			m.ElemType, err = r.int32()
		case fieldTensorTypeShape:
			var shape TensorShapeProto
			shape, err = message(r, readShape)
			m.Shape = &shape
		default:
			return false, nil
		}
		return true, err
	})
}

func readShape(data []byte, m *TensorShapeProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		if r.num != fieldShapeDim {
			return false, nil
		}
		dim, err := message(r, readDimension)
		m.Dims = append(m.Dims, dim)
		return true, err
	})
}

func readDimension(data []byte, m *DimensionProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldDimValue:
			m.DimValue, err = r.int64()
		case fieldDimParam:
			m.DimParam, err = r.string()
		default:
			return false, nil
		}
		return true, err
	})
}

//nolint:gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func readTensor(data []byte, m *TensorProto) error {
	return readFields(data, func(r *fieldReader) (bool, error) {
		var err error
		switch r.num {
		case fieldTensorDims:
			var dims []int64
			dims, err = r.int64s()
			m.Dims = append(m.Dims, dims...)
		case fieldTensorDataType:
			m.DataType, err = r.int32()
		case fieldTensorFloatData:
			var fs []float32
			fs, err = r.fixed32s()
			m.FloatData = append(m.FloatData, fs...)
		case fieldTensorInt32Data:
			var vs []int64
			vs, err = r.int64s()
			for _, v := range vs {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: int32 fields are sign-extended varints.
			}
		case fieldTensorStringData:
			var s []byte
			s, err = r.bytes()
			m.StringData = append(m.StringData, s)
		case fieldTensorInt64Data:
			var vs []int64
			vs, err = r.int64s()
			m.Int64Data = append(m.Int64Data, vs...)
		case fieldTensorName:
			m.Name, err = r.string()
		case fieldTensorRawData:
			m.RawData, err = r.bytes()
		case fieldTensorDoubleData:
			var ds []float64
			ds, err = r.fixed64s()
			m.DoubleData = append(m.DoubleData, ds...)
		case fieldTensorUint64Data:
			var vs []uint64
			vs, err = r.varints()
			m.Uint64Data = append(m.Uint64Data, vs...)
		case fieldTensorDocString:
			m.DocString, err = r.string()
		default:
			return false, nil
		}
		return true, err
	})
}
