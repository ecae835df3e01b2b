package onnx

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a model in the protobuf wire format read by ONNX engines.
//
// Scalar fields holding their zero value are omitted, as proto3 does.
// Repeated numeric fields are written packed.
func Marshal(m *ModelProto) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if m.Graph == nil {
		return nil, errors.New("model has no graph")
	}
	var b []byte
	b = appendVarintField(b, fieldModelIRVersion, uint64(m.IRVersion)) //nolint:gosec // G115: IR versions are positive.
	b = appendStringField(b, fieldModelProducerName, m.ProducerName)
	b = appendStringField(b, fieldModelProducerVersion, m.ProducerVersion)
	b = appendStringField(b, fieldModelDomain, m.Domain)
	b = appendVarintField(b, fieldModelVersion, uint64(m.ModelVersion)) //nolint:gosec // G115: two's complement is the wire form.
	b = appendStringField(b, fieldModelDocString, m.DocString)
	b = appendMessage(b, fieldModelGraph, encodeGraph(m.Graph))
	for i := range m.OpsetImport {
		b = appendMessage(b, fieldModelOpsetImport, encodeOpset(&m.OpsetImport[i]))
	}
	for i := range m.MetadataProps {
		b = appendMessage(b, fieldModelMetadataProps, encodeEntry(&m.MetadataProps[i]))
	}
	return b, nil
}

func encodeOpset(o *OperatorSetID) []byte {
	var b []byte
	b = appendStringField(b, fieldOpsetDomain, o.Domain)
	b = appendVarintField(b, fieldOpsetVersion, uint64(o.Version)) //nolint:gosec // G115: opset versions are positive.
	return b
}

func encodeEntry(e *StringStringEntry) []byte {
	var b []byte
	b = appendStringField(b, fieldEntryKey, e.Key)
	b = appendStringField(b, fieldEntryValue, e.Value)
	return b
}

func encodeGraph(g *GraphProto) []byte {
	var b []byte
	for i := range g.Nodes {
		b = appendMessage(b, fieldGraphNode, encodeNode(&g.Nodes[i]))
	}
	b = appendStringField(b, fieldGraphName, g.Name)
	for i := range g.Initializers {
		b = appendMessage(b, fieldGraphInitializer, encodeTensor(&g.Initializers[i]))
	}
	b = appendStringField(b, fieldGraphDocString, g.DocString)
	for i := range g.Inputs {
		b = appendMessage(b, fieldGraphInput, encodeValueInfo(&g.Inputs[i]))
	}
	for i := range g.Outputs {
		b = appendMessage(b, fieldGraphOutput, encodeValueInfo(&g.Outputs[i]))
	}
	for i := range g.ValueInfo {
		b = appendMessage(b, fieldGraphValueInfo, encodeValueInfo(&g.ValueInfo[i]))
	}
	return b
}

func encodeNode(n *NodeProto) []byte {
	var b []byte
	for _, in := range n.Inputs {
		// Empty names mark omitted optional inputs and must keep their position.
		b = protowire.AppendTag(b, fieldNodeInput, protowire.BytesType)
		b = protowire.AppendString(b, in)
	}
	for _, out := range n.Outputs {
		b = protowire.AppendTag(b, fieldNodeOutput, protowire.BytesType)
		b = protowire.AppendString(b, out)
	}
	b = appendStringField(b, fieldNodeName, n.Name)
	b = appendStringField(b, fieldNodeOpType, n.OpType)
	for i := range n.Attributes {
		b = appendMessage(b, fieldNodeAttribute, encodeAttribute(&n.Attributes[i]))
	}
	b = appendStringField(b, fieldNodeDocString, n.DocString)
	b = appendStringField(b, fieldNodeDomain, n.Domain)
	return b
}

func encodeAttribute(a *AttributeProto) []byte {
	var b []byte
	b = appendStringField(b, fieldAttrName, a.Name)
	switch a.Type {
	case AttributeProtoFloat:
		// Written even when zero: the value is the whole point of the attribute.
		b = protowire.AppendTag(b, fieldAttrF, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	case AttributeProtoInt:
		b = protowire.AppendTag(b, fieldAttrI, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.I)) //nolint:gosec // G115: two's complement is the wire form.
	case AttributeProtoString:
		b = protowire.AppendTag(b, fieldAttrS, protowire.BytesType)
		b = protowire.AppendBytes(b, a.S)
	case AttributeProtoFloats:
		if len(a.Floats) > 0 {
			packed := make([]byte, 0, 4*len(a.Floats))
			for _, f := range a.Floats {
				packed = protowire.AppendFixed32(packed, math.Float32bits(f))
			}
			b = appendMessage(b, fieldAttrFloats, packed)
		}
	case AttributeProtoInts:
		if len(a.Ints) > 0 {
			var packed []byte
			for _, v := range a.Ints {
				packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement is the wire form.
			}
			b = appendMessage(b, fieldAttrInts, packed)
		}
	case AttributeProtoStrings:
		for _, s := range a.Strings {
			b = protowire.AppendTag(b, fieldAttrStrings, protowire.BytesType)
			b = protowire.AppendBytes(b, s)
		}
	}
	b = appendStringField(b, fieldAttrDocString, a.DocString)
	b = appendVarintField(b, fieldAttrType, uint64(a.Type)) //nolint:gosec // G115: attribute types are positive.
	return b
}

func encodeTensor(t *TensorProto) []byte {
	var b []byte
	if len(t.Dims) > 0 {
		var packed []byte
		for _, d := range t.Dims {
			packed = protowire.AppendVarint(packed, uint64(d)) //nolint:gosec // G115: two's complement is the wire form.
		}
		b = appendMessage(b, fieldTensorDims, packed)
	}
	b = appendVarintField(b, fieldTensorDataType, uint64(t.DataType)) //nolint:gosec // G115: data types are positive.
	if len(t.FloatData) > 0 {
		packed := make([]byte, 0, 4*len(t.FloatData))
		for _, f := range t.FloatData {
			packed = protowire.AppendFixed32(packed, math.Float32bits(f))
		}
		b = appendMessage(b, fieldTensorFloatData, packed)
	}
	if len(t.Int32Data) > 0 {
		var packed []byte
		for _, v := range t.Int32Data {
			packed = protowire.AppendVarint(packed, uint64(int64(v))) //nolint:gosec // G115: int32 fields are sign-extended varints.
		}
		b = appendMessage(b, fieldTensorInt32Data, packed)
	}
	for _, s := range t.StringData {
		b = protowire.AppendTag(b, fieldTensorStringData, protowire.BytesType)
		b = protowire.AppendBytes(b, s)
	}
	if len(t.Int64Data) > 0 {
		var packed []byte
		for _, v := range t.Int64Data {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement is the wire form.
		}
		b = appendMessage(b, fieldTensorInt64Data, packed)
	}
	b = appendStringField(b, fieldTensorName, t.Name)
	if len(t.RawData) > 0 {
		b = protowire.AppendTag(b, fieldTensorRawData, protowire.BytesType)
		b = protowire.AppendBytes(b, t.RawData)
	}
	if len(t.DoubleData) > 0 {
		packed := make([]byte, 0, 8*len(t.DoubleData))
		for _, f := range t.DoubleData {
			packed = protowire.AppendFixed64(packed, math.Float64bits(f))
		}
		b = appendMessage(b, fieldTensorDoubleData, packed)
	}
	if len(t.Uint64Data) > 0 {
		var packed []byte
		for _, v := range t.Uint64Data {
			packed = protowire.AppendVarint(packed, v)
		}
		b = appendMessage(b, fieldTensorUint64Data, packed)
	}
	b = appendStringField(b, fieldTensorDocString, t.DocString)
	return b
}

func encodeValueInfo(v *ValueInfoProto) []byte {
	var b []byte
	b = appendStringField(b, fieldValueInfoName, v.Name)
	if v.Type != nil {
		b = appendMessage(b, fieldValueInfoType, encodeType(v.Type))
	}
	b = appendStringField(b, fieldValueInfoDocString, v.DocString)
	return b
}

func encodeType(t *TypeProto) []byte {
	if t.TensorType == nil {
		return nil
	}
	var tt []byte
	tt = appendVarintField(tt, fieldTensorTypeElemType, uint64(t.TensorType.ElemType)) //nolint:gosec // G115: data types are positive.
	if shape := t.TensorType.Shape; shape != nil {
		// A present but empty shape declares a scalar, so it is always written.
		var sb []byte
		for _, d := range shape.Dims {
			sb = appendMessage(sb, fieldShapeDim, encodeDimension(d))
		}
		tt = appendMessage(tt, fieldTensorTypeShape, sb)
	}
	return appendMessage(nil, fieldTypeTensorType, tt)
}

func encodeDimension(d DimensionProto) []byte {
	var b []byte
	if d.IsSymbolic() {
		b = protowire.AppendTag(b, fieldDimParam, protowire.BytesType)
		return protowire.AppendString(b, d.DimParam)
	}
	// dim_value is a oneof member: a fixed 0 must still be written.
	b = protowire.AppendTag(b, fieldDimValue, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(d.DimValue)) //nolint:gosec // G115: two's complement is the wire form.
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
