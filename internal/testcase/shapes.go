package testcase

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ShapeMode selects how graph input shapes are declared.
type ShapeMode int

const (
	// ShapeNone declares no shape: any rank is accepted.
	ShapeNone ShapeMode = iota
	// ShapeRankOnly declares one symbolic dimension per axis.
	ShapeRankOnly
	// ShapeStatic declares the concrete dimensions of the first case.
	ShapeStatic
	// ShapeExplicit uses the caller-supplied definitions.
	ShapeExplicit
)

var shapeModeNames = map[ShapeMode]string{
	ShapeNone:     "none",
	ShapeRankOnly: "rankOnly",
	ShapeStatic:   "static",
	ShapeExplicit: "explicit",
}

// String returns the name used for the mode in test files.
func (m ShapeMode) String() string {
	if n, ok := shapeModeNames[m]; ok {
		return n
	}
	return "unknown"
}

// Dim is one dimension of an explicit shape definition: symbolic when Param
// is set, fixed to Value otherwise.
type Dim struct {
	Value int64
	Param string
}

// IsSymbolic reports whether the dimension is a named parameter.
func (d Dim) IsSymbolic() bool {
	return d.Param != ""
}

// ShapeDefinitions is the inputShapeDefinitions field of a test. In test
// files it is either a mode name ("none", "rankOnly", "static") or a list
// with one entry per input, each null or a list of numbers and strings.
type ShapeDefinitions struct {
	Mode ShapeMode
	// Inputs is only used with ShapeExplicit. A nil entry leaves that input
	// without a shape.
	Inputs [][]Dim
}

// Explicit returns explicit shape definitions.
func Explicit(inputs ...[]Dim) *ShapeDefinitions {
	return &ShapeDefinitions{Mode: ShapeExplicit, Inputs: inputs}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ShapeDefinitions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false", "0", `""`:
		*s = ShapeDefinitions{Mode: ShapeNone}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		for mode, n := range shapeModeNames {
			if n == name && mode != ShapeExplicit {
				*s = ShapeDefinitions{Mode: mode}
				return nil
			}
		}
		return errors.Errorf("unknown input shape definition mode %q", name)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "input shape definitions must be a mode name or a list")
	}
	inputs := make([][]Dim, len(raw))
	for i, entry := range raw {
		dims, err := parseDims(entry)
		if err != nil {
			return errors.WithMessagef(err, "input shape definition #%d", i)
		}
		inputs[i] = dims
	}
	*s = ShapeDefinitions{Mode: ShapeExplicit, Inputs: inputs}
	return nil
}

func parseDims(entry json.RawMessage) ([]Dim, error) {
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, nil
	}
	dims := make([]Dim, len(values))
	for j, v := range values {
		switch x := v.(type) {
		case string:
			if x == "" {
				return nil, errors.Errorf("dim #%d: empty symbolic name", j)
			}
			dims[j] = Dim{Param: x}
		case json.Number:
			n, err := x.Int64()
			if err != nil || n < 0 {
				return nil, errors.Errorf("dim #%d: %s is not a valid dimension", j, x)
			}
			dims[j] = Dim{Value: n}
		default:
			return nil, errors.Errorf("dim #%d: unexpected %T", j, v)
		}
	}
	return dims, nil
}

// MarshalJSON implements json.Marshaler.
func (s ShapeDefinitions) MarshalJSON() ([]byte, error) {
	if s.Mode != ShapeExplicit {
		return json.Marshal(s.Mode.String())
	}
	out := make([][]any, len(s.Inputs))
	for i, dims := range s.Inputs {
		if dims == nil {
			continue
		}
		out[i] = make([]any, len(dims))
		for j, d := range dims {
			if d.IsSymbolic() {
				out[i][j] = d.Param
			} else {
				out[i][j] = d.Value
			}
		}
	}
	return json.Marshal(out)
}
