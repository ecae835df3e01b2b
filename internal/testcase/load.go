package testcase

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// LoadFile reads the tests in a JSON or YAML file.
//
//nolint:gosec // G304: test files are chosen by the user.
func LoadFile(path string) ([]*Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read test file")
	}
	tests, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", path)
	}
	return tests, nil
}

// Parse decodes a test file holding either one test or a list of tests.
// YAML is converted to JSON first, and numbers are kept as json.Number so
// that 64-bit integer data is not rounded through float64.
func Parse(data []byte) ([]*Test, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "invalid test file")
	}
	jsonData = bytes.TrimSpace(jsonData)
	if len(jsonData) == 0 || bytes.Equal(jsonData, []byte("null")) {
		return nil, errors.New("empty test file")
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	if jsonData[0] == '[' {
		var tests []*Test
		if err := dec.Decode(&tests); err != nil {
			return nil, errors.Wrap(err, "invalid test list")
		}
		for i, t := range tests {
			if t == nil {
				return nil, errors.Errorf("test #%d is null", i)
			}
		}
		return tests, nil
	}
	var t Test
	if err := dec.Decode(&t); err != nil {
		return nil, errors.Wrap(err, "invalid test")
	}
	return []*Test{&t}, nil
}
