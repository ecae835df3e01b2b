package builder

import (
	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/tensor"
)

// Errors returned by BuildModel. They are wrapped with the test name and
// operator; use errors.Is to match them.
var (
	ErrUnsupportedAttributeType = errors.New("unsupported attribute type")
	ErrNoCases                  = errors.New("no test cases found")
	ErrCaseCountMismatch        = errors.New("test cases must have the same number of inputs and outputs")
	ErrMissingData              = errors.New("test cases must have data and dims for each input")
	ErrRankMismatch             = errors.New("test cases must have the same rank for each input")
	ErrShapeMismatch            = errors.New("test cases must have the same shape for each input")
	ErrShapeDefinitionCount     = errors.New("input shape definitions must have one entry per input")
	ErrUnsupportedDataType      = tensor.ErrUnsupportedDataType
)
