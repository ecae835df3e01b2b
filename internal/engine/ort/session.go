package ort

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkg/errors"
	onnxruntime "github.com/yalue/onnxruntime_go"

	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/tensor"
)

// Session runs one model. ONNX Runtime binds input and output names when a
// session is created, so one runtime session is kept per distinct set of fed
// inputs and fetched outputs.
type Session struct {
	model       []byte
	backend     string
	inputNames  []string
	outputNames []string
	outputTypes map[string]int32
	logger      *slog.Logger

	sessions map[string]*onnxruntime.DynamicAdvancedSession
}

// InputNames returns the model inputs.
func (s *Session) InputNames() []string {
	return s.inputNames
}

// OutputNames returns the model outputs.
func (s *Session) OutputNames() []string {
	return s.outputNames
}

// Run executes the model. Inputs are passed in model order. Outputs are
// allocated from their fetch layout when the runtime cannot allocate them
// itself.
func (s *Session) Run(ctx context.Context, feeds map[string]*tensor.Tensor, fetches []engine.Fetch) (map[string]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.sessions == nil {
		return nil, errors.New("ort: session is closed")
	}
	if len(feeds) == 0 || len(fetches) == 0 {
		return nil, errors.Errorf("ort: a run needs at least one input and one output with data (got %d and %d)", len(feeds), len(fetches))
	}

	inputNames := s.orderFeeds(feeds)
	inputs := make([]onnxruntime.Value, 0, len(inputNames))
	outputs := make([]onnxruntime.Value, len(fetches))
	defer func() {
		for _, v := range inputs {
			_ = v.Destroy()
		}
		for _, v := range outputs {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()
	for _, name := range inputNames {
		v, err := toValue(feeds[name])
		if err != nil {
			return nil, errors.WithMessagef(err, "ort: input %s", name)
		}
		inputs = append(inputs, v)
	}
	for i, f := range fetches {
		v, err := newOutput(f)
		if err != nil {
			return nil, errors.WithMessagef(err, "ort: output %s", f.Name)
		}
		outputs[i] = v
	}

	names := engine.FetchNames(fetches)
	sess, err := s.session(inputNames, names)
	if err != nil {
		return nil, err
	}
	if err := sess.Run(inputs, outputs); err != nil {
		return nil, errors.Wrapf(err, "ort: running on %s", s.backend)
	}

	results := make(map[string]*tensor.Tensor, len(fetches))
	for i, name := range names {
		t, err := fromValue(outputs[i], s.outputTypes[name])
		if err != nil {
			return nil, errors.WithMessagef(err, "ort: output %s", name)
		}
		results[name] = t
	}
	return results, nil
}

// orderFeeds returns the fed input names, declared inputs first in model
// order, then any others sorted.
func (s *Session) orderFeeds(feeds map[string]*tensor.Tensor) []string {
	names := make([]string, 0, len(feeds))
	for _, name := range s.inputNames {
		if _, ok := feeds[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range feeds {
		if !slices.Contains(s.inputNames, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

func (s *Session) session(inputs, outputs []string) (*onnxruntime.DynamicAdvancedSession, error) {
	key := strings.Join(inputs, ",") + "|" + strings.Join(outputs, ",")
	if sess, ok := s.sessions[key]; ok {
		return sess, nil
	}

	options, err := sessionOptions(s.backend)
	if err != nil {
		return nil, err
	}
	if options != nil {
		defer options.Destroy()
	}
	sess, err := onnxruntime.NewDynamicAdvancedSessionWithONNXData(s.model, inputs, outputs, options)
	if err != nil {
		return nil, errors.Wrapf(err, "ort: creating %s session", s.backend)
	}
	s.logger.Debug("ort session created", "backend", s.backend, "inputs", inputs, "outputs", outputs)
	s.sessions[key] = sess
	return sess, nil
}

// Close destroys every runtime session.
func (s *Session) Close() error {
	var first error
	for _, sess := range s.sessions {
		if err := sess.Destroy(); err != nil && first == nil {
			first = errors.Wrap(err, "ort: destroying session")
		}
	}
	s.sessions = nil
	return first
}
