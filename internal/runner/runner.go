// Package runner feeds test cases to engine sessions and validates the
// results.
package runner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-optest/internal/builder"
	"github.com/born-ml/onnx-optest/internal/engine"
	"github.com/born-ml/onnx-optest/internal/tensor"
	"github.com/born-ml/onnx-optest/internal/testcase"
)

// Feeds converts every case input that carries data into a tensor keyed by
// its graph input name.
func Feeds(c *testcase.Case) (map[string]*tensor.Tensor, error) {
	feeds := make(map[string]*tensor.Tensor, len(c.Inputs))
	for i := range c.Inputs {
		if !c.Inputs[i].HasData() {
			continue
		}
		t, err := c.Inputs[i].Tensor()
		if err != nil {
			return nil, errors.WithMessagef(err, "input %d", i)
		}
		feeds[builder.InputName(i)] = t
	}
	return feeds, nil
}

// Expected converts every case output that carries data into a tensor keyed
// by its graph output name, and returns the fetches requesting them in
// output order. Outputs without data are not fetched.
func Expected(c *testcase.Case) (map[string]*tensor.Tensor, []engine.Fetch, error) {
	expected := make(map[string]*tensor.Tensor, len(c.Outputs))
	var fetches []engine.Fetch
	for i := range c.Outputs {
		if !c.Outputs[i].HasData() {
			continue
		}
		t, err := c.Outputs[i].Tensor()
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "output %d", i)
		}
		name := builder.OutputName(i)
		expected[name] = t
		fetches = append(fetches, engine.Fetch{Name: name, DType: t.DType, Dims: t.Dims})
	}
	return expected, fetches, nil
}

// RunCase runs one case on a session and returns the raw results, keyed by
// output name. Only outputs with expected data are fetched.
func RunCase(ctx context.Context, sess engine.Session, c *testcase.Case) (map[string]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	feeds, err := Feeds(c)
	if err != nil {
		return nil, errors.WithMessagef(err, "case %q", c.Name)
	}
	_, fetches, err := Expected(c)
	if err != nil {
		return nil, errors.WithMessagef(err, "case %q", c.Name)
	}

	results, err := sess.Run(ctx, feeds, fetches)
	if err != nil {
		return nil, errors.Wrapf(err, "case %q", c.Name)
	}
	return results, nil
}

// Verify runs a case and checks its results against the expected outputs.
func Verify(ctx context.Context, sess engine.Session, c *testcase.Case, tol Tolerance) error {
	expected, _, err := Expected(c)
	if err != nil {
		return errors.WithMessagef(err, "case %q", c.Name)
	}
	actual, err := RunCase(ctx, sess, c)
	if err != nil {
		return err
	}
	if err := Check(actual, expected, tol); err != nil {
		return errors.WithMessagef(err, "case %q", c.Name)
	}
	return nil
}
