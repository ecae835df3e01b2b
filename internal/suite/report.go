package suite

import (
	"fmt"
	"io"
	"time"
)

// Report collects the results of a Run.
type Report struct {
	Tests []TestResult
}

// TestResult is the outcome of one test.
type TestResult struct {
	Name     string
	Operator string
	Backend  string
	// Err is set when the model could not be built or loaded. Every case
	// then carries the same error.
	Err   error
	Cases []CaseResult
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the case succeeded.
func (c CaseResult) Passed() bool {
	return c.Err == nil
}

// Passed returns the number of passed cases.
func (t TestResult) Passed() int {
	n := 0
	for _, c := range t.Cases {
		if c.Passed() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed cases. A test without cases that
// failed to build counts as one failure.
func (t TestResult) Failed() int {
	if t.Err != nil && len(t.Cases) == 0 {
		return 1
	}
	return len(t.Cases) - t.Passed()
}

// Passed returns the number of passed cases across all tests.
func (r *Report) Passed() int {
	n := 0
	for _, t := range r.Tests {
		n += t.Passed()
	}
	return n
}

// Failed returns the number of failed cases across all tests.
func (r *Report) Failed() int {
	n := 0
	for _, t := range r.Tests {
		n += t.Failed()
	}
	return n
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	for _, t := range r.Tests {
		if t.Err != nil || t.Failed() > 0 {
			return false
		}
	}
	return true
}

// Write prints one line per case followed by a summary.
func (r *Report) Write(w io.Writer) error {
	for _, t := range r.Tests {
		if t.Err != nil && len(t.Cases) == 0 {
			if _, err := fmt.Fprintf(w, "FAIL  %s [%s] (%s)\n      %v\n", t.Name, t.Operator, t.Backend, t.Err); err != nil {
				return err
			}
		}
		for _, c := range t.Cases {
			status := "PASS"
			if !c.Passed() {
				status = "FAIL"
			}
			if _, err := fmt.Fprintf(w, "%s  %s [%s] / %s (%s, %v)\n",
				status, t.Name, t.Operator, c.Name, t.Backend, c.Duration.Round(time.Microsecond)); err != nil {
				return err
			}
			if c.Err != nil {
				if _, err := fmt.Fprintf(w, "      %v\n", c.Err); err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d passed, %d failed\n", r.Passed(), r.Failed())
	return err
}
