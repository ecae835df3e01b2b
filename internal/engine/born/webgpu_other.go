//go:build !windows

package born

import (
	"runtime"

	borntensor "github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// born only ships its WebGPU backend for windows.

func webgpuAvailable() bool {
	return false
}

func newWebGPU() (borntensor.Backend, func(), error) {
	return nil, nil, errors.Errorf("WebGPU backend is not available on %s", runtime.GOOS)
}
