//go:build windows

package born

import (
	bornwebgpu "github.com/born-ml/born/backend/webgpu"
	borntensor "github.com/born-ml/born/tensor"
)

func webgpuAvailable() bool {
	return bornwebgpu.IsAvailable()
}

func newWebGPU() (borntensor.Backend, func(), error) {
	gpu, err := bornwebgpu.New()
	if err != nil {
		return nil, nil, err
	}
	return gpu, gpu.Release, nil
}
