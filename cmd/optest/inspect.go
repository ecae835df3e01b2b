package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/onnx-optest/internal/onnx"
)

func inspectCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: optest inspect MODEL.onnx")
		return 2
	}
	info, err := onnx.GetModelInfo(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "optest inspect: %v\n", err)
		return 1
	}
	writeInfo(stdout, info)
	return 0
}

func writeInfo(w io.Writer, info *onnx.ModelInfo) {
	fmt.Fprintf(w, "graph:     %s\n", info.GraphName)
	fmt.Fprintf(w, "ir:        %d\n", info.IRVersion)
	fmt.Fprintf(w, "opset:     %d\n", info.OpsetVersion)
	if len(info.OpsetDomains) > 0 {
		fmt.Fprintf(w, "domains:   %s\n", strings.Join(info.OpsetDomains, ", "))
	}
	if info.ProducerName != "" {
		fmt.Fprintf(w, "producer:  %s %s\n", info.ProducerName, info.ProducerVersion)
	}
	fmt.Fprintf(w, "operators: %s\n", strings.Join(info.Operators, ", "))
	for _, in := range info.Inputs {
		fmt.Fprintf(w, "input:     %s\n", in)
	}
	for _, out := range info.Outputs {
		fmt.Fprintf(w, "output:    %s\n", out)
	}
	if info.WeightCount > 0 {
		fmt.Fprintf(w, "weights:   %d\n", info.WeightCount)
	}
}
