// Command optest builds single-operator ONNX models from test files and runs
// them on ONNX Runtime or born.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const version = "v0.1.0-dev"

const usage = `optest - ONNX operator test harness

Usage:
  optest run [flags] FILE...   run the tests in JSON or YAML files
  optest inspect MODEL.onnx    summarize a model
  optest version               print the version

Run "optest run --help" for the run flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := dispatch(ctx, os.Args[1:], os.Getenv, os.Stdout, logOutput)
	stop()
	os.Exit(code)
}

// dispatch runs a subcommand and returns the process exit code.
func dispatch(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "run":
		return runCommand(ctx, args[1:], getenv, stdout, stderr)
	case "inspect":
		return inspectCommand(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "optest %s\n", version)
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}
