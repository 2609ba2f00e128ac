package wimlib

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner performs one external-process invocation and returns the accumulated
// standard output together with the process exit code. A non-zero exit code
// is not an error at this layer; err is reserved for spawn-level failures
// (binary not found, I/O failure), which callers receive unwrapped.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (stdout []byte, exitCode int, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return buf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, 0, err
	}
	return buf.Bytes(), 0, nil
}
